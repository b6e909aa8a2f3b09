package inference

import "math"

// meanPool averages token states into a single vector, weighted by the
// attention mask so padding positions don't dilute the sentence vector.
// states is laid out [seqLen][dim] flattened row-major.
func meanPool(states []float32, mask []int64, seqLen, dim int) []float32 {
	out := make([]float32, dim)
	var total float32
	for i := 0; i < seqLen; i++ {
		if i < len(mask) && mask[i] == 0 {
			continue
		}
		total++
		row := states[i*dim : (i+1)*dim]
		for j, v := range row {
			out[j] += v
		}
	}
	if total == 0 {
		return out
	}
	for j := range out {
		out[j] /= total
	}
	return out
}

// l2Normalize scales vec to unit length in place and returns it. A zero
// vector is returned unchanged.
func l2Normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}

// softmax converts logits to a probability distribution.
func softmax(logits []float32) []float64 {
	out := make([]float64, len(logits))
	if len(logits) == 0 {
		return out
	}
	max := float64(logits[0])
	for _, v := range logits[1:] {
		if float64(v) > max {
			max = float64(v)
		}
	}
	var sum float64
	for i, v := range logits {
		out[i] = math.Exp(float64(v) - max)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// argmax returns the index of the largest value, or -1 for empty input.
func argmax(values []float64) int {
	best := -1
	for i, v := range values {
		if best < 0 || v > values[best] {
			best = i
		}
	}
	return best
}
