package analysis

import "strings"

// sentenceTerminators delimit sentences; the Arabic question mark counts.
const sentenceTerminators = ".!?؟"

// readabilityScore maps average sentence length to a 0-100 scale, higher
// meaning easier. A text without terminators is treated as one sentence.
func readabilityScore(text string) float64 {
	words := len(strings.Fields(text))
	if words == 0 {
		return 100
	}

	sentences := 0
	for _, segment := range splitSentences(text) {
		if strings.TrimSpace(segment) != "" {
			sentences++
		}
	}
	if sentences == 0 {
		sentences = 1
	}

	avgWords := float64(words) / float64(sentences)
	score := 100 - 2*avgWords
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func splitSentences(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return strings.ContainsRune(sentenceTerminators, r)
	})
}
