// Package textnorm canonicalizes Arabic text so downstream matching is
// insensitive to diacritics and letter-variant spelling differences between
// hadith sources.
package textnorm

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Normalize strips Arabic diacritical marks and tatweel, folds common letter
// variants (Alef forms, Teh Marbuta, Alef Maksura) and collapses whitespace.
// It is pure and total: empty or whitespace-only input returns "".
func Normalize(text string) string {
	normalized, _ := NormalizeWithOffsets(text)
	return normalized
}

// NormalizeWithOffsets normalizes like Normalize and additionally returns a
// byte-offset map from the normalized string back into the original one.
// offsets has length len(normalized)+1; offsets[i] is the byte position in
// the original text of the rune that produced normalized byte i, and the
// final entry points just past the last consumed original rune. The map lets
// spans found on normalized text be reported against the original input.
func NormalizeWithOffsets(text string) (string, []int) {
	var b strings.Builder
	b.Grow(len(text))
	offsets := make([]int, 0, len(text)+1)

	pendingSpace := false
	spaceStart := 0
	lastEnd := 0

	for i, r := range text {
		size := utf8.RuneLen(r)
		if isDiacritic(r) || r == tatweel {
			continue
		}
		if unicode.IsSpace(r) {
			if !pendingSpace {
				pendingSpace = true
				spaceStart = i
			}
			continue
		}
		if pendingSpace {
			// Collapse the run to one space; drop it entirely when leading.
			if b.Len() > 0 {
				b.WriteByte(' ')
				offsets = append(offsets, spaceStart)
			}
			pendingSpace = false
		}
		folded := foldRune(r)
		start := b.Len()
		b.WriteRune(folded)
		for j := start; j < b.Len(); j++ {
			offsets = append(offsets, i)
		}
		lastEnd = i + size
	}

	offsets = append(offsets, lastEnd)
	return b.String(), offsets
}

// SpanToOriginal maps a byte span on a normalized string back to byte
// positions in the original text using the offset map from
// NormalizeWithOffsets. Out-of-range spans are clamped.
func SpanToOriginal(offsets []int, start, end int) (int, int) {
	if len(offsets) == 0 {
		return 0, 0
	}
	if start < 0 {
		start = 0
	}
	if end < start {
		end = start
	}
	last := len(offsets) - 1
	if start > last {
		start = last
	}
	if end > last {
		end = last
	}
	return offsets[start], offsets[end]
}

const tatweel = 'ـ'

// isDiacritic reports whether r is one of the Arabic combining marks used for
// short vowels, shadda, sukun and Quranic annotation.
func isDiacritic(r rune) bool {
	return (r >= 'ً' && r <= 'ٟ') || r == 'ٰ'
}

func foldRune(r rune) rune {
	switch r {
	case 'آ', 'أ', 'إ':
		return 'ا'
	case 'ة':
		return 'ه'
	case 'ى':
		return 'ي'
	default:
		return r
	}
}

// IsArabicLetter reports whether r lies in the base Arabic letter ranges.
func IsArabicLetter(r rune) bool {
	return (r >= 'ء' && r <= 'ي') || (r >= 'ٱ' && r <= 'ۓ')
}
