package analysis

import "unicode"

// Character-class ratio thresholds for language classification.
const (
	arabicThreshold  = 0.7
	englishThreshold = 0.3
)

// detectLanguage classifies text by the ratio of Arabic-range to Latin-range
// letters. Text with no letters of either class is classified mixed; the
// source distinguishes no "unknown" category and neither do we.
func detectLanguage(text string) Language {
	var arabic, latin int
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Arabic, r):
			arabic++
		case unicode.Is(unicode.Latin, r):
			latin++
		}
	}
	total := arabic + latin
	if total == 0 {
		return LanguageMixed
	}
	ratio := float64(arabic) / float64(total)
	switch {
	case ratio > arabicThreshold:
		return LanguageArabic
	case ratio < englishThreshold:
		return LanguageEnglish
	default:
		return LanguageMixed
	}
}
