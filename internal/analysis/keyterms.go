package analysis

import (
	"strings"

	snowballeng "github.com/kljensen/snowball/english"

	"rijal-backend/internal/textnorm"
)

// maxKeyTerms caps the number of salient terms per result.
const maxKeyTerms = 10

// arabicDomainLexicon holds hadith-science vocabulary in normalized form.
var arabicDomainLexicon = toSet([]string{
	textnorm.Normalize("حديث"),
	textnorm.Normalize("إسناد"),
	textnorm.Normalize("سند"),
	textnorm.Normalize("متن"),
	textnorm.Normalize("رواية"),
	textnorm.Normalize("راوي"),
	textnorm.Normalize("صحيح"),
	textnorm.Normalize("ضعيف"),
	textnorm.Normalize("حسن"),
	textnorm.Normalize("موضوع"),
	textnorm.Normalize("ثقة"),
	textnorm.Normalize("رجال"),
	textnorm.Normalize("النبي"),
	textnorm.Normalize("الرسول"),
	textnorm.Normalize("السنة"),
})

// englishDomainStems holds the snowball stems of English hadith-domain
// vocabulary, so inflected forms ("narrated", "narrators") still hit.
var englishDomainStems = toSet([]string{
	snowballeng.Stem("hadith", false),
	snowballeng.Stem("isnad", false),
	snowballeng.Stem("narrator", false),
	snowballeng.Stem("narrated", false),
	snowballeng.Stem("chain", false),
	snowballeng.Stem("prophet", false),
	snowballeng.Stem("sunnah", false),
	snowballeng.Stem("sahih", false),
	snowballeng.Stem("companion", false),
	snowballeng.Stem("transmission", false),
})

func toSet(entries []string) map[string]struct{} {
	out := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		out[e] = struct{}{}
	}
	return out
}

// extractKeyTerms tokenizes normalized text on whitespace and keeps tokens
// that are domain-lexicon hits or composed entirely of Arabic letters.
// Duplicates are removed and first-seen order preserved, capped at
// maxKeyTerms.
func extractKeyTerms(normalizedText string) []string {
	seen := make(map[string]struct{})
	terms := make([]string, 0, maxKeyTerms)

	for _, token := range strings.Fields(normalizedText) {
		if len(terms) >= maxKeyTerms {
			break
		}
		if _, dup := seen[token]; dup {
			continue
		}
		if !isKeyTerm(token) {
			continue
		}
		seen[token] = struct{}{}
		terms = append(terms, token)
	}
	return terms
}

func isKeyTerm(token string) bool {
	if _, ok := arabicDomainLexicon[token]; ok {
		return true
	}
	if isAllArabic(token) {
		return true
	}
	stem := snowballeng.Stem(strings.ToLower(strings.Trim(token, ".,;:!?\"'()")), false)
	_, ok := englishDomainStems[stem]
	return ok
}

func isAllArabic(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if !textnorm.IsArabicLetter(r) {
			return false
		}
	}
	return true
}
