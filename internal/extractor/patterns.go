package extractor

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"rijal-backend/internal/textnorm"
)

// patternConfidence is the fixed confidence assigned to mentions found by
// the transmission-verb trigger patterns.
const patternConfidence = 0.7

// Captured name spans must be strictly between these rune counts.
const (
	minNameRunes = 2
	maxNameRunes = 50
)

// triggerPhrases are the transmission-chain verbs and kinship markers that
// introduce a narrator name in an isnad, in matching order.
var triggerPhrases = []string{
	"حدثنا",  // narrated to us
	"حدثني",  // narrated to me
	"أخبرنا", // informed us
	"أخبرني", // informed me
	"أنبأنا", // reported to us
	"سمعت",   // I heard
	"قال",    // he said
	"قالت",   // she said
	"عن",     // from/about
	"بن",     // son of
	"ابن",    // son of
	"أبو",    // father of
	"أبي",    // father of
	"أم",     // mother of
}

// stopTokens end a captured name: a following transmission verb belongs to
// the next link of the chain, not to the name.
var stopTokens = map[string]struct{}{
	"حدثنا": {}, "حدثني": {}, "اخبرنا": {}, "اخبرني": {}, "انبانا": {},
	"سمعت": {}, "قال": {}, "قالت": {}, "عن": {}, "ثم": {}, "انه": {},
}

var triggerPatterns = buildTriggerPatterns()

func buildTriggerPatterns() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(triggerPhrases))
	for _, phrase := range triggerPhrases {
		// The trigger must stand alone as a word; the capture grabs up to
		// four following Arabic tokens, trimmed to the name afterwards.
		expr := `(?:^|[\s:،.])` + regexp.QuoteMeta(phrase) +
			`[\s]+((?:[\p{Arabic}]+)(?:[\s]+[\p{Arabic}]+){0,3})`
		patterns = append(patterns, regexp.MustCompile(expr))
	}
	return patterns
}

// patternPass runs the trigger patterns over the original text so span
// offsets stay valid for highlighting.
func patternPass(text string) []Mention {
	var mentions []Mention
	for _, re := range triggerPatterns {
		for _, match := range re.FindAllStringSubmatchIndex(text, -1) {
			// Group 1 holds the candidate name span.
			start, end := match[2], match[3]
			if start < 0 || end <= start {
				continue
			}
			name, trimmedEnd := trimToName(text, start, end)
			if name == "" {
				continue
			}
			runes := utf8.RuneCountInString(name)
			if runes <= minNameRunes || runes >= maxNameRunes {
				continue
			}
			mentions = append(mentions, Mention{
				Name:       name,
				Confidence: patternConfidence,
				Span:       Span{Start: start, End: trimmedEnd},
				Category:   CategoryNarrator,
			})
		}
	}
	return mentions
}

// trimToName cuts the captured span at the first stop token so a following
// transmission verb is not swallowed into the name. Returns the trimmed
// surface form and its end offset in the original text.
func trimToName(text string, start, end int) (string, int) {
	captured := text[start:end]
	kept := 0
	offset := 0
	for offset < len(captured) {
		// Find the next whitespace-separated token.
		rest := captured[offset:]
		tokenStart := offset + indexNonSpace(rest)
		if tokenStart >= len(captured) {
			break
		}
		tokenEnd := tokenStart
		for tokenEnd < len(captured) && !isSpaceByte(captured[tokenEnd]) {
			tokenEnd++
		}
		token := captured[tokenStart:tokenEnd]
		if _, stop := stopTokens[strings.ToLower(textnorm.Normalize(token))]; stop {
			break
		}
		kept = tokenEnd
		offset = tokenEnd
	}
	name := strings.TrimSpace(captured[:kept])
	return name, start + kept
}

func indexNonSpace(s string) int {
	for i := 0; i < len(s); i++ {
		if !isSpaceByte(s[i]) {
			return i
		}
	}
	return len(s)
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
