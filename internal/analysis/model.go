package analysis

import "rijal-backend/internal/extractor"

// Language classifies the script mix of an input text.
type Language string

const (
	LanguageArabic  Language = "arabic"
	LanguageEnglish Language = "english"
	LanguageMixed   Language = "mixed"
)

// Sentiment is the coarse tone signal attached to a result. It is
// supplementary: classifier failures degrade to neutral instead of failing
// the analysis.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// neutralConfidence is the overall confidence reported when no narrator
// mentions were found. Absence of narrators is not evidence of a bad
// analysis, so the prior is neutral rather than zero.
const neutralConfidence = 0.5

// Result is the full output of analyzing one text. Produced once per call,
// immutable, JSON-serializable for the export collaborators.
type Result struct {
	OriginalText      string              `json:"originalText"`
	NormalizedText    string              `json:"normalizedText"`
	NarratorMentions  []extractor.Mention `json:"narratorMentions"`
	OverallConfidence float64             `json:"overallConfidence"`
	Language          Language            `json:"language"`
	Sentiment         Sentiment           `json:"sentiment"`
	ReadabilityScore  float64             `json:"readabilityScore"`
	KeyTerms          []string            `json:"keyTerms"`
	ProcessingTimeMs  float64             `json:"processingTimeMs"`
}
