package extractor

// Category classifies how a mention relates to the chain of transmission.
type Category string

const (
	CategoryNarrator  Category = "narrator"
	CategoryCompanion Category = "companion"
	CategoryScholar   Category = "scholar"
	CategoryUncertain Category = "uncertain"
)

// Span is a half-open byte range into the original (non-normalized) input,
// used for highlighting.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Mention is a single detected occurrence of a narrator name. Created fresh
// per extraction call and never mutated afterwards; persistence is the
// storage collaborator's concern.
type Mention struct {
	Name       string   `json:"name"`
	Confidence float64  `json:"confidence"`
	Span       Span     `json:"span"`
	Category   Category `json:"category"`
}
