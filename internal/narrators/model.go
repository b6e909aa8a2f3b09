// Package narrators stores biographical records of hadith transmitters and
// matches extracted mentions against them.
package narrators

import "time"

// Credibility grades follow the classical rijal verdict ladder, collapsed
// to coarse buckets.
const (
	CredibilityTrustworthy = "trustworthy"
	CredibilityAcceptable  = "acceptable"
	CredibilityWeak        = "weak"
	CredibilityUnknown     = "unknown"
)

// Narrator is one biographical record. NormalizedName is the lookup key:
// diacritics stripped and letter variants folded, so mentions extracted
// from normalized text match directly.
type Narrator struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	NormalizedName string    `json:"-"`
	FullName       string    `json:"fullName,omitempty"`
	Kunya          string    `json:"kunya,omitempty"`
	Generation     string    `json:"generation,omitempty"`
	Region         string    `json:"region,omitempty"`
	Credibility    string    `json:"credibility"`
	OpinionsCount  int       `json:"opinionsCount"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Opinion is one scholar's recorded verdict on a narrator.
type Opinion struct {
	ID         string    `json:"id"`
	NarratorID string    `json:"narratorId"`
	Scholar    string    `json:"scholar"`
	Verdict    string    `json:"verdict"`
	Source     string    `json:"source,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
