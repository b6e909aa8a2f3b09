package narrators

import (
	"context"
	"fmt"
	"strings"

	"rijal-backend/internal/extractor"
	"rijal-backend/internal/textnorm"
)

const defaultSearchLimit = 20

// Service wraps a Repo with normalization-aware lookups.
type Service struct {
	Repo Repo
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// Search finds narrators matching the raw (possibly diacritized) name.
func (s *Service) Search(ctx context.Context, name string, limit int) ([]Narrator, error) {
	normalized := textnorm.Normalize(name)
	if normalized == "" {
		return []Narrator{}, nil
	}
	if limit <= 0 || limit > 100 {
		limit = defaultSearchLimit
	}
	results, err := s.Repo.SearchByNormalizedName(ctx, normalized, limit)
	if err != nil {
		return nil, fmt.Errorf("search narrators: %w", err)
	}
	if results == nil {
		results = []Narrator{}
	}
	return results, nil
}

// Match pairs extracted mentions with known narrator records. Mentions
// without a match are returned with an empty candidate list, never dropped.
type Match struct {
	Mention    extractor.Mention `json:"mention"`
	Candidates []Narrator        `json:"candidates"`
}

// MatchMentions looks up each mention by normalized name. Duplicate names
// are resolved once.
func (s *Service) MatchMentions(ctx context.Context, mentions []extractor.Mention) ([]Match, error) {
	matches := make([]Match, 0, len(mentions))
	cache := make(map[string][]Narrator, len(mentions))
	for _, mention := range mentions {
		key := strings.ToLower(textnorm.Normalize(mention.Name))
		candidates, ok := cache[key]
		if !ok {
			found, err := s.Search(ctx, mention.Name, 5)
			if err != nil {
				return nil, err
			}
			candidates = found
			cache[key] = candidates
		}
		matches = append(matches, Match{Mention: mention, Candidates: candidates})
	}
	return matches, nil
}

// Seed loads an initial set of narrator records, normalizing names as it
// goes. Used at startup when a seed list is configured.
func (s *Service) Seed(ctx context.Context, records []Narrator) error {
	for _, record := range records {
		if record.NormalizedName == "" {
			record.NormalizedName = textnorm.Normalize(record.Name)
		}
		if record.Credibility == "" {
			record.Credibility = CredibilityUnknown
		}
		if err := s.Repo.Upsert(ctx, record); err != nil {
			return fmt.Errorf("seed narrator %s: %w", record.ID, err)
		}
	}
	return nil
}
