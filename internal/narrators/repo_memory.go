package narrators

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryRepo stores narrators in memory and is safe for concurrent use. It
// backs deployments without a database and the test suites.
type MemoryRepo struct {
	mu       sync.RWMutex
	byID     map[string]Narrator
	opinions map[string][]Opinion
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:     make(map[string]Narrator),
		opinions: make(map[string][]Opinion),
	}
}

// Upsert stores or replaces the narrator.
func (r *MemoryRepo) Upsert(ctx context.Context, narrator Narrator) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if existing, ok := r.byID[narrator.ID]; ok {
		narrator.CreatedAt = existing.CreatedAt
	} else if narrator.CreatedAt.IsZero() {
		narrator.CreatedAt = now
	}
	narrator.UpdatedAt = now
	r.byID[narrator.ID] = narrator
	return nil
}

// GetByID returns a narrator by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Narrator, error) {
	if err := ctx.Err(); err != nil {
		return Narrator{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	narrator, ok := r.byID[id]
	if !ok {
		return Narrator{}, ErrNotFound
	}
	return narrator, nil
}

// SearchByNormalizedName returns narrators whose normalized name contains
// the query, exact matches first, then by name.
func (r *MemoryRepo) SearchByNormalizedName(ctx context.Context, normalizedName string, limit int) ([]Narrator, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}

	r.mu.RLock()
	matches := make([]Narrator, 0, 4)
	for _, narrator := range r.byID {
		if strings.Contains(narrator.NormalizedName, normalizedName) {
			matches = append(matches, narrator)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		exactI := matches[i].NormalizedName == normalizedName
		exactJ := matches[j].NormalizedName == normalizedName
		if exactI != exactJ {
			return exactI
		}
		return matches[i].Name < matches[j].Name
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// AddOpinion records a scholar verdict and bumps the narrator count.
func (r *MemoryRepo) AddOpinion(ctx context.Context, opinion Opinion) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	narrator, ok := r.byID[opinion.NarratorID]
	if !ok {
		return ErrNotFound
	}
	if opinion.CreatedAt.IsZero() {
		opinion.CreatedAt = time.Now().UTC()
	}
	r.opinions[opinion.NarratorID] = append(r.opinions[opinion.NarratorID], opinion)
	narrator.OpinionsCount = len(r.opinions[opinion.NarratorID])
	narrator.UpdatedAt = time.Now().UTC()
	r.byID[opinion.NarratorID] = narrator
	return nil
}

// ListOpinions returns recorded opinions for a narrator, oldest first.
func (r *MemoryRepo) ListOpinions(ctx context.Context, narratorID string) ([]Opinion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.byID[narratorID]; !ok {
		return nil, ErrNotFound
	}
	stored := r.opinions[narratorID]
	out := make([]Opinion, len(stored))
	copy(out, stored)
	return out, nil
}
