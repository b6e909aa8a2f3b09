package narrators

import (
	"context"
	"errors"
)

// ErrNotFound indicates no narrator matched the lookup.
var ErrNotFound = errors.New("narrator not found")

// Repo defines persistence operations for narrator records.
type Repo interface {
	Upsert(ctx context.Context, narrator Narrator) error
	GetByID(ctx context.Context, id string) (Narrator, error)
	SearchByNormalizedName(ctx context.Context, normalizedName string, limit int) ([]Narrator, error)
	AddOpinion(ctx context.Context, opinion Opinion) error
	ListOpinions(ctx context.Context, narratorID string) ([]Opinion, error)
}
