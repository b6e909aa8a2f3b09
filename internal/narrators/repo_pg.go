package narrators

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Upsert inserts or updates a narrator keyed by ID.
func (r *PGRepo) Upsert(ctx context.Context, narrator Narrator) error {
	const query = `
INSERT INTO narrators (id, name, normalized_name, full_name, kunya, generation, region, credibility, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
ON CONFLICT (id) DO UPDATE SET
  name = EXCLUDED.name,
  normalized_name = EXCLUDED.normalized_name,
  full_name = EXCLUDED.full_name,
  kunya = EXCLUDED.kunya,
  generation = EXCLUDED.generation,
  region = EXCLUDED.region,
  credibility = EXCLUDED.credibility,
  updated_at = now()`
	credibility := narrator.Credibility
	if credibility == "" {
		credibility = CredibilityUnknown
	}
	_, err := r.DB.ExecContext(ctx, query,
		narrator.ID,
		narrator.Name,
		narrator.NormalizedName,
		nullableString(narrator.FullName),
		nullableString(narrator.Kunya),
		nullableString(narrator.Generation),
		nullableString(narrator.Region),
		credibility,
	)
	return err
}

// GetByID returns a narrator by its ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Narrator, error) {
	const query = `
SELECT id, name, normalized_name, full_name, kunya, generation, region, credibility, opinions_count, created_at, updated_at
FROM narrators
WHERE id = $1
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, id))
}

// SearchByNormalizedName returns narrators whose normalized name contains
// the query, exact matches first.
func (r *PGRepo) SearchByNormalizedName(ctx context.Context, normalizedName string, limit int) ([]Narrator, error) {
	if limit <= 0 {
		limit = 20
	}
	const query = `
SELECT id, name, normalized_name, full_name, kunya, generation, region, credibility, opinions_count, created_at, updated_at
FROM narrators
WHERE normalized_name LIKE '%' || $1 || '%'
ORDER BY (normalized_name = $1) DESC, name ASC
LIMIT $2`
	rows, err := r.DB.QueryContext(ctx, query, normalizedName, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]Narrator, 0, limit)
	for rows.Next() {
		narrator, err := scanNarrator(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, narrator)
	}
	return results, rows.Err()
}

// AddOpinion records a scholar verdict and bumps the denormalized count.
func (r *PGRepo) AddOpinion(ctx context.Context, opinion Opinion) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const insert = `
INSERT INTO narrator_opinions (id, narrator_id, scholar, verdict, source, created_at)
VALUES ($1, $2, $3, $4, $5, now())`
	if _, err := tx.ExecContext(ctx, insert,
		opinion.ID,
		opinion.NarratorID,
		opinion.Scholar,
		opinion.Verdict,
		nullableString(opinion.Source),
	); err != nil {
		return err
	}

	const bump = `
UPDATE narrators SET opinions_count = opinions_count + 1, updated_at = now() WHERE id = $1`
	result, err := tx.ExecContext(ctx, bump, opinion.NarratorID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// ListOpinions returns recorded opinions for a narrator, oldest first.
func (r *PGRepo) ListOpinions(ctx context.Context, narratorID string) ([]Opinion, error) {
	const query = `
SELECT id, narrator_id, scholar, verdict, source, created_at
FROM narrator_opinions
WHERE narrator_id = $1
ORDER BY created_at ASC`
	rows, err := r.DB.QueryContext(ctx, query, narratorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	opinions := make([]Opinion, 0, 4)
	for rows.Next() {
		var opinion Opinion
		var source sql.NullString
		if err := rows.Scan(
			&opinion.ID,
			&opinion.NarratorID,
			&opinion.Scholar,
			&opinion.Verdict,
			&source,
			&opinion.CreatedAt,
		); err != nil {
			return nil, err
		}
		if source.Valid {
			opinion.Source = source.String
		}
		opinions = append(opinions, opinion)
	}
	return opinions, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PGRepo) scanOne(row rowScanner) (Narrator, error) {
	narrator, err := scanNarrator(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Narrator{}, ErrNotFound
		}
		return Narrator{}, err
	}
	return narrator, nil
}

func scanNarrator(row rowScanner) (Narrator, error) {
	var narrator Narrator
	var fullName sql.NullString
	var kunya sql.NullString
	var generation sql.NullString
	var region sql.NullString
	err := row.Scan(
		&narrator.ID,
		&narrator.Name,
		&narrator.NormalizedName,
		&fullName,
		&kunya,
		&generation,
		&region,
		&narrator.Credibility,
		&narrator.OpinionsCount,
		&narrator.CreatedAt,
		&narrator.UpdatedAt,
	)
	if err != nil {
		return Narrator{}, err
	}
	if fullName.Valid {
		narrator.FullName = fullName.String
	}
	if kunya.Valid {
		narrator.Kunya = kunya.String
	}
	if generation.Valid {
		narrator.Generation = generation.String
	}
	if region.Valid {
		narrator.Region = region.String
	}
	return narrator, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
