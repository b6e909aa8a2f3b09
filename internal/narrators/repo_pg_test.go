package narrators

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoUpsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	narrator := Narrator{
		ID:             "narrator-1",
		Name:           "محمد بن إسماعيل البخاري",
		NormalizedName: "محمد بن اسماعيل البخاري",
		Kunya:          "أبو عبد الله",
		Generation:     "tabi-tabiin",
		Region:         "Bukhara",
		Credibility:    CredibilityTrustworthy,
	}

	mock.ExpectExec("INSERT INTO narrators").
		WithArgs(
			narrator.ID,
			narrator.Name,
			narrator.NormalizedName,
			nil, // full_name
			narrator.Kunya,
			narrator.Generation,
			narrator.Region,
			narrator.Credibility,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Upsert(context.Background(), narrator); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoUpsertDefaultsCredibility(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectExec("INSERT INTO narrators").
		WithArgs("narrator-2", "علي", "علي", nil, nil, nil, nil, CredibilityUnknown).
		WillReturnResult(sqlmock.NewResult(1, 1))

	narrator := Narrator{ID: "narrator-2", Name: "علي", NormalizedName: "علي"}
	if err := repo.Upsert(context.Background(), narrator); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoSearchByNormalizedName(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Now().UTC()
	columns := []string{
		"id", "name", "normalized_name", "full_name", "kunya", "generation",
		"region", "credibility", "opinions_count", "created_at", "updated_at",
	}
	rows := sqlmock.NewRows(columns).
		AddRow("narrator-1", "محمد بن إسماعيل", "محمد بن اسماعيل", nil, nil, nil, nil, CredibilityTrustworthy, 3, now, now).
		AddRow("narrator-2", "محمد بن سيرين", "محمد بن سيرين", "محمد بن سيرين البصري", nil, nil, "Basra", CredibilityTrustworthy, 1, now, now)

	mock.ExpectQuery("SELECT (.+) FROM narrators").
		WithArgs("محمد", 10).
		WillReturnRows(rows)

	repo := &PGRepo{DB: db}
	results, err := repo.SearchByNormalizedName(context.Background(), "محمد", 10)
	if err != nil {
		t.Fatalf("SearchByNormalizedName: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if results[0].OpinionsCount != 3 {
		t.Fatalf("opinions_count = %d, want 3", results[0].OpinionsCount)
	}
	if results[1].FullName != "محمد بن سيرين البصري" || results[1].Region != "Basra" {
		t.Fatalf("nullable columns not mapped: %+v", results[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("SELECT (.+) FROM narrators").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := &PGRepo{DB: db}
	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestPGRepoAddOpinionUnknownNarrator(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO narrator_opinions").
		WithArgs("opinion-1", "missing", "يحيى بن معين", "ثقة", nil).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE narrators SET opinions_count").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	repo := &PGRepo{DB: db}
	opinion := Opinion{ID: "opinion-1", NarratorID: "missing", Scholar: "يحيى بن معين", Verdict: "ثقة"}
	if err := repo.AddOpinion(context.Background(), opinion); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
