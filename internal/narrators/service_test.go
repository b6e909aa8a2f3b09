package narrators

import (
	"context"
	"errors"
	"testing"

	"rijal-backend/internal/extractor"
)

func seedRepo(t *testing.T) *MemoryRepo {
	t.Helper()
	repo := NewMemoryRepo()
	svc := NewService(repo)
	err := svc.Seed(context.Background(), []Narrator{
		{ID: "bukhari", Name: "محمد بن إسماعيل البخاري", Credibility: CredibilityTrustworthy},
		{ID: "ibn-sirin", Name: "محمد بن سيرين"},
		{ID: "abu-hurayra", Name: "أبو هريرة", Credibility: CredibilityTrustworthy},
	})
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	return repo
}

func TestSearchNormalizesQuery(t *testing.T) {
	svc := NewService(seedRepo(t))

	// Diacritized query must match the stored record.
	results, err := svc.Search(context.Background(), "مُحَمَّد بن إِسماعيل", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != "bukhari" {
		t.Fatalf("results = %+v, want bukhari", results)
	}
}

func TestSearchExactMatchFirst(t *testing.T) {
	svc := NewService(seedRepo(t))

	results, err := svc.Search(context.Background(), "محمد بن سيرين", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) == 0 || results[0].ID != "ibn-sirin" {
		t.Fatalf("exact match should rank first, got %+v", results)
	}
}

func TestSearchBlankQuery(t *testing.T) {
	svc := NewService(seedRepo(t))
	results, err := svc.Search(context.Background(), "  ", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("blank query returned %d results", len(results))
	}
}

func TestSeedDefaultsCredibility(t *testing.T) {
	repo := seedRepo(t)
	narrator, err := repo.GetByID(context.Background(), "ibn-sirin")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if narrator.Credibility != CredibilityUnknown {
		t.Fatalf("credibility = %q, want %q", narrator.Credibility, CredibilityUnknown)
	}
	if narrator.NormalizedName == "" {
		t.Fatal("seed must fill normalized name")
	}
}

func TestMatchMentions(t *testing.T) {
	svc := NewService(seedRepo(t))

	mentions := []extractor.Mention{
		{Name: "أَبُو هُرَيرة", Confidence: 0.7, Category: extractor.CategoryCompanion},
		{Name: "زيد بن ثابت", Confidence: 0.7, Category: extractor.CategoryUncertain},
	}
	matches, err := svc.MatchMentions(context.Background(), mentions)
	if err != nil {
		t.Fatalf("MatchMentions: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("len(matches) = %d, want 2", len(matches))
	}
	if len(matches[0].Candidates) != 1 || matches[0].Candidates[0].ID != "abu-hurayra" {
		t.Fatalf("known companion not matched: %+v", matches[0].Candidates)
	}
	if len(matches[1].Candidates) != 0 {
		t.Fatalf("unknown mention should have no candidates, got %+v", matches[1].Candidates)
	}
}

func TestMemoryRepoOpinions(t *testing.T) {
	repo := seedRepo(t)

	opinion := Opinion{ID: "op-1", NarratorID: "bukhari", Scholar: "الذهبي", Verdict: "إمام حافظ"}
	if err := repo.AddOpinion(context.Background(), opinion); err != nil {
		t.Fatalf("AddOpinion: %v", err)
	}
	narrator, err := repo.GetByID(context.Background(), "bukhari")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if narrator.OpinionsCount != 1 {
		t.Fatalf("opinions_count = %d, want 1", narrator.OpinionsCount)
	}
	opinions, err := repo.ListOpinions(context.Background(), "bukhari")
	if err != nil {
		t.Fatalf("ListOpinions: %v", err)
	}
	if len(opinions) != 1 || opinions[0].Verdict != "إمام حافظ" {
		t.Fatalf("opinions = %+v", opinions)
	}

	err = repo.AddOpinion(context.Background(), Opinion{ID: "op-2", NarratorID: "missing", Scholar: "x", Verdict: "y"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
