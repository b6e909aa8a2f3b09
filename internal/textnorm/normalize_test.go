package textnorm

import (
	"strings"
	"testing"
)

func TestNormalizeStripsDiacritics(t *testing.T) {
	input := "حَدَّثَنَا مُحَمَّدٌ"
	got := Normalize(input)
	want := "حدثنا محمد"
	if got != want {
		t.Fatalf("Normalize(%q) = %q, want %q", input, got, want)
	}
	for _, r := range got {
		if isDiacritic(r) {
			t.Fatalf("normalized output still contains diacritic %U", r)
		}
	}
}

func TestNormalizeFoldsLetterVariants(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"alef hamza above", "أحمد", "احمد"},
		{"alef madda", "آدم", "ادم"},
		{"alef hamza below", "إسماعيل", "اسماعيل"},
		{"teh marbuta", "عائشة", "عائشه"},
		{"alef maksura", "موسى", "موسي"},
		{"tatweel", "محمـــد", "محمد"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.input); got != tc.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestNormalizeCollapsesWhitespace(t *testing.T) {
	got := Normalize("  حدثنا \t\n محمد  ")
	want := "حدثنا محمد"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestNormalizeEmptyAndBlank(t *testing.T) {
	if got := Normalize(""); got != "" {
		t.Fatalf("Normalize(\"\") = %q, want empty", got)
	}
	if got := Normalize("   \t\n "); got != "" {
		t.Fatalf("Normalize(blank) = %q, want empty", got)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"حَدَّثَنَا مُحَمَّدُ بْنُ إِسْمَاعِيلَ",
		"Narrated by محمد: the Prophet said",
		"  mixed   whitespace\tand\nlines  ",
		"",
	}
	for _, input := range inputs {
		once := Normalize(input)
		twice := Normalize(once)
		if once != twice {
			t.Fatalf("Normalize not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}

func TestNormalizeWithOffsetsMapsBack(t *testing.T) {
	original := "قَالَ  مُحَمَّد"
	normalized, offsets := NormalizeWithOffsets(original)
	if len(offsets) != len(normalized)+1 {
		t.Fatalf("offsets length %d, want %d", len(offsets), len(normalized)+1)
	}

	idx := strings.Index(normalized, "محمد")
	if idx < 0 {
		t.Fatalf("expected %q in %q", "محمد", normalized)
	}
	start, end := SpanToOriginal(offsets, idx, idx+len("محمد"))
	if start < 0 || end > len(original) || start >= end {
		t.Fatalf("mapped span [%d,%d) out of range for original length %d", start, end, len(original))
	}
	slice := original[start:end]
	if Normalize(slice) != "محمد" {
		t.Fatalf("original slice %q does not normalize to %q", slice, "محمد")
	}
}

func TestSpanToOriginalClamps(t *testing.T) {
	_, offsets := NormalizeWithOffsets("ab")
	start, end := SpanToOriginal(offsets, -3, 99)
	if start != 0 || end != 2 {
		t.Fatalf("clamped span = [%d,%d), want [0,2)", start, end)
	}
}
