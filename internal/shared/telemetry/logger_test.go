package telemetry

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateInputShortTextUnchanged(t *testing.T) {
	if got := TruncateInput("حدثنا محمد"); got != "حدثنا محمد" {
		t.Fatalf("short text changed: %q", got)
	}
}

func TestTruncateInputLongTextGetsEllipsis(t *testing.T) {
	long := strings.Repeat("a", 500)
	got := TruncateInput(long)
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("truncated text %q lacks ellipsis", got)
	}
	if len(got) > 123 {
		t.Fatalf("truncated length = %d, want <= 123", len(got))
	}
}

func TestTruncateInputKeepsRunesIntact(t *testing.T) {
	// Arabic letters are two bytes each and the phrase is 54 bytes, so
	// byte 120 lands in the middle of a letter.
	long := strings.Repeat("حدثنا محمد بن إسماعيل عن مالك ", 20)
	got := TruncateInput(long)
	if !utf8.ValidString(got) {
		t.Fatalf("truncated text is not valid UTF-8: %q", got)
	}
	if strings.ContainsRune(got, utf8.RuneError) {
		t.Fatalf("truncated text contains replacement rune: %q", got)
	}
	body := strings.TrimSuffix(got, "...")
	if !strings.HasPrefix(long, body) {
		t.Fatalf("truncated body %q is not a prefix of the input", body)
	}
}
