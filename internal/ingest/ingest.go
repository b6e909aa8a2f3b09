// Package ingest turns uploaded documents into analyzable hadith texts:
// PDF text extraction, Unicode cleanup, and segmentation into individual
// narrations.
package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	mimePDF = "application/pdf"

	// minSegmentRunes filters page furniture (numbers, headers) out of the
	// segment list.
	minSegmentRunes = 20
)

// chainOpeners mark the start of a new narration when they open a line.
var chainOpeners = []string{"حدثنا", "حدثني", "أخبرنا", "أخبرني", "أنبأنا"}

// ExtractTexts pulls text from an uploaded payload and segments it into
// narrations ready for batch analysis.
// Library used: github.com/ledongthuc/pdf.
func ExtractTexts(ctx context.Context, data []byte, mimeType string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	if clean != mimePDF {
		return nil, fmt.Errorf("unsupported mime type: %s", clean)
	}
	raw, err := extractPDF(data)
	if err != nil {
		return nil, fmt.Errorf("extract pdf: %w", err)
	}
	return Segment(CleanText(raw)), nil
}

func extractPDF(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// CleanText applies NFKC normalization and strips zero-width format
// characters that PDF extraction tends to leave behind. Diacritics are
// kept; downstream normalization owns those.
func CleanText(text string) string {
	t := transform.Chain(
		norm.NFKC,
		runes.Remove(runes.In(unicode.Cf)),
	)
	cleaned, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return cleaned
}

// Segment splits extracted text into individual narrations. A new segment
// starts at a blank line or at a line opening with a transmission verb.
func Segment(text string) []string {
	segments := make([]string, 0, 8)
	var current strings.Builder

	flush := func() {
		segment := strings.TrimSpace(current.String())
		current.Reset()
		if len([]rune(segment)) >= minSegmentRunes {
			segments = append(segments, segment)
		}
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flush()
			continue
		}
		if opensChain(trimmed) && current.Len() > 0 {
			flush()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(trimmed)
	}
	flush()
	return segments
}

func opensChain(line string) bool {
	for _, opener := range chainOpeners {
		if strings.HasPrefix(line, opener) {
			return true
		}
	}
	return false
}
