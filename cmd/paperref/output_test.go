package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/matsen/paperref/internal/embedding"
	"github.com/matsen/paperref/internal/graph"
	"github.com/matsen/paperref/internal/library"
	"github.com/matsen/paperref/internal/recommend"
	"github.com/matsen/paperref/internal/s2"
)

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"rate limited in batch", &s2.BatchError{Err: s2.ErrRateLimited}, ExitS2RateLimited},
		{"rate limited status", &s2.APIError{StatusCode: 429}, ExitS2RateLimited},
		{"upstream status", fmt.Errorf("building graph: %w", &s2.BatchError{Err: &s2.APIError{StatusCode: 500}}), ExitS2APIError},
		{"network", s2.ErrNetworkError, ExitS2APIError},
		{"not in library", fmt.Errorf("%w: x", library.ErrNotFound), ExitS2NotFound},
		{"ollama down", fmt.Errorf("%w: refused", embedding.ErrUnavailable), ExitEmbeddingError},
		{"empty seed", graph.ErrEmptySeed, ExitDataError},
		{"empty library", recommend.ErrEmptyLibrary, ExitDataError},
		{"bad mode", s2.ErrInvalidFetchMode, ExitDataError},
		{"empty query", s2.ErrEmptyQuery, ExitDataError},
		{"other", errors.New("boom"), ExitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"a longer title here", 10, "a longe..."},
		{"naïve résumé café", 8, "naïve..."},
	}
	for _, tt := range tests {
		if got := truncateString(tt.in, tt.maxLen); got != tt.want {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
		}
	}
}

func TestFormatAuthorsShort(t *testing.T) {
	tests := []struct {
		authors []string
		want    string
	}{
		{nil, ""},
		{[]string{"Ada Lovelace"}, "Lovelace"},
		{[]string{"A Smith", "B Jones", "C Brown", "D White"}, "Smith, Jones, Brown, et al."},
		{[]string{"Madonna", " "}, "Madonna"},
	}
	for _, tt := range tests {
		if got := formatAuthorsShort(tt.authors, 3); got != tt.want {
			t.Errorf("formatAuthorsShort(%v) = %q, want %q", tt.authors, got, tt.want)
		}
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("one two three four", 9, "  ")
	if want := "one two\n  three\n  four"; got != want {
		t.Errorf("wrapText() = %q, want %q", got, want)
	}
	if got := wrapText("short", 9, "  "); got != "short" {
		t.Errorf("wrapText() = %q", got)
	}
}

func TestParseLogLevel(t *testing.T) {
	for _, ok := range []string{"debug", "INFO", "warn", "error"} {
		if _, err := parseLogLevel(ok); err != nil {
			t.Errorf("parseLogLevel(%q) error = %v", ok, err)
		}
	}
	if _, err := parseLogLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}
