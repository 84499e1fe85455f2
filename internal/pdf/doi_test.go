package pdf

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestFindDOI(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"plain", "Published as doi:10.1038/nature12373 in 2013", "10.1038/nature12373"},
		{"url", "https://doi.org/10.1101/2020.01.01.123456.", "10.1101/2020.01.01.123456"},
		{"trailing paren", "(see 10.1145/3292500.3330701)", "10.1145/3292500.3330701"},
		{"first of several", "10.1000/first and 10.1000/second", "10.1000/first"},
		{"too few registrant digits", "10.123/abc", ""},
		{"none", "no identifiers here", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := findDOI(tt.text); got != tt.want {
				t.Errorf("findDOI(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestIsValidDOI(t *testing.T) {
	tests := []struct {
		doi  string
		want bool
	}{
		{"10.1038/nature12373", true},
		{"10.1038/", false},
		{"11.1038/nature", false},
		{"10.1/x", false},
	}
	for _, tt := range tests {
		if got := isValidDOI(tt.doi); got != tt.want {
			t.Errorf("isValidDOI(%q) = %v, want %v", tt.doi, got, tt.want)
		}
	}
}

func TestExtractDOI_NotAPDF(t *testing.T) {
	if _, err := ExtractDOI(filepath.Join(t.TempDir(), "missing.pdf")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := ExtractDOIReader(strings.NewReader("not a pdf"), 9); err == nil {
		t.Error("expected error for non-pdf content")
	}
}
