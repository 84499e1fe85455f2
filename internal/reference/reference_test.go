package reference

import (
	"encoding/base64"
	"testing"
)

func TestLibraryID(t *testing.T) {
	tests := []struct {
		doi  string
		want string
	}{
		{"10.1038/nature12373", "MTAuMTAzOC9uYXR1cmUxMjM3Mw"},
		{"  10.1038/nature12373\n", "MTAuMTAzOC9uYXR1cmUxMjM3Mw"},
		{"10.1038/NATURE12373", "MTAuMTAzOC9uYXR1cmUxMjM3Mw"},
		{"10.1/a?b", "MTAuMS9hP2I"},
	}

	for _, tt := range tests {
		got := LibraryID(tt.doi)
		if got != tt.want {
			t.Errorf("LibraryID(%q) = %q, want %q", tt.doi, got, tt.want)
		}
		decoded, err := base64.RawURLEncoding.DecodeString(got)
		if err != nil {
			t.Fatalf("LibraryID(%q) is not raw URL base64: %v", tt.doi, err)
		}
		if string(decoded) == "" {
			t.Errorf("LibraryID(%q) decodes to an empty string", tt.doi)
		}
	}
}

func TestNewPaper(t *testing.T) {
	p := NewPaper(" 10.1/x ", "  A title ")
	if p.DOI != "10.1/x" || p.Title != "A title" || p.ID != LibraryID("10.1/x") {
		t.Errorf("NewPaper() = %+v", p)
	}
	if p.S2ID != "" {
		t.Errorf("S2ID = %q, want empty", p.S2ID)
	}
}

func TestDetailCounts(t *testing.T) {
	var d Detail
	if d.Citations() != 0 || d.References() != 0 {
		t.Errorf("absent counts should read as zero")
	}

	c, r := 12, 3
	d.CitationCount, d.ReferenceCount = &c, &r
	if d.Citations() != 12 || d.References() != 3 {
		t.Errorf("Citations() = %d, References() = %d", d.Citations(), d.References())
	}
}
