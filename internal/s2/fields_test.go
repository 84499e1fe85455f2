package s2

import (
	"slices"
	"strings"
	"testing"
)

func TestFields(t *testing.T) {
	tests := []struct {
		mode        FetchMode
		wantNested  []string
		wantMissing []string
	}{
		{ModeBoth, []string{"citations.title", "references.citationCount"}, nil},
		{ModeCitations, []string{"citations.externalIds", "citations.openAccessPdf"}, []string{"references.title"}},
		{ModeReferences, []string{"references.authors", "references.publicationDate"}, []string{"citations.title"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			fields := Fields(tt.mode)

			for _, f := range append(slices.Clone(DirectFields), TopLevelFields...) {
				if !slices.Contains(fields, f) {
					t.Errorf("missing top-level field %q", f)
				}
			}
			for _, f := range tt.wantNested {
				if !slices.Contains(fields, f) {
					t.Errorf("missing nested field %q", f)
				}
			}
			for _, f := range tt.wantMissing {
				if slices.Contains(fields, f) {
					t.Errorf("unexpected field %q", f)
				}
			}
			for _, f := range fields {
				if strings.HasPrefix(f, "citations.tldr") || strings.HasPrefix(f, "references.tldr") {
					t.Errorf("tldr must not be requested for nested papers: %q", f)
				}
			}
		})
	}
}

func TestFields_Count(t *testing.T) {
	direct, top := len(DirectFields), len(TopLevelFields)
	if got := len(Fields(ModeBoth)); got != direct+top+2*direct {
		t.Errorf("ModeBoth has %d fields, want %d", got, direct+top+2*direct)
	}
	if got := len(Fields(ModeCitations)); got != direct+top+direct {
		t.Errorf("ModeCitations has %d fields, want %d", got, direct+top+direct)
	}
}

func TestParseFetchMode(t *testing.T) {
	tests := []struct {
		input   string
		want    FetchMode
		wantErr bool
	}{
		{"both", ModeBoth, false},
		{" Citations ", ModeCitations, false},
		{"REFERENCES", ModeReferences, false},
		{"all", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFetchMode(tt.input)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFetchMode(%q) = %q, %v; want %q, err=%v", tt.input, got, err, tt.want, tt.wantErr)
		}
	}
}
