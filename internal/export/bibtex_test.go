package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matsen/paperref/internal/graph"
	"github.com/matsen/paperref/internal/reference"
)

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }

func TestToBibTeX_BasicArticle(t *testing.T) {
	e := Entry{
		Key: "Smith2026-tp",
		Detail: reference.Detail{
			DOI:             strPtr("10.1234/test"),
			Title:           "Test Paper Title",
			Authors:         []string{"John Smith", "Jane Doe"},
			Abstract:        strPtr("This is the abstract"),
			Year:            intPtr(2026),
			PublicationDate: strPtr("2026-03-14"),
			Journal:         strPtr("Nature"),
		},
	}

	got := ToBibTeX(e)

	if !strings.HasPrefix(got, "@article{Smith2026-tp,") {
		t.Errorf("ToBibTeX() should start with @article{Smith2026-tp, got:\n%s", got)
	}
	for _, want := range []string{
		`author = {Smith, John and Doe, Jane}`,
		`title = {Test Paper Title}`,
		`journal = {Nature}`,
		`year = {2026}`,
		`month = {3}`,
		`doi = {10.1234/test}`,
		`abstract = {This is the abstract}`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("ToBibTeX() missing %q, got:\n%s", want, got)
		}
	}
	if !strings.HasSuffix(got, "}\n") {
		t.Errorf("ToBibTeX() should end with closing brace")
	}
}

func TestToBibTeX_Inproceedings(t *testing.T) {
	got := ToBibTeX(Entry{Key: "k", Detail: reference.Detail{
		Title:   "A talk",
		Journal: strPtr("Proceedings of ICML"),
	}})

	if !strings.HasPrefix(got, "@inproceedings{k,") {
		t.Errorf("want inproceedings, got:\n%s", got)
	}
	if !strings.Contains(got, "booktitle = {Proceedings of ICML}") {
		t.Errorf("want booktitle, got:\n%s", got)
	}
}

func TestToBibTeX_OptionalFields(t *testing.T) {
	got := ToBibTeX(Entry{Key: "k", Detail: reference.Detail{
		Title: "Bare",
		ArXiv: strPtr("2101.00001"),
	}})

	for _, absent := range []string{"author =", "journal =", "year =", "month =", "doi =", "abstract ="} {
		if strings.Contains(got, absent) {
			t.Errorf("unexpected %q in:\n%s", absent, got)
		}
	}
	if !strings.Contains(got, "eprint = {2101.00001}") || !strings.Contains(got, "archiveprefix = {arXiv}") {
		t.Errorf("missing arXiv fields:\n%s", got)
	}
}

func TestCiteKey(t *testing.T) {
	tests := []struct {
		name   string
		detail reference.Detail
		want   string
	}{
		{
			name:   "standard",
			detail: reference.Detail{Title: "The Structure of Networks", Authors: []string{"Mark Newman"}, Year: intPtr(2003)},
			want:   "Newman2003-sn",
		},
		{
			name:   "suffix kept with last name",
			detail: reference.Detail{Title: "Deep learning", Authors: []string{"Martin Luther King Jr."}, Year: intPtr(2015)},
			want:   "KingJr2015-dl",
		},
		{
			name:   "no authors or year",
			detail: reference.Detail{Title: "Anonymous"},
			want:   "Unknown9999-ax",
		},
		{
			name:   "accented name",
			detail: reference.Detail{Title: "Über alles", Authors: []string{"Paul Erdős"}, Year: intPtr(1959)},
			want:   "Erdős1959-üa",
		},
		{
			name:   "empty title",
			detail: reference.Detail{Authors: []string{"Cher"}, Year: intPtr(1999)},
			want:   "Cher1999-xx",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CiteKey(tt.detail); got != tt.want {
				t.Errorf("CiteKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEntries_UniqueKeys(t *testing.T) {
	d := reference.Detail{Title: "Same title", Authors: []string{"A Smith"}, Year: intPtr(2020)}
	entries := Entries([]graph.Node{{ID: "1", Detail: d}, {ID: "2", Detail: d}, {ID: "3", Detail: d}})

	var keys []string
	for _, e := range entries {
		keys = append(keys, e.Key)
	}
	if got, want := strings.Join(keys, ","), "Smith2020-st,Smith2020-st2,Smith2020-st3"; got != want {
		t.Errorf("keys = %s, want %s", got, want)
	}
}

func TestFormatAuthors(t *testing.T) {
	tests := []struct {
		name    string
		authors []string
		want    string
	}{
		{"single", []string{"John Smith"}, "Smith, John"},
		{"middle name", []string{"John Q Smith"}, "Smith, John Q"},
		{"mononym", []string{"Madonna"}, "Madonna"},
		{"blank skipped", []string{"  ", "Jane Doe"}, "Doe, Jane"},
		{"multiple", []string{"A B", "C D", "E F"}, "B, A and D, C and F, E"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatAuthors(tt.authors); got != tt.want {
				t.Errorf("formatAuthors() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEscapeLatex(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"A & B", `A \& B`},
		{"100%", `100\%`},
		{"x_1 {y}", `x\_1 \{y\}`},
		{`a\b`, `a\textbackslash{}b`},
		{"~^", `\textasciitilde{}\textasciicircum{}`},
	}

	for _, tt := range tests {
		if got := escapeLatex(tt.in); got != tt.want {
			t.Errorf("escapeLatex(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPublicationMonth(t *testing.T) {
	tests := []struct {
		date *string
		want int
	}{
		{nil, 0},
		{strPtr("2020"), 0},
		{strPtr("2020-07-01"), 7},
		{strPtr("2020-13-01"), 0},
	}
	for _, tt := range tests {
		if got := publicationMonth(tt.date); got != tt.want {
			t.Errorf("publicationMonth() = %d, want %d", got, tt.want)
		}
	}
}

func TestAppendNew(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refs.bib")
	existing := "@article{Smith2020-st,\n  title = {Same title},\n  doi = {10.1/EXISTING},\n}\n"
	if err := os.WriteFile(path, []byte(existing), 0644); err != nil {
		t.Fatal(err)
	}

	entries := []Entry{
		{Key: "Other2021-xx", Detail: reference.Detail{Title: "Dup by DOI", DOI: strPtr("https://doi.org/10.1/existing")}},
		{Key: "Smith2020-st", Detail: reference.Detail{Title: "Key clash", DOI: strPtr("10.1/new")}},
		{Key: "Smith2020-st", Detail: reference.Detail{Title: "Dup by key"}},
		{Key: "Fresh2022-ab", Detail: reference.Detail{Title: "Fresh"}},
	}

	added, err := AppendNew(path, entries)
	if err != nil {
		t.Fatalf("AppendNew() error = %v", err)
	}
	if added != 2 {
		t.Errorf("added = %d, want 2", added)
	}

	idx, err := ParseBibTeXFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"Smith2020-st", "Smith2020-st2", "Fresh2022-ab"} {
		if !idx.Keys[key] {
			t.Errorf("missing key %s", key)
		}
	}
	if idx.DOIs["10.1/new"] != "Smith2020-st2" {
		t.Errorf("DOIs = %v", idx.DOIs)
	}

	added, err = AppendNew(path, entries)
	if err != nil || added != 0 {
		t.Errorf("second AppendNew() = %d, %v; want 0, nil", added, err)
	}
}

func TestParseBibTeXFile_Missing(t *testing.T) {
	idx, err := ParseBibTeXFile(filepath.Join(t.TempDir(), "none.bib"))
	if err != nil {
		t.Fatalf("ParseBibTeXFile() error = %v", err)
	}
	if len(idx.Keys) != 0 || len(idx.DOIs) != 0 {
		t.Errorf("expected empty index")
	}
}
