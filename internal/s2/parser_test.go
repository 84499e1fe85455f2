package s2

import "testing"

func TestParsePaperID(t *testing.T) {
	tests := []struct {
		input     string
		wantType  string
		wantValue string
	}{
		{"DOI:10.1038/nature12373", "DOI", "10.1038/nature12373"},
		{"doi:10.1038/nature12373", "DOI", "10.1038/nature12373"},
		{"10.1038/nature12373", "DOI", "10.1038/nature12373"},
		{"https://doi.org/10.1101/2024.01.02.123456", "DOI", "10.1101/2024.01.02.123456"},
		{"ARXIV:2106.15928", "ARXIV", "2106.15928"},
		{"PMID:19872477", "PMID", "19872477"},
		{"CorpusId:215416146", "CorpusId", "215416146"},
		{"649def34f8be52c8b66281af98ae884c09aef38b", "S2", "649def34f8be52c8b66281af98ae884c09aef38b"},
		{"MTAuMTAzOC9uYXR1cmUxMjM3Mw", "LOCAL", "MTAuMTAzOC9uYXR1cmUxMjM3Mw"},
		{"  ARXIV:2106.15928  ", "ARXIV", "2106.15928"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParsePaperID(tt.input)
			if got.Type != tt.wantType || got.Value != tt.wantValue {
				t.Errorf("ParsePaperID(%q) = %+v, want {%s %s}", tt.input, got, tt.wantType, tt.wantValue)
			}
		})
	}
}

func TestPaperIdentifier_String(t *testing.T) {
	tests := []struct {
		id   PaperIdentifier
		want string
	}{
		{PaperIdentifier{Type: "DOI", Value: "10.1/x"}, "DOI:10.1/x"},
		{PaperIdentifier{Type: "S2", Value: "abc"}, "abc"},
		{PaperIdentifier{Type: "LOCAL", Value: "lib"}, "lib"},
	}
	for _, tt := range tests {
		if got := tt.id.String(); got != tt.want {
			t.Errorf("%+v.String() = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestIsExternalID(t *testing.T) {
	if ParsePaperID("somelocalid").IsExternalID() {
		t.Error("local id reported as external")
	}
	if !ParsePaperID("10.1038/nature12373").IsExternalID() {
		t.Error("bare DOI reported as local")
	}
}

func TestNormalizeDOI(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"10.1038/Nature12373", "10.1038/nature12373"},
		{"DOI:10.1038/nature12373", "10.1038/nature12373"},
		{"https://doi.org/10.1038/NATURE12373", "10.1038/nature12373"},
		{"https://dx.doi.org/10.1038/nature12373", "10.1038/nature12373"},
		{"  10.1038/nature12373 ", "10.1038/nature12373"},
	}
	for _, tt := range tests {
		if got := NormalizeDOI(tt.input); got != tt.want {
			t.Errorf("NormalizeDOI(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
