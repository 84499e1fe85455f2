package recommend

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/matsen/paperref/internal/embedding"
	"github.com/matsen/paperref/internal/reference"
	"github.com/matsen/paperref/internal/s2"
)

func intPtr(n int) *int { return &n }

func paper(id string, citations int) s2.S2Paper {
	return s2.S2Paper{PaperID: id, Title: "About " + id, CitationCount: intPtr(citations)}
}

type fakeSource struct {
	recommended []s2.S2Paper
	records     map[string]*s2.S2Paper
	recsErr     error
	gotIDs      []string
}

func (f *fakeSource) Recommendations(_ context.Context, ids []string, _ int) ([]s2.S2Paper, error) {
	f.gotIDs = ids
	return f.recommended, f.recsErr
}

func (f *fakeSource) FetchBatched(_ context.Context, ids []string, _ s2.FetchMode) ([]*s2.S2Paper, error) {
	out := make([]*s2.S2Paper, len(ids))
	for i, id := range ids {
		out[i] = f.records[id]
	}
	return out, nil
}

func testLibrary() []reference.Paper {
	a := reference.NewPaper("10.1/a", "Library A")
	a.S2ID = "LA"
	b := reference.NewPaper("10.1/b", "Library B")
	return []reference.Paper{a, b}
}

func testSource() *fakeSource {
	la := paper("LA", 5)
	la.References = []s2.S2Paper{paper("R1", 40), paper("SHARED", 99)}
	la.Citations = []s2.S2Paper{paper("C1", 7), paper("LB", 1)}

	lb := paper("LB", 3)
	lb.ExternalIDs = &s2.ExternalIDs{DOI: "10.1/b"}
	lb.References = []s2.S2Paper{paper("R2", 1)}

	inLibraryByDOI := paper("DUP", 1000)
	inLibraryByDOI.ExternalIDs = &s2.ExternalIDs{DOI: "10.1/A"}

	return &fakeSource{
		recommended: []s2.S2Paper{paper("REC1", 10), paper("SHARED", 99), inLibraryByDOI, {Title: "no id"}},
		records: map[string]*s2.S2Paper{
			"LA":         &la,
			"DOI:10.1/b": &lb,
		},
	}
}

func ids(recs []Recommendation) string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return strings.Join(out, ",")
}

func TestRecommend_ByCitations(t *testing.T) {
	src := testSource()
	r := New(src, nil, nil)

	recs, err := r.Recommend(context.Background(), testLibrary(), Options{})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	if got := strings.Join(src.gotIDs, ","); got != "LA,LB" {
		t.Errorf("positive ids = %s, want upstream paper ids", got)
	}
	if got, want := ids(recs), "SHARED,R1,REC1,C1,R2"; got != want {
		t.Errorf("recommendations = %s, want %s", got, want)
	}
	if recs[0].Origin != FromRecommendations {
		t.Errorf("SHARED origin = %s, want first occurrence %s", recs[0].Origin, FromRecommendations)
	}
	if recs[1].Score != 40 {
		t.Errorf("R1 score = %f, want 40", recs[1].Score)
	}
}

func TestRecommend_Limit(t *testing.T) {
	r := New(testSource(), nil, nil)

	recs, err := r.Recommend(context.Background(), testLibrary(), Options{Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if got := ids(recs); got != "SHARED,R1" {
		t.Errorf("recommendations = %s", got)
	}
}

func TestRecommend_EmptyLibrary(t *testing.T) {
	r := New(testSource(), nil, nil)
	if _, err := r.Recommend(context.Background(), nil, Options{}); !errors.Is(err, ErrEmptyLibrary) {
		t.Errorf("error = %v, want ErrEmptyLibrary", err)
	}
}

func TestRecommend_NothingFoundUpstream(t *testing.T) {
	src := &fakeSource{recommended: []s2.S2Paper{paper("REC1", 10)}}
	r := New(src, nil, nil)

	recs, err := r.Recommend(context.Background(), testLibrary(), Options{})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("recommendations = %s, want none", ids(recs))
	}
	if src.gotIDs != nil {
		t.Errorf("recommendations endpoint called with %v", src.gotIDs)
	}
}

func TestRecommend_UpstreamError(t *testing.T) {
	src := testSource()
	src.recsErr = s2.ErrRateLimited
	r := New(src, nil, nil)

	if _, err := r.Recommend(context.Background(), testLibrary(), Options{}); !s2.IsRateLimited(err) {
		t.Errorf("error = %v, want rate limited", err)
	}
}

// keywordEmbedder maps text onto two axes: mentions of "graph" and of "protein".
type keywordEmbedder struct{}

func (keywordEmbedder) Embed(_ context.Context, text string) (embedding.Embedding, error) {
	text = strings.ToLower(text)
	return embedding.Embedding{Vector: []float32{
		float32(strings.Count(text, "graph")),
		float32(strings.Count(text, "protein")),
	}}, nil
}

func (keywordEmbedder) ModelName() string { return "keywords" }

func TestRecommend_Semantic(t *testing.T) {
	la := s2.S2Paper{PaperID: "LA", Title: "graph methods"}
	la.References = []s2.S2Paper{
		{PaperID: "P1", Title: "protein folding", CitationCount: intPtr(1000)},
		{PaperID: "G1", Title: "graph theory", CitationCount: intPtr(1)},
		{PaperID: "M1", Title: "graph protein", CitationCount: intPtr(5)},
	}
	src := &fakeSource{records: map[string]*s2.S2Paper{"LA": &la}}

	lib := reference.NewPaper("10.1/a", "graph methods")
	lib.S2ID = "LA"

	r := New(src, keywordEmbedder{}, nil)
	recs, err := r.Recommend(context.Background(), []reference.Paper{lib}, Options{Semantic: true})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if got, want := ids(recs), "G1,M1,P1"; got != want {
		t.Errorf("recommendations = %s, want %s", got, want)
	}
	if recs[2].Score != 0 {
		t.Errorf("P1 score = %f, want 0", recs[2].Score)
	}
}

func TestRecommend_SemanticWithoutEmbedder(t *testing.T) {
	r := New(testSource(), nil, nil)
	if _, err := r.Recommend(context.Background(), testLibrary(), Options{Semantic: true}); err == nil {
		t.Error("expected error without an embedding provider")
	}
}
