// Package recommend suggests papers related to a library.
//
// Candidates come from the Semantic Scholar recommendations endpoint plus the
// references and citations of every library paper. Candidates already in the
// library are dropped. The rest are ranked either by citation count or by
// embedding similarity to the library.
package recommend

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/matsen/paperref/internal/embedding"
	"github.com/matsen/paperref/internal/reference"
	"github.com/matsen/paperref/internal/s2"
)

// DefaultLimit is how many recommendations are returned.
const DefaultLimit = 10

// ErrEmptyLibrary is returned when there is nothing to recommend from.
var ErrEmptyLibrary = errors.New("library has no papers with a DOI or S2 ID")

// Candidate origins.
const (
	FromRecommendations = "recommendations"
	FromReferences      = "references"
	FromCitations       = "citations"
)

// Source is the upstream API. *s2.Client implements it.
type Source interface {
	Recommendations(ctx context.Context, positiveIDs []string, limit int) ([]s2.S2Paper, error)
	FetchBatched(ctx context.Context, ids []string, mode s2.FetchMode) ([]*s2.S2Paper, error)
}

// Recommendation is one suggested paper.
type Recommendation struct {
	ID     string           `json:"id"`
	Detail reference.Detail `json:"detail"`
	Score  float64          `json:"score"`
	Origin string           `json:"origin"`
}

// Options controls ranking.
type Options struct {
	Limit    int  // results returned; non-positive means DefaultLimit
	Semantic bool // rank by embedding similarity instead of citation count
}

// Recommender produces recommendations for a library.
type Recommender struct {
	source   Source
	embedder embedding.Provider
	logger   *slog.Logger
}

// New creates a Recommender. embedder may be nil when semantic ranking is
// never requested. A nil logger discards output.
func New(source Source, embedder embedding.Provider, logger *slog.Logger) *Recommender {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Recommender{source: source, embedder: embedder, logger: logger}
}

type candidate struct {
	paper  s2.S2Paper
	origin string
}

// Recommend returns up to opts.Limit papers related to the library.
func (r *Recommender) Recommend(ctx context.Context, library []reference.Paper, opts Options) ([]Recommendation, error) {
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.Semantic && r.embedder == nil {
		return nil, errors.New("semantic ranking requested without an embedding provider")
	}

	resolver := s2.NewLocalResolverFromPapers(library)
	ids := resolver.S2IDs()
	if len(ids) == 0 {
		return nil, ErrEmptyLibrary
	}

	records, err := r.source.FetchBatched(ctx, ids, s2.ModeBoth)
	if err != nil {
		return nil, fmt.Errorf("fetching library papers: %w", err)
	}
	positive := paperIDs(records)
	if len(positive) == 0 {
		r.logger.Info("no library papers found upstream", "library", len(library))
		return []Recommendation{}, nil
	}

	recommended, err := r.source.Recommendations(ctx, positive, s2.DefaultRecommendationsLimit)
	if err != nil {
		return nil, fmt.Errorf("fetching recommendations: %w", err)
	}

	candidates := collect(resolver, recommended, records)
	r.logger.Debug("recommendation candidates collected",
		"library", len(library), "recommended", len(recommended), "candidates", len(candidates))

	var ranked []Recommendation
	if opts.Semantic {
		ranked, err = r.rankBySimilarity(ctx, records, candidates)
		if err != nil {
			return nil, err
		}
	} else {
		ranked = rankByCitations(candidates)
	}

	if len(ranked) > opts.Limit {
		ranked = ranked[:opts.Limit]
	}
	return ranked, nil
}

// paperIDs returns the upstream paper IDs of the records that were found.
func paperIDs(records []*s2.S2Paper) []string {
	var ids []string
	for _, rec := range records {
		if rec != nil && rec.PaperID != "" {
			ids = append(ids, rec.PaperID)
		}
	}
	return ids
}

// collect merges candidates in origin order (recommendations, references,
// citations), keeping the first occurrence of each paper and dropping
// anything already in the library.
func collect(resolver *s2.LocalResolver, recommended []s2.S2Paper, records []*s2.S2Paper) []candidate {
	seen := make(map[string]bool)
	for _, rec := range records {
		if rec != nil && rec.PaperID != "" {
			seen[rec.PaperID] = true
		}
	}

	var out []candidate
	add := func(p s2.S2Paper, origin string) {
		if p.PaperID == "" || seen[p.PaperID] {
			return
		}
		if _, ok := resolver.ExistsLocally(p); ok {
			return
		}
		seen[p.PaperID] = true
		out = append(out, candidate{paper: p, origin: origin})
	}

	for _, p := range recommended {
		add(p, FromRecommendations)
	}
	for _, rec := range records {
		if rec == nil {
			continue
		}
		for _, p := range rec.References {
			add(p, FromReferences)
		}
	}
	for _, rec := range records {
		if rec == nil {
			continue
		}
		for _, p := range rec.Citations {
			add(p, FromCitations)
		}
	}
	return out
}

func rankByCitations(candidates []candidate) []Recommendation {
	out := make([]Recommendation, len(candidates))
	for i, c := range candidates {
		out[i] = newRecommendation(c, float64(c.paper.CitationCountOrZero()))
	}
	sortByScore(out)
	return out
}

// rankBySimilarity scores candidates by cosine similarity to the centroid of
// the library papers' embeddings.
func (r *Recommender) rankBySimilarity(ctx context.Context, records []*s2.S2Paper, candidates []candidate) ([]Recommendation, error) {
	var libraryTexts []string
	for _, rec := range records {
		if rec != nil {
			libraryTexts = append(libraryTexts, embedding.PaperText(rec.Title, rec.Abstract))
		}
	}
	if len(libraryTexts) == 0 {
		return nil, ErrEmptyLibrary
	}

	libraryVecs, err := embedding.EmbedAll(ctx, r.embedder, libraryTexts)
	if err != nil {
		return nil, fmt.Errorf("embedding library: %w", err)
	}
	centroid, err := embedding.Centroid(libraryVecs)
	if err != nil {
		return nil, err
	}

	out := make([]Recommendation, 0, len(candidates))
	for _, c := range candidates {
		vec, err := r.embedder.Embed(ctx, embedding.PaperText(c.paper.Title, c.paper.Abstract))
		if err != nil {
			return nil, fmt.Errorf("embedding candidate %s: %w", c.paper.PaperID, err)
		}
		score, err := embedding.Cosine(centroid, vec)
		if err != nil {
			return nil, fmt.Errorf("scoring candidate %s: %w", c.paper.PaperID, err)
		}
		out = append(out, newRecommendation(c, score))
	}
	sortByScore(out)

	r.logger.Debug("candidates ranked by similarity", "model", r.embedder.ModelName(), "candidates", len(out))
	return out, nil
}

func newRecommendation(c candidate, score float64) Recommendation {
	return Recommendation{
		ID:     c.paper.PaperID,
		Detail: s2.MapToDetail(c.paper),
		Score:  score,
		Origin: c.origin,
	}
}

// sortByScore orders highest score first, keeping candidate order on ties.
func sortByScore(recs []Recommendation) {
	slices.SortStableFunc(recs, func(a, b Recommendation) int {
		return cmp.Compare(b.Score, a.Score)
	})
}
