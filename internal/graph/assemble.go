package graph

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matsen/paperref/internal/s2"
)

const (
	// DefaultNumNodes is how many of the most-cited related papers are kept per paper.
	DefaultNumNodes = 20

	// DefaultHubCeiling excludes papers with more citations (or references)
	// than this from the second-level fetch.
	DefaultHubCeiling = 500

	// NoCeiling disables hub exclusion.
	NoCeiling = -1

	// DefaultSecondLevelPause is awaited before each second-level fetch.
	DefaultSecondLevelPause = 500 * time.Millisecond
)

// ErrEmptySeed is returned when no seed identifier is given.
var ErrEmptySeed = errors.New("seed paper identifier is required")

var buildsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "paperref",
	Subsystem: "graph",
	Name:      "builds_total",
	Help:      "Graph assemblies by result",
}, []string{"result"})

// Fetcher looks up papers in batches. *s2.Client implements it.
type Fetcher interface {
	FetchBatched(ctx context.Context, ids []string, mode s2.FetchMode) ([]*s2.S2Paper, error)
}

// Options controls the size of an assembled graph.
type Options struct {
	NumNodes         int           // related papers kept per paper; Unlimited keeps all
	HubCeiling       int           // NoCeiling disables hub exclusion
	SecondLevelPause time.Duration // awaited before each second-level fetch
}

// DefaultOptions returns the default assembly options.
func DefaultOptions() Options {
	return Options{
		NumNodes:         DefaultNumNodes,
		HubCeiling:       DefaultHubCeiling,
		SecondLevelPause: DefaultSecondLevelPause,
	}
}

// Validate checks the options for out-of-range values.
func (o Options) Validate() error {
	if o.NumNodes < Unlimited {
		return fmt.Errorf("num_nodes must be %d (unlimited) or non-negative, got %d", Unlimited, o.NumNodes)
	}
	if o.HubCeiling < NoCeiling {
		return fmt.Errorf("hub_ceiling must be %d (disabled) or non-negative, got %d", NoCeiling, o.HubCeiling)
	}
	if o.SecondLevelPause < 0 {
		return fmt.Errorf("second-level pause must not be negative, got %s", o.SecondLevelPause)
	}
	return nil
}

// Assembler builds the citation and reference graphs of a seed paper.
// It holds no per-build state and may be shared across goroutines if its
// Fetcher may.
type Assembler struct {
	fetcher Fetcher
	opts    Options
	logger  *slog.Logger
}

// NewAssembler creates an Assembler. A nil logger discards output.
func NewAssembler(fetcher Fetcher, opts Options, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Assembler{fetcher: fetcher, opts: opts, logger: logger}
}

// Options returns the assembler's options.
func (a *Assembler) Options() Options {
	return a.opts
}

// WithNumNodes returns a copy of the assembler using a different expansion width.
func (a *Assembler) WithNumNodes(n int) *Assembler {
	cp := *a
	cp.opts.NumNodes = n
	return &cp
}

// SeedID converts a user-supplied seed into an S2 batch identifier.
// Bare DOIs gain the DOI: prefix; S2 IDs and prefixed IDs pass through.
func SeedID(seed string) (string, error) {
	seed = strings.TrimSpace(seed)
	if seed == "" {
		return "", ErrEmptySeed
	}
	return s2.ParsePaperID(seed).String(), nil
}

// Assemble builds both graphs around the seed paper in two passes.
//
// The first pass adds the seed and its top NumNodes citations and references.
// The second pass fetches every non-hub node again and adds only the edges
// between papers already in each graph. A seed unknown upstream yields two
// empty graphs. Any fetch failure aborts the build.
func (a *Assembler) Assemble(ctx context.Context, seed string) (resp *Response, err error) {
	defer func() {
		result := "ok"
		if err != nil {
			result = "error"
		}
		buildsTotal.WithLabelValues(result).Inc()
	}()

	if err := a.opts.Validate(); err != nil {
		return nil, err
	}
	seedID, err := SeedID(seed)
	if err != nil {
		return nil, err
	}

	citations := NewCitationBuilder()
	references := NewReferenceBuilder()

	seeds, err := a.fetcher.FetchBatched(ctx, []string{seedID}, s2.ModeBoth)
	if err != nil {
		return nil, fmt.Errorf("fetching seed paper %s: %w", seedID, err)
	}

	for _, paper := range seeds {
		if paper == nil {
			continue
		}
		if err := citations.AddPaperAndEdges(paper, true, a.opts.NumNodes); err != nil {
			return nil, fmt.Errorf("adding seed paper to citation graph: %w", err)
		}
		if err := references.AddPaperAndEdges(paper, true, a.opts.NumNodes); err != nil {
			return nil, fmt.Errorf("adding seed paper to reference graph: %w", err)
		}
	}
	a.logger.Debug("first-degree expansion done",
		"seed", seedID, "citation_nodes", citations.Len(), "reference_nodes", references.Len())

	if err := a.expand(ctx, citations); err != nil {
		return nil, err
	}
	if err := a.expand(ctx, references); err != nil {
		return nil, err
	}

	resp = &Response{
		CitationGraph:  citations.Export(),
		ReferenceGraph: references.Export(),
	}
	a.logger.Info("graph assembled",
		"seed", seedID,
		"citation_nodes", len(resp.CitationGraph.Nodes),
		"citation_edges", len(resp.CitationGraph.Edges),
		"reference_nodes", len(resp.ReferenceGraph.Nodes),
		"reference_edges", len(resp.ReferenceGraph.Edges))
	return resp, nil
}

// expand runs the second-level fetch for one builder, adding edges between
// nodes it already holds.
func (a *Assembler) expand(ctx context.Context, b *Builder) error {
	ids := a.secondLevelIDs(b)
	if len(ids) == 0 {
		return nil
	}

	if err := s2.Pause(ctx, a.opts.SecondLevelPause); err != nil {
		return err
	}

	mode := s2.ModeCitations
	if b.Direction() == References {
		mode = s2.ModeReferences
	}

	papers, err := a.fetcher.FetchBatched(ctx, ids, mode)
	if err != nil {
		return fmt.Errorf("second-level %s fetch: %w", b.Direction(), err)
	}

	for _, paper := range papers {
		if paper == nil || !b.Has(paper.PaperID) {
			continue
		}
		if err := b.AddPaperAndEdges(paper, false, a.opts.NumNodes); err != nil {
			return fmt.Errorf("adding second-level %s: %w", b.Direction(), err)
		}
	}
	a.logger.Debug("second-level expansion done",
		"direction", b.Direction().String(), "fetched", len(ids), "edges", len(b.edges))
	return nil
}

// secondLevelIDs returns the builder's node IDs minus hub papers.
// Hubs are judged by citation count in a citation graph and by reference
// count in a reference graph.
func (a *Assembler) secondLevelIDs(b *Builder) []string {
	ids := make([]string, 0, b.Len())
	for _, id := range b.NodeIDs() {
		n, _ := b.Node(id)
		count := n.Detail.Citations()
		if b.Direction() == References {
			count = n.Detail.References()
		}
		if a.opts.HubCeiling != NoCeiling && count > a.opts.HubCeiling {
			a.logger.Debug("skipping hub paper", "id", id, "direction", b.Direction().String(), "count", count)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
