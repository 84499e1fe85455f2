package graph

import (
	"errors"
	"fmt"
	"slices"

	"github.com/matsen/paperref/internal/edge"
	"github.com/matsen/paperref/internal/s2"
)

// Unlimited disables truncation of a source paper's related papers.
const Unlimited = -1

// ErrMissingPaperID is returned when a source paper record has no paperId.
var ErrMissingPaperID = errors.New("paper record has no paperId")

// Builder incrementally assembles a directed graph from paper records.
// A Builder is owned by a single graph build and is not safe for concurrent use.
type Builder struct {
	direction Direction
	nodes     map[string]*Node
	order     []string // insertion order of node IDs
	edges     []edge.Edge
}

// NewBuilder creates an empty builder for the given direction.
func NewBuilder(direction Direction) *Builder {
	return &Builder{
		direction: direction,
		nodes:     make(map[string]*Node),
	}
}

// NewCitationBuilder creates an empty citation graph builder.
func NewCitationBuilder() *Builder {
	return NewBuilder(Citations)
}

// NewReferenceBuilder creates an empty reference graph builder.
func NewReferenceBuilder() *Builder {
	return NewBuilder(References)
}

// Direction returns the builder's direction.
func (b *Builder) Direction() Direction {
	return b.direction
}

// AddNode adds a paper as a node if its ID is new. If the node exists and has
// no TLDR, the TLDR of the given record fills it in; nothing else changes.
func (b *Builder) AddNode(paper *s2.S2Paper) error {
	if paper == nil || paper.PaperID == "" {
		return ErrMissingPaperID
	}

	if existing, ok := b.nodes[paper.PaperID]; ok {
		if existing.Detail.TLDR == nil && paper.TLDR != nil {
			text := paper.TLDR.Text
			existing.Detail.TLDR = &text
		}
		return nil
	}

	b.nodes[paper.PaperID] = &Node{
		ID:     paper.PaperID,
		Detail: s2.MapToDetail(*paper),
	}
	b.order = append(b.order, paper.PaperID)
	return nil
}

// AddPaperAndEdges adds a source paper and edges to its most-cited related papers.
//
// The related papers (citations or references, per direction) are ordered by
// citation count, highest first, with null counts as zero and ties kept in
// upstream order. Unless numNodes is Unlimited only the first numNodes are
// considered. A related paper already in the graph gets an edge; an unknown one
// is added as a node (then linked) only when includeNewNodes is set. Related
// papers without an ID are skipped.
func (b *Builder) AddPaperAndEdges(paper *s2.S2Paper, includeNewNodes bool, numNodes int) error {
	if paper == nil || paper.PaperID == "" {
		return ErrMissingPaperID
	}

	related := topRelated(b.relatedOf(paper), numNodes)

	if err := b.AddNode(paper); err != nil {
		return err
	}

	for i := range related {
		rel := &related[i]
		if rel.PaperID == "" {
			continue
		}
		if _, ok := b.nodes[rel.PaperID]; !ok {
			if !includeNewNodes {
				continue
			}
			if err := b.AddNode(rel); err != nil {
				return err
			}
		}
		if err := b.addEdge(paper.PaperID, rel.PaperID); err != nil {
			return err
		}
	}
	return nil
}

// relatedOf returns the relation list this builder expands.
func (b *Builder) relatedOf(paper *s2.S2Paper) []s2.S2Paper {
	if b.direction == References {
		return paper.References
	}
	return paper.Citations
}

// addEdge records an edge between a source paper and one of its related papers,
// oriented per direction.
func (b *Builder) addEdge(sourceID, relatedID string) error {
	e := edge.New(sourceID, relatedID)
	if b.direction == References {
		e = e.Reverse()
	}
	if err := e.Validate(); err != nil {
		return fmt.Errorf("adding edge %s->%s: %w", e.Source, e.Target, err)
	}
	b.edges = append(b.edges, e)
	return nil
}

// topRelated returns a stably sorted, truncated copy of related.
func topRelated(related []s2.S2Paper, numNodes int) []s2.S2Paper {
	sorted := slices.Clone(related)
	slices.SortStableFunc(sorted, func(a, b s2.S2Paper) int {
		return b.CitationCountOrZero() - a.CitationCountOrZero()
	})
	if numNodes != Unlimited && numNodes >= 0 && numNodes < len(sorted) {
		sorted = sorted[:numNodes]
	}
	return sorted
}

// Has reports whether a node with the given ID exists.
func (b *Builder) Has(id string) bool {
	_, ok := b.nodes[id]
	return ok
}

// Node returns the node with the given ID.
func (b *Builder) Node(id string) (Node, bool) {
	n, ok := b.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// NodeIDs returns node IDs in insertion order.
func (b *Builder) NodeIDs() []string {
	return slices.Clone(b.order)
}

// Len returns the number of nodes.
func (b *Builder) Len() int {
	return len(b.order)
}

// Export returns a snapshot of the current nodes and edges.
// MaxCitations is the highest citation count among the nodes, 0 if there are none.
func (b *Builder) Export() DirectedGraph {
	g := DirectedGraph{
		Nodes: make([]Node, 0, len(b.order)),
		Edges: make([]edge.Edge, len(b.edges)),
	}
	copy(g.Edges, b.edges)

	for _, id := range b.order {
		n := b.nodes[id]
		g.Nodes = append(g.Nodes, *n)
		g.MaxCitations = max(g.MaxCitations, n.Detail.Citations())
	}
	return g
}
