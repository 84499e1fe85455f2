// Package graph assembles citation and reference graphs around a seed paper.
package graph

import (
	"github.com/matsen/paperref/internal/edge"
	"github.com/matsen/paperref/internal/reference"
)

// Node is one paper in a graph, keyed by its S2 paper ID.
type Node struct {
	ID     string           `json:"id"`
	Detail reference.Detail `json:"detail"`
}

// DirectedGraph is an exported snapshot of a builder.
type DirectedGraph struct {
	Nodes        []Node      `json:"nodes"`
	Edges        []edge.Edge `json:"edges"`
	MaxCitations int         `json:"max_citations"`
}

// IsEmpty returns true if the graph has no nodes.
func (g *DirectedGraph) IsEmpty() bool {
	return len(g.Nodes) == 0
}

// Response pairs the citation and reference graphs of one seed paper.
type Response struct {
	CitationGraph  DirectedGraph `json:"citation_graph"`
	ReferenceGraph DirectedGraph `json:"reference_graph"`
}

// Direction selects which relation a Builder expands and how its edges point.
type Direction int

const (
	// Citations expands the papers citing a source; edges run source -> citing paper.
	Citations Direction = iota
	// References expands the papers a source cites; edges run referenced paper -> source.
	References
)

func (d Direction) String() string {
	switch d {
	case Citations:
		return "citations"
	case References:
		return "references"
	default:
		return "unknown"
	}
}
