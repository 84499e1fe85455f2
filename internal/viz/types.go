// Package viz renders citation and reference graphs as Cytoscape.js pages.
package viz

import "github.com/matsen/paperref/internal/edge"

// GraphData contains all data needed to render the visualization.
type GraphData struct {
	Title string `json:"-"`
	Nodes []Node `json:"nodes"`
	Edges []edge.Edge `json:"edges"`
}

// Node represents a paper in the graph.
type Node struct {
	ID    string `json:"id"`
	Label string `json:"label"`

	// Tooltip fields
	Title     string `json:"title"`
	Authors   string `json:"authors,omitempty"` // "First Last, First Last"
	Year      int    `json:"year,omitempty"`
	Citations int    `json:"citations"`
	TLDR      string `json:"tldr,omitempty"`
	URL       string `json:"url,omitempty"`

	Size float64 `json:"size"` // relative to the most-cited paper, in pixels
	Seed bool    `json:"seed"`
}

// IsEmpty returns true if the graph has no nodes.
func (g *GraphData) IsEmpty() bool {
	return len(g.Nodes) == 0
}
