package viz

import (
	"slices"
	"strconv"
	"strings"

	"github.com/matsen/paperref/internal/graph"
	"github.com/matsen/paperref/internal/reference"
)

// Node sizes in pixels.
const (
	MinNodeSize = 20.0
	MaxNodeSize = 60.0
)

// maxLabelLength bounds node labels; full titles go in tooltips.
const maxLabelLength = 40

// FromDirectedGraph builds visualization data for an assembled graph.
// The node with seedID is highlighted; an empty seedID highlights the first
// node, which is the seed of an assembled graph.
func FromDirectedGraph(g graph.DirectedGraph, seedID, title string) *GraphData {
	data := &GraphData{
		Title: title,
		Nodes: make([]Node, 0, len(g.Nodes)),
		Edges: slices.Clone(g.Edges),
	}
	if seedID == "" && len(g.Nodes) > 0 {
		seedID = g.Nodes[0].ID
	}

	for _, n := range g.Nodes {
		data.Nodes = append(data.Nodes, newPaperNode(n, g.MaxCitations, n.ID == seedID))
	}
	return data
}

// newPaperNode creates a visualization node from a graph node.
func newPaperNode(n graph.Node, maxCitations int, seed bool) Node {
	d := n.Detail
	node := Node{
		ID:        n.ID,
		Label:     label(d),
		Title:     d.Title,
		Authors:   strings.Join(d.Authors, ", "),
		Citations: d.Citations(),
		Size:      nodeSize(d.Citations(), maxCitations),
		Seed:      seed,
	}
	if d.Year != nil {
		node.Year = *d.Year
	}
	if d.TLDR != nil {
		node.TLDR = *d.TLDR
	}
	switch {
	case d.DOI != nil:
		node.URL = "https://doi.org/" + *d.DOI
	case d.OpenAccessURL != nil:
		node.URL = *d.OpenAccessURL
	}
	return node
}

// nodeSize scales linearly from MinNodeSize (no citations) to MaxNodeSize
// (the most-cited paper in the graph).
func nodeSize(citations, maxCitations int) float64 {
	if maxCitations <= 0 {
		return MinNodeSize
	}
	frac := float64(citations) / float64(maxCitations)
	return MinNodeSize + frac*(MaxNodeSize-MinNodeSize)
}

// label returns "FirstAuthorLast Year", falling back to a shortened title.
func label(d reference.Detail) string {
	if len(d.Authors) > 0 {
		fields := strings.Fields(d.Authors[0])
		if len(fields) > 0 {
			l := fields[len(fields)-1]
			if len(d.Authors) > 1 {
				l += " et al."
			}
			if d.Year != nil {
				l += " " + strconv.Itoa(*d.Year)
			}
			return l
		}
	}
	return truncate(d.Title, maxLabelLength)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
