package graph

import "github.com/matsen/paperref/internal/edge"

// Summary describes the shape of a graph for display.
type Summary struct {
	Nodes         int `json:"nodes"`
	Edges         int `json:"edges"`
	RepeatedEdges int `json:"repeated_edges"` // copies beyond the first of each ordered pair

	// MostLinked is the non-seed node with the most incident edges, if any.
	MostLinked       *Node `json:"most_linked,omitempty"`
	MostLinkedDegree int   `json:"most_linked_degree,omitempty"`
}

// Summarize counts the nodes and edges of g and finds its best-connected
// paper other than the seed. Ties go to the earlier node.
func Summarize(g DirectedGraph) Summary {
	s := Summary{Nodes: len(g.Nodes), Edges: len(g.Edges)}
	for _, n := range edge.FindDuplicateEdges(g.Edges) {
		s.RepeatedEdges += n - 1
	}

	in, out := edge.Degrees(g.Edges)
	for i := 1; i < len(g.Nodes); i++ {
		n := g.Nodes[i]
		if d := in[n.ID] + out[n.ID]; d > s.MostLinkedDegree {
			s.MostLinked = &g.Nodes[i]
			s.MostLinkedDegree = d
		}
	}
	return s
}
