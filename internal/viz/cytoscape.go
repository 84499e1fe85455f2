package viz

import (
	"encoding/json"
	"fmt"

	"github.com/matsen/paperref/internal/edge"
)

// CytoscapeElements represents the Cytoscape.js data format.
type CytoscapeElements struct {
	Nodes []CytoscapeNode `json:"nodes"`
	Edges []CytoscapeEdge `json:"edges"`
}

// CytoscapeNode represents a node in Cytoscape.js format.
type CytoscapeNode struct {
	Data    Node   `json:"data"`
	Classes string `json:"classes,omitempty"`
}

// CytoscapeEdge represents an edge in Cytoscape.js format.
type CytoscapeEdge struct {
	Data CytoscapeEdgeData `json:"data"`
}

// CytoscapeEdgeData contains the edge data fields.
type CytoscapeEdgeData struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// ToCytoscape converts GraphData to Cytoscape.js elements.
// Repeated edges between the same pair are drawn once.
func (g *GraphData) ToCytoscape() CytoscapeElements {
	elements := CytoscapeElements{
		Nodes: make([]CytoscapeNode, 0, len(g.Nodes)),
		Edges: make([]CytoscapeEdge, 0, len(g.Edges)),
	}

	for _, n := range g.Nodes {
		cyNode := CytoscapeNode{Data: n}
		if n.Seed {
			cyNode.Classes = "seed"
		}
		elements.Nodes = append(elements.Nodes, cyNode)
	}

	seen := make(map[edge.Key]bool, len(g.Edges))
	for _, e := range g.Edges {
		if seen[e.Key()] {
			continue
		}
		seen[e.Key()] = true
		elements.Edges = append(elements.Edges, CytoscapeEdge{
			Data: CytoscapeEdgeData{
				ID:     edgeID(e.Source, e.Target),
				Source: e.Source,
				Target: e.Target,
			},
		})
	}
	return elements
}

// ToCytoscapeJSON converts GraphData to Cytoscape.js JSON format.
func (g *GraphData) ToCytoscapeJSON() (string, error) {
	jsonBytes, err := json.Marshal(g.ToCytoscape())
	if err != nil {
		return "", fmt.Errorf("marshaling Cytoscape elements to JSON: %w", err)
	}
	return string(jsonBytes), nil
}

func edgeID(source, target string) string {
	return fmt.Sprintf("%s->%s", source, target)
}
