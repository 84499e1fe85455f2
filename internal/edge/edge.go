// Package edge defines directed citation edges between papers.
package edge

import "errors"

// Edge is a directed relationship between two papers, identified by S2 paper ID.
// Edges carry no identity of their own: the same ordered pair may appear twice.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Validation errors.
var (
	ErrEmptySource = errors.New("source is required")
	ErrEmptyTarget = errors.New("target is required")
)

// New creates an edge from source to target.
func New(source, target string) Edge {
	return Edge{Source: source, Target: target}
}

// Validate checks that both endpoints are set.
func (e Edge) Validate() error {
	if e.Source == "" {
		return ErrEmptySource
	}
	if e.Target == "" {
		return ErrEmptyTarget
	}
	return nil
}

// Reverse returns the edge with its endpoints swapped.
func (e Edge) Reverse() Edge {
	return Edge{Source: e.Target, Target: e.Source}
}

// Key is the ordered endpoint pair of an edge.
type Key struct {
	Source string
	Target string
}

// Key returns the ordered endpoint pair for this edge.
func (e Edge) Key() Key {
	return Key{Source: e.Source, Target: e.Target}
}

// FindDuplicateEdges finds ordered pairs that appear more than once.
// Returns a map of Key to count for keys that appear more than once.
func FindDuplicateEdges(edges []Edge) map[Key]int {
	counts := make(map[Key]int)
	for _, e := range edges {
		counts[e.Key()]++
	}

	duplicates := make(map[Key]int)
	for key, count := range counts {
		if count > 1 {
			duplicates[key] = count
		}
	}
	return duplicates
}

// Degrees counts incoming and outgoing edges per paper ID.
func Degrees(edges []Edge) (in, out map[string]int) {
	in = make(map[string]int)
	out = make(map[string]int)
	for _, e := range edges {
		out[e.Source]++
		in[e.Target]++
	}
	return in, out
}
