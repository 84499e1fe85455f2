// Package embedding provides vector embeddings of paper text and the
// similarity math used to rank candidates against a library.
package embedding

import (
	"errors"
	"math"
)

// ErrDimensionMismatch is returned when vectors of different lengths are combined.
var ErrDimensionMismatch = errors.New("embedding dimensions differ")

// Embedding represents a vector embedding of text.
type Embedding struct {
	Vector []float32 // e.g. 384 dimensions for all-minilm
}

// Dimensions returns the dimensionality of the embedding.
func (e Embedding) Dimensions() int {
	return len(e.Vector)
}

// Cosine returns the cosine similarity of a and b.
// A zero vector has similarity 0 with everything.
func Cosine(a, b Embedding) (float64, error) {
	if len(a.Vector) != len(b.Vector) {
		return 0, ErrDimensionMismatch
	}
	var dot, na, nb float64
	for i := range a.Vector {
		x, y := float64(a.Vector[i]), float64(b.Vector[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), nil
}

// Centroid returns the element-wise mean of the embeddings.
// It returns an empty embedding when given none.
func Centroid(embeddings []Embedding) (Embedding, error) {
	if len(embeddings) == 0 {
		return Embedding{}, nil
	}
	dims := embeddings[0].Dimensions()
	sum := make([]float64, dims)
	for _, e := range embeddings {
		if e.Dimensions() != dims {
			return Embedding{}, ErrDimensionMismatch
		}
		for i, v := range e.Vector {
			sum[i] += float64(v)
		}
	}

	out := make([]float32, dims)
	for i, v := range sum {
		out[i] = float32(v / float64(len(embeddings)))
	}
	return Embedding{Vector: out}, nil
}

// PaperText is the text embedded for a paper: its title and abstract.
func PaperText(title string, abstract *string) string {
	if abstract == nil || *abstract == "" {
		return title
	}
	return title + " " + *abstract
}
