package embedding

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{name: "identical", a: []float32{1, 2, 3}, b: []float32{1, 2, 3}, want: 1},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 0},
		{name: "opposite", a: []float32{1, 1}, b: []float32{-1, -1}, want: -1},
		{name: "scale invariant", a: []float32{1, 2}, b: []float32{2, 4}, want: 1},
		{name: "zero vector", a: []float32{0, 0}, b: []float32{1, 1}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Cosine(Embedding{Vector: tt.a}, Embedding{Vector: tt.b})
			if err != nil {
				t.Fatalf("Cosine() error = %v", err)
			}
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("Cosine() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestCosine_DimensionMismatch(t *testing.T) {
	_, err := Cosine(Embedding{Vector: []float32{1}}, Embedding{Vector: []float32{1, 2}})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Cosine() error = %v, want ErrDimensionMismatch", err)
	}
}

func TestCentroid(t *testing.T) {
	c, err := Centroid([]Embedding{
		{Vector: []float32{1, 0, 4}},
		{Vector: []float32{3, 2, 0}},
	})
	if err != nil {
		t.Fatalf("Centroid() error = %v", err)
	}
	want := []float32{2, 1, 2}
	for i := range want {
		if c.Vector[i] != want[i] {
			t.Errorf("Centroid()[%d] = %f, want %f", i, c.Vector[i], want[i])
		}
	}

	empty, err := Centroid(nil)
	if err != nil || empty.Dimensions() != 0 {
		t.Errorf("Centroid(nil) = %+v, %v", empty, err)
	}

	if _, err := Centroid([]Embedding{{Vector: []float32{1}}, {Vector: []float32{1, 2}}}); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Centroid() error = %v, want ErrDimensionMismatch", err)
	}
}

func TestPaperText(t *testing.T) {
	abstract := "We study things."
	empty := ""
	if got := PaperText("Title", &abstract); got != "Title We study things." {
		t.Errorf("PaperText() = %q", got)
	}
	if got := PaperText("Title", nil); got != "Title" {
		t.Errorf("PaperText(nil) = %q", got)
	}
	if got := PaperText("Title", &empty); got != "Title" {
		t.Errorf("PaperText(empty) = %q", got)
	}
}

type failingProvider struct{ calls int }

func (f *failingProvider) Embed(_ context.Context, text string) (Embedding, error) {
	f.calls++
	if text == "bad" {
		return Embedding{}, errors.New("boom")
	}
	return Embedding{Vector: []float32{float32(len(text))}}, nil
}

func (f *failingProvider) ModelName() string { return "fake" }

func TestEmbedAll(t *testing.T) {
	p := &failingProvider{}
	got, err := EmbedAll(context.Background(), p, []string{"a", "bcd"})
	if err != nil || len(got) != 2 || got[1].Vector[0] != 3 {
		t.Errorf("EmbedAll() = %+v, %v", got, err)
	}

	p = &failingProvider{}
	if _, err := EmbedAll(context.Background(), p, []string{"a", "bad", "c"}); err == nil {
		t.Error("EmbedAll() expected error")
	}
	if p.calls != 2 {
		t.Errorf("calls = %d, want EmbedAll to stop at the failure", p.calls)
	}
}
