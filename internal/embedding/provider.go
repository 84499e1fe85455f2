package embedding

import "context"

// Provider generates embeddings from text.
type Provider interface {
	// Embed generates an embedding for the given text.
	Embed(ctx context.Context, text string) (Embedding, error)

	// ModelName returns the name of the embedding model.
	ModelName() string
}

// EmbedAll embeds each text in order, stopping at the first failure.
func EmbedAll(ctx context.Context, p Provider, texts []string) ([]Embedding, error) {
	out := make([]Embedding, 0, len(texts))
	for _, text := range texts {
		e, err := p.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
