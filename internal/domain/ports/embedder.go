package ports

import "context"

// Embedder turns text into vectors.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
