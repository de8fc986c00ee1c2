package ports

import "context"

// ScoredID is a semantic search hit.
type ScoredID struct {
	ID    string
	Score float32
}

// PersonIndex stores person embeddings for semantic name search.
type PersonIndex interface {
	// Upsert stores or replaces the embedding for a person.
	Upsert(ctx context.Context, personID, text string, embedding []float32) error

	// Search returns the IDs closest to embedding, best first.
	Search(ctx context.Context, embedding []float32, limit int) ([]ScoredID, error)

	// Delete removes a person's embedding.
	Delete(ctx context.Context, personID string) error
}
