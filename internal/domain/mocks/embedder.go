package mocks

import (
	"context"
	"sync"
)

// Embedder is a mock ports.Embedder. When Vectors has an entry for a text it
// is returned, otherwise EmbeddingResult is.
type Embedder struct {
	EmbeddingResult []float32
	Vectors         map[string][]float32
	Err             error

	mu    sync.Mutex
	Texts []string
}

// Embed returns the configured embedding or error.
func (m *Embedder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Texts = append(m.Texts, text)
	if v, ok := m.Vectors[text]; ok {
		return v, nil
	}
	return m.EmbeddingResult, nil
}

// EmbedBatch embeds each text in order.
func (m *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		result[i] = v
	}
	return result, nil
}
