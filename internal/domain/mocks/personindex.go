package mocks

import (
	"context"
	"sync"

	"github.com/ersonp/kinship/internal/domain/ports"
)

// PersonIndex is a mock ports.PersonIndex that returns SearchResult from Search.
type PersonIndex struct {
	SearchResult []ports.ScoredID
	UpsertErr    error
	SearchErr    error
	DeleteErr    error

	mu      sync.Mutex
	Upserts map[string]string
	Deleted []string
}

// Upsert records the indexed text per person.
func (m *PersonIndex) Upsert(_ context.Context, personID, text string, _ []float32) error {
	if m.UpsertErr != nil {
		return m.UpsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Upserts == nil {
		m.Upserts = make(map[string]string)
	}
	m.Upserts[personID] = text
	return nil
}

// Search returns SearchResult truncated to limit.
func (m *PersonIndex) Search(_ context.Context, _ []float32, limit int) ([]ports.ScoredID, error) {
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	if limit > 0 && limit < len(m.SearchResult) {
		return m.SearchResult[:limit], nil
	}
	return m.SearchResult, nil
}

// Delete records the removed ID.
func (m *PersonIndex) Delete(_ context.Context, personID string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deleted = append(m.Deleted, personID)
	return nil
}
