package mocks

import "context"

// CollectionManager is a mock ports.CollectionManager.
type CollectionManager struct {
	EnsureErr error
	DeleteErr error

	EnsureCollectionCallCount int
	DeleteCollectionCallCount int
	LastVectorSize            uint64
}

// EnsureCollection records the vector size and returns EnsureErr.
func (m *CollectionManager) EnsureCollection(_ context.Context, vectorSize uint64) error {
	m.EnsureCollectionCallCount++
	m.LastVectorSize = vectorSize
	return m.EnsureErr
}

// DeleteCollection returns DeleteErr.
func (m *CollectionManager) DeleteCollection(_ context.Context) error {
	m.DeleteCollectionCallCount++
	return m.DeleteErr
}
