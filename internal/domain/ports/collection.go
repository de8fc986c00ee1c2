// Package ports defines the interfaces the domain needs from storage and
// external services.
package ports

import "context"

// CollectionManager handles the lifecycle of a tree's vector collection.
type CollectionManager interface {
	// EnsureCollection creates the collection if it doesn't exist.
	EnsureCollection(ctx context.Context, vectorSize uint64) error

	// DeleteCollection removes the collection and every embedding in it.
	DeleteCollection(ctx context.Context) error
}
