package entities

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidKind is returned for an unknown relationship kind.
	ErrInvalidKind = errors.New("invalid relationship kind")
	// ErrSelfRelationship is returned when both endpoints are the same person.
	ErrSelfRelationship = errors.New("a person cannot be related to themselves")
	// ErrPersonsNotFound is returned when an endpoint of a relationship does not exist.
	ErrPersonsNotFound = errors.New("one or both persons not found")
	// ErrRelationshipExists is returned for a duplicate relationship.
	ErrRelationshipExists = errors.New("relationship already exists")
	// ErrPartialRelationship is returned when only one row of a symmetric
	// relationship was written.
	ErrPartialRelationship = errors.New("relationship only partially written")
	// ErrPersonNotFound is returned when a person lookup by ID misses.
	ErrPersonNotFound = errors.New("person not found")
	// ErrInvalidPerson wraps person validation failures.
	ErrInvalidPerson = errors.New("invalid person")
	// ErrInvalidQuery is returned for an empty or malformed search.
	ErrInvalidQuery = errors.New("invalid query")
)

// ValidationError describes a field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match ErrInvalidPerson.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidPerson
}
