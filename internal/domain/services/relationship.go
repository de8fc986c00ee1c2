package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ersonp/kinship/internal/domain/entities"
	"github.com/ersonp/kinship/internal/domain/ports"
)

// RelationshipService creates and removes relationships between persons.
type RelationshipService struct {
	store  ports.FamilyStore
	logger *slog.Logger
	newID  func() string
	now    func() time.Time
}

// NewRelationshipService creates a new RelationshipService. A nil logger discards.
func NewRelationshipService(store ports.FamilyStore, logger *slog.Logger) *RelationshipService {
	return &RelationshipService{
		store:  store,
		logger: orDiscard(logger),
		newID:  func() string { return uuid.New().String() },
		now:    time.Now,
	}
}

// Create validates and stores a relationship. Symmetric kinds are stored as a
// row per direction in one transaction; the returned row is the one
// oriented person1 to person2.
func (s *RelationshipService) Create(ctx context.Context, person1ID, person2ID string, kind entities.Kind) (*entities.Relationship, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %q", entities.ErrInvalidKind, kind)
	}
	if person1ID == person2ID {
		return nil, entities.ErrSelfRelationship
	}

	found, err := s.store.FindPersonsByIDs(ctx, []string{person1ID, person2ID})
	if err != nil {
		return nil, fmt.Errorf("checking persons exist: %w", err)
	}
	if len(found) != 2 {
		return nil, entities.ErrPersonsNotFound
	}

	existing, err := s.store.FindRelationshipBetween(ctx, person1ID, person2ID, kind)
	if err != nil {
		return nil, fmt.Errorf("checking existing relationship: %w", err)
	}
	if existing != nil {
		return nil, entities.ErrRelationshipExists
	}

	rows := s.materialize(person1ID, person2ID, kind)
	if err := s.store.SaveRelationships(ctx, rows); err != nil {
		if errors.Is(err, entities.ErrRelationshipExists) {
			return nil, entities.ErrRelationshipExists
		}
		if len(rows) > 1 && s.wroteAny(ctx, rows) {
			s.logger.ErrorContext(ctx, "symmetric relationship partially written",
				"person1", person1ID, "person2", person2ID, "kind", kind, "error", err)
			return nil, fmt.Errorf("%w: %w", entities.ErrPartialRelationship, err)
		}
		return nil, fmt.Errorf("saving relationship: %w", err)
	}

	s.logger.InfoContext(ctx, "relationship created",
		"id", rows[0].ID, "person1", person1ID, "person2", person2ID, "kind", kind, "rows", len(rows))
	return &rows[0], nil
}

// materialize expands a request into the rows the kind's strategy calls for.
func (s *RelationshipService) materialize(person1ID, person2ID string, kind entities.Kind) []entities.Relationship {
	now := s.now()
	rows := []entities.Relationship{{
		ID:        s.newID(),
		Person1ID: person1ID,
		Person2ID: person2ID,
		Kind:      kind,
		CreatedAt: now,
	}}
	if kind.Materialization().Symmetric {
		rows = append(rows, entities.Relationship{
			ID:        s.newID(),
			Person1ID: person2ID,
			Person2ID: person1ID,
			Kind:      kind,
			CreatedAt: now,
		})
	}
	return rows
}

// wroteAny reports whether any of rows reached the store despite a failed save.
func (s *RelationshipService) wroteAny(ctx context.Context, rows []entities.Relationship) bool {
	existing, err := s.store.FindRelationshipsByPerson(ctx, rows[0].Person1ID)
	if err != nil {
		return false
	}
	for i := range existing {
		for j := range rows {
			if existing[i].ID == rows[j].ID {
				return true
			}
		}
	}
	return false
}

// Delete removes every row of kind between the two persons, in either
// direction. It reports whether anything was removed.
func (s *RelationshipService) Delete(ctx context.Context, person1ID, person2ID string, kind entities.Kind) (bool, error) {
	if !kind.IsValid() {
		return false, fmt.Errorf("%w: %q", entities.ErrInvalidKind, kind)
	}

	n, err := s.store.DeleteRelationshipsBetween(ctx, person1ID, person2ID, kind)
	if err != nil {
		return false, fmt.Errorf("deleting relationship: %w", err)
	}
	s.logger.InfoContext(ctx, "relationship deleted",
		"person1", person1ID, "person2", person2ID, "kind", kind, "rows", n)
	return n > 0, nil
}

// List returns the stored rows touching a person.
func (s *RelationshipService) List(ctx context.Context, personID string) ([]entities.Relationship, error) {
	rels, err := s.store.FindRelationshipsByPerson(ctx, personID)
	if err != nil {
		return nil, fmt.Errorf("listing relationships: %w", err)
	}
	return rels, nil
}

// ListAll returns one row per logical relationship: the mirror row of a
// symmetric pair is dropped.
func (s *RelationshipService) ListAll(ctx context.Context) ([]entities.Relationship, error) {
	rels, err := s.store.ListRelationships(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing relationships: %w", err)
	}

	seen := make(map[string]bool, len(rels))
	result := make([]entities.Relationship, 0, len(rels))
	for i := range rels {
		key := rels[i].PairKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, rels[i])
	}
	return result, nil
}

// Count returns the number of stored rows.
func (s *RelationshipService) Count(ctx context.Context) (int, error) {
	return s.store.CountRelationships(ctx)
}
