// Package mocks provides in-memory implementations of the domain ports for tests.
package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/ersonp/kinship/internal/domain/entities"
)

// Store is an in-memory ports.FamilyStore that enforces the same
// uniqueness rules as the SQL stores.
type Store struct {
	mu            sync.RWMutex
	persons       map[string]entities.Person
	relationships []entities.Relationship

	// Err is returned by every operation when set.
	Err error
	// SaveRelationshipsErr is returned by SaveRelationships when set.
	SaveRelationshipsErr error
	// PartialWrite makes SaveRelationships keep the first row before
	// failing with SaveRelationshipsErr, like a store without transactions.
	PartialWrite bool

	// Call tracking
	SaveRelationshipsCallCount int
	FindPersonCallCount        int
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{persons: make(map[string]entities.Person)}
}

// EnsureSchema returns the configured error.
func (m *Store) EnsureSchema(_ context.Context) error {
	return m.Err
}

// Close is a no-op.
func (m *Store) Close() error {
	return nil
}

// AddPerson stores a person directly, for test setup.
func (m *Store) AddPerson(p entities.Person) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.persons[p.ID] = p
}

// AddRelationship stores a row directly, bypassing uniqueness checks.
func (m *Store) AddRelationship(r entities.Relationship) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.relationships = append(m.relationships, r)
}

// RemovePerson deletes a person and cascades to its rows.
func (m *Store) RemovePerson(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.persons, id)
	kept := m.relationships[:0]
	for _, r := range m.relationships {
		if !r.Involves(id) {
			kept = append(kept, r)
		}
	}
	m.relationships = kept
}

// Relationships returns a copy of every stored row.
func (m *Store) Relationships() []entities.Relationship {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]entities.Relationship(nil), m.relationships...)
}

// SavePerson inserts or updates a person.
func (m *Store) SavePerson(_ context.Context, person *entities.Person) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.persons[person.ID] = *person
	return nil
}

// FindPersonByID returns nil, nil for an unknown ID.
func (m *Store) FindPersonByID(_ context.Context, id string) (*entities.Person, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FindPersonCallCount++
	p, ok := m.persons[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// FindPersonsByIDs returns the persons that exist among ids.
func (m *Store) FindPersonsByIDs(_ context.Context, ids []string) ([]entities.Person, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[string]bool, len(ids))
	var result []entities.Person
	for _, id := range ids {
		if p, ok := m.persons[id]; ok && !seen[id] {
			seen[id] = true
			result = append(result, p)
		}
	}
	return result, nil
}

// ListPersons returns persons ordered by name.
func (m *Store) ListPersons(_ context.Context, limit, offset int) ([]entities.Person, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return page(m.sortedPersons(""), limit, offset), nil
}

// SearchPersons matches names with Unicode case folding.
func (m *Store) SearchPersons(_ context.Context, query string, limit int) ([]entities.Person, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return page(m.sortedPersons(query), limit, 0), nil
}

// CountPersons returns the number of persons.
func (m *Store) CountPersons(_ context.Context) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.persons), nil
}

// SaveRelationships writes all rows or none, unless PartialWrite is set.
func (m *Store) SaveRelationships(_ context.Context, rels []entities.Relationship) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveRelationshipsCallCount++

	if m.SaveRelationshipsErr != nil {
		if m.PartialWrite && len(rels) > 0 {
			m.relationships = append(m.relationships, rels[0])
		}
		return m.SaveRelationshipsErr
	}

	pending := append([]entities.Relationship(nil), m.relationships...)
	for _, r := range rels {
		for i := range pending {
			if conflicts(&pending[i], &r) {
				return entities.ErrRelationshipExists
			}
		}
		pending = append(pending, r)
	}
	m.relationships = pending
	return nil
}

// FindRelationshipBetween returns a row of kind between the pair in either direction.
func (m *Store) FindRelationshipBetween(_ context.Context, person1ID, person2ID string, kind entities.Kind) (*entities.Relationship, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.relationships {
		if r.Kind == kind && connects(&r, person1ID, person2ID) {
			found := r
			return &found, nil
		}
	}
	return nil, nil
}

// FindRelationshipsByPerson returns rows touching personID in insertion order.
func (m *Store) FindRelationshipsByPerson(_ context.Context, personID string) ([]entities.Relationship, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []entities.Relationship
	for _, r := range m.relationships {
		if r.Involves(personID) {
			result = append(result, r)
		}
	}
	return result, nil
}

// ListRelationships returns every row in insertion order.
func (m *Store) ListRelationships(_ context.Context) ([]entities.Relationship, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Relationships(), nil
}

// DeleteRelationshipsBetween removes matching rows in either direction.
func (m *Store) DeleteRelationshipsBetween(_ context.Context, person1ID, person2ID string, kind entities.Kind) (int64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed int64
	kept := m.relationships[:0]
	for _, r := range m.relationships {
		if r.Kind == kind && connects(&r, person1ID, person2ID) {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	m.relationships = kept
	return removed, nil
}

// CountRelationships returns the number of rows.
func (m *Store) CountRelationships(_ context.Context) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.relationships), nil
}

func (m *Store) sortedPersons(query string) []entities.Person {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q := entities.NameKey(query)
	result := make([]entities.Person, 0, len(m.persons))
	for _, p := range m.persons {
		if q == "" || strings.Contains(entities.NameKey(p.Name), q) {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		ki, kj := entities.NameKey(result[i].Name), entities.NameKey(result[j].Name)
		if ki != kj {
			return ki < kj
		}
		return result[i].ID < result[j].ID
	})
	return result
}

func page(persons []entities.Person, limit, offset int) []entities.Person {
	if offset >= len(persons) {
		return []entities.Person{}
	}
	if offset > 0 {
		persons = persons[offset:]
	}
	if limit > 0 && limit < len(persons) {
		persons = persons[:limit]
	}
	return persons
}

func connects(r *entities.Relationship, a, b string) bool {
	return (r.Person1ID == a && r.Person2ID == b) || (r.Person1ID == b && r.Person2ID == a)
}

// conflicts mirrors the SQL constraints: an exact (person1, person2, kind)
// repeat, or a parent row over the same unordered pair.
func conflicts(existing, candidate *entities.Relationship) bool {
	if existing.Kind != candidate.Kind {
		return false
	}
	if existing.Person1ID == candidate.Person1ID && existing.Person2ID == candidate.Person2ID {
		return true
	}
	return !candidate.Kind.IsSymmetric() && existing.PairKey() == candidate.PairKey()
}
