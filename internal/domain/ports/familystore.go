package ports

import (
	"context"

	"github.com/ersonp/kinship/internal/domain/entities"
)

// PersonRepository persists person nodes.
type PersonRepository interface {
	// SavePerson inserts the person or updates it when the ID exists.
	SavePerson(ctx context.Context, person *entities.Person) error

	// FindPersonByID returns nil, nil when no person has the ID.
	FindPersonByID(ctx context.Context, id string) (*entities.Person, error)

	// FindPersonsByIDs returns the persons that exist among ids, in no particular order.
	FindPersonsByIDs(ctx context.Context, ids []string) ([]entities.Person, error)

	// ListPersons lists persons ordered by name. A limit of zero or less means no limit.
	ListPersons(ctx context.Context, limit, offset int) ([]entities.Person, error)

	// SearchPersons does a case-insensitive substring match on name, ordered by name.
	SearchPersons(ctx context.Context, query string, limit int) ([]entities.Person, error)

	// CountPersons returns the number of stored persons.
	CountPersons(ctx context.Context) (int, error)
}

// RelationshipRepository persists relationship rows.
type RelationshipRepository interface {
	// SaveRelationships writes all rows in one transaction. A uniqueness
	// violation is reported as entities.ErrRelationshipExists.
	SaveRelationships(ctx context.Context, rels []entities.Relationship) error

	// FindRelationshipBetween returns a row of the given kind connecting the
	// two persons in either direction, or nil, nil.
	FindRelationshipBetween(ctx context.Context, person1ID, person2ID string, kind entities.Kind) (*entities.Relationship, error)

	// FindRelationshipsByPerson returns every row with personID at either end.
	FindRelationshipsByPerson(ctx context.Context, personID string) ([]entities.Relationship, error)

	// ListRelationships returns every stored row ordered by creation time.
	ListRelationships(ctx context.Context) ([]entities.Relationship, error)

	// DeleteRelationshipsBetween removes rows of the kind connecting the two
	// persons in either direction and returns how many were removed.
	DeleteRelationshipsBetween(ctx context.Context, person1ID, person2ID string, kind entities.Kind) (int64, error)

	// CountRelationships returns the number of stored rows.
	CountRelationships(ctx context.Context) (int, error)
}

// FamilyStore is the relational store behind a family tree.
type FamilyStore interface {
	PersonRepository
	RelationshipRepository

	// EnsureSchema creates tables and indexes if they don't exist.
	EnsureSchema(ctx context.Context) error

	// Close releases the underlying connections.
	Close() error
}
