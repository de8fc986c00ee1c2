package services

import (
	"testing"
	"time"

	"github.com/ersonp/kinship/internal/domain/entities"
	"github.com/ersonp/kinship/internal/domain/mocks"
)

var testTime = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

// newFamilyStore returns a store holding the named persons, keyed by
// lowercase name.
func newFamilyStore(t *testing.T, names ...string) *mocks.Store {
	t.Helper()
	store := mocks.NewStore()
	for _, name := range names {
		store.AddPerson(entities.Person{
			ID:        idFor(name),
			Name:      name,
			CreatedAt: testTime,
			UpdatedAt: testTime,
		})
	}
	return store
}

func idFor(name string) string {
	return "id-" + name
}

func names(persons []entities.Person) []string {
	result := make([]string, len(persons))
	for i, p := range persons {
		result[i] = p.Name
	}
	return result
}

func viewNames(views []entities.PersonWithRelationships) []string {
	result := make([]string, len(views))
	for i, v := range views {
		result[i] = v.Name
	}
	return result
}
