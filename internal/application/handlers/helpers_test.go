package handlers

import (
	"testing"
	"time"

	"github.com/ersonp/kinship/internal/domain/entities"
	"github.com/ersonp/kinship/internal/domain/mocks"
	"github.com/ersonp/kinship/internal/domain/services"
)

var testTime = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

func seedStore(t *testing.T, names ...string) *mocks.Store {
	t.Helper()
	store := mocks.NewStore()
	for _, name := range names {
		store.AddPerson(entities.Person{ID: "id-" + name, Name: name, CreatedAt: testTime, UpdatedAt: testTime})
	}
	return store
}

type testServices struct {
	persons       *services.PersonService
	relationships *services.RelationshipService
	resolver      *services.ResolverService
	tree          *services.FamilyTreeService
}

func newTestServices(store *mocks.Store) testServices {
	resolver := services.NewResolverService(store)
	return testServices{
		persons:       services.NewPersonService(store, nil),
		relationships: services.NewRelationshipService(store, nil),
		resolver:      resolver,
		tree:          services.NewFamilyTreeService(resolver, 2),
	}
}
