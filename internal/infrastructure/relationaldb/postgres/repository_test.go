package postgres

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/kinship/internal/domain/entities"
	"github.com/ersonp/kinship/internal/domain/services"
	"github.com/ersonp/kinship/internal/infrastructure/config"
)

// setupTestRepo connects to KINSHIP_TEST_POSTGRES_URL in a throwaway schema.
func setupTestRepo(t *testing.T) *Repository {
	t.Helper()
	url := os.Getenv("KINSHIP_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("KINSHIP_TEST_POSTGRES_URL not set")
	}

	schema := config.GenerateSchemaName("test_" + uuid.New().String()[:8])
	repo, err := NewRepository(t.Context(), config.StoreConfig{PostgresURL: url, MaxConns: 4}, schema)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = repo.pool.Exec(t.Context(), fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", schema))
		repo.Close()
	})

	require.NoError(t, repo.EnsureSchema(t.Context()))
	return repo
}

func TestNewRepository_RequiresURL(t *testing.T) {
	_, err := NewRepository(t.Context(), config.StoreConfig{}, "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres url is required")
}

func TestLimitValue(t *testing.T) {
	assert.Nil(t, limitValue(0))
	assert.Nil(t, limitValue(-3))
	assert.Equal(t, 5, limitValue(5))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%\_a\\b`, escapeLike(`100%_a\b`))
}

func TestRepository_Persons(t *testing.T) {
	repo := setupTestRepo(t)
	now := time.Now().UTC().Truncate(time.Microsecond)
	birth := entities.NewDate(1950, time.March, 7)

	for _, p := range []entities.Person{
		{ID: "p1", Name: "Johnson", BirthDate: &birth, CreatedAt: now, UpdatedAt: now},
		{ID: "p2", Name: "john", CreatedAt: now, UpdatedAt: now},
		{ID: "p3", Name: "Mary", CreatedAt: now, UpdatedAt: now},
		{ID: "p4", Name: "Élise Öberg", CreatedAt: now, UpdatedAt: now},
	} {
		require.NoError(t, repo.SavePerson(t.Context(), &p))
	}

	found, err := repo.FindPersonByID(t.Context(), "p1")
	require.NoError(t, err)
	require.NotNil(t, found.BirthDate)
	assert.Equal(t, birth, *found.BirthDate)
	assert.True(t, now.Equal(found.CreatedAt))

	missing, err := repo.FindPersonByID(t.Context(), "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	search, err := repo.SearchPersons(t.Context(), "JOHN", 10)
	require.NoError(t, err)
	assert.Len(t, search, 2)

	folded, err := repo.SearchPersons(t.Context(), "élise", 10)
	require.NoError(t, err)
	require.Len(t, folded, 1)
	assert.Equal(t, "p4", folded[0].ID)

	all, err := repo.ListPersons(t.Context(), 0, 0)
	require.NoError(t, err)
	names := make([]string, len(all))
	for i, p := range all {
		names[i] = p.Name
	}
	assert.Equal(t, []string{"john", "Johnson", "Mary", "Élise Öberg"}, names)
}

func TestRepository_Relationships(t *testing.T) {
	repo := setupTestRepo(t)
	persons := services.NewPersonService(repo, nil)
	writer := services.NewRelationshipService(repo, nil)

	bob, err := persons.Create(t.Context(), "Bob", nil)
	require.NoError(t, err)
	john, err := persons.Create(t.Context(), "John", nil)
	require.NoError(t, err)

	_, err = writer.Create(t.Context(), bob.ID, john.ID, entities.KindParent)
	require.NoError(t, err)
	_, err = writer.Create(t.Context(), bob.ID, john.ID, entities.KindSibling)
	require.NoError(t, err)

	err = repo.SaveRelationships(t.Context(), []entities.Relationship{
		{ID: "dup", Person1ID: john.ID, Person2ID: bob.ID, Kind: entities.KindParent, CreatedAt: time.Now()},
	})
	require.ErrorIs(t, err, entities.ErrRelationshipExists)

	count, err := repo.CountRelationships(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	n, err := repo.DeleteRelationshipsBetween(t.Context(), john.ID, bob.ID, entities.KindSibling)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	view, err := services.NewResolverService(repo).Resolve(t.Context(), john.ID)
	require.NoError(t, err)
	require.Len(t, view.Parents, 1)
	assert.Equal(t, "Bob", view.Parents[0].Name)
	assert.Empty(t, view.Siblings)
}
