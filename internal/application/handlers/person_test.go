package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/kinship/internal/domain/entities"
)

func TestPersonHandler_HandleCreate(t *testing.T) {
	tests := []struct {
		name      string
		inName    string
		birthDate string
		wantErr   error
		wantDate  string
	}{
		{name: "with birth date", inName: "Ada  Lovelace", birthDate: "1815-12-10", wantDate: "1815-12-10"},
		{name: "without birth date", inName: "Charles"},
		{name: "bad birth date", inName: "Ada", birthDate: "10/12/1815", wantErr: entities.ErrInvalidPerson},
		{name: "empty name", inName: "   ", wantErr: entities.ErrInvalidPerson},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewPersonHandler(newTestServices(seedStore(t)).persons)

			person, err := h.HandleCreate(t.Context(), tt.inName, tt.birthDate)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, person.ID)
			if tt.wantDate == "" {
				assert.Nil(t, person.BirthDate)
			} else {
				require.NotNil(t, person.BirthDate)
				assert.Equal(t, tt.wantDate, person.BirthDate.String())
			}
		})
	}
}

func TestPersonHandler_HandleUpdate(t *testing.T) {
	store := seedStore(t)
	h := NewPersonHandler(newTestServices(store).persons)

	person, err := h.HandleCreate(t.Context(), "Ada", "1815-12-10")
	require.NoError(t, err)

	name := "Ada King"
	updated, err := h.HandleUpdate(t.Context(), person.ID, UpdateOptions{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ada King", updated.Name)
	require.NotNil(t, updated.BirthDate)

	empty := ""
	updated, err = h.HandleUpdate(t.Context(), person.ID, UpdateOptions{BirthDate: &empty})
	require.NoError(t, err)
	assert.Nil(t, updated.BirthDate)

	bad := "yesterday"
	_, err = h.HandleUpdate(t.Context(), person.ID, UpdateOptions{BirthDate: &bad})
	require.ErrorIs(t, err, entities.ErrInvalidPerson)

	_, err = h.HandleUpdate(t.Context(), "missing", UpdateOptions{Name: &name})
	require.ErrorIs(t, err, entities.ErrPersonNotFound)
}

func TestPersonHandler_HandleGetAndList(t *testing.T) {
	h := NewPersonHandler(newTestServices(seedStore(t, "Mary", "Bob", "John")).persons)

	person, err := h.HandleGet(t.Context(), "id-Bob")
	require.NoError(t, err)
	require.NotNil(t, person)
	assert.Equal(t, "Bob", person.Name)

	missing, err := h.HandleGet(t.Context(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)

	page, err := h.HandleList(t.Context(), 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Persons, 2)
	assert.Equal(t, "Bob", page.Persons[0].Name)
	assert.Equal(t, "John", page.Persons[1].Name)
}

func TestPersonHandler_HandleSearch(t *testing.T) {
	h := NewPersonHandler(newTestServices(seedStore(t, "Mary", "Maria", "Bob")).persons)

	found, err := h.HandleSearch(t.Context(), "mar", false, 0)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Maria", found[0].Name)

	_, err = h.HandleSearch(t.Context(), "", false, 0)
	require.ErrorIs(t, err, entities.ErrInvalidQuery)

	_, err = h.HandleSearch(t.Context(), "mar", true, 0)
	require.ErrorIs(t, err, entities.ErrInvalidQuery)
}
