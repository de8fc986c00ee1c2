package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/kinship/internal/domain/entities"
)

func TestRelationshipService_Create_Parent(t *testing.T) {
	store := newFamilyStore(t, "Bob", "John")
	svc := NewRelationshipService(store, nil)

	rel, err := svc.Create(t.Context(), idFor("Bob"), idFor("John"), entities.KindParent)

	require.NoError(t, err)
	require.NotNil(t, rel)
	assert.NotEmpty(t, rel.ID)
	assert.Equal(t, idFor("Bob"), rel.Person1ID)
	assert.Equal(t, idFor("John"), rel.Person2ID)
	assert.Equal(t, entities.KindParent, rel.Kind)

	rows := store.Relationships()
	require.Len(t, rows, 1)
	assert.Equal(t, *rel, rows[0])
}

func TestRelationshipService_Create_Symmetric(t *testing.T) {
	for _, kind := range []entities.Kind{entities.KindSpouse, entities.KindSibling} {
		t.Run(string(kind), func(t *testing.T) {
			store := newFamilyStore(t, "Ann", "Ben")
			svc := NewRelationshipService(store, nil)

			rel, err := svc.Create(t.Context(), idFor("Ann"), idFor("Ben"), kind)
			require.NoError(t, err)
			assert.Equal(t, idFor("Ann"), rel.Person1ID)

			rows := store.Relationships()
			require.Len(t, rows, 2)
			assert.Equal(t, idFor("Ann"), rows[0].Person1ID)
			assert.Equal(t, idFor("Ben"), rows[0].Person2ID)
			assert.Equal(t, idFor("Ben"), rows[1].Person1ID)
			assert.Equal(t, idFor("Ann"), rows[1].Person2ID)
			assert.NotEqual(t, rows[0].ID, rows[1].ID)
			assert.Equal(t, kind, rows[1].Kind)
			assert.Equal(t, 1, store.SaveRelationshipsCallCount)
		})
	}
}

func TestRelationshipService_Create_RejectsDuplicates(t *testing.T) {
	tests := []struct {
		name    string
		kind    entities.Kind
		reverse bool
	}{
		{name: "parent same order", kind: entities.KindParent},
		{name: "parent reversed", kind: entities.KindParent, reverse: true},
		{name: "spouse same order", kind: entities.KindSpouse},
		{name: "spouse reversed", kind: entities.KindSpouse, reverse: true},
		{name: "sibling reversed", kind: entities.KindSibling, reverse: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFamilyStore(t, "A", "B")
			svc := NewRelationshipService(store, nil)

			_, err := svc.Create(t.Context(), idFor("A"), idFor("B"), tt.kind)
			require.NoError(t, err)
			before := len(store.Relationships())

			p1, p2 := idFor("A"), idFor("B")
			if tt.reverse {
				p1, p2 = p2, p1
			}
			_, err = svc.Create(t.Context(), p1, p2, tt.kind)

			require.ErrorIs(t, err, entities.ErrRelationshipExists)
			assert.Len(t, store.Relationships(), before)
		})
	}
}

func TestRelationshipService_Create_KindsAreIndependent(t *testing.T) {
	store := newFamilyStore(t, "A", "B")
	svc := NewRelationshipService(store, nil)

	_, err := svc.Create(t.Context(), idFor("A"), idFor("B"), entities.KindSpouse)
	require.NoError(t, err)
	_, err = svc.Create(t.Context(), idFor("A"), idFor("B"), entities.KindSibling)
	require.NoError(t, err)
	_, err = svc.Create(t.Context(), idFor("A"), idFor("B"), entities.KindParent)
	require.NoError(t, err)

	assert.Len(t, store.Relationships(), 5)
}

func TestRelationshipService_Create_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		p1, p2  string
		kind    entities.Kind
		wantErr error
	}{
		{name: "unknown kind", p1: idFor("A"), p2: idFor("B"), kind: "cousin", wantErr: entities.ErrInvalidKind},
		{name: "self relationship", p1: idFor("A"), p2: idFor("A"), kind: entities.KindSpouse, wantErr: entities.ErrSelfRelationship},
		{name: "second person missing", p1: idFor("A"), p2: "ghost", kind: entities.KindParent, wantErr: entities.ErrPersonsNotFound},
		{name: "both missing", p1: "ghost-1", p2: "ghost-2", kind: entities.KindSibling, wantErr: entities.ErrPersonsNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFamilyStore(t, "A", "B")
			svc := NewRelationshipService(store, nil)

			rel, err := svc.Create(t.Context(), tt.p1, tt.p2, tt.kind)

			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, rel)
			assert.Empty(t, store.Relationships())
			assert.Zero(t, store.SaveRelationshipsCallCount)
		})
	}
}

func TestRelationshipService_Create_StoreConstraintMapsToExists(t *testing.T) {
	store := newFamilyStore(t, "A", "B")
	store.SaveRelationshipsErr = fmt.Errorf("inserting relationship: %w", entities.ErrRelationshipExists)
	svc := NewRelationshipService(store, nil)

	_, err := svc.Create(t.Context(), idFor("A"), idFor("B"), entities.KindSpouse)

	require.ErrorIs(t, err, entities.ErrRelationshipExists)
	assert.NotErrorIs(t, err, entities.ErrPartialRelationship)
}

func TestRelationshipService_Create_PartialWrite(t *testing.T) {
	store := newFamilyStore(t, "A", "B")
	diskErr := errors.New("disk full")
	store.SaveRelationshipsErr = diskErr
	store.PartialWrite = true
	svc := NewRelationshipService(store, nil)

	_, err := svc.Create(t.Context(), idFor("A"), idFor("B"), entities.KindSibling)

	require.ErrorIs(t, err, entities.ErrPartialRelationship)
	assert.ErrorIs(t, err, diskErr)
}

func TestRelationshipService_Create_StoreError(t *testing.T) {
	store := newFamilyStore(t, "A", "B")
	store.SaveRelationshipsErr = errors.New("connection reset")
	svc := NewRelationshipService(store, nil)

	_, err := svc.Create(t.Context(), idFor("A"), idFor("B"), entities.KindSpouse)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "saving relationship")
	assert.NotErrorIs(t, err, entities.ErrPartialRelationship)
}

func TestRelationshipService_Create_LookupError(t *testing.T) {
	store := newFamilyStore(t, "A", "B")
	store.Err = errors.New("database unavailable")
	svc := NewRelationshipService(store, nil)

	_, err := svc.Create(t.Context(), idFor("A"), idFor("B"), entities.KindParent)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "checking persons exist")
	assert.Contains(t, err.Error(), "database unavailable")
}

func TestRelationshipService_Delete(t *testing.T) {
	tests := []struct {
		name    string
		kind    entities.Kind
		reverse bool
	}{
		{name: "spouse same order", kind: entities.KindSpouse},
		{name: "spouse reversed", kind: entities.KindSpouse, reverse: true},
		{name: "parent reversed", kind: entities.KindParent, reverse: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFamilyStore(t, "A", "B")
			svc := NewRelationshipService(store, nil)
			_, err := svc.Create(t.Context(), idFor("A"), idFor("B"), tt.kind)
			require.NoError(t, err)

			p1, p2 := idFor("A"), idFor("B")
			if tt.reverse {
				p1, p2 = p2, p1
			}

			deleted, err := svc.Delete(t.Context(), p1, p2, tt.kind)
			require.NoError(t, err)
			assert.True(t, deleted)
			assert.Empty(t, store.Relationships())

			deleted, err = svc.Delete(t.Context(), p1, p2, tt.kind)
			require.NoError(t, err)
			assert.False(t, deleted)
		})
	}
}

func TestRelationshipService_Delete_LeavesOtherKinds(t *testing.T) {
	store := newFamilyStore(t, "A", "B")
	svc := NewRelationshipService(store, nil)
	_, err := svc.Create(t.Context(), idFor("A"), idFor("B"), entities.KindSpouse)
	require.NoError(t, err)
	_, err = svc.Create(t.Context(), idFor("A"), idFor("B"), entities.KindParent)
	require.NoError(t, err)

	deleted, err := svc.Delete(t.Context(), idFor("A"), idFor("B"), entities.KindSpouse)
	require.NoError(t, err)
	assert.True(t, deleted)

	rows := store.Relationships()
	require.Len(t, rows, 1)
	assert.Equal(t, entities.KindParent, rows[0].Kind)
}

func TestRelationshipService_Delete_InvalidKind(t *testing.T) {
	svc := NewRelationshipService(newFamilyStore(t), nil)

	deleted, err := svc.Delete(t.Context(), "a", "b", "friend")

	require.ErrorIs(t, err, entities.ErrInvalidKind)
	assert.False(t, deleted)
}

func TestRelationshipService_ListAll_CollapsesMirrorRows(t *testing.T) {
	store := newFamilyStore(t, "A", "B", "C")
	svc := NewRelationshipService(store, nil)
	_, err := svc.Create(t.Context(), idFor("A"), idFor("B"), entities.KindSpouse)
	require.NoError(t, err)
	_, err = svc.Create(t.Context(), idFor("A"), idFor("C"), entities.KindParent)
	require.NoError(t, err)

	all, err := svc.ListAll(t.Context())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, idFor("A"), all[0].Person1ID)
	assert.Equal(t, entities.KindSpouse, all[0].Kind)
	assert.Equal(t, entities.KindParent, all[1].Kind)

	count, err := svc.Count(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	listed, err := svc.List(t.Context(), idFor("B"))
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}
