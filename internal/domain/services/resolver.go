package services

import (
	"context"
	"fmt"

	"github.com/ersonp/kinship/internal/domain/entities"
	"github.com/ersonp/kinship/internal/domain/ports"
)

type bucket int

const (
	bucketNone bucket = iota
	bucketParents
	bucketChildren
	bucketSpouses
	bucketSiblings
)

// ResolverService groups the rows touching a person into relative buckets.
type ResolverService struct {
	store ports.FamilyStore
}

// NewResolverService creates a new ResolverService.
func NewResolverService(store ports.FamilyStore) *ResolverService {
	return &ResolverService{store: store}
}

// Resolve returns the person with parents, children, spouses and siblings.
// It returns nil, nil when the person does not exist.
func (s *ResolverService) Resolve(ctx context.Context, personID string) (*entities.PersonWithRelationships, error) {
	person, err := s.store.FindPersonByID(ctx, personID)
	if err != nil {
		return nil, fmt.Errorf("finding person: %w", err)
	}
	if person == nil {
		return nil, nil
	}

	rels, err := s.store.FindRelationshipsByPerson(ctx, personID)
	if err != nil {
		return nil, fmt.Errorf("finding relationships: %w", err)
	}

	type placement struct {
		bucket bucket
		id     string
	}
	var placements []placement
	seen := make(map[placement]bool)
	var ids []string
	for i := range rels {
		b, other := classify(personID, &rels[i])
		if b == bucketNone {
			continue
		}
		p := placement{bucket: b, id: other}
		if seen[p] {
			continue
		}
		seen[p] = true
		placements = append(placements, p)
		ids = append(ids, other)
	}

	view := entities.NewPersonWithRelationships(*person)
	if len(placements) == 0 {
		return view, nil
	}

	relatives, err := s.store.FindPersonsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("loading relatives: %w", err)
	}
	byID := make(map[string]entities.Person, len(relatives))
	for _, r := range relatives {
		byID[r.ID] = r
	}

	for _, p := range placements {
		relative, ok := byID[p.id]
		if !ok {
			continue
		}
		switch p.bucket {
		case bucketParents:
			view.Parents = append(view.Parents, relative)
		case bucketChildren:
			view.Children = append(view.Children, relative)
		case bucketSpouses:
			view.Spouses = append(view.Spouses, relative)
		case bucketSiblings:
			view.Siblings = append(view.Siblings, relative)
		}
	}
	return view, nil
}

// classify places one row relative to personID. Self loops and unknown kinds
// yield bucketNone.
func classify(personID string, rel *entities.Relationship) (bucket, string) {
	if rel.IsSelfLoop() || !rel.Involves(personID) {
		return bucketNone, ""
	}
	other := rel.Other(personID)
	switch rel.Kind {
	case entities.KindParent:
		if rel.Person2ID == personID {
			return bucketParents, other
		}
		return bucketChildren, other
	case entities.KindSpouse:
		return bucketSpouses, other
	case entities.KindSibling:
		return bucketSiblings, other
	}
	return bucketNone, ""
}
