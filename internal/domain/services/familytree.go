package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ersonp/kinship/internal/domain/entities"
)

// DefaultExpandConcurrency bounds parallel resolves during expansion.
const DefaultExpandConcurrency = 8

// Resolver resolves a person into their direct relatives.
type Resolver interface {
	Resolve(ctx context.Context, personID string) (*entities.PersonWithRelationships, error)
}

// FamilyTreeService builds three-generation family trees.
type FamilyTreeService struct {
	resolver    Resolver
	concurrency int
}

// NewFamilyTreeService creates a new FamilyTreeService. A concurrency below
// one uses DefaultExpandConcurrency.
func NewFamilyTreeService(resolver Resolver, concurrency int) *FamilyTreeService {
	if concurrency < 1 {
		concurrency = DefaultExpandConcurrency
	}
	return &FamilyTreeService{resolver: resolver, concurrency: concurrency}
}

// Expand resolves the center person, then each parent and each child. The
// resolved parents are the grandparent entries and the resolved children
// are the grandchild entries. Returns nil, nil for an unknown person.
func (s *FamilyTreeService) Expand(ctx context.Context, personID string) (*entities.FamilyTreeData, error) {
	center, err := s.resolver.Resolve(ctx, personID)
	if err != nil {
		return nil, fmt.Errorf("resolving center person: %w", err)
	}
	if center == nil {
		return nil, nil
	}

	grandparents, err := s.resolveAll(ctx, center.Parents)
	if err != nil {
		return nil, fmt.Errorf("resolving parents: %w", err)
	}
	grandchildren, err := s.resolveAll(ctx, center.Children)
	if err != nil {
		return nil, fmt.Errorf("resolving children: %w", err)
	}

	return &entities.FamilyTreeData{
		CenterPerson:  *center,
		Grandparents:  grandparents,
		Grandchildren: grandchildren,
	}, nil
}

// resolveAll resolves persons concurrently and keeps their input order.
// Persons that disappeared since the first resolve are skipped.
func (s *FamilyTreeService) resolveAll(ctx context.Context, persons []entities.Person) ([]entities.PersonWithRelationships, error) {
	resolved := make([]*entities.PersonWithRelationships, len(persons))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range persons {
		g.Go(func() error {
			r, err := s.resolver.Resolve(gctx, persons[i].ID)
			if err != nil {
				return fmt.Errorf("resolving %s: %w", persons[i].ID, err)
			}
			resolved[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make([]entities.PersonWithRelationships, 0, len(resolved))
	for _, r := range resolved {
		if r != nil {
			result = append(result, *r)
		}
	}
	return result, nil
}
