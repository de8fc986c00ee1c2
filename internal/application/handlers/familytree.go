package handlers

import (
	"context"

	"github.com/ersonp/kinship/internal/domain/entities"
	"github.com/ersonp/kinship/internal/domain/services"
)

// FamilyTreeHandler serves the read side of the graph.
type FamilyTreeHandler struct {
	resolver *services.ResolverService
	expander *services.FamilyTreeService
}

// NewFamilyTreeHandler creates a new FamilyTreeHandler.
func NewFamilyTreeHandler(resolver *services.ResolverService, expander *services.FamilyTreeService) *FamilyTreeHandler {
	return &FamilyTreeHandler{resolver: resolver, expander: expander}
}

// HandleRelationships returns the person with immediate relatives, or nil, nil.
func (h *FamilyTreeHandler) HandleRelationships(ctx context.Context, personID string) (*entities.PersonWithRelationships, error) {
	return h.resolver.Resolve(ctx, personID)
}

// HandleFamilyTree returns the three-generation view, or nil, nil.
func (h *FamilyTreeHandler) HandleFamilyTree(ctx context.Context, personID string) (*entities.FamilyTreeData, error) {
	return h.expander.Expand(ctx, personID)
}
