package handlers

import (
	"context"

	"github.com/ersonp/kinship/internal/domain/entities"
	"github.com/ersonp/kinship/internal/domain/services"
)

// RelationshipHandler handles relationship operations.
type RelationshipHandler struct {
	service *services.RelationshipService
}

// NewRelationshipHandler creates a new RelationshipHandler.
func NewRelationshipHandler(service *services.RelationshipService) *RelationshipHandler {
	return &RelationshipHandler{service: service}
}

// ListOptions configures relationship listing.
type ListOptions struct {
	Kind string // empty lists every kind
}

// HandleCreate relates two persons. For parent, person1 is the parent.
func (h *RelationshipHandler) HandleCreate(ctx context.Context, person1ID, person2ID, kind string) (*entities.Relationship, error) {
	k, err := entities.ParseKind(kind)
	if err != nil {
		return nil, err
	}
	return h.service.Create(ctx, person1ID, person2ID, k)
}

// HandleDelete removes the relationship of kind between two persons in
// either direction. It reports whether anything was removed.
func (h *RelationshipHandler) HandleDelete(ctx context.Context, person1ID, person2ID, kind string) (bool, error) {
	k, err := entities.ParseKind(kind)
	if err != nil {
		return false, err
	}
	return h.service.Delete(ctx, person1ID, person2ID, k)
}

// HandleList returns the raw rows touching a person.
func (h *RelationshipHandler) HandleList(ctx context.Context, personID string, opts ListOptions) ([]entities.Relationship, error) {
	var kind entities.Kind
	if opts.Kind != "" {
		k, err := entities.ParseKind(opts.Kind)
		if err != nil {
			return nil, err
		}
		kind = k
	}

	relationships, err := h.service.List(ctx, personID)
	if err != nil {
		return nil, err
	}
	if kind == "" {
		return relationships, nil
	}

	filtered := make([]entities.Relationship, 0, len(relationships))
	for i := range relationships {
		if relationships[i].Kind == kind {
			filtered = append(filtered, relationships[i])
		}
	}
	return filtered, nil
}

// HandleCount returns the number of stored rows.
func (h *RelationshipHandler) HandleCount(ctx context.Context) (int, error) {
	return h.service.Count(ctx)
}
