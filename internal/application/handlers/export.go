package handlers

import (
	"context"
	"fmt"
	"io"

	"github.com/ersonp/kinship/internal/domain/services"
	"github.com/ersonp/kinship/internal/infrastructure/parsers"
)

// ExportHandler writes a whole tree in an importable format.
type ExportHandler struct {
	persons       *services.PersonService
	relationships *services.RelationshipService
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(persons *services.PersonService, relationships *services.RelationshipService) *ExportHandler {
	return &ExportHandler{persons: persons, relationships: relationships}
}

// ExportResult counts what was written.
type ExportResult struct {
	Persons       int
	Relationships int
}

// Handle writes every person and one record per logical relationship.
// Person IDs are used as document keys.
func (h *ExportHandler) Handle(ctx context.Context, w io.Writer, format string) (*ExportResult, error) {
	doc, err := h.Document(ctx)
	if err != nil {
		return nil, err
	}
	if err := parsers.Write(w, format, doc); err != nil {
		return nil, fmt.Errorf("writing export: %w", err)
	}
	return &ExportResult{Persons: len(doc.Persons), Relationships: len(doc.Relationships)}, nil
}

// Document builds the export document.
func (h *ExportHandler) Document(ctx context.Context) (*parsers.Document, error) {
	persons, err := h.persons.List(ctx, 0, 0)
	if err != nil {
		return nil, err
	}
	relationships, err := h.relationships.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	doc := &parsers.Document{
		Persons:       make([]parsers.RawPerson, 0, len(persons)),
		Relationships: make([]parsers.RawRelationship, 0, len(relationships)),
	}
	for i := range persons {
		raw := parsers.RawPerson{Key: persons[i].ID, Name: persons[i].Name}
		if persons[i].BirthDate != nil {
			raw.BirthDate = persons[i].BirthDate.String()
		}
		doc.Persons = append(doc.Persons, raw)
	}
	for i := range relationships {
		doc.Relationships = append(doc.Relationships, parsers.RawRelationship{
			Person1: relationships[i].Person1ID,
			Person2: relationships[i].Person2ID,
			Kind:    string(relationships[i].Kind),
		})
	}
	return doc, nil
}
