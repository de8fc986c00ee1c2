package handlers

import (
	"context"
	"fmt"

	"github.com/ersonp/kinship/internal/domain/entities"
	"github.com/ersonp/kinship/internal/domain/services"
)

// PersonHandler handles person operations.
type PersonHandler struct {
	service *services.PersonService
}

// NewPersonHandler creates a new PersonHandler.
func NewPersonHandler(service *services.PersonService) *PersonHandler {
	return &PersonHandler{service: service}
}

// UpdateOptions carries the fields to change. ClearBirthDate, or a
// non-nil empty BirthDate, removes the stored date.
type UpdateOptions struct {
	Name           *string
	BirthDate      *string
	ClearBirthDate bool
}

// ListPersonsResult is a page of persons plus the total count.
type ListPersonsResult struct {
	Persons []entities.Person `json:"persons"`
	Total   int               `json:"total"`
}

// HandleCreate creates a person. birthDate is YYYY-MM-DD or empty.
func (h *PersonHandler) HandleCreate(ctx context.Context, name, birthDate string) (*entities.Person, error) {
	date, err := parseBirthDate(birthDate)
	if err != nil {
		return nil, err
	}
	return h.service.Create(ctx, name, date)
}

// HandleUpdate changes a person's name and/or birth date.
func (h *PersonHandler) HandleUpdate(ctx context.Context, id string, opts UpdateOptions) (*entities.Person, error) {
	update := services.PersonUpdate{ID: id, Name: opts.Name, ClearBirthDate: opts.ClearBirthDate}
	if !opts.ClearBirthDate && opts.BirthDate != nil {
		if *opts.BirthDate == "" {
			update.ClearBirthDate = true
		} else {
			date, err := parseBirthDate(*opts.BirthDate)
			if err != nil {
				return nil, err
			}
			update.BirthDate = date
		}
	}
	return h.service.Update(ctx, update)
}

// HandleGet returns nil, nil for an unknown ID.
func (h *PersonHandler) HandleGet(ctx context.Context, id string) (*entities.Person, error) {
	return h.service.Get(ctx, id)
}

// HandleList returns a page of persons ordered by name.
func (h *PersonHandler) HandleList(ctx context.Context, limit, offset int) (*ListPersonsResult, error) {
	persons, err := h.service.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := h.service.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &ListPersonsResult{Persons: persons, Total: total}, nil
}

// HandleSearch finds persons by name, semantically when asked.
func (h *PersonHandler) HandleSearch(ctx context.Context, query string, semantic bool, limit int) ([]entities.Person, error) {
	return h.service.Search(ctx, query, services.SearchOptions{Semantic: semantic, Limit: limit})
}

func parseBirthDate(s string) (*entities.Date, error) {
	date, err := entities.ParseOptionalDate(s)
	if err != nil {
		return nil, &entities.ValidationError{Field: "birth_date", Message: fmt.Sprintf("must be YYYY-MM-DD, got %q", s)}
	}
	return date, nil
}
