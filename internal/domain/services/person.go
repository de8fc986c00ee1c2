package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ersonp/kinship/internal/domain/entities"
	"github.com/ersonp/kinship/internal/domain/ports"
)

// DefaultSearchLimit caps search results when no limit is given.
const DefaultSearchLimit = 20

// PersonUpdate carries the fields to change. Nil fields are left alone.
type PersonUpdate struct {
	ID             string
	Name           *string
	BirthDate      *entities.Date
	ClearBirthDate bool
}

// SearchOptions controls person search.
type SearchOptions struct {
	Semantic bool
	Limit    int
}

// PersonService manages persons and keeps the optional semantic index in step.
type PersonService struct {
	store    ports.PersonRepository
	index    ports.PersonIndex
	embedder ports.Embedder
	logger   *slog.Logger
	now      func() time.Time
}

// NewPersonService creates a new PersonService. A nil logger discards.
func NewPersonService(store ports.PersonRepository, logger *slog.Logger) *PersonService {
	return &PersonService{
		store:  store,
		logger: orDiscard(logger),
		now:    time.Now,
	}
}

// WithSemanticSearch enables indexing and semantic search.
func (s *PersonService) WithSemanticSearch(index ports.PersonIndex, embedder ports.Embedder) *PersonService {
	s.index = index
	s.embedder = embedder
	return s
}

// SemanticEnabled reports whether semantic search is configured.
func (s *PersonService) SemanticEnabled() bool {
	return s.index != nil && s.embedder != nil
}

// Create stores a new person.
func (s *PersonService) Create(ctx context.Context, name string, birthDate *entities.Date) (*entities.Person, error) {
	now := s.now()
	person := &entities.Person{
		ID:        uuid.New().String(),
		Name:      entities.NormalizeName(name),
		BirthDate: birthDate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := person.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.SavePerson(ctx, person); err != nil {
		return nil, fmt.Errorf("saving person: %w", err)
	}

	s.reindex(ctx, person)
	return person, nil
}

// Update applies changes to an existing person and refreshes UpdatedAt.
func (s *PersonService) Update(ctx context.Context, update PersonUpdate) (*entities.Person, error) {
	person, err := s.store.FindPersonByID(ctx, update.ID)
	if err != nil {
		return nil, fmt.Errorf("finding person: %w", err)
	}
	if person == nil {
		return nil, fmt.Errorf("%w: %s", entities.ErrPersonNotFound, update.ID)
	}

	if update.Name != nil {
		person.Name = entities.NormalizeName(*update.Name)
	}
	switch {
	case update.ClearBirthDate:
		person.BirthDate = nil
	case update.BirthDate != nil:
		d := *update.BirthDate
		person.BirthDate = &d
	}
	person.UpdatedAt = s.now()

	if err := person.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.SavePerson(ctx, person); err != nil {
		return nil, fmt.Errorf("saving person: %w", err)
	}

	s.reindex(ctx, person)
	return person, nil
}

// Get returns nil, nil for an unknown ID.
func (s *PersonService) Get(ctx context.Context, id string) (*entities.Person, error) {
	person, err := s.store.FindPersonByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding person: %w", err)
	}
	return person, nil
}

// List returns persons ordered by name. A limit of zero returns everyone.
func (s *PersonService) List(ctx context.Context, limit, offset int) ([]entities.Person, error) {
	persons, err := s.store.ListPersons(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing persons: %w", err)
	}
	return persons, nil
}

// Count returns the number of persons.
func (s *PersonService) Count(ctx context.Context) (int, error) {
	return s.store.CountPersons(ctx)
}

// Search finds persons by name. The default is a case-insensitive substring
// match; semantic mode ranks by embedding similarity.
func (s *PersonService) Search(ctx context.Context, query string, opts SearchOptions) ([]entities.Person, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is empty", entities.ErrInvalidQuery)
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	if !opts.Semantic {
		persons, err := s.store.SearchPersons(ctx, query, limit)
		if err != nil {
			return nil, fmt.Errorf("searching persons: %w", err)
		}
		return persons, nil
	}

	if !s.SemanticEnabled() {
		return nil, fmt.Errorf("%w: semantic search is not configured", entities.ErrInvalidQuery)
	}
	return s.semanticSearch(ctx, query, limit)
}

func (s *PersonService) semanticSearch(ctx context.Context, query string, limit int) ([]entities.Person, error) {
	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	hits, err := s.index.Search(ctx, embedding, limit)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}
	if len(hits) == 0 {
		return []entities.Person{}, nil
	}

	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
	}
	found, err := s.store.FindPersonsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("loading persons: %w", err)
	}
	byID := make(map[string]entities.Person, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	result := make([]entities.Person, 0, len(hits))
	for _, h := range hits {
		p, ok := byID[h.ID]
		if !ok {
			s.prune(ctx, h.ID)
			continue
		}
		result = append(result, p)
	}
	return result, nil
}

// prune drops an index entry whose person is gone from the store.
func (s *PersonService) prune(ctx context.Context, personID string) {
	if err := s.index.Delete(ctx, personID); err != nil {
		s.logger.WarnContext(ctx, "pruning stale index entry failed", "person", personID, "error", err)
	}
}

// reindex refreshes the person's embedding. Failures are logged only.
func (s *PersonService) reindex(ctx context.Context, person *entities.Person) {
	if !s.SemanticEnabled() {
		return
	}
	text := person.SearchText()
	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		s.logger.WarnContext(ctx, "embedding person failed", "person", person.ID, "error", err)
		return
	}
	if err := s.index.Upsert(ctx, person.ID, text, embedding); err != nil {
		s.logger.WarnContext(ctx, "indexing person failed", "person", person.ID, "error", err)
	}
}
