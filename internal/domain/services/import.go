package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ersonp/kinship/internal/domain/entities"
	"github.com/ersonp/kinship/internal/infrastructure/parsers"
)

// ConflictStrategy defines how duplicate relationships are handled on import.
type ConflictStrategy string

const (
	// ConflictSkip counts a duplicate relationship as skipped.
	ConflictSkip ConflictStrategy = "skip"
	// ConflictFail aborts the import on the first duplicate relationship.
	ConflictFail ConflictStrategy = "fail"
)

// ParseConflictStrategy converts a flag value to a ConflictStrategy.
func ParseConflictStrategy(s string) (ConflictStrategy, error) {
	switch c := ConflictStrategy(strings.ToLower(s)); c {
	case ConflictSkip, ConflictFail:
		return c, nil
	case "":
		return ConflictSkip, nil
	default:
		return "", fmt.Errorf("invalid conflict strategy %q (valid: skip, fail)", s)
	}
}

// ImportOptions controls import behavior.
type ImportOptions struct {
	DryRun     bool
	OnConflict ConflictStrategy
}

// ImportError describes a record that was not imported.
type ImportError struct {
	Record  string // "person" or "relationship"
	Line    int    // 1-indexed, 0 if unknown
	Field   string
	Value   string
	Message string
}

func (e ImportError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s line %d: %s", e.Record, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Record, e.Message)
}

// ImportResult summarizes an import.
type ImportResult struct {
	PersonsImported       int
	RelationshipsImported int
	Skipped               int
	Errors                []ImportError
	// Keys maps document keys to the IDs of the persons created for them.
	Keys map[string]string
}

// ImportService loads documents of persons and relationships.
type ImportService struct {
	persons       *PersonService
	relationships *RelationshipService
}

// NewImportService creates a new ImportService.
func NewImportService(persons *PersonService, relationships *RelationshipService) *ImportService {
	return &ImportService{persons: persons, relationships: relationships}
}

type validPerson struct {
	raw       parsers.RawPerson
	birthDate *entities.Date
}

type validRelationship struct {
	raw  parsers.RawRelationship
	kind entities.Kind
}

// Import validates every record, then creates persons followed by
// relationships. Invalid records are reported in Errors and skipped.
func (s *ImportService) Import(ctx context.Context, doc *parsers.Document, opts ImportOptions) (*ImportResult, error) {
	result := &ImportResult{Keys: make(map[string]string)}
	if doc == nil {
		return result, nil
	}
	if opts.OnConflict == "" {
		opts.OnConflict = ConflictSkip
	}

	persons, personErrs := validatePersons(doc.Persons)
	rels, relErrs := validateRelationships(doc.Relationships)
	result.Errors = append(personErrs, relErrs...)

	if opts.DryRun {
		result.PersonsImported = len(persons)
		result.RelationshipsImported = len(rels)
		return result, nil
	}

	for i := range persons {
		p, err := s.persons.Create(ctx, persons[i].raw.Name, persons[i].birthDate)
		if err != nil {
			return nil, fmt.Errorf("creating person %q: %w", persons[i].raw.Name, err)
		}
		result.PersonsImported++
		if persons[i].raw.Key != "" {
			result.Keys[persons[i].raw.Key] = p.ID
		}
	}

	for i := range rels {
		raw := rels[i].raw
		p1, p2 := resolveRef(result.Keys, raw.Person1), resolveRef(result.Keys, raw.Person2)

		_, err := s.relationships.Create(ctx, p1, p2, rels[i].kind)
		switch {
		case err == nil:
			result.RelationshipsImported++
		case errors.Is(err, entities.ErrRelationshipExists):
			if opts.OnConflict == ConflictFail {
				return nil, fmt.Errorf("relationship line %d: %w", raw.LineNum, err)
			}
			result.Skipped++
		case errors.Is(err, entities.ErrPersonsNotFound), errors.Is(err, entities.ErrSelfRelationship):
			result.Errors = append(result.Errors, ImportError{
				Record:  parsers.RecordRelationship,
				Line:    raw.LineNum,
				Value:   raw.Person1 + " " + raw.Person2,
				Message: err.Error(),
			})
		default:
			return nil, fmt.Errorf("creating relationship line %d: %w", raw.LineNum, err)
		}
	}

	return result, nil
}

// resolveRef maps a document key to its new ID; anything else is taken as an
// existing person ID.
func resolveRef(keys map[string]string, ref string) string {
	if id, ok := keys[ref]; ok {
		return id
	}
	return ref
}

func validatePersons(raws []parsers.RawPerson) ([]validPerson, []ImportError) {
	valid := make([]validPerson, 0, len(raws))
	var errs []ImportError
	keys := make(map[string]bool, len(raws))

	for i := range raws {
		raw := raws[i]
		if raw.LineNum == 0 {
			raw.LineNum = i + 1
		}
		fail := func(field, value, msg string) {
			errs = append(errs, ImportError{Record: parsers.RecordPerson, Line: raw.LineNum, Field: field, Value: value, Message: msg})
		}

		if entities.NormalizeName(raw.Name) == "" {
			fail("name", raw.Name, "missing required field: name")
			continue
		}
		if raw.Key != "" && keys[raw.Key] {
			fail("key", raw.Key, fmt.Sprintf("duplicate key %q", raw.Key))
			continue
		}
		birthDate, err := entities.ParseOptionalDate(raw.BirthDate)
		if err != nil {
			fail("birth_date", raw.BirthDate, err.Error())
			continue
		}

		if raw.Key != "" {
			keys[raw.Key] = true
		}
		valid = append(valid, validPerson{raw: raw, birthDate: birthDate})
	}

	return valid, errs
}

func validateRelationships(raws []parsers.RawRelationship) ([]validRelationship, []ImportError) {
	valid := make([]validRelationship, 0, len(raws))
	var errs []ImportError

	for i := range raws {
		raw := raws[i]
		if raw.LineNum == 0 {
			raw.LineNum = i + 1
		}
		fail := func(field, value, msg string) {
			errs = append(errs, ImportError{Record: parsers.RecordRelationship, Line: raw.LineNum, Field: field, Value: value, Message: msg})
		}

		if raw.Person1 == "" {
			fail("person1", "", "missing required field: person1")
			continue
		}
		if raw.Person2 == "" {
			fail("person2", "", "missing required field: person2")
			continue
		}
		kind, err := entities.ParseKind(raw.Kind)
		if err != nil {
			fail("kind", raw.Kind, err.Error())
			continue
		}
		if raw.Person1 == raw.Person2 {
			fail("person2", raw.Person2, entities.ErrSelfRelationship.Error())
			continue
		}

		valid = append(valid, validRelationship{raw: raw, kind: kind})
	}

	return valid, errs
}
