package entities

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Person is a node in the family graph.
type Person struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	BirthDate *Date     `json:"birth_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NormalizeName trims surrounding whitespace and collapses internal runs of
// spaces so that "  Ada   Lovelace " and "Ada Lovelace" are stored alike.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// NameKey is the Unicode case-folded form of name that stores search and
// order by.
func NameKey(name string) string {
	return cases.Fold().String(NormalizeName(name))
}

// Validate checks the fields a person must carry before it is stored.
func (p *Person) Validate() error {
	if p.ID == "" {
		return &ValidationError{Field: "id", Message: "is required"}
	}
	if NormalizeName(p.Name) == "" {
		return &ValidationError{Field: "name", Message: "is required"}
	}
	return nil
}

// SearchText is the text embedded for semantic person search.
func (p *Person) SearchText() string {
	if p.BirthDate == nil {
		return p.Name
	}
	return p.Name + " born " + p.BirthDate.String()
}
