package entities

import (
	"fmt"
	"strings"
	"time"
)

// Kind is the type of a family relationship.
type Kind string

const (
	// KindParent means Person1 is a parent of Person2.
	KindParent Kind = "parent"
	// KindSpouse is stored in both directions.
	KindSpouse Kind = "spouse"
	// KindSibling is stored in both directions.
	KindSibling Kind = "sibling"
)

// Materialization describes how a kind is stored.
type Materialization struct {
	// Symmetric kinds are written as a row per direction.
	Symmetric bool
}

var kindStrategies = map[Kind]Materialization{
	KindParent:  {Symmetric: false},
	KindSpouse:  {Symmetric: true},
	KindSibling: {Symmetric: true},
}

// Kinds returns every supported kind in display order.
func Kinds() []Kind {
	return []Kind{KindParent, KindSpouse, KindSibling}
}

// KindNames returns the supported kinds as strings.
func KindNames() []string {
	kinds := Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return names
}

// ParseKind converts a string to a Kind, case-insensitively.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", fmt.Errorf("%w: %q (valid: %s)", ErrInvalidKind, s, strings.Join(KindNames(), ", "))
	}
	return k, nil
}

// IsValid reports whether k is a supported kind.
func (k Kind) IsValid() bool {
	_, ok := kindStrategies[k]
	return ok
}

// Materialization returns the storage strategy for k.
func (k Kind) Materialization() Materialization {
	return kindStrategies[k]
}

// IsSymmetric reports whether k is stored in both directions.
func (k Kind) IsSymmetric() bool {
	return kindStrategies[k].Symmetric
}

// Relationship is a stored edge between two persons.
type Relationship struct {
	ID        string    `json:"id"`
	Person1ID string    `json:"person1_id"`
	Person2ID string    `json:"person2_id"`
	Kind      Kind      `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

// Involves reports whether personID is either endpoint.
func (r *Relationship) Involves(personID string) bool {
	return r.Person1ID == personID || r.Person2ID == personID
}

// Other returns the endpoint that is not personID.
func (r *Relationship) Other(personID string) string {
	if r.Person1ID == personID {
		return r.Person2ID
	}
	return r.Person1ID
}

// IsSelfLoop reports whether both endpoints are the same person.
func (r *Relationship) IsSelfLoop() bool {
	return r.Person1ID == r.Person2ID
}

// PairKey identifies the unordered pair and kind, so both rows of a
// symmetric relationship share one key.
func (r *Relationship) PairKey() string {
	low, high := r.Person1ID, r.Person2ID
	if high < low {
		low, high = high, low
	}
	return low + "|" + high + "|" + string(r.Kind)
}
