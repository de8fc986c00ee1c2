package entities

// PersonWithRelationships is a person and their direct relatives.
type PersonWithRelationships struct {
	Person
	Parents  []Person `json:"parents"`
	Children []Person `json:"children"`
	Spouses  []Person `json:"spouses"`
	Siblings []Person `json:"siblings"`
}

// NewPersonWithRelationships returns a view with empty buckets.
func NewPersonWithRelationships(p Person) *PersonWithRelationships {
	return &PersonWithRelationships{
		Person:   p,
		Parents:  []Person{},
		Children: []Person{},
		Spouses:  []Person{},
		Siblings: []Person{},
	}
}

// FamilyTreeData is a center person with their parents' and children's relatives.
type FamilyTreeData struct {
	CenterPerson  PersonWithRelationships   `json:"center_person"`
	Grandparents  []PersonWithRelationships `json:"grandparents"`
	Grandchildren []PersonWithRelationships `json:"grandchildren"`
}
