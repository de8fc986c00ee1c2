package parsers

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONParser parses {"persons": [...], "relationships": [...]} documents.
type JSONParser struct{}

// Parse decodes the document. LineNum is set to the record's 1-indexed
// position within its array.
func (p *JSONParser) Parse(r io.Reader) (*Document, error) {
	var doc Document

	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	for i := range doc.Persons {
		doc.Persons[i].LineNum = i + 1
	}
	for i := range doc.Relationships {
		doc.Relationships[i].LineNum = i + 1
	}

	return &doc, nil
}
