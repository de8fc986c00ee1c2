// Package parsers reads and writes family documents for import and export.
package parsers

import (
	"io"
	"path/filepath"
	"strings"
)

// RawPerson is a person record before validation. Key is only meaningful
// inside the document and is used by relationship records.
type RawPerson struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	BirthDate string `json:"birth_date,omitempty"`
	LineNum   int    `json:"-"`
}

// RawRelationship is a relationship record before validation. Person1 and
// Person2 name a RawPerson key or an existing person ID.
type RawRelationship struct {
	Person1 string `json:"person1"`
	Person2 string `json:"person2"`
	Kind    string `json:"kind"`
	LineNum int    `json:"-"`
}

// Document is the unit of import and export.
type Document struct {
	Persons       []RawPerson       `json:"persons"`
	Relationships []RawRelationship `json:"relationships"`
}

// Len returns the number of records in the document.
func (d *Document) Len() int {
	return len(d.Persons) + len(d.Relationships)
}

// Parser decodes a Document.
type Parser interface {
	Parse(r io.Reader) (*Document, error)
}

// ForFormat returns the parser for "json" or "csv", or nil.
func ForFormat(format string) Parser {
	switch strings.ToLower(format) {
	case FormatJSON:
		return &JSONParser{}
	case FormatCSV:
		return &CSVParser{}
	default:
		return nil
	}
}

// ForFile picks a parser from the file extension.
func ForFile(filename string) Parser {
	return ForFormat(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// Supported document formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)
