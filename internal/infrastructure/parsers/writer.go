package parsers

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Write encodes doc in the given format so that the matching parser reads it back.
func Write(w io.Writer, format string, doc *Document) error {
	switch strings.ToLower(format) {
	case FormatJSON:
		return writeJSON(w, doc)
	case FormatCSV:
		return writeCSV(w, doc)
	default:
		return fmt.Errorf("unsupported format: %s (use json or csv)", format)
	}
}

func writeJSON(w io.Writer, doc *Document) error {
	out := *doc
	if out.Persons == nil {
		out.Persons = []RawPerson{}
	}
	if out.Relationships == nil {
		out.Relationships = []RawRelationship{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(out); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

func writeCSV(w io.Writer, doc *Document) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, p := range doc.Persons {
		if err := cw.Write([]string{RecordPerson, p.Key, p.Name, p.BirthDate, "", "", ""}); err != nil {
			return fmt.Errorf("writing person %s: %w", p.Key, err)
		}
	}
	for _, r := range doc.Relationships {
		if err := cw.Write([]string{RecordRelationship, "", "", "", r.Person1, r.Person2, r.Kind}); err != nil {
			return fmt.Errorf("writing relationship: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
