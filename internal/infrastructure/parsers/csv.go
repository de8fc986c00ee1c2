package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CSV record types.
const (
	RecordPerson       = "person"
	RecordRelationship = "relationship"
)

// CSVHeader is the column order written by export.
var CSVHeader = []string{"record", "key", "name", "birth_date", "person1", "person2", "kind"}

// CSVParser parses documents with one record per row. The "record" column
// says whether a row is a person or a relationship.
type CSVParser struct{}

// Parse reads CSV from the reader.
func (p *CSVParser) Parse(r io.Reader) (*Document, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	colIndex, err := p.readHeader(reader)
	if err != nil {
		return nil, err
	}

	return p.readRecords(reader, colIndex)
}

func (p *CSVParser) readHeader(reader *csv.Reader) (map[string]int, error) {
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	colIndex := make(map[string]int)
	for i, col := range header {
		colIndex[strings.ToLower(strings.TrimSpace(col))] = i
	}

	if _, ok := colIndex["record"]; !ok {
		return nil, fmt.Errorf("missing required column: record")
	}

	return colIndex, nil
}

func (p *CSVParser) readRecords(reader *csv.Reader, colIndex map[string]int) (*Document, error) {
	doc := &Document{}
	lineNum := 1 // header

	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		switch kind := strings.ToLower(getColumn(record, colIndex, "record")); kind {
		case RecordPerson:
			doc.Persons = append(doc.Persons, RawPerson{
				Key:       getColumn(record, colIndex, "key"),
				Name:      getColumn(record, colIndex, "name"),
				BirthDate: getColumn(record, colIndex, "birth_date"),
				LineNum:   lineNum,
			})
		case RecordRelationship:
			doc.Relationships = append(doc.Relationships, RawRelationship{
				Person1: getColumn(record, colIndex, "person1"),
				Person2: getColumn(record, colIndex, "person2"),
				Kind:    getColumn(record, colIndex, "kind"),
				LineNum: lineNum,
			})
		case "":
			continue
		default:
			return nil, fmt.Errorf("line %d: unknown record type %q", lineNum, kind)
		}
	}

	return doc, nil
}

func getColumn(record []string, colIndex map[string]int, col string) string {
	if idx, ok := colIndex[col]; ok && idx < len(record) {
		return strings.TrimSpace(record[idx])
	}
	return ""
}
