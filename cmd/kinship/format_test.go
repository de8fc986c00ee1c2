package main

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/kinship/internal/domain/entities"
	"github.com/ersonp/kinship/internal/domain/services"
	"github.com/ersonp/kinship/internal/infrastructure/config"
)

func person(id, name string, born *entities.Date) entities.Person {
	return entities.Person{ID: id, Name: name, BirthDate: born}
}

func sampleTree() *entities.FamilyTreeData {
	born := entities.NewDate(1950, time.March, 1)
	bob := person("p-bob", "Bob", &born)
	john := person("p-john", "John", nil)
	lisa := person("p-lisa", "Lisa", nil)
	mary := person("p-mary", "Mary", nil)

	center := entities.NewPersonWithRelationships(john)
	center.Parents = []entities.Person{bob}
	center.Children = []entities.Person{lisa}
	center.Spouses = []entities.Person{mary}

	grandparent := entities.NewPersonWithRelationships(bob)
	grandparent.Children = []entities.Person{john}

	grandchild := entities.NewPersonWithRelationships(lisa)
	grandchild.Parents = []entities.Person{john}

	return &entities.FamilyTreeData{
		CenterPerson:  *center,
		Grandparents:  []entities.PersonWithRelationships{*grandparent},
		Grandchildren: []entities.PersonWithRelationships{*grandchild},
	}
}

func TestFormatPerson(t *testing.T) {
	born := entities.NewDate(1815, time.December, 10)
	ada := person("p1", "Ada", &born)
	assert.Equal(t, "Ada (b. 1815-12-10) [p1]", formatPerson(&ada))

	bob := person("p2", "Bob", nil)
	assert.Equal(t, "Bob [p2]", formatPerson(&bob))
}

func TestWriteTree_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeTree(&buf, formatText, sampleTree()))

	out := buf.String()
	assert.Contains(t, out, "Family tree of John [p-john]")
	assert.Contains(t, out, "  Bob (b. 1950-03-01) [p-bob]\n    - none\n")
	assert.Contains(t, out, "  Spouses:\n    - Mary [p-mary]\n")
	assert.Contains(t, out, "  Siblings: none\n")
	assert.Contains(t, out, "  Lisa [p-lisa]\n    - none\n")
}

func TestWriteTree_Markdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeTree(&buf, formatMarkdown, sampleTree()))

	out := buf.String()
	assert.Contains(t, out, "# Family tree of John\n")
	assert.Contains(t, out, "### Through **Bob** (b. 1950-03-01)\n\n_No parents recorded._\n")
	assert.Contains(t, out, "**Spouses:**\n- **Mary**\n")
	assert.Contains(t, out, "**Siblings:** _none_\n")
}

func TestWriteTree_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeTree(&buf, formatJSON, sampleTree()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	center, ok := decoded["center_person"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "John", center["name"])
	assert.Len(t, decoded["grandparents"], 1)
	assert.Len(t, decoded["grandchildren"], 1)
}

func TestWriteTree_InvalidFormat(t *testing.T) {
	var buf bytes.Buffer
	err := writeTree(&buf, "yaml", sampleTree())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestWriteRawRelationships(t *testing.T) {
	var buf bytes.Buffer
	writeRawRelationships(&buf, nil)
	assert.Equal(t, "No relationships found.\n", buf.String())

	buf.Reset()
	writeRawRelationships(&buf, []entities.Relationship{
		{ID: "r1", Person1ID: "p-bob", Person2ID: "p-john", Kind: entities.KindParent},
	})
	assert.Contains(t, buf.String(), "p-bob")
	assert.Contains(t, buf.String(), "parent")
	assert.Contains(t, buf.String(), "r1")
}

func TestWriteImportResult(t *testing.T) {
	tests := []struct {
		name   string
		result *services.ImportResult
		dryRun bool
		want   []string
	}{
		{
			name:   "imported",
			result: &services.ImportResult{PersonsImported: 3, RelationshipsImported: 2, Skipped: 1},
			want:   []string{"Imported 3 persons and 2 relationships", "Skipped 1 duplicate relationships"},
		},
		{
			name:   "dry run with errors",
			result: &services.ImportResult{PersonsImported: 1, Errors: []services.ImportError{{Record: "person", Line: 2, Message: "name is required"}}},
			dryRun: true,
			want:   []string{"Would import 1 persons and 0 relationships", "1 records rejected:", "person line 2: name is required"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			writeImportResult(&buf, tt.result, tt.dryRun)
			for _, want := range tt.want {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestWriteTrees(t *testing.T) {
	var buf bytes.Buffer
	writeTrees(&buf, &config.TreesConfig{})
	assert.Contains(t, buf.String(), "No trees configured.")

	trees := &config.TreesConfig{}
	trees.Add("smith", config.NewTreeEntry("Smith", "Smith family"))
	trees.Add("default", config.NewTreeEntry("default", ""))

	buf.Reset()
	writeTrees(&buf, trees)
	out := buf.String()
	assert.Contains(t, out, "tree_smith")
	assert.Contains(t, out, "kinship_smith")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("default")), bytes.Index(buf.Bytes(), []byte("smith ")))
}

func TestWriteStats(t *testing.T) {
	var buf bytes.Buffer

	writeStats(&buf, "default", 3, 4)

	assert.Equal(t, "Tree:              default\nPersons:           3\nRelationship rows: 4\n", buf.String())
}
