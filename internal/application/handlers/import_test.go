package handlers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/kinship/internal/domain/mocks"
	"github.com/ersonp/kinship/internal/domain/services"
)

const familyJSON = `{
  "persons": [
    {"key": "bob", "name": "Bob", "birth_date": "1950-03-01"},
    {"key": "john", "name": "John"},
    {"key": "mary", "name": "Mary"}
  ],
  "relationships": [
    {"person1": "bob", "person2": "john", "kind": "parent"},
    {"person1": "john", "person2": "mary", "kind": "spouse"},
    {"person1": "mary", "person2": "john", "kind": "spouse"}
  ]
}`

const familyCSV = `record,key,name,birth_date,person1,person2,kind
person,bob,Bob,1950-03-01,,,
person,john,John,,,,
relationship,,,,bob,john,parent
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newImportHandler(store *mocks.Store) *ImportHandler {
	svc := newTestServices(store)
	return NewImportHandler(services.NewImportService(svc.persons, svc.relationships))
}

func TestImportHandler_Handle(t *testing.T) {
	tests := []struct {
		name      string
		file      string
		content   string
		opts      ImportOptions
		persons   int
		rels      int
		skipped   int
		storeRows int
	}{
		{name: "json auto", file: "family.json", content: familyJSON, persons: 3, rels: 2, skipped: 1, storeRows: 3},
		{name: "csv explicit", file: "family.txt", content: familyCSV, opts: ImportOptions{Format: "csv"}, persons: 2, rels: 1, storeRows: 1},
		{name: "dry run", file: "family.json", content: familyJSON, opts: ImportOptions{DryRun: true}, persons: 3, rels: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := mocks.NewStore()
			h := newImportHandler(store)

			result, err := h.Handle(t.Context(), writeFile(t, tt.file, tt.content), tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.persons, result.PersonsImported)
			assert.Equal(t, tt.rels, result.RelationshipsImported)
			assert.Equal(t, tt.skipped, result.Skipped)
			assert.Empty(t, result.Errors)
			assert.Len(t, store.Relationships(), tt.storeRows)
		})
	}
}

func TestImportHandler_ConflictFail(t *testing.T) {
	h := newImportHandler(mocks.NewStore())

	_, err := h.Handle(t.Context(), writeFile(t, "family.json", familyJSON), ImportOptions{OnConflict: services.ConflictFail})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relationship already exists")
}

func TestImportHandler_Errors(t *testing.T) {
	h := newImportHandler(mocks.NewStore())

	_, err := h.Handle(t.Context(), writeFile(t, "family.xml", "<persons/>"), ImportOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")

	_, err = h.Handle(t.Context(), filepath.Join(t.TempDir(), "missing.json"), ImportOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening file")

	_, err = h.Handle(t.Context(), writeFile(t, "bad.json", `{"people": []}`), ImportOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing file")
}
