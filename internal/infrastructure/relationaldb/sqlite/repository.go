// Package sqlite provides a SQLite implementation of ports.FamilyStore.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/ersonp/kinship/internal/domain/entities"
	"github.com/ersonp/kinship/internal/infrastructure/config"
)

const memoryPath = ":memory:"

// Repository implements ports.FamilyStore using SQLite.
type Repository struct {
	db   *sql.DB
	path string
}

// NewRepository opens the database at cfg.Path. ":memory:" opens a private
// in-memory database on a single connection.
func NewRepository(cfg config.SQLiteConfig) (*Repository, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sql.Open("sqlite", dsn(cfg.Path))
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	if cfg.Path == memoryPath {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to sqlite database: %w", err)
	}

	return &Repository{
		db:   db,
		path: cfg.Path,
	}, nil
}

// dsn applies pragmas on every pooled connection. Write transactions take
// the lock up front so concurrent writers wait on busy_timeout instead of
// failing on upgrade.
func dsn(path string) string {
	params := []string{
		"_pragma=foreign_keys(1)",
		"_pragma=busy_timeout(5000)",
		"_txlock=immediate",
	}
	if path == memoryPath {
		return "file::memory:?" + strings.Join(params, "&")
	}
	params = append(params, "_pragma=journal_mode(WAL)")
	return "file:" + path + "?" + strings.Join(params, "&")
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Path returns the database file path.
func (r *Repository) Path() string {
	return r.path
}

// EnsureSchema creates the database schema if it doesn't exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS persons (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		name_key TEXT NOT NULL,
		birth_date TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_persons_name_key ON persons(name_key, id);

	CREATE TABLE IF NOT EXISTS relationships (
		id TEXT PRIMARY KEY,
		person1_id TEXT NOT NULL REFERENCES persons(id) ON DELETE CASCADE,
		person2_id TEXT NOT NULL REFERENCES persons(id) ON DELETE CASCADE,
		kind TEXT NOT NULL CHECK (kind IN ('parent', 'spouse', 'sibling')),
		created_at TIMESTAMP NOT NULL,
		UNIQUE(person1_id, person2_id, kind)
	);
	CREATE INDEX IF NOT EXISTS idx_relationships_person1 ON relationships(person1_id);
	CREATE INDEX IF NOT EXISTS idx_relationships_person2 ON relationships(person2_id);

	-- A parent edge may exist in only one direction per pair.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_relationships_parent_pair
		ON relationships(min(person1_id, person2_id), max(person1_id, person2_id))
		WHERE kind = 'parent';
	`

	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

const personColumns = `id, name, birth_date, created_at, updated_at`

// SavePerson inserts a person or updates name, birth date and updated_at.
func (r *Repository) SavePerson(ctx context.Context, person *entities.Person) error {
	query := `
		INSERT INTO persons (id, name, name_key, birth_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			name_key = excluded.name_key,
			birth_date = excluded.birth_date,
			updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		person.ID,
		person.Name,
		entities.NameKey(person.Name),
		birthDateValue(person.BirthDate),
		person.CreatedAt.UTC(),
		person.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving person: %w", err)
	}
	return nil
}

// FindPersonByID returns nil, nil when the person doesn't exist.
func (r *Repository) FindPersonByID(ctx context.Context, id string) (*entities.Person, error) {
	query := `SELECT ` + personColumns + ` FROM persons WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	person, err := scanPerson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return person, nil
}

// FindPersonsByIDs finds multiple persons in a single query.
func (r *Repository) FindPersonsByIDs(ctx context.Context, ids []string) ([]entities.Person, error) {
	if len(ids) == 0 {
		return []entities.Person{}, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf(`SELECT %s FROM persons WHERE id IN (%s)`, personColumns, strings.Join(placeholders, ","))
	return r.queryPersons(ctx, query, args...)
}

// ListPersons lists persons ordered by name.
func (r *Repository) ListPersons(ctx context.Context, limit, offset int) ([]entities.Person, error) {
	if limit <= 0 {
		limit = -1
	}
	query := `SELECT ` + personColumns + ` FROM persons ORDER BY name_key, id LIMIT ? OFFSET ?`
	return r.queryPersons(ctx, query, limit, max(offset, 0))
}

// SearchPersons matches name substrings with Unicode case folding.
func (r *Repository) SearchPersons(ctx context.Context, query string, limit int) ([]entities.Person, error) {
	if limit <= 0 {
		limit = -1
	}
	sqlQuery := `
		SELECT ` + personColumns + `
		FROM persons
		WHERE name_key LIKE ? ESCAPE '\'
		ORDER BY name_key, id
		LIMIT ?
	`
	return r.queryPersons(ctx, sqlQuery, "%"+escapeLike(entities.NameKey(query))+"%", limit)
}

// CountPersons returns the number of persons.
func (r *Repository) CountPersons(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM persons`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting persons: %w", err)
	}
	return count, nil
}

// SaveRelationships inserts all rows in one transaction.
func (r *Repository) SaveRelationships(ctx context.Context, rels []entities.Relationship) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO relationships (id, person1_id, person2_id, kind, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	for i := range rels {
		rel := &rels[i]
		_, err := tx.ExecContext(ctx, query, rel.ID, rel.Person1ID, rel.Person2ID, string(rel.Kind), rel.CreatedAt.UTC())
		if isUniqueViolation(err) {
			return fmt.Errorf("inserting relationship: %w", entities.ErrRelationshipExists)
		}
		if err != nil {
			return fmt.Errorf("inserting relationship: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing relationships: %w", err)
	}
	return nil
}

const relationshipColumns = `id, person1_id, person2_id, kind, created_at`

// FindRelationshipBetween returns a row of kind between the pair in either direction.
func (r *Repository) FindRelationshipBetween(ctx context.Context, person1ID, person2ID string, kind entities.Kind) (*entities.Relationship, error) {
	query := `
		SELECT ` + relationshipColumns + `
		FROM relationships
		WHERE kind = ?
		  AND ((person1_id = ? AND person2_id = ?) OR (person1_id = ? AND person2_id = ?))
		LIMIT 1
	`
	rels, err := r.queryRelationships(ctx, query, string(kind), person1ID, person2ID, person2ID, person1ID)
	if err != nil {
		return nil, err
	}
	if len(rels) == 0 {
		return nil, nil
	}
	return &rels[0], nil
}

// FindRelationshipsByPerson returns rows with the person at either end.
func (r *Repository) FindRelationshipsByPerson(ctx context.Context, personID string) ([]entities.Relationship, error) {
	query := `
		SELECT ` + relationshipColumns + `
		FROM relationships
		WHERE person1_id = ? OR person2_id = ?
		ORDER BY created_at ASC, rowid ASC
	`
	return r.queryRelationships(ctx, query, personID, personID)
}

// ListRelationships returns every row ordered by creation.
func (r *Repository) ListRelationships(ctx context.Context) ([]entities.Relationship, error) {
	query := `SELECT ` + relationshipColumns + ` FROM relationships ORDER BY created_at ASC, rowid ASC`
	return r.queryRelationships(ctx, query)
}

// DeleteRelationshipsBetween removes rows of kind between the pair in either direction.
func (r *Repository) DeleteRelationshipsBetween(ctx context.Context, person1ID, person2ID string, kind entities.Kind) (int64, error) {
	query := `
		DELETE FROM relationships
		WHERE kind = ?
		  AND ((person1_id = ? AND person2_id = ?) OR (person1_id = ? AND person2_id = ?))
	`
	result, err := r.db.ExecContext(ctx, query, string(kind), person1ID, person2ID, person2ID, person1ID)
	if err != nil {
		return 0, fmt.Errorf("deleting relationships: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return n, nil
}

// CountRelationships returns the number of stored rows.
func (r *Repository) CountRelationships(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM relationships`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting relationships: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPerson(row rowScanner) (*entities.Person, error) {
	var person entities.Person
	var birthDate sql.NullString
	if err := row.Scan(&person.ID, &person.Name, &birthDate, &person.CreatedAt, &person.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning person: %w", err)
	}
	if birthDate.Valid && birthDate.String != "" {
		d, err := entities.ParseDate(birthDate.String)
		if err != nil {
			return nil, fmt.Errorf("person %s: %w", person.ID, err)
		}
		person.BirthDate = &d
	}
	return &person, nil
}

func (r *Repository) queryPersons(ctx context.Context, query string, args ...any) ([]entities.Person, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying persons: %w", err)
	}
	defer rows.Close()

	persons := make([]entities.Person, 0, 16)
	for rows.Next() {
		person, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		persons = append(persons, *person)
	}
	return persons, rows.Err()
}

func (r *Repository) queryRelationships(ctx context.Context, query string, args ...any) ([]entities.Relationship, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying relationships: %w", err)
	}
	defer rows.Close()

	relationships := make([]entities.Relationship, 0, 16)
	for rows.Next() {
		var rel entities.Relationship
		var kind string
		if err := rows.Scan(&rel.ID, &rel.Person1ID, &rel.Person2ID, &kind, &rel.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning relationship: %w", err)
		}
		rel.Kind = entities.Kind(kind)
		relationships = append(relationships, rel)
	}
	return relationships, rows.Err()
}

func birthDateValue(d *entities.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}
