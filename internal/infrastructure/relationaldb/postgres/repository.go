// Package postgres provides a PostgreSQL implementation of ports.FamilyStore.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ersonp/kinship/internal/domain/entities"
	"github.com/ersonp/kinship/internal/infrastructure/config"
)

const uniqueViolation = "23505"

// Repository implements ports.FamilyStore on a pgx pool. Each tree lives in
// its own schema, selected through search_path.
type Repository struct {
	pool   *pgxpool.Pool
	schema string
}

// NewRepository connects to cfg.PostgresURL. An empty schema uses the
// server's default search_path.
func NewRepository(ctx context.Context, cfg config.StoreConfig, schema string) (*Repository, error) {
	if cfg.PostgresURL == "" {
		return nil, errors.New("postgres url is required")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresURL)
	if err != nil {
		return nil, fmt.Errorf("parsing postgres url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if schema != "" {
		poolCfg.ConnConfig.RuntimeParams["search_path"] = schema
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	return &Repository{pool: pool, schema: schema}, nil
}

// Close closes the pool.
func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

// EnsureSchema creates the tree schema, tables and indexes.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	var b strings.Builder
	if r.schema != "" {
		fmt.Fprintf(&b, "CREATE SCHEMA IF NOT EXISTS %s;\n", pgx.Identifier{r.schema}.Sanitize())
	}
	b.WriteString(`
	CREATE TABLE IF NOT EXISTS persons (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		name_key TEXT NOT NULL,
		birth_date DATE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_persons_name_key ON persons(name_key COLLATE "C", id);

	CREATE TABLE IF NOT EXISTS relationships (
		id TEXT PRIMARY KEY,
		person1_id TEXT NOT NULL REFERENCES persons(id) ON DELETE CASCADE,
		person2_id TEXT NOT NULL REFERENCES persons(id) ON DELETE CASCADE,
		kind TEXT NOT NULL CHECK (kind IN ('parent', 'spouse', 'sibling')),
		created_at TIMESTAMPTZ NOT NULL,
		UNIQUE (person1_id, person2_id, kind)
	);
	CREATE INDEX IF NOT EXISTS idx_relationships_person1 ON relationships(person1_id);
	CREATE INDEX IF NOT EXISTS idx_relationships_person2 ON relationships(person2_id);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_relationships_parent_pair
		ON relationships (LEAST(person1_id, person2_id), GREATEST(person1_id, person2_id))
		WHERE kind = 'parent';
	`)

	if _, err := r.pool.Exec(ctx, b.String()); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

const personColumns = `id, name, birth_date, created_at, updated_at`

// SavePerson inserts a person or updates its mutable fields.
func (r *Repository) SavePerson(ctx context.Context, person *entities.Person) error {
	query := `
		INSERT INTO persons (id, name, name_key, birth_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			name_key = EXCLUDED.name_key,
			birth_date = EXCLUDED.birth_date,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.pool.Exec(ctx, query,
		person.ID,
		person.Name,
		entities.NameKey(person.Name),
		birthDateValue(person.BirthDate),
		person.CreatedAt,
		person.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving person: %w", err)
	}
	return nil
}

// FindPersonByID returns nil, nil when the person doesn't exist.
func (r *Repository) FindPersonByID(ctx context.Context, id string) (*entities.Person, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+personColumns+` FROM persons WHERE id = $1`, id)

	person, err := scanPerson(row)
	if errors.Is(err, pgx.ErrNoRows) {
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
	return r.queryPersons(ctx, `SELECT `+personColumns+` FROM persons WHERE id = ANY($1)`, ids)
}

// ListPersons lists persons ordered by name.
func (r *Repository) ListPersons(ctx context.Context, limit, offset int) ([]entities.Person, error) {
	query := `SELECT ` + personColumns + ` FROM persons ORDER BY name_key COLLATE "C", id LIMIT $1 OFFSET $2`
	return r.queryPersons(ctx, query, limitValue(limit), max(offset, 0))
}

// SearchPersons matches name substrings with Unicode case folding.
func (r *Repository) SearchPersons(ctx context.Context, query string, limit int) ([]entities.Person, error) {
	sqlQuery := `
		SELECT ` + personColumns + `
		FROM persons
		WHERE name_key LIKE $1
		ORDER BY name_key COLLATE "C", id
		LIMIT $2
	`
	return r.queryPersons(ctx, sqlQuery, "%"+escapeLike(entities.NameKey(query))+"%", limitValue(limit))
}

// CountPersons returns the number of persons.
func (r *Repository) CountPersons(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM persons`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting persons: %w", err)
	}
	return count, nil
}

// SaveRelationships inserts all rows in one transaction.
func (r *Repository) SaveRelationships(ctx context.Context, rels []entities.Relationship) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO relationships (id, person1_id, person2_id, kind, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	for i := range rels {
		rel := &rels[i]
		_, err := tx.Exec(ctx, query, rel.ID, rel.Person1ID, rel.Person2ID, string(rel.Kind), rel.CreatedAt)
		if isUniqueViolation(err) {
			return fmt.Errorf("inserting relationship: %w", entities.ErrRelationshipExists)
		}
		if err != nil {
			return fmt.Errorf("inserting relationship: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
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
		WHERE kind = $1
		  AND ((person1_id = $2 AND person2_id = $3) OR (person1_id = $3 AND person2_id = $2))
		LIMIT 1
	`
	rels, err := r.queryRelationships(ctx, query, string(kind), person1ID, person2ID)
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
		WHERE person1_id = $1 OR person2_id = $1
		ORDER BY created_at, id
	`
	return r.queryRelationships(ctx, query, personID)
}

// ListRelationships returns every row ordered by creation.
func (r *Repository) ListRelationships(ctx context.Context) ([]entities.Relationship, error) {
	return r.queryRelationships(ctx, `SELECT `+relationshipColumns+` FROM relationships ORDER BY created_at, id`)
}

// DeleteRelationshipsBetween removes rows of kind between the pair in either direction.
func (r *Repository) DeleteRelationshipsBetween(ctx context.Context, person1ID, person2ID string, kind entities.Kind) (int64, error) {
	query := `
		DELETE FROM relationships
		WHERE kind = $1
		  AND ((person1_id = $2 AND person2_id = $3) OR (person1_id = $3 AND person2_id = $2))
	`
	tag, err := r.pool.Exec(ctx, query, string(kind), person1ID, person2ID)
	if err != nil {
		return 0, fmt.Errorf("deleting relationships: %w", err)
	}
	return tag.RowsAffected(), nil
}

// CountRelationships returns the number of stored rows.
func (r *Repository) CountRelationships(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM relationships`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting relationships: %w", err)
	}
	return count, nil
}

func scanPerson(row pgx.Row) (*entities.Person, error) {
	var person entities.Person
	var birthDate *time.Time
	if err := row.Scan(&person.ID, &person.Name, &birthDate, &person.CreatedAt, &person.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning person: %w", err)
	}
	if birthDate != nil {
		d := entities.DateOf(*birthDate)
		person.BirthDate = &d
	}
	return &person, nil
}

func (r *Repository) queryPersons(ctx context.Context, query string, args ...any) ([]entities.Person, error) {
	rows, err := r.pool.Query(ctx, query, args...)
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
	rows, err := r.pool.Query(ctx, query, args...)
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
	return d.Time()
}

// limitValue maps a non-positive limit to NULL, which Postgres reads as no limit.
func limitValue(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
