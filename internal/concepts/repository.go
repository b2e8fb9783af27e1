package concepts

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicateName indicates a unique-name conflict on insert.
var ErrDuplicateName = errors.New("concepts: duplicate name")

// Repository provides PostgreSQL backed persistence for concepts.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FindByName fetches a concept by its unique name.
func (r *Repository) FindByName(ctx context.Context, name string) (*Concept, error) {
	var c Concept
	var suggested string
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, description, suggested_type, created_at, updated_at
		FROM concepts WHERE name = $1`, name,
	).Scan(&c.ID, &c.Name, &c.Description, &suggested, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	c.SuggestedType = SuggestedType(suggested)
	return &c, nil
}

// Insert creates a concept, surfacing unique-name conflicts as
// ErrDuplicateName so the caller can retry the lookup.
func (r *Repository) Insert(ctx context.Context, concept Concept) (*Concept, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO concepts (name, description, suggested_type, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, created_at, updated_at`,
		concept.Name, concept.Description, string(concept.SuggestedType),
	).Scan(&concept.ID, &concept.CreatedAt, &concept.UpdatedAt)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.ConstraintName == "uq_concepts_name" {
			return nil, ErrDuplicateName
		}
		return nil, err
	}
	return &concept, nil
}

// List returns all concepts ordered by name.
func (r *Repository) List(ctx context.Context) ([]Concept, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, description, suggested_type, created_at, updated_at
		FROM concepts ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Concept
	for rows.Next() {
		var c Concept
		var suggested string
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &suggested, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		c.SuggestedType = SuggestedType(suggested)
		out = append(out, c)
	}
	return out, rows.Err()
}

// Delete removes a concept. The movements table references concepts with
// ON DELETE RESTRICT, so deleting a concept in use fails with a
// foreign-key violation surfaced as ErrInUse.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM concepts WHERE id = $1`, id)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23503" {
			return ErrInUse
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
