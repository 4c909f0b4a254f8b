package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// Projects is the PostgreSQL project store.
type Projects struct {
	db *sql.DB
}

// NewProjects creates a Projects store.
func NewProjects(db *sql.DB) *Projects {
	return &Projects{db: db}
}

const projectSelect = `
	SELECT p.id, p.name, p.description, p.owner_id, p.created_at, p.updated_at,
	       COALESCE(array_agg(m.user_id) FILTER (WHERE m.user_id IS NOT NULL), '{}')
	FROM projects p
	LEFT JOIN project_members m ON m.project_id = p.id`

// Create persists a project and enrolls the owner as its first member, in
// one transaction.
func (s *Projects) Create(ctx context.Context, p *Project) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO projects (id, name, description, owner_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.Name, p.Description, p.OwnerID, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting project: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO project_members (project_id, user_id) VALUES ($1, $2)`,
		p.ID, p.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("inserting owner membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	p.Members = []string{p.OwnerID}
	return nil
}

// FindByID returns the project with its member list, or (nil, nil).
func (s *Projects) FindByID(ctx context.Context, id string) (*Project, error) {
	p := &Project{}
	err := s.db.QueryRowContext(ctx,
		projectSelect+` WHERE p.id = $1 GROUP BY p.id`,
		id,
	).Scan(&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt, pq.Array(&p.Members))

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding project: %w", err)
	}
	return p, nil
}

// List returns all projects with their member lists, ordered by creation time.
func (s *Projects) List(ctx context.Context) ([]*Project, error) {
	rows, err := s.db.QueryContext(ctx,
		projectSelect+` GROUP BY p.id ORDER BY p.created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var out []*Project
	for rows.Next() {
		p := &Project{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt, pq.Array(&p.Members)); err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Update applies a partial update and returns the updated project.
// Returns ErrNotFound when no record matches.
func (s *Projects) Update(ctx context.Context, id string, upd ProjectUpdate) (*Project, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE projects
		 SET name = COALESCE($2, name),
		     description = COALESCE($3, description),
		     updated_at = $4
		 WHERE id = $1`,
		id, upd.Name, upd.Description, time.Now(),
	)
	if err != nil {
		return nil, fmt.Errorf("updating project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return s.FindByID(ctx, id)
}

// Delete removes the project. Memberships and comments cascade.
// Returns ErrNotFound when no record matches.
func (s *Projects) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// AddMember enrolls a principal in the project. Idempotent.
func (s *Projects) AddMember(ctx context.Context, projectID, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO project_members (project_id, user_id) VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`,
		projectID, userID,
	)
	if err != nil {
		return fmt.Errorf("inserting membership: %w", err)
	}
	return nil
}
