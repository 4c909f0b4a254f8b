package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Comments is the PostgreSQL comment store.
type Comments struct {
	db *sql.DB
}

// NewComments creates a Comments store.
func NewComments(db *sql.DB) *Comments {
	return &Comments{db: db}
}

// Create persists a comment.
func (s *Comments) Create(ctx context.Context, c *Comment) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO comments (id, project_id, author_id, body, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.ProjectID, c.AuthorID, c.Body, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting comment: %w", err)
	}
	return nil
}

// FindByID returns the comment, or (nil, nil).
func (s *Comments) FindByID(ctx context.Context, id string) (*Comment, error) {
	c := &Comment{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, project_id, author_id, body, created_at, updated_at
		 FROM comments WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.ProjectID, &c.AuthorID, &c.Body, &c.CreatedAt, &c.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding comment: %w", err)
	}
	return c, nil
}

// ListByProject returns a project's comments in creation order.
func (s *Comments) ListByProject(ctx context.Context, projectID string) ([]*Comment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project_id, author_id, body, created_at, updated_at
		 FROM comments WHERE project_id = $1 ORDER BY created_at`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	defer rows.Close()

	var out []*Comment
	for rows.Next() {
		c := &Comment{}
		if err := rows.Scan(&c.ID, &c.ProjectID, &c.AuthorID, &c.Body, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning comment: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateBody replaces a comment's body and returns the updated comment.
// Returns ErrNotFound when no record matches.
func (s *Comments) UpdateBody(ctx context.Context, id, body string) (*Comment, error) {
	c := &Comment{}
	err := s.db.QueryRowContext(ctx,
		`UPDATE comments SET body = $2, updated_at = $3 WHERE id = $1
		 RETURNING id, project_id, author_id, body, created_at, updated_at`,
		id, body, time.Now(),
	).Scan(&c.ID, &c.ProjectID, &c.AuthorID, &c.Body, &c.CreatedAt, &c.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating comment: %w", err)
	}
	return c, nil
}

// Delete removes the comment. Returns ErrNotFound when no record matches.
func (s *Comments) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting comment: %w", err)
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
