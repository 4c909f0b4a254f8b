package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/jonwraymond/collabd/auth"
)

// Users is the PostgreSQL principal store. It implements auth.Directory for
// the core and adds the CRUD operations the user endpoints need. The
// password digest stays inside this package except where auth.Directory
// hands it to the credential verifier.
type Users struct {
	db *sql.DB
}

// NewUsers creates a Users store.
func NewUsers(db *sql.DB) *Users {
	return &Users{db: db}
}

// FindByID returns the principal with the given identifier, or (nil, nil).
func (s *Users) FindByID(ctx context.Context, id string) (*auth.Principal, error) {
	p := &auth.Principal{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, name, role, created_at, updated_at FROM users WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Email, &p.Name, &p.Role, &p.CreatedAt, &p.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding user by id: %w", err)
	}
	return p, nil
}

// FindByEmail returns the principal with the given email and its credential
// digest, or (nil, "", nil). The match is case-sensitive, as stored.
func (s *Users) FindByEmail(ctx context.Context, email string) (*auth.Principal, string, error) {
	p := &auth.Principal{}
	var digest string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, name, role, password_digest, created_at, updated_at
		 FROM users WHERE email = $1`,
		email,
	).Scan(&p.ID, &p.Email, &p.Name, &p.Role, &digest, &p.CreatedAt, &p.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("finding user by email: %w", err)
	}
	return p, digest, nil
}

// Create persists a new principal. A duplicate email surfaces as
// auth.ErrEmailTaken via the unique index, which is the authoritative
// uniqueness check.
func (s *Users) Create(ctx context.Context, p *auth.Principal, digest string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, name, role, password_digest, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.Email, p.Name, p.Role, digest, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return auth.ErrEmailTaken
		}
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

// List returns all principals ordered by creation time.
func (s *Users) List(ctx context.Context) ([]*auth.Principal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, email, name, role, created_at, updated_at FROM users ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var out []*auth.Principal
	for rows.Next() {
		p := &auth.Principal{}
		if err := rows.Scan(&p.ID, &p.Email, &p.Name, &p.Role, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Update applies a partial update and returns the updated principal.
// Returns ErrNotFound when no record matches. A duplicate email surfaces as
// auth.ErrEmailTaken.
func (s *Users) Update(ctx context.Context, id string, upd UserUpdate) (*auth.Principal, error) {
	p := &auth.Principal{}
	err := s.db.QueryRowContext(ctx,
		`UPDATE users
		 SET email = COALESCE($2, email),
		     name = COALESCE($3, name),
		     updated_at = $4
		 WHERE id = $1
		 RETURNING id, email, name, role, created_at, updated_at`,
		id, upd.Email, upd.Name, time.Now(),
	).Scan(&p.ID, &p.Email, &p.Name, &p.Role, &p.CreatedAt, &p.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, auth.ErrEmailTaken
		}
		return nil, fmt.Errorf("updating user: %w", err)
	}
	return p, nil
}

// Delete removes the principal. Returns ErrNotFound when no record matches.
// Owned projects, memberships, and comments cascade.
func (s *Users) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
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

// compile-time interface check
var _ auth.Directory = (*Users)(nil)
