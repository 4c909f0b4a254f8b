package auth

import (
	"context"
	"time"
)

// Well-known roles. The set is open ended; these are the roles the service
// assigns and checks out of the box.
const (
	RoleAdmin  = "ADMIN"
	RoleMember = "MEMBER"
)

// Principal is an authenticated identity as the core sees it: the durable
// user record minus its credential digest. The digest never crosses the
// directory boundary except through Hasher.Compare.
type Principal struct {
	// ID is the unique, immutable identifier.
	ID string `json:"id"`

	// Email is unique and matched case-sensitively as stored.
	Email string `json:"email"`

	// Name is the display name.
	Name string `json:"name"`

	// Role is the assigned role (RoleAdmin, RoleMember, ...).
	Role string `json:"role"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasRole reports whether the principal holds the given role.
func (p *Principal) HasRole(role string) bool {
	return p.Role == role
}

// Directory is the durable principal store the core resolves against.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: methods must honor cancellation/deadlines.
// - Absence: lookups return (nil, nil) when no record matches; errors are
//   reserved for store failures.
type Directory interface {
	// FindByID returns the principal with the given identifier.
	FindByID(ctx context.Context, id string) (*Principal, error)

	// FindByEmail returns the principal with the given email along with its
	// credential digest. The digest is only ever handed to a Hasher.
	FindByEmail(ctx context.Context, email string) (*Principal, string, error)

	// Create persists a new principal with its credential digest.
	// Returns an error satisfying errors.Is(err, ErrEmailTaken) when the
	// email is already registered.
	Create(ctx context.Context, p *Principal, digest string) error
}
