package auth

import "context"

// Context keys for auth-related values.
type contextKey int

const principalKey contextKey = iota

// WithPrincipal returns a new context with the given principal attached.
// The guard calls this after resolution; handlers and downstream middleware
// read it back with PrincipalFromContext.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext retrieves the principal from the context.
// Returns nil if no principal is present.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey).(*Principal)
	return p
}

// PrincipalIDFromContext retrieves the principal identifier from the context.
// Returns empty string if no principal is present.
func PrincipalIDFromContext(ctx context.Context) string {
	p := PrincipalFromContext(ctx)
	if p == nil {
		return ""
	}
	return p.ID
}
