package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

const bearerPrefix = "Bearer "

// DenyFunc renders a deny decision. status is the HTTP status the decision
// maps to (401 for identity failures, 403 for role failures).
type DenyFunc func(w http.ResponseWriter, r *http.Request, status int, reason string)

// Guard is the per-request access decision engine. Authenticate classifies
// the route, verifies the bearer token, resolves the principal, and attaches
// it to the request context; RequireRoles enforces the route's required-role
// set afterwards. The two are separate middlewares so role enforcement
// composes behind resolution and can never run first.
type Guard struct {
	rules    RouteRules
	tokens   *TokenIssuer
	resolver *Resolver
	deny     DenyFunc
	logger   *slog.Logger
}

// GuardOption customizes a Guard.
type GuardOption func(*Guard)

// WithDenyFunc replaces the default JSON deny renderer.
func WithDenyFunc(deny DenyFunc) GuardOption {
	return func(g *Guard) { g.deny = deny }
}

// WithGuardLogger sets the guard's logger.
func WithGuardLogger(logger *slog.Logger) GuardOption {
	return func(g *Guard) { g.logger = logger }
}

// NewGuard creates a Guard over the given route rules.
func NewGuard(rules RouteRules, tokens *TokenIssuer, resolver *Resolver, opts ...GuardOption) *Guard {
	g := &Guard{
		rules:    rules,
		tokens:   tokens,
		resolver: resolver,
		deny:     denyJSON,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Authenticate is the authentication middleware.
//
// Public routes short-circuit before any token or cache access. For
// everything else the pipeline is: extract bearer token, verify, resolve the
// principal (cache first, directory on miss), attach it to the context. Every
// failure along the way collapses to a 401 deny; the caller learns nothing
// about whether the token was missing, malformed, expired, or pointed at a
// principal that no longer exists.
func (g *Guard) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rule := g.rules.Match(r.Method, r.URL.Path)
		if rule != nil && rule.Public {
			next.ServeHTTP(w, r)
			return
		}

		token, err := bearerToken(r)
		if err != nil {
			g.deny(w, r, http.StatusUnauthorized, "Unauthorized")
			return
		}

		claims, err := g.tokens.Verify(token)
		if err != nil {
			g.deny(w, r, http.StatusUnauthorized, "Unauthorized")
			return
		}

		principal, err := g.resolver.Resolve(r.Context(), claims.Subject)
		if err != nil {
			// Store failure: fail closed rather than admit an unverified
			// principal.
			g.logger.Error("principal resolution failed",
				"subject", claims.Subject, "error", err)
			g.deny(w, r, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if principal == nil {
			g.deny(w, r, http.StatusUnauthorized, "Unauthorized")
			return
		}

		ctx := WithPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRoles is the role enforcement middleware. It consults the same rule
// table as Authenticate: no rule, a public rule, or an empty role set all
// pass through; otherwise the attached principal must hold one of the
// declared roles. It must be installed after Authenticate.
func (g *Guard) RequireRoles(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rule := g.rules.Match(r.Method, r.URL.Path)
		if rule == nil || rule.Public || len(rule.Roles) == 0 {
			next.ServeHTTP(w, r)
			return
		}

		principal := PrincipalFromContext(r.Context())
		if principal == nil {
			g.deny(w, r, http.StatusUnauthorized, "Unauthorized")
			return
		}

		for _, role := range rule.Roles {
			if principal.HasRole(role) {
				next.ServeHTTP(w, r)
				return
			}
		}
		g.deny(w, r, http.StatusForbidden, "Forbidden")
	})
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrMissingCredentials
	}
	token := strings.TrimPrefix(header, bearerPrefix)
	if token == header {
		return "", ErrMissingCredentials
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingCredentials
	}
	return token, nil
}

// denyJSON is the default deny renderer.
func denyJSON(w http.ResponseWriter, _ *http.Request, status int, reason string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": reason})
}
