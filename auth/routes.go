package auth

import "strings"

// RouteRule classifies one route for the guard: whether it is public and
// which roles, if any, a resolved principal must hold. Rules are declared at
// startup; there is no runtime reflection.
type RouteRule struct {
	// Method is the HTTP method, or "*" for any.
	Method string

	// Pattern is the request path pattern. Segments wrapped in braces
	// ("{id}") match any single segment; a trailing "*" segment matches any
	// remainder, including none.
	Pattern string

	// Public exempts the route from authentication entirely.
	Public bool

	// Roles is the required-role set, enforced only for non-public routes.
	// Empty means any authenticated principal.
	Roles []string
}

// RouteRules is an ordered rule list; the first matching rule wins.
type RouteRules []RouteRule

// Match returns the first rule matching the method and path, or nil when no
// rule matches. Routes without a rule are treated as protected with no role
// requirement, so an omitted rule fails closed rather than open.
func (rs RouteRules) Match(method, path string) *RouteRule {
	for i := range rs {
		r := &rs[i]
		if r.Method != "*" && r.Method != method {
			continue
		}
		if matchPattern(r.Pattern, path) {
			return r
		}
	}
	return nil
}

// matchPattern matches a path against a rule pattern, segment by segment.
func matchPattern(pattern, path string) bool {
	pat := splitPath(pattern)
	got := splitPath(path)

	for i, seg := range pat {
		if seg == "*" && i == len(pat)-1 {
			return true
		}
		if i >= len(got) {
			return false
		}
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			continue
		}
		if seg != got[i] {
			return false
		}
	}
	return len(pat) == len(got)
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
