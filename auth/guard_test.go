package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestGuard(t *testing.T, dir *fakeDirectory, rules RouteRules) (*Guard, *TokenIssuer) {
	t.Helper()
	issuer := newTestIssuer()
	resolver := NewResolver(newFakeCache(), dir, 10*time.Minute, nil)
	return NewGuard(rules, issuer, resolver), issuer
}

// okHandler records the principal it sees and answers 200.
func okHandler(seen **Principal) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			*seen = PrincipalFromContext(r.Context())
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestGuard_Authenticate_PublicRoute(t *testing.T) {
	dir := newFakeDirectory()
	guard, _ := newTestGuard(t, dir, RouteRules{
		{Method: http.MethodPost, Pattern: "/auth/login", Public: true},
	})

	var seen *Principal
	handler := guard.Authenticate(okHandler(&seen))

	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if seen != nil {
		t.Error("public route attached a principal")
	}
	if dir.lookups != 0 {
		t.Errorf("directory lookups = %d, want 0 for a public route", dir.lookups)
	}
}

func TestGuard_Authenticate_Denials(t *testing.T) {
	dir := newFakeDirectory()
	p := testPrincipal("user-1")
	dir.add(p, "digest")

	guard, issuer := newTestGuard(t, dir, nil)

	valid, err := issuer.Issue(p.ID, p.Email)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	unknown, err := issuer.Issue("ghost", "ghost@example.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	expiredIssuer := NewTokenIssuer(TokenConfig{
		Secret: testSecret, Issuer: "test-issuer", Audience: "test-audience",
	})
	expiredIssuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredIssuer.Issue(p.ID, p.Email)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "no header", header: "", want: http.StatusUnauthorized},
		{name: "not bearer", header: "Basic abc", want: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer garbage", want: http.StatusUnauthorized},
		{name: "expired token", header: "Bearer " + expired, want: http.StatusUnauthorized},
		{name: "token for a deleted principal", header: "Bearer " + unknown, want: http.StatusUnauthorized},
		{name: "valid token", header: "Bearer " + valid, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := guard.Authenticate(okHandler(nil))
			req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestGuard_Authenticate_AttachesPrincipal(t *testing.T) {
	dir := newFakeDirectory()
	p := testPrincipal("user-1")
	dir.add(p, "digest")

	guard, issuer := newTestGuard(t, dir, nil)
	token, err := issuer.Issue(p.ID, p.Email)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	var seen *Principal
	handler := guard.Authenticate(okHandler(&seen))

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if seen == nil || seen.ID != p.ID {
		t.Errorf("principal in context = %+v, want %+v", seen, p)
	}
}

func TestGuard_RequireRoles(t *testing.T) {
	rules := RouteRules{
		{Method: http.MethodGet, Pattern: "/api/users", Roles: []string{RoleAdmin}},
		{Method: http.MethodGet, Pattern: "/api/projects"},
	}
	guard, _ := newTestGuard(t, newFakeDirectory(), rules)

	admin := testPrincipal("admin-1")
	admin.Role = RoleAdmin
	member := testPrincipal("member-1")

	tests := []struct {
		name      string
		path      string
		principal *Principal
		want      int
	}{
		{name: "admin on admin route", path: "/api/users", principal: admin, want: http.StatusOK},
		{name: "member on admin route", path: "/api/users", principal: member, want: http.StatusForbidden},
		{name: "member on plain route", path: "/api/projects", principal: member, want: http.StatusOK},
		{name: "no principal on admin route", path: "/api/users", principal: nil, want: http.StatusUnauthorized},
		{name: "unlisted route passes through", path: "/api/comments/ws", principal: member, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := guard.RequireRoles(okHandler(nil))
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.principal != nil {
				req = req.WithContext(WithPrincipal(req.Context(), tt.principal))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "valid", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "empty", header: "", wantErr: true},
		{name: "wrong scheme", header: "Basic abc", wantErr: true},
		{name: "bearer only", header: "Bearer ", wantErr: true},
		{name: "lowercase scheme", header: "bearer abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			got, err := bearerToken(req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("bearerToken() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("bearerToken() = %q, want %q", got, tt.want)
			}
		})
	}
}
