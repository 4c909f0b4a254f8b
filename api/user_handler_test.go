package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/jonwraymond/collabd/auth"
)

// patchUser drives UserHandler.Update with a chi route context so URLParam
// resolves.
func patchUser(t *testing.T, h *UserHandler, caller *auth.Principal, targetID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPatch, "/api/users/"+targetID, strings.NewReader(body))
	if caller != nil {
		req = req.WithContext(auth.WithPrincipal(req.Context(), caller))
	}

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", targetID)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	rec := httptest.NewRecorder()
	h.Update(rec, req)
	return rec
}

func TestUserHandler_Update_SelfOrAdmin(t *testing.T) {
	dir := newMemDirectory()
	alice := dir.addUser(auth.RoleMember)
	bob := dir.addUser(auth.RoleMember)
	admin := dir.addUser(auth.RoleAdmin)
	h := NewUserHandler(dir, nil)

	tests := []struct {
		name   string
		caller *auth.Principal
		target string
		want   int
	}{
		{name: "self update", caller: alice, target: alice.ID, want: http.StatusOK},
		{name: "peer update denied", caller: bob, target: alice.ID, want: http.StatusForbidden},
		{name: "admin updates anyone", caller: admin, target: alice.ID, want: http.StatusOK},
		{name: "no principal", caller: nil, target: alice.ID, want: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := patchUser(t, h, tt.caller, tt.target, `{"name":"Renamed"}`)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestUserHandler_Update_Validation(t *testing.T) {
	dir := newMemDirectory()
	alice := dir.addUser(auth.RoleMember)
	h := NewUserHandler(dir, nil)

	tests := []struct {
		name string
		body string
	}{
		{name: "empty patch", body: `{}`},
		{name: "empty name", body: `{"name":""}`},
		{name: "bad email", body: `{"email":"nope"}`},
		{name: "unknown field", body: `{"role":"ADMIN"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := patchUser(t, h, alice, alice.ID, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestUserHandler_Update_MissingTarget(t *testing.T) {
	dir := newMemDirectory()
	admin := dir.addUser(auth.RoleAdmin)
	h := NewUserHandler(dir, nil)

	rec := patchUser(t, h, admin, "no-such-id", `{"name":"Ghost"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
