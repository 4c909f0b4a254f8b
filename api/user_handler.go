package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jonwraymond/collabd/auth"
	"github.com/jonwraymond/collabd/store"
)

// UserStore is the slice of the user store the handlers need.
type UserStore interface {
	FindByID(ctx context.Context, id string) (*auth.Principal, error)
	List(ctx context.Context) ([]*auth.Principal, error)
	Update(ctx context.Context, id string, upd store.UserUpdate) (*auth.Principal, error)
	Delete(ctx context.Context, id string) error
}

// UserHandler serves the user CRUD endpoints. Listing and deleting are
// admin-only; that is enforced by the route rules, not here. Updating is
// self-or-admin and enforced here because it needs the path parameter.
type UserHandler struct {
	users  UserStore
	logger *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(users UserStore, logger *slog.Logger) *UserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{users: users, logger: logger}
}

// List handles GET /api/users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// Me handles GET /api/users/me and returns the authenticated principal.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFromContext(r.Context())
	if p == nil {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Unauthorized"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Get handles GET /api/users/{id}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if user == nil {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type updateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// Update handles PATCH /api/users/{id}. A principal may update itself;
// admins may update anyone. The cached copy of the principal is left to
// expire, so other requests can see the old profile for up to the cache TTL.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p := auth.PrincipalFromContext(r.Context())
	if p == nil {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Unauthorized"})
		return
	}
	if p.ID != id && !p.HasRole(auth.RoleAdmin) {
		forbidden(w)
		return
	}

	var req updateUserRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	if req.Name == nil && req.Email == nil {
		badRequest(w, "Nothing to update")
		return
	}
	if req.Email != nil && !validEmail(*req.Email) {
		badRequest(w, "Invalid email address")
		return
	}
	if req.Name != nil && *req.Name == "" {
		badRequest(w, "Name must not be empty")
		return
	}

	user, err := h.users.Update(r.Context(), id, store.UserUpdate{Name: req.Name, Email: req.Email})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Delete handles DELETE /api/users/{id}.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
