package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jonwraymond/collabd/auth"
	"github.com/jonwraymond/collabd/store"
)

// ProjectStore is the slice of the project store the handlers need.
type ProjectStore interface {
	Create(ctx context.Context, p *store.Project) error
	FindByID(ctx context.Context, id string) (*store.Project, error)
	List(ctx context.Context) ([]*store.Project, error)
	Update(ctx context.Context, id string, upd store.ProjectUpdate) (*store.Project, error)
	Delete(ctx context.Context, id string) error
	AddMember(ctx context.Context, projectID, userID string) error
}

// ProjectHandler serves the project CRUD endpoints. The creator becomes the
// owner and first member. Mutations require the owner or an admin.
type ProjectHandler struct {
	projects ProjectStore
	logger   *slog.Logger
}

// NewProjectHandler creates a ProjectHandler.
func NewProjectHandler(projects ProjectStore, logger *slog.Logger) *ProjectHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProjectHandler{projects: projects, logger: logger}
}

type createProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Create handles POST /api/projects.
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFromContext(r.Context())
	if p == nil {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Unauthorized"})
		return
	}

	var req createProjectRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	if req.Name == "" {
		badRequest(w, "Name must not be empty")
		return
	}

	now := time.Now()
	project := &store.Project{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     p.ID,
		Members:     []string{p.ID},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.projects.Create(r.Context(), project); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

// List handles GET /api/projects.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projects.List(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

// Get handles GET /api/projects/{id}.
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	project, err := h.projects.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if project == nil {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

type updateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// Update handles PATCH /api/projects/{id}.
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.authorizeMutation(w, r, id); !ok {
		return
	}

	var req updateProjectRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	if req.Name == nil && req.Description == nil {
		badRequest(w, "Nothing to update")
		return
	}
	if req.Name != nil && *req.Name == "" {
		badRequest(w, "Name must not be empty")
		return
	}

	updated, err := h.projects.Update(r.Context(), id, store.ProjectUpdate{Name: req.Name, Description: req.Description})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/projects/{id}.
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.authorizeMutation(w, r, id); !ok {
		return
	}
	if err := h.projects.Delete(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type addMemberRequest struct {
	UserID string `json:"userId"`
}

// AddMember handles POST /api/projects/{id}/members.
func (h *ProjectHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.authorizeMutation(w, r, id); !ok {
		return
	}

	var req addMemberRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	if req.UserID == "" {
		badRequest(w, "userId must not be empty")
		return
	}

	if err := h.projects.AddMember(r.Context(), id, req.UserID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// authorizeMutation loads the project and checks the caller is its owner or
// an admin. It writes the error response itself and reports whether the
// caller may proceed.
func (h *ProjectHandler) authorizeMutation(w http.ResponseWriter, r *http.Request, id string) (*store.Project, bool) {
	p := auth.PrincipalFromContext(r.Context())
	if p == nil {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Unauthorized"})
		return nil, false
	}
	project, err := h.projects.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return nil, false
	}
	if project == nil {
		notFound(w)
		return nil, false
	}
	if project.OwnerID != p.ID && !p.HasRole(auth.RoleAdmin) {
		forbidden(w)
		return nil, false
	}
	return project, true
}
