package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jonwraymond/collabd/auth"
	"github.com/jonwraymond/collabd/store"
)

// CommentStore is the slice of the comment store the handlers need.
type CommentStore interface {
	Create(ctx context.Context, c *store.Comment) error
	FindByID(ctx context.Context, id string) (*store.Comment, error)
	ListByProject(ctx context.Context, projectID string) ([]*store.Comment, error)
	UpdateBody(ctx context.Context, id, body string) (*store.Comment, error)
	Delete(ctx context.Context, id string) error
}

// CommentHandler serves project comments over two surfaces: a plain REST
// listing and a websocket gateway for interactive sessions. Every operation
// is gated on membership of the comment's project; editing and removal
// additionally require the author or an admin.
type CommentHandler struct {
	comments CommentStore
	projects ProjectStore
	logger   *slog.Logger
}

// NewCommentHandler creates a CommentHandler.
func NewCommentHandler(comments CommentStore, projects ProjectStore, logger *slog.Logger) *CommentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommentHandler{comments: comments, projects: projects, logger: logger}
}

// List handles GET /api/projects/{id}/comments.
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")
	p := auth.PrincipalFromContext(r.Context())
	if p == nil {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Unauthorized"})
		return
	}
	if err := h.requireMembership(r.Context(), projectID, p); err != nil {
		writeError(w, h.logger, err)
		return
	}
	comments, err := h.comments.ListByProject(r.Context(), projectID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

// Gateway websocket protocol: the client sends envelopes with an op name and
// a payload, the server answers with the same op echoed back. An error
// answer carries the message in place of the data.
type wsEnvelope struct {
	Op      string          `json:"op"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type wsResult struct {
	Op    string `json:"op"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

const (
	opCreateComment = "createComment"
	opListComments  = "findAllComments"
	opGetComment    = "findOneComment"
	opUpdateComment = "updateComment"
	opRemoveComment = "removeComment"
)

const wsWriteTimeout = 5 * time.Second

// Gateway handles GET /api/comments/ws. The upgrade request passes through
// the guard like any other route, so the connection is already bound to an
// authenticated principal.
func (h *CommentHandler) Gateway(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFromContext(r.Context())
	if p == nil {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Unauthorized"})
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{})
	if err != nil {
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	for {
		var env wsEnvelope
		if err := wsjson.Read(ctx, conn, &env); err != nil {
			_ = conn.Close(websocket.StatusNormalClosure, "closed")
			return
		}

		result := h.dispatch(ctx, p, env)

		writeCtx, cancelWrite := context.WithTimeout(ctx, wsWriteTimeout)
		err := wsjson.Write(writeCtx, conn, result)
		cancelWrite()
		if err != nil {
			_ = conn.Close(websocket.StatusNormalClosure, "write_failed")
			return
		}
	}
}

type createCommentPayload struct {
	ProjectID string `json:"projectId"`
	Body      string `json:"body"`
}

type listCommentsPayload struct {
	ProjectID string `json:"projectId"`
}

type commentIDPayload struct {
	ID string `json:"id"`
}

type updateCommentPayload struct {
	ID   string `json:"id"`
	Body string `json:"body"`
}

func (h *CommentHandler) dispatch(ctx context.Context, p *auth.Principal, env wsEnvelope) wsResult {
	switch env.Op {
	case opCreateComment:
		var payload createCommentPayload
		if err := json.Unmarshal(env.Payload, &payload); err != nil || payload.ProjectID == "" || payload.Body == "" {
			return wsResult{Op: env.Op, Error: "projectId and body are required"}
		}
		data, err := h.create(ctx, p, payload)
		return h.result(env.Op, data, err)

	case opListComments:
		var payload listCommentsPayload
		if err := json.Unmarshal(env.Payload, &payload); err != nil || payload.ProjectID == "" {
			return wsResult{Op: env.Op, Error: "projectId is required"}
		}
		data, err := h.list(ctx, p, payload.ProjectID)
		return h.result(env.Op, data, err)

	case opGetComment:
		var payload commentIDPayload
		if err := json.Unmarshal(env.Payload, &payload); err != nil || payload.ID == "" {
			return wsResult{Op: env.Op, Error: "id is required"}
		}
		data, err := h.get(ctx, p, payload.ID)
		return h.result(env.Op, data, err)

	case opUpdateComment:
		var payload updateCommentPayload
		if err := json.Unmarshal(env.Payload, &payload); err != nil || payload.ID == "" || payload.Body == "" {
			return wsResult{Op: env.Op, Error: "id and body are required"}
		}
		data, err := h.update(ctx, p, payload)
		return h.result(env.Op, data, err)

	case opRemoveComment:
		var payload commentIDPayload
		if err := json.Unmarshal(env.Payload, &payload); err != nil || payload.ID == "" {
			return wsResult{Op: env.Op, Error: "id is required"}
		}
		data, err := h.remove(ctx, p, payload.ID)
		return h.result(env.Op, data, err)

	default:
		return wsResult{Op: env.Op, Error: "unknown operation"}
	}
}

// result folds a (data, error) pair into a wsResult, translating the core
// sentinels into client-facing messages.
func (h *CommentHandler) result(op string, data any, err error) wsResult {
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return wsResult{Op: op, Error: "Not found"}
		case errors.Is(err, auth.ErrForbidden):
			return wsResult{Op: op, Error: "Forbidden"}
		default:
			h.logger.Error("gateway operation failed", "op", op, "error", err)
			return wsResult{Op: op, Error: "Internal server error"}
		}
	}
	return wsResult{Op: op, Data: data}
}

func (h *CommentHandler) create(ctx context.Context, p *auth.Principal, payload createCommentPayload) (*store.Comment, error) {
	if err := h.requireMembership(ctx, payload.ProjectID, p); err != nil {
		return nil, err
	}
	now := time.Now()
	comment := &store.Comment{
		ID:        uuid.New().String(),
		ProjectID: payload.ProjectID,
		AuthorID:  p.ID,
		Body:      payload.Body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (h *CommentHandler) list(ctx context.Context, p *auth.Principal, projectID string) ([]*store.Comment, error) {
	if err := h.requireMembership(ctx, projectID, p); err != nil {
		return nil, err
	}
	return h.comments.ListByProject(ctx, projectID)
}

func (h *CommentHandler) get(ctx context.Context, p *auth.Principal, id string) (*store.Comment, error) {
	comment, err := h.comments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, store.ErrNotFound
	}
	if err := h.requireMembership(ctx, comment.ProjectID, p); err != nil {
		return nil, err
	}
	return comment, nil
}

func (h *CommentHandler) update(ctx context.Context, p *auth.Principal, payload updateCommentPayload) (*store.Comment, error) {
	if _, err := h.authorizeEdit(ctx, p, payload.ID); err != nil {
		return nil, err
	}
	return h.comments.UpdateBody(ctx, payload.ID, payload.Body)
}

func (h *CommentHandler) remove(ctx context.Context, p *auth.Principal, id string) (*commentIDPayload, error) {
	if _, err := h.authorizeEdit(ctx, p, id); err != nil {
		return nil, err
	}
	if err := h.comments.Delete(ctx, id); err != nil {
		return nil, err
	}
	return &commentIDPayload{ID: id}, nil
}

// authorizeEdit loads the comment and checks the caller is its author or an
// admin.
func (h *CommentHandler) authorizeEdit(ctx context.Context, p *auth.Principal, id string) (*store.Comment, error) {
	comment, err := h.comments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, store.ErrNotFound
	}
	if comment.AuthorID != p.ID && !p.HasRole(auth.RoleAdmin) {
		return nil, auth.ErrForbidden
	}
	return comment, nil
}

// requireMembership checks the principal belongs to the project. Admins pass
// regardless.
func (h *CommentHandler) requireMembership(ctx context.Context, projectID string, p *auth.Principal) error {
	if p.HasRole(auth.RoleAdmin) {
		return nil
	}
	project, err := h.projects.FindByID(ctx, projectID)
	if err != nil {
		return err
	}
	if project == nil {
		return store.ErrNotFound
	}
	for _, member := range project.Members {
		if member == p.ID {
			return nil
		}
	}
	return auth.ErrForbidden
}
