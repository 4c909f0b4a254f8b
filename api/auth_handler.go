package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jonwraymond/collabd/auth"
)

// AuthService is the slice of the authentication service the handlers need.
type AuthService interface {
	Register(ctx context.Context, email, password, name string) (*auth.Grant, error)
	Login(ctx context.Context, email, password string) (*auth.Grant, error)
}

// AuthHandler serves the public registration and login endpoints.
type AuthHandler struct {
	service AuthService
	logger  *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(service AuthService, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{service: service, logger: logger}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// grantResponse is the body returned by both register and login.
type grantResponse struct {
	AccessToken string          `json:"accessToken"`
	User        *auth.Principal `json:"user"`
}

const minPasswordLength = 6

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	if req.Name == "" {
		badRequest(w, "Name must not be empty")
		return
	}
	if !validEmail(req.Email) {
		badRequest(w, "Invalid email address")
		return
	}
	if len(req.Password) < minPasswordLength {
		badRequest(w, "Password must be at least 6 characters")
		return
	}

	grant, err := h.service.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, grantResponse{AccessToken: grant.Token, User: grant.Principal})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		badRequest(w, "Email and password are required")
		return
	}

	grant, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, grantResponse{AccessToken: grant.Token, User: grant.Principal})
}

// validEmail applies the minimal shape check: one "@" with a dot somewhere
// after it. Deliverability is not our problem.
func validEmail(s string) bool {
	at := strings.Index(s, "@")
	if at < 1 || at == len(s)-1 {
		return false
	}
	return strings.Contains(s[at+1:], ".")
}
