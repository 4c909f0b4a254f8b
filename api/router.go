package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonwraymond/collabd/auth"
	"github.com/jonwraymond/collabd/health"
	"github.com/jonwraymond/collabd/observe"
)

// RouteRules declares the access policy for every route the router serves.
// Routes without a rule fall through to the guard's default, which is
// authenticated with no role requirement.
func RouteRules() auth.RouteRules {
	return auth.RouteRules{
		{Method: http.MethodPost, Pattern: "/auth/register", Public: true},
		{Method: http.MethodPost, Pattern: "/auth/login", Public: true},
		{Method: http.MethodGet, Pattern: "/healthz", Public: true},
		{Method: http.MethodGet, Pattern: "/readyz", Public: true},
		{Method: http.MethodGet, Pattern: "/health", Public: true},
		{Method: http.MethodGet, Pattern: "/metrics", Public: true},

		{Method: http.MethodGet, Pattern: "/api/users", Roles: []string{auth.RoleAdmin}},
		{Method: http.MethodDelete, Pattern: "/api/users/{id}", Roles: []string{auth.RoleAdmin}},
	}
}

// RouterConfig carries everything the router needs.
type RouterConfig struct {
	Auth     *AuthHandler
	Users    *UserHandler
	Projects *ProjectHandler
	Comments *CommentHandler

	Guard       *auth.Guard
	RateLimiter *RateLimiter
	Telemetry   *observe.Middleware
	Health      *health.Aggregator
	Registry    *prometheus.Registry

	Logger *slog.Logger
}

// NewRouter assembles the full middleware stack and route table. Order
// matters: telemetry sees every request including denials, recovery catches
// panics from everything below it, rate limiting runs before token
// verification so unauthenticated floods stay cheap, then the guard.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	if cfg.Telemetry != nil {
		r.Use(cfg.Telemetry.Handler)
	}
	r.Use(Recoverer(logger))
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Middleware)
	}
	r.Use(cfg.Guard.Authenticate)
	r.Use(cfg.Guard.RequireRoles)

	r.Post("/auth/register", cfg.Auth.Register)
	r.Post("/auth/login", cfg.Auth.Login)

	r.Get("/healthz", health.LivenessHandler())
	r.Get("/readyz", health.ReadinessHandler(cfg.Health))
	r.Get("/health", health.DetailedHandler(cfg.Health))
	if cfg.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/users", cfg.Users.List)
		r.Get("/users/me", cfg.Users.Me)
		r.Get("/users/{id}", cfg.Users.Get)
		r.Patch("/users/{id}", cfg.Users.Update)
		r.Delete("/users/{id}", cfg.Users.Delete)

		r.Post("/projects", cfg.Projects.Create)
		r.Get("/projects", cfg.Projects.List)
		r.Get("/projects/{id}", cfg.Projects.Get)
		r.Patch("/projects/{id}", cfg.Projects.Update)
		r.Delete("/projects/{id}", cfg.Projects.Delete)
		r.Post("/projects/{id}/members", cfg.Projects.AddMember)
		r.Get("/projects/{id}/comments", cfg.Comments.List)

		r.Get("/comments/ws", cfg.Comments.Gateway)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		notFound(w)
	})

	return r
}
