// Command collabd runs the collaboration service: a Postgres-backed users,
// projects, and comments API behind JWT authentication with a Redis identity
// cache.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/collabd/api"
	"github.com/jonwraymond/collabd/auth"
	"github.com/jonwraymond/collabd/cache"
	"github.com/jonwraymond/collabd/config"
	"github.com/jonwraymond/collabd/health"
	"github.com/jonwraymond/collabd/observe"
	"github.com/jonwraymond/collabd/store"
)

const (
	version         = "0.1.0"
	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := observe.NewLogger(cfg.LogLevel, os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	obs, err := observe.New(ctx, observe.Config{
		ServiceName: "collabd",
		Version:     version,
		Tracing: observe.TracingConfig{
			Enabled:   cfg.TraceExporter != "none" && cfg.TraceExporter != "",
			Exporter:  cfg.TraceExporter,
			SamplePct: cfg.TraceSamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  cfg.MetricsExporter != "none" && cfg.MetricsExporter != "",
			Exporter: cfg.MetricsExporter,
		},
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown", "error", err)
		}
	}()

	db, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	if err := store.Migrate(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("database ready")

	users := store.NewUsers(db)
	projects := store.NewProjects(db)
	comments := store.NewComments(db)

	checks := health.NewAggregator()
	checks.Register(health.NewPostgresChecker(db))

	var identityCache cache.Cache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer client.Close()
		identityCache = cache.NewRedisCache(client)
		checks.Register(health.NewRedisChecker(client))
		logger.Info("identity cache: redis", "addr", cfg.RedisAddr)
	} else {
		identityCache = cache.NewMemoryCache()
		logger.Info("identity cache: in-memory")
	}

	tokens := auth.NewTokenIssuer(auth.TokenConfig{
		Secret:   []byte(cfg.JWTSecret),
		TTL:      cfg.JWTTTL,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
	})
	hasher := auth.NewBcryptHasher(cfg.BcryptCost)
	resolver := auth.NewResolver(identityCache, users, cfg.CacheTTL, logger)
	authService := auth.NewService(users, hasher, tokens, auth.ServiceConfig{DefaultRole: cfg.DefaultRole}, logger)
	guard := auth.NewGuard(api.RouteRules(), tokens, resolver, auth.WithGuardLogger(logger))

	telemetry, err := observe.NewMiddleware(obs, logger)
	if err != nil {
		return fmt.Errorf("initializing request telemetry: %w", err)
	}

	limiter := api.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer limiter.Stop()

	handler := api.NewRouter(api.RouterConfig{
		Auth:        api.NewAuthHandler(authService, logger),
		Users:       api.NewUserHandler(users, logger),
		Projects:    api.NewProjectHandler(projects, logger),
		Comments:    api.NewCommentHandler(comments, projects, logger),
		Guard:       guard,
		RateLimiter: limiter,
		Telemetry:   telemetry,
		Health:      checks,
		Registry:    obs.PrometheusRegistry(),
		Logger:      logger,
	})

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
