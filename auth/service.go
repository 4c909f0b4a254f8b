package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Grant is the result of a successful registration or login: an access token
// and the sanitized principal it was issued for.
type Grant struct {
	Token     string
	Principal *Principal
}

// ServiceConfig configures the authentication service.
type ServiceConfig struct {
	// DefaultRole is assigned to self-registered principals.
	// Default: RoleMember.
	DefaultRole string
}

// Service orchestrates registration and login: uniqueness checks, credential
// hashing, principal creation, and token issuance.
type Service struct {
	dir    Directory
	hasher Hasher
	tokens *TokenIssuer
	config ServiceConfig
	logger *slog.Logger
}

// NewService creates a Service with defaults applied.
func NewService(dir Directory, hasher Hasher, tokens *TokenIssuer, config ServiceConfig, logger *slog.Logger) *Service {
	if config.DefaultRole == "" {
		config.DefaultRole = RoleMember
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{dir: dir, hasher: hasher, tokens: tokens, config: config, logger: logger}
}

// Register creates a new principal and issues a token for it. The email must
// not already be registered (case-sensitive exact match); a duplicate fails
// with ErrEmailTaken.
func (s *Service) Register(ctx context.Context, email, password, name string) (*Grant, error) {
	existing, _, err := s.dir.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("looking up email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now()
	principal := &Principal{
		ID:        uuid.New().String(),
		Email:     email,
		Name:      name,
		Role:      s.config.DefaultRole,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.dir.Create(ctx, principal, digest); err != nil {
		// The directory's uniqueness constraint is the authoritative check;
		// the lookup above only narrows the race window.
		return nil, err
	}

	token, err := s.tokens.Issue(principal.ID, principal.Email)
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	s.logger.Info("principal registered", "id", principal.ID, "role", principal.Role)
	return &Grant{Token: token, Principal: principal}, nil
}

// Login verifies the credentials and issues a token. An unknown email and a
// wrong password produce the identical ErrInvalidCredentials so a caller
// cannot probe which factor failed.
func (s *Service) Login(ctx context.Context, email, password string) (*Grant, error) {
	principal, digest, err := s.dir.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("looking up email: %w", err)
	}
	if principal == nil || !s.hasher.Compare(password, digest) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(principal.ID, principal.Email)
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	s.logger.Info("principal logged in", "id", principal.ID)
	return &Grant{Token: token, Principal: principal}, nil
}
