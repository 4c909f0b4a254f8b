package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenConfig configures the token issuer.
type TokenConfig struct {
	// Secret is the HMAC signing secret. Required.
	Secret []byte

	// TTL is the lifetime of issued tokens.
	// Default: 1 hour.
	TTL time.Duration

	// Issuer is the iss claim set on issuance and required on verification.
	Issuer string

	// Audience is the aud claim set on issuance and required on verification.
	Audience string
}

// Claims is the structured data encoded inside a token.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenIssuer issues and verifies signed, time-bound tokens carrying a
// principal identifier.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - I/O: both operations are CPU bound; neither consults a store.
// - Errors: Verify collapses all failure modes into the package sentinels.
type TokenIssuer struct {
	config TokenConfig
	now    func() time.Time
}

// NewTokenIssuer creates a TokenIssuer with defaults applied.
func NewTokenIssuer(config TokenConfig) *TokenIssuer {
	if config.TTL <= 0 {
		config.TTL = time.Hour
	}
	return &TokenIssuer{config: config, now: time.Now}
}

// Issue builds claims for the given subject, signs them, and returns the
// compact token string. Expiry is derived from the configured TTL at call
// time and is immutable thereafter.
func (t *TokenIssuer) Issue(subject, email string) (string, error) {
	now := t.now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    t.config.Issuer,
			Audience:  jwt.ClaimStrings{t.config.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.config.TTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.config.Secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Verify parses and validates a token string. A token is valid only if the
// signature checks out, it has not expired, and audience and issuer match
// the configuration. On success the decoded claims are returned.
func (t *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	}
	if t.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.config.Issuer))
	}
	if t.config.Audience != "" {
		opts = append(opts, jwt.WithAudience(t.config.Audience))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return t.config.Secret, nil
	}, opts...)

	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return nil, ErrTokenMalformed
	case err != nil:
		return nil, ErrInvalidCredentials
	}

	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidCredentials
	}
	return claims, nil
}
