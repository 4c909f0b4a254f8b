package auth

import "golang.org/x/crypto/bcrypt"

// Hasher turns passwords into storable digests and checks presented
// passwords against them. The rest of the core treats digests as opaque.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: Compare reports mismatch as false, not as an error.
type Hasher interface {
	// Hash derives a digest from the password.
	Hash(password string) (string, error)

	// Compare reports whether the password matches the digest.
	Compare(password, digest string) bool
}

// BcryptHasher is the default Hasher, backed by bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a BcryptHasher. A cost outside bcrypt's valid
// range falls back to bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash derives a bcrypt digest from the password.
func (h *BcryptHasher) Hash(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Compare reports whether the password matches the bcrypt digest.
func (h *BcryptHasher) Compare(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}

// Ensure BcryptHasher implements Hasher
var _ Hasher = (*BcryptHasher)(nil)
