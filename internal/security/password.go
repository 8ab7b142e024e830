package security

import (
	"golang.org/x/crypto/bcrypt"
)

// DefaultCost matches the cost the mobile client used for existing digests.
const DefaultCost = 10

// BcryptHasher hashes credentials with bcrypt.
type BcryptHasher struct {
	Cost int
}

// NewBcryptHasher returns a hasher; costs outside bcrypt's range fall back to DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &BcryptHasher{Cost: cost}
}

// Hash generates a bcrypt digest of the password
func (h *BcryptHasher) Hash(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify compares a password against a digest
func (h *BcryptHasher) Verify(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
