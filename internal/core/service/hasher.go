package service

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/devportfolio/portfolio-api/internal/core/domain"
)

// BcryptHasher hashes passwords with salted bcrypt.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash returns a validation error on the "password" field when raw is longer
// than bcrypt allows.
func (h *BcryptHasher) Hash(raw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), h.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", domain.PasswordTooLong("password")
	}
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (h *BcryptHasher) Compare(hash, raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}
