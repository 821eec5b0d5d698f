// Package auth provides credential hashing, agent token issuing, and
// the gin middleware that resolves the acting agent.
package auth

import (
	"golang.org/x/crypto/bcrypt"

	"support-chat/chat-api/internal/domain/chat"
)

// BcryptHasher hashes agent passwords with bcrypt.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{cost: bcrypt.DefaultCost}
}

func (h *BcryptHasher) Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (h *BcryptHasher) Verify(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

var _ chat.PasswordHasher = (*BcryptHasher)(nil)
