package auth

import (
	"crypto/subtle"

	"github.com/dmitrijs2005/claimdesk/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	SaltSize = 16
	keySize  = 32
)

// NewSalt returns a random salt for HashPassword.
func NewSalt() []byte {
	return common.GenerateRandByteArray(SaltSize)
}

// HashPassword derives an argon2id key from password and salt.
func HashPassword(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, keySize)
}

// VerifyPassword compares candidate against a stored hash in constant time.
func VerifyPassword(candidate, salt, hash []byte) bool {
	return subtle.ConstantTimeCompare(HashPassword(candidate, salt), hash) == 1
}
