// Package cryptox hashes and verifies durable account passwords.
package cryptox

import (
	"crypto/subtle"

	"github.com/dmitrijs2005/daybook/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	saltSize = 16
	keySize  = 32
)

// DeriveKey stretches password with salt using argon2id.
func DeriveKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, keySize)
}

// HashPassword returns salt||key, suitable for storing in the users table.
func HashPassword(password []byte) []byte {
	salt := common.GenerateRandByteArray(saltSize)
	key := DeriveKey(password, salt)

	out := make([]byte, 0, saltSize+keySize)
	out = append(out, salt...)
	return append(out, key...)
}

// VerifyPassword reports whether password matches a hash produced by HashPassword.
// The comparison is constant time.
func VerifyPassword(hash []byte, password []byte) bool {
	if len(hash) != saltSize+keySize {
		return false
	}
	candidate := DeriveKey(password, hash[:saltSize])
	return subtle.ConstantTimeCompare(hash[saltSize:], candidate) == 1
}
