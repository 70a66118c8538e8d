package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltBytes  = 16
	iterations = 10000
	hashBytes  = 32
)

// HashedPassword pairs a derived key with the salt that produced it, both
// base64-encoded for storage inside user records.
type HashedPassword struct {
	Hash string
	Salt string
}

// HashPassword derives a PBKDF2-SHA256 key from the plaintext with a fresh
// random salt.
func HashPassword(plain string) (HashedPassword, error) {
	salt := make([]byte, saltBytes)
	if _, err := rand.Read(salt); err != nil {
		return HashedPassword{}, fmt.Errorf("could not generate salt: %w", err)
	}
	key := pbkdf2.Key([]byte(plain), salt, iterations, hashBytes, sha256.New)
	return HashedPassword{
		Hash: base64.StdEncoding.EncodeToString(key),
		Salt: base64.StdEncoding.EncodeToString(salt),
	}, nil
}

// VerifyPassword re-derives the key from plain and the stored salt and
// compares it against the stored hash in constant time.
func VerifyPassword(plain, hash, salt string) bool {
	rawSalt, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		return false
	}
	rawHash, err := base64.StdEncoding.DecodeString(hash)
	if err != nil {
		return false
	}
	key := pbkdf2.Key([]byte(plain), rawSalt, iterations, hashBytes, sha256.New)
	return subtle.ConstantTimeCompare(key, rawHash) == 1
}
