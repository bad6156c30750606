package staff

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha512"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2-SHA512 parameters. Changing them invalidates stored hashes, so the
// POS offline credential cache must refresh before any change ships.
const (
	pbkdf2Iterations = 100_000
	pbkdf2KeyLen     = 64
	saltLen          = 16
)

// HashPassword derives a password hash with a fresh random salt.
// Both values are hex-encoded for storage.
func HashPassword(password string) (hash, salt string, err error) {
	saltBytes := make([]byte, saltLen)
	if _, err := rand.Read(saltBytes); err != nil {
		return "", "", fmt.Errorf("generate salt: %w", err)
	}
	derived := pbkdf2.Key([]byte(password), saltBytes, pbkdf2Iterations, pbkdf2KeyLen, sha512.New)
	return hex.EncodeToString(derived), hex.EncodeToString(saltBytes), nil
}

// VerifyPassword checks a password against a stored hash and salt in
// constant time.
func VerifyPassword(password, storedHash, storedSalt string) bool {
	saltBytes, err := hex.DecodeString(storedSalt)
	if err != nil {
		return false
	}
	expected, err := hex.DecodeString(storedHash)
	if err != nil {
		return false
	}
	derived := pbkdf2.Key([]byte(password), saltBytes, pbkdf2Iterations, pbkdf2KeyLen, sha512.New)
	return hmac.Equal(derived, expected)
}
