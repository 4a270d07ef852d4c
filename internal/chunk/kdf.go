package chunk

import (
	"crypto/sha512"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// Iterations is the PBKDF2 iteration count.
	Iterations = 100_000
	// KeySize is the derived AES-256 key size.
	KeySize = 32
)

// DeriveKey stretches the password into a 32-byte AES key using
// PBKDF2-HMAC-SHA512. Every chunk carries its own salt, so each chunk is
// independently recoverable from the password plus its own header.
func DeriveKey(password, salt []byte) []byte {
	return pbkdf2.Key(password, salt, Iterations, KeySize, sha512.New)
}
