package chunk

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"
)

// Encryptor is a stateful AES-256-CBC encryptor for a single chunk. Feed
// plaintext through Update and terminate with Finalize, which emits the final
// padded block(s). An Encryptor is not reusable after Finalize.
type Encryptor struct {
	mode      cipher.BlockMode
	buf       []byte
	finalized bool
}

var errFinalized = errors.New("encryptor already finalized")

// NewEncryptor creates an Encryptor for the given 32-byte key and 16-byte IV.
func NewEncryptor(key, iv []byte) (*Encryptor, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}

	return &Encryptor{
		mode: cipher.NewCBCEncrypter(block, iv),
		buf:  make([]byte, 0, aes.BlockSize),
	}, nil
}

// Update consumes plaintext and returns the ciphertext of every complete
// block accumulated so far. Partial trailing blocks are carried over to the
// next call.
func (e *Encryptor) Update(p []byte) ([]byte, error) {
	if e.finalized {
		return nil, errFinalized
	}

	e.buf = append(e.buf, p...)

	whole := len(e.buf) / aes.BlockSize * aes.BlockSize
	if whole == 0 {
		return nil, nil
	}

	out := make([]byte, whole)
	e.mode.CryptBlocks(out, e.buf[:whole])
	e.buf = append(e.buf[:0], e.buf[whole:]...)

	return out, nil
}

// Finalize pads the remaining plaintext and returns the final ciphertext
// block(s). PKCS#7 always emits at least one block, so the ciphertext of an
// empty plaintext is one block long.
func (e *Encryptor) Finalize() ([]byte, error) {
	if e.finalized {
		return nil, errFinalized
	}

	e.finalized = true

	padded := pkcs7Pad(e.buf, aes.BlockSize)
	out := make([]byte, len(padded))
	e.mode.CryptBlocks(out, padded)
	e.buf = nil

	return out, nil
}
