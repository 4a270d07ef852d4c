package chunk

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"io"
)

// Decryptor streams AES-256-CBC ciphertext to a plaintext sink. The final
// block is withheld until Close so the PKCS#7 padding can be validated and
// stripped: a wrong key or corrupted tail surfaces as ErrCrypto, never as
// garbage plaintext of the wrong length.
type Decryptor struct {
	mode   cipher.BlockMode
	sink   io.Writer
	buf    []byte
	closed bool
}

// NewDecryptor creates a Decryptor writing plaintext to sink.
func NewDecryptor(key, iv []byte, sink io.Writer) (*Decryptor, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}

	return &Decryptor{
		mode: cipher.NewCBCDecrypter(block, iv),
		sink: sink,
		buf:  make([]byte, 0, 2*aes.BlockSize),
	}, nil
}

// Write consumes ciphertext in arbitrarily sized spans, decrypting every
// complete block except the last, which is held back for Close.
func (d *Decryptor) Write(p []byte) (int, error) {
	if d.closed {
		return 0, fmt.Errorf("%w: write after close", ErrCrypto)
	}

	d.buf = append(d.buf, p...)

	if len(d.buf) < 2*aes.BlockSize {
		return len(p), nil
	}

	whole := (len(d.buf) - aes.BlockSize) / aes.BlockSize * aes.BlockSize
	plain := make([]byte, whole)
	d.mode.CryptBlocks(plain, d.buf[:whole])
	d.buf = append(d.buf[:0], d.buf[whole:]...)

	if _, err := d.sink.Write(plain); err != nil {
		return 0, fmt.Errorf("writing plaintext: %w", err)
	}

	return len(p), nil
}

// Close decrypts the withheld final block, validates and strips the padding,
// and writes the remaining plaintext to the sink.
func (d *Decryptor) Close() error {
	if d.closed {
		return nil
	}

	d.closed = true

	if len(d.buf) != aes.BlockSize {
		return fmt.Errorf("%w: ciphertext is not a multiple of the block size", ErrCrypto)
	}

	last := make([]byte, aes.BlockSize)
	d.mode.CryptBlocks(last, d.buf)
	d.buf = nil

	unpadded, err := pkcs7Unpad(last)
	if err != nil {
		return err
	}

	if _, err := d.sink.Write(unpadded); err != nil {
		return fmt.Errorf("writing final plaintext: %w", err)
	}

	return nil
}
