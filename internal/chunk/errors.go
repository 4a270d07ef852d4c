package chunk

import "errors"

var (
	// ErrFormat is returned when a chunk header has a bad magic or an
	// unsupported format version.
	ErrFormat = errors.New("invalid chunk format")
	// ErrCrypto is returned when decryption fails: wrong key, corrupted
	// ciphertext, or a ciphertext that is not a multiple of the block size.
	ErrCrypto = errors.New("decryption failed")
)
