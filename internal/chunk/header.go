package chunk

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/tink-crypto/tink-go/v2/subtle/random"
)

const (
	// Magic identifies a cokacenc chunk file.
	Magic = "COKACENC"
	// Version is the chunk format version written into every header.
	Version = uint32(2)
	// SaltSize is the size of the per-chunk PBKDF2 salt.
	SaltSize = 16
	// IVSize is the size of the per-chunk AES-CBC initialization vector.
	IVSize = 16
	// HeaderSize is the total size of the unencrypted preamble: magic,
	// version, salt and IV.
	HeaderSize = len(Magic) + 4 + SaltSize + IVSize
)

// Header is the fixed unencrypted preamble of every chunk file. It carries
// everything needed to rederive the chunk key from the password alone: the
// original filename lives only in the encrypted metadata record.
type Header struct {
	Salt [SaltSize]byte
	IV   [IVSize]byte
}

// NewHeader returns a header with a fresh random salt and IV.
func NewHeader() Header {
	var h Header

	copy(h.Salt[:], random.GetRandomBytes(SaltSize))
	copy(h.IV[:], random.GetRandomBytes(IVSize))

	return h
}

// WriteHeader emits the 44-byte preamble.
func WriteHeader(w io.Writer, h Header) error {
	if _, err := w.Write([]byte(Magic)); err != nil {
		return fmt.Errorf("writing magic: %w", err)
	}

	if err := binary.Write(w, binary.LittleEndian, Version); err != nil {
		return fmt.Errorf("writing version: %w", err)
	}

	if _, err := w.Write(h.Salt[:]); err != nil {
		return fmt.Errorf("writing salt: %w", err)
	}

	if _, err := w.Write(h.IV[:]); err != nil {
		return fmt.Errorf("writing IV: %w", err)
	}

	return nil
}

// ReadHeader parses the 44-byte preamble, failing on a magic or version
// mismatch.
func ReadHeader(r io.Reader) (Header, error) {
	var h Header

	magic := make([]byte, len(Magic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return h, fmt.Errorf("reading magic: %w", err)
	}

	if !bytes.Equal(magic, []byte(Magic)) {
		return h, fmt.Errorf("%w: bad magic %q", ErrFormat, magic)
	}

	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return h, fmt.Errorf("reading version: %w", err)
	}

	if version != Version {
		return h, fmt.Errorf("%w: unsupported version %d", ErrFormat, version)
	}

	if _, err := io.ReadFull(r, h.Salt[:]); err != nil {
		return h, fmt.Errorf("reading salt: %w", err)
	}

	if _, err := io.ReadFull(r, h.IV[:]); err != nil {
		return h, fmt.Errorf("reading IV: %w", err)
	}

	return h, nil
}
