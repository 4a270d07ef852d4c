// Package keyfile loads and generates key files. A key file is any text file
// whose trimmed contents are used directly as the password; the core
// pipelines are agnostic to where the password comes from.
package keyfile

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"github.com/tink-crypto/tink-go/v2/subtle/random"
)

// ErrExists is returned by Generate when the output file already exists and
// overwriting was not requested.
var ErrExists = errors.New("key file already exists")

// Load reads a key file and returns its contents with leading and trailing
// whitespace trimmed.
func Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is user-supplied configuration
	if err != nil {
		return nil, fmt.Errorf("reading key file: %w", err)
	}

	password := bytes.TrimSpace(data)
	if len(password) == 0 {
		return nil, fmt.Errorf("key file %q is empty", path)
	}

	return password, nil
}

// Generate writes a new key file containing length random bytes encoded as
// Base64 text. An existing file is only overwritten with force.
func Generate(path string, length int, force bool) error {
	if length <= 0 {
		return fmt.Errorf("key length must be positive, got %d", length)
	}

	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %q", ErrExists, path)
		}
	}

	encoded := base64.RawStdEncoding.EncodeToString(random.GetRandomBytes(uint32(length)))

	const ownerReadWrite = 0o600

	if err := os.WriteFile(path, []byte(encoded), ownerReadWrite); err != nil {
		return fmt.Errorf("writing key file: %w", err)
	}

	return nil
}
