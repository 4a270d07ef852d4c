package chunk

import (
	"bytes"
	"crypto/aes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTrip(t *testing.T) {
	header := NewHeader()

	var buf bytes.Buffer

	require.NoError(t, WriteHeader(&buf, header))
	assert.Equal(t, HeaderSize, buf.Len())

	parsed, err := ReadHeader(&buf)
	require.NoError(t, err)
	assert.Equal(t, header, parsed)
}

func TestReadHeaderBadMagic(t *testing.T) {
	header := NewHeader()

	var buf bytes.Buffer

	require.NoError(t, WriteHeader(&buf, header))

	raw := buf.Bytes()
	raw[0] ^= 0xff

	_, err := ReadHeader(bytes.NewReader(raw))
	require.ErrorIs(t, err, ErrFormat)
}

func TestReadHeaderBadVersion(t *testing.T) {
	header := NewHeader()

	var buf bytes.Buffer

	require.NoError(t, WriteHeader(&buf, header))

	raw := buf.Bytes()
	raw[len(Magic)] = 9

	_, err := ReadHeader(bytes.NewReader(raw))
	require.ErrorIs(t, err, ErrFormat)
}

func TestReadHeaderTruncated(t *testing.T) {
	header := NewHeader()

	var buf bytes.Buffer

	require.NoError(t, WriteHeader(&buf, header))

	_, err := ReadHeader(bytes.NewReader(buf.Bytes()[:HeaderSize-1]))
	require.Error(t, err)
}

func TestDeriveKey(t *testing.T) {
	password := []byte("correct horse battery staple")
	salt1 := bytes.Repeat([]byte{0x01}, SaltSize)
	salt2 := bytes.Repeat([]byte{0x02}, SaltSize)

	key1 := DeriveKey(password, salt1)
	assert.Len(t, key1, KeySize)

	// Deterministic for fixed inputs.
	assert.Equal(t, key1, DeriveKey(password, salt1))

	// Distinct salts yield distinct keys.
	assert.NotEqual(t, key1, DeriveKey(password, salt2))

	// Distinct passwords yield distinct keys.
	assert.NotEqual(t, key1, DeriveKey([]byte("other"), salt1))
}

// encryptAll runs plaintext through an Encryptor in spans of the given size.
func encryptAll(t *testing.T, key, iv, plaintext []byte, span int) []byte {
	t.Helper()

	encryptor, err := NewEncryptor(key, iv)
	require.NoError(t, err)

	var ciphertext []byte

	for len(plaintext) > 0 {
		n := min(span, len(plaintext))

		out, err := encryptor.Update(plaintext[:n])
		require.NoError(t, err)

		ciphertext = append(ciphertext, out...)
		plaintext = plaintext[n:]
	}

	final, err := encryptor.Finalize()
	require.NoError(t, err)

	return append(ciphertext, final...)
}

// decryptAll feeds ciphertext to a Decryptor in spans of the given size.
func decryptAll(key, iv, ciphertext []byte, span int) ([]byte, error) {
	var plain bytes.Buffer

	decryptor, err := NewDecryptor(key, iv, &plain)
	if err != nil {
		return nil, err
	}

	for len(ciphertext) > 0 {
		n := min(span, len(ciphertext))

		if _, err := decryptor.Write(ciphertext[:n]); err != nil {
			return nil, err
		}

		ciphertext = ciphertext[n:]
	}

	if err := decryptor.Close(); err != nil {
		return nil, err
	}

	// Bytes() is nil for an empty buffer; the round trip compares exact
	// slices, so always return a non-nil one.
	if plain.Len() == 0 {
		return []byte{}, nil
	}

	return plain.Bytes(), nil
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	password := []byte("round trip")
	header := NewHeader()
	key := DeriveKey(password, header.Salt[:])

	sizes := []int{0, 1, 15, 16, 17, 31, 32, 1000, 4096}
	spans := []int{1, 7, 16, 1024}

	for _, size := range sizes {
		plaintext := bytes.Repeat([]byte{0xab}, size)

		for _, span := range spans {
			ciphertext := encryptAll(t, key, header.IV[:], plaintext, span)

			// PKCS#7 always emits at least one padding block.
			assert.Equal(t, (size/aes.BlockSize+1)*aes.BlockSize, len(ciphertext))

			decrypted, err := decryptAll(key, header.IV[:], ciphertext, span)
			require.NoError(t, err)
			assert.Equal(t, plaintext, decrypted)
		}
	}
}

func TestDecryptWrongKey(t *testing.T) {
	header := NewHeader()
	key := DeriveKey([]byte("right"), header.Salt[:])
	wrong := DeriveKey([]byte("wrong"), header.Salt[:])

	ciphertext := encryptAll(t, key, header.IV[:], []byte("some plaintext content"), 16)

	_, err := decryptAll(wrong, header.IV[:], ciphertext, 16)
	require.ErrorIs(t, err, ErrCrypto)
}

func TestDecryptTamperedTail(t *testing.T) {
	header := NewHeader()
	key := DeriveKey([]byte("password"), header.Salt[:])

	ciphertext := encryptAll(t, key, header.IV[:], bytes.Repeat([]byte{0x42}, 100), 16)
	ciphertext[len(ciphertext)-1] ^= 0x01

	_, err := decryptAll(key, header.IV[:], ciphertext, 16)
	require.ErrorIs(t, err, ErrCrypto)
}

func TestDecryptNotBlockAligned(t *testing.T) {
	header := NewHeader()
	key := DeriveKey([]byte("password"), header.Salt[:])

	ciphertext := encryptAll(t, key, header.IV[:], []byte("hello"), 16)

	_, err := decryptAll(key, header.IV[:], ciphertext[:len(ciphertext)-1], 16)
	require.ErrorIs(t, err, ErrCrypto)

	_, err = decryptAll(key, header.IV[:], nil, 16)
	require.ErrorIs(t, err, ErrCrypto)
}

func TestEncryptorNotReusableAfterFinalize(t *testing.T) {
	header := NewHeader()
	key := DeriveKey([]byte("password"), header.Salt[:])

	encryptor, err := NewEncryptor(key, header.IV[:])
	require.NoError(t, err)

	_, err = encryptor.Finalize()
	require.NoError(t, err)

	_, err = encryptor.Update([]byte("more"))
	require.Error(t, err)

	_, err = encryptor.Finalize()
	require.Error(t, err)
}
