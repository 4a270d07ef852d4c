package keyfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTrimsWhitespace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	require.NoError(t, os.WriteFile(path, []byte("  secret password\n"), 0o600))

	password, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("secret password"), password)
}

func TestLoadRejectsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	require.NoError(t, os.WriteFile(path, []byte(" \n\t "), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestGenerateRejectsNonPositiveLength(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")

	require.Error(t, Generate(path, 0, false))
	require.Error(t, Generate(path, -1, false))
	assert.NoFileExists(t, path)
}

func TestGenerate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")

	require.NoError(t, Generate(path, 64, false))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// The generated file must load straight back as a usable password.
	first, err := Load(path)
	require.NoError(t, err)
	assert.NotEmpty(t, first)

	// Refuses to clobber without force.
	require.ErrorIs(t, Generate(path, 64, false), ErrExists)

	// Force regenerates.
	require.NoError(t, Generate(path, 64, true))

	second, err := Load(path)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
