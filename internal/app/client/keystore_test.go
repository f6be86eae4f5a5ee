package client

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventky/internal/app/client/crypto"
	"eventky/internal/domain/auth"
)

func TestKeystore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "secret")
	kp, err := auth.GenerateKeypair()
	require.NoError(t, err)

	require.NoError(t, SaveKeypair(path, kp, ""))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := LoadKeypair(path, "")
	require.NoError(t, err)
	assert.Equal(t, kp.OwnerID(), loaded.OwnerID())

	other, err := auth.GenerateKeypair()
	require.NoError(t, err)
	assert.Error(t, SaveKeypair(path, other, ""))
}

func TestKeystore_Missing(t *testing.T) {
	_, err := LoadKeypair(filepath.Join(t.TempDir(), "secret"), "")
	assert.ErrorIs(t, err, ErrNoIdentity)
}

func TestKeystore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret")
	require.NoError(t, os.WriteFile(path, []byte("not-hex"), 0o600))

	_, err := LoadKeypair(path, "")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoIdentity)
}

func TestKeystore_Sealed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret")
	kp, err := auth.GenerateKeypair()
	require.NoError(t, err)
	require.NoError(t, SaveKeypair(path, kp, "hunter2"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), kp.SecretHex())

	_, err = LoadKeypair(path, "")
	assert.ErrorIs(t, err, ErrPassphraseRequired)

	_, err = LoadKeypair(path, "wrong")
	assert.ErrorIs(t, err, crypto.ErrWrongPassphrase)

	loaded, err := LoadKeypair(path, "hunter2")
	require.NoError(t, err)
	assert.Equal(t, kp.OwnerID(), loaded.OwnerID())
}
