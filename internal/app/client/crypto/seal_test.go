package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/pbkdf2"
)

func TestSealOpen(t *testing.T) {
	secret := []byte("0123456789abcdef0123456789abcdef")

	sealed, err := Seal(secret, "correct horse")
	require.NoError(t, err)
	assert.True(t, IsSealed(sealed))
	assert.NotContains(t, string(sealed), string(secret))

	opened, err := Open(sealed, "correct horse")
	require.NoError(t, err)
	assert.Equal(t, secret, opened)

	_, err = Open(sealed, "battery staple")
	assert.ErrorIs(t, err, ErrWrongPassphrase)
}

func TestSeal_EmptyPassphrase(t *testing.T) {
	_, err := Seal([]byte("x"), "")
	assert.Error(t, err)
}

func TestOpen_NotSealed(t *testing.T) {
	assert.False(t, IsSealed([]byte("deadbeef\n")))
	_, err := Open([]byte("deadbeef"), "pw")
	assert.ErrorIs(t, err, ErrNotSealed)
}

func TestOpen_PBKDF2Container(t *testing.T) {
	salt := make([]byte, saltLen)
	_, err := io.ReadFull(rand.Reader, salt)
	require.NoError(t, err)

	key := pbkdf2.Key([]byte("pw"), salt, 1000, keyLen, sha256.New)
	sum := sha256.Sum256(key)
	ct, err := encryptWithKey(key, []byte("legacy"))
	require.NoError(t, err)

	raw, err := json.Marshal(container{
		Header: Header{
			Version:    1,
			Algorithm:  AlgPBKDF2,
			Salt:       hex.EncodeToString(salt),
			KeyHash:    hex.EncodeToString(sum[:]),
			Iterations: 1000,
		},
		Data: hex.EncodeToString(ct),
	})
	require.NoError(t, err)

	opened, err := Open(raw, "pw")
	require.NoError(t, err)
	assert.Equal(t, "legacy", string(opened))
}
