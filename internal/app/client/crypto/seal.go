// Package crypto seals the identity secret at rest behind a passphrase.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

const (
	sealVersion = 1

	AlgArgon2id = "Argon2id"
	AlgPBKDF2   = "PBKDF2-SHA256"

	argon2Time    = 1
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	keyLen        = 32
	saltLen       = 16

	pbkdf2Iterations = 100000
)

var (
	ErrWrongPassphrase = errors.New("wrong passphrase")
	ErrNotSealed       = errors.New("data is not a sealed container")
)

// Header describes how the sealing key was derived.
type Header struct {
	Version    int       `json:"version"`
	Algorithm  string    `json:"key_algorithm"`
	Salt       string    `json:"salt"`
	KeyHash    string    `json:"key_hash"`
	Iterations int       `json:"iterations,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type container struct {
	Header Header `json:"header"`
	Data   string `json:"data"`
}

// Seal encrypts plaintext with AES-256-GCM under a key derived from
// passphrase with Argon2id.
func Seal(plaintext []byte, passphrase string) ([]byte, error) {
	if passphrase == "" {
		return nil, errors.New("empty passphrase")
	}
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}

	h := Header{
		Version:   sealVersion,
		Algorithm: AlgArgon2id,
		Salt:      hex.EncodeToString(salt),
		CreatedAt: time.Now().UTC(),
	}
	key, err := deriveKey(passphrase, h)
	if err != nil {
		return nil, err
	}
	defer clear(key)
	sum := sha256.Sum256(key)
	h.KeyHash = hex.EncodeToString(sum[:])

	ciphertext, err := encryptWithKey(key, plaintext)
	if err != nil {
		return nil, err
	}
	return json.Marshal(container{Header: h, Data: hex.EncodeToString(ciphertext)})
}

// Open reverses Seal. Containers written with PBKDF2 are still accepted.
func Open(sealed []byte, passphrase string) ([]byte, error) {
	var c container
	if err := json.Unmarshal(sealed, &c); err != nil || c.Header.Version == 0 {
		return nil, ErrNotSealed
	}
	if c.Header.Version > sealVersion {
		return nil, fmt.Errorf("unsupported container version %d", c.Header.Version)
	}

	key, err := deriveKey(passphrase, c.Header)
	if err != nil {
		return nil, err
	}
	defer clear(key)

	sum := sha256.Sum256(key)
	want, err := hex.DecodeString(c.Header.KeyHash)
	if err != nil || subtle.ConstantTimeCompare(sum[:], want) != 1 {
		return nil, ErrWrongPassphrase
	}

	ciphertext, err := hex.DecodeString(c.Data)
	if err != nil {
		return nil, fmt.Errorf("decode sealed data: %w", err)
	}
	return decryptWithKey(key, ciphertext)
}

// IsSealed reports whether data looks like a Seal container.
func IsSealed(data []byte) bool {
	var c container
	return json.Unmarshal(data, &c) == nil && c.Header.Version > 0
}

func deriveKey(passphrase string, h Header) ([]byte, error) {
	salt, err := hex.DecodeString(h.Salt)
	if err != nil || len(salt) < saltLen {
		return nil, fmt.Errorf("invalid salt")
	}
	switch h.Algorithm {
	case AlgArgon2id:
		return argon2.IDKey([]byte(passphrase), salt, argon2Time, argon2Memory, argon2Threads, keyLen), nil
	case AlgPBKDF2:
		iter := h.Iterations
		if iter <= 0 {
			iter = pbkdf2Iterations
		}
		return pbkdf2.Key([]byte(passphrase), salt, iter, keyLen, sha256.New), nil
	default:
		return nil, fmt.Errorf("unsupported algorithm: %s", h.Algorithm)
	}
}

func encryptWithKey(key, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithKey(key, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}
	n := gcm.NonceSize()
	if len(ciphertext) < n {
		return nil, errors.New("ciphertext too short")
	}
	plaintext, err := gcm.Open(nil, ciphertext[:n], ciphertext[n:], nil)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	return plaintext, nil
}
