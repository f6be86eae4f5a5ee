package auth

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base32"
	"encoding/hex"
	"fmt"
)

const zbase32Alphabet = "ybndrfg8ejkmcpqxot1uwisza345h769"

var zbase32 = base32.NewEncoding(zbase32Alphabet).WithPadding(base32.NoPadding)

// Keypair is a user identity. Its public half, rendered as an owner id,
// roots the user's storage namespace.
type Keypair struct {
	private ed25519.PrivateKey
}

// GenerateKeypair creates a fresh random identity.
func GenerateKeypair() (*Keypair, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate keypair: %w", err)
	}
	return &Keypair{private: priv}, nil
}

// KeypairFromSecret rebuilds an identity from its 32-byte seed.
func KeypairFromSecret(secret []byte) (*Keypair, error) {
	if len(secret) != ed25519.SeedSize {
		return nil, fmt.Errorf("secret key must be %d bytes, got %d", ed25519.SeedSize, len(secret))
	}
	return &Keypair{private: ed25519.NewKeyFromSeed(secret)}, nil
}

// KeypairFromHex parses a hex-encoded 32-byte seed.
func KeypairFromHex(s string) (*Keypair, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode secret key: %w", err)
	}
	return KeypairFromSecret(raw)
}

// Secret returns the 32-byte seed.
func (k *Keypair) Secret() []byte {
	return k.private.Seed()
}

// SecretHex returns the seed hex-encoded, the format KeypairFromHex reads.
func (k *Keypair) SecretHex() string {
	return hex.EncodeToString(k.Secret())
}

func (k *Keypair) PublicKey() ed25519.PublicKey {
	return k.private.Public().(ed25519.PublicKey)
}

// OwnerID is the z-base32 rendering of the public key.
func (k *Keypair) OwnerID() string {
	return zbase32.EncodeToString(k.PublicKey())
}

func (k *Keypair) Sign(msg []byte) []byte {
	return ed25519.Sign(k.private, msg)
}

// ParseOwnerID decodes an owner id back to a public key.
func ParseOwnerID(ownerID string) (ed25519.PublicKey, error) {
	raw, err := zbase32.DecodeString(ownerID)
	if err != nil || len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOwnerID, ownerID)
	}
	return ed25519.PublicKey(raw), nil
}
