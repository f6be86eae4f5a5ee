package client

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"eventky/internal/app/client/crypto"
	"eventky/internal/domain/auth"
)

var (
	ErrNoIdentity         = errors.New("no identity key stored")
	ErrPassphraseRequired = errors.New("identity key is sealed, passphrase required")
)

// SaveKeypair writes kp's secret at path, readable by the owner only. With
// a passphrase the secret is sealed, otherwise it is stored as hex. An
// existing key is never overwritten.
func SaveKeypair(path string, kp *auth.Keypair, passphrase string) error {
	data := []byte(kp.SecretHex() + "\n")
	if passphrase != "" {
		sealed, err := crypto.Seal([]byte(kp.SecretHex()), passphrase)
		if err != nil {
			return fmt.Errorf("seal key: %w", err)
		}
		data = sealed
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create key dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("create key file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("write key file: %w", err)
	}
	return f.Close()
}

// LoadKeypair reads a key written by SaveKeypair. The passphrase is only
// consulted for sealed keys.
func LoadKeypair(path, passphrase string) (*auth.Keypair, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoIdentity
	}
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}

	if crypto.IsSealed(data) {
		if passphrase == "" {
			return nil, ErrPassphraseRequired
		}
		if data, err = crypto.Open(data, passphrase); err != nil {
			return nil, fmt.Errorf("unseal key: %w", err)
		}
	}

	kp, err := auth.KeypairFromHex(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("key file %s: %w", path, err)
	}
	return kp, nil
}
