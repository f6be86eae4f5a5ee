package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"net/url"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	// FlowScheme prefixes authorization URLs handed to the approving device.
	FlowScheme = "pubkyauth"
	SecretSize = 32
)

// FlowRequest is the ephemeral half of a delegated-authorization
// handshake held by the requesting application.
type FlowRequest struct {
	Relay        string
	Capabilities Capabilities
	Secret       [SecretSize]byte
}

// NewFlowRequest generates a fresh secret for a handshake over relay.
func NewFlowRequest(relay string, caps Capabilities) (*FlowRequest, error) {
	if err := caps.Validate(); err != nil {
		return nil, err
	}
	if _, err := url.ParseRequestURI(relay); err != nil {
		return nil, fmt.Errorf("%w: relay %q: %v", ErrInvalidFlowURL, relay, err)
	}
	r := &FlowRequest{Relay: relay, Capabilities: caps}
	if _, err := io.ReadFull(rand.Reader, r.Secret[:]); err != nil {
		return nil, fmt.Errorf("generate flow secret: %w", err)
	}
	return r, nil
}

// ChannelID is the relay channel derived from the secret. The relay only
// ever sees this hash, never the secret itself.
func (r *FlowRequest) ChannelID() string {
	return ChannelID(r.Secret[:])
}

// URL renders the request for QR-code or deep-link presentation.
func (r *FlowRequest) URL() string {
	q := url.Values{}
	q.Set("relay", r.Relay)
	q.Set("caps", r.Capabilities.String())
	q.Set("secret", base64.RawURLEncoding.EncodeToString(r.Secret[:]))
	return FlowScheme + ":///?" + q.Encode()
}

// ParseFlowURL is used by the approving side to recover the request.
func ParseFlowURL(raw string) (*FlowRequest, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != FlowScheme {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFlowURL, raw)
	}
	q := u.Query()
	caps, err := ParseCapabilities(q.Get("caps"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFlowURL, err)
	}
	secret, err := base64.RawURLEncoding.DecodeString(q.Get("secret"))
	if err != nil || len(secret) != SecretSize {
		return nil, fmt.Errorf("%w: bad secret", ErrInvalidFlowURL)
	}
	relay := q.Get("relay")
	if relay == "" {
		return nil, fmt.Errorf("%w: missing relay", ErrInvalidFlowURL)
	}
	r := &FlowRequest{Relay: relay, Capabilities: caps}
	copy(r.Secret[:], secret)
	return r, nil
}

func ChannelID(secret []byte) string {
	sum := blake3.Sum256(secret)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// SealToken encrypts a marshalled token under the flow secret so the
// relay cannot read or forge it.
func SealToken(secret [SecretSize]byte, token *Token) ([]byte, error) {
	plain, err := token.Marshal()
	if err != nil {
		return nil, fmt.Errorf("marshal token: %w", err)
	}
	aead, err := chacha20poly1305.New(secret[:])
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plain)+aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return aead.Seal(nonce, nonce, plain, nil), nil
}

// OpenToken reverses SealToken.
func OpenToken(secret [SecretSize]byte, sealed []byte) (*Token, error) {
	aead, err := chacha20poly1305.New(secret[:])
	if err != nil {
		return nil, err
	}
	if len(sealed) < aead.NonceSize() {
		return nil, ErrSealed
	}
	nonce, body := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, body, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSealed, err)
	}
	return UnmarshalToken(plain)
}
