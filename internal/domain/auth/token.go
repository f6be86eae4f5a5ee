package auth

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultTokenMaxAge bounds how far a token's issue time may drift from
// the verifier's clock.
const DefaultTokenMaxAge = 5 * time.Minute

// Token is a signed statement by an owner granting capabilities. It is
// what a remote approver sends back over the relay and what a
// homeserver accepts to open a session.
type Token struct {
	OwnerID      string `json:"owner_id"`
	Capabilities string `json:"capabilities"`
	IssuedAt     int64  `json:"issued_at"`
	Signature    string `json:"signature"`
}

// IssueToken signs caps with kp.
func IssueToken(kp *Keypair, caps Capabilities, now time.Time) (*Token, error) {
	if err := caps.Validate(); err != nil {
		return nil, err
	}
	t := &Token{
		OwnerID:      kp.OwnerID(),
		Capabilities: caps.String(),
		IssuedAt:     now.UnixMicro(),
	}
	t.Signature = base64.RawURLEncoding.EncodeToString(kp.Sign(t.signedBytes()))
	return t, nil
}

func (t *Token) signedBytes() []byte {
	return []byte(strings.Join([]string{
		"eventky-auth-v1",
		t.OwnerID,
		t.Capabilities,
		strconv.FormatInt(t.IssuedAt, 10),
	}, "\n"))
}

// Verify checks the signature and that the token was issued within
// maxAge of now.
func (t *Token) Verify(now time.Time, maxAge time.Duration) (Capabilities, error) {
	pub, err := ParseOwnerID(t.OwnerID)
	if err != nil {
		return nil, err
	}
	sig, err := base64.RawURLEncoding.DecodeString(t.Signature)
	if err != nil {
		return nil, fmt.Errorf("%w: signature encoding", ErrInvalidToken)
	}
	if !ed25519.Verify(pub, t.signedBytes(), sig) {
		return nil, fmt.Errorf("%w: bad signature", ErrInvalidToken)
	}
	issued := time.UnixMicro(t.IssuedAt)
	if d := now.Sub(issued); d > maxAge || d < -maxAge {
		return nil, fmt.Errorf("%w: issued %s", ErrTokenExpired, issued.UTC().Format(time.RFC3339))
	}
	caps, err := ParseCapabilities(t.Capabilities)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return caps, nil
}

func (t *Token) Marshal() ([]byte, error) {
	return json.Marshal(t)
}

func UnmarshalToken(data []byte) (*Token, error) {
	var t Token
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return &t, nil
}
