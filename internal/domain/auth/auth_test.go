package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeypair_OwnerIDRoundTrip(t *testing.T) {
	kp, err := GenerateKeypair()
	require.NoError(t, err)

	owner := kp.OwnerID()
	assert.Len(t, owner, 52)

	pub, err := ParseOwnerID(owner)
	require.NoError(t, err)
	assert.Equal(t, kp.PublicKey(), pub)

	again, err := KeypairFromHex(kp.SecretHex())
	require.NoError(t, err)
	assert.Equal(t, owner, again.OwnerID())
}

func TestParseOwnerID_Invalid(t *testing.T) {
	for _, in := range []string{"", "abc123", strings.Repeat("y", 51), "!!!!"} {
		_, err := ParseOwnerID(in)
		assert.ErrorIs(t, err, ErrInvalidOwnerID, in)
	}
}

func TestKeypairFromSecret_WrongSize(t *testing.T) {
	_, err := KeypairFromSecret([]byte("short"))
	assert.Error(t, err)
}

func TestCapability(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Capability
		wantErr bool
	}{
		{name: "read write", input: "/pub/eventky.app/:rw", want: Capability{"/pub/eventky.app/", PermReadWrite}},
		{name: "read only", input: "/pub/:r", want: Capability{"/pub/", PermRead}},
		{name: "missing permission", input: "/pub/", wantErr: true},
		{name: "bad permission", input: "/pub/:x", wantErr: true},
		{name: "no leading slash", input: "pub/:rw", wantErr: true},
		{name: "no trailing slash", input: "/pub:rw", wantErr: true},
		{name: "embedded comma", input: "/pub,evil/:rw", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCapability(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCapability)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.input, got.String())
		})
	}
}

func TestCapabilities_CSV(t *testing.T) {
	caps := Capabilities{
		{PathPrefix: "/pub/eventky.app/", Permission: PermReadWrite},
		{PathPrefix: "/pub/pubky.app/", Permission: PermRead},
	}
	csv := caps.String()
	assert.Equal(t, "/pub/eventky.app/:rw,/pub/pubky.app/:r", csv)

	parsed, err := ParseCapabilities(csv)
	require.NoError(t, err)
	assert.Equal(t, caps, parsed)

	assert.True(t, caps.Covers("/pub/eventky.app/calendar/x", PermWrite))
	assert.False(t, caps.Covers("/pub/pubky.app/posts/x", PermWrite))
	assert.True(t, caps.Covers("/pub/pubky.app/posts/x", PermRead))

	_, err = ParseCapabilities("")
	assert.ErrorIs(t, err, ErrInvalidCapability)
	_, err = NewCapability("/pub/", "")
	assert.ErrorIs(t, err, ErrInvalidCapability)
}

func TestToken_IssueVerify(t *testing.T) {
	kp, err := GenerateKeypair()
	require.NoError(t, err)
	now := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	tok, err := IssueToken(kp, AppCapabilities("/pub/app/"), now)
	require.NoError(t, err)

	caps, err := tok.Verify(now.Add(time.Minute), DefaultTokenMaxAge)
	require.NoError(t, err)
	assert.Equal(t, AppCapabilities("/pub/app/"), caps)

	_, err = tok.Verify(now.Add(time.Hour), DefaultTokenMaxAge)
	assert.ErrorIs(t, err, ErrTokenExpired)

	forged := *tok
	forged.Capabilities = "/:rw"
	_, err = forged.Verify(now, DefaultTokenMaxAge)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestFlowRequest_URLRoundTrip(t *testing.T) {
	caps := AppCapabilities("/pub/eventky.app/")
	req, err := NewFlowRequest("https://relay.example.com/link/", caps)
	require.NoError(t, err)

	u := req.URL()
	assert.True(t, strings.HasPrefix(u, "pubkyauth:///?"))
	assert.NotContains(t, u, req.ChannelID())

	parsed, err := ParseFlowURL(u)
	require.NoError(t, err)
	assert.Equal(t, req.Relay, parsed.Relay)
	assert.Equal(t, req.Capabilities, parsed.Capabilities)
	assert.Equal(t, req.Secret, parsed.Secret)
	assert.Equal(t, req.ChannelID(), parsed.ChannelID())
}

func TestFlowRequest_FreshSecrets(t *testing.T) {
	caps := AppCapabilities("/pub/app/")
	a, err := NewFlowRequest("https://relay.example.com/", caps)
	require.NoError(t, err)
	b, err := NewFlowRequest("https://relay.example.com/", caps)
	require.NoError(t, err)
	assert.NotEqual(t, a.Secret, b.Secret)
	assert.NotEqual(t, a.ChannelID(), b.ChannelID())
}

func TestParseFlowURL_Invalid(t *testing.T) {
	for _, in := range []string{
		"",
		"https://example.com/?caps=/pub/:rw",
		"pubkyauth:///?caps=/pub/:rw&relay=https://r/",
		"pubkyauth:///?caps=/pub/:rw&secret=AAAA&relay=https://r/",
	} {
		_, err := ParseFlowURL(in)
		assert.ErrorIs(t, err, ErrInvalidFlowURL, in)
	}
}

func TestSealOpen(t *testing.T) {
	kp, err := GenerateKeypair()
	require.NoError(t, err)
	req, err := NewFlowRequest("https://relay.example.com/", AppCapabilities("/pub/app/"))
	require.NoError(t, err)
	tok, err := IssueToken(kp, req.Capabilities, time.Now())
	require.NoError(t, err)

	sealed, err := SealToken(req.Secret, tok)
	require.NoError(t, err)

	opened, err := OpenToken(req.Secret, sealed)
	require.NoError(t, err)
	assert.Equal(t, tok, opened)

	var other [SecretSize]byte
	_, err = OpenToken(other, sealed)
	assert.ErrorIs(t, err, ErrSealed)
	_, err = OpenToken(req.Secret, []byte("x"))
	assert.ErrorIs(t, err, ErrSealed)
}
