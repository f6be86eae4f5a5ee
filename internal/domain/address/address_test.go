package address

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToPublicAddress(t *testing.T) {
	addr, err := ToPublicAddress("scheme://abc123/pub/app/calendar/0000000000001")
	require.NoError(t, err)
	assert.Equal(t, "schemeabc123/pub/app/calendar/0000000000001", addr)

	uri := "scheme://abc123/pub/app/calendar/0000000000001"
	assert.Equal(t, "0000000000001", ExtractResourceID(uri))
	assert.Equal(t, "abc123", ExtractOwnerID(uri))
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		owner string
		path  string
	}{
		{name: "calendar", owner: "abc123", path: "/pub/app/calendar/0000000000001"},
		{name: "blob", owner: "o1hg8x3kzu", path: "/pub/eventky.app/blobs/0Z1Y2X3W4V5T6S7R8Q9P0N1M2K"},
		{name: "root", owner: "x", path: "/"},
		{name: "nested", owner: "owner", path: "/pub/a/b/c/d/e/f/g"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uri := Compose(DefaultScheme, tt.owner, tt.path)

			rel, err := ToRelativePath(uri, tt.owner)
			require.NoError(t, err)
			assert.Equal(t, tt.path, rel)

			pub, err := ToPublicAddress(uri)
			require.NoError(t, err)
			owner, path, err := ParsePublic(pub, DefaultScheme)
			require.NoError(t, err)
			assert.Equal(t, tt.owner, owner)
			assert.Equal(t, tt.path, path)

			back, err := FromPublicAddress(pub, DefaultScheme)
			require.NoError(t, err)
			assert.Equal(t, uri, back)

			assert.Equal(t, tt.owner, ExtractOwnerID(uri))
		})
	}
}

func TestToRelativePath_OwnerMismatch(t *testing.T) {
	_, err := ToRelativePath("pubky://alice/pub/app/event/0000000000001", "bob")
	assert.ErrorIs(t, err, ErrInvalidAddress)

	_, err = ToRelativePath("pubky://alice/pub/app/event/0000000000001", "")
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestMalformedInput(t *testing.T) {
	inputs := []string{
		"",
		"abc123/pub/app",
		"pubkyabc123/pub/app",
		"pubky://",
		"pubky://owner",
		"://owner/path",
		"http//owner/path",
	}

	for _, in := range inputs {
		assert.NotPanics(t, func() {
			assert.Empty(t, ExtractOwnerID(in), in)
			assert.Empty(t, ExtractResourceID(in), in)
		})
		_, err := ToPublicAddress(in)
		assert.ErrorIs(t, err, ErrInvalidAddress, in)
	}
}

func TestExtractResourceID_DirectoryPath(t *testing.T) {
	assert.Equal(t, "", ExtractResourceID("pubky://abc/pub/app/calendar/"))
}

func TestIsRelativePath(t *testing.T) {
	assert.True(t, IsRelativePath("/pub/app/calendar/"))
	assert.False(t, IsRelativePath("pubkyabc/pub/app"))
	assert.False(t, IsRelativePath("pubky://abc/pub/app"))
}
