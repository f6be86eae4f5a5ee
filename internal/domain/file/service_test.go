package file

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"eventky/internal/domain/address"
	"eventky/internal/domain/apperr"
	"eventky/internal/domain/id"
	"eventky/internal/domain/resource"
	"eventky/internal/domain/resource/resourcetest"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var layout = resource.NewLayout("/pub/app/")

func newService(store *resourcetest.Store) *Service {
	ids := id.NewGenerator(fixedClock{t: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)})
	return NewService(store, layout, ids, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestUpload(t *testing.T) {
	store := resourcetest.NewStore("alice")
	svc := newService(store)
	ctx := context.Background()
	data := []byte("\x89PNG\r\n\x1a\nfake image")

	uri, err := svc.Upload(ctx, Upload{Name: "cover.png", ContentType: "image/png", Data: data})
	require.NoError(t, err)

	puts := store.Calls("Put")
	require.Len(t, puts, 2)
	assert.Equal(t, layout.Path(resource.CollectionBlobs, id.ContentID(data)), puts[0].Path)
	assert.Equal(t, data, puts[0].Data)
	assert.True(t, strings.HasPrefix(puts[1].Path, "/pub/app/files/"))

	var meta File
	require.NoError(t, json.Unmarshal(puts[1].Data, &meta))
	assert.Equal(t, "cover.png", meta.Name)
	assert.Equal(t, len(data), meta.Size)
	assert.Equal(t, "image/png", meta.ContentType)
	assert.Equal(t, address.Compose("pubky", "alice", puts[0].Path), meta.Src)
	require.NoError(t, meta.Validate())

	assert.Equal(t, "alice", address.ExtractOwnerID(uri))
	assert.True(t, id.IsTimestampID(address.ExtractResourceID(uri)))

	got := svc.Reader().FetchByURI(ctx, uri)
	require.NotNil(t, got)
	blob, err := svc.Blob(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, data, blob)
}

func TestUpload_SameBytesShareBlob(t *testing.T) {
	store := resourcetest.NewStore("alice")
	svc := newService(store)
	ctx := context.Background()

	first, err := svc.Upload(ctx, Upload{Name: "a.txt", Data: []byte("same")})
	require.NoError(t, err)
	second, err := svc.Upload(ctx, Upload{Name: "b.txt", Data: []byte("same")})
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	puts := store.Calls("Put")
	require.Len(t, puts, 4)
	assert.Equal(t, puts[0].Path, puts[2].Path)
}

func TestUpload_BlobFailureSkipsMetadata(t *testing.T) {
	store := resourcetest.NewStore("alice")
	store.FailPut = "/pub/app/blobs/"
	svc := newService(store)

	_, err := svc.Upload(context.Background(), Upload{Name: "x.bin", Data: []byte{1, 2, 3}})
	assert.Equal(t, apperr.KindUpload, apperr.KindOf(err))
	assert.Len(t, store.Calls("Put"), 1)
}

func TestUpload_MetadataFailureKeepsBlob(t *testing.T) {
	store := resourcetest.NewStore("alice")
	store.FailPut = "/pub/app/files/"
	svc := newService(store)
	data := []byte{4, 5, 6}

	_, err := svc.Upload(context.Background(), Upload{Name: "x.bin", Data: data})
	assert.Equal(t, apperr.KindUpload, apperr.KindOf(err))

	_, ok := store.Entry("alice", layout.Path(resource.CollectionBlobs, id.ContentID(data)))
	assert.True(t, ok)
}

func TestUpload_Rejected(t *testing.T) {
	anon := resourcetest.NewStore("")
	_, err := newService(anon).Upload(context.Background(), Upload{Name: "x", Data: []byte{1}})
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	assert.Empty(t, anon.Calls(""))

	store := resourcetest.NewStore("alice")
	_, err = newService(store).Upload(context.Background(), Upload{Name: "", Data: []byte{1}})
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
	_, err = newService(store).Upload(context.Background(), Upload{Name: "empty"})
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
	_, err = newService(store).Upload(context.Background(), Upload{Name: "big", Data: make([]byte, MaxSize+1)})
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
	assert.Empty(t, store.Calls("Put"))
}

func TestDelete_KeepsBlob(t *testing.T) {
	store := resourcetest.NewStore("alice")
	svc := newService(store)
	ctx := context.Background()
	data := []byte("keep me")

	uri, err := svc.Upload(ctx, Upload{Name: "k.txt", Data: data})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, uri))

	assert.Nil(t, svc.Reader().FetchByURI(ctx, uri))
	_, ok := store.Entry("alice", layout.Path(resource.CollectionBlobs, id.ContentID(data)))
	assert.True(t, ok)
}

func TestResolveImage(t *testing.T) {
	store := resourcetest.NewStore("alice")
	svc := newService(store)
	ctx := context.Background()

	got, err := svc.ResolveImage(ctx, "pubky://alice/pub/app/files/0000000000001", nil, false)
	require.NoError(t, err)
	assert.Equal(t, "pubky://alice/pub/app/files/0000000000001", got)

	got, err = svc.ResolveImage(ctx, "pubky://alice/pub/app/files/0000000000001", nil, true)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = svc.ResolveImage(ctx, "", &Upload{Name: "n.png", Data: []byte{9}}, true)
	require.NoError(t, err)
	assert.NotEmpty(t, got)
}
