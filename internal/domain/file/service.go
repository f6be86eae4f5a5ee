package file

import (
	"context"
	"net/http"

	"golang.org/x/exp/slog"

	"eventky/internal/domain/address"
	"eventky/internal/domain/apperr"
	"eventky/internal/domain/id"
	"eventky/internal/domain/resource"
)

type Service struct {
	store  resource.Store
	layout resource.Layout
	ids    *id.Generator
	reader *resource.Reader[File]
	log    *slog.Logger
}

func NewService(store resource.Store, layout resource.Layout, ids *id.Generator, log *slog.Logger) *Service {
	return &Service{
		store:  store,
		layout: layout,
		ids:    ids,
		reader: resource.NewReader[File](store, layout, resource.CollectionFiles, log),
		log:    log.With("component", "file_service"),
	}
}

func (s *Service) Reader() *resource.Reader[File] {
	return s.reader
}

// Upload stores the bytes as a content-addressed blob, then writes the
// metadata record pointing at it, and returns the metadata URI. A failed
// metadata write leaves the blob in place.
func (s *Service) Upload(ctx context.Context, up Upload) (string, error) {
	const op = "upload file"
	owner, err := resource.RequireOwner(s.store, op)
	if err != nil {
		s.log.Warn("upload rejected", "error", err)
		return "", err
	}
	if err := up.Validate(); err != nil {
		return "", apperr.New(apperr.KindInvalidInput, op, owner, "", err)
	}

	blobID := id.ContentID(up.Data)
	blobURI, err := resource.PutBytes(ctx, s.store, s.log, "upload blob", owner, blobID, s.layout.Path(resource.CollectionBlobs, blobID), up.Data)
	if err != nil {
		return "", err
	}

	contentType := up.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(up.Data)
	}
	fileID := s.ids.Next()
	meta := File{
		Name:        up.Name,
		CreatedAt:   s.ids.Now().UnixMicro(),
		Src:         blobURI,
		ContentType: contentType,
		Size:        len(up.Data),
	}
	return resource.Write(ctx, s.store, s.log, op, owner, fileID, s.layout.Path(resource.CollectionFiles, fileID), meta)
}

// Delete removes the metadata record at uri. The blob stays, since other
// records may share it.
func (s *Service) Delete(ctx context.Context, uri string) error {
	return resource.Remove(ctx, s.store, s.log, "delete file", uri)
}

// Blob reads the raw bytes f points at.
func (s *Service) Blob(ctx context.Context, f *File) ([]byte, error) {
	pub, err := address.ToPublicAddress(f.Src)
	if err != nil {
		return nil, apperr.New(apperr.KindInvalidAddr, "read blob", "", "", err)
	}
	data, err := s.store.Get(ctx, pub)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, apperr.New(apperr.KindNotFound, "read blob", address.ExtractOwnerID(f.Src), address.ExtractResourceID(f.Src), nil)
	}
	return data, nil
}

// ResolveImage decides the image reference of a record being written:
// a new upload wins, then an explicit removal, then current.
func (s *Service) ResolveImage(ctx context.Context, current string, up *Upload, remove bool) (string, error) {
	switch {
	case up != nil:
		return s.Upload(ctx, *up)
	case remove:
		return "", nil
	default:
		return current, nil
	}
}
