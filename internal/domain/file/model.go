package file

import (
	"fmt"
	"strings"

	"eventky/internal/domain/address"
	"eventky/internal/infrastructure/runtime"
)

const (
	// MaxNameLen bounds the display name of an uploaded file.
	MaxNameLen = 255
	// MaxSize is the largest blob a homeserver hands back intact.
	MaxSize = runtime.MaxBodySize
)

// File is the metadata record of an uploaded blob.
type File struct {
	Name        string `json:"name"`
	CreatedAt   int64  `json:"created_at"`
	Src         string `json:"src"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
}

func (f *File) Validate() error {
	switch {
	case strings.TrimSpace(f.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidFile)
	case len(f.Name) > MaxNameLen:
		return fmt.Errorf("%w: name longer than %d", ErrInvalidFile, MaxNameLen)
	case f.ContentType == "":
		return fmt.Errorf("%w: content type is required", ErrInvalidFile)
	case f.Size < 0:
		return fmt.Errorf("%w: negative size", ErrInvalidFile)
	}
	if _, err := address.Parse(f.Src); err != nil {
		return fmt.Errorf("%w: src: %v", ErrInvalidFile, err)
	}
	return nil
}

// Upload is a file as handed over by the user, before it is stored.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

func (u *Upload) Validate() error {
	switch {
	case strings.TrimSpace(u.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidFile)
	case len(u.Name) > MaxNameLen:
		return fmt.Errorf("%w: name longer than %d", ErrInvalidFile, MaxNameLen)
	case len(u.Data) == 0:
		return fmt.Errorf("%w: empty file", ErrInvalidFile)
	case len(u.Data) > MaxSize:
		return fmt.Errorf("%w: larger than %d bytes", ErrInvalidFile, MaxSize)
	}
	return nil
}
