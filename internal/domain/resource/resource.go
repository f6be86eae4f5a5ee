// Package resource holds what the calendar, event and file packages
// share: the storage layout of an application namespace, the facade
// subset they need, and generic typed reads and JSON writes.
package resource

import (
	"context"
	"strings"

	"eventky/internal/infrastructure/runtime"
)

// Store is the part of the client facade domain services use.
type Store interface {
	OwnerID() string
	Scheme() string
	Get(ctx context.Context, addr string) ([]byte, error)
	Put(ctx context.Context, path string, data []byte) bool
	Delete(ctx context.Context, path string) bool
	List(ctx context.Context, target string, opts runtime.ListOptions) ([]string, error)
}

type Collection string

const (
	CollectionCalendar Collection = "calendar"
	CollectionEvent    Collection = "event"
	CollectionFiles    Collection = "files"
	CollectionBlobs    Collection = "blobs"
)

// Layout maps collections onto paths under an application namespace
// such as /pub/eventky.app/.
type Layout struct {
	BaseAppPath string
}

func NewLayout(baseAppPath string) Layout {
	if !strings.HasSuffix(baseAppPath, "/") {
		baseAppPath += "/"
	}
	return Layout{BaseAppPath: baseAppPath}
}

// Dir is the listing prefix of c, with a trailing slash.
func (l Layout) Dir(c Collection) string {
	return l.BaseAppPath + string(c) + "/"
}

// Path is where the resource id of collection c lives.
func (l Layout) Path(c Collection, id string) string {
	return l.Dir(c) + id
}

// Contains reports whether path is a direct entry of collection c.
func (l Layout) Contains(c Collection, path string) bool {
	rest, ok := strings.CutPrefix(path, l.Dir(c))
	return ok && rest != "" && !strings.Contains(rest, "/")
}
