package resource

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/exp/slog"

	"eventky/internal/domain/address"
	"eventky/internal/domain/apperr"
	"eventky/internal/infrastructure/runtime"
)

type validator interface {
	Validate() error
}

// Item is one hydrated resource of a collection.
type Item[T any] struct {
	URI     string `json:"uri"`
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
	Value   *T     `json:"value"`
}

// Reader fetches and hydrates resources of one collection from public
// storage. Reads never fail on absent or unreadable data: they log and
// report nothing.
type Reader[T any] struct {
	store      Store
	layout     Layout
	collection Collection
	log        *slog.Logger
}

func NewReader[T any](store Store, layout Layout, collection Collection, log *slog.Logger) *Reader[T] {
	return &Reader[T]{
		store:      store,
		layout:     layout,
		collection: collection,
		log:        log.With("component", string(collection)+"_reader"),
	}
}

// URI is the full address of resourceID in ownerID's collection.
func (r *Reader[T]) URI(ownerID, resourceID string) string {
	return address.Compose(r.store.Scheme(), ownerID, r.layout.Path(r.collection, resourceID))
}

// FetchOne returns the resource, or nil when it is absent or cannot be
// parsed.
func (r *Reader[T]) FetchOne(ctx context.Context, ownerID, resourceID string) *T {
	return r.FetchByURI(ctx, r.URI(ownerID, resourceID))
}

// FetchByURI is FetchOne for a full URI.
func (r *Reader[T]) FetchByURI(ctx context.Context, uri string) *T {
	v, err := r.fetch(ctx, uri)
	if err != nil {
		r.log.Warn("fetch failed", "uri", uri, "kind", apperr.KindOf(err), "error", err)
		return nil
	}
	return v
}

// FetchCollection lists ownerID's collection and hydrates every entry.
// Entries that cannot be fetched or parsed are logged and skipped; only
// a failed listing is returned as an error.
func (r *Reader[T]) FetchCollection(ctx context.Context, ownerID string) ([]Item[T], error) {
	dir := address.Compose(r.store.Scheme(), ownerID, r.layout.Dir(r.collection))
	uris, err := r.store.List(ctx, dir, runtime.ListOptions{})
	if err != nil {
		r.log.Error("list failed", "owner_id", ownerID, "error", err)
		return nil, fmt.Errorf("list %s: %w", r.collection, err)
	}

	items := make([]Item[T], 0, len(uris))
	for _, uri := range uris {
		v, err := r.fetch(ctx, uri)
		if err != nil {
			r.log.Warn("skipping unreadable item", "uri", uri, "kind", apperr.KindOf(err), "error", err)
			continue
		}
		if v == nil {
			continue
		}
		items = append(items, Item[T]{
			URI:     uri,
			ID:      address.ExtractResourceID(uri),
			OwnerID: address.ExtractOwnerID(uri),
			Value:   v,
		})
	}
	return items, nil
}

// Fetch is FetchByURI for write paths: it returns (nil, nil) on a miss
// but reports transport and parse failures.
func (r *Reader[T]) Fetch(ctx context.Context, uri string) (*T, error) {
	return r.fetch(ctx, uri)
}

func (r *Reader[T]) fetch(ctx context.Context, uri string) (*T, error) {
	data, err := r.store.Get(ctx, uri)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	v, err := Decode[T](data)
	if err != nil {
		return nil, apperr.New(apperr.KindParse, "fetch "+string(r.collection), address.ExtractOwnerID(uri), address.ExtractResourceID(uri), err)
	}
	return v, nil
}

// Decode parses data as JSON into a T and validates it when T knows how.
func Decode[T any](data []byte) (*T, error) {
	if len(data) == 0 {
		return nil, ErrEmptyPayload
	}
	v := new(T)
	if err := json.Unmarshal(data, v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	if val, ok := any(v).(validator); ok {
		if err := val.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
		}
	}
	return v, nil
}
