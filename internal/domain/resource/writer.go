package resource

import (
	"context"
	"encoding/json"

	"golang.org/x/exp/slog"

	"eventky/internal/domain/address"
	"eventky/internal/domain/apperr"
)

// RequireOwner returns the signed-in owner, or an unauthorized error.
func RequireOwner(store Store, op string) (string, error) {
	owner := store.OwnerID()
	if owner == "" {
		return "", apperr.New(apperr.KindUnauthorized, op, "", "", nil)
	}
	return owner, nil
}

// Write puts v as JSON at path and returns the resource URI.
func Write(ctx context.Context, store Store, log *slog.Logger, op, ownerID, resourceID, path string, v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error(op+" failed", "owner_id", ownerID, "resource_id", resourceID, "error", err)
		return "", apperr.New(apperr.KindParse, op, ownerID, resourceID, err)
	}
	return PutBytes(ctx, store, log, op, ownerID, resourceID, path, data)
}

// PutBytes puts raw data at path and returns the resource URI.
func PutBytes(ctx context.Context, store Store, log *slog.Logger, op, ownerID, resourceID, path string, data []byte) (string, error) {
	if !store.Put(ctx, path, data) {
		log.Error(op+" failed", "owner_id", ownerID, "resource_id", resourceID, "path", path)
		return "", apperr.New(apperr.KindUpload, op, ownerID, resourceID, nil)
	}
	uri := address.Compose(store.Scheme(), ownerID, path)
	log.Info(op+" succeeded", "owner_id", ownerID, "resource_id", resourceID)
	return uri, nil
}

// Remove deletes the resource at uri, which must belong to the
// signed-in owner.
func Remove(ctx context.Context, store Store, log *slog.Logger, op, uri string) error {
	owner, path, err := OwnedPath(store, op, uri)
	if err != nil {
		log.Warn(op+" rejected", "uri", uri, "error", err)
		return err
	}
	rid := address.ExtractResourceID(uri)
	if !store.Delete(ctx, path) {
		log.Error(op+" failed", "owner_id", owner, "resource_id", rid, "path", path)
		return apperr.New(apperr.KindProvider, op, owner, rid, nil)
	}
	log.Info(op+" succeeded", "owner_id", owner, "resource_id", rid)
	return nil
}

// OwnedPath resolves uri to a path of the signed-in owner.
func OwnedPath(store Store, op, uri string) (owner, path string, err error) {
	owner, err = RequireOwner(store, op)
	if err != nil {
		return "", "", err
	}
	path, err = address.ToRelativePath(uri, owner)
	if err != nil {
		return "", "", apperr.New(apperr.KindInvalidAddr, op, owner, address.ExtractResourceID(uri), err)
	}
	return owner, path, nil
}
