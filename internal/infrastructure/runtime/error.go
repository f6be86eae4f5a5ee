package runtime

import "errors"

var (
	ErrNotFound      = errors.New("resource not found")
	ErrRejected      = errors.New("provider rejected request")
	ErrNoSession     = errors.New("no live session")
	ErrForbidden     = errors.New("capability does not cover path")
	ErrInvalidPath   = errors.New("invalid storage path")
	ErrTransport     = errors.New("transport failure")
	ErrTooLarge      = errors.New("body exceeds size limit")
	ErrAuthTimeout   = errors.New("authorization flow timed out")
	ErrAuthCancelled = errors.New("authorization flow cancelled")
)
