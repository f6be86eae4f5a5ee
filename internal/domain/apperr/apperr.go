// Package apperr carries a machine-readable kind on errors returned from
// write paths so callers can render a canned, kind-specific message.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

type Kind string

const (
	KindNetwork       Kind = "network"
	KindProvider      Kind = "provider"
	KindAuthTimeout   Kind = "auth_timeout"
	KindAuthCancelled Kind = "auth_cancelled"
	KindInvalidAddr   Kind = "invalid_address"
	KindUpload        Kind = "upload"
	KindParse         Kind = "parse"
	KindNotFound      Kind = "not_found"
	KindUnauthorized  Kind = "unauthorized"
	KindInvalidInput  Kind = "invalid_input"
	KindUnknown       Kind = "unknown"
)

var messages = map[Kind]string{
	KindNetwork:       "The storage network could not be reached. Please try again.",
	KindProvider:      "Your storage provider rejected the request.",
	KindAuthTimeout:   "The sign-in request expired. Please scan a new code.",
	KindAuthCancelled: "The sign-in request was cancelled.",
	KindInvalidAddr:   "The resource address is not valid.",
	KindUpload:        "The upload failed. Please try again.",
	KindParse:         "The stored data could not be read.",
	KindNotFound:      "The requested item does not exist.",
	KindUnauthorized:  "Please sign in to continue.",
	KindInvalidInput:  "Some fields are missing or invalid.",
}

const genericMessage = "Something went wrong. Please try again."

// Error is a failure annotated with the operation and resource it hit.
type Error struct {
	Kind       Kind
	Op         string
	OwnerID    string
	ResourceID string
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.ResourceID != "" {
		fmt.Fprintf(&b, " %s", e.ResourceID)
	}
	fmt.Fprintf(&b, ": %s", e.Kind)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds an Error. ownerID and resourceID may be empty.
func New(kind Kind, op, ownerID, resourceID string, err error) *Error {
	return &Error{Kind: kind, Op: op, OwnerID: ownerID, ResourceID: resourceID, Err: err}
}

// KindOf returns the kind carried by err, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message is the user-facing text for kind.
func Message(kind Kind) string {
	if m, ok := messages[kind]; ok {
		return m
	}
	return genericMessage
}

// UserMessage is Message(KindOf(err)).
func UserMessage(err error) string {
	return Message(KindOf(err))
}
