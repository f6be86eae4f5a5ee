// Package address converts between the three encodings of a storage
// resource address: the fully-qualified URI (scheme://owner/path), the
// public address (scheme token glued to the owner id, then the path)
// and the session-relative path.
package address

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// DefaultScheme is the scheme used for URIs built by this module.
const DefaultScheme = "pubky"

var ErrInvalidAddress = errors.New("invalid address")

var uriPattern = regexp.MustCompile(`^([a-z][a-z0-9+.-]*)://([^/\s]+)(/.*)$`)

// URI is a parsed fully-qualified resource identifier.
type URI struct {
	Scheme  string
	OwnerID string
	Path    string
}

// String renders the fully-qualified form.
func (u URI) String() string {
	return u.Scheme + "://" + u.OwnerID + u.Path
}

// Public renders the public-read form.
func (u URI) Public() string {
	return u.Scheme + u.OwnerID + u.Path
}

// ResourceID is the final path segment, empty for a directory path.
func (u URI) ResourceID() string {
	i := strings.LastIndex(u.Path, "/")
	return u.Path[i+1:]
}

// Compose builds a fully-qualified URI. A missing leading slash on path
// is added.
func Compose(scheme, ownerID, path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return URI{Scheme: scheme, OwnerID: ownerID, Path: path}.String()
}

// Parse splits a fully-qualified URI into its parts.
func Parse(uri string) (URI, error) {
	m := uriPattern.FindStringSubmatch(uri)
	if m == nil {
		return URI{}, fmt.Errorf("%w: %q", ErrInvalidAddress, uri)
	}
	return URI{Scheme: m[1], OwnerID: m[2], Path: m[3]}, nil
}

// ToPublicAddress converts a URI to the public-read form.
func ToPublicAddress(uri string) (string, error) {
	u, err := Parse(uri)
	if err != nil {
		return "", err
	}
	return u.Public(), nil
}

// ToRelativePath strips the scheme and owner from uri. The owner must be
// ownerID; a URI belonging to someone else is rejected.
func ToRelativePath(uri, ownerID string) (string, error) {
	u, err := Parse(uri)
	if err != nil {
		return "", err
	}
	if ownerID == "" || u.OwnerID != ownerID {
		return "", fmt.Errorf("%w: %q is not owned by %q", ErrInvalidAddress, uri, ownerID)
	}
	return u.Path, nil
}

// FromPublicAddress is the inverse of ToPublicAddress for a known scheme.
func FromPublicAddress(addr, scheme string) (string, error) {
	rest, ok := strings.CutPrefix(addr, scheme)
	if !ok {
		return "", fmt.Errorf("%w: %q lacks scheme %q", ErrInvalidAddress, addr, scheme)
	}
	owner, path, found := strings.Cut(rest, "/")
	if !found || owner == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}
	return Compose(scheme, owner, "/"+path), nil
}

// ParsePublic splits a public address into owner and path.
func ParsePublic(addr, scheme string) (ownerID, path string, err error) {
	uri, err := FromPublicAddress(addr, scheme)
	if err != nil {
		return "", "", err
	}
	u, err := Parse(uri)
	if err != nil {
		return "", "", err
	}
	return u.OwnerID, u.Path, nil
}

// ExtractOwnerID returns the owner of uri, or "" when uri is malformed.
func ExtractOwnerID(uri string) string {
	u, err := Parse(uri)
	if err != nil {
		return ""
	}
	return u.OwnerID
}

// ExtractResourceID returns the last path segment of uri, or "" when uri
// is malformed.
func ExtractResourceID(uri string) string {
	u, err := Parse(uri)
	if err != nil {
		return ""
	}
	return u.ResourceID()
}

// IsRelativePath reports whether s is a session-relative path rather
// than a URI or public address.
func IsRelativePath(s string) bool {
	return strings.HasPrefix(s, "/")
}
