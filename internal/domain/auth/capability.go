package auth

import (
	"fmt"
	"strings"
)

type Permission string

const (
	PermRead      Permission = "r"
	PermWrite     Permission = "w"
	PermReadWrite Permission = "rw"
)

func (p Permission) valid() bool {
	return p == PermRead || p == PermWrite || p == PermReadWrite
}

// Allows reports whether p grants want.
func (p Permission) Allows(want Permission) bool {
	return strings.Contains(string(p), string(want))
}

// Capability grants a permission over every path under PathPrefix.
type Capability struct {
	PathPrefix string
	Permission Permission
}

// NewCapability validates and builds a Capability.
func NewCapability(prefix string, perm Permission) (Capability, error) {
	c := Capability{PathPrefix: prefix, Permission: perm}
	if err := c.Validate(); err != nil {
		return Capability{}, err
	}
	return c, nil
}

func (c Capability) Validate() error {
	switch {
	case !strings.HasPrefix(c.PathPrefix, "/") || !strings.HasSuffix(c.PathPrefix, "/"):
		return fmt.Errorf("%w: prefix %q must start and end with /", ErrInvalidCapability, c.PathPrefix)
	case strings.ContainsAny(c.PathPrefix, ":, \t\n"):
		return fmt.Errorf("%w: prefix %q contains a reserved character", ErrInvalidCapability, c.PathPrefix)
	case !c.Permission.valid():
		return fmt.Errorf("%w: unknown permission %q", ErrInvalidCapability, c.Permission)
	}
	return nil
}

// String serializes c as "prefix:perm".
func (c Capability) String() string {
	return c.PathPrefix + ":" + string(c.Permission)
}

// Covers reports whether c grants perm on path.
func (c Capability) Covers(path string, perm Permission) bool {
	return strings.HasPrefix(path, c.PathPrefix) && c.Permission.Allows(perm)
}

func ParseCapability(s string) (Capability, error) {
	i := strings.LastIndex(s, ":")
	if i < 0 {
		return Capability{}, fmt.Errorf("%w: %q", ErrInvalidCapability, s)
	}
	return NewCapability(s[:i], Permission(s[i+1:]))
}

type Capabilities []Capability

// String serializes the list as comma separated values.
func (cs Capabilities) String() string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, ",")
}

func (cs Capabilities) Validate() error {
	if len(cs) == 0 {
		return fmt.Errorf("%w: empty capability list", ErrInvalidCapability)
	}
	for _, c := range cs {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Covers reports whether any capability grants perm on path.
func (cs Capabilities) Covers(path string, perm Permission) bool {
	for _, c := range cs {
		if c.Covers(path, perm) {
			return true
		}
	}
	return false
}

func ParseCapabilities(csv string) (Capabilities, error) {
	if strings.TrimSpace(csv) == "" {
		return nil, fmt.Errorf("%w: empty capability list", ErrInvalidCapability)
	}
	var out Capabilities
	for _, part := range strings.Split(csv, ",") {
		c, err := ParseCapability(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// AppCapabilities is the read-write grant over an application namespace.
func AppCapabilities(baseAppPath string) Capabilities {
	return Capabilities{{PathPrefix: baseAppPath, Permission: PermReadWrite}}
}

// RootCapabilities grants everything; used for a direct signup/signin
// with the owner's own key.
func RootCapabilities() Capabilities {
	return Capabilities{{PathPrefix: "/", Permission: PermReadWrite}}
}
