// Package runtime declares the storage runtime contract the client
// facade is written against. Two implementations exist: local (an
// isolated in-process homeserver) and network (HTTP to a real one).
package runtime

import (
	"context"
	"fmt"
	"strings"

	"eventky/internal/domain/auth"
)

// MaxBodySize bounds a stored value and any body read back from a
// homeserver.
const MaxBodySize = 32 << 20

type Mode int

const (
	ModeLocal Mode = iota
	ModeNetworked
)

func (m Mode) String() string {
	switch m {
	case ModeLocal:
		return "local"
	case ModeNetworked:
		return "networked"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ModeFor maps the testnet switch to a Mode.
func ModeFor(useTestnet bool) Mode {
	if useTestnet {
		return ModeLocal
	}
	return ModeNetworked
}

// ListOptions page through a listing. A zero Limit means no limit.
type ListOptions struct {
	Cursor  string
	Reverse bool
	Limit   int
}

// Runtime is the entry point to the storage network.
type Runtime interface {
	Signer(kp *auth.Keypair) Signer
	PublicStorage() PublicStorage
	StartAuthFlow(ctx context.Context, caps auth.Capabilities, relayURL string) (Flow, error)
	Close() error
}

// Signer acts on behalf of one identity.
type Signer interface {
	Signup(ctx context.Context, homeserverID, inviteToken string) (Session, error)
	// Signin returns (nil, nil) when the identity has no registration
	// that can be resumed.
	Signin(ctx context.Context) (Session, error)
	// Approve completes someone else's delegated-authorization request
	// by sending a token signed with this identity over the relay.
	Approve(ctx context.Context, flowURL string) error
}

// Session is an authenticated handle on one owner's storage.
type Session interface {
	OwnerID() string
	Capabilities() auth.Capabilities
	Storage() SessionStorage
	Signout(ctx context.Context) error
}

// SessionStorage takes paths relative to the session owner's root.
type SessionStorage interface {
	PutBytes(ctx context.Context, path string, data []byte) error
	Delete(ctx context.Context, path string) error
	List(ctx context.Context, path string, opts ListOptions) ([]string, error)
}

// PublicStorage takes public addresses and needs no credentials.
type PublicStorage interface {
	GetBytes(ctx context.Context, addr string) ([]byte, error)
	List(ctx context.Context, addr string, opts ListOptions) ([]string, error)
}

// Flow is a pending delegated-authorization handshake.
type Flow interface {
	AuthorizationURL() string
	AwaitApproval(ctx context.Context) (Session, error)
	Cancel()
}

// Relay carries one sealed message per channel between the approving
// and requesting sides.
type Relay interface {
	Send(ctx context.Context, channel string, payload []byte) error
	Receive(ctx context.Context, channel string) ([]byte, error)
}

// ApplyListOptions pages a sorted slice of paths in memory.
func ApplyListOptions(paths []string, opts ListOptions) []string {
	out := make([]string, 0, len(paths))
	if opts.Reverse {
		for i := len(paths) - 1; i >= 0; i-- {
			if opts.Cursor == "" || paths[i] < opts.Cursor {
				out = append(out, paths[i])
			}
		}
	} else {
		for _, p := range paths {
			if opts.Cursor == "" || p > opts.Cursor {
				out = append(out, p)
			}
		}
	}
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out
}

// ValidatePath rejects paths a session may never write.
func ValidatePath(path string) error {
	if !strings.HasPrefix(path, "/pub/") || strings.HasSuffix(path, "/") || strings.Contains(path, "//") {
		return fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	return nil
}
