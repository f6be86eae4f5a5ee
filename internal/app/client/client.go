// Package client is the session and identity facade the rest of the
// application talks to. It owns the storage runtime and at most one
// authenticated session at a time.
package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/exp/slog"

	"eventky/internal/app/client/config"
	"eventky/internal/domain/address"
	"eventky/internal/domain/apperr"
	"eventky/internal/domain/auth"
	"eventky/internal/domain/id"
	"eventky/internal/infrastructure/runtime"
	"eventky/internal/infrastructure/runtime/local"
	"eventky/internal/infrastructure/runtime/network"
	"eventky/internal/infrastructure/storage/sqlite"
)

// RuntimeFactory builds the runtime for a mode.
type RuntimeFactory func(mode runtime.Mode) (runtime.Runtime, error)

type App struct {
	cfg     *config.Config
	log     *slog.Logger
	clock   id.Clock
	factory RuntimeFactory
	rt      runtime.Runtime
	session runtime.Session
	mu      sync.RWMutex
}

type Option func(*App)

// WithRuntime makes Initialize adopt rt instead of building one.
func WithRuntime(rt runtime.Runtime) Option {
	return func(a *App) {
		a.factory = func(runtime.Mode) (runtime.Runtime, error) { return rt, nil }
	}
}

func WithRuntimeFactory(f RuntimeFactory) Option {
	return func(a *App) { a.factory = f }
}

// WithClock sets the clock handed to the local runtime.
func WithClock(c id.Clock) Option {
	return func(a *App) { a.clock = c }
}

func New(cfg *config.Config, log *slog.Logger, opts ...Option) *App {
	a := &App{
		cfg:   cfg,
		log:   log.With("component", "client"),
		clock: id.RealClock{},
	}
	a.factory = a.defaultRuntime
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *App) defaultRuntime(mode runtime.Mode) (runtime.Runtime, error) {
	switch mode {
	case runtime.ModeLocal:
		store, err := sqlite.New(a.cfg.LocalDBPath(), a.log)
		if err != nil {
			return nil, err
		}
		return local.NewWithStore(store, local.Config{
			DBPath:       a.cfg.LocalDBPath(),
			HomeserverID: a.cfg.HomeserverID,
			InviteToken:  a.cfg.InviteToken,
			AuthTimeout:  a.cfg.AuthTimeout,
		}, a.clock, a.log), nil
	case runtime.ModeNetworked:
		return network.New(network.Config{
			HomeserverID:  a.cfg.HomeserverID,
			HomeserverURL: a.cfg.HomeserverURL,
			RelayURL:      a.cfg.RelayURL,
			AuthTimeout:   a.cfg.AuthTimeout,
			HTTPTimeout:   a.cfg.HTTPTimeout,
		}, a.log)
	default:
		return nil, fmt.Errorf("unknown runtime mode %s", mode)
	}
}

// Initialize builds the runtime for mode. Later calls are no-ops.
func (a *App) Initialize(mode runtime.Mode) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.initLocked(mode)
}

func (a *App) initLocked(mode runtime.Mode) error {
	if a.rt != nil {
		return nil
	}
	rt, err := a.factory(mode)
	if err != nil {
		return apperr.New(apperr.KindNetwork, "initialize", "", "", err)
	}
	a.rt = rt
	a.log.Info("runtime initialized", "mode", mode.String())
	return nil
}

// ensureRuntime returns the runtime, initializing it with the configured mode
// on first use.
func (a *App) ensureRuntime() (runtime.Runtime, error) {
	a.mu.RLock()
	rt := a.rt
	a.mu.RUnlock()
	if rt != nil {
		return rt, nil
	}
	if err := a.Initialize(a.cfg.Mode()); err != nil {
		return nil, err
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.rt, nil
}

func (a *App) IsInitialized() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.rt != nil
}

// Runtime exposes the initialized runtime, e.g. to serve the local relay.
func (a *App) Runtime() (runtime.Runtime, error) {
	return a.ensureRuntime()
}

// setSession makes sess current and signs out the one it replaces.
func (a *App) setSession(ctx context.Context, sess runtime.Session) {
	a.mu.Lock()
	prev := a.session
	a.session = sess
	a.mu.Unlock()

	if prev != nil && prev != sess {
		if err := prev.Signout(ctx); err != nil {
			a.log.Warn("failed to sign out replaced session", "owner_id", prev.OwnerID(), "error", err)
		}
	}
}

func (a *App) currentSession() runtime.Session {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.session
}

// Signup registers kp with the configured homeserver and makes the
// resulting session current.
func (a *App) Signup(ctx context.Context, kp *auth.Keypair, inviteToken string) (runtime.Session, error) {
	rt, err := a.ensureRuntime()
	if err != nil {
		return nil, err
	}
	sess, err := rt.Signer(kp).Signup(ctx, a.cfg.HomeserverID, inviteToken)
	if err != nil {
		a.log.Error("signup failed", "owner_id", kp.OwnerID(), "error", err)
		return nil, apperr.New(kindForRuntime(err, apperr.KindProvider), "signup", kp.OwnerID(), "", err)
	}
	a.setSession(ctx, sess)
	a.log.Info("signed up", "owner_id", sess.OwnerID())
	return sess, nil
}

// Signin resumes kp's registration. It returns (nil, nil) when there is
// nothing to resume.
func (a *App) Signin(ctx context.Context, kp *auth.Keypair) (runtime.Session, error) {
	rt, err := a.ensureRuntime()
	if err != nil {
		return nil, err
	}
	sess, err := rt.Signer(kp).Signin(ctx)
	if err != nil {
		a.log.Error("signin failed", "owner_id", kp.OwnerID(), "error", err)
		return nil, apperr.New(kindForRuntime(err, apperr.KindProvider), "signin", kp.OwnerID(), "", err)
	}
	if sess == nil {
		a.log.Debug("no session to resume", "owner_id", kp.OwnerID())
		return nil, nil
	}
	a.setSession(ctx, sess)
	a.log.Info("signed in", "owner_id", sess.OwnerID())
	return sess, nil
}

// SignupOrSignin resumes kp's registration, registering it first when
// there is none.
func (a *App) SignupOrSignin(ctx context.Context, kp *auth.Keypair, inviteToken string) (runtime.Session, error) {
	sess, err := a.Signin(ctx, kp)
	if err != nil || sess != nil {
		return sess, err
	}
	return a.Signup(ctx, kp, inviteToken)
}

// Approve completes someone else's authorization request as kp.
func (a *App) Approve(ctx context.Context, kp *auth.Keypair, flowURL string) error {
	rt, err := a.ensureRuntime()
	if err != nil {
		return err
	}
	if err := rt.Signer(kp).Approve(ctx, flowURL); err != nil {
		a.log.Error("approve failed", "owner_id", kp.OwnerID(), "error", err)
		return apperr.New(kindForRuntime(err, apperr.KindProvider), "approve", kp.OwnerID(), "", err)
	}
	return nil
}

// Signout drops the current session. The local state is cleared even
// when the homeserver cannot be told.
func (a *App) Signout(ctx context.Context) error {
	a.mu.Lock()
	sess := a.session
	a.session = nil
	a.mu.Unlock()

	if sess == nil {
		return nil
	}
	if err := sess.Signout(ctx); err != nil {
		a.log.Warn("signout failed", "owner_id", sess.OwnerID(), "error", err)
		return apperr.New(kindForRuntime(err, apperr.KindProvider), "signout", sess.OwnerID(), "", err)
	}
	a.log.Info("signed out", "owner_id", sess.OwnerID())
	return nil
}

// SessionInfo is a read-only view of the current session.
type SessionInfo struct {
	OwnerID      string
	Capabilities auth.Capabilities
}

// Session returns the current session, or nil.
func (a *App) Session() *SessionInfo {
	sess := a.currentSession()
	if sess == nil {
		return nil
	}
	return &SessionInfo{OwnerID: sess.OwnerID(), Capabilities: sess.Capabilities()}
}

func (a *App) IsAuthenticated() bool {
	return a.currentSession() != nil
}

// OwnerID is the current session's owner, or "" when signed out.
func (a *App) OwnerID() string {
	if sess := a.currentSession(); sess != nil {
		return sess.OwnerID()
	}
	return ""
}

// Scheme is the URI scheme resources are addressed with.
func (a *App) Scheme() string {
	return address.DefaultScheme
}

// Get reads addr from public storage. addr may be a public address or a
// full URI. A missing resource yields (nil, nil).
func (a *App) Get(ctx context.Context, addr string) ([]byte, error) {
	pub, err := a.publicAddress(addr)
	if err != nil {
		return nil, apperr.New(apperr.KindInvalidAddr, "get", "", "", err)
	}
	rt, err := a.ensureRuntime()
	if err != nil {
		return nil, err
	}
	data, err := rt.PublicStorage().GetBytes(ctx, pub)
	switch {
	case err == nil:
		return data, nil
	case errors.Is(err, runtime.ErrNotFound):
		return nil, nil
	case errors.Is(err, address.ErrInvalidAddress):
		return nil, apperr.New(apperr.KindInvalidAddr, "get", "", "", err)
	default:
		a.log.Error("public get failed", "address", pub, "error", err)
		return nil, apperr.New(apperr.KindNetwork, "get", "", "", err)
	}
}

// Put writes data at a path relative to the session owner. It reports
// false, without touching the runtime, when there is no session.
func (a *App) Put(ctx context.Context, path string, data []byte) bool {
	sess := a.currentSession()
	if sess == nil {
		a.log.Warn("put without session", "path", path)
		return false
	}
	if err := sess.Storage().PutBytes(ctx, path, data); err != nil {
		a.log.Error("put failed", "owner_id", sess.OwnerID(), "path", path, "error", err)
		return false
	}
	return true
}

// Delete removes a path relative to the session owner, with the same
// contract as Put.
func (a *App) Delete(ctx context.Context, path string) bool {
	sess := a.currentSession()
	if sess == nil {
		a.log.Warn("delete without session", "path", path)
		return false
	}
	if err := sess.Storage().Delete(ctx, path); err != nil {
		a.log.Error("delete failed", "owner_id", sess.OwnerID(), "path", path, "error", err)
		return false
	}
	return true
}

// List returns the URIs under target. A relative path is listed through
// the session when one exists; anything else goes to public storage.
// Only transport failures are returned as errors; everything else yields
// an empty slice.
func (a *App) List(ctx context.Context, target string, opts runtime.ListOptions) ([]string, error) {
	var (
		uris []string
		err  error
	)
	if address.IsRelativePath(target) {
		sess := a.currentSession()
		if sess == nil {
			a.log.Debug("relative list without session", "path", target)
			return []string{}, nil
		}
		uris, err = sess.Storage().List(ctx, target, opts)
	} else {
		var pub string
		if pub, err = a.publicAddress(target); err != nil {
			a.log.Warn("list of malformed address", "address", target, "error", err)
			return []string{}, nil
		}
		var rt runtime.Runtime
		if rt, err = a.ensureRuntime(); err != nil {
			return nil, err
		}
		uris, err = rt.PublicStorage().List(ctx, pub, opts)
	}

	switch {
	case err == nil:
		if uris == nil {
			uris = []string{}
		}
		return uris, nil
	case errors.Is(err, runtime.ErrTransport):
		a.log.Error("list failed", "target", target, "error", err)
		return nil, apperr.New(apperr.KindNetwork, "list", "", "", err)
	default:
		a.log.Debug("list yielded nothing", "target", target, "error", err)
		return []string{}, nil
	}
}

// publicAddress accepts a full URI or an already public address.
func (a *App) publicAddress(addr string) (string, error) {
	if u, err := address.Parse(addr); err == nil {
		return u.Public(), nil
	}
	if _, _, err := address.ParsePublic(addr, a.Scheme()); err != nil {
		return "", err
	}
	return addr, nil
}

func (a *App) Close() error {
	a.mu.Lock()
	rt := a.rt
	a.rt = nil
	a.session = nil
	a.mu.Unlock()
	if rt == nil {
		return nil
	}
	return rt.Close()
}

func kindForRuntime(err error, fallback apperr.Kind) apperr.Kind {
	switch {
	case errors.Is(err, runtime.ErrTransport):
		return apperr.KindNetwork
	case errors.Is(err, runtime.ErrAuthTimeout):
		return apperr.KindAuthTimeout
	case errors.Is(err, runtime.ErrAuthCancelled):
		return apperr.KindAuthCancelled
	case errors.Is(err, runtime.ErrNoSession):
		return apperr.KindUnauthorized
	case errors.Is(err, runtime.ErrNotFound):
		return apperr.KindNotFound
	case errors.Is(err, address.ErrInvalidAddress), errors.Is(err, auth.ErrInvalidFlowURL):
		return apperr.KindInvalidAddr
	case errors.Is(err, auth.ErrInvalidCapability):
		return apperr.KindInvalidInput
	}
	return fallback
}
