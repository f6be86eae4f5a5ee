// Package local is the isolated runtime: an in-process homeserver
// backed by sqlite plus an in-memory relay. Nothing leaves the process.
package local

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"eventky/internal/domain/address"
	"eventky/internal/domain/auth"
	"eventky/internal/domain/id"
	"eventky/internal/infrastructure/relay"
	"eventky/internal/infrastructure/runtime"
	"eventky/internal/infrastructure/storage/sqlite"
)

// DefaultRelayURL is advertised in authorization URLs of the local runtime.
const DefaultRelayURL = "local://relay/"

// Store is the persistence the local homeserver needs.
type Store interface {
	CreateUser(ctx context.Context, ownerID string, now time.Time) error
	UserExists(ctx context.Context, ownerID string) (bool, error)
	CreateSession(ctx context.Context, sess sqlite.Session) error
	GetSession(ctx context.Context, id string) (*sqlite.Session, error)
	DeleteSession(ctx context.Context, id string) error
	PutEntry(ctx context.Context, ownerID, path string, data []byte, now time.Time) error
	GetEntry(ctx context.Context, ownerID, path string) ([]byte, error)
	DeleteEntry(ctx context.Context, ownerID, path string) error
	ListEntries(ctx context.Context, ownerID string, q sqlite.ListQuery) ([]string, error)
	Close() error
}

type Config struct {
	// DBPath is a sqlite file, or ":memory:".
	DBPath       string
	HomeserverID string
	// InviteToken, when set, must accompany every signup.
	InviteToken  string
	AuthTimeout  time.Duration
	Scheme       string
}

type Runtime struct {
	store  Store
	relay  *relay.MemoryRelay
	cfg    Config
	clock  id.Clock
	log    *slog.Logger
	public *publicStorage
}

// New opens the sqlite store named in cfg and builds a Runtime on it.
func New(cfg Config, log *slog.Logger) (*Runtime, error) {
	if cfg.DBPath == "" {
		cfg.DBPath = ":memory:"
	}
	store, err := sqlite.New(cfg.DBPath, log)
	if err != nil {
		return nil, err
	}
	return NewWithStore(store, cfg, id.RealClock{}, log), nil
}

func NewWithStore(store Store, cfg Config, clock id.Clock, log *slog.Logger) *Runtime {
	if cfg.Scheme == "" {
		cfg.Scheme = address.DefaultScheme
	}
	rt := &Runtime{
		store: store,
		relay: relay.NewMemoryRelay(),
		cfg:   cfg,
		clock: clock,
		log:   log.With("component", "local_runtime"),
	}
	rt.public = &publicStorage{rt: rt}
	return rt
}

func (rt *Runtime) Close() error {
	return rt.store.Close()
}

// Relay exposes the in-process relay so it can be served over HTTP.
func (rt *Runtime) Relay() *relay.MemoryRelay {
	return rt.relay
}

func (rt *Runtime) Signer(kp *auth.Keypair) runtime.Signer {
	return &signer{rt: rt, kp: kp}
}

func (rt *Runtime) PublicStorage() runtime.PublicStorage {
	return rt.public
}

func (rt *Runtime) StartAuthFlow(_ context.Context, caps auth.Capabilities, relayURL string) (runtime.Flow, error) {
	if relayURL == "" {
		relayURL = DefaultRelayURL
	}
	req, err := auth.NewFlowRequest(relayURL, caps)
	if err != nil {
		return nil, err
	}
	return runtime.NewFlow(req, rt.relay, rt.cfg.AuthTimeout, rt.exchange), nil
}

// exchange opens a session for a token approved on another device.
func (rt *Runtime) exchange(ctx context.Context, token *auth.Token) (runtime.Session, error) {
	caps, err := token.Verify(rt.clock.Now(), auth.DefaultTokenMaxAge)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", runtime.ErrRejected, err)
	}
	exists, err := rt.store.UserExists(ctx, token.OwnerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s is not registered", runtime.ErrRejected, token.OwnerID)
	}
	return rt.openSession(ctx, token.OwnerID, caps)
}

func (rt *Runtime) openSession(ctx context.Context, ownerID string, caps auth.Capabilities) (*session, error) {
	rec := sqlite.Session{
		ID:           uuid.New().String(),
		OwnerID:      ownerID,
		Capabilities: caps.String(),
		CreatedAt:    rt.clock.Now(),
	}
	if err := rt.store.CreateSession(ctx, rec); err != nil {
		return nil, err
	}
	rt.log.Debug("session opened", "owner_id", ownerID, "capabilities", rec.Capabilities)
	return &session{rt: rt, id: rec.ID, ownerID: ownerID, caps: caps}, nil
}

type signer struct {
	rt *Runtime
	kp *auth.Keypair
}

func (s *signer) Signup(ctx context.Context, homeserverID, inviteToken string) (runtime.Session, error) {
	if s.rt.cfg.HomeserverID != "" && homeserverID != s.rt.cfg.HomeserverID {
		return nil, fmt.Errorf("%w: unknown homeserver %q", runtime.ErrRejected, homeserverID)
	}
	if s.rt.cfg.InviteToken != "" && inviteToken != s.rt.cfg.InviteToken {
		return nil, fmt.Errorf("%w: invalid invite token", runtime.ErrRejected)
	}
	owner := s.kp.OwnerID()
	if err := s.rt.store.CreateUser(ctx, owner, s.rt.clock.Now()); err != nil {
		return nil, err
	}
	s.rt.log.Info("user signed up", "owner_id", owner)
	return s.rt.openSession(ctx, owner, auth.RootCapabilities())
}

func (s *signer) Signin(ctx context.Context) (runtime.Session, error) {
	owner := s.kp.OwnerID()
	exists, err := s.rt.store.UserExists(ctx, owner)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	return s.rt.openSession(ctx, owner, auth.RootCapabilities())
}

func (s *signer) Approve(ctx context.Context, flowURL string) error {
	req, err := auth.ParseFlowURL(flowURL)
	if err != nil {
		return err
	}
	return runtime.SendApproval(ctx, s.kp, req, s.rt.relay, s.rt.clock.Now())
}

type session struct {
	rt      *Runtime
	id      string
	ownerID string
	caps    auth.Capabilities
}

func (s *session) OwnerID() string { return s.ownerID }
func (s *session) Capabilities() auth.Capabilities { return s.caps }
func (s *session) Storage() runtime.SessionStorage { return s }

func (s *session) Signout(ctx context.Context) error {
	return s.rt.store.DeleteSession(ctx, s.id)
}

// authorize checks the session is still live and grants perm on path.
func (s *session) authorize(ctx context.Context, path string, perm auth.Permission) error {
	if _, err := s.rt.store.GetSession(ctx, s.id); err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return runtime.ErrNoSession
		}
		return err
	}
	if !s.caps.Covers(path, perm) {
		return fmt.Errorf("%w: %s", runtime.ErrForbidden, path)
	}
	return nil
}

func (s *session) PutBytes(ctx context.Context, path string, data []byte) error {
	if err := runtime.ValidatePath(path); err != nil {
		return err
	}
	if err := s.authorize(ctx, path, auth.PermWrite); err != nil {
		return err
	}
	if len(data) > runtime.MaxBodySize {
		return fmt.Errorf("%w: %s", runtime.ErrTooLarge, path)
	}
	if data == nil {
		data = []byte{}
	}
	return s.rt.store.PutEntry(ctx, s.ownerID, path, data, s.rt.clock.Now())
}

func (s *session) Delete(ctx context.Context, path string) error {
	if err := runtime.ValidatePath(path); err != nil {
		return err
	}
	if err := s.authorize(ctx, path, auth.PermWrite); err != nil {
		return err
	}
	err := s.rt.store.DeleteEntry(ctx, s.ownerID, path)
	if errors.Is(err, sqlite.ErrNotFound) {
		return runtime.ErrNotFound
	}
	return err
}

func (s *session) List(ctx context.Context, path string, opts runtime.ListOptions) ([]string, error) {
	if err := s.authorize(ctx, path, auth.PermRead); err != nil {
		return nil, err
	}
	return s.rt.list(ctx, s.ownerID, path, opts)
}

func (rt *Runtime) list(ctx context.Context, ownerID, prefix string, opts runtime.ListOptions) ([]string, error) {
	q := sqlite.ListQuery{Prefix: prefix, Reverse: opts.Reverse, Limit: opts.Limit}
	if opts.Cursor != "" {
		q.Cursor = cursorPath(opts.Cursor)
	}
	paths, err := rt.store.ListEntries(ctx, ownerID, q)
	if err != nil {
		return nil, err
	}
	uris := make([]string, len(paths))
	for i, p := range paths {
		uris[i] = address.Compose(rt.cfg.Scheme, ownerID, p)
	}
	return uris, nil
}

// cursorPath accepts either a bare path or a full URI as the cursor.
func cursorPath(cursor string) string {
	if u, err := address.Parse(cursor); err == nil {
		return u.Path
	}
	return cursor
}

type publicStorage struct {
	rt *Runtime
}

func (p *publicStorage) GetBytes(ctx context.Context, addr string) ([]byte, error) {
	owner, path, err := address.ParsePublic(addr, p.rt.cfg.Scheme)
	if err != nil {
		return nil, err
	}
	data, err := p.rt.store.GetEntry(ctx, owner, path)
	if errors.Is(err, sqlite.ErrNotFound) {
		return nil, runtime.ErrNotFound
	}
	return data, err
}

func (p *publicStorage) List(ctx context.Context, addr string, opts runtime.ListOptions) ([]string, error) {
	owner, path, err := address.ParsePublic(addr, p.rt.cfg.Scheme)
	if err != nil {
		return nil, err
	}
	return p.rt.list(ctx, owner, path, opts)
}
