// Package network is the runtime that talks to a real homeserver over
// HTTP and to an HTTP relay for delegated authorization.
package network

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/exp/slog"

	"eventky/internal/domain/address"
	"eventky/internal/domain/auth"
	"eventky/internal/domain/id"
	"eventky/internal/infrastructure/relay"
	"eventky/internal/infrastructure/runtime"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	userAgent          = "Eventky-Client/1.0"
	drainLimit         = 64 << 10
)

type Config struct {
	// HomeserverID names the only homeserver this runtime resolves;
	// signup against any other id is rejected.
	HomeserverID  string
	HomeserverURL string
	RelayURL      string
	AuthTimeout   time.Duration
	HTTPTimeout   time.Duration
	Scheme        string
}

type Runtime struct {
	cfg     Config
	baseURL string
	client  *http.Client
	relay   runtime.Relay
	clock   id.Clock
	log     *slog.Logger
}

func New(cfg Config, log *slog.Logger) (*Runtime, error) {
	if _, err := url.ParseRequestURI(cfg.HomeserverURL); err != nil {
		return nil, fmt.Errorf("homeserver url %q: %w", cfg.HomeserverURL, err)
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = defaultHTTPTimeout
	}
	if cfg.Scheme == "" {
		cfg.Scheme = address.DefaultScheme
	}
	client := &http.Client{
		Timeout: cfg.HTTPTimeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			MaxIdleConnsPerHost: 10,
		},
	}
	rt := &Runtime{
		cfg:     cfg,
		baseURL: strings.TrimRight(cfg.HomeserverURL, "/"),
		client:  client,
		clock:   id.RealClock{},
		log:     log.With("component", "network_runtime"),
	}
	// relay long-polls outlive the request timeout
	rt.relay = relay.NewClient(cfg.RelayURL, &http.Client{Transport: client.Transport}, log)
	return rt, nil
}

func (rt *Runtime) Close() error {
	rt.client.CloseIdleConnections()
	return nil
}

func (rt *Runtime) Signer(kp *auth.Keypair) runtime.Signer {
	return &signer{rt: rt, kp: kp}
}

func (rt *Runtime) PublicStorage() runtime.PublicStorage {
	return &publicStorage{rt: rt}
}

func (rt *Runtime) StartAuthFlow(_ context.Context, caps auth.Capabilities, relayURL string) (runtime.Flow, error) {
	if relayURL == "" {
		relayURL = rt.cfg.RelayURL
	}
	req, err := auth.NewFlowRequest(relayURL, caps)
	if err != nil {
		return nil, err
	}
	rel := rt.relay
	if relayURL != rt.cfg.RelayURL {
		rel = relay.NewClient(relayURL, &http.Client{Transport: rt.client.Transport}, rt.log)
	}
	return runtime.NewFlow(req, rel, rt.cfg.AuthTimeout, rt.exchange), nil
}

func (rt *Runtime) exchange(ctx context.Context, token *auth.Token) (runtime.Session, error) {
	caps, err := auth.ParseCapabilities(token.Capabilities)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", runtime.ErrRejected, err)
	}
	sess, err := rt.openSession(ctx, "/session", token, caps)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fmt.Errorf("%w: %s is not registered", runtime.ErrRejected, token.OwnerID)
	}
	return sess, nil
}

// openSession posts token to endpoint and keeps the session cookie the
// homeserver sets. A 401 or 404 answer yields (nil, nil).
func (rt *Runtime) openSession(ctx context.Context, endpoint string, token *auth.Token, caps auth.Capabilities) (*session, error) {
	body, err := token.Marshal()
	if err != nil {
		return nil, err
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client := &http.Client{Timeout: rt.client.Timeout, Transport: rt.client.Transport, Jar: jar}

	resp, err := rt.do(ctx, client, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusUnauthorized:
		return nil, nil
	case resp.StatusCode >= 300:
		return nil, statusError(resp)
	}
	rt.log.Debug("session opened", "owner_id", token.OwnerID, "capabilities", token.Capabilities)
	return &session{rt: rt, client: client, ownerID: token.OwnerID, caps: caps}, nil
}

func (rt *Runtime) do(ctx context.Context, client *http.Client, method, path string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rt.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/octet-stream")
	}

	rt.log.Debug("sending request", "method", method, "url", req.URL.String())

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", runtime.ErrTransport, method, path, err)
	}
	return resp, nil
}

func (rt *Runtime) list(ctx context.Context, client *http.Client, ownerID, path string, opts runtime.ListOptions) ([]string, error) {
	q := url.Values{}
	q.Set("list", "")
	if opts.Cursor != "" {
		q.Set("cursor", opts.Cursor)
	}
	if opts.Reverse {
		q.Set("reverse", "true")
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}

	resp, err := rt.do(ctx, client, http.MethodGet, "/"+ownerID+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	defer drain(resp)
	if resp.StatusCode >= 300 {
		return nil, statusError(resp)
	}

	body, err := readBody(resp, "read listing")
	if err != nil {
		return nil, err
	}
	out := []string{}
	for _, line := range strings.Split(string(body), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out, nil
}

// statusError maps a homeserver status code onto the runtime errors.
func statusError(resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	detail := strings.TrimSpace(string(msg))
	var base error
	switch resp.StatusCode {
	case http.StatusNotFound:
		base = runtime.ErrNotFound
	case http.StatusUnauthorized:
		base = runtime.ErrNoSession
	case http.StatusForbidden:
		base = runtime.ErrForbidden
	case http.StatusBadRequest:
		base = runtime.ErrInvalidPath
	default:
		if resp.StatusCode >= 500 {
			base = runtime.ErrTransport
		} else {
			base = runtime.ErrRejected
		}
	}
	if detail == "" {
		return fmt.Errorf("%w: status %d", base, resp.StatusCode)
	}
	return fmt.Errorf("%w: status %d: %s", base, resp.StatusCode, detail)
}

// readBody reads at most runtime.MaxBodySize bytes. A longer body is an
// error rather than a silently truncated value.
func readBody(resp *http.Response, op string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(resp.Body, runtime.MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", runtime.ErrTransport, op, err)
	}
	if len(data) > runtime.MaxBodySize {
		return nil, fmt.Errorf("%w: %s: %w", runtime.ErrTransport, op, runtime.ErrTooLarge)
	}
	return data, nil
}

// drain discards a bounded tail so an oversized body cannot stall the
// caller; past that the connection is simply not reused.
func drain(resp *http.Response) {
	_, _ = io.CopyN(io.Discard, resp.Body, drainLimit)
	resp.Body.Close()
}

type signer struct {
	rt *Runtime
	kp *auth.Keypair
}

func (s *signer) rootToken() (*auth.Token, error) {
	return auth.IssueToken(s.kp, auth.RootCapabilities(), s.rt.clock.Now())
}

func (s *signer) Signup(ctx context.Context, homeserverID, inviteToken string) (runtime.Session, error) {
	if s.rt.cfg.HomeserverID != "" && homeserverID != s.rt.cfg.HomeserverID {
		return nil, fmt.Errorf("%w: cannot resolve homeserver %q", runtime.ErrRejected, homeserverID)
	}
	token, err := s.rootToken()
	if err != nil {
		return nil, err
	}
	endpoint := "/signup"
	if inviteToken != "" {
		endpoint += "?signup_token=" + url.QueryEscape(inviteToken)
	}
	sess, err := s.rt.openSession(ctx, endpoint, token, auth.RootCapabilities())
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fmt.Errorf("%w: signup refused", runtime.ErrRejected)
	}
	s.rt.log.Info("user signed up", "owner_id", token.OwnerID)
	return sess, nil
}

func (s *signer) Signin(ctx context.Context) (runtime.Session, error) {
	token, err := s.rootToken()
	if err != nil {
		return nil, err
	}
	sess, err := s.rt.openSession(ctx, "/session", token, auth.RootCapabilities())
	if err != nil || sess == nil {
		// untyped nil, not a nil *session
		return nil, err
	}
	return sess, nil
}

func (s *signer) Approve(ctx context.Context, flowURL string) error {
	req, err := auth.ParseFlowURL(flowURL)
	if err != nil {
		return err
	}
	rel := s.rt.relay
	if req.Relay != s.rt.cfg.RelayURL {
		rel = relay.NewClient(req.Relay, &http.Client{Transport: s.rt.client.Transport}, s.rt.log)
	}
	return runtime.SendApproval(ctx, s.kp, req, rel, s.rt.clock.Now())
}

type session struct {
	rt      *Runtime
	client  *http.Client
	ownerID string
	caps    auth.Capabilities
}

func (s *session) OwnerID() string                 { return s.ownerID }
func (s *session) Capabilities() auth.Capabilities { return s.caps }
func (s *session) Storage() runtime.SessionStorage { return s }

func (s *session) Signout(ctx context.Context) error {
	resp, err := s.rt.do(ctx, s.client, http.MethodDelete, "/session", nil)
	if err != nil {
		return err
	}
	defer drain(resp)
	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusUnauthorized {
		return statusError(resp)
	}
	return nil
}

func (s *session) check(path string, perm auth.Permission) error {
	if err := runtime.ValidatePath(path); err != nil {
		return err
	}
	if !s.caps.Covers(path, perm) {
		return fmt.Errorf("%w: %s", runtime.ErrForbidden, path)
	}
	return nil
}

func (s *session) PutBytes(ctx context.Context, path string, data []byte) error {
	if err := s.check(path, auth.PermWrite); err != nil {
		return err
	}
	if len(data) > runtime.MaxBodySize {
		return fmt.Errorf("%w: %s", runtime.ErrTooLarge, path)
	}
	if data == nil {
		data = []byte{}
	}
	return s.send(ctx, http.MethodPut, path, data)
}

func (s *session) Delete(ctx context.Context, path string) error {
	if err := s.check(path, auth.PermWrite); err != nil {
		return err
	}
	return s.send(ctx, http.MethodDelete, path, nil)
}

func (s *session) send(ctx context.Context, method, path string, body []byte) error {
	resp, err := s.rt.do(ctx, s.client, method, "/"+s.ownerID+path, body)
	if err != nil {
		return err
	}
	defer drain(resp)
	if resp.StatusCode >= 300 {
		return statusError(resp)
	}
	return nil
}

func (s *session) List(ctx context.Context, path string, opts runtime.ListOptions) ([]string, error) {
	if !s.caps.Covers(path, auth.PermRead) {
		return nil, fmt.Errorf("%w: %s", runtime.ErrForbidden, path)
	}
	return s.rt.list(ctx, s.client, s.ownerID, path, opts)
}

type publicStorage struct {
	rt *Runtime
}

func (p *publicStorage) GetBytes(ctx context.Context, addr string) ([]byte, error) {
	owner, path, err := address.ParsePublic(addr, p.rt.cfg.Scheme)
	if err != nil {
		return nil, err
	}
	resp, err := p.rt.do(ctx, p.rt.client, http.MethodGet, "/"+owner+path, nil)
	if err != nil {
		return nil, err
	}
	defer drain(resp)
	if resp.StatusCode >= 300 {
		return nil, statusError(resp)
	}
	return readBody(resp, "read body")
}

func (p *publicStorage) List(ctx context.Context, addr string, opts runtime.ListOptions) ([]string, error) {
	owner, path, err := address.ParsePublic(addr, p.rt.cfg.Scheme)
	if err != nil {
		return nil, err
	}
	return p.rt.list(ctx, p.rt.client, owner, path, opts)
}
