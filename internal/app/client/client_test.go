package client

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"eventky/internal/app/client/config"
	"eventky/internal/domain/address"
	"eventky/internal/domain/apperr"
	"eventky/internal/domain/auth"
	"eventky/internal/infrastructure/runtime"
)

type mockRuntime struct {
	mock.Mock
}

func (m *mockRuntime) Signer(kp *auth.Keypair) runtime.Signer {
	return m.Called(kp).Get(0).(runtime.Signer)
}

func (m *mockRuntime) PublicStorage() runtime.PublicStorage {
	return m.Called().Get(0).(runtime.PublicStorage)
}

func (m *mockRuntime) StartAuthFlow(ctx context.Context, caps auth.Capabilities, relayURL string) (runtime.Flow, error) {
	args := m.Called(ctx, caps, relayURL)
	flow, _ := args.Get(0).(runtime.Flow)
	return flow, args.Error(1)
}

func (m *mockRuntime) Close() error {
	return m.Called().Error(0)
}

type mockPublicStorage struct {
	mock.Mock
}

func (m *mockPublicStorage) GetBytes(ctx context.Context, addr string) ([]byte, error) {
	args := m.Called(ctx, addr)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *mockPublicStorage) List(ctx context.Context, addr string, opts runtime.ListOptions) ([]string, error) {
	args := m.Called(ctx, addr, opts)
	uris, _ := args.Get(0).([]string)
	return uris, args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *config.Config {
	return &config.Config{
		Env:          config.EnvLocal,
		UseTestnet:   true,
		HomeserverID: "test-hs",
		RelayURL:     "http://relay.test/link/",
		BaseAppPath:  "/pub/app/",
		AuthTimeout:  2 * time.Second,
		HTTPTimeout:  time.Second,
	}
}

func newLocalApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	app := New(cfg, testLogger())
	require.NoError(t, app.Initialize(runtime.ModeLocal))
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func newKeypair(t *testing.T) *auth.Keypair {
	t.Helper()
	kp, err := auth.GenerateKeypair()
	require.NoError(t, err)
	return kp
}

func TestApp_WriteRequiresSession(t *testing.T) {
	rt := &mockRuntime{}
	app := New(testConfig(), testLogger(), WithRuntime(rt))
	require.NoError(t, app.Initialize(runtime.ModeLocal))

	ctx := context.Background()
	assert.False(t, app.Put(ctx, "/pub/app/calendar/0000000000001", []byte("{}")))
	assert.False(t, app.Delete(ctx, "/pub/app/calendar/0000000000001"))
	assert.False(t, app.IsAuthenticated())
	assert.Empty(t, app.OwnerID())
	assert.Nil(t, app.Session())

	rt.AssertNotCalled(t, "Signer", mock.Anything)
	rt.AssertNotCalled(t, "PublicStorage")
	rt.AssertExpectations(t)
}

func TestApp_InitializeIdempotent(t *testing.T) {
	calls := 0
	rt := &mockRuntime{}
	app := New(testConfig(), testLogger(), WithRuntimeFactory(func(runtime.Mode) (runtime.Runtime, error) {
		calls++
		return rt, nil
	}))

	require.NoError(t, app.Initialize(runtime.ModeLocal))
	require.NoError(t, app.Initialize(runtime.ModeNetworked))
	got, err := app.Runtime()
	require.NoError(t, err)
	assert.Same(t, rt, got)
	assert.Equal(t, 1, calls)
}

func TestApp_SessionLifecycle(t *testing.T) {
	app := newLocalApp(t, testConfig())
	ctx := context.Background()
	kp := newKeypair(t)

	sess, err := app.Signin(ctx, kp)
	require.NoError(t, err)
	assert.Nil(t, sess)

	sess, err = app.Signup(ctx, kp, "")
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.True(t, app.IsAuthenticated())
	assert.Equal(t, kp.OwnerID(), app.OwnerID())
	assert.Equal(t, auth.RootCapabilities(), app.Session().Capabilities)

	path := "/pub/app/calendar/0000000000001"
	require.True(t, app.Put(ctx, path, []byte(`{"name":"Team Events"}`)))

	uri := address.Compose(address.DefaultScheme, kp.OwnerID(), path)
	data, err := app.Get(ctx, uri)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Team Events"}`, string(data))

	pub, err := address.ToPublicAddress(uri)
	require.NoError(t, err)
	data, err = app.Get(ctx, pub)
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	listing, err := app.List(ctx, "/pub/app/calendar/", runtime.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{uri}, listing)

	listing, err = app.List(ctx, address.Compose(address.DefaultScheme, kp.OwnerID(), "/pub/app/calendar/"), runtime.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{uri}, listing)

	require.True(t, app.Delete(ctx, path))
	data, err = app.Get(ctx, uri)
	require.NoError(t, err)
	assert.Nil(t, data)
	assert.False(t, app.Delete(ctx, path))

	require.NoError(t, app.Signout(ctx))
	assert.False(t, app.IsAuthenticated())
	assert.False(t, app.Put(ctx, path, []byte("{}")))

	listing, err = app.List(ctx, "/pub/app/calendar/", runtime.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, listing)

	sess, err = app.Signin(ctx, kp)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.True(t, app.Put(ctx, path, []byte("{}")))
}

func TestApp_SignupRejected(t *testing.T) {
	cfg := testConfig()
	cfg.InviteToken = "invite"
	app := newLocalApp(t, cfg)

	_, err := app.Signup(context.Background(), newKeypair(t), "nope")
	require.Error(t, err)
	assert.Equal(t, apperr.KindProvider, apperr.KindOf(err))
	assert.False(t, app.IsAuthenticated())
}

func TestApp_SignupOrSignin(t *testing.T) {
	app := newLocalApp(t, testConfig())
	ctx := context.Background()
	kp := newKeypair(t)

	first, err := app.SignupOrSignin(ctx, kp, "")
	require.NoError(t, err)
	second, err := app.SignupOrSignin(ctx, kp, "")
	require.NoError(t, err)
	assert.Equal(t, first.OwnerID(), second.OwnerID())
}

func TestApp_GetMalformedAddress(t *testing.T) {
	app := newLocalApp(t, testConfig())
	_, err := app.Get(context.Background(), "not an address")
	assert.Equal(t, apperr.KindInvalidAddr, apperr.KindOf(err))
}

func TestApp_ListTransportFailure(t *testing.T) {
	public := &mockPublicStorage{}
	public.On("List", mock.Anything, "pubkyowner/pub/app/event/", runtime.ListOptions{Limit: 5}).
		Return(nil, runtime.ErrTransport)
	public.On("List", mock.Anything, "pubkyowner/pub/app/calendar/", runtime.ListOptions{}).
		Return(nil, runtime.ErrNotFound)
	public.On("GetBytes", mock.Anything, "pubkyowner/pub/app/event/0000000000001").
		Return(nil, runtime.ErrTransport)
	rt := &mockRuntime{}
	rt.On("PublicStorage").Return(public)

	app := New(testConfig(), testLogger(), WithRuntime(rt))
	ctx := context.Background()

	_, err := app.List(ctx, "pubky://owner/pub/app/event/", runtime.ListOptions{Limit: 5})
	assert.Equal(t, apperr.KindNetwork, apperr.KindOf(err))

	uris, err := app.List(ctx, "pubkyowner/pub/app/calendar/", runtime.ListOptions{})
	require.NoError(t, err)
	assert.NotNil(t, uris)
	assert.Empty(t, uris)

	_, err = app.Get(ctx, "pubky://owner/pub/app/event/0000000000001")
	assert.Equal(t, apperr.KindNetwork, apperr.KindOf(err))

	public.AssertExpectations(t)
}

func TestApp_AuthFlowApproved(t *testing.T) {
	app := newLocalApp(t, testConfig())
	ctx := context.Background()
	owner := newKeypair(t)

	_, err := app.Signup(ctx, owner, "")
	require.NoError(t, err)
	require.NoError(t, app.Signout(ctx))

	flow, err := app.StartAuthFlow(ctx, nil, "")
	require.NoError(t, err)
	assert.Equal(t, auth.AppCapabilities("/pub/app/"), flow.Capabilities())

	req, err := auth.ParseFlowURL(flow.URL())
	require.NoError(t, err)
	assert.Equal(t, "http://relay.test/link/", req.Relay)

	go func() {
		_ = app.Approve(context.Background(), owner, flow.URL())
	}()

	sess, err := flow.AwaitApproval(ctx)
	require.NoError(t, err)
	assert.Equal(t, owner.OwnerID(), sess.OwnerID())
	assert.Equal(t, owner.OwnerID(), app.OwnerID())

	assert.True(t, app.Put(ctx, "/pub/app/event/0000000000001", []byte("{}")))
	assert.False(t, app.Put(ctx, "/pub/other/event/0000000000001", []byte("{}")))
}

func TestApp_AuthFlowTimeoutAndCancel(t *testing.T) {
	cfg := testConfig()
	cfg.AuthTimeout = 30 * time.Millisecond
	app := newLocalApp(t, cfg)
	ctx := context.Background()

	flow, err := app.StartAuthFlow(ctx, nil, "")
	require.NoError(t, err)
	_, err = flow.AwaitApproval(ctx)
	assert.Equal(t, apperr.KindAuthTimeout, apperr.KindOf(err))

	flow, err = app.StartAuthFlow(ctx, nil, "")
	require.NoError(t, err)
	flow.Cancel()
	_, err = flow.AwaitApproval(ctx)
	assert.Equal(t, apperr.KindAuthCancelled, apperr.KindOf(err))
	assert.False(t, app.IsAuthenticated())
}

func TestApp_StartAuthFlowInvalidCapabilities(t *testing.T) {
	app := newLocalApp(t, testConfig())
	_, err := app.StartAuthFlow(context.Background(), auth.Capabilities{{PathPrefix: "pub", Permission: auth.PermRead}}, "")
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
}
