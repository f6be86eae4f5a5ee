// Package apitest builds a client facade on the in-memory local runtime
// for gateway handler tests.
package apitest

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"eventky/internal/app/client"
	"eventky/internal/app/client/config"
	"eventky/internal/domain/auth"
	"eventky/internal/infrastructure/runtime/local"
)

const (
	BaseAppPath  = "/pub/eventky.app/"
	HomeserverID = "test-hs"
)

func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func Config() *config.Config {
	return &config.Config{
		Env:          config.EnvLocal,
		UseTestnet:   true,
		HomeserverID: HomeserverID,
		RelayURL:     "http://relay.test/link/",
		BaseAppPath:  BaseAppPath,
		AuthTimeout:  2 * time.Second,
		HTTPTimeout:  time.Second,
	}
}

// NewApp returns an initialized facade and its runtime.
func NewApp(t *testing.T) (*client.App, *local.Runtime) {
	t.Helper()
	rt, err := local.New(local.Config{HomeserverID: HomeserverID, AuthTimeout: 2 * time.Second}, Logger())
	require.NoError(t, err)

	app := client.New(Config(), Logger(), client.WithRuntime(rt))
	require.NoError(t, app.Initialize(Config().Mode()))
	t.Cleanup(func() { _ = app.Close() })
	return app, rt
}

// SignUp registers a fresh keypair and makes its session current.
func SignUp(t *testing.T, app *client.App) *auth.Keypair {
	t.Helper()
	kp, err := auth.GenerateKeypair()
	require.NoError(t, err)
	_, err = app.Signup(context.Background(), kp, "")
	require.NoError(t, err)
	return kp
}
