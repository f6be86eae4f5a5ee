// Package types carries what every command needs through the cobra
// command context.
package types

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"golang.org/x/exp/slog"

	"eventky/internal/app/client"
	"eventky/internal/app/client/config"
	"eventky/internal/domain/apperr"
	"eventky/internal/domain/auth"
	"eventky/internal/domain/calendar"
	"eventky/internal/domain/event"
	"eventky/internal/domain/file"
	"eventky/internal/domain/id"
	"eventky/internal/domain/resource"
	"eventky/internal/infrastructure/index"
)

type contextKey string

const envKey contextKey = "env"

type Env struct {
	Cfg  *config.Config
	Log  *slog.Logger
	App  *client.App
	JSON bool
	Out  io.Writer
}

func WithEnv(ctx context.Context, env *Env) context.Context {
	return context.WithValue(ctx, envKey, env)
}

func FromContext(ctx context.Context) (*Env, error) {
	env, ok := ctx.Value(envKey).(*Env)
	if !ok || env == nil {
		return nil, errors.New("client is not initialized")
	}
	return env, nil
}

// Keypair loads the stored identity.
func (e *Env) Keypair() (*auth.Keypair, error) {
	kp, err := client.LoadKeypair(e.Cfg.SecretPath(), e.Cfg.KeyPassphrase)
	switch {
	case errors.Is(err, client.ErrNoIdentity):
		return nil, fmt.Errorf("no identity in %s, run `eventky init` first", e.Cfg.DataDir)
	case errors.Is(err, client.ErrPassphraseRequired):
		return nil, fmt.Errorf("identity key is sealed, set KEY_PASSPHRASE")
	}
	return kp, err
}

// SignIn resumes the stored identity's session.
func (e *Env) SignIn(ctx context.Context) (*auth.Keypair, error) {
	kp, err := e.Keypair()
	if err != nil {
		return nil, err
	}
	sess, err := e.App.Signin(ctx, kp)
	if err != nil {
		return nil, e.Fail(err)
	}
	if sess == nil {
		return nil, fmt.Errorf("%s is not registered, run `eventky auth signup` first", kp.OwnerID())
	}
	return kp, nil
}

type Services struct {
	Files     *file.Service
	Calendars *calendar.Service
	Events    *event.Service
	Index     *index.Client
}

func (e *Env) Services() *Services {
	layout := resource.NewLayout(e.Cfg.BaseAppPath)
	ids := id.NewGenerator(nil)
	files := file.NewService(e.App, layout, ids, e.Log)
	return &Services{
		Files:     files,
		Calendars: calendar.NewService(e.App, layout, files, ids, e.Log),
		Events:    event.NewService(e.App, layout, files, ids, e.Log),
		Index:     index.NewClient(e.Cfg.IndexServiceURL, e.Cfg.HTTPTimeout, e.Log),
	}
}

// Fail logs err in full and returns the message meant for the user.
func (e *Env) Fail(err error) error {
	e.Log.Debug("command failed", "kind", apperr.KindOf(err), "error", err)
	if apperr.KindOf(err) == apperr.KindUnknown {
		return err
	}
	return errors.New(apperr.UserMessage(err))
}

// Print writes v as indented JSON with --json, and runs text otherwise.
func (e *Env) Print(v any, text func(w io.Writer)) error {
	if e.JSON {
		enc := json.NewEncoder(e.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(e.Out)
	return nil
}

func (e *Env) Success(format string, args ...any) {
	if e.JSON {
		return
	}
	_, _ = color.New(color.FgGreen).Fprintf(e.Out, "✓ "+format+"\n", args...)
}

// ReadUpload loads the file at path for upload. An empty path yields nil.
func ReadUpload(path string) (*file.Upload, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return &file.Upload{Name: filepath.Base(path), Data: data}, nil
}

// Owner is the owner named by flag, or the stored identity's.
func (e *Env) Owner(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	kp, err := e.Keypair()
	if err != nil {
		return "", err
	}
	return kp.OwnerID(), nil
}
