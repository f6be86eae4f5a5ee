package client

import (
	"context"

	"eventky/internal/domain/apperr"
	"eventky/internal/domain/auth"
	"eventky/internal/infrastructure/runtime"
)

// AuthFlow is a pending delegated authorization started by the App. The
// session it yields becomes the App's current session.
type AuthFlow struct {
	app  *App
	flow runtime.Flow
	caps auth.Capabilities
}

// URL is what the approving device scans.
func (f *AuthFlow) URL() string {
	return f.flow.AuthorizationURL()
}

func (f *AuthFlow) Capabilities() auth.Capabilities {
	return f.caps
}

// AwaitApproval blocks until the flow is approved, times out or is
// cancelled.
func (f *AuthFlow) AwaitApproval(ctx context.Context) (runtime.Session, error) {
	sess, err := f.flow.AwaitApproval(ctx)
	if err != nil {
		f.app.log.Warn("authorization flow failed", "error", err)
		return nil, apperr.New(kindForRuntime(err, apperr.KindProvider), "await approval", "", "", err)
	}
	f.app.setSession(ctx, sess)
	f.app.log.Info("authorization approved", "owner_id", sess.OwnerID(), "capabilities", sess.Capabilities().String())
	return sess, nil
}

func (f *AuthFlow) Cancel() {
	f.flow.Cancel()
}

// StartAuthFlow asks for caps over relayURL, or over the configured
// relay when relayURL is empty. Nil caps request the application
// namespace.
func (a *App) StartAuthFlow(ctx context.Context, caps auth.Capabilities, relayURL string) (*AuthFlow, error) {
	if caps == nil {
		caps = auth.AppCapabilities(a.cfg.BaseAppPath)
	}
	if err := caps.Validate(); err != nil {
		return nil, apperr.New(apperr.KindInvalidInput, "start auth flow", "", "", err)
	}
	rt, err := a.ensureRuntime()
	if err != nil {
		return nil, err
	}
	if relayURL == "" {
		relayURL = a.cfg.RelayURL
	}
	flow, err := rt.StartAuthFlow(ctx, caps, relayURL)
	if err != nil {
		a.log.Error("start auth flow failed", "error", err)
		return nil, apperr.New(kindForRuntime(err, apperr.KindProvider), "start auth flow", "", "", err)
	}
	a.log.Debug("authorization flow started", "capabilities", caps.String())
	return &AuthFlow{app: a, flow: flow, caps: caps}, nil
}
