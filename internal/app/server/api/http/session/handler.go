package session

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/exp/slog"

	"eventky/internal/app/client"
	"eventky/internal/app/server/api/http/apierr"
	"eventky/internal/domain/apperr"
	"eventky/internal/domain/auth"
	"eventky/internal/infrastructure/runtime"
)

const (
	qrSize = 256
	// finished flows outlive a few poll windows so a slow poller still
	// sees the outcome
	flowRetainPolls = 3
)

type Handler struct {
	app        *client.App
	flows      *flows
	flowWait   time.Duration
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(app *client.App, flowWait time.Duration, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		app:        app,
		flows:      newFlows(flowRetainPolls * flowWait),
		flowWait:   flowWait,
		log:        log.With("component", "session_handler"),
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.signupOp(), h.signup)
	huma.Register(api, h.signinOp(), h.signin)
	huma.Register(api, h.signoutOp(), h.signout)
	huma.Register(api, h.sessionOp(), h.session)

	huma.Register(api, h.startFlowOp(), h.startFlow)
	huma.Register(api, h.awaitFlowOp(), h.awaitFlow)
	huma.Register(api, h.flowQROp(), h.flowQR)
	huma.Register(api, h.cancelFlowOp(), h.cancelFlow)
}

func (h *Handler) signup(ctx context.Context, input *signupInput) (*sessionOutput, error) {
	kp, err := auth.KeypairFromHex(input.Body.SecretKey)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity(apperr.Message(apperr.KindInvalidInput))
	}

	sess, err := h.app.Signup(ctx, kp, input.Body.InviteToken)
	if err != nil {
		return nil, apierr.From(err)
	}
	return &sessionOutput{Body: sessionBody(sess)}, nil
}

func (h *Handler) signin(ctx context.Context, input *signinInput) (*sessionOutput, error) {
	kp, err := auth.KeypairFromHex(input.Body.SecretKey)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity(apperr.Message(apperr.KindInvalidInput))
	}

	sess, err := h.app.Signin(ctx, kp)
	if err != nil {
		return nil, apierr.From(err)
	}
	if sess == nil {
		return nil, huma.Error404NotFound("This key is not registered with the homeserver.")
	}
	return &sessionOutput{Body: sessionBody(sess)}, nil
}

func (h *Handler) signout(ctx context.Context, _ *struct{}) (*emptyOutput, error) {
	if err := h.app.Signout(ctx); err != nil {
		return nil, apierr.From(err)
	}
	return &emptyOutput{}, nil
}

func (h *Handler) session(_ context.Context, _ *struct{}) (*sessionOutput, error) {
	info := h.app.Session()
	if info == nil {
		return &sessionOutput{Body: sessionResponse{}}, nil
	}
	return &sessionOutput{Body: sessionResponse{
		Authenticated: true,
		OwnerID:       info.OwnerID,
		Capabilities:  info.Capabilities.String(),
	}}, nil
}

func (h *Handler) startFlow(ctx context.Context, input *startFlowInput) (*flowOutput, error) {
	var caps auth.Capabilities
	if input.Body.Capabilities != "" {
		parsed, err := auth.ParseCapabilities(input.Body.Capabilities)
		if err != nil {
			return nil, huma.Error422UnprocessableEntity(apperr.Message(apperr.KindInvalidInput))
		}
		caps = parsed
	}

	flow, err := h.app.StartAuthFlow(ctx, caps, input.Body.RelayURL)
	if err != nil {
		return nil, apierr.From(err)
	}
	id := h.flows.add(flow)
	h.log.Debug("flow registered", "flow_id", id)

	return &flowOutput{Body: flowResponse{ID: id, URL: flow.URL(), Status: "pending"}}, nil
}

// awaitFlow waits at most flowWait. A finished flow is forgotten once
// its outcome has been reported.
func (h *Handler) awaitFlow(ctx context.Context, input *flowIDInput) (*flowOutput, error) {
	p, ok := h.flows.get(input.ID)
	if !ok {
		return nil, apierr.NotFound()
	}

	timer := time.NewTimer(h.flowWait)
	defer timer.Stop()

	select {
	case <-p.done:
	case <-timer.C:
		return &flowOutput{Body: flowResponse{ID: input.ID, URL: p.flow.URL(), Status: "pending"}}, nil
	case <-ctx.Done():
		return nil, huma.Error503ServiceUnavailable("request cancelled")
	}

	h.flows.remove(input.ID)
	if p.err != nil {
		return nil, apierr.From(p.err)
	}
	sess := sessionBody(p.sess)
	return &flowOutput{Body: flowResponse{ID: input.ID, Status: "approved", Session: &sess}}, nil
}

func (h *Handler) flowQR(_ context.Context, input *flowIDInput) (*qrOutput, error) {
	p, ok := h.flows.get(input.ID)
	if !ok {
		return nil, apierr.NotFound()
	}
	png, err := qrcode.Encode(p.flow.URL(), qrcode.Medium, qrSize)
	if err != nil {
		h.log.Error("qr encode", "error", err)
		return nil, huma.Error500InternalServerError(apperr.Message(apperr.KindUnknown))
	}
	return &qrOutput{ContentType: "image/png", Body: png}, nil
}

func (h *Handler) cancelFlow(_ context.Context, input *flowIDInput) (*emptyOutput, error) {
	p, ok := h.flows.get(input.ID)
	if !ok {
		return nil, apierr.NotFound()
	}
	p.flow.Cancel()
	h.flows.remove(input.ID)
	return &emptyOutput{}, nil
}

func sessionBody(sess runtime.Session) sessionResponse {
	return sessionResponse{
		Authenticated: true,
		OwnerID:       sess.OwnerID(),
		Capabilities:  sess.Capabilities().String(),
	}
}
