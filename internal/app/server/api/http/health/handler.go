package health

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

// RuntimeChecker reports whether the storage runtime came up.
type RuntimeChecker interface {
	IsInitialized() bool
}

type Handler struct {
	runtime    RuntimeChecker
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(runtime RuntimeChecker, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		runtime:    runtime,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.healthCheckOp(), h.healthCheck)
}

func (h *Handler) healthCheck(_ context.Context, _ *Input) (*Output, error) {
	h.log.Debug("health check request received")

	status := "OK"
	if !h.runtime.IsInitialized() {
		status = "STARTING"
	}
	return &Output{
		Body: Response{
			Status: status,
		},
	}, nil
}
