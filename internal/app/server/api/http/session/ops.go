package session

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) signupOp() huma.Operation {
	return huma.Operation{
		OperationID:   "auth-signup",
		Method:        http.MethodPost,
		Path:          "/api/auth/signup",
		Summary:       "Register a keypair with the homeserver",
		Tags:          []string{"auth"},
		DefaultStatus: http.StatusCreated,
		Middlewares:   h.middleware,
	}
}

func (h *Handler) signinOp() huma.Operation {
	return huma.Operation{
		OperationID: "auth-signin",
		Method:      http.MethodPost,
		Path:        "/api/auth/signin",
		Summary:     "Resume the session of a registered keypair",
		Tags:        []string{"auth"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) signoutOp() huma.Operation {
	return huma.Operation{
		OperationID:   "auth-signout",
		Method:        http.MethodPost,
		Path:          "/api/auth/signout",
		Summary:       "End the current session",
		Tags:          []string{"auth"},
		DefaultStatus: http.StatusNoContent,
		Middlewares:   h.middleware,
	}
}

func (h *Handler) sessionOp() huma.Operation {
	return huma.Operation{
		OperationID: "auth-session",
		Method:      http.MethodGet,
		Path:        "/api/auth/session",
		Summary:     "Current session",
		Tags:        []string{"auth"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) startFlowOp() huma.Operation {
	return huma.Operation{
		OperationID:   "auth-flow-start",
		Method:        http.MethodPost,
		Path:          "/api/auth/flow",
		Summary:       "Start a delegated authorization",
		Description:   "Returns the authorization URL another device approves. Poll the flow to learn the outcome.",
		Tags:          []string{"auth"},
		DefaultStatus: http.StatusCreated,
		Middlewares:   h.middleware,
	}
}

func (h *Handler) awaitFlowOp() huma.Operation {
	return huma.Operation{
		OperationID: "auth-flow-await",
		Method:      http.MethodGet,
		Path:        "/api/auth/flow/{id}",
		Summary:     "Wait a bounded time for a delegated authorization",
		Tags:        []string{"auth"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) flowQROp() huma.Operation {
	return huma.Operation{
		OperationID: "auth-flow-qr",
		Method:      http.MethodGet,
		Path:        "/api/auth/flow/{id}/qr",
		Summary:     "Authorization URL as a PNG QR code",
		Tags:        []string{"auth"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) cancelFlowOp() huma.Operation {
	return huma.Operation{
		OperationID:   "auth-flow-cancel",
		Method:        http.MethodDelete,
		Path:          "/api/auth/flow/{id}",
		Summary:       "Cancel a pending delegated authorization",
		Tags:          []string{"auth"},
		DefaultStatus: http.StatusNoContent,
		Middlewares:   h.middleware,
	}
}
