package event

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) createOp() huma.Operation {
	return huma.Operation{
		OperationID:   "events-create",
		Method:        http.MethodPost,
		Path:          "/api/events",
		Summary:       "Create an event",
		Tags:          []string{"events"},
		DefaultStatus: http.StatusCreated,
		Middlewares:   h.authed,
	}
}

func (h *Handler) updateOp() huma.Operation {
	return huma.Operation{
		OperationID: "events-update",
		Method:      http.MethodPut,
		Path:        "/api/events/{id}",
		Summary:     "Replace one of your events",
		Description: "Keeps the uid and creation time and bumps the sequence.",
		Tags:        []string{"events"},
		Middlewares: h.authed,
	}
}

func (h *Handler) deleteOp() huma.Operation {
	return huma.Operation{
		OperationID:   "events-delete",
		Method:        http.MethodDelete,
		Path:          "/api/events/{id}",
		Summary:       "Delete one of your events",
		Tags:          []string{"events"},
		DefaultStatus: http.StatusNoContent,
		Middlewares:   h.authed,
	}
}

func (h *Handler) listOp() huma.Operation {
	return huma.Operation{
		OperationID: "events-list",
		Method:      http.MethodGet,
		Path:        "/api/users/{owner}/events",
		Summary:     "Events published by a user",
		Description: "Served by the index when it answers, otherwise read from storage.",
		Tags:        []string{"events"},
		Middlewares: h.public,
	}
}

func (h *Handler) findOp() huma.Operation {
	return huma.Operation{
		OperationID: "events-find",
		Method:      http.MethodGet,
		Path:        "/api/users/{owner}/events/{id}",
		Summary:     "One event",
		Tags:        []string{"events"},
		Middlewares: h.public,
	}
}
