package calendar

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) createOp() huma.Operation {
	return huma.Operation{
		OperationID:   "calendars-create",
		Method:        http.MethodPost,
		Path:          "/api/calendars",
		Summary:       "Create a calendar",
		Tags:          []string{"calendars"},
		DefaultStatus: http.StatusCreated,
		Middlewares:   h.authed,
	}
}

func (h *Handler) updateOp() huma.Operation {
	return huma.Operation{
		OperationID: "calendars-update",
		Method:      http.MethodPut,
		Path:        "/api/calendars/{id}",
		Summary:     "Replace one of your calendars",
		Tags:        []string{"calendars"},
		Middlewares: h.authed,
	}
}

func (h *Handler) deleteOp() huma.Operation {
	return huma.Operation{
		OperationID:   "calendars-delete",
		Method:        http.MethodDelete,
		Path:          "/api/calendars/{id}",
		Summary:       "Delete one of your calendars",
		Tags:          []string{"calendars"},
		DefaultStatus: http.StatusNoContent,
		Middlewares:   h.authed,
	}
}

func (h *Handler) listOp() huma.Operation {
	return huma.Operation{
		OperationID: "calendars-list",
		Method:      http.MethodGet,
		Path:        "/api/users/{owner}/calendars",
		Summary:     "Calendars published by a user",
		Tags:        []string{"calendars"},
		Middlewares: h.public,
	}
}

func (h *Handler) findOp() huma.Operation {
	return huma.Operation{
		OperationID: "calendars-find",
		Method:      http.MethodGet,
		Path:        "/api/users/{owner}/calendars/{id}",
		Summary:     "One calendar, from the index when it has it",
		Tags:        []string{"calendars"},
		Middlewares: h.public,
	}
}
