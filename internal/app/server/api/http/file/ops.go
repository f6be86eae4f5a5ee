package file

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) uploadOp() huma.Operation {
	return huma.Operation{
		OperationID:   "files-upload",
		Method:        http.MethodPost,
		Path:          "/api/files",
		Summary:       "Upload a file",
		Description:   "Stores the bytes as a content addressed blob and writes a metadata record pointing at it.",
		Tags:          []string{"files"},
		DefaultStatus: http.StatusCreated,
		MaxBodyBytes:  maxUploadBytes,
		Middlewares:   h.authed,
	}
}

func (h *Handler) deleteOp() huma.Operation {
	return huma.Operation{
		OperationID:   "files-delete",
		Method:        http.MethodDelete,
		Path:          "/api/files/{id}",
		Summary:       "Delete a file record",
		Tags:          []string{"files"},
		DefaultStatus: http.StatusNoContent,
		Middlewares:   h.authed,
	}
}

func (h *Handler) findOp() huma.Operation {
	return huma.Operation{
		OperationID: "files-find",
		Method:      http.MethodGet,
		Path:        "/api/users/{owner}/files/{id}",
		Summary:     "File metadata",
		Tags:        []string{"files"},
		Middlewares: h.public,
	}
}

func (h *Handler) blobOp() huma.Operation {
	return huma.Operation{
		OperationID: "files-blob",
		Method:      http.MethodGet,
		Path:        "/api/users/{owner}/files/{id}/blob",
		Summary:     "File contents",
		Tags:        []string{"files"},
		Middlewares: h.public,
	}
}
