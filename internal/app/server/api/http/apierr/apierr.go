// Package apierr turns failures of the client core into HTTP errors that
// carry the canned user-facing message of their kind.
package apierr

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"eventky/internal/domain/apperr"
)

var statuses = map[apperr.Kind]int{
	apperr.KindNetwork:       http.StatusBadGateway,
	apperr.KindProvider:      http.StatusBadGateway,
	apperr.KindAuthTimeout:   http.StatusRequestTimeout,
	apperr.KindAuthCancelled: http.StatusConflict,
	apperr.KindInvalidAddr:   http.StatusBadRequest,
	apperr.KindUpload:        http.StatusBadGateway,
	apperr.KindParse:         http.StatusUnprocessableEntity,
	apperr.KindNotFound:      http.StatusNotFound,
	apperr.KindUnauthorized:  http.StatusUnauthorized,
	apperr.KindInvalidInput:  http.StatusUnprocessableEntity,
}

// Status is the HTTP status for kind.
func Status(kind apperr.Kind) int {
	if s, ok := statuses[kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// From converts err, nil stays nil.
func From(err error) error {
	if err == nil {
		return nil
	}
	kind := apperr.KindOf(err)
	return huma.NewError(Status(kind), apperr.Message(kind))
}

func NotFound() error {
	return huma.NewError(http.StatusNotFound, apperr.Message(apperr.KindNotFound))
}

func Unauthorized() error {
	return huma.NewError(http.StatusUnauthorized, apperr.Message(apperr.KindUnauthorized))
}
