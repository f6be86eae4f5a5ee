package apierr

import (
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventky/internal/domain/apperr"
)

func TestFrom(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		detail string
	}{
		{
			name:   "unauthorized",
			err:    apperr.New(apperr.KindUnauthorized, "create calendar", "", "", nil),
			status: http.StatusUnauthorized,
			detail: apperr.Message(apperr.KindUnauthorized),
		},
		{
			name:   "upload",
			err:    apperr.New(apperr.KindUpload, "upload blob", "alice", "", errors.New("503")),
			status: http.StatusBadGateway,
			detail: apperr.Message(apperr.KindUpload),
		},
		{
			name:   "plain error",
			err:    errors.New("boom"),
			status: http.StatusInternalServerError,
			detail: apperr.Message(apperr.KindUnknown),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var se huma.StatusError
			require.ErrorAs(t, From(tt.err), &se)
			assert.Equal(t, tt.status, se.GetStatus())
			assert.Contains(t, se.Error(), tt.detail)
		})
	}

	assert.NoError(t, From(nil))
}
