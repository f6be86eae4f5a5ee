package bootstrap

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"eventky/internal/infrastructure/index"
)

func TestHandler_bootstrap(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v0/bootstrap/alice" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"users":[{"id":"alice"}],"posts":null}`))
	}))
	defer srv.Close()

	h := NewHandler(index.NewClient(srv.URL, time.Second, log), log, huma.Middlewares{})

	out, err := h.bootstrap(context.Background(), &input{Owner: "alice"})
	require.NoError(t, err)
	require.Len(t, out.Body.Users, 1)
	assert.JSONEq(t, `{"id":"alice"}`, string(out.Body.Users[0]))
	assert.NotNil(t, out.Body.Posts)

	_, err = h.bootstrap(context.Background(), &input{Owner: "bob"})
	var se huma.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusServiceUnavailable, se.GetStatus())
}
