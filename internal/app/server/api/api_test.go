package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventky/internal/app/server/api/apitest"
	"eventky/internal/app/server/api/http/middleware/requestid"
	"eventky/internal/app/server/config"
	"eventky/internal/domain/apperr"
)

func testConfig() *config.Config {
	cfg := &config.Config{Client: apitest.Config(), RelayPoll: time.Second}
	cfg.Server.RunAddress = "localhost:0"
	cfg.Server.FlowWait = 50 * time.Millisecond
	cfg.Client.IndexServiceURL = "http://127.0.0.1:1"
	return cfg
}

func serve(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	app, _ := apitest.NewApp(t)
	mux := New(testConfig(), app, apitest.Logger())

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestNew_Health(t *testing.T) {
	rec := serve(t, http.MethodGet, "/api/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"OK"}`, stripSchema(t, rec.Body.Bytes()))
	assert.NotEmpty(t, rec.Header().Get(requestid.Header))
}

func TestNew_WriteWithoutSession(t *testing.T) {
	rec := serve(t, http.MethodPost, "/api/calendars", `{"name":"Team Events"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, apperr.Message(apperr.KindUnauthorized), body["error"])
}

func TestNew_SessionAnonymous(t *testing.T) {
	rec := serve(t, http.MethodGet, "/api/auth/session", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"authenticated":false}`, stripSchema(t, rec.Body.Bytes()))
}

func TestNew_RelayMounted(t *testing.T) {
	app, _ := apitest.NewApp(t)
	mux := New(testConfig(), app, apitest.Logger())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, relayPrefix+"/chan", strings.NewReader("sealed")))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, relayPrefix+"/chan", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sealed", rec.Body.String())
}

// stripSchema drops the $schema link huma adds to JSON bodies.
func stripSchema(t *testing.T, body []byte) string {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(body, &m))
	delete(m, "$schema")
	out, err := json.Marshal(m)
	require.NoError(t, err)
	return string(out)
}
