package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDB struct {
	err error
}

func (f *fakeDB) Ping(ctx context.Context) error {
	return f.err
}

func newTestServer(db ReadinessChecker) *Server {
	return NewServer(DefaultConfig(), Dependencies{Database: db})
}

func do(t *testing.T, s *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)
	return rec
}

func TestRoot(t *testing.T) {
	s := newTestServer(&fakeDB{})

	rec := do(t, s, http.MethodGet, "/")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestRoot_Head(t *testing.T) {
	s := newTestServer(&fakeDB{})

	rec := do(t, s, http.MethodHead, "/")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoot_UnknownPath(t *testing.T) {
	s := newTestServer(&fakeDB{})

	rec := do(t, s, http.MethodGet, "/nope")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(&fakeDB{})

	for _, path := range []string{"/health", "/healthz"} {
		rec := do(t, s, http.MethodGet, path)

		require.Equal(t, http.StatusOK, rec.Code, path)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "ok", body["status"])
	}
}

func TestReady_OK(t *testing.T) {
	s := newTestServer(&fakeDB{})

	rec := do(t, s, http.MethodGet, "/ready")

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestReady_DatabaseDown(t *testing.T) {
	s := newTestServer(&fakeDB{err: errors.New("connection refused")})

	rec := do(t, s, http.MethodGet, "/ready")

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not_ready", body["status"])
}

func TestReady_NoDatabaseConfigured(t *testing.T) {
	s := newTestServer(nil)

	rec := do(t, s, http.MethodGet, "/ready")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestIDPropagation(t *testing.T) {
	s := newTestServer(&fakeDB{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "test-id-123")
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)

	assert.Equal(t, "test-id-123", rec.Header().Get("X-Request-ID"))
}

func TestRequestIDGenerated(t *testing.T) {
	s := newTestServer(&fakeDB{})

	rec := do(t, s, http.MethodGet, "/")

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestConfigAddress(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "0.0.0.0:10000", cfg.Address())

	cfg.Port = 8080
	assert.Equal(t, "0.0.0.0:8080", cfg.Address())
}
