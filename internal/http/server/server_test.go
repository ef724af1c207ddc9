package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"paperlib/internal/app"
	"paperlib/internal/config"
	"paperlib/internal/service"
	serviceMocks "paperlib/internal/service/mocks"
)

func newTestServer(t *testing.T, svc service.PaperService, logs io.Writer) func(*http.Request) *http.Response {
	t.Helper()
	reg := prometheus.NewRegistry()
	a := &app.App{Config: &config.AppConfig{Env: "production"}, Papers: svc}
	srv, err := New(a, zerolog.New(logs), Options{Registry: reg, Gatherer: reg})
	require.NoError(t, err)
	return func(r *http.Request) *http.Response {
		resp, err := srv.Test(r)
		require.NoError(t, err)
		return resp
	}
}

func TestServer_ListThroughMiddlewareChain(t *testing.T) {
	svc := new(serviceMocks.MockPaperService)
	svc.On("List", mock.Anything, service.ListParams{}).Return(&service.ListResult{}, nil).Once()
	var logs bytes.Buffer
	do := newTestServer(t, svc, &logs)

	req := httptest.NewRequest(http.MethodGet, "/papers", nil)
	req.Header.Set("Origin", "https://papers.example.com")
	resp := do(req)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	var access map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(logs.Bytes()), &access))
	assert.Equal(t, "/papers", access["path"])
	assert.Equal(t, float64(200), access["status"])
}

func TestServer_DomainErrorStatusIsLoggedAndCounted(t *testing.T) {
	svc := new(serviceMocks.MockPaperService)
	svc.On("Summary", mock.Anything, "gone").Return("", service.ErrNotFound).Once()
	var logs bytes.Buffer
	do := newTestServer(t, svc, &logs)

	resp := do(httptest.NewRequest(http.MethodGet, "/get-summary?id=gone", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var access map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(logs.Bytes()), &access))
	assert.Equal(t, float64(404), access["status"])
	assert.Equal(t, "warn", access["level"])

	metrics := do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(metrics.Body)
	assert.Contains(t, string(body), `http_requests_total{method="GET",path="/get-summary",status="404"} 1`)
}

func TestServer_Preflight(t *testing.T) {
	do := newTestServer(t, new(serviceMocks.MockPaperService), io.Discard)

	req := httptest.NewRequest(http.MethodOptions, "/delete-paper", nil)
	req.Header.Set("Origin", "https://papers.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
	req.Header.Set("Access-Control-Request-Headers", "authorization,content-type")
	resp := do(req)

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), http.MethodDelete)
}

func TestServer_ProductionHidesDetails(t *testing.T) {
	svc := new(serviceMocks.MockPaperService)
	svc.On("Leaderboards", mock.Anything).Return(nil, assert.AnError).Once()
	do := newTestServer(t, svc, io.Discard)

	resp := do(httptest.NewRequest(http.MethodGet, "/papers?queryType=leaderboards", nil))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "INTERNAL_ERROR", body["code"])
	assert.NotContains(t, body, "details")
}
