package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aretw0/teevee"
	"github.com/aretw0/teevee/internal/logging"
	"github.com/aretw0/teevee/internal/testutils"
	"github.com/aretw0/teevee/pkg/domain"
	"github.com/aretw0/teevee/pkg/macro"
	"github.com/aretw0/teevee/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHandler(t *testing.T) http.Handler {
	t.Helper()
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	eng, err := teevee.New(teevee.WithMacros(testutils.Library(t, nil)), teevee.WithLifecycleHooks(m.Hooks()))
	require.NoError(t, err)
	_, err = eng.Start(context.Background(), "s1")
	require.NoError(t, err)

	return NewHandler(Config{Graph: eng, Gatherer: reg, Redirects: macro.RedirectTargets(), Version: "test"})
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestHealthAndInfo(t *testing.T) {
	h := newHandler(t)

	rr := get(t, h, "/healthz")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())

	rr = get(t, h, "/info")
	assert.JSONEq(t, `{"app":"teevee","version":"test"}`, rr.Body.String())
}

func TestGraphEndpoints(t *testing.T) {
	h := newHandler(t)

	rr := get(t, h, "/graph")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `start(("start"))`)
	assert.Contains(t, rr.Body.String(), `getmovie -. "MOVIE" .-> nomovie`)

	rr = get(t, h, "/graph.json")
	var nodes []domain.Node
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &nodes))
	assert.Len(t, nodes, 9)
}

func TestMetricsEndpoint(t *testing.T) {
	rr := get(t, newHandler(t), "/metrics")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `teevee_node_visits_total{node_id="start"} 1`)
}

func TestServe_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, "127.0.0.1:0", NewHandler(Config{}), logging.NewNop()) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
