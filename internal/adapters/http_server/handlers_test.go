package httpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	server "reviewable/internal/adapters/http_server"
	"reviewable/internal/adapters/observability"
)

func TestOpsRoutes(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	srv := server.New()
	srv.Mount("/metrics", observability.MetricsHandler(observability.InitRegistry()))
	srv.MountHandlers(&server.Handlers{Checks: map[string]server.Pinger{
		"store": server.PingFunc(func(ctx context.Context) error { return nil }),
		"cache": server.PingFunc(func(ctx context.Context) error {
			if healthy.Load() {
				return nil
			}
			return errors.New("dial tcp: connection refused")
		}),
	}})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	res, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	res, err = http.Get(ts.URL + "/readyz")
	require.NoError(t, err)
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "ok", body.Status)
	require.Equal(t, map[string]string{"store": "ok", "cache": "ok"}, body.Checks)

	healthy.Store(false)
	res, err = http.Get(ts.URL + "/readyz")
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
	require.Equal(t, "application/problem+json", res.Header.Get("Content-Type"))

	res, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
}
