package ops

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ariproxy/internal/logger"
	"ariproxy/pkg/health"
)

func TestHealthEndpoint(t *testing.T) {
	registry := health.NewCheckerRegistry(0)
	healthy := true
	registry.Register(health.CheckerFunc(func(ctx context.Context) health.Report {
		if healthy {
			return health.Healthy("sink.kafka")
		}
		return health.Unhealthy("sink.kafka", errors.New("no brokers"))
	}))
	router := NewRouter(registry, logger.NopLogger(), "ari-proxy")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body health.Health
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, health.StatusHealthy, body.Status)
	assert.Contains(t, body.Checks, "sink.kafka")

	healthy = false
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	router := NewRouter(health.NewCheckerRegistry(0), logger.NopLogger(), "ari-proxy")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
