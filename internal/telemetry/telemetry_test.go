package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTelemetry_ExportsMeterInstruments(t *testing.T) {
	tel, err := NewTelemetry(zap.NewNop())
	require.NoError(t, err)

	counter, err := tel.Meter.Int64Counter("newsboard.test.events")
	require.NoError(t, err)
	counter.Add(context.Background(), 3)

	w := httptest.NewRecorder()
	tel.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "newsboard_test_events")
	assert.Contains(t, w.Body.String(), "go_goroutines")

	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestTelemetry_IsolatedRegistries(t *testing.T) {
	first, err := NewTelemetry(zap.NewNop())
	require.NoError(t, err)
	second, err := NewTelemetry(zap.NewNop())
	require.NoError(t, err)
	assert.NotSame(t, first.registry, second.registry)
}
