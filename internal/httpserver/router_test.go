package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"routinetracker/internal/handler"
	"routinetracker/internal/routine"
	"routinetracker/internal/service"
	"routinetracker/pkg/trace"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func newTestRouter(t *testing.T, log *zap.Logger, datastore Pinger) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tracker := service.NewTracker(routine.NewStore(routine.ModeSimple), log)
	return NewRouter(
		handler.NewRoutineHandler(tracker, nil, log),
		handler.NewProfileHandler(tracker, log),
		log,
		datastore,
	).Handler()
}

func TestHealthAndReadiness(t *testing.T) {
	h := newTestRouter(t, zap.NewNop(), nil)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	down := newTestRouter(t, zap.NewNop(), pingFunc(func(context.Context) error { return errors.New("refused") }))
	w = httptest.NewRecorder()
	down.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "datastore_not_ready")
}

func TestTraceHeaderPropagation(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := newTestRouter(t, zap.New(core), nil)

	req := httptest.NewRequest(http.MethodGet, "/routines", nil)
	req.Header.Set(trace.HeaderName, "abc123")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc123", w.Header().Get(trace.HeaderName))

	entries := logs.FilterMessage("HTTP Request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "abc123", fields["trace_id"])
	assert.Equal(t, "/routines", fields["path"])
}

func TestTraceIDGeneratedWhenMissing(t *testing.T) {
	h := newTestRouter(t, zap.NewNop(), nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Len(t, w.Header().Get(trace.HeaderName), 32)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestRouter(t, zap.NewNop(), nil)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/progress", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "http_request_duration_seconds"))
}
