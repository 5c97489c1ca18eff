package service

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServiceCounters(t *testing.T) {
	m := NewMetricsService()

	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/tasks", http.StatusOK, 20*time.Millisecond)
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/tasks", http.StatusOK, 10*time.Millisecond)
	m.ObserveStoreOp("set", "tasks", nil)
	m.ObserveStoreOp("set", "tasks", errors.New("boom"))
	m.RecordAccess("tasks", "read", "corrupt")
	m.RecordSignal("tasksUpdated", "local")
	m.RecordNotification("delivered")
	m.TabOpened()
	m.TabOpened()
	m.TabClosed()
	m.FrameDropped()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestTotal.WithLabelValues("GET", "/api/v1/tasks", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeOps.WithLabelValues("set", "tasks", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeOps.WithLabelValues("set", "tasks", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.accessorOps.WithLabelValues("tasks", "read", "corrupt")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.signals.WithLabelValues("tasksUpdated", "local")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues("delivered")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.openTabs))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.droppedFrames))

	snap := m.Snapshot()
	assert.Equal(t, uint64(2), snap.RequestsTotal)
	assert.Equal(t, int64(1), snap.OpenTabs)
	assert.Positive(t, snap.Goroutines)
}

func TestMetricsHandlerExposesRegistry(t *testing.T) {
	m := NewMetricsService()
	m.RecordNotification("failed")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `planner_notifications_total{outcome="failed"} 1`)
}

func TestMetricsNilReceiverIsSafe(t *testing.T) {
	var m *MetricsService
	assert.NotPanics(t, func() {
		m.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
		m.ObserveStoreOp("get", "tasks", nil)
		m.RecordSignal("tasksUpdated", "remote")
		m.TabOpened()
		m.FrameDropped()
	})
	assert.Equal(t, MetricsSnapshot{}, m.Snapshot())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
