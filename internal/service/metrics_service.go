package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the planner.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	storeOps        *prometheus.CounterVec
	accessorOps     *prometheus.CounterVec
	signals         *prometheus.CounterVec
	notifications   *prometheus.CounterVec
	openTabs        prometheus.Gauge
	droppedFrames   prometheus.Counter

	requestCount uint64
	tabCount     int64
}

// MetricsSnapshot is a small summary for health output.
type MetricsSnapshot struct {
	RequestsTotal uint64    `json:"requestsTotal"`
	OpenTabs      int64     `json:"openTabs"`
	Goroutines    int       `json:"goroutines"`
	GeneratedAt   time.Time `json:"generatedAt"`
}

// NewMetricsService registers the planner collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	storeOps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_store_operations_total",
		Help: "Backend operations by key and result",
	}, []string{"op", "key", "result"})

	accessorOps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_accessor_operations_total",
		Help: "Collection reads and writes by outcome",
	}, []string{"key", "op", "outcome"})

	signals := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_signals_total",
		Help: "Change signals dispatched to tabs",
	}, []string{"signal", "path"})

	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_notifications_total",
		Help: "Task reminders by outcome",
	}, []string{"outcome"})

	openTabs := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "planner_open_tabs",
		Help: "Tabs currently registered",
	})

	droppedFrames := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "planner_tab_frames_dropped_total",
		Help: "View frames discarded because a tab was not reading",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, storeOps, accessorOps, signals, notifications, openTabs, droppedFrames, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		storeOps:        storeOps,
		accessorOps:     accessorOps,
		signals:         signals,
		notifications:   notifications,
		openTabs:        openTabs,
		droppedFrames:   droppedFrames,
	}
}

// Registry exposes the underlying registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	return m.registry
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
}

// ObserveStoreOp counts a backend operation.
func (m *MetricsService) ObserveStoreOp(op, key string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.storeOps.WithLabelValues(op, key, result).Inc()
}

// RecordAccess counts an accessor read or write.
func (m *MetricsService) RecordAccess(key, op, outcome string) {
	if m == nil {
		return
	}
	m.accessorOps.WithLabelValues(key, op, outcome).Inc()
}

// RecordSignal counts a signal dispatched on the same-tab or cross-tab path.
func (m *MetricsService) RecordSignal(signal, path string) {
	if m == nil {
		return
	}
	m.signals.WithLabelValues(signal, path).Inc()
}

// RecordNotification counts a reminder outcome.
func (m *MetricsService) RecordNotification(outcome string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(outcome).Inc()
}

// TabOpened increments the open tab gauge.
func (m *MetricsService) TabOpened() {
	if m == nil {
		return
	}
	m.openTabs.Inc()
	atomic.AddInt64(&m.tabCount, 1)
}

// TabClosed decrements the open tab gauge.
func (m *MetricsService) TabClosed() {
	if m == nil {
		return
	}
	m.openTabs.Dec()
	atomic.AddInt64(&m.tabCount, -1)
}

// FrameDropped counts a discarded view frame.
func (m *MetricsService) FrameDropped() {
	if m == nil {
		return
	}
	m.droppedFrames.Inc()
}

// Snapshot returns aggregated counters.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	return MetricsSnapshot{
		RequestsTotal: atomic.LoadUint64(&m.requestCount),
		OpenTabs:      atomic.LoadInt64(&m.tabCount),
		Goroutines:    runtime.NumGoroutine(),
		GeneratedAt:   time.Now().UTC(),
	}
}
