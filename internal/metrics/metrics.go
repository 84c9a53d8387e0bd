// Package metrics exposes console counters over Prometheus.
package metrics

import (
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application metrics
type Metrics struct {
	// Stream relay counters
	FramesRelayed atomic.Uint64
	FramesDropped atomic.Uint64
	StreamClients atomic.Uint64
	StreamState   atomic.Uint64 // 0 = offline, 1 = stale, 2 = live

	// Editor counters
	EditorSessions atomic.Uint64
	ZonesSaved     atomic.Uint64

	// Event log counters
	EventsRecorded atomic.Uint64
	AlertsRecorded atomic.Uint64

	// Auth counters
	LoginSuccesses atomic.Uint64
	LoginFailures  atomic.Uint64
	ActiveSessions atomic.Uint64

	// Prometheus collectors
	registry *prometheus.Registry
}

// New creates a new Metrics instance with Prometheus collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
	}
	m.registerPrometheusMetrics()
	return m
}

// registerPrometheusMetrics registers all metrics with Prometheus
func (m *Metrics) registerPrometheusMetrics() {
	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "console_frames_relayed_total",
			Help: "Total MJPEG frames relayed from the detector",
		},
		func() float64 { return float64(m.FramesRelayed.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "console_frames_dropped_total",
			Help: "Frames skipped for clients that could not keep up",
		},
		func() float64 { return float64(m.FramesDropped.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "console_stream_clients",
			Help: "Connected MJPEG stream clients",
		},
		func() float64 { return float64(m.StreamClients.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "console_stream_state",
			Help: "Detector feed state (0=offline, 1=stale, 2=live)",
		},
		func() float64 { return float64(m.StreamState.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "console_editor_sessions",
			Help: "Open zone editor sessions",
		},
		func() float64 { return float64(m.EditorSessions.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "console_zones_saved_total",
			Help: "Total zones saved from the editor",
		},
		func() float64 { return float64(m.ZonesSaved.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "console_events_recorded_total",
			Help: "Total events written to the event log",
		},
		func() float64 { return float64(m.EventsRecorded.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "console_alerts_recorded_total",
			Help: "Total alert-level events recorded",
		},
		func() float64 { return float64(m.AlertsRecorded.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "console_login_successes_total",
			Help: "Total successful logins",
		},
		func() float64 { return float64(m.LoginSuccesses.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "console_login_failures_total",
			Help: "Total failed logins",
		},
		func() float64 { return float64(m.LoginFailures.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "console_active_sessions",
			Help: "Active authenticated sessions",
		},
		func() float64 { return float64(m.ActiveSessions.Load()) },
	))
}

// Handler returns the Prometheus HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
