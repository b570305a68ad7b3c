// Package metrics provides Prometheus metrics collection for Formworks.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds all Prometheus metrics for Formworks.
type Collector struct {
	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Auth metrics
	AuthFailures *prometheus.CounterVec

	// Form lifecycle metrics
	FormsCreated prometheus.Counter
	FormVersions prometheus.Counter

	// Submission metrics
	SubmissionsTotal   *prometheus.CounterVec
	ValidationFailures prometheus.Counter
	ExportsTotal       prometheus.Counter

	// Config metrics
	ConfigReloads      prometheus.Counter
	ConfigReloadErrors prometheus.Counter
	ConfigLastReload   prometheus.Gauge
}

// New creates a new metrics collector registered on the default registry.
func New() *Collector {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a new metrics collector with a custom registry.
// Useful for testing to avoid global state.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "formworks",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests processed",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "formworks",
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path", "status"},
		),
		AuthFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "formworks",
				Name:      "auth_failures_total",
				Help:      "Total number of authentication failures",
			},
			[]string{"reason"},
		),
		FormsCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "formworks",
				Name:      "forms_created_total",
				Help:      "Total number of forms created",
			},
		),
		FormVersions: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "formworks",
				Name:      "form_versions_total",
				Help:      "Total number of form versions created",
			},
		),
		SubmissionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "formworks",
				Name:      "submissions_total",
				Help:      "Total number of submission attempts",
			},
			[]string{"outcome"},
		),
		ValidationFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "formworks",
				Name:      "validation_failures_total",
				Help:      "Total number of submissions rejected by validation",
			},
		),
		ExportsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "formworks",
				Name:      "exports_total",
				Help:      "Total number of CSV exports generated",
			},
		),
		ConfigReloads: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "formworks",
				Name:      "config_reloads_total",
				Help:      "Total number of successful config reloads",
			},
		),
		ConfigReloadErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "formworks",
				Name:      "config_reload_errors_total",
				Help:      "Total number of config reload errors",
			},
		),
		ConfigLastReload: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "formworks",
				Name:      "config_last_reload_timestamp",
				Help:      "Unix timestamp of last successful config reload",
			},
		),
	}
}
