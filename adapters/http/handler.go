// Package http assembles the HTTP surface: admin API, public form API,
// health and metrics endpoints.
package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	adminapi "github.com/formworks/formworks/adapters/http/admin"
	publicapi "github.com/formworks/formworks/adapters/http/public"
	"github.com/formworks/formworks/adapters/metrics"
	"github.com/formworks/formworks/app"
)

// Deps contains dependencies for the HTTP handler.
type Deps struct {
	Auth        *app.AuthService
	Forms       *app.FormService
	Submissions *app.SubmissionService
	Logger      zerolog.Logger
	Metrics     *metrics.Collector

	// Gatherer backs the /metrics endpoint. Nil falls back to the default
	// Prometheus gatherer.
	Gatherer prometheus.Gatherer
}

// New builds the router with all routes mounted.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(deps.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	if deps.Metrics != nil {
		r.Use(instrument(deps.Metrics))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	adminHandler := adminapi.NewHandler(adminapi.Deps{
		Auth:        deps.Auth,
		Forms:       deps.Forms,
		Submissions: deps.Submissions,
		Logger:      deps.Logger,
		Metrics:     deps.Metrics,
	})
	publicHandler := publicapi.NewHandler(publicapi.Deps{
		Forms:       deps.Forms,
		Submissions: deps.Submissions,
		Logger:      deps.Logger,
		Metrics:     deps.Metrics,
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", adminHandler.Login)
		r.Mount("/admin", adminHandler.Router())
		r.Mount("/forms", publicHandler.Router())
	})

	return r
}

// requestLogger emits one structured line per request.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("request")
		})
	}
}

// instrument records request counters and latency histograms, labeled by the
// matched route pattern rather than the raw path to bound cardinality.
func instrument(m *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			pattern := chi.RouteContext(r.Context()).RoutePattern()
			if pattern == "" {
				pattern = "unmatched"
			}
			status := strconv.Itoa(ww.Status())
			m.RequestsTotal.WithLabelValues(r.Method, pattern, status).Inc()
			m.RequestDuration.WithLabelValues(r.Method, pattern, status).Observe(time.Since(start).Seconds())
		})
	}
}
