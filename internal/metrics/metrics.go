// Package metrics exposes Prometheus collectors for the docwatch service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	scansTotal                 *prometheus.CounterVec
	scanDurationSeconds        *prometheus.HistogramVec
	fetchAttemptsTotal         *prometheus.CounterVec
	rendersTotal               *prometheus.CounterVec
	newDocumentsTotal          *prometheus.CounterVec
	activeScans                prometheus.Gauge
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		scansTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docwatch_scans_total",
				Help: "Total number of company scans, labeled by status.",
			},
			[]string{"status"},
		)

		scanDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "docwatch_scan_duration_seconds",
				Help:    "Histogram of per-company scan latencies, labeled by status.",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"status"},
		)

		fetchAttemptsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docwatch_fetch_attempts_total",
				Help: "Total candidate fetch attempts, labeled by mode and status code.",
			},
			[]string{"mode", "code"},
		)

		rendersTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docwatch_renders_total",
				Help: "Total headless render escalations, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		newDocumentsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docwatch_new_documents_total",
				Help: "Total newly detected documents, labeled by company.",
			},
			[]string{"company"},
		)

		activeScans = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "docwatch_active_scans",
				Help: "Number of company scans currently in flight.",
			},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveScan records a finished company scan.
func ObserveScan(status string, duration time.Duration) {
	scansTotal.WithLabelValues(status).Inc()
	scanDurationSeconds.WithLabelValues(status).Observe(duration.Seconds())
}

// ObserveFetchAttempt records one candidate fetch attempt.
func ObserveFetchAttempt(mode string, code int) {
	fetchAttemptsTotal.WithLabelValues(mode, strconv.Itoa(code)).Inc()
}

// ObserveRender records a headless render escalation.
func ObserveRender(outcome string) {
	rendersTotal.WithLabelValues(outcome).Inc()
}

// ObserveNewDocuments adds to the new-document counter for a company.
func ObserveNewDocuments(company string, count int) {
	if count > 0 {
		newDocumentsTotal.WithLabelValues(company).Add(float64(count))
	}
}

// IncActiveScans increments the active scans gauge.
func IncActiveScans() {
	activeScans.Inc()
}

// DecActiveScans decrements the active scans gauge.
func DecActiveScans() {
	activeScans.Dec()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
