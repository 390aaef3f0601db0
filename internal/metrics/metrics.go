// Package metrics exposes Prometheus collectors for the assistant.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hammamikhairi/ottohome/internal/domain"
)

// Metrics bundles the collectors on a private registry so several
// instances can coexist in tests.
type Metrics struct {
	registry    *prometheus.Registry
	intents     *prometheus.CounterVec
	sessions    prometheus.Gauge
	requests    *prometheus.HistogramVec
	ttsFailures prometheus.Counter
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		intents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ottohome_intents_total",
				Help: "Utterances handled, by matched intent",
			},
			[]string{"intent"},
		),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ottohome_sessions_active",
			Help: "Chat sessions currently alive",
		}),
		requests: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ottohome_http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "status"},
		),
		ttsFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ottohome_tts_failures_total",
			Help: "Text-to-speech requests that failed",
		}),
	}
	m.registry.MustRegister(m.intents, m.sessions, m.requests, m.ttsFailures)
	return m
}

// ObserveIntent counts one handled utterance.
func (m *Metrics) ObserveIntent(intent domain.IntentType) {
	m.intents.WithLabelValues(intent.String()).Inc()
}

// SetActiveSessions records the live session count.
func (m *Metrics) SetActiveSessions(n int) {
	m.sessions.Set(float64(n))
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(route string, status int, d time.Duration) {
	m.requests.WithLabelValues(route, strconv.Itoa(status)).Observe(d.Seconds())
}

// TTSFailed counts a failed speech synthesis.
func (m *Metrics) TTSFailed() {
	m.ttsFailures.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
