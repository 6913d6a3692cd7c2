package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus metrics for the quiz engine
type Metrics struct {
	registry *prometheus.Registry

	SessionsStarted  prometheus.Counter
	SessionsFinished *prometheus.CounterVec
	Answers          *prometheus.CounterVec
	SessionElapsed   prometheus.Histogram
	LiveSessions     prometheus.Gauge
}

// New registers the engine metrics on a private registry so several instances can coexist.
// serviceName becomes the metric subsystem and must be a valid metric name fragment.
func New(serviceName string) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		SessionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "quiz",
			Subsystem: serviceName,
			Name:      "sessions_started_total",
			Help:      "Total number of quiz sessions started",
		}),
		SessionsFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quiz",
			Subsystem: serviceName,
			Name:      "sessions_finished_total",
			Help:      "Total number of quiz sessions finished",
		}, []string{"reason"}),
		Answers: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quiz",
			Subsystem: serviceName,
			Name:      "answers_total",
			Help:      "Answers recorded, by outcome",
		}, []string{"outcome"}), // outcome: correct, wrong, skipped
		SessionElapsed: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quiz",
			Subsystem: serviceName,
			Name:      "session_elapsed_seconds",
			Help:      "Elapsed seconds of finished sessions",
			Buckets:   []float64{30, 60, 120, 300, 600, 1200, 1800, 3600},
		}),
		LiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "quiz",
			Subsystem: serviceName,
			Name:      "live_sessions",
			Help:      "Sessions currently running",
		}),
	}
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
