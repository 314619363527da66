package api

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors on a private registry
type Metrics struct {
	registry       *prometheus.Registry
	requests       *prometheus.CounterVec
	predictions    *prometheus.CounterVec
	predictLatency *prometheus.HistogramVec
	lastPrediction prometheus.Gauge
}

// NewMetrics creates and registers the collectors
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cif",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cif",
			Name:      "predictions_total",
			Help:      "Prediction requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		predictLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cif",
			Name:      "prediction_duration_seconds",
			Help:      "Time spent validating and scoring a prediction.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}, []string{"endpoint"}),
		lastPrediction: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cif",
			Name:      "last_prediction_usd_per_kg",
			Help:      "Most recent successful prediction.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.predictions,
		m.predictLatency,
		m.lastPrediction,
	)
	return m
}

// Handler exposes the registry in the prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) observeRequest(route, method string, status int) {
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
}

func (m *Metrics) observePrediction(endpoint, outcome string, seconds, value float64) {
	m.predictions.WithLabelValues(endpoint, outcome).Inc()
	m.predictLatency.WithLabelValues(endpoint).Observe(seconds)
	if outcome == outcomeOK {
		m.lastPrediction.Set(value)
	}
}
