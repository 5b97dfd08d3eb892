package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	LLMRequestsTotal   *prometheus.CounterVec
	LLMRequestDuration *prometheus.HistogramVec

	ThrottleWaitDuration prometheus.Histogram
	RateLimitHitsTotal   *prometheus.CounterVec
}

// New registers the relay metrics in reg. Pass prometheus.DefaultRegisterer
// in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prompt_relay_requests_total",
				Help: "Total number of prompts relayed",
			},
			[]string{"status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "prompt_relay_request_duration_seconds",
				Help:    "Send duration in seconds, throttle wait included",
				Buckets: []float64{0.1, 0.5, 1, 2, 4, 8, 15, 30, 60},
			},
			[]string{"status"},
		),
		RequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "prompt_relay_requests_in_flight",
				Help: "Number of sends currently waiting or dispatched",
			},
		),

		LLMRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prompt_relay_llm_requests_total",
				Help: "Total number of upstream model requests",
			},
			[]string{"provider", "status"},
		),
		LLMRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "prompt_relay_llm_request_duration_seconds",
				Help:    "Upstream model request duration in seconds",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"provider"},
		),

		ThrottleWaitDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "prompt_relay_throttle_wait_seconds",
				Help:    "Time spent waiting for the minimum request interval",
				Buckets: []float64{0, 0.25, 0.5, 1, 2, 3, 4, 8, 16},
			},
		),
		RateLimitHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prompt_relay_rate_limit_hits_total",
				Help: "Total number of upstream quota rejections",
			},
			[]string{"provider"},
		),
	}

	return m
}

func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordRequest(status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(status).Inc()
	m.RequestDuration.WithLabelValues(status).Observe(duration.Seconds())
}

func (m *Metrics) RecordLLMRequest(provider, status string, duration time.Duration) {
	m.LLMRequestsTotal.WithLabelValues(provider, status).Inc()
	m.LLMRequestDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

func (m *Metrics) RecordThrottleWait(wait time.Duration) {
	m.ThrottleWaitDuration.Observe(wait.Seconds())
}

func (m *Metrics) RecordRateLimitHit(provider string) {
	m.RateLimitHitsTotal.WithLabelValues(provider).Inc()
}

func (m *Metrics) IncRequestsInFlight() {
	m.RequestsInFlight.Inc()
}

func (m *Metrics) DecRequestsInFlight() {
	m.RequestsInFlight.Dec()
}
