// Package metrics exposes Prometheus instrumentation for the portal.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/polkiloo/returnearn/internal/domain/model"
)

const namespace = "returnearn"

// Module provides the metrics registry via fx.
var Module = fx.Provide(New)

// Metrics owns a private registry and every collector registered on it.
type Metrics struct {
	registry *prometheus.Registry

	returnsSubmitted   *prometheus.CounterVec
	submissionFailures *prometheus.CounterVec
	creditAwarded      prometheus.Counter
	multiplier         prometheus.Gauge
	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
}

// New creates a registry with process and Go runtime collectors plus the portal metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry: reg,
		returnsSubmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "returns_submitted_total",
			Help:      "Returns appended to the ledger, by action.",
		}, []string{"action"}),
		submissionFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submission_failures_total",
			Help:      "Rejected or failed return submissions, by reason.",
		}, []string{"reason"}),
		creditAwarded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "credit_awarded_total",
			Help:      "Store credit granted across all returns.",
		}),
		multiplier: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reward_multiplier",
			Help:      "Reward multiplier in effect.",
		}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served.",
		}, []string{"method", "route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	for _, action := range model.Actions {
		m.returnsSubmitted.WithLabelValues(string(action))
	}
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ReturnSubmitted records an appended return.
func (m *Metrics) ReturnSubmitted(action model.Action, credit int64) {
	m.returnsSubmitted.WithLabelValues(string(action)).Inc()
	m.creditAwarded.Add(float64(credit))
}

// SubmissionFailed records a rejected submission.
func (m *Metrics) SubmissionFailed(reason string) {
	m.submissionFailures.WithLabelValues(reason).Inc()
}

// MultiplierChanged publishes the multiplier in effect.
func (m *Metrics) MultiplierChanged(multiplier float64) {
	m.multiplier.Set(multiplier)
}

// ObserveHTTP records a served request.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
