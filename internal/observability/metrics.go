package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the service on a private registry.
//
//   - self_analysis_turns_total{step,outcome}
//   - self_analysis_turn_duration_seconds{step}
//   - self_analysis_guardrail_violations_total{step,field}
//   - self_analysis_agent_failures_total{step}
//   - http_requests_total{method,route,status}
//   - http_request_duration_seconds{method,route}
//   - http_requests_inflight
type Metrics struct {
	registry *prometheus.Registry

	turns         *prometheus.CounterVec
	turnLatency   *prometheus.HistogramVec
	violations    *prometheus.CounterVec
	agentFailures *prometheus.CounterVec

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		turns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "self_analysis_turns_total",
			Help: "Self-analysis turns by step and outcome",
		}, []string{"step", "outcome"}),
		turnLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "self_analysis_turn_duration_seconds",
			Help:    "Wall time of one self-analysis turn, agent calls included",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
		}, []string{"step"}),
		violations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "self_analysis_guardrail_violations_total",
			Help: "Step outputs rejected by the guardrail",
		}, []string{"step", "field"}),
		agentFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "self_analysis_agent_failures_total",
			Help: "Step agent calls that failed to produce output",
		}, []string{"step"}),
		apiRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		apiLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		apiInflight: f.NewGauge(prometheus.GaugeOpts{
			Name: "http_requests_inflight",
			Help: "HTTP requests currently being served",
		}),
	}
}

func (m *Metrics) ObserveTurn(step string, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.turns.WithLabelValues(step, outcome).Inc()
	m.turnLatency.WithLabelValues(step).Observe(d.Seconds())
}

func (m *Metrics) GuardrailViolation(step string, field string) {
	if m == nil {
		return
	}
	if field == "" {
		field = "unknown"
	}
	m.violations.WithLabelValues(step, fieldLabel(field)).Inc()
}

func (m *Metrics) AgentFailure(step string) {
	if m == nil {
		return
	}
	m.agentFailures.WithLabelValues(step).Inc()
}

func (m *Metrics) IncInflight() {
	if m != nil {
		m.apiInflight.Inc()
	}
}

func (m *Metrics) DecInflight() {
	if m != nil {
		m.apiInflight.Dec()
	}
}

func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.apiRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.apiLatency.WithLabelValues(method, route).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// fieldLabel drops list indexes so "gaps[3].severity" and "gaps[0].severity" share a series.
func fieldLabel(field string) string {
	out := make([]byte, 0, len(field))
	skip := false
	for i := 0; i < len(field); i++ {
		switch c := field[i]; {
		case c == '[':
			skip = true
			out = append(out, "[]"...)
		case c == ']':
			skip = false
		case !skip:
			out = append(out, c)
		}
	}
	return string(out)
}
