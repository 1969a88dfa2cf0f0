package observability

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMetricsExposeTurnSeries(t *testing.T) {
	m := NewMetrics()
	m.ObserveTurn("GAP", "advanced", 1200*time.Millisecond)
	m.GuardrailViolation("GAP", "gaps[3].severity")
	m.GuardrailViolation("GAP", "gaps[0].severity")
	m.AgentFailure("FUTURE")
	m.ObserveHTTP("POST", "/api/self-analysis/sessions/:id/messages", 200, 50*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	text := string(body)

	for _, want := range []string{
		`self_analysis_turns_total{outcome="advanced",step="GAP"} 1`,
		`self_analysis_guardrail_violations_total{field="gaps[].severity",step="GAP"} 2`,
		`self_analysis_agent_failures_total{step="FUTURE"} 1`,
		`http_requests_total{method="POST",route="/api/self-analysis/sessions/:id/messages",status="200"} 1`,
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("metrics output missing %q", want)
		}
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.ObserveTurn("GAP", "advanced", time.Second)
	m.GuardrailViolation("GAP", "")
	m.AgentFailure("GAP")
	m.IncInflight()
	m.DecInflight()
	m.ObserveHTTP("GET", "", 404, time.Millisecond)
}
