package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"

	"github.com/boddenberg/revomotors-web/internal/domain"
)

// Error kinds recorded on web_api_errors_total.
const (
	KindUnauthorized = "unauthorized"
	KindForbidden    = "forbidden"
	KindNotFound     = "not_found"
	KindValidation   = "validation"
	KindUpstream     = "upstream"
	KindTransport    = "transport"
	KindCircuitOpen  = "circuit_open"
)

// Session events recorded on web_sessions_total.
const (
	SessionOpened  = "opened"
	SessionClosed  = "closed"
	SessionExpired = "expired"
)

// Metrics holds all Prometheus metrics for the web front end.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	apiDuration  *prometheus.HistogramVec
	apiErrors    *prometheus.CounterVec
	pageRenders  *prometheus.CounterVec
	sessions     *prometheus.CounterVec
	circuitState prometheus.Gauge
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		apiDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "web_api_request_duration_seconds",
				Help:    "Duration of RevoMotors API calls by endpoint.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		apiErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "web_api_errors_total",
				Help: "Failed RevoMotors API calls by endpoint and kind.",
			},
			[]string{"endpoint", "kind"},
		),
		pageRenders: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "web_page_renders_total",
				Help: "Rendered pages by page and outcome.",
			},
			[]string{"page", "outcome"},
		),
		sessions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "web_sessions_total",
				Help: "Session lifecycle events.",
			},
			[]string{"event"},
		),
		circuitState: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "web_api_circuit_state",
				Help: "API circuit breaker state: 0 closed, 1 half-open, 2 open.",
			},
		),
	}
}

// RecordAPICall records the duration of an API call.
func (m *Metrics) RecordAPICall(endpoint string, d time.Duration) {
	m.apiDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// IncrAPIError increments the API error counter.
func (m *Metrics) IncrAPIError(endpoint, kind string) {
	m.apiErrors.WithLabelValues(endpoint, kind).Inc()
}

// IncrPageRender counts a rendered page; outcome is ok, empty or error.
func (m *Metrics) IncrPageRender(page, outcome string) {
	m.pageRenders.WithLabelValues(page, outcome).Inc()
}

// IncrSession counts a session lifecycle event.
func (m *Metrics) IncrSession(event string) {
	m.sessions.WithLabelValues(event).Inc()
}

// SetCircuitState publishes the breaker state (0 closed, 1 half-open, 2 open).
func (m *Metrics) SetCircuitState(state int) {
	m.circuitState.Set(float64(state))
}

// Snapshot returns the values served by GET /status.
func (m *Metrics) Snapshot() *domain.StatusSnapshot {
	snap := &domain.StatusSnapshot{
		ErrorsByKind: map[string]int64{},
		CircuitState: "closed",
	}

	families, err := m.Registry.Gather()
	if err != nil {
		return snap
	}
	for _, mf := range families {
		switch mf.GetName() {
		case "web_api_request_duration_seconds":
			for _, metric := range mf.GetMetric() {
				snap.APICalls += int64(metric.GetHistogram().GetSampleCount())
			}
		case "web_api_errors_total":
			for _, metric := range mf.GetMetric() {
				v := int64(metric.GetCounter().GetValue())
				snap.APIErrors += v
				snap.ErrorsByKind[labelValue(metric, "kind")] += v
			}
		}
	}

	snap.SessionsOpened = int64(getCounterValue(m.sessions, SessionOpened))
	snap.SessionsClosed = int64(getCounterValue(m.sessions, SessionClosed))
	if snap.APICalls > 0 {
		snap.ErrorRate = float64(snap.APIErrors) / float64(snap.APICalls)
	}

	g := &dto.Metric{}
	if err := m.circuitState.Write(g); err == nil {
		switch g.GetGauge().GetValue() {
		case 1:
			snap.CircuitState = "half-open"
		case 2:
			snap.CircuitState = "open"
		}
	}
	return snap
}

func labelValue(metric *dto.Metric, name string) string {
	for _, lp := range metric.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
