package domain

// ============================================================
// Health & status responses
// ============================================================

// HealthStatus is returned by GET /readyz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded, unhealthy
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an upstream dependency.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latencyMs"`
	LastChecked string `json:"lastChecked"`
	Error       string `json:"error,omitempty"`
}

// StatusSnapshot is returned by GET /status.
type StatusSnapshot struct {
	APICalls       int64            `json:"apiCalls"`
	APIErrors      int64            `json:"apiErrors"`
	ErrorRate      float64          `json:"errorRate"`
	ErrorsByKind   map[string]int64 `json:"errorsByKind"`
	SessionsOpened int64            `json:"sessionsOpened"`
	SessionsClosed int64            `json:"sessionsClosed"`
	CircuitState   string           `json:"circuitState"`
}
