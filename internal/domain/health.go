package domain

// ============================================================
// Health & Metrics API Responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an upstream dependency.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LastChecked string `json:"lastChecked"`
}

// ClientMetrics is returned by GET /v1/metrics/client.
type ClientMetrics struct {
	Fetches         int64   `json:"fetches"`
	FetchErrors     int64   `json:"fetchErrors"`
	Deposits        int64   `json:"deposits"`
	Withdrawals     int64   `json:"withdrawals"`
	RejectedLocally int64   `json:"rejectedLocally"`
	StaleResponses  int64   `json:"staleResponses"`
	ErrorRate       float64 `json:"errorRate"`
	CircuitBreaker  string  `json:"circuitBreaker"`
}

// SuccessResponse wraps a successful single-entity response.
type SuccessResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}
