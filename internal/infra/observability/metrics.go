package observability

import (
	"time"

	"github.com/boddenberg/bank-dashboard-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Fetch operations and outcomes used as label values.
const (
	OpListAccounts  = "list_accounts"
	OpAccountDetail = "account_detail"
	OpDeposit       = "deposit"
	OpWithdraw      = "withdraw"
	OpLogin         = "login"
	OpRegister      = "register"

	OutcomeOK        = "ok"
	OutcomeService   = "service_error"
	OutcomeTransport = "transport_error"
)

var (
	fetchOps      = []string{OpListAccounts, OpAccountDetail, OpDeposit, OpWithdraw}
	fetchOutcomes = []string{OutcomeOK, OutcomeService, OutcomeTransport}
	breakerStates = []string{"closed", "half-open", "open"}
)

// Metrics holds all Prometheus metrics for bankdash and devbank.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	fetchDuration  *prometheus.HistogramVec
	fetchesTotal   *prometheus.CounterVec
	localRejects   *prometheus.CounterVec
	staleResponses *prometheus.CounterVec
	breakerState   *prometheus.GaugeVec
	requestsTotal  *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		fetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bankdash_fetch_duration_seconds",
				Help:    "Duration of banking service calls by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		fetchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankdash_fetches_total",
				Help: "Banking service calls by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		),
		localRejects: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankdash_validation_rejections_total",
				Help: "Submissions rejected before reaching the network.",
			},
			[]string{"field"},
		),
		staleResponses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankdash_stale_responses_total",
				Help: "Responses discarded because a newer request superseded them.",
			},
			[]string{"operation"},
		),
		breakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bankdash_circuit_breaker_state",
				Help: "Circuit breaker state: 0 closed, 1 half-open, 2 open.",
			},
			[]string{"name"},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "devbank_requests_total",
				Help: "Total devbank requests by route and status class.",
			},
			[]string{"route", "status"},
		),
	}
}

// RecordFetch records one banking service call.
func (m *Metrics) RecordFetch(operation, outcome string, d time.Duration) {
	m.fetchDuration.WithLabelValues(operation).Observe(d.Seconds())
	m.fetchesTotal.WithLabelValues(operation, outcome).Inc()
}

// IncrValidationReject counts a submission rejected locally.
func (m *Metrics) IncrValidationReject(field string) {
	m.localRejects.WithLabelValues(field).Inc()
}

// IncrStaleResponse counts a discarded out-of-date response.
func (m *Metrics) IncrStaleResponse(operation string) {
	m.staleResponses.WithLabelValues(operation).Inc()
}

// SetBreakerState publishes a circuit breaker state transition.
func (m *Metrics) SetBreakerState(name, state string) {
	for i, s := range breakerStates {
		if s == state {
			m.breakerState.WithLabelValues(name).Set(float64(i))
			return
		}
	}
}

// IncrRequest counts a devbank request.
func (m *Metrics) IncrRequest(route, status string) {
	m.requestsTotal.WithLabelValues(route, status).Inc()
}

// Snapshot summarizes client metrics for GET /v1/metrics/client.
func (m *Metrics) Snapshot(breaker string) *domain.ClientMetrics {
	var fetches, failures float64
	for _, op := range fetchOps {
		for _, outcome := range fetchOutcomes {
			v := getValue(m.fetchesTotal.WithLabelValues(op, outcome))
			fetches += v
			if outcome != OutcomeOK {
				failures += v
			}
		}
	}

	rejected := getValue(m.localRejects.WithLabelValues("amount")) +
		getValue(m.localRejects.WithLabelValues("account")) +
		getValue(m.localRejects.WithLabelValues("submission"))
	stale := getValue(m.staleResponses.WithLabelValues(OpListAccounts)) +
		getValue(m.staleResponses.WithLabelValues(OpAccountDetail))

	errorRate := float64(0)
	if fetches > 0 {
		errorRate = failures / fetches
	}

	state := "unknown"
	if breaker != "" {
		idx := int(getValue(m.breakerState.WithLabelValues(breaker)))
		if idx >= 0 && idx < len(breakerStates) {
			state = breakerStates[idx]
		}
	}

	return &domain.ClientMetrics{
		Fetches:         int64(fetches),
		FetchErrors:     int64(failures),
		Deposits:        int64(getValue(m.fetchesTotal.WithLabelValues(OpDeposit, OutcomeOK))),
		Withdrawals:     int64(getValue(m.fetchesTotal.WithLabelValues(OpWithdraw, OutcomeOK))),
		RejectedLocally: int64(rejected),
		StaleResponses:  int64(stale),
		ErrorRate:       errorRate,
		CircuitBreaker:  state,
	}
}

// getValue extracts the current float64 value of a counter or gauge.
func getValue(c prometheus.Metric) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	switch {
	case m.Counter != nil && m.Counter.Value != nil:
		return *m.Counter.Value
	case m.Gauge != nil && m.Gauge.Value != nil:
		return *m.Gauge.Value
	}
	return 0
}
