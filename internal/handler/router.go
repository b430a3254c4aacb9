// Package handler serves HTTP: the devbank REST API and the operational
// endpoints of the terminal client.
package handler

import (
	"net/http"
	"time"

	"github.com/boddenberg/bank-dashboard-go/internal/domain"
	"github.com/boddenberg/bank-dashboard-go/internal/infra/observability"
	"github.com/boddenberg/bank-dashboard-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

func init() {
	// amounts and balances go out as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

// NewRouter creates the devbank router. Routes follow the REST surface the
// terminal client consumes, under /api.
func NewRouter(ledger *service.LedgerService, authSvc *service.AuthService, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(RequestMetricsMiddleware(metrics))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(nil))
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Route("/api", func(r chi.Router) {
		// =============================================
		// Authentication (public)
		// =============================================
		r.Post("/auth/register", authRegisterHandler(authSvc, logger))
		r.Post("/auth/login", authLoginHandler(authSvc, logger))

		// =============================================
		// Accounts (bearer token)
		// =============================================
		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(authSvc, logger))
			r.Get("/accounts/all", listAccountsHandler(ledger, logger))
			r.Get("/accounts/details/{accountNumber}", accountDetailHandler(ledger, logger))
			r.Post("/accounts/deposit", transactionHandler(ledger.Deposit, domain.Deposit, logger))
			r.Post("/accounts/withdraw", transactionHandler(ledger.Withdraw, domain.Withdraw, logger))
		})
	})

	return r
}

// BreakerStater reports the state of the client's circuit breaker.
type BreakerStater interface {
	BreakerName() string
	BreakerState() string
}

// NewOpsRouter creates the operational router of the terminal client:
// liveness, Prometheus metrics and a JSON metrics summary.
func NewOpsRouter(breaker BreakerStater, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", healthzHandler(breaker))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	r.Get("/v1/metrics/client", clientMetricsHandler(breaker, metrics))

	return r
}

// ============================================================
// Operational handlers
// ============================================================

func healthzHandler(breaker BreakerStater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)
		services := []domain.ServiceHealth{{Name: "self", Status: "healthy", LastChecked: now}}

		overall := "healthy"
		if breaker != nil {
			status := "healthy"
			switch breaker.BreakerState() {
			case "open":
				status, overall = "unhealthy", "degraded"
			case "half-open":
				status, overall = "degraded", "degraded"
			}
			services = append(services, domain.ServiceHealth{Name: breaker.BreakerName(), Status: status, LastChecked: now})
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{Status: overall, Services: services})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func clientMetricsHandler(breaker BreakerStater, metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := ""
		if breaker != nil {
			name = breaker.BreakerName()
		}
		writeJSON(w, http.StatusOK, metrics.Snapshot(name))
	}
}
