package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/boddenberg/bank-dashboard-go/internal/domain"
	"github.com/boddenberg/bank-dashboard-go/internal/handler"
	"github.com/boddenberg/bank-dashboard-go/internal/infra/memstore"
	"github.com/boddenberg/bank-dashboard-go/internal/infra/observability"
	"github.com/boddenberg/bank-dashboard-go/internal/service"

	"go.uber.org/zap"
)

func newDevbank(t *testing.T) (http.Handler, *observability.Metrics) {
	t.Helper()
	store := memstore.New()
	ledger := service.NewLedgerService(store, zap.NewNop())
	auth := service.NewAuthService(store, ledger, "test-secret", time.Hour, zap.NewNop())
	metrics := observability.NewMetrics()
	return handler.NewRouter(ledger, auth, metrics, zap.NewNop()), metrics
}

func do(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func register(t *testing.T, h http.Handler, username string) domain.AuthResponse {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/auth/register", "",
		`{"username":"`+username+`","password":"secret1","full_name":"Test User","email":"t@example.com"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp domain.AuthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var msg domain.MessageResponse
	if err := json.NewDecoder(rec.Body).Decode(&msg); err != nil {
		t.Fatalf("decode message: %v", err)
	}
	return msg.Message
}

func TestHealthz(t *testing.T) {
	h, _ := newDevbank(t)

	rec := do(t, h, http.MethodGet, "/healthz", "", "")

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMetrics(t *testing.T) {
	h, _ := newDevbank(t)
	do(t, h, http.MethodGet, "/healthz", "", "")

	rec := do(t, h, http.MethodGet, "/metrics", "", "")

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "devbank_requests_total") {
		t.Error("expected request counter in exposition")
	}
}

func TestAccounts_RequireToken(t *testing.T) {
	h, _ := newDevbank(t)

	for _, token := range []string{"", "garbage"} {
		rec := do(t, h, http.MethodGet, "/api/accounts/all", token, "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401 for token '%s', got %d", token, rec.Code)
		}
		if message(t, rec) == "" {
			t.Error("expected {message} body")
		}
	}
}

func TestAccountFlow(t *testing.T) {
	h, _ := newDevbank(t)
	auth := register(t, h, "erin")

	rec := do(t, h, http.MethodGet, "/api/accounts/all", auth.Token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var list domain.AccountList
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list.Accounts) != 1 {
		t.Fatalf("expected starter account, got %d", len(list.Accounts))
	}
	n := list.Accounts[0].AccountNumber

	rec = do(t, h, http.MethodPost, "/api/accounts/deposit", auth.Token,
		`{"amount":50.25,"account_number":"`+n.String()+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := message(t, rec); got != "Deposit successful" {
		t.Errorf("unexpected message '%s'", got)
	}

	rec = do(t, h, http.MethodGet, "/api/accounts/details/"+n.String(), auth.Token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var raw map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if balance, ok := raw["balance"].(float64); !ok || balance != 50.25 {
		t.Errorf("expected numeric balance 50.25, got %#v", raw["balance"])
	}
	if txs, ok := raw["recent_transactions"].([]any); !ok || len(txs) != 1 {
		t.Errorf("expected one transaction, got %#v", raw["recent_transactions"])
	}
}

func TestWithdraw_InsufficientFunds(t *testing.T) {
	h, _ := newDevbank(t)
	auth := register(t, h, "frank")
	rec := do(t, h, http.MethodGet, "/api/accounts/all", auth.Token, "")
	var list domain.AccountList
	_ = json.NewDecoder(rec.Body).Decode(&list)
	n := list.Accounts[0].AccountNumber.String()

	rec = do(t, h, http.MethodPost, "/api/accounts/withdraw", auth.Token,
		`{"amount":99999,"account_number":"`+n+`"}`)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if got := message(t, rec); got != "Insufficient funds" {
		t.Errorf("expected 'Insufficient funds', got '%s'", got)
	}
}

func TestDetail_ForeignAccountNotFound(t *testing.T) {
	h, _ := newDevbank(t)
	owner := register(t, h, "gina")
	other := register(t, h, "hank")

	rec := do(t, h, http.MethodGet, "/api/accounts/all", owner.Token, "")
	var list domain.AccountList
	_ = json.NewDecoder(rec.Body).Decode(&list)

	rec = do(t, h, http.MethodGet, "/api/accounts/details/"+list.Accounts[0].AccountNumber.String(), other.Token, "")

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if got := message(t, rec); got != "Account not found" {
		t.Errorf("expected 'Account not found', got '%s'", got)
	}
}

func TestLogin(t *testing.T) {
	h, _ := newDevbank(t)
	register(t, h, "ivy")

	rec := do(t, h, http.MethodPost, "/api/auth/login", "", `{"username":"ivy","password":"secret1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = do(t, h, http.MethodPost, "/api/auth/login", "", `{"username":"ivy","password":"nope"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestInvalidBody(t *testing.T) {
	h, _ := newDevbank(t)

	rec := do(t, h, http.MethodPost, "/api/auth/login", "", `{`)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if got := message(t, rec); got != "Invalid request body" {
		t.Errorf("unexpected message '%s'", got)
	}
}

// --- Ops router ---

type stubBreaker struct{ state string }

func (b stubBreaker) BreakerName() string  { return "bank" }
func (b stubBreaker) BreakerState() string { return b.state }

func TestOpsHealthz_DegradedWhenOpen(t *testing.T) {
	h := handler.NewOpsRouter(stubBreaker{state: "open"}, observability.NewMetrics(), zap.NewNop())

	rec := do(t, h, http.MethodGet, "/healthz", "", "")

	var health domain.HealthStatus
	if err := json.NewDecoder(rec.Body).Decode(&health); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if health.Status != "degraded" {
		t.Errorf("expected degraded, got '%s'", health.Status)
	}
}

func TestOpsClientMetrics(t *testing.T) {
	metrics := observability.NewMetrics()
	metrics.RecordFetch(observability.OpDeposit, observability.OutcomeOK, time.Millisecond)
	metrics.SetBreakerState("bank", "closed")
	h := handler.NewOpsRouter(stubBreaker{state: "closed"}, metrics, zap.NewNop())

	rec := do(t, h, http.MethodGet, "/v1/metrics/client", "", "")

	var snap domain.ClientMetrics
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Deposits != 1 || snap.CircuitBreaker != "closed" {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}
