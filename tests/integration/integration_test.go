package integration_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/boddenberg/bank-dashboard-go/internal/dashboard"
	"github.com/boddenberg/bank-dashboard-go/internal/domain"
	"github.com/boddenberg/bank-dashboard-go/internal/handler"
	"github.com/boddenberg/bank-dashboard-go/internal/infra/client"
	"github.com/boddenberg/bank-dashboard-go/internal/infra/credentials"
	"github.com/boddenberg/bank-dashboard-go/internal/infra/memstore"
	"github.com/boddenberg/bank-dashboard-go/internal/infra/observability"
	"github.com/boddenberg/bank-dashboard-go/internal/infra/resilience"
	"github.com/boddenberg/bank-dashboard-go/internal/service"
	"github.com/boddenberg/bank-dashboard-go/internal/session"

	"go.uber.org/zap"
)

// startDevbank runs a seeded devbank and returns a client pointed at it.
func startDevbank(t *testing.T) (*client.BankClient, *observability.Metrics) {
	t.Helper()
	logger := zap.NewNop()

	store := memstore.New()
	ledger := service.NewLedgerService(store, logger)
	auth := service.NewAuthService(store, ledger, "integration-secret", time.Hour, logger)
	if err := service.Seed(context.Background(), auth, []service.SeedUser{service.DemoUser}, logger); err != nil {
		t.Fatalf("seed: %v", err)
	}

	server := httptest.NewServer(handler.NewRouter(ledger, auth, observability.NewMetrics(), logger))
	t.Cleanup(server.Close)

	metrics := observability.NewMetrics()
	cb := resilience.NewCircuitBreaker("bank-api", resilience.DefaultConfig(), metrics.SetBreakerState)
	bank := client.NewBankClient(&http.Client{Timeout: 5 * time.Second}, server.URL+"/api", cb, metrics, logger)
	return bank, metrics
}

func settle(t *testing.T, r *dashboard.Runner) dashboard.Snapshot {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Settle(ctx); err != nil {
		t.Fatalf("runner did not settle: %v", err)
	}
	snap, err := r.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	return snap
}

// TestIntegration_FullFlow signs in against devbank, mounts a dashboard and
// runs transactions through the real HTTP client.
func TestIntegration_FullFlow(t *testing.T) {
	bank, metrics := startDevbank(t)
	creds := credentials.NewMemoryStore()
	ctx := context.Background()

	user, err := session.SignIn(ctx, bank, creds, service.DemoUser.Register.Username, service.DemoUser.Register.Password)
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if user.FullName != "Demo User" {
		t.Errorf("expected 'Demo User', got '%s'", user.FullName)
	}

	controller := session.NewController(func(u domain.User) *dashboard.Runner {
		r := dashboard.NewRunner(ctx, dashboard.New(bank, creds, u, metrics, zap.NewNop()))
		t.Cleanup(r.Close)
		return r
	}, zap.NewNop())
	runner, err := controller.Login(user)
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	// --- Mount ---
	if err := runner.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	snap := settle(t, runner)
	if len(snap.Accounts) != 2 {
		t.Fatalf("expected 2 seeded accounts, got %d", len(snap.Accounts))
	}
	checking := snap.Accounts[0]
	if snap.Selected != checking.AccountNumber || snap.Detail == nil {
		t.Fatalf("expected first account selected with detail, got %+v", snap)
	}
	if got := domain.FormatMoney(snap.Detail.Balance); got != "1550.51" {
		t.Errorf("expected balance 1550.51, got %s", got)
	}
	if len(snap.Detail.RecentTransactions) != 3 {
		t.Errorf("expected 3 seeded transactions, got %d", len(snap.Detail.RecentTransactions))
	}

	// --- Deposit ---
	if err := runner.Submit(domain.Deposit, "49.49"); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	snap = settle(t, runner)
	if !snap.TransactionStatus.IsSuccess() || snap.TransactionStatus.Message != "Deposit successful" {
		t.Errorf("expected deposit success, got %+v", snap.TransactionStatus)
	}
	if got := domain.FormatMoney(snap.Detail.Balance); got != "1600.00" {
		t.Errorf("expected balance 1600.00, got %s", got)
	}
	if snap.Amount != "" {
		t.Errorf("expected amount cleared, got '%s'", snap.Amount)
	}
	if snap.Detail.RecentTransactions[0].Type != domain.Deposit {
		t.Errorf("expected newest transaction first, got %s", snap.Detail.RecentTransactions[0].Type)
	}

	// --- Withdraw more than the balance ---
	if err := runner.Submit(domain.Withdraw, "99999"); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	snap = settle(t, runner)
	if !snap.TransactionStatus.IsError() || snap.TransactionStatus.Message != "Insufficient funds" {
		t.Errorf("expected 'Insufficient funds', got %+v", snap.TransactionStatus)
	}
	if got := domain.FormatMoney(snap.Detail.Balance); got != "1600.00" {
		t.Errorf("expected balance unchanged, got %s", got)
	}
	if snap.Amount != "99999" {
		t.Errorf("expected amount kept, got '%s'", snap.Amount)
	}

	// --- Select the second account ---
	savings := snap.Accounts[1]
	if err := runner.Select(savings.AccountNumber); err != nil {
		t.Fatalf("select: %v", err)
	}
	snap = settle(t, runner)
	if snap.Detail == nil || snap.Detail.AccountNumber != savings.AccountNumber {
		t.Fatalf("expected detail of %s, got %+v", savings.AccountNumber, snap.Detail)
	}
	if _, ok := snap.Notice(); ok {
		t.Error("expected notices cleared by selection")
	}

	// --- Logout ---
	if err := controller.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if controller.View() != session.ViewLogin {
		t.Errorf("expected login view, got %s", controller.View())
	}
	if _, err := creds.Token(ctx); !errors.Is(err, domain.ErrNoCredential) {
		t.Errorf("expected credential cleared, got %v", err)
	}
}

func TestIntegration_WrongPassword(t *testing.T) {
	bank, _ := startDevbank(t)

	_, err := session.SignIn(context.Background(), bank, credentials.NewMemoryStore(), "demo", "wrong-password")

	var svcErr *domain.ErrService
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected ErrService, got %v", err)
	}
	if svcErr.Status != http.StatusUnauthorized || svcErr.Message != "Invalid username or password" {
		t.Errorf("unexpected error %+v", svcErr)
	}
}

func TestIntegration_RegisterGetsStarterAccount(t *testing.T) {
	bank, metrics := startDevbank(t)
	creds := credentials.NewMemoryStore()
	ctx := context.Background()

	user, err := session.SignUp(ctx, bank, creds, domain.RegisterRequest{
		Username: "newbie",
		Password: "secret1",
		FullName: "New Bie",
		Email:    "newbie@example.com",
	})
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}

	runner := dashboard.NewRunner(ctx, dashboard.New(bank, creds, user, metrics, zap.NewNop()))
	t.Cleanup(runner.Close)
	_ = runner.Init()
	snap := settle(t, runner)

	if len(snap.Accounts) != 1 || !snap.Accounts[0].Balance.IsZero() {
		t.Fatalf("expected one empty starter account, got %+v", snap.Accounts)
	}
	if snap.Detail == nil || len(snap.Detail.RecentTransactions) != 0 {
		t.Errorf("expected empty history, got %+v", snap.Detail)
	}
}
