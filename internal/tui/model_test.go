package tui_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/boddenberg/bank-dashboard-go/internal/domain"
	"github.com/boddenberg/bank-dashboard-go/internal/infra/credentials"
	"github.com/boddenberg/bank-dashboard-go/internal/infra/observability"
	"github.com/boddenberg/bank-dashboard-go/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// --- Mocks ---

type mockBank struct {
	mu       sync.Mutex
	balances map[domain.AccountNumber]decimal.Decimal
	order    []domain.AccountNumber
	submits  int
}

func newMockBank() *mockBank {
	return &mockBank{
		balances: map[domain.AccountNumber]decimal.Decimal{
			"1001": decimal.NewFromInt(100),
			"1002": decimal.NewFromInt(50),
		},
		order: []domain.AccountNumber{"1001", "1002"},
	}
}

func (b *mockBank) Login(_ context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error) {
	if req.Password != "secret1" {
		return nil, &domain.ErrService{Service: "bank", Status: http.StatusUnauthorized, Message: "Invalid username or password"}
	}
	return &domain.AuthResponse{Token: "tok", User: domain.User{ID: "1", Username: req.Username, FullName: "Demo User"}}, nil
}

func (b *mockBank) Register(_ context.Context, req *domain.RegisterRequest) (*domain.AuthResponse, error) {
	return &domain.AuthResponse{Token: "tok", User: domain.User{ID: "2", Username: req.Username, FullName: req.FullName}}, nil
}

func (b *mockBank) ListAccounts(_ context.Context, _ string) ([]domain.Account, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []domain.Account
	for _, n := range b.order {
		out = append(out, domain.Account{AccountNumber: n, Balance: b.balances[n], AccountType: "Checking"})
	}
	return out, nil
}

func (b *mockBank) GetAccountDetail(_ context.Context, _ string, n domain.AccountNumber) (*domain.AccountDetail, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return &domain.AccountDetail{AccountNumber: n, Balance: b.balances[n]}, nil
}

func (b *mockBank) Submit(_ context.Context, _ string, kind domain.TransactionKind, n domain.AccountNumber, amount decimal.Decimal) (*domain.MessageResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.submits++
	if kind == domain.Withdraw {
		if b.balances[n].LessThan(amount) {
			return nil, &domain.ErrService{Service: "bank", Status: http.StatusBadRequest, Message: "Insufficient funds"}
		}
		b.balances[n] = b.balances[n].Sub(amount)
		return &domain.MessageResponse{Message: "Withdrawal successful"}, nil
	}
	b.balances[n] = b.balances[n].Add(amount)
	return &domain.MessageResponse{Message: "Deposit successful"}, nil
}

// --- Helpers ---

func newModel(bank *mockBank) (tea.Model, *credentials.MemoryStore) {
	creds := credentials.NewMemoryStore()
	m := tui.New(context.Background(), tui.Deps{
		API:     bank,
		Auth:    bank,
		Creds:   creds,
		Metrics: observability.NewMetrics(),
		Logger:  zap.NewNop(),
	})
	return m, creds
}

// send applies msg and runs every resulting command to completion.
func send(m tea.Model, msg tea.Msg) tea.Model {
	m, cmd := m.Update(msg)
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch out := c().(type) {
		case tea.BatchMsg:
			queue = append(queue, out...)
		case tea.QuitMsg:
		default:
			var next tea.Cmd
			m, next = m.Update(out)
			queue = append(queue, next)
		}
	}
	return m
}

func typeText(m tea.Model, s string) tea.Model {
	return send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func key(m tea.Model, k tea.KeyType) tea.Model {
	return send(m, tea.KeyMsg{Type: k})
}

func login(t *testing.T, m tea.Model, password string) tea.Model {
	t.Helper()
	m = typeText(m, "demo")
	m = key(m, tea.KeyTab)
	m = typeText(m, password)
	return key(m, tea.KeyEnter)
}

// --- Tests ---

func TestLoginShowsDashboard(t *testing.T) {
	m, creds := newModel(newMockBank())

	m = login(t, m, "secret1")

	view := m.View()
	if !strings.Contains(view, "Welcome, Demo User") {
		t.Fatalf("expected dashboard, got:\n%s", view)
	}
	if !strings.Contains(view, "$100.00") {
		t.Errorf("expected first account balance, got:\n%s", view)
	}
	if token, err := creds.Token(context.Background()); err != nil || token != "tok" {
		t.Errorf("expected stored token, got '%s' (%v)", token, err)
	}
}

func TestLoginFailureStaysOnForm(t *testing.T) {
	m, _ := newModel(newMockBank())

	m = login(t, m, "wrong")

	view := m.View()
	if !strings.Contains(view, "Invalid username or password") {
		t.Errorf("expected service message, got:\n%s", view)
	}
	if strings.Contains(view, "Welcome") {
		t.Error("expected dashboard hidden")
	}
}

func TestDepositFromKeyboard(t *testing.T) {
	bank := newMockBank()
	m, _ := newModel(bank)
	m = login(t, m, "secret1")

	m = typeText(m, "50")
	m = typeText(m, "d")

	view := m.View()
	if !strings.Contains(view, "Deposit successful") {
		t.Errorf("expected success notice, got:\n%s", view)
	}
	if !strings.Contains(view, "$150.00") {
		t.Errorf("expected refreshed balance, got:\n%s", view)
	}
	if bank.submits != 1 {
		t.Errorf("expected 1 submission, got %d", bank.submits)
	}
}

func TestInvalidAmountNeverSubmits(t *testing.T) {
	bank := newMockBank()
	m, _ := newModel(bank)
	m = login(t, m, "secret1")

	m = typeText(m, "w")

	if !strings.Contains(m.View(), domain.MsgInvalidAmount) {
		t.Errorf("expected validation notice, got:\n%s", m.View())
	}
	if bank.submits != 0 {
		t.Errorf("expected no submission, got %d", bank.submits)
	}
}

func TestSelectSecondAccount(t *testing.T) {
	m, _ := newModel(newMockBank())
	m = login(t, m, "secret1")

	m = key(m, tea.KeyDown)

	if !strings.Contains(m.View(), "Account  1002") {
		t.Errorf("expected detail of 1002, got:\n%s", m.View())
	}
}

func TestLogoutClearsCredential(t *testing.T) {
	m, creds := newModel(newMockBank())
	m = login(t, m, "secret1")

	m = typeText(m, "l")

	if !strings.Contains(m.View(), "Sign in") {
		t.Errorf("expected login form, got:\n%s", m.View())
	}
	if _, err := creds.Token(context.Background()); !errors.Is(err, domain.ErrNoCredential) {
		t.Errorf("expected credential cleared, got %v", err)
	}
}

func TestSwitchToRegister(t *testing.T) {
	m, _ := newModel(newMockBank())

	m = key(m, tea.KeyCtrlR)
	if !strings.Contains(m.View(), "Create account") {
		t.Fatalf("expected register form, got:\n%s", m.View())
	}

	m = typeText(m, "newbie")
	m = key(m, tea.KeyTab)
	m = typeText(m, "secret1")
	m = key(m, tea.KeyTab)
	m = typeText(m, "New Bie")
	m = key(m, tea.KeyTab)
	m = typeText(m, "n@example.com")
	m = key(m, tea.KeyEnter)

	if !strings.Contains(m.View(), "Welcome, New Bie") {
		t.Errorf("expected dashboard after register, got:\n%s", m.View())
	}
}

func TestRejectedWhileBusyIsShown(t *testing.T) {
	bank := newMockBank()
	m, _ := newModel(bank)
	m = login(t, m, "secret1")
	m = typeText(m, "50")

	// deposit dispatched but not yet answered
	m, pending := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	if pending == nil {
		t.Fatal("expected a submission command")
	}
	m = typeText(m, "w")

	if !strings.Contains(m.View(), domain.MsgTransactionBusy) {
		t.Errorf("expected busy notice, got:\n%s", m.View())
	}

	m = send(m, pending())

	view := m.View()
	if strings.Contains(view, domain.MsgTransactionBusy) {
		t.Error("expected busy notice gone once the deposit completes")
	}
	if !strings.Contains(view, "Deposit successful") {
		t.Errorf("expected success notice, got:\n%s", view)
	}
	if bank.submits != 1 {
		t.Errorf("expected 1 submission, got %d", bank.submits)
	}
}

func TestLoadingAccountsSuppressesDashboard(t *testing.T) {
	bank := newMockBank()
	m, _ := newModel(bank)
	m = typeText(m, "demo")
	m = key(m, tea.KeyTab)
	m = typeText(m, "secret1")

	// sign in, but hold the account list request
	m, signIn := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m, load := m.Update(signIn())
	if load == nil {
		t.Fatal("expected the account list request")
	}

	view := m.View()
	if !strings.Contains(view, "Loading accounts...") {
		t.Fatalf("expected loading state, got:\n%s", view)
	}
	if strings.Contains(view, "Amount:") || strings.Contains(view, "deposit") {
		t.Errorf("expected nothing but the loading state, got:\n%s", view)
	}

	m = typeText(m, "5")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	if cmd != nil || bank.submits != 0 {
		t.Errorf("expected keys ignored while loading, got %d submissions", bank.submits)
	}

	m = send(m, load())

	view = m.View()
	if !strings.Contains(view, "Amount: $▏") {
		t.Errorf("expected empty amount after loading, got:\n%s", view)
	}
	if !strings.Contains(view, "Type     Checking") {
		t.Errorf("expected selected account type in detail, got:\n%s", view)
	}
}
