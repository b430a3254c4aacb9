package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/boddenberg/bank-dashboard-go/internal/domain"
	"github.com/boddenberg/bank-dashboard-go/internal/port"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var ledgerTracer = otel.Tracer("service/ledger")

const (
	recentTransactionsLimit = 10
	firstAccountNumber      = 10000001
)

// LedgerService applies deposits and withdrawals for devbank. Balance checks
// and updates are serialized, so concurrent withdrawals cannot overdraw.
type LedgerService struct {
	store  port.LedgerStore
	logger *zap.Logger

	mu   sync.Mutex
	next int64
	now  func() time.Time
}

// NewLedgerService creates a ledger on top of store.
func NewLedgerService(store port.LedgerStore, logger *zap.Logger) *LedgerService {
	return &LedgerService{
		store:  store,
		logger: logger,
		next:   firstAccountNumber,
		now:    time.Now,
	}
}

// ============================================================
// Accounts
// ============================================================

// OpenAccount creates an empty account for owner.
func (s *LedgerService) OpenAccount(ctx context.Context, owner, accountType string) (*domain.Account, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.OpenAccount")
	defer span.End()

	if accountType == "" {
		accountType = domain.DefaultAccountType
	}

	s.mu.Lock()
	number := domain.AccountNumber(fmt.Sprintf("%d", s.next))
	s.next++
	opened := s.now().UTC()
	s.mu.Unlock()

	account := domain.Account{
		AccountNumber: number,
		Balance:       decimal.Zero,
		AccountType:   accountType,
		DateOpened:    domain.Timestamp{Time: opened, Raw: opened.Format("2006-01-02")},
	}
	if err := s.store.CreateAccount(ctx, owner, account); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.logger.Info("account opened",
		zap.String("owner", owner),
		zap.String("account", number.String()),
		zap.String("type", accountType),
	)
	return &account, nil
}

// ListAccounts returns owner's accounts in opening order.
func (s *LedgerService) ListAccounts(ctx context.Context, owner string) ([]domain.Account, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.ListAccounts")
	defer span.End()

	accounts, err := s.store.ListAccounts(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	span.SetAttributes(attribute.Int("accounts.count", len(accounts)))
	return accounts, nil
}

// AccountDetail returns balance and the most recent transactions, newest
// first. Accounts of other owners are reported as not found.
func (s *LedgerService) AccountDetail(ctx context.Context, owner string, number domain.AccountNumber) (*domain.AccountDetail, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.AccountDetail")
	defer span.End()
	span.SetAttributes(attribute.String("account.number", number.String()))

	acc, err := s.owned(ctx, owner, number)
	if err != nil {
		return nil, err
	}

	recent := make([]domain.Transaction, 0, recentTransactionsLimit)
	for i := len(acc.Transactions) - 1; i >= 0 && len(recent) < recentTransactionsLimit; i-- {
		recent = append(recent, acc.Transactions[i])
	}

	return &domain.AccountDetail{
		AccountNumber:      acc.Account.AccountNumber,
		Balance:            acc.Account.Balance,
		DateOpened:         acc.Account.DateOpened,
		RecentTransactions: recent,
	}, nil
}

func (s *LedgerService) owned(ctx context.Context, owner string, number domain.AccountNumber) (*domain.LedgerAccount, error) {
	acc, err := s.store.GetAccount(ctx, number)
	if err != nil {
		return nil, err
	}
	if acc.Owner != owner {
		s.logger.Warn("account access denied",
			zap.String("owner", owner),
			zap.String("account", number.String()),
		)
		return nil, &domain.ErrNotFound{Resource: "account", ID: number.String()}
	}
	return acc, nil
}

// ============================================================
// Transactions — POST /accounts/{deposit|withdraw}
// ============================================================

// Deposit credits the account.
func (s *LedgerService) Deposit(ctx context.Context, owner string, req *domain.TransactionRequest) (*domain.MessageResponse, error) {
	return s.apply(ctx, owner, domain.Deposit, req)
}

// Withdraw debits the account. The balance may not go negative.
func (s *LedgerService) Withdraw(ctx context.Context, owner string, req *domain.TransactionRequest) (*domain.MessageResponse, error) {
	return s.apply(ctx, owner, domain.Withdraw, req)
}

func (s *LedgerService) apply(ctx context.Context, owner string, kind domain.TransactionKind, req *domain.TransactionRequest) (*domain.MessageResponse, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService."+string(kind))
	defer span.End()

	amount, err := parseAmount(req.Amount.String())
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.AccountNumber.String()) == "" {
		return nil, &domain.ErrValidation{Field: "account_number", Message: "Account number is required"}
	}
	span.SetAttributes(
		attribute.String("account.number", req.AccountNumber.String()),
		attribute.String("amount", amount.String()),
	)

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, err := s.owned(ctx, owner, req.AccountNumber)
	if err != nil {
		return nil, err
	}

	balance := acc.Account.Balance
	switch kind {
	case domain.Deposit:
		balance = balance.Add(amount)
	case domain.Withdraw:
		if balance.LessThan(amount) {
			s.logger.Warn("withdrawal rejected: insufficient funds",
				zap.String("account", req.AccountNumber.String()),
				zap.String("available", domain.FormatMoney(acc.Account.Balance)),
				zap.String("required", domain.FormatMoney(amount)),
			)
			return nil, &domain.ErrInsufficientFunds{
				Available: domain.FormatMoney(acc.Account.Balance),
				Required:  domain.FormatMoney(amount),
			}
		}
		balance = balance.Sub(amount)
	}

	now := s.now().UTC()
	tx := domain.Transaction{
		ID:     domain.TransactionID(uuid.NewString()),
		Date:   domain.Timestamp{Time: now, Raw: now.Format(time.RFC3339)},
		Type:   kind,
		Amount: amount,
	}
	if err := s.store.Append(ctx, req.AccountNumber, balance, tx); err != nil {
		return nil, fmt.Errorf("append transaction: %w", err)
	}

	s.logger.Info("transaction applied",
		zap.String("kind", string(kind)),
		zap.String("account", req.AccountNumber.String()),
		zap.String("amount", amount.String()),
		zap.String("balance", balance.String()),
	)

	message := "Deposit successful"
	if kind == domain.Withdraw {
		message = "Withdrawal successful"
	}
	return &domain.MessageResponse{Message: message}, nil
}

// parseAmount accepts positive amounts with at most two decimals.
func parseAmount(s string) (decimal.Decimal, error) {
	amount, ok := domain.ParseAmountLiteral(s)
	if !ok || !amount.IsPositive() {
		return decimal.Decimal{}, &domain.ErrValidation{Field: "amount", Message: "Amount must be a positive number"}
	}
	if !amount.Equal(amount.Round(2)) {
		return decimal.Decimal{}, &domain.ErrValidation{Field: "amount", Message: "Amount must have at most two decimal places"}
	}
	return amount, nil
}
