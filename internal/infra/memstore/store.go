// Package memstore is the in-memory backend of devbank. It implements
// port.UserStore and port.LedgerStore; data lives for the process lifetime.
package memstore

import (
	"context"
	"strings"
	"sync"

	"github.com/boddenberg/bank-dashboard-go/internal/domain"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("memstore")

// Store holds users and accounts.
type Store struct {
	mu       sync.RWMutex
	users    map[string]*domain.UserRecord // by lowercase username
	accounts map[domain.AccountNumber]*domain.LedgerAccount
	owned    map[string][]domain.AccountNumber // owner -> accounts in opening order
}

// New creates an empty store.
func New() *Store {
	return &Store{
		users:    make(map[string]*domain.UserRecord),
		accounts: make(map[domain.AccountNumber]*domain.LedgerAccount),
		owned:    make(map[string][]domain.AccountNumber),
	}
}

// ============================================================
// Users
// ============================================================

func (s *Store) CreateUser(ctx context.Context, user *domain.UserRecord) error {
	_, span := tracer.Start(ctx, "MemStore.CreateUser")
	defer span.End()

	key := strings.ToLower(user.Username)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[key]; ok {
		return &domain.ErrConflict{Message: "Username already exists"}
	}
	u := *user
	s.users[key] = &u
	return nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.UserRecord, error) {
	_, span := tracer.Start(ctx, "MemStore.GetUserByUsername")
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[strings.ToLower(username)]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "user", ID: username}
	}
	cp := *u
	return &cp, nil
}

// ============================================================
// Accounts
// ============================================================

func (s *Store) CreateAccount(ctx context.Context, owner string, account domain.Account) error {
	_, span := tracer.Start(ctx, "MemStore.CreateAccount")
	defer span.End()
	span.SetAttributes(attribute.String("account.number", account.AccountNumber.String()))

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[account.AccountNumber]; ok {
		return &domain.ErrConflict{Message: "Account already exists"}
	}
	s.accounts[account.AccountNumber] = &domain.LedgerAccount{Owner: owner, Account: account}
	s.owned[owner] = append(s.owned[owner], account.AccountNumber)
	return nil
}

func (s *Store) ListAccounts(ctx context.Context, owner string) ([]domain.Account, error) {
	_, span := tracer.Start(ctx, "MemStore.ListAccounts")
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()

	numbers := s.owned[owner]
	accounts := make([]domain.Account, 0, len(numbers))
	for _, n := range numbers {
		accounts = append(accounts, s.accounts[n].Account)
	}
	return accounts, nil
}

func (s *Store) GetAccount(ctx context.Context, number domain.AccountNumber) (*domain.LedgerAccount, error) {
	_, span := tracer.Start(ctx, "MemStore.GetAccount")
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[number]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "account", ID: number.String()}
	}
	cp := *acc
	cp.Transactions = append([]domain.Transaction(nil), acc.Transactions...)
	return &cp, nil
}

func (s *Store) Append(ctx context.Context, number domain.AccountNumber, balance decimal.Decimal, tx domain.Transaction) error {
	_, span := tracer.Start(ctx, "MemStore.Append")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[number]
	if !ok {
		return &domain.ErrNotFound{Resource: "account", ID: number.String()}
	}
	acc.Account.Balance = balance
	acc.Transactions = append(acc.Transactions, tx)
	return nil
}
