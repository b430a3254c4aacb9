// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the dashboard and
// session logic from the HTTP client and credential storage.
package port

import (
	"context"
	"time"

	"github.com/boddenberg/bank-dashboard-go/internal/domain"
	"github.com/shopspring/decimal"
)

// BankingAPI is the remote account/transaction service as seen by the client.
// Every call takes the bearer token explicitly.
type BankingAPI interface {
	ListAccounts(ctx context.Context, token string) ([]domain.Account, error)
	GetAccountDetail(ctx context.Context, token string, account domain.AccountNumber) (*domain.AccountDetail, error)
	Submit(ctx context.Context, token string, kind domain.TransactionKind, account domain.AccountNumber, amount decimal.Decimal) (*domain.MessageResponse, error)
}

// Authenticator exchanges credentials for a bearer token.
type Authenticator interface {
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error)
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.AuthResponse, error)
}

// CredentialStore holds the bearer token of the current session. The
// dashboard reads it on every fetch and clears it on logout.
type CredentialStore interface {
	Token(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	SetWithTTL(key string, value T, ttl time.Duration)
	Delete(key string)
}

// UserStore persists devbank users.
type UserStore interface {
	// CreateUser fails with domain.ErrConflict when the username is taken.
	CreateUser(ctx context.Context, user *domain.UserRecord) error
	// GetUserByUsername returns domain.ErrNotFound for unknown users.
	GetUserByUsername(ctx context.Context, username string) (*domain.UserRecord, error)
}

// LedgerStore persists devbank accounts and their history. Callers
// serialize balance checks themselves.
type LedgerStore interface {
	CreateAccount(ctx context.Context, owner string, account domain.Account) error
	ListAccounts(ctx context.Context, owner string) ([]domain.Account, error)
	// GetAccount returns domain.ErrNotFound for unknown accounts.
	GetAccount(ctx context.Context, number domain.AccountNumber) (*domain.LedgerAccount, error)
	// Append records tx and sets the new balance.
	Append(ctx context.Context, number domain.AccountNumber, balance decimal.Decimal, tx domain.Transaction) error
}
