package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/boddenberg/bank-dashboard-go/internal/domain"

	"go.uber.org/zap"
)

// SeedAccount is an account created at startup with an opening history.
type SeedAccount struct {
	Type     string
	Deposits []string
	Withdraw []string
}

// SeedUser is a user created at startup.
type SeedUser struct {
	Register domain.RegisterRequest
	Accounts []SeedAccount
}

// DemoUser is the user devbank starts with.
var DemoUser = SeedUser{
	Register: domain.RegisterRequest{
		Username: "demo",
		Password: "demo1234",
		FullName: "Demo User",
		Email:    "demo@devbank.local",
	},
	Accounts: []SeedAccount{
		{Type: "Checking", Deposits: []string{"1200.00", "450.50"}, Withdraw: []string{"99.99"}},
		{Type: "Savings", Deposits: []string{"320.75"}},
	},
}

// Seed creates users and their accounts. Deposits run before withdrawals.
func Seed(ctx context.Context, auth *AuthService, users []SeedUser, logger *zap.Logger) error {
	for _, su := range users {
		req := su.Register
		user, err := auth.createUser(ctx, &req)
		if err != nil {
			return fmt.Errorf("seed user %s: %w", su.Register.Username, err)
		}

		for _, sa := range su.Accounts {
			acc, err := auth.ledger.OpenAccount(ctx, user.ID, sa.Type)
			if err != nil {
				return fmt.Errorf("seed account: %w", err)
			}
			for _, amount := range sa.Deposits {
				tx := &domain.TransactionRequest{Amount: json.Number(amount), AccountNumber: acc.AccountNumber}
				if _, err := auth.ledger.Deposit(ctx, user.ID, tx); err != nil {
					return fmt.Errorf("seed deposit: %w", err)
				}
			}
			for _, amount := range sa.Withdraw {
				tx := &domain.TransactionRequest{Amount: json.Number(amount), AccountNumber: acc.AccountNumber}
				if _, err := auth.ledger.Withdraw(ctx, user.ID, tx); err != nil {
					return fmt.Errorf("seed withdrawal: %w", err)
				}
			}
		}

		logger.Info("seeded user",
			zap.String("username", user.Username),
			zap.Int("accounts", len(su.Accounts)),
		)
	}
	return nil
}
