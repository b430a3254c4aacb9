package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/boddenberg/bank-dashboard-go/internal/domain"
	"github.com/boddenberg/bank-dashboard-go/internal/infra/observability"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// ListAccounts fetches every account of the token's owner (GET /accounts/all).
func (c *BankClient) ListAccounts(ctx context.Context, token string) ([]domain.Account, error) {
	ctx, span := tracer.Start(ctx, "BankClient.ListAccounts")
	defer span.End()

	var list domain.AccountList
	if err := c.call(ctx, observability.OpListAccounts, http.MethodGet, "/accounts/all", token, nil, &list); err != nil {
		return nil, err
	}
	if list.Accounts == nil {
		list.Accounts = []domain.Account{}
	}
	span.SetAttributes(attribute.Int("accounts.count", len(list.Accounts)))
	return list.Accounts, nil
}

// GetAccountDetail fetches balance and recent history of one account
// (GET /accounts/details/{accountNumber}).
func (c *BankClient) GetAccountDetail(ctx context.Context, token string, account domain.AccountNumber) (*domain.AccountDetail, error) {
	ctx, span := tracer.Start(ctx, "BankClient.GetAccountDetail")
	defer span.End()
	span.SetAttributes(attribute.String("account.number", account.String()))

	var detail domain.AccountDetail
	path := "/accounts/details/" + url.PathEscape(account.String())
	if err := c.call(ctx, observability.OpAccountDetail, http.MethodGet, path, token, nil, &detail); err != nil {
		return nil, err
	}
	if detail.RecentTransactions == nil {
		detail.RecentTransactions = []domain.Transaction{}
	}
	return &detail, nil
}

// Submit posts a deposit or withdrawal (POST /accounts/{deposit|withdraw}).
// The service's {message} is returned on success.
func (c *BankClient) Submit(ctx context.Context, token string, kind domain.TransactionKind, account domain.AccountNumber, amount decimal.Decimal) (*domain.MessageResponse, error) {
	if !kind.Valid() {
		return nil, &domain.ErrValidation{Field: "kind", Message: "unknown transaction kind"}
	}

	ctx, span := tracer.Start(ctx, "BankClient.Submit")
	defer span.End()
	span.SetAttributes(
		attribute.String("account.number", account.String()),
		attribute.String("transaction.kind", string(kind)),
	)

	op := observability.OpDeposit
	if kind == domain.Withdraw {
		op = observability.OpWithdraw
	}

	var resp domain.MessageResponse
	body := domain.NewTransactionRequest(account, amount)
	if err := c.call(ctx, op, http.MethodPost, "/accounts/"+kind.Endpoint(), token, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
