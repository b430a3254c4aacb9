package client

import (
	"context"
	"net/http"

	"github.com/boddenberg/bank-dashboard-go/internal/domain"
	"github.com/boddenberg/bank-dashboard-go/internal/infra/observability"
)

// Login exchanges username and password for a bearer token.
func (c *BankClient) Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error) {
	ctx, span := tracer.Start(ctx, "BankClient.Login")
	defer span.End()

	var resp domain.AuthResponse
	if err := c.call(ctx, observability.OpLogin, http.MethodPost, "/auth/login", "", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates a user and returns a bearer token for it.
func (c *BankClient) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.AuthResponse, error) {
	ctx, span := tracer.Start(ctx, "BankClient.Register")
	defer span.End()

	var resp domain.AuthResponse
	if err := c.call(ctx, observability.OpRegister, http.MethodPost, "/auth/register", "", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
