package session

import (
	"context"
	"strings"

	"github.com/boddenberg/bank-dashboard-go/internal/domain"
	"github.com/boddenberg/bank-dashboard-go/internal/port"
)

// SignIn exchanges username and password for a token and stores it.
func SignIn(ctx context.Context, auth port.Authenticator, creds port.CredentialStore, username, password string) (domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.User{}, &domain.ErrValidation{Field: "credentials", Message: "Username and password are required"}
	}

	resp, err := auth.Login(ctx, &domain.LoginRequest{Username: username, Password: password})
	if err != nil {
		return domain.User{}, err
	}
	if err := creds.Save(ctx, resp.Token); err != nil {
		return domain.User{}, err
	}
	return resp.User, nil
}

// SignUp creates the user, then stores the returned token.
func SignUp(ctx context.Context, auth port.Authenticator, creds port.CredentialStore, req domain.RegisterRequest) (domain.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Password == "" {
		return domain.User{}, &domain.ErrValidation{Field: "credentials", Message: "Username and password are required"}
	}

	resp, err := auth.Register(ctx, &req)
	if err != nil {
		return domain.User{}, err
	}
	if err := creds.Save(ctx, resp.Token); err != nil {
		return domain.User{}, err
	}
	return resp.User, nil
}
