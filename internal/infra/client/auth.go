package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tecnomaub/rupia-wallet-bfa/internal/domain"
)

// AuthClient forwards credentials to the upstream /auth endpoints.
type AuthClient struct {
	up *Upstream
}

// NewAuthClient creates a new AuthClient.
func NewAuthClient(up *Upstream) *AuthClient {
	return &AuthClient{up: up}
}

// Login exchanges email and password for an upstream token.
func (c *AuthClient) Login(ctx context.Context, email, password string) (*domain.UpstreamLogin, error) {
	ctx, span := tracer.Start(ctx, "AuthClient.Login")
	defer span.End()

	var raw json.RawMessage
	err := c.up.do(ctx, call{
		op:       "Login",
		service:  "auth",
		method:   http.MethodPost,
		path:     "/auth/login",
		body:     map[string]string{"email": email, "password": password},
		out:      &raw,
		resource: "user",
	})
	var notFound *domain.ErrNotFound
	if errors.As(err, &notFound) {
		return nil, &domain.ErrUnauthorized{Message: "invalid email or password"}
	}
	if err != nil {
		return nil, err
	}

	var w wireLogin
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, &domain.ErrExternalService{Service: "auth", Err: err}
	}
	login, err := w.toDomain()
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "auth", Err: err}
	}
	if login.User.Email == "" {
		login.User.Email = email
	}
	return login, nil
}

// ResetPassword sets a new password using the token from the reset e-mail.
func (c *AuthClient) ResetPassword(ctx context.Context, resetToken, password string) error {
	ctx, span := tracer.Start(ctx, "AuthClient.ResetPassword")
	defer span.End()

	return c.up.do(ctx, call{
		op:       "ResetPassword",
		service:  "auth",
		method:   http.MethodPost,
		path:     "/auth/resetPassword",
		body:     map[string]string{"token": resetToken, "password": password},
		resource: "reset token",
	})
}
