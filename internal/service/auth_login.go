package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/tecnomaub/rupia-wallet-bfa/internal/domain"
)

// ============================================================
// Login: POST /v1/auth/login
// ============================================================

// Login forwards the credentials upstream and opens a session for the
// returned token.
func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	ctx, span := tracer.Start(ctx, "AuthService.Login")
	defer span.End()

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, &domain.ErrValidation{Field: "email", Message: "is required"}
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, &domain.ErrValidation{Field: "email", Message: "is not a valid address"}
	}
	if req.Password == "" {
		return nil, &domain.ErrValidation{Field: "password", Message: "is required"}
	}

	up, err := s.auth.Login(ctx, email, req.Password)
	if err != nil {
		s.metrics.IncrLoginFailure()
		var unauthorized *domain.ErrUnauthorized
		if errors.As(err, &unauthorized) {
			s.logger.Warn("login rejected", zap.String("email", email))
			return nil, err
		}
		return nil, fmt.Errorf("upstream login: %w", err)
	}
	if up.Token == "" {
		s.metrics.IncrLoginFailure()
		return nil, &domain.ErrExternalService{Service: "rupia-api", Err: errors.New("login answered without a token")}
	}

	now := s.now()
	sess := &domain.Session{
		ID:        uuid.NewString(),
		Key:       domain.SessionKey(up.Token),
		Token:     up.Token,
		User:      up.User,
		CreatedAt: now,
		ExpiresAt: tokenExpiry(up.Token, now, s.sessionTTL),
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	s.metrics.IncrLogin()
	span.SetAttributes(attribute.String("session.id", sess.ID))

	s.logger.Info("login succeeded",
		zap.String("session_id", sess.ID),
		zap.String("user_id", sess.User.ID),
		zap.Time("expires_at", sess.ExpiresAt),
	)

	return &domain.LoginResponse{
		Token:     sess.Token,
		SessionID: sess.ID,
		ExpiresAt: sess.ExpiresAt,
		User:      sess.User,
	}, nil
}

// ============================================================
// Logout: POST /v1/auth/logout
// ============================================================

// Logout invalidates sess. Logging out twice is not an error.
func (s *AuthService) Logout(ctx context.Context, sess *domain.Session) error {
	ctx, span := tracer.Start(ctx, "AuthService.Logout")
	defer span.End()

	if err := s.sessions.Delete(ctx, sess.Key); err != nil {
		var notFound *domain.ErrNotFound
		if !errors.As(err, &notFound) {
			return fmt.Errorf("delete session: %w", err)
		}
	}
	s.metrics.IncrLogout()
	s.logger.Info("logout", zap.String("session_id", sess.ID))
	return nil
}
