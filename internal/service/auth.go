package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tecnomaub/rupia-wallet-bfa/internal/domain"
	"github.com/tecnomaub/rupia-wallet-bfa/internal/infra/observability"
	"github.com/tecnomaub/rupia-wallet-bfa/internal/port"
)

// AuthService owns the session lifecycle: created at login, resolved on every
// guarded request, removed at logout or expiry.
type AuthService struct {
	auth       port.Authenticator
	sessions   port.SessionStore
	sessionTTL time.Duration
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// NewAuthService creates the auth service. sessionTTL bounds sessions whose
// upstream token carries no usable expiry.
func NewAuthService(auth port.Authenticator, sessions port.SessionStore, sessionTTL time.Duration, metrics *observability.Metrics, logger *zap.Logger) *AuthService {
	return &AuthService{
		auth:       auth,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock replaces the wall clock, for tests.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// ============================================================
// Resolve: session guard
// ============================================================

// Resolve finds the live session for a bearer token.
func (s *AuthService) Resolve(ctx context.Context, token string) (*domain.Session, error) {
	ctx, span := tracer.Start(ctx, "AuthService.Resolve")
	defer span.End()

	token = strings.TrimSpace(token)
	if token == "" {
		return nil, &domain.ErrUnauthorized{Message: "missing bearer token"}
	}

	key := domain.SessionKey(token)
	sess, err := s.sessions.Get(ctx, key)
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return nil, &domain.ErrUnauthorized{Message: "session expired or unknown"}
		}
		return nil, fmt.Errorf("session lookup: %w", err)
	}

	if sess.Expired(s.now()) {
		if err := s.sessions.Delete(ctx, key); err != nil {
			s.logger.Warn("expired session not removed", zap.String("session_id", sess.ID), zap.Error(err))
		}
		return nil, &domain.ErrUnauthorized{Message: "session expired or unknown"}
	}
	return sess, nil
}
