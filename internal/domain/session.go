package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// ============================================================
// Session & Auth
// ============================================================

// User is the upstream account behind a session.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Session is created at login and invalidated at logout. It is passed
// explicitly to services; there is no ambient session state.
type Session struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	Token     string    `json:"token"`
	User      User      `json:"user"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SessionKey derives the store key for an upstream token. Raw tokens are never
// used as keys.
func SessionKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// TTL is the remaining lifetime at now, never negative.
func (s *Session) TTL(now time.Time) time.Duration {
	d := s.ExpiresAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// LoginRequest is the body for POST /v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the body for 200 from POST /v1/auth/login.
type LoginResponse struct {
	Token     string    `json:"token"`
	SessionID string    `json:"sessionId"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

// UpstreamLogin is what the upstream API answers to a successful login.
type UpstreamLogin struct {
	Token string
	User  User
}

// PasswordResetRequest is the body for POST /v1/auth/password/reset.
type PasswordResetRequest struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}
