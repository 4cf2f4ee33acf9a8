// Package session stores BFA sessions between login and logout, either in
// process memory or in Redis.
package session

import (
	"time"

	"github.com/tecnomaub/rupia-wallet-bfa/internal/domain"
)

// ttlFor is the remaining lifetime of s, or fallback when s has no expiry.
func ttlFor(s *domain.Session, now time.Time, fallback time.Duration) (time.Duration, error) {
	if s.Key == "" {
		return 0, &domain.ErrValidation{Field: "key", Message: "session key is required"}
	}
	if s.ExpiresAt.IsZero() {
		return fallback, nil
	}
	ttl := s.TTL(now)
	if ttl <= 0 {
		return 0, &domain.ErrValidation{Field: "expiresAt", Message: "session already expired"}
	}
	return ttl, nil
}

func notFound(key string) error {
	id := key
	if len(id) > 8 {
		id = id[:8]
	}
	return &domain.ErrNotFound{Resource: "session", ID: id}
}
