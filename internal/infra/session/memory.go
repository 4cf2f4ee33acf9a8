package session

import (
	"context"
	"time"

	"github.com/tecnomaub/rupia-wallet-bfa/internal/domain"
	"github.com/tecnomaub/rupia-wallet-bfa/internal/infra/cache"
)

// Memory keeps sessions in the process. Sessions do not survive a restart and
// are not shared between instances.
type Memory struct {
	items      *cache.InMemory[domain.Session]
	defaultTTL time.Duration
}

// NewMemory creates a memory store. defaultTTL applies to sessions without
// an expiry.
func NewMemory(defaultTTL time.Duration) *Memory {
	return &Memory{
		items:      cache.New[domain.Session](defaultTTL),
		defaultTTL: defaultTTL,
	}
}

func (m *Memory) Save(_ context.Context, s *domain.Session) error {
	ttl, err := ttlFor(s, time.Now(), m.defaultTTL)
	if err != nil {
		return err
	}
	m.items.SetWithTTL(s.Key, *s, ttl)
	return nil
}

func (m *Memory) Get(_ context.Context, key string) (*domain.Session, error) {
	s, ok := m.items.Get(key)
	if !ok {
		return nil, notFound(key)
	}
	return &s, nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.items.Delete(key)
	return nil
}

// Len is the number of live sessions.
func (m *Memory) Len() int {
	return m.items.Len()
}

// Close stops the expiry sweeper.
func (m *Memory) Close() {
	m.items.Close()
}
