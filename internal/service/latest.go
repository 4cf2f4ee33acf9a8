package service

import (
	"context"
	"errors"
	"sync"

	"github.com/tecnomaub/rupia-wallet-bfa/internal/domain"
)

// Latest tracks the newest in-flight selection per key (one key per session).
// Beginning a selection cancels the previous one for the same key, so only
// the most recent period ever reaches the aggregator.
type Latest struct {
	mu       sync.Mutex
	seq      uint64
	inflight map[string]*Selection
}

// NewLatest creates an empty tracker.
func NewLatest() *Latest {
	return &Latest{inflight: make(map[string]*Selection)}
}

// Selection is one in-flight request registered with Latest.
type Selection struct {
	ctx    context.Context
	cancel context.CancelCauseFunc
	owner  *Latest
	key    string
	id     uint64
}

// Begin registers a new selection for key and cancels the previous one with
// domain.ErrSuperseded as the cause. End must be called when the request
// finishes.
func (l *Latest) Begin(ctx context.Context, key string) *Selection {
	ctx, cancel := context.WithCancelCause(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()

	l.seq++
	sel := &Selection{ctx: ctx, cancel: cancel, owner: l, key: key, id: l.seq}
	if prev, ok := l.inflight[key]; ok {
		prev.cancel(domain.ErrSuperseded)
	}
	l.inflight[key] = sel
	return sel
}

// Context is cancelled when the selection is superseded or its parent ends.
func (s *Selection) Context() context.Context {
	return s.ctx
}

// Superseded reports whether a newer selection replaced this one.
func (s *Selection) Superseded() bool {
	if errors.Is(context.Cause(s.ctx), domain.ErrSuperseded) {
		return true
	}
	s.owner.mu.Lock()
	defer s.owner.mu.Unlock()
	cur, ok := s.owner.inflight[s.key]
	return ok && cur.id != s.id
}

// End releases the selection.
func (s *Selection) End() {
	s.owner.mu.Lock()
	if cur, ok := s.owner.inflight[s.key]; ok && cur.id == s.id {
		delete(s.owner.inflight, s.key)
	}
	s.owner.mu.Unlock()
	s.cancel(context.Canceled)
}

// InFlight is the number of keys with a running selection.
func (l *Latest) InFlight() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.inflight)
}
