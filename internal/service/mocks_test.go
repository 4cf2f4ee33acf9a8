package service_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/tecnomaub/rupia-wallet-bfa/internal/domain"
)

// --- Mocks ---

type mockTransactionStore struct {
	mu      sync.Mutex
	txs     []domain.Transaction
	err     error
	hook    func(ctx context.Context, period domain.YearMonth) error
	periods []domain.YearMonth
	created []domain.Transaction
	updated []domain.Transaction
	deleted []string
	nextID  int
}

func (m *mockTransactionStore) ListTransactions(ctx context.Context, _ string, period domain.YearMonth) ([]domain.Transaction, error) {
	m.mu.Lock()
	m.periods = append(m.periods, period)
	hook := m.hook
	m.mu.Unlock()

	if hook != nil {
		if err := hook(ctx, period); err != nil {
			return nil, err
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return append([]domain.Transaction(nil), m.txs...), nil
}

func (m *mockTransactionStore) GetTransaction(_ context.Context, _ string, id string) (*domain.Transaction, error) {
	for _, t := range m.txs {
		if t.ID == id {
			t := t
			return &t, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "transaction", ID: id}
}

func (m *mockTransactionStore) CreateTransaction(_ context.Context, _ string, tx domain.Transaction) (*domain.Transaction, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.nextID++
	tx.ID = fmt.Sprintf("tx-%d", m.nextID)
	m.created = append(m.created, tx)
	return &tx, nil
}

func (m *mockTransactionStore) UpdateTransaction(_ context.Context, _ string, tx domain.Transaction) (*domain.Transaction, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.updated = append(m.updated, tx)
	return &tx, nil
}

func (m *mockTransactionStore) DeleteTransaction(_ context.Context, _ string, id string) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, id)
	return nil
}

type mockCategoryStore struct {
	mu      sync.Mutex
	cats    []domain.Category
	err     error
	lists   int
	created []domain.Category
	updated []domain.Category
	deleted []string
}

func (m *mockCategoryStore) ListCategories(_ context.Context, _ string) ([]domain.Category, error) {
	m.mu.Lock()
	m.lists++
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return append([]domain.Category(nil), m.cats...), nil
}

func (m *mockCategoryStore) GetCategory(_ context.Context, _ string, id string) (*domain.Category, error) {
	for _, c := range m.cats {
		if c.ID == id {
			c := c
			return &c, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "category", ID: id}
}

func (m *mockCategoryStore) CreateCategory(_ context.Context, _ string, cat domain.Category) (*domain.Category, error) {
	cat.ID = fmt.Sprintf("cat-%d", len(m.cats)+1)
	m.cats = append(m.cats, cat)
	m.created = append(m.created, cat)
	return &cat, nil
}

func (m *mockCategoryStore) UpdateCategory(_ context.Context, _ string, cat domain.Category) (*domain.Category, error) {
	m.updated = append(m.updated, cat)
	return &cat, nil
}

func (m *mockCategoryStore) DeleteCategory(_ context.Context, _ string, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

type mockAuthenticator struct {
	login     *domain.UpstreamLogin
	err       error
	gotEmail  string
	resetWith string
}

func (m *mockAuthenticator) Login(_ context.Context, email, _ string) (*domain.UpstreamLogin, error) {
	m.gotEmail = email
	return m.login, m.err
}

func (m *mockAuthenticator) ResetPassword(_ context.Context, resetToken, _ string) error {
	m.resetWith = resetToken
	return m.err
}

type mockSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
	err      error
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{sessions: make(map[string]*domain.Session)}
}

func (m *mockSessionStore) Save(_ context.Context, s *domain.Session) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.Key] = s
	return nil
}

func (m *mockSessionStore) Get(_ context.Context, key string) (*domain.Session, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[key]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "session", ID: key}
	}
	return s, nil
}

func (m *mockSessionStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, key)
	return nil
}

func testSession() *domain.Session {
	return &domain.Session{
		ID:    "sess-1",
		Key:   domain.SessionKey("upstream-token"),
		Token: "upstream-token",
		User:  domain.User{ID: "u-1", Name: "Maria", Email: "maria@example.com"},
	}
}
