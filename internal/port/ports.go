// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/tecnomaub/rupia-wallet-bfa/internal/domain"
)

// TransactionsFetcher lists the transactions visible to the token holder.
// A zero period lists every transaction.
type TransactionsFetcher interface {
	ListTransactions(ctx context.Context, token string, period domain.YearMonth) ([]domain.Transaction, error)
}

// CategoriesFetcher lists the categories visible to the token holder.
type CategoriesFetcher interface {
	ListCategories(ctx context.Context, token string) ([]domain.Category, error)
}

// TransactionStore is the full upstream transactions resource.
type TransactionStore interface {
	TransactionsFetcher
	GetTransaction(ctx context.Context, token, id string) (*domain.Transaction, error)
	CreateTransaction(ctx context.Context, token string, tx domain.Transaction) (*domain.Transaction, error)
	UpdateTransaction(ctx context.Context, token string, tx domain.Transaction) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, token, id string) error
}

// CategoryStore is the full upstream categories resource.
type CategoryStore interface {
	CategoriesFetcher
	GetCategory(ctx context.Context, token, id string) (*domain.Category, error)
	CreateCategory(ctx context.Context, token string, cat domain.Category) (*domain.Category, error)
	UpdateCategory(ctx context.Context, token string, cat domain.Category) (*domain.Category, error)
	DeleteCategory(ctx context.Context, token, id string) error
}

// Authenticator forwards credentials to the upstream API.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*domain.UpstreamLogin, error)
	ResetPassword(ctx context.Context, resetToken, password string) error
}

// SessionStore keeps sessions between login and logout.
// Get returns *domain.ErrNotFound when the key is unknown or expired.
type SessionStore interface {
	Save(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, key string) (*domain.Session, error)
	Delete(ctx context.Context, key string) error
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
	Clear()
}
