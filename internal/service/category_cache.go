package service

import (
	"context"

	"github.com/tecnomaub/rupia-wallet-bfa/internal/domain"
	"github.com/tecnomaub/rupia-wallet-bfa/internal/infra/observability"
	"github.com/tecnomaub/rupia-wallet-bfa/internal/port"
)

// CachedCategories keeps each session's category list for a short TTL, so a
// burst of dashboard period switches fetches categories once. Entries are
// keyed by token, and one user may hold several sessions, so any write through
// it drops every entry.
type CachedCategories struct {
	inner   port.CategoryStore
	cache   port.Cache[[]domain.Category]
	metrics *observability.Metrics
}

// NewCachedCategories wraps inner with cache.
func NewCachedCategories(inner port.CategoryStore, cache port.Cache[[]domain.Category], metrics *observability.Metrics) *CachedCategories {
	return &CachedCategories{inner: inner, cache: cache, metrics: metrics}
}

func (c *CachedCategories) ListCategories(ctx context.Context, token string) ([]domain.Category, error) {
	key := domain.SessionKey(token)
	if cached, ok := c.cache.Get(key); ok {
		c.metrics.IncrCacheHit("categories")
		return append([]domain.Category(nil), cached...), nil
	}
	c.metrics.IncrCacheMiss("categories")

	cats, err := c.inner.ListCategories(ctx, token)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, append([]domain.Category(nil), cats...))
	return cats, nil
}

func (c *CachedCategories) GetCategory(ctx context.Context, token, id string) (*domain.Category, error) {
	return c.inner.GetCategory(ctx, token, id)
}

func (c *CachedCategories) CreateCategory(ctx context.Context, token string, cat domain.Category) (*domain.Category, error) {
	defer c.cache.Clear()
	return c.inner.CreateCategory(ctx, token, cat)
}

func (c *CachedCategories) UpdateCategory(ctx context.Context, token string, cat domain.Category) (*domain.Category, error) {
	defer c.cache.Clear()
	return c.inner.UpdateCategory(ctx, token, cat)
}

func (c *CachedCategories) DeleteCategory(ctx context.Context, token, id string) error {
	defer c.cache.Clear()
	return c.inner.DeleteCategory(ctx, token, id)
}
