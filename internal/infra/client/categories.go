package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/tecnomaub/rupia-wallet-bfa/internal/domain"
)

// CategoriesClient talks to the upstream /categories resource.
type CategoriesClient struct {
	up *Upstream
}

// NewCategoriesClient creates a new CategoriesClient.
func NewCategoriesClient(up *Upstream) *CategoriesClient {
	return &CategoriesClient{up: up}
}

// ListCategories fetches every category. Records that fail validation are
// dropped and logged.
func (c *CategoriesClient) ListCategories(ctx context.Context, token string) ([]domain.Category, error) {
	ctx, span := tracer.Start(ctx, "CategoriesClient.ListCategories")
	defer span.End()

	var raw json.RawMessage
	err := c.up.do(ctx, call{
		op:       "ListCategories",
		service:  "categories",
		method:   http.MethodGet,
		path:     "/categories/getCategory",
		token:    token,
		out:      &raw,
		resource: "categories",
	})
	if err != nil {
		return nil, err
	}

	items, err := decodeList(raw)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "categories", Err: err}
	}

	out := make([]domain.Category, 0, len(items))
	for i, item := range items {
		cat, err := decodeCategory(item)
		if err != nil {
			c.up.metrics.IncrDroppedRecord("categories")
			c.up.logger.Warn("dropping invalid upstream category",
				zap.Int("index", i),
				zap.Error(err),
			)
			continue
		}
		out = append(out, cat)
	}
	span.SetAttributes(attribute.Int("categories.count", len(out)))
	return out, nil
}

// GetCategory fetches one category.
func (c *CategoriesClient) GetCategory(ctx context.Context, token, id string) (*domain.Category, error) {
	ctx, span := tracer.Start(ctx, "CategoriesClient.GetCategory")
	defer span.End()
	span.SetAttributes(attribute.String("category.id", id))

	var raw json.RawMessage
	err := c.up.do(ctx, call{
		op:       "GetCategory",
		service:  "categories",
		method:   http.MethodGet,
		path:     "/categories/" + url.PathEscape(id),
		token:    token,
		out:      &raw,
		resource: "category",
		id:       id,
	})
	if err != nil {
		return nil, err
	}

	cat, err := decodeCategory(unwrapOne(raw))
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "categories", Err: err}
	}
	return &cat, nil
}

// CreateCategory posts a new category.
func (c *CategoriesClient) CreateCategory(ctx context.Context, token string, cat domain.Category) (*domain.Category, error) {
	ctx, span := tracer.Start(ctx, "CategoriesClient.CreateCategory")
	defer span.End()

	var raw json.RawMessage
	err := c.up.do(ctx, call{
		op:       "CreateCategory",
		service:  "categories",
		method:   http.MethodPost,
		path:     "/categories/newCategory",
		token:    token,
		body:     categoryToWire(cat),
		out:      &raw,
		resource: "category",
	})
	if err != nil {
		return nil, err
	}
	return echoCategory(raw, cat), nil
}

// UpdateCategory replaces a category.
func (c *CategoriesClient) UpdateCategory(ctx context.Context, token string, cat domain.Category) (*domain.Category, error) {
	ctx, span := tracer.Start(ctx, "CategoriesClient.UpdateCategory")
	defer span.End()
	span.SetAttributes(attribute.String("category.id", cat.ID))

	var raw json.RawMessage
	err := c.up.do(ctx, call{
		op:       "UpdateCategory",
		service:  "categories",
		method:   http.MethodPut,
		path:     "/categories/" + url.PathEscape(cat.ID),
		token:    token,
		body:     categoryToWire(cat),
		out:      &raw,
		resource: "category",
		id:       cat.ID,
	})
	if err != nil {
		return nil, err
	}
	return echoCategory(raw, cat), nil
}

// DeleteCategory removes a category.
func (c *CategoriesClient) DeleteCategory(ctx context.Context, token, id string) error {
	ctx, span := tracer.Start(ctx, "CategoriesClient.DeleteCategory")
	defer span.End()
	span.SetAttributes(attribute.String("category.id", id))

	return c.up.do(ctx, call{
		op:       "DeleteCategory",
		service:  "categories",
		method:   http.MethodDelete,
		path:     "/categories/" + url.PathEscape(id),
		token:    token,
		resource: "category",
		id:       id,
	})
}

func decodeCategory(raw json.RawMessage) (domain.Category, error) {
	var w wireCategory
	if err := json.Unmarshal(raw, &w); err != nil {
		return domain.Category{}, err
	}
	return w.toDomain()
}

func echoCategory(raw json.RawMessage, sent domain.Category) *domain.Category {
	body := unwrapOne(raw)
	if cat, err := decodeCategory(body); err == nil {
		return &cat
	}
	var idOnly struct {
		ID flexID `json:"id"`
	}
	if err := json.Unmarshal(body, &idOnly); err == nil && idOnly.ID != "" {
		sent.ID = string(idOnly.ID)
	}
	return &sent
}
