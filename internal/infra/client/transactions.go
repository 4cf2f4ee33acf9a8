package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/tecnomaub/rupia-wallet-bfa/internal/domain"
)

// TransactionsClient talks to the upstream /transactions resource.
type TransactionsClient struct {
	up *Upstream
}

// NewTransactionsClient creates a new TransactionsClient.
func NewTransactionsClient(up *Upstream) *TransactionsClient {
	return &TransactionsClient{up: up}
}

// ListTransactions fetches the transactions of period, or all of them when
// period is zero. Records that fail validation are dropped and logged.
// Records outside period are dropped too, in case the upstream ignores the
// filter.
func (c *TransactionsClient) ListTransactions(ctx context.Context, token string, period domain.YearMonth) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "TransactionsClient.ListTransactions")
	defer span.End()

	q := url.Values{}
	if !period.IsZero() {
		q.Set("periodo", period.String())
		span.SetAttributes(attribute.String("period", period.String()))
	}

	var raw json.RawMessage
	err := c.up.do(ctx, call{
		op:       "ListTransactions",
		service:  "transactions",
		method:   http.MethodGet,
		path:     "/transactions/getTransactions",
		query:    q,
		token:    token,
		out:      &raw,
		resource: "transactions",
	})
	if err != nil {
		return nil, err
	}

	items, err := decodeList(raw)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "transactions", Err: err}
	}

	out := make([]domain.Transaction, 0, len(items))
	for i, item := range items {
		tx, err := decodeTransaction(item)
		if err != nil {
			c.drop(span, i, err)
			continue
		}
		if !period.IsZero() && !period.Contains(tx.Date) {
			continue
		}
		out = append(out, tx)
	}
	span.SetAttributes(attribute.Int("transactions.count", len(out)))
	return out, nil
}

func (c *TransactionsClient) drop(span trace.Span, index int, err error) {
	c.up.metrics.IncrDroppedRecord("transactions")
	c.up.logger.Warn("dropping invalid upstream transaction",
		zap.Int("index", index),
		zap.Error(err),
	)
	span.AddEvent("dropped record", trace.WithAttributes(attribute.Int("index", index)))
}

// GetTransaction fetches one transaction.
func (c *TransactionsClient) GetTransaction(ctx context.Context, token, id string) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "TransactionsClient.GetTransaction")
	defer span.End()
	span.SetAttributes(attribute.String("transaction.id", id))

	var raw json.RawMessage
	err := c.up.do(ctx, call{
		op:       "GetTransaction",
		service:  "transactions",
		method:   http.MethodGet,
		path:     "/transactions/" + url.PathEscape(id),
		token:    token,
		out:      &raw,
		resource: "transaction",
		id:       id,
	})
	if err != nil {
		return nil, err
	}

	tx, err := decodeTransaction(unwrapOne(raw))
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "transactions", Err: err}
	}
	return &tx, nil
}

// CreateTransaction posts a new transaction. When the upstream answers
// without a usable record, the input is echoed back with whatever ID it sent.
func (c *TransactionsClient) CreateTransaction(ctx context.Context, token string, tx domain.Transaction) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "TransactionsClient.CreateTransaction")
	defer span.End()

	var raw json.RawMessage
	err := c.up.do(ctx, call{
		op:       "CreateTransaction",
		service:  "transactions",
		method:   http.MethodPost,
		path:     "/transactions/newTransaction",
		token:    token,
		body:     transactionToWire(tx),
		out:      &raw,
		resource: "transaction",
	})
	if err != nil {
		return nil, err
	}
	return echoTransaction(raw, tx), nil
}

// UpdateTransaction replaces a transaction.
func (c *TransactionsClient) UpdateTransaction(ctx context.Context, token string, tx domain.Transaction) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "TransactionsClient.UpdateTransaction")
	defer span.End()
	span.SetAttributes(attribute.String("transaction.id", tx.ID))

	var raw json.RawMessage
	err := c.up.do(ctx, call{
		op:       "UpdateTransaction",
		service:  "transactions",
		method:   http.MethodPut,
		path:     "/transactions/" + url.PathEscape(tx.ID),
		token:    token,
		body:     transactionToWire(tx),
		out:      &raw,
		resource: "transaction",
		id:       tx.ID,
	})
	if err != nil {
		return nil, err
	}
	return echoTransaction(raw, tx), nil
}

// DeleteTransaction removes a transaction.
func (c *TransactionsClient) DeleteTransaction(ctx context.Context, token, id string) error {
	ctx, span := tracer.Start(ctx, "TransactionsClient.DeleteTransaction")
	defer span.End()
	span.SetAttributes(attribute.String("transaction.id", id))

	return c.up.do(ctx, call{
		op:       "DeleteTransaction",
		service:  "transactions",
		method:   http.MethodDelete,
		path:     "/transactions/" + url.PathEscape(id),
		token:    token,
		resource: "transaction",
		id:       id,
	})
}

func decodeTransaction(raw json.RawMessage) (domain.Transaction, error) {
	var w wireTransaction
	if err := json.Unmarshal(raw, &w); err != nil {
		return domain.Transaction{}, err
	}
	return w.toDomain()
}

func echoTransaction(raw json.RawMessage, sent domain.Transaction) *domain.Transaction {
	body := unwrapOne(raw)
	if tx, err := decodeTransaction(body); err == nil {
		return &tx
	}
	var idOnly struct {
		ID flexID `json:"id"`
	}
	if err := json.Unmarshal(body, &idOnly); err == nil && idOnly.ID != "" {
		sent.ID = string(idOnly.ID)
	}
	return &sent
}
