package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/tecnomaub/rupia-wallet-bfa/internal/domain"
	"github.com/tecnomaub/rupia-wallet-bfa/internal/infra/observability"
	"github.com/tecnomaub/rupia-wallet-bfa/internal/infra/resilience"
)

var tracer = otel.Tracer("client")

// maxErrorBody bounds how much of an upstream error body is read.
const maxErrorBody = 4 << 10

// Upstream is the shared transport to the Rupia API: one circuit breaker,
// retry policy and bulkhead for every resource client.
type Upstream struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
	bulkhead   *resilience.Bulkhead
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewUpstream creates the shared transport.
func NewUpstream(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, metrics *observability.Metrics, logger *zap.Logger) *Upstream {
	return &Upstream{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		cb:         cb,
		cfg:        cfg,
		bulkhead:   resilience.NewBulkhead(cfg.MaxConcurrency),
		metrics:    metrics,
		logger:     logger,
	}
}

// call describes one upstream request.
type call struct {
	op       string // span and metric name
	service  string // error label: auth, transactions, categories
	method   string
	path     string
	query    url.Values
	token    string
	body     any
	out      any
	resource string // for ErrNotFound
	id       string
}

// do runs c through the bulkhead, the circuit breaker and the retry policy,
// and maps the outcome onto domain errors.
func (u *Upstream) do(ctx context.Context, c call) error {
	ctx, span := tracer.Start(ctx, "Upstream."+c.op)
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", c.method),
		attribute.String("upstream.path", c.path),
	)

	var payload []byte
	if c.body != nil {
		b, err := json.Marshal(c.body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", c.op, err)
		}
		payload = b
	}

	if err := u.bulkhead.Acquire(ctx); err != nil {
		return u.classify(c, err)
	}
	defer u.bulkhead.Release()

	start := time.Now()
	_, err := u.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, u.cfg, func() error {
			return u.attempt(ctx, c, payload)
		})
	})
	u.metrics.RecordUpstream(c.op, time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return u.classify(c, err)
	}
	return nil
}

func (u *Upstream) attempt(ctx context.Context, c call, payload []byte) error {
	target := u.baseURL + c.path
	if len(c.query) > 0 {
		target += "?" + c.query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, c.method, target, body)
	if err != nil {
		return resilience.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("X-Request-ID", requestID(ctx))

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return statusError(resp, c)
	}

	if c.out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(c.out); err != nil && !errors.Is(err, io.EOF) {
		return resilience.Permanent(fmt.Errorf("decode %s response: %w", c.op, err))
	}
	return nil
}

// statusError turns an upstream error status into an error. 4xx answers are
// permanent; 429 and 5xx are retried.
func statusError(resp *http.Response, c call) error {
	msg := upstreamMessage(io.LimitReader(resp.Body, maxErrorBody))

	switch code := resp.StatusCode; {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		if msg == "" {
			msg = "upstream rejected the credentials"
		}
		return resilience.Permanent(&domain.ErrUnauthorized{Message: msg})
	case code == http.StatusNotFound:
		return resilience.Permanent(&domain.ErrNotFound{Resource: c.resource, ID: c.id})
	case code == http.StatusConflict:
		if msg == "" {
			msg = "resource conflict"
		}
		return resilience.Permanent(&domain.ErrConflict{Message: msg})
	case code == http.StatusBadRequest || code == http.StatusUnprocessableEntity:
		if msg == "" {
			msg = "rejected by upstream"
		}
		return resilience.Permanent(&domain.ErrValidation{Message: msg})
	case code == http.StatusTooManyRequests || code >= http.StatusInternalServerError:
		return fmt.Errorf("%s returned status %d", c.op, code)
	default:
		return resilience.Permanent(fmt.Errorf("%s returned status %d", c.op, code))
	}
}

// upstreamMessage reads {"message": "..."} (or "error"/"mensagem") from an
// error body.
func upstreamMessage(r io.Reader) string {
	var body struct {
		Message  string `json:"message"`
		Error    string `json:"error"`
		Mensagem string `json:"mensagem"`
	}
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return ""
	}
	for _, m := range []string{body.Message, body.Error, body.Mensagem} {
		if m != "" {
			return m
		}
	}
	return ""
}

// classify maps a failed call onto the domain error the handlers understand.
func (u *Upstream) classify(c call, err error) error {
	var (
		unauthorized *domain.ErrUnauthorized
		notFound     *domain.ErrNotFound
		conflict     *domain.ErrConflict
		validation   *domain.ErrValidation
	)
	switch {
	case errors.As(err, &unauthorized):
		return unauthorized
	case errors.As(err, &notFound):
		return notFound
	case errors.As(err, &conflict):
		return conflict
	case errors.As(err, &validation):
		return validation
	case errors.Is(err, context.Canceled):
		return err
	}

	u.metrics.IncrUpstreamError(c.service)
	u.logger.Warn("upstream call failed",
		zap.String("operation", c.op),
		zap.String("path", c.path),
		zap.Error(err),
	)

	switch {
	case resilience.IsOpen(err):
		return &domain.ErrCircuitOpen{Service: c.service}
	case errors.Is(err, context.DeadlineExceeded):
		return &domain.ErrTimeout{Operation: c.op}
	}
	return &domain.ErrExternalService{Service: c.service, Err: err}
}

// requestID forwards the inbound request ID, or mints one.
func requestID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}

// decodeList accepts either a bare JSON array or an object wrapping it under
// "data".
func decodeList(raw json.RawMessage) ([]json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var items []json.RawMessage
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
		return items, nil
	}

	var wrapped struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Data, nil
}

// unwrapOne accepts either a bare object or one wrapped under "data".
func unwrapOne(raw json.RawMessage) json.RawMessage {
	var wrapped struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && len(wrapped.Data) > 0 && wrapped.Data[0] == '{' {
		return wrapped.Data
	}
	return raw
}
