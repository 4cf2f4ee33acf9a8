package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tecnomaub/rupia-wallet-bfa/internal/domain"
	"github.com/tecnomaub/rupia-wallet-bfa/internal/handler"
	"github.com/tecnomaub/rupia-wallet-bfa/internal/infra/observability"
	"github.com/tecnomaub/rupia-wallet-bfa/internal/infra/session"
	"github.com/tecnomaub/rupia-wallet-bfa/internal/service"
)

// --- Fakes ---

type fakeUpstream struct {
	txs  []domain.Transaction
	cats []domain.Category
}

func (f *fakeUpstream) Login(_ context.Context, email, password string) (*domain.UpstreamLogin, error) {
	if password != "secret" {
		return nil, &domain.ErrUnauthorized{Message: "invalid email or password"}
	}
	return &domain.UpstreamLogin{Token: "tok-123", User: domain.User{ID: "u-1", Email: email}}, nil
}

func (f *fakeUpstream) ResetPassword(context.Context, string, string) error { return nil }

func (f *fakeUpstream) ListTransactions(context.Context, string, domain.YearMonth) ([]domain.Transaction, error) {
	return f.txs, nil
}

func (f *fakeUpstream) GetTransaction(_ context.Context, _ string, id string) (*domain.Transaction, error) {
	for _, t := range f.txs {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "transaction", ID: id}
}

func (f *fakeUpstream) CreateTransaction(_ context.Context, _ string, tx domain.Transaction) (*domain.Transaction, error) {
	tx.ID = "new-tx"
	return &tx, nil
}

func (f *fakeUpstream) UpdateTransaction(_ context.Context, _ string, tx domain.Transaction) (*domain.Transaction, error) {
	return &tx, nil
}

func (f *fakeUpstream) DeleteTransaction(context.Context, string, string) error { return nil }

func (f *fakeUpstream) ListCategories(context.Context, string) ([]domain.Category, error) {
	return f.cats, nil
}

func (f *fakeUpstream) GetCategory(_ context.Context, _ string, id string) (*domain.Category, error) {
	return nil, &domain.ErrNotFound{Resource: "category", ID: id}
}

func (f *fakeUpstream) CreateCategory(_ context.Context, _ string, cat domain.Category) (*domain.Category, error) {
	cat.ID = "new-cat"
	return &cat, nil
}

func (f *fakeUpstream) UpdateCategory(_ context.Context, _ string, cat domain.Category) (*domain.Category, error) {
	return &cat, nil
}

func (f *fakeUpstream) DeleteCategory(context.Context, string, string) error { return nil }

func date(s string) time.Time {
	d, _ := domain.ParseDate(s)
	return d
}

func newTestRouter(t *testing.T, probes ...handler.Probe) http.Handler {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	up := &fakeUpstream{
		txs: []domain.Transaction{
			{ID: "1", Date: date("2024-03-01"), Amount: decimal.RequireFromString("1000"), Kind: domain.KindIncome, PaymentMethod: domain.PaymentPix},
			{ID: "2", Date: date("2024-03-15"), Amount: decimal.RequireFromString("250.50"), Kind: domain.KindExpense, PaymentMethod: domain.PaymentCreditCard, CategoryID: "c1", Description: "Feira"},
		},
		cats: []domain.Category{{ID: "c1", Name: "Mercado", Kind: domain.CategoryExpense, Color: "#ff0000"}},
	}

	sessions := session.NewMemory(time.Hour)
	t.Cleanup(sessions.Close)

	clock := func() time.Time { return time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC) }
	return handler.NewRouter(handler.Services{
		Auth:         service.NewAuthService(up, sessions, time.Hour, metrics, logger),
		Dashboard:    service.NewDashboardService(up, up, service.DashboardOptions{EmptyOnFetchError: true}, metrics, logger).WithClock(clock),
		Transactions: service.NewTransactionService(up, up, metrics, logger),
		Categories:   service.NewCategoryService(up, logger),
		Probes:       probes,
	}, metrics, logger)
}

func do(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, router http.Handler) string {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/v1/auth/login", "", domain.LoginRequest{Email: "maria@example.com", Password: "secret"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d. Body: %s", rec.Code, rec.Body.String())
	}
	var resp domain.LoginResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	return resp.Token
}

// --- Operational endpoints ---

func TestHealthz(t *testing.T) {
	router := handler.NewRouter(handler.Services{}, observability.NewMetrics(), zap.NewNop())

	rec := do(t, router, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	var health domain.HealthStatus
	json.NewDecoder(rec.Body).Decode(&health)
	if health.Status != "healthy" {
		t.Errorf("expected healthy, got %s", health.Status)
	}
}

func TestReadyz(t *testing.T) {
	router := handler.NewRouter(handler.Services{}, observability.NewMetrics(), zap.NewNop())

	rec := do(t, router, http.MethodGet, "/readyz", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestReadyz_FailingProbe(t *testing.T) {
	probe := handler.Probe{Name: "redis", Check: func(context.Context) error { return errors.New("connection refused") }}
	router := newTestRouter(t, probe)

	if rec := do(t, router, http.MethodGet, "/readyz", "", nil); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}

	rec := do(t, router, http.MethodGet, "/healthz", "", nil)
	var health domain.HealthStatus
	json.NewDecoder(rec.Body).Decode(&health)
	if health.Status != "degraded" || len(health.Services) != 2 {
		t.Errorf("unexpected health: %+v", health)
	}
}

func TestMetrics(t *testing.T) {
	router := handler.NewRouter(handler.Services{}, observability.NewMetrics(), zap.NewNop())

	rec := do(t, router, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	rec = do(t, router, http.MethodGet, "/v1/metrics/bfa", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRequestID(t *testing.T) {
	router := handler.NewRouter(handler.Services{}, observability.NewMetrics(), zap.NewNop())

	rec := do(t, router, http.MethodGet, "/ping", "", nil)
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("expected a generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "caller-id")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-Id"); got != "caller-id" {
		t.Errorf("expected caller request id echoed, got %q", got)
	}
}

// --- Session guard ---

func TestGuard(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"unknown token", "Bearer not-a-session"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/dashboard", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/v1/auth/login", "", domain.LoginRequest{Email: "maria@example.com", Password: "nope"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader("{"))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed body, got %d", rec.Code)
	}
}

func TestLogoutEndsSession(t *testing.T) {
	router := newTestRouter(t)
	token := login(t, router)

	if rec := do(t, router, http.MethodGet, "/v1/me", token, nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /v1/me, got %d", rec.Code)
	}
	if rec := do(t, router, http.MethodPost, "/v1/auth/logout", token, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 from logout, got %d", rec.Code)
	}
	if rec := do(t, router, http.MethodGet, "/v1/me", token, nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", rec.Code)
	}
}

func TestPasswordReset(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/v1/auth/password/reset", "", domain.PasswordResetRequest{
		Token: "rt", Password: "Secret#123", ConfirmPassword: "Secret#123",
	})
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d. Body: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, router, http.MethodPost, "/v1/auth/password/reset", "", domain.PasswordResetRequest{
		Token: "rt", Password: "weak", ConfirmPassword: "weak",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

// --- Dashboard ---

func TestDashboard(t *testing.T) {
	router := newTestRouter(t)
	token := login(t, router)

	rec := do(t, router, http.MethodGet, "/v1/dashboard?month=2024-03", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d. Body: %s", rec.Code, rec.Body.String())
	}

	var view domain.DashboardView
	if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.Period.String() != "2024-03" {
		t.Errorf("expected period 2024-03, got %s", view.Period)
	}
	if !view.Summary.Balance.Equal(decimal.RequireFromString("749.5")) {
		t.Errorf("expected balance 749.50, got %s", view.Summary.Balance)
	}
	if !view.Summary.CurrentStatementTotal.Equal(decimal.RequireFromString("250.5")) {
		t.Errorf("expected statement total 250.50, got %s", view.Summary.CurrentStatementTotal)
	}
	if len(view.Summary.CategoryTotals) != 1 {
		t.Errorf("expected one category total, got %d", len(view.Summary.CategoryTotals))
	}
}

func TestDashboard_DefaultsToCurrentMonth(t *testing.T) {
	router := newTestRouter(t)
	token := login(t, router)

	rec := do(t, router, http.MethodGet, "/v1/dashboard", token, nil)
	var view domain.DashboardView
	json.NewDecoder(rec.Body).Decode(&view)
	if view.Period.String() != "2024-03" {
		t.Errorf("expected current month 2024-03, got %s", view.Period)
	}
}

func TestDashboard_BadMonth(t *testing.T) {
	router := newTestRouter(t)
	token := login(t, router)

	rec := do(t, router, http.MethodGet, "/v1/dashboard?month=03-2024", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestDashboardHistory(t *testing.T) {
	router := newTestRouter(t)
	token := login(t, router)

	rec := do(t, router, http.MethodGet, "/v1/dashboard/history?from=2024-01&to=2024-03", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d. Body: %s", rec.Code, rec.Body.String())
	}
	var view domain.HistoryView
	json.NewDecoder(rec.Body).Decode(&view)
	if !view.TotalExpense.Equal(decimal.RequireFromString("250.5")) {
		t.Errorf("expected expense 250.50, got %s", view.TotalExpense)
	}

	rec = do(t, router, http.MethodGet, "/v1/dashboard/history?from=2024-04&to=2024-03", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for inverted range, got %d", rec.Code)
	}
}

// --- Transactions & categories ---

func TestTransactionsSearch(t *testing.T) {
	router := newTestRouter(t)
	token := login(t, router)

	rec := do(t, router, http.MethodGet, "/v1/transactions?month=2024-03&kind=expense&q=feira", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d. Body: %s", rec.Code, rec.Body.String())
	}
	var resp domain.ListResponse[domain.Transaction]
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Total != 1 || resp.Data[0].ID != "2" {
		t.Errorf("unexpected search result: %+v", resp)
	}

	rec = do(t, router, http.MethodGet, "/v1/transactions?month=2024-03&from=2024-03-01", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for month combined with from, got %d", rec.Code)
	}
}

func TestTransactionCreate(t *testing.T) {
	router := newTestRouter(t)
	token := login(t, router)

	body := map[string]any{
		"date":          "2024-03-21",
		"amount":        "89,90",
		"kind":          "EXPENSE",
		"paymentMethod": "PIX",
		"categoryId":    "c1",
	}
	rec := do(t, router, http.MethodPost, "/v1/transactions", token, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d. Body: %s", rec.Code, rec.Body.String())
	}
	var tx domain.Transaction
	json.NewDecoder(rec.Body).Decode(&tx)
	if tx.ID != "new-tx" || !tx.Amount.Equal(decimal.RequireFromString("89.9")) {
		t.Errorf("unexpected transaction: %+v", tx)
	}

	body["categoryId"] = ""
	rec = do(t, router, http.MethodPost, "/v1/transactions", token, body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var errResp map[string]string
	json.NewDecoder(rec.Body).Decode(&errResp)
	if errResp["field"] != "categoryId" {
		t.Errorf("expected field categoryId, got %v", errResp)
	}
}

func TestTransactionGet_NotFound(t *testing.T) {
	router := newTestRouter(t)
	token := login(t, router)

	if rec := do(t, router, http.MethodGet, "/v1/transactions/missing", token, nil); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if rec := do(t, router, http.MethodDelete, "/v1/transactions/2", token, nil); rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}

func TestCategories(t *testing.T) {
	router := newTestRouter(t)
	token := login(t, router)

	rec := do(t, router, http.MethodGet, "/v1/categories", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = do(t, router, http.MethodPost, "/v1/categories", token, domain.CategoryInput{Name: "Lazer", Color: "#00FF00"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d. Body: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, router, http.MethodPost, "/v1/categories", token, domain.CategoryInput{Name: "mercado"})
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 for duplicate name, got %d", rec.Code)
	}

	rec = do(t, router, http.MethodPost, "/v1/categories", token, domain.CategoryInput{Name: "Bad", Color: "blue"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad colour, got %d", rec.Code)
	}
}
