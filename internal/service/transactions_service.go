package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/tecnomaub/rupia-wallet-bfa/internal/domain"
	"github.com/tecnomaub/rupia-wallet-bfa/internal/infra/observability"
	"github.com/tecnomaub/rupia-wallet-bfa/internal/money"
	"github.com/tecnomaub/rupia-wallet-bfa/internal/port"
)

const (
	defaultPageSize      = 20
	maxPageSize          = 100
	maxDescriptionLength = 255
)

// TransactionService serves the search view and the transaction forms.
type TransactionService struct {
	store      port.TransactionStore
	categories port.CategoriesFetcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewTransactionService creates the transaction service.
func NewTransactionService(store port.TransactionStore, categories port.CategoriesFetcher, metrics *observability.Metrics, logger *zap.Logger) *TransactionService {
	return &TransactionService{
		store:      store,
		categories: categories,
		metrics:    metrics,
		logger:     logger,
	}
}

// ============================================================
// Search: GET /v1/transactions
// ============================================================

// Search lists the transactions matching f, newest first, one page at a time.
func (s *TransactionService) Search(ctx context.Context, sess *domain.Session, f domain.TransactionFilter) (*domain.ListResponse[domain.Transaction], error) {
	ctx, span := tracer.Start(ctx, "TransactionService.Search")
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration("transactions_search", time.Since(start))
	}()

	if err := validateFilter(&f); err != nil {
		return nil, err
	}

	txs, err := s.store.ListTransactions(ctx, sess.Token, fetchPeriod(f))
	if err != nil {
		return nil, fmt.Errorf("transactions fetch: %w", err)
	}

	matched := make([]domain.Transaction, 0, len(txs))
	for _, t := range txs {
		if matches(t, f) {
			matched = append(matched, t)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].Date.Equal(matched[j].Date) {
			return matched[i].Date.After(matched[j].Date)
		}
		return matched[i].ID < matched[j].ID
	})
	span.SetAttributes(attribute.Int("transactions.matched", len(matched)))

	total := len(matched)
	from := total
	if f.Page-1 <= total/f.PageSize {
		from = min((f.Page-1)*f.PageSize, total)
	}
	to := from + f.PageSize
	if to > total {
		to = total
	}

	return &domain.ListResponse[domain.Transaction]{
		Data:     matched[from:to],
		Total:    total,
		Page:     f.Page,
		PageSize: f.PageSize,
		HasMore:  to < total,
	}, nil
}

func validateFilter(f *domain.TransactionFilter) error {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = defaultPageSize
	}
	if f.PageSize > maxPageSize {
		f.PageSize = maxPageSize
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return &domain.ErrValidation{Field: "to", Message: "must not be before from"}
	}
	if f.Kind != "" && !f.Kind.Valid() {
		return &domain.ErrValidation{Field: "kind", Message: fmt.Sprintf("unknown kind %q", f.Kind)}
	}
	if f.PaymentMethod != "" && !f.PaymentMethod.Valid() {
		return &domain.ErrValidation{Field: "paymentMethod", Message: fmt.Sprintf("unknown payment method %q", f.PaymentMethod)}
	}
	f.Query = strings.ToLower(strings.TrimSpace(f.Query))
	return nil
}

// fetchPeriod narrows the upstream fetch to one month when the filter fits
// inside it.
func fetchPeriod(f domain.TransactionFilter) domain.YearMonth {
	if f.From.IsZero() || f.To.IsZero() {
		return domain.YearMonth{}
	}
	from, to := domain.YearMonthOf(f.From), domain.YearMonthOf(f.To)
	if from != to {
		return domain.YearMonth{}
	}
	return from
}

func matches(t domain.Transaction, f domain.TransactionFilter) bool {
	d := domain.TruncateDay(t.Date)
	switch {
	case !f.From.IsZero() && d.Before(domain.TruncateDay(f.From)):
		return false
	case !f.To.IsZero() && d.After(domain.TruncateDay(f.To)):
		return false
	case f.Kind != "" && t.Kind != f.Kind:
		return false
	case f.PaymentMethod != "" && t.PaymentMethod != f.PaymentMethod:
		return false
	case f.CategoryID != "" && t.CategoryID != f.CategoryID:
		return false
	case f.Query != "" && !strings.Contains(strings.ToLower(t.Description), f.Query):
		return false
	}
	return true
}

// ============================================================
// CRUD: /v1/transactions/{id}
// ============================================================

// Get fetches one transaction.
func (s *TransactionService) Get(ctx context.Context, sess *domain.Session, id string) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "TransactionService.Get")
	defer span.End()

	if strings.TrimSpace(id) == "" {
		return nil, &domain.ErrValidation{Field: "id", Message: "is required"}
	}
	return s.store.GetTransaction(ctx, sess.Token, id)
}

// Create validates in and stores it upstream.
func (s *TransactionService) Create(ctx context.Context, sess *domain.Session, in domain.TransactionInput) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "TransactionService.Create")
	defer span.End()

	tx, err := s.build(ctx, sess, in)
	if err != nil {
		return nil, err
	}
	created, err := s.store.CreateTransaction(ctx, sess.Token, tx)
	if err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	s.logger.Info("transaction created",
		zap.String("session_id", sess.ID),
		zap.String("transaction_id", created.ID),
		zap.String("kind", string(created.Kind)),
	)
	return created, nil
}

// Update validates in and replaces transaction id upstream.
func (s *TransactionService) Update(ctx context.Context, sess *domain.Session, id string, in domain.TransactionInput) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "TransactionService.Update")
	defer span.End()

	if strings.TrimSpace(id) == "" {
		return nil, &domain.ErrValidation{Field: "id", Message: "is required"}
	}
	tx, err := s.build(ctx, sess, in)
	if err != nil {
		return nil, err
	}
	tx.ID = id

	updated, err := s.store.UpdateTransaction(ctx, sess.Token, tx)
	if err != nil {
		return nil, fmt.Errorf("update transaction: %w", err)
	}
	return updated, nil
}

// Delete removes transaction id upstream.
func (s *TransactionService) Delete(ctx context.Context, sess *domain.Session, id string) error {
	ctx, span := tracer.Start(ctx, "TransactionService.Delete")
	defer span.End()

	if strings.TrimSpace(id) == "" {
		return &domain.ErrValidation{Field: "id", Message: "is required"}
	}
	if err := s.store.DeleteTransaction(ctx, sess.Token, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.logger.Info("transaction deleted",
		zap.String("session_id", sess.ID),
		zap.String("transaction_id", id),
	)
	return nil
}

// build turns form input into a transaction. Expenses need a category; a
// category, when given, must exist.
func (s *TransactionService) build(ctx context.Context, sess *domain.Session, in domain.TransactionInput) (domain.Transaction, error) {
	if strings.TrimSpace(in.Date) == "" {
		return domain.Transaction{}, &domain.ErrValidation{Field: "date", Message: "is required"}
	}
	date, err := domain.ParseDate(strings.TrimSpace(in.Date))
	if err != nil {
		return domain.Transaction{}, err
	}

	amount, err := parseAmount(in)
	if err != nil || !amount.IsPositive() {
		return domain.Transaction{}, &domain.ErrValidation{Field: "amount", Message: "must be a positive amount"}
	}

	if !in.Kind.Valid() {
		return domain.Transaction{}, &domain.ErrValidation{Field: "kind", Message: fmt.Sprintf("unknown kind %q", in.Kind)}
	}
	if !in.PaymentMethod.Valid() {
		return domain.Transaction{}, &domain.ErrValidation{Field: "paymentMethod", Message: fmt.Sprintf("unknown payment method %q", in.PaymentMethod)}
	}

	desc := strings.TrimSpace(in.Description)
	if utf8.RuneCountInString(desc) > maxDescriptionLength {
		return domain.Transaction{}, &domain.ErrValidation{Field: "description", Message: fmt.Sprintf("must be at most %d characters", maxDescriptionLength)}
	}

	categoryID := strings.TrimSpace(in.CategoryID)
	if categoryID == "" && in.Kind == domain.KindExpense {
		return domain.Transaction{}, &domain.ErrValidation{Field: "categoryId", Message: "is required for expenses"}
	}
	if categoryID != "" {
		if err := s.requireCategory(ctx, sess, categoryID); err != nil {
			return domain.Transaction{}, err
		}
	}

	return domain.Transaction{
		Date:          date,
		Amount:        amount,
		Kind:          in.Kind,
		PaymentMethod: in.PaymentMethod,
		CategoryID:    categoryID,
		Description:   desc,
	}, nil
}

func parseAmount(in domain.TransactionInput) (decimal.Decimal, error) {
	if in.Amount == "" && strings.TrimSpace(in.AmountCents) != "" {
		return money.FromCentsDigits(in.AmountCents)
	}
	return money.Parse(string(in.Amount))
}

func (s *TransactionService) requireCategory(ctx context.Context, sess *domain.Session, id string) error {
	cats, err := s.categories.ListCategories(ctx, sess.Token)
	if err != nil {
		return fmt.Errorf("categories fetch: %w", err)
	}
	for _, c := range cats {
		if c.ID == id {
			return nil
		}
	}
	return &domain.ErrValidation{Field: "categoryId", Message: fmt.Sprintf("unknown category %q", id)}
}
