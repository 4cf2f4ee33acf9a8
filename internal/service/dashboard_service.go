package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tecnomaub/rupia-wallet-bfa/internal/dashboard"
	"github.com/tecnomaub/rupia-wallet-bfa/internal/domain"
	"github.com/tecnomaub/rupia-wallet-bfa/internal/infra/observability"
	"github.com/tecnomaub/rupia-wallet-bfa/internal/money"
	"github.com/tecnomaub/rupia-wallet-bfa/internal/port"
)

var tracer = otel.Tracer("service")

// maxHistoryMonths bounds GET /v1/dashboard/history.
const maxHistoryMonths = 24

// DashboardOptions are the business settings of the dashboard.
type DashboardOptions struct {
	Rules              dashboard.Rules
	ExcludedCategories []string
	Location           *time.Location
	// EmptyOnFetchError renders an all-zero, degraded dashboard when the
	// upstream fetch fails instead of returning the error.
	EmptyOnFetchError bool
}

// DashboardService fetches a period's data and aggregates it.
type DashboardService struct {
	transactions port.TransactionsFetcher
	categories   port.CategoriesFetcher
	latest       *Latest
	opts         DashboardOptions
	now          func() time.Time
	metrics      *observability.Metrics
	logger       *zap.Logger
}

// NewDashboardService creates the dashboard service with all dependencies injected.
func NewDashboardService(
	transactions port.TransactionsFetcher,
	categories port.CategoriesFetcher,
	opts DashboardOptions,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *DashboardService {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Rules.ClosingDay == 0 {
		opts.Rules = dashboard.DefaultRules()
	}
	return &DashboardService{
		transactions: transactions,
		categories:   categories,
		latest:       NewLatest(),
		opts:         opts,
		now:          time.Now,
		metrics:      metrics,
		logger:       logger,
	}
}

// WithClock replaces the clock used for "today". Intended for tests.
func (s *DashboardService) WithClock(now func() time.Time) *DashboardService {
	s.now = now
	return s
}

// Today is the current civil date in the configured zone.
func (s *DashboardService) Today() time.Time {
	t := s.now().In(s.opts.Location)
	return domain.Date(t.Year(), t.Month(), t.Day())
}

// Monthly builds the dashboard of period for sess. A newer Monthly call for
// the same session makes this one return domain.ErrSuperseded.
func (s *DashboardService) Monthly(ctx context.Context, sess *domain.Session, period domain.YearMonth) (*domain.DashboardView, error) {
	ctx, span := tracer.Start(ctx, "DashboardService.Monthly")
	defer span.End()
	span.SetAttributes(attribute.String("period", period.String()))

	start := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration("dashboard", time.Since(start))
	}()

	sel := s.latest.Begin(ctx, sess.Key)
	defer sel.End()

	txs, cats, err := s.fetch(sel.Context(), sess.Token, period)
	if sel.Superseded() {
		s.metrics.IncrSuperseded()
		s.logger.Debug("dashboard request superseded",
			zap.String("session_id", sess.ID),
			zap.String("period", period.String()),
		)
		return nil, domain.ErrSuperseded
	}

	degraded := false
	if err != nil {
		if !s.opts.EmptyOnFetchError || !degradable(err) {
			return nil, err
		}
		s.logger.Warn("dashboard fetch failed, rendering empty period",
			zap.String("session_id", sess.ID),
			zap.String("period", period.String()),
			zap.Error(err),
		)
		txs, cats, degraded = nil, nil, true
	}

	cats = dashboard.ExcludeCategories(cats, s.opts.ExcludedCategories...)
	txs = dashboard.FilterPeriod(txs, period)

	result := dashboard.Aggregate(txs, cats, int(period.Month), s.Today(), s.opts.Rules)
	s.metrics.IncrDashboard(degraded)

	return &domain.DashboardView{
		Period:      period,
		GeneratedAt: s.now().UTC(),
		Degraded:    degraded,
		Summary:     result,
		Display:     display(result),
	}, nil
}

// display formats the summary for the frontend and fills each category
// row's TotalDisplay in place.
func display(res domain.AggregationResult) domain.SummaryDisplay {
	for i := range res.CategoryTotals {
		res.CategoryTotals[i].TotalDisplay = money.Format(res.CategoryTotals[i].Total)
	}
	return domain.SummaryDisplay{
		TotalIncome:           money.Format(res.TotalIncome),
		TotalExpense:          money.Format(res.TotalExpense),
		Balance:               money.Format(res.Balance),
		CurrentStatementTotal: money.Format(res.CurrentStatementTotal),
		ReserveTotal:          money.Format(res.ReserveTotal),
	}
}

// History returns the per-month income/expense series and the per-category
// totals between from and to, inclusive.
func (s *DashboardService) History(ctx context.Context, sess *domain.Session, from, to domain.YearMonth) (*domain.HistoryView, error) {
	ctx, span := tracer.Start(ctx, "DashboardService.History")
	defer span.End()
	span.SetAttributes(
		attribute.String("from", from.String()),
		attribute.String("to", to.String()),
	)

	if to.Before(from) {
		return nil, &domain.ErrValidation{Field: "to", Message: "must not be before from"}
	}
	if monthsBetween(from, to) > maxHistoryMonths {
		return nil, &domain.ErrValidation{Field: "to", Message: fmt.Sprintf("range is limited to %d months", maxHistoryMonths)}
	}

	start := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration("dashboard_history", time.Since(start))
	}()

	txs, cats, err := s.fetch(ctx, sess.Token, domain.YearMonth{})
	if err != nil {
		return nil, err
	}

	cats = dashboard.ExcludeCategories(cats, s.opts.ExcludedCategories...)
	txs = dashboard.FilterRange(txs, from, to)
	months := dashboard.FillMonths(dashboard.MonthlySeries(txs), from, to)

	view := &domain.HistoryView{
		From:           from,
		To:             to,
		Months:         months,
		CategoryTotals: dashboard.CategoryTotals(txs, cats),
	}
	for i := range view.CategoryTotals {
		view.CategoryTotals[i].TotalDisplay = money.Format(view.CategoryTotals[i].Total)
	}
	view.TotalIncome, view.TotalExpense = sumSeries(months)
	return view, nil
}

// fetch loads the period's transactions and every category concurrently.
func (s *DashboardService) fetch(ctx context.Context, token string, period domain.YearMonth) ([]domain.Transaction, []domain.Category, error) {
	var (
		txs  []domain.Transaction
		cats []domain.Category
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		t, err := s.transactions.ListTransactions(gCtx, token, period)
		if err != nil {
			return fmt.Errorf("transactions fetch: %w", err)
		}
		txs = t
		return nil
	})

	g.Go(func() error {
		c, err := s.categories.ListCategories(gCtx, token)
		if err != nil {
			return fmt.Errorf("categories fetch: %w", err)
		}
		cats = c
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return txs, cats, nil
}

// degradable reports whether a fetch error may be rendered as an empty
// period. Authentication and caller errors always surface.
func degradable(err error) bool {
	var (
		unauthorized *domain.ErrUnauthorized
		validation   *domain.ErrValidation
	)
	if errors.As(err, &unauthorized) || errors.As(err, &validation) {
		return false
	}
	return !errors.Is(err, context.Canceled)
}

func monthsBetween(from, to domain.YearMonth) int {
	return (to.Year-from.Year)*12 + int(to.Month-from.Month) + 1
}

func sumSeries(months []domain.MonthTotals) (income, expense decimal.Decimal) {
	income, expense = decimal.Zero, decimal.Zero
	for _, m := range months {
		income = income.Add(m.Income)
		expense = expense.Add(m.Expense)
	}
	return income, expense
}
