package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/tecnomaub/rupia-wallet-bfa/internal/domain"
	"github.com/tecnomaub/rupia-wallet-bfa/internal/service"
)

// defaultHistoryMonths is the span of /v1/dashboard/history without from.
const defaultHistoryMonths = 6

// ============================================================
// Dashboard
// ============================================================

func dashboardHandler(svc *service.DashboardService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/dashboard")
		defer span.End()

		period, err := monthParam(r, "month", domain.YearMonthOf(svc.Today()))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		view, err := svc.Monthly(ctx, SessionFromContext(ctx), period)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, view)
	}
}

func dashboardHistoryHandler(svc *service.DashboardService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/dashboard/history")
		defer span.End()

		to, err := monthParam(r, "to", domain.YearMonthOf(svc.Today()))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		from := to
		for i := 1; i < defaultHistoryMonths; i++ {
			from = from.Prev()
		}
		from, err = monthParam(r, "from", from)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		view, err := svc.History(ctx, SessionFromContext(ctx), from, to)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, view)
	}
}

// monthParam reads a yyyy-mm query parameter, falling back to def when absent.
func monthParam(r *http.Request, name string, def domain.YearMonth) (domain.YearMonth, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	p, err := domain.ParseYearMonth(v)
	if err != nil {
		return domain.YearMonth{}, &domain.ErrValidation{Field: name, Message: "expected yyyy-mm, got " + v}
	}
	return p, nil
}
