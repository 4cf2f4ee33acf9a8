package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/tecnomaub/rupia-wallet-bfa/internal/domain"
	"github.com/tecnomaub/rupia-wallet-bfa/internal/service"
)

// ============================================================
// Transactions
// ============================================================

func listTransactionsHandler(svc *service.TransactionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/transactions")
		defer span.End()

		filter, err := parseTransactionFilter(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		resp, err := svc.Search(ctx, SessionFromContext(ctx), filter)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func getTransactionHandler(svc *service.TransactionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/transactions/{id}")
		defer span.End()

		id := chi.URLParam(r, "id")
		span.SetAttributes(attribute.String("transaction.id", id))

		tx, err := svc.Get(ctx, SessionFromContext(ctx), id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, tx)
	}
}

func createTransactionHandler(svc *service.TransactionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/transactions")
		defer span.End()

		var in domain.TransactionInput
		if !decodeJSON(w, r, &in) {
			return
		}

		tx, err := svc.Create(ctx, SessionFromContext(ctx), in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, tx)
	}
}

func updateTransactionHandler(svc *service.TransactionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/transactions/{id}")
		defer span.End()

		id := chi.URLParam(r, "id")
		span.SetAttributes(attribute.String("transaction.id", id))

		var in domain.TransactionInput
		if !decodeJSON(w, r, &in) {
			return
		}

		tx, err := svc.Update(ctx, SessionFromContext(ctx), id, in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, tx)
	}
}

func deleteTransactionHandler(svc *service.TransactionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/transactions/{id}")
		defer span.End()

		id := chi.URLParam(r, "id")
		span.SetAttributes(attribute.String("transaction.id", id))

		if err := svc.Delete(ctx, SessionFromContext(ctx), id); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// parseTransactionFilter reads the search query. month is shorthand for a
// from/to pair covering that month and cannot be combined with them.
func parseTransactionFilter(r *http.Request) (domain.TransactionFilter, error) {
	q := r.URL.Query()
	var f domain.TransactionFilter
	f.Page, f.PageSize = parsePagination(r)

	if m := q.Get("month"); m != "" {
		if q.Get("from") != "" || q.Get("to") != "" {
			return f, &domain.ErrValidation{Field: "month", Message: "cannot be combined with from/to"}
		}
		p, err := monthParam(r, "month", domain.YearMonth{})
		if err != nil {
			return f, err
		}
		f.From, f.To = p.Start(), p.End()
	}

	var err error
	if f.From.IsZero() {
		if f.From, err = dateParam(r, "from"); err != nil {
			return f, err
		}
	}
	if f.To.IsZero() {
		if f.To, err = dateParam(r, "to"); err != nil {
			return f, err
		}
	}

	f.Kind = domain.Kind(strings.ToUpper(q.Get("kind")))
	f.PaymentMethod = domain.PaymentMethod(strings.ToUpper(q.Get("paymentMethod")))
	f.CategoryID = q.Get("categoryId")
	f.Query = q.Get("q")
	return f, nil
}

func dateParam(r *http.Request, name string) (time.Time, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return time.Time{}, nil
	}
	d, err := domain.ParseDate(v)
	if err != nil {
		return time.Time{}, &domain.ErrValidation{Field: name, Message: "expected yyyy-mm-dd, got " + v}
	}
	return d, nil
}
