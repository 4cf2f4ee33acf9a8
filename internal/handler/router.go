package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/tecnomaub/rupia-wallet-bfa/internal/infra/observability"
	"github.com/tecnomaub/rupia-wallet-bfa/internal/service"
)

var tracer = otel.Tracer("handler")

// Probe is a dependency check reported by /healthz and gating /readyz.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

// Services are the application services behind the API. A nil service
// leaves its routes unmounted.
type Services struct {
	Auth         *service.AuthService
	Dashboard    *service.DashboardService
	Transactions *service.TransactionService
	Categories   *service.CategoryService
	Probes       []Probe
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(svc Services, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(ensureRequestID)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(svc.Probes, logger))
	r.Get("/readyz", readyzHandler(svc.Probes, logger))
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {
		r.Get("/metrics/bfa", bfaMetricsHandler(metrics))

		if svc.Auth == nil {
			return
		}

		// =============================================
		// Auth (public)
		// =============================================
		r.Post("/auth/login", authLoginHandler(svc.Auth, logger))
		r.Post("/auth/password/reset", authPasswordResetHandler(svc.Auth, logger))

		// =============================================
		// Guarded by session
		// =============================================
		r.Group(func(r chi.Router) {
			r.Use(SessionMiddleware(svc.Auth, logger))

			r.Post("/auth/logout", authLogoutHandler(svc.Auth, logger))
			r.Get("/me", meHandler())

			if svc.Dashboard != nil {
				r.Get("/dashboard", dashboardHandler(svc.Dashboard, logger))
				r.Get("/dashboard/history", dashboardHistoryHandler(svc.Dashboard, logger))
			}

			if svc.Transactions != nil {
				r.Get("/transactions", listTransactionsHandler(svc.Transactions, logger))
				r.Post("/transactions", createTransactionHandler(svc.Transactions, logger))
				r.Get("/transactions/{id}", getTransactionHandler(svc.Transactions, logger))
				r.Put("/transactions/{id}", updateTransactionHandler(svc.Transactions, logger))
				r.Delete("/transactions/{id}", deleteTransactionHandler(svc.Transactions, logger))
			}

			if svc.Categories != nil {
				r.Get("/categories", listCategoriesHandler(svc.Categories, logger))
				r.Post("/categories", createCategoryHandler(svc.Categories, logger))
				r.Get("/categories/{id}", getCategoryHandler(svc.Categories, logger))
				r.Put("/categories/{id}", updateCategoryHandler(svc.Categories, logger))
				r.Delete("/categories/{id}", deleteCategoryHandler(svc.Categories, logger))
			}
		})
	})

	return r
}
