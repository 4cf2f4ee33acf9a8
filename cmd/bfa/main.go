package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/tecnomaub/rupia-wallet-bfa/internal/config"
	"github.com/tecnomaub/rupia-wallet-bfa/internal/dashboard"
	"github.com/tecnomaub/rupia-wallet-bfa/internal/domain"
	"github.com/tecnomaub/rupia-wallet-bfa/internal/handler"
	"github.com/tecnomaub/rupia-wallet-bfa/internal/infra/cache"
	"github.com/tecnomaub/rupia-wallet-bfa/internal/infra/client"
	"github.com/tecnomaub/rupia-wallet-bfa/internal/infra/observability"
	"github.com/tecnomaub/rupia-wallet-bfa/internal/infra/resilience"
	"github.com/tecnomaub/rupia-wallet-bfa/internal/infra/session"
	"github.com/tecnomaub/rupia-wallet-bfa/internal/port"
	"github.com/tecnomaub/rupia-wallet-bfa/internal/service"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}
	loc, _ := cfg.Location()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("rupia_api_url", cfg.RupiaAPIURL),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.String("session_backend", cfg.SessionBackend),
		zap.Duration("session_ttl", cfg.SessionTTL),
		zap.Duration("category_cache_ttl", cfg.CategoryCacheTTL),
		zap.Int("statement_closing_day", cfg.StatementClosingDay),
		zap.String("timezone", cfg.Timezone),
		zap.Bool("dashboard_empty_on_fetch_error", cfg.DashboardEmptyOnFetchError),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "rupia-wallet-bfa")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
		BreakerTimeout: cfg.BreakerTimeout,
	}
	cb := resilience.NewCircuitBreaker("rupia-api", cfg.BreakerTimeout, logger)

	probes := []handler.Probe{{
		Name: "rupia-api",
		Check: func(context.Context) error {
			if cb.State() == gobreaker.StateOpen {
				return &domain.ErrCircuitOpen{Service: "rupia-api"}
			}
			return nil
		},
	}}

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	upstream := client.NewUpstream(httpClient, cfg.RupiaAPIURL, cb, resilienceCfg, metrics, logger)

	transactionsClient := client.NewTransactionsClient(upstream)
	categoriesClient := client.NewCategoriesClient(upstream)
	authClient := client.NewAuthClient(upstream)

	// --- Cache ---
	categoryCache := cache.New[[]domain.Category](cfg.CategoryCacheTTL)
	defer categoryCache.Close()
	categories := service.NewCachedCategories(categoriesClient, categoryCache, metrics)

	// --- Sessions ---
	var sessions port.SessionStore
	switch cfg.SessionBackend {
	case config.SessionBackendRedis:
		dialCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rdb, err := session.Dial(dialCtx, cfg.RedisURL)
		cancel()
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer rdb.Close()

		redisStore := session.NewRedis(rdb, cfg.SessionTTL)
		sessions = redisStore
		probes = append(probes, handler.Probe{Name: "redis", Check: redisStore.Ping})
		logger.Info("sessions stored in redis")
	default:
		memStore := session.NewMemory(cfg.SessionTTL)
		defer memStore.Close()
		sessions = memStore
		logger.Info("sessions stored in memory")
	}

	// --- Services ---
	authSvc := service.NewAuthService(authClient, sessions, cfg.SessionTTL, metrics, logger)

	dashboardSvc := service.NewDashboardService(
		transactionsClient,
		categories,
		service.DashboardOptions{
			Rules: dashboard.Rules{
				ReserveCategory: cfg.ReserveCategory,
				ClosingDay:      cfg.StatementClosingDay,
				DueDay:          cfg.StatementDueDay,
			},
			ExcludedCategories: cfg.ExcludedCategories,
			Location:           loc,
			EmptyOnFetchError:  cfg.DashboardEmptyOnFetchError,
		},
		metrics,
		logger,
	)

	transactionSvc := service.NewTransactionService(transactionsClient, categories, metrics, logger)
	categorySvc := service.NewCategoryService(categories, logger)

	// --- Router ---
	router := handler.NewRouter(handler.Services{
		Auth:         authSvc,
		Dashboard:    dashboardSvc,
		Transactions: transactionSvc,
		Categories:   categorySvc,
		Probes:       probes,
	}, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
