package handler

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/tecnomaub/rupia-wallet-bfa/internal/domain"
	"github.com/tecnomaub/rupia-wallet-bfa/internal/infra/observability"
)

const probeTimeout = 2 * time.Second

func runProbes(ctx context.Context, probes []Probe, logger *zap.Logger) []domain.ServiceHealth {
	now := time.Now().Format(time.RFC3339)
	services := []domain.ServiceHealth{
		{Name: "bfa-api", Status: "healthy", LatencyMs: 0, LastChecked: now},
	}

	for _, p := range probes {
		pctx, cancel := context.WithTimeout(ctx, probeTimeout)
		start := time.Now()
		err := p.Check(pctx)
		cancel()

		h := domain.ServiceHealth{
			Name:        p.Name,
			Status:      "healthy",
			LatencyMs:   time.Since(start).Milliseconds(),
			LastChecked: now,
		}
		if err != nil {
			logger.Warn("health probe failed", zap.String("probe", p.Name), zap.Error(err))
			h.Status = "unhealthy"
			h.Detail = err.Error()
		}
		services = append(services, h)
	}
	return services
}

func healthzHandler(probes []Probe, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services := runProbes(r.Context(), probes, logger)

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status != "healthy" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler(probes []Probe, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, s := range runProbes(r.Context(), probes, logger) {
			if s.Status != "healthy" {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "failing": s.Name})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func bfaMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.Snapshot())
	}
}
