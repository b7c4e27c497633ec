package api

import (
	"github.com/labstack/echo/v4"

	"Barashor/internal/domain/repository"
	"Barashor/internal/monitor"
	"Barashor/internal/service/cache"
	pkghttp "Barashor/pkg/http"
	"Barashor/pkg/logger"
)

// MonitoringHandler exposes cache occupancy, operation aggregates and the
// component health view.
type MonitoringHandler struct {
	cache  *cache.SeriesCache
	perf   *monitor.Performance
	health *monitor.Health
	market repository.MarketData
	store  repository.SignalStore
	log    *logger.Logger
}

func NewMonitoringHandler(
	seriesCache *cache.SeriesCache,
	perf *monitor.Performance,
	health *monitor.Health,
	market repository.MarketData,
	store repository.SignalStore,
	log *logger.Logger,
) *MonitoringHandler {
	return &MonitoringHandler{
		cache:  seriesCache,
		perf:   perf,
		health: health,
		market: market,
		store:  store,
		log:    log,
	}
}

func (h *MonitoringHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/monitoring/cache", h.CacheStats)
	g.GET("/monitoring/metrics", h.OperationMetrics)
	g.GET("/monitoring/health", h.HealthCheck)
	g.POST("/cache/clear", h.ClearCache)
}

// CacheStats returns entry counts and the approximate memory footprint.
func (h *MonitoringHandler) CacheStats(c echo.Context) error {
	return pkghttp.SuccessResponse(c, h.cache.Stats())
}

// OperationMetrics returns per-operation timing aggregates.
func (h *MonitoringHandler) OperationMetrics(c echo.Context) error {
	return pkghttp.SuccessResponse(c, h.perf.Snapshot())
}

// HealthCheck probes both components and returns the refreshed view.
func (h *MonitoringHandler) HealthCheck(c echo.Context) error {
	ctx := c.Request().Context()
	h.health.ProbeAcquisition(ctx, h.market)
	h.health.ProbeStore(ctx, h.store)

	status := h.health.Status()
	if !status.Overall {
		h.log.Warn("health check degraded",
			logger.Bool("api", status.APIConnectivity),
			logger.Bool("store", status.StoreConnectivity))
	}
	return pkghttp.SuccessResponse(c, status)
}

// ClearCache drops every cached payload.
func (h *MonitoringHandler) ClearCache(c echo.Context) error {
	h.cache.Clear()
	h.log.Info("cache cleared on request")
	return pkghttp.SuccessResponse(c, map[string]string{"status": "cache cleared"})
}
