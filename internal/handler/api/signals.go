// Package api exposes the signal pipeline over REST.
package api

import (
	"github.com/labstack/echo/v4"

	"Barashor/internal/domain/models"
	"Barashor/internal/domain/repository"
	"Barashor/internal/usecase"
	pkghttp "Barashor/pkg/http"
	"Barashor/pkg/logger"
)

// SignalHandler serves analysis runs and the persisted signal read paths.
type SignalHandler struct {
	pipeline *usecase.Pipeline
	history  *usecase.History
	market   repository.MarketData
	log      *logger.Logger
}

func NewSignalHandler(pipeline *usecase.Pipeline, history *usecase.History, market repository.MarketData, log *logger.Logger) *SignalHandler {
	return &SignalHandler{pipeline: pipeline, history: history, market: market, log: log}
}

func (h *SignalHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/analyze", h.Analyze)
	g.GET("/signals", h.Signals)
	g.GET("/signals/recent", h.RecentSignals)
	g.GET("/signals/:symbol/history", h.SymbolHistory)
	g.GET("/statistics", h.Statistics)
	g.GET("/symbols", h.Symbols)
}

// Analyze runs a full market sweep and returns the ranked decisions.
func (h *SignalHandler) Analyze(c echo.Context) error {
	decisions, err := h.pipeline.EvaluateAll(c.Request().Context())
	if err != nil {
		h.log.Error("analysis sweep failed", logger.Error(err))
		return pkghttp.AppErrorResponse(c, pkghttp.InternalError("analysis sweep failed").WithError(err))
	}
	return pkghttp.ListResponse(c, decisions, int64(len(decisions)))
}

// Signals returns persisted decisions, newest first.
func (h *SignalHandler) Signals(c echo.Context) error {
	var req models.SignalsRequest
	if payload := pkghttp.ReadAndValidateRequest(c, &req); payload != nil {
		return pkghttp.BadRequestResponse(c, payload)
	}

	decisions, err := h.history.Signals(c.Request().Context(), req.Symbol, req.Limit)
	if err != nil {
		h.log.Error("signal history query failed", logger.Error(err))
		return pkghttp.AppErrorResponse(c, err)
	}
	return pkghttp.ListResponse(c, decisions, int64(len(decisions)))
}

// RecentSignals returns the latest decisions matching the filter.
func (h *SignalHandler) RecentSignals(c echo.Context) error {
	var req models.RecentSignalsRequest
	if payload := pkghttp.ReadAndValidateRequest(c, &req); payload != nil {
		return pkghttp.BadRequestResponse(c, payload)
	}

	decisions, err := h.history.Recent(c.Request().Context(), repository.RecentFilter{
		Symbol:    req.Symbol,
		Direction: req.Direction,
		ValidOnly: req.ValidOnly,
		Limit:     req.Limit,
	})
	if err != nil {
		h.log.Error("recent signals query failed", logger.Error(err))
		return pkghttp.AppErrorResponse(c, err)
	}
	return pkghttp.ListResponse(c, decisions, int64(len(decisions)))
}

// SymbolHistory returns the persisted decisions for one symbol.
func (h *SignalHandler) SymbolHistory(c echo.Context) error {
	symbol := c.Param("symbol")
	if symbol == "" {
		return pkghttp.BadRequestResponse(c, "symbol is required")
	}

	var req models.SignalsRequest
	if payload := pkghttp.ReadAndValidateRequest(c, &req); payload != nil {
		return pkghttp.BadRequestResponse(c, payload)
	}

	decisions, err := h.history.Signals(c.Request().Context(), symbol, req.Limit)
	if err != nil {
		h.log.Error("symbol history query failed", logger.String("symbol", symbol), logger.Error(err))
		return pkghttp.AppErrorResponse(c, err)
	}
	if len(decisions) == 0 {
		return pkghttp.AppErrorResponse(c, pkghttp.NotFoundError("no signals for "+symbol))
	}
	return pkghttp.ListResponse(c, decisions, int64(len(decisions)))
}

// Statistics returns the store-wide aggregate.
func (h *SignalHandler) Statistics(c echo.Context) error {
	stats, err := h.history.Statistics(c.Request().Context())
	if err != nil {
		h.log.Error("statistics query failed", logger.Error(err))
		return pkghttp.AppErrorResponse(c, err)
	}
	return pkghttp.SuccessResponse(c, stats)
}

// Symbols returns the current tradable universe.
func (h *SignalHandler) Symbols(c echo.Context) error {
	symbols, err := h.market.ListSymbols(c.Request().Context())
	if err != nil {
		h.log.Error("symbol listing failed", logger.Error(err))
		return pkghttp.AppErrorResponse(c, err)
	}
	return pkghttp.ListResponse(c, symbols, int64(len(symbols)))
}
