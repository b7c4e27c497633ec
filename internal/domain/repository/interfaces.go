package repository

import (
	"context"
	"time"

	"Barashor/internal/domain/models"
)

// MarketData provides symbol discovery and per-symbol time series.
type MarketData interface {
	// ListSymbols returns the tradable symbol universe, deduplicated,
	// filtered to the configured quote suffix, denylisted names removed.
	ListSymbols(ctx context.Context) ([]string, error)
	// GetSeries returns the OHLCV series for one symbol, ascending by time.
	GetSeries(ctx context.Context, symbol string) (models.Series, error)
	// GetLatestPrice returns the most recent traded price.
	GetLatestPrice(ctx context.Context, symbol string) (float64, error)
	// GetAll fetches series and price for every symbol with bounded
	// concurrency; symbols that fail or lack history are dropped.
	GetAll(ctx context.Context, symbols []string) []models.SymbolData
}

// RecentFilter narrows a recent-signals query.
type RecentFilter struct {
	Symbol    string
	Direction string
	ValidOnly bool
	Limit     int
}

// SignalStore persists classified decisions. Persistence is best-effort
// per decision; there is no batch atomicity.
type SignalStore interface {
	Init(ctx context.Context) error
	Save(ctx context.Context, d *models.SignalDecision) error
	Query(ctx context.Context, symbol string, limit int) ([]*models.SignalDecision, error)
	Recent(ctx context.Context, f RecentFilter) ([]*models.SignalDecision, error)
	Aggregate(ctx context.Context) (*models.SignalStats, error)
	MarkStale(ctx context.Context, olderThan time.Duration) (int64, error)
	Health(ctx context.Context) error
	Close() error
}

// DecisionPublisher emits persisted decisions as events. Best-effort.
type DecisionPublisher interface {
	Publish(ctx context.Context, d *models.SignalDecision) error
	Close() error
}

// Metrics records externally observable counters and latencies.
type Metrics interface {
	RecordDecision(direction, strength string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}
