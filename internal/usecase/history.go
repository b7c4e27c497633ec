package usecase

import (
	"context"
	"fmt"

	"Barashor/internal/domain/models"
	"Barashor/internal/domain/repository"
)

// History serves read paths over persisted decisions.
type History struct {
	store repository.SignalStore
}

func NewHistory(store repository.SignalStore) *History {
	return &History{store: store}
}

// Signals returns persisted decisions newest first, optionally narrowed to
// one symbol.
func (h *History) Signals(ctx context.Context, symbol string, limit int) ([]*models.SignalDecision, error) {
	out, err := h.store.Query(ctx, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("signal history: %w", err)
	}
	return out, nil
}

// Recent returns the latest decisions matching the filter.
func (h *History) Recent(ctx context.Context, f repository.RecentFilter) ([]*models.SignalDecision, error) {
	out, err := h.store.Recent(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("recent signals: %w", err)
	}
	return out, nil
}

// Statistics returns the store-wide aggregate.
func (h *History) Statistics(ctx context.Context) (*models.SignalStats, error) {
	stats, err := h.store.Aggregate(ctx)
	if err != nil {
		return nil, fmt.Errorf("signal statistics: %w", err)
	}
	return stats, nil
}
