package scheduler

import (
	"context"
	"testing"
	"time"

	"Barashor/internal/classifier"
	"Barashor/internal/domain/models"
	"Barashor/internal/domain/repository"
	"Barashor/internal/service/cache"
	"Barashor/internal/usecase"
	"Barashor/pkg/logger"
)

type stubStore struct{}

func (stubStore) Init(ctx context.Context) error                           { return nil }
func (stubStore) Save(ctx context.Context, d *models.SignalDecision) error { return nil }
func (stubStore) Query(ctx context.Context, symbol string, limit int) ([]*models.SignalDecision, error) {
	return nil, nil
}
func (stubStore) Recent(ctx context.Context, f repository.RecentFilter) ([]*models.SignalDecision, error) {
	return nil, nil
}
func (stubStore) Aggregate(ctx context.Context) (*models.SignalStats, error) { return nil, nil }
func (stubStore) MarkStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	return 0, nil
}
func (stubStore) Health(ctx context.Context) error { return nil }
func (stubStore) Close() error                     { return nil }

func testPipeline() *usecase.Pipeline {
	return usecase.NewPipeline(nil, stubStore{}, nil,
		classifier.New(classifier.DefaultParams()), nil, nil,
		usecase.StrategyParams{MinCandles: 50}, logger.Nop())
}

func TestNewUsesDefaultSpecs(t *testing.T) {
	s, err := New(Config{StaleAfter: 4 * time.Hour}, testPipeline(), cache.NewSeriesCache(), stubStore{}, logger.Nop())
	if err != nil {
		t.Fatalf("New with default specs: %v", err)
	}
	s.Start()
	s.Stop()
}

func TestNewRejectsBadSpec(t *testing.T) {
	_, err := New(Config{AnalyzeSpec: "not a cron spec"}, testPipeline(), cache.NewSeriesCache(), stubStore{}, logger.Nop())
	if err == nil {
		t.Fatal("expected error for malformed cron spec")
	}
}
