//go:build wireinject
// +build wireinject

package di

import (
	"Barashor/pkg/config"
	"Barashor/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideMetrics,
		ProvidePerformance,
		ProvideHealth,

		// Caches and outbound client
		ProvideSeriesCache,
		ProvideBytesCache,
		ProvideHTTPClient,

		// Acquisition
		ProvideBybitClient,
		ProvideMarketData,
		ProvideStream,

		// Persistence and events
		ProvideClickHouseClient,
		ProvideSignalStore,
		ProvideDecisionPublisher,

		// Core pipeline
		ProvideClassifier,
		ProvidePipeline,
		ProvideHistory,

		// HTTP surface
		ProvideSignalHandler,
		ProvideMonitoringHandler,

		// Background jobs
		ProvideScheduler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
