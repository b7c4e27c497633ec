package di

import (
	"context"
	"fmt"
	"time"

	"Barashor/internal/classifier"
	"Barashor/internal/domain/repository"
	"Barashor/internal/handler/api"
	"Barashor/internal/monitor"
	internalrepo "Barashor/internal/repository"
	"Barashor/internal/scheduler"
	"Barashor/internal/service/bybit"
	"Barashor/internal/service/cache"
	"Barashor/internal/usecase"
	pkgch "Barashor/pkg/clickhouse"
	"Barashor/pkg/config"
	pkghttp "Barashor/pkg/http"
	pkgkafka "Barashor/pkg/kafka"
	"Barashor/pkg/logger"
	"Barashor/pkg/metrics"
	"Barashor/pkg/server"
)

// ProvideLogger builds the application logger from config.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	l, err := logger.New(&logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates the Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvidePerformance creates the operation-timing aggregator.
func ProvidePerformance(m repository.Metrics) *monitor.Performance {
	return monitor.NewPerformance(m)
}

// ProvideHealth creates the component health monitor.
func ProvideHealth() *monitor.Health {
	return monitor.NewHealth()
}

// ProvideSeriesCache creates the in-process TTL cache.
func ProvideSeriesCache() *cache.SeriesCache {
	return cache.NewSeriesCache()
}

// ProvideBytesCache creates the optional Redis payload cache; nil when
// disabled.
func ProvideBytesCache(cfg *config.Config) *cache.BytesCache {
	if !cfg.Cache.Redis.Enabled {
		return nil
	}
	return cache.NewBytesCache(cfg.Cache.Redis.Addr, cfg.Cache.Redis.Password, cfg.Cache.Redis.DB)
}

// ProvideHTTPClient creates the outbound HTTP client with the exchange
// request timeout.
func ProvideHTTPClient(cfg *config.Config) *pkghttp.Client {
	return pkghttp.NewClient(pkghttp.WithTimeout(cfg.Bybit.RequestTimeout))
}

// ProvideBybitClient creates the market-data acquisition client.
func ProvideBybitClient(
	cfg *config.Config,
	httpClient *pkghttp.Client,
	seriesCache *cache.SeriesCache,
	bytesCache *cache.BytesCache,
	perf *monitor.Performance,
	log *logger.Logger,
) *bybit.Client {
	opts := []bybit.Option{bybit.WithMonitor(perf)}
	if bytesCache != nil {
		opts = append(opts, bybit.WithSharedCache(bytesCache))
	}
	return bybit.NewClient(httpClient, bybit.Config{
		BaseURL:     cfg.Bybit.BaseURL,
		Category:    cfg.Bybit.Category,
		Interval:    cfg.Bybit.Interval,
		KlineLimit:  cfg.Bybit.KlineLimit,
		QuoteSuffix: cfg.Bybit.QuoteSuffix,
		Workers:     cfg.Bybit.Workers,
		MinCandles:  cfg.Strategy.MinCandles,
		SymbolsTTL:  cfg.Cache.SymbolsTTL,
		SeriesTTL:   cfg.Cache.SeriesTTL,
		PriceTTL:    cfg.Cache.PriceTTL,
	}, seriesCache, log, opts...)
}

// ProvideMarketData exposes the Bybit client through the domain interface.
func ProvideMarketData(c *bybit.Client) repository.MarketData {
	return c
}

// ProvideClickHouseClient creates the ClickHouse connection pool.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideSignalStore creates the signal store and ensures its schema.
func ProvideSignalStore(chClient *pkgch.Client, log *logger.Logger) (repository.SignalStore, error) {
	store := internalrepo.NewSignalStore(chClient, log)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		_ = chClient.Close()
		return nil, fmt.Errorf("signal store schema: %w", err)
	}
	return store, nil
}

// ProvideDecisionPublisher creates the Kafka publisher, or a no-op when
// event streaming is disabled.
func ProvideDecisionPublisher(cfg *config.Config) (repository.DecisionPublisher, error) {
	if !cfg.Kafka.Enabled {
		return internalrepo.NopPublisher{}, nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatch(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic), nil
}

// ProvideClassifier builds the decision classifier from strategy config.
func ProvideClassifier(cfg *config.Config) *classifier.Classifier {
	return classifier.New(classifier.Params{
		ZScoreThreshold: cfg.Strategy.ZScoreThreshold,
		RSIOverbought:   cfg.Strategy.RSIOverbought,
		RSIOversold:     cfg.Strategy.RSIOversold,
		MinPrecision:    cfg.Strategy.MinPrecision,
	})
}

// ProvidePipeline wires the full evaluation pipeline.
func ProvidePipeline(
	cfg *config.Config,
	market repository.MarketData,
	store repository.SignalStore,
	publisher repository.DecisionPublisher,
	cls *classifier.Classifier,
	m repository.Metrics,
	perf *monitor.Performance,
	log *logger.Logger,
) *usecase.Pipeline {
	return usecase.NewPipeline(market, store, publisher, cls, m, perf, usecase.StrategyParams{
		ZScorePeriod:    cfg.Strategy.ZScorePeriod,
		SMAPeriod:       cfg.Strategy.SMAPeriod,
		RSIPeriod:       cfg.Strategy.RSIPeriod,
		MACDFast:        cfg.Strategy.MACDFast,
		MACDSlow:        cfg.Strategy.MACDSlow,
		MACDSignal:      cfg.Strategy.MACDSignal,
		VolumeSMAPeriod: cfg.Strategy.VolumeSMAPeriod,
		MinCandles:      cfg.Strategy.MinCandles,
	}, log)
}

// ProvideHistory wires the read-path use case.
func ProvideHistory(store repository.SignalStore) *usecase.History {
	return usecase.NewHistory(store)
}

// ProvideSignalHandler wires the signal REST handler.
func ProvideSignalHandler(pipeline *usecase.Pipeline, history *usecase.History, market repository.MarketData, log *logger.Logger) *api.SignalHandler {
	return api.NewSignalHandler(pipeline, history, market, log)
}

// ProvideMonitoringHandler wires the monitoring REST handler.
func ProvideMonitoringHandler(
	seriesCache *cache.SeriesCache,
	perf *monitor.Performance,
	health *monitor.Health,
	market repository.MarketData,
	store repository.SignalStore,
	log *logger.Logger,
) *api.MonitoringHandler {
	return api.NewMonitoringHandler(seriesCache, perf, health, market, store, log)
}

// ProvideScheduler creates the cron runner; nil when scheduling is
// disabled.
func ProvideScheduler(
	cfg *config.Config,
	pipeline *usecase.Pipeline,
	seriesCache *cache.SeriesCache,
	store repository.SignalStore,
	log *logger.Logger,
) (*scheduler.Scheduler, error) {
	if !cfg.Scheduler.Enabled {
		return nil, nil
	}
	return scheduler.New(scheduler.Config{
		AnalyzeSpec:   cfg.Scheduler.AnalyzeSpec,
		CacheSweep:    cfg.Scheduler.CacheSweep,
		MarkStaleSpec: cfg.Scheduler.MarkStaleSpec,
		StaleAfter:    cfg.Scheduler.StaleAfter,
	}, pipeline, seriesCache, store, log)
}

// ProvideStream creates the ticker stream; nil when disabled.
func ProvideStream(cfg *config.Config, client *bybit.Client, log *logger.Logger) *bybit.Stream {
	if !cfg.Bybit.Stream.Enabled {
		return nil
	}
	return bybit.NewStream(bybit.StreamConfig{
		URL:            cfg.Bybit.Stream.URL,
		ReconnectDelay: cfg.Bybit.Stream.ReconnectDelay,
		PingInterval:   cfg.Bybit.Stream.PingInterval,
	}, client, log)
}

// ProvideApp assembles the application server.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	signalHandler *api.SignalHandler,
	monitoringHandler *api.MonitoringHandler,
	sched *scheduler.Scheduler,
	stream *bybit.Stream,
	market repository.MarketData,
	store repository.SignalStore,
	publisher repository.DecisionPublisher,
) *server.App {
	return server.New(cfg, log, sched, stream, market, store, publisher,
		signalHandler, monitoringHandler)
}
