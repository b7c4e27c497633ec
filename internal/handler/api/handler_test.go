package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"Barashor/internal/classifier"
	"Barashor/internal/domain/models"
	"Barashor/internal/domain/repository"
	"Barashor/internal/monitor"
	"Barashor/internal/service/cache"
	"Barashor/internal/usecase"
	"Barashor/pkg/logger"
)

type fakeMarket struct {
	symbols []string
	data    []models.SymbolData
	err     error
}

func (m *fakeMarket) ListSymbols(ctx context.Context) ([]string, error) { return m.symbols, m.err }
func (m *fakeMarket) GetSeries(ctx context.Context, symbol string) (models.Series, error) {
	return nil, nil
}
func (m *fakeMarket) GetLatestPrice(ctx context.Context, symbol string) (float64, error) {
	return 0, nil
}
func (m *fakeMarket) GetAll(ctx context.Context, symbols []string) []models.SymbolData {
	return m.data
}

type fakeStore struct {
	decisions []*models.SignalDecision
	stats     *models.SignalStats
	lastQuery struct {
		symbol string
		limit  int
	}
	lastFilter repository.RecentFilter
}

func (s *fakeStore) Init(ctx context.Context) error                           { return nil }
func (s *fakeStore) Save(ctx context.Context, d *models.SignalDecision) error { return nil }
func (s *fakeStore) Query(ctx context.Context, symbol string, limit int) ([]*models.SignalDecision, error) {
	s.lastQuery.symbol = symbol
	s.lastQuery.limit = limit
	return s.decisions, nil
}
func (s *fakeStore) Recent(ctx context.Context, f repository.RecentFilter) ([]*models.SignalDecision, error) {
	s.lastFilter = f
	return s.decisions, nil
}
func (s *fakeStore) Aggregate(ctx context.Context) (*models.SignalStats, error) {
	return s.stats, nil
}
func (s *fakeStore) MarkStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	return 0, nil
}
func (s *fakeStore) Health(ctx context.Context) error { return nil }
func (s *fakeStore) Close() error                     { return nil }

type nopPublisher struct{}

func (nopPublisher) Publish(ctx context.Context, d *models.SignalDecision) error { return nil }
func (nopPublisher) Close() error                                                { return nil }

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type listPayload struct {
	Rows  json.RawMessage `json:"rows"`
	Total int64           `json:"total"`
}

func newSignalEcho(store *fakeStore, market *fakeMarket) *echo.Echo {
	e := echo.New()
	params := usecase.StrategyParams{
		ZScorePeriod: 20, SMAPeriod: 50, RSIPeriod: 14,
		MACDFast: 12, MACDSlow: 26, MACDSignal: 9,
		VolumeSMAPeriod: 20, MinCandles: 50,
	}
	pipeline := usecase.NewPipeline(market, store, nopPublisher{},
		classifier.New(classifier.DefaultParams()), nil, nil, params, logger.Nop())
	NewSignalHandler(pipeline, usecase.NewHistory(store), market, logger.Nop()).RegisterRoutes(e)
	return e
}

func do(e *echo.Echo, method, target string) (*httptest.ResponseRecorder, envelope) {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

func sampleDecision(symbol string) *models.SignalDecision {
	return &models.SignalDecision{
		Symbol:       symbol,
		CurrentPrice: 100,
		Direction:    models.DirectionBuy,
		Strength:     models.StrengthStrong,
		Precision:    85,
		Timestamp:    time.Now().UTC(),
		Valid:        true,
	}
}

func TestSignalsEndpoint(t *testing.T) {
	store := &fakeStore{decisions: []*models.SignalDecision{sampleDecision("BTCUSDT"), sampleDecision("ETHUSDT")}}
	e := newSignalEcho(store, &fakeMarket{})

	_, env := do(e, http.MethodGet, "/api/signals?symbol=BTCUSDT&limit=5")
	if env.Status != http.StatusOK {
		t.Fatalf("status = %d, want 200", env.Status)
	}
	var list listPayload
	if err := json.Unmarshal(env.Data, &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if list.Total != 2 {
		t.Fatalf("total = %d, want 2", list.Total)
	}
	if store.lastQuery.symbol != "BTCUSDT" || store.lastQuery.limit != 5 {
		t.Fatalf("query = %+v, want BTCUSDT/5", store.lastQuery)
	}
}

func TestSignalsDefaultLimit(t *testing.T) {
	store := &fakeStore{}
	e := newSignalEcho(store, &fakeMarket{})

	_, env := do(e, http.MethodGet, "/api/signals")
	if env.Status != http.StatusOK {
		t.Fatalf("status = %d, want 200", env.Status)
	}
	if store.lastQuery.limit != 100 {
		t.Fatalf("default limit = %d, want 100", store.lastQuery.limit)
	}
}

func TestSignalsRejectsOversizedLimit(t *testing.T) {
	e := newSignalEcho(&fakeStore{}, &fakeMarket{})
	_, env := do(e, http.MethodGet, "/api/signals?limit=5000")
	if env.Status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", env.Status)
	}
}

func TestRecentSignalsFilter(t *testing.T) {
	store := &fakeStore{}
	e := newSignalEcho(store, &fakeMarket{})

	_, env := do(e, http.MethodGet, "/api/signals/recent?direction=BUY&valid_only=true&limit=10")
	if env.Status != http.StatusOK {
		t.Fatalf("status = %d, want 200", env.Status)
	}
	want := repository.RecentFilter{Direction: "BUY", ValidOnly: true, Limit: 10}
	if store.lastFilter != want {
		t.Fatalf("filter = %+v, want %+v", store.lastFilter, want)
	}
}

func TestRecentSignalsRejectsBadDirection(t *testing.T) {
	e := newSignalEcho(&fakeStore{}, &fakeMarket{})
	_, env := do(e, http.MethodGet, "/api/signals/recent?direction=HOLD")
	if env.Status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", env.Status)
	}
}

func TestSymbolHistoryNotFound(t *testing.T) {
	e := newSignalEcho(&fakeStore{}, &fakeMarket{})
	_, env := do(e, http.MethodGet, "/api/signals/NOPEUSDT/history")
	if env.Status != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", env.Status)
	}
}

func TestStatisticsEndpoint(t *testing.T) {
	store := &fakeStore{stats: &models.SignalStats{Total: 10, Valid: 4, BuyCount: 6, SellCount: 4, AvgPrecision: 72.5}}
	e := newSignalEcho(store, &fakeMarket{})

	_, env := do(e, http.MethodGet, "/api/statistics")
	if env.Status != http.StatusOK {
		t.Fatalf("status = %d, want 200", env.Status)
	}
	var stats models.SignalStats
	if err := json.Unmarshal(env.Data, &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Total != 10 || stats.AvgPrecision != 72.5 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestSymbolsEndpoint(t *testing.T) {
	e := newSignalEcho(&fakeStore{}, &fakeMarket{symbols: []string{"BTCUSDT", "ETHUSDT"}})
	_, env := do(e, http.MethodGet, "/api/symbols")
	if env.Status != http.StatusOK {
		t.Fatalf("status = %d, want 200", env.Status)
	}
	var list listPayload
	json.Unmarshal(env.Data, &list)
	if list.Total != 2 {
		t.Fatalf("total = %d, want 2", list.Total)
	}
}

func newMonitoringEcho(store *fakeStore, market *fakeMarket) (*echo.Echo, *cache.SeriesCache) {
	e := echo.New()
	sc := cache.NewSeriesCache()
	NewMonitoringHandler(sc, monitor.NewPerformance(nil), monitor.NewHealth(), market, store, logger.Nop()).RegisterRoutes(e)
	return e, sc
}

func TestCacheStatsEndpoint(t *testing.T) {
	e, sc := newMonitoringEcho(&fakeStore{}, &fakeMarket{})
	sc.Set("k", "v", time.Minute)

	_, env := do(e, http.MethodGet, "/api/monitoring/cache")
	if env.Status != http.StatusOK {
		t.Fatalf("status = %d, want 200", env.Status)
	}
	var stats cache.CacheStats
	json.Unmarshal(env.Data, &stats)
	if stats.TotalEntries != 1 {
		t.Fatalf("entries = %d, want 1", stats.TotalEntries)
	}
}

func TestClearCacheEndpoint(t *testing.T) {
	e, sc := newMonitoringEcho(&fakeStore{}, &fakeMarket{})
	sc.Set("k", "v", time.Minute)

	_, env := do(e, http.MethodPost, "/api/cache/clear")
	if env.Status != http.StatusOK {
		t.Fatalf("status = %d, want 200", env.Status)
	}
	if sc.Stats().TotalEntries != 0 {
		t.Fatal("cache not cleared")
	}
}

func TestHealthEndpointProbesComponents(t *testing.T) {
	e, _ := newMonitoringEcho(&fakeStore{}, &fakeMarket{symbols: []string{"BTCUSDT"}})

	_, env := do(e, http.MethodGet, "/api/monitoring/health")
	if env.Status != http.StatusOK {
		t.Fatalf("status = %d, want 200", env.Status)
	}
	var status monitor.HealthStatus
	if err := json.Unmarshal(env.Data, &status); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if !status.Overall || !status.APIConnectivity || !status.StoreConnectivity {
		t.Fatalf("health = %+v, want all healthy", status)
	}
}
