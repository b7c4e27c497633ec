// Package bybit acquires market data from the Bybit v5 REST API: the
// tradable symbol universe, per-symbol OHLCV series and latest prices.
// Every read is memoized through a TTL cache so repeated evaluations inside
// the freshness window never touch the network twice.
package bybit

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"Barashor/internal/domain/models"
	"Barashor/internal/service/cache"
	pkghttp "Barashor/pkg/http"
	"Barashor/pkg/logger"
)

// Config carries the acquisition parameters.
type Config struct {
	BaseURL     string
	Category    string
	Interval    string
	KlineLimit  int
	QuoteSuffix string
	Workers     int
	MinCandles  int
	SymbolsTTL  time.Duration
	SeriesTTL   time.Duration
	PriceTTL    time.Duration
}

// OpRecorder receives per-operation timings. The performance monitor
// satisfies it; a nil recorder disables observation.
type OpRecorder interface {
	Record(op string, elapsed time.Duration, err error)
}

// Client implements repository.MarketData against Bybit.
type Client struct {
	http    *pkghttp.Client
	cfg     Config
	cache   *cache.SeriesCache
	shared  *cache.BytesCache
	monitor OpRecorder
	log     *logger.Logger
}

// Option configures optional collaborators.
type Option func(*Client)

// WithSharedCache plugs in a cross-process byte cache consulted for series
// payloads after a local miss.
func WithSharedCache(s *cache.BytesCache) Option {
	return func(c *Client) { c.shared = s }
}

// WithMonitor plugs in an operation recorder.
func WithMonitor(m OpRecorder) Option {
	return func(c *Client) { c.monitor = m }
}

func NewClient(httpClient *pkghttp.Client, cfg Config, local *cache.SeriesCache, log *logger.Logger, opts ...Option) *Client {
	c := &Client{
		http:  httpClient,
		cfg:   cfg,
		cache: local,
		log:   log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type instrumentsResponse struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  struct {
		List []struct {
			Symbol string `json:"symbol"`
		} `json:"list"`
	} `json:"result"`
}

type klineResponse struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  struct {
		List [][]string `json:"list"`
	} `json:"result"`
}

type tickersResponse struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  struct {
		List []struct {
			Symbol    string `json:"symbol"`
			LastPrice string `json:"lastPrice"`
		} `json:"list"`
	} `json:"result"`
}

// ListSymbols returns the tradable perpetual universe: quote-suffix matches
// only, denylisted names removed, duplicates collapsed, exchange order kept.
func (c *Client) ListSymbols(ctx context.Context) (symbols []string, err error) {
	defer c.observe("list_symbols", time.Now(), &err)

	key := cache.Key("symbols", c.cfg.Category, c.cfg.QuoteSuffix)
	if v, ok := c.cache.Get(key); ok {
		return v.([]string), nil
	}

	var resp instrumentsResponse
	if err = c.send(ctx, "/v5/market/instruments-info", map[string]string{
		"category": c.cfg.Category,
		"status":   "Trading",
	}, &resp); err != nil {
		return nil, fmt.Errorf("list symbols: %w", err)
	}
	if resp.RetCode != 0 {
		return nil, fmt.Errorf("list symbols: retCode %d: %s", resp.RetCode, resp.RetMsg)
	}

	seen := make(map[string]struct{}, len(resp.Result.List))
	symbols = make([]string, 0, len(resp.Result.List))
	for _, inst := range resp.Result.List {
		s := inst.Symbol
		if s == "" || !strings.HasSuffix(s, c.cfg.QuoteSuffix) || denylisted(s) {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		symbols = append(symbols, s)
	}

	c.cache.Set(key, symbols, c.cfg.SymbolsTTL)
	c.log.Debug("symbol universe refreshed", logger.Int("symbols", len(symbols)))
	return symbols, nil
}

// denylisted rejects leveraged-token lots (1000PEPEUSDT and friends) and
// synthetic test listings.
func denylisted(symbol string) bool {
	for _, p := range []string{"1000", "10000", "100000", "1000000", "TEST", "DEMO", "MOCK"} {
		if strings.HasPrefix(symbol, p) {
			return true
		}
	}
	return strings.Contains(symbol, "TEST") || strings.Contains(symbol, "DEMO")
}

// GetSeries returns the OHLCV series for symbol, ascending by timestamp.
func (c *Client) GetSeries(ctx context.Context, symbol string) (series models.Series, err error) {
	defer c.observe("get_series", time.Now(), &err)

	key := cache.Key("kline", symbol, c.cfg.Interval, c.cfg.KlineLimit)
	if v, ok := c.cache.Get(key); ok {
		return v.(models.Series), nil
	}
	if series, ok := c.sharedGet(ctx, key); ok {
		c.cache.Set(key, series, c.cfg.SeriesTTL)
		return series, nil
	}

	var resp klineResponse
	if err = c.send(ctx, "/v5/market/kline", map[string]string{
		"category": c.cfg.Category,
		"symbol":   symbol,
		"interval": c.cfg.Interval,
		"limit":    strconv.Itoa(c.cfg.KlineLimit),
	}, &resp); err != nil {
		return nil, fmt.Errorf("get klines %s: %w", symbol, err)
	}
	if resp.RetCode != 0 {
		return nil, fmt.Errorf("get klines %s: retCode %d: %s", symbol, resp.RetCode, resp.RetMsg)
	}

	series, err = parseKlines(resp.Result.List)
	if err != nil {
		return nil, fmt.Errorf("get klines %s: %w", symbol, err)
	}

	c.cache.Set(key, series, c.cfg.SeriesTTL)
	c.sharedSet(ctx, key, series)
	return series, nil
}

// parseKlines decodes rows of [startTime, open, high, low, close, volume,
// turnover] strings and orders them oldest first. Bybit returns newest
// first.
func parseKlines(rows [][]string) (models.Series, error) {
	series := make(models.Series, 0, len(rows))
	for _, row := range rows {
		if len(row) < 6 {
			return nil, fmt.Errorf("kline row has %d fields, want at least 6", len(row))
		}
		ms, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("kline timestamp %q: %w", row[0], err)
		}
		var vals [5]float64
		for i := 0; i < 5; i++ {
			vals[i], err = strconv.ParseFloat(row[i+1], 64)
			if err != nil {
				return nil, fmt.Errorf("kline field %q: %w", row[i+1], err)
			}
		}
		series = append(series, models.Candle{
			Timestamp: time.UnixMilli(ms).UTC(),
			Open:      vals[0],
			High:      vals[1],
			Low:       vals[2],
			Close:     vals[3],
			Volume:    vals[4],
		})
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Timestamp.Before(series[j].Timestamp)
	})
	return series, nil
}

// GetLatestPrice returns the last traded price for symbol.
func (c *Client) GetLatestPrice(ctx context.Context, symbol string) (price float64, err error) {
	defer c.observe("get_latest_price", time.Now(), &err)

	key := cache.Key("price", symbol)
	if v, ok := c.cache.Get(key); ok {
		return v.(float64), nil
	}

	var resp tickersResponse
	if err = c.send(ctx, "/v5/market/tickers", map[string]string{
		"category": c.cfg.Category,
		"symbol":   symbol,
	}, &resp); err != nil {
		return 0, fmt.Errorf("get price %s: %w", symbol, err)
	}
	if resp.RetCode != 0 {
		return 0, fmt.Errorf("get price %s: retCode %d: %s", symbol, resp.RetCode, resp.RetMsg)
	}
	if len(resp.Result.List) == 0 {
		return 0, fmt.Errorf("get price %s: empty ticker list", symbol)
	}

	price, err = strconv.ParseFloat(resp.Result.List[0].LastPrice, 64)
	if err != nil {
		return 0, fmt.Errorf("get price %s: last price %q: %w", symbol, resp.Result.List[0].LastPrice, err)
	}

	c.cache.Set(key, price, c.cfg.PriceTTL)
	return price, nil
}

// WarmPrice seeds the price cache out of band, e.g. from a ticker stream.
func (c *Client) WarmPrice(symbol string, price float64) {
	c.cache.Set(cache.Key("price", symbol), price, c.cfg.PriceTTL)
}

// GetAll fetches series and price for every symbol through a bounded worker
// pool. Symbols that fail, lack history, or report a non-positive price are
// dropped; the rest are collected over a channel so no accumulator is
// shared between workers.
func (c *Client) GetAll(ctx context.Context, symbols []string) []models.SymbolData {
	var err error
	defer c.observe("get_all", time.Now(), &err)

	jobs := make(chan string)
	results := make(chan models.SymbolData)

	var wg sync.WaitGroup
	for i := 0; i < c.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for symbol := range jobs {
				if data, ok := c.fetchSymbol(ctx, symbol); ok {
					select {
					case results <- data:
					case <-ctx.Done():
						return
					}
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, s := range symbols {
			select {
			case jobs <- s:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]models.SymbolData, 0, len(symbols))
	for data := range results {
		out = append(out, data)
	}

	c.log.Info("market data acquired",
		logger.Int("requested", len(symbols)),
		logger.Int("fetched", len(out)))
	return out
}

func (c *Client) fetchSymbol(ctx context.Context, symbol string) (models.SymbolData, bool) {
	series, err := c.GetSeries(ctx, symbol)
	if err != nil {
		c.log.Warn("series fetch failed", logger.String("symbol", symbol), logger.Error(err))
		return models.SymbolData{}, false
	}
	if len(series) < c.cfg.MinCandles {
		return models.SymbolData{}, false
	}

	price, err := c.GetLatestPrice(ctx, symbol)
	if err != nil {
		c.log.Warn("price fetch failed", logger.String("symbol", symbol), logger.Error(err))
		return models.SymbolData{}, false
	}
	if price <= 0 {
		return models.SymbolData{}, false
	}

	return models.SymbolData{Symbol: symbol, Series: series, LatestPrice: price}, true
}

func (c *Client) send(ctx context.Context, path string, query map[string]string, dest any) error {
	return c.http.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method:      pkghttp.MethodGet,
		URL:         c.cfg.BaseURL + path,
		QueryParams: query,
	}, dest)
}

func (c *Client) observe(op string, start time.Time, err *error) {
	if c.monitor == nil {
		return
	}
	var e error
	if err != nil {
		e = *err
	}
	c.monitor.Record(op, time.Since(start), e)
}

func (c *Client) sharedGet(ctx context.Context, key string) (models.Series, bool) {
	if c.shared == nil {
		return nil, false
	}
	b, ok, err := c.shared.Get(ctx, key)
	if err != nil {
		c.log.Warn("shared cache read failed", logger.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var series models.Series
	if err := json.Unmarshal(b, &series); err != nil {
		c.log.Warn("shared cache payload corrupt", logger.Error(err))
		return nil, false
	}
	return series, true
}

func (c *Client) sharedSet(ctx context.Context, key string, series models.Series) {
	if c.shared == nil {
		return
	}
	b, err := json.Marshal(series)
	if err != nil {
		return
	}
	if err := c.shared.Set(ctx, key, b, c.cfg.SeriesTTL); err != nil {
		c.log.Warn("shared cache write failed", logger.Error(err))
	}
}
