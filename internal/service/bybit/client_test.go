package bybit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"Barashor/internal/service/cache"
	pkghttp "Barashor/pkg/http"
	"Barashor/pkg/logger"
)

func newTestClient(baseURL string) *Client {
	return NewClient(
		pkghttp.NewClient(pkghttp.WithTimeout(2*time.Second)),
		Config{
			BaseURL:     baseURL,
			Category:    "linear",
			Interval:    "240",
			KlineLimit:  100,
			QuoteSuffix: "USDT",
			Workers:     3,
			MinCandles:  50,
			SymbolsTTL:  time.Minute,
			SeriesTTL:   time.Minute,
			PriceTTL:    time.Minute,
		},
		cache.NewSeriesCache(),
		logger.Nop(),
	)
}

func instrumentsPayload(symbols ...string) map[string]any {
	list := make([]map[string]string, 0, len(symbols))
	for _, s := range symbols {
		list = append(list, map[string]string{"symbol": s})
	}
	return map[string]any{
		"retCode": 0,
		"retMsg":  "OK",
		"result":  map[string]any{"list": list},
	}
}

func klinePayload(n int) map[string]any {
	// Newest first, the way the exchange serves it.
	rows := make([][]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		ts := int64(1700000000000) + int64(i)*14400000
		px := 100 + float64(i)
		rows = append(rows, []string{
			fmt.Sprintf("%d", ts),
			fmt.Sprintf("%f", px-1),
			fmt.Sprintf("%f", px+2),
			fmt.Sprintf("%f", px-2),
			fmt.Sprintf("%f", px),
			"1000",
			"100000",
		})
	}
	return map[string]any{
		"retCode": 0,
		"retMsg":  "OK",
		"result":  map[string]any{"list": rows},
	}
}

func tickerPayload(symbol, price string) map[string]any {
	return map[string]any{
		"retCode": 0,
		"retMsg":  "OK",
		"result": map[string]any{
			"list": []map[string]string{{"symbol": symbol, "lastPrice": price}},
		},
	}
}

func serveJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func TestListSymbolsFilters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v5/market/instruments-info" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		serveJSON(w, instrumentsPayload(
			"BTCUSDT",
			"ETHUSDT",
			"BTCUSDT",        // duplicate
			"BTCUSD",         // wrong quote
			"1000PEPEUSDT",   // leveraged lot
			"10000SATSUSDT",  // leveraged lot
			"TESTBTCUSDT",    // test listing
			"XDEMOUSDT",      // test listing anywhere in the name
			"MOCKUSDT",       // synthetic
		))
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL).ListSymbols(context.Background())
	if err != nil {
		t.Fatalf("ListSymbols: %v", err)
	}
	want := []string{"BTCUSDT", "ETHUSDT"}
	if len(got) != len(want) {
		t.Fatalf("symbols = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("symbols = %v, want %v", got, want)
		}
	}
}

func TestListSymbolsCached(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		serveJSON(w, instrumentsPayload("BTCUSDT"))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := c.ListSymbols(ctx); err != nil {
			t.Fatalf("ListSymbols: %v", err)
		}
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Fatalf("server hit %d times, want 1", n)
	}
}

func TestGetSeriesParsesAndSorts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("symbol"); got != "BTCUSDT" {
			t.Errorf("symbol query = %s", got)
		}
		serveJSON(w, klinePayload(60))
	}))
	defer srv.Close()

	series, err := newTestClient(srv.URL).GetSeries(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("GetSeries: %v", err)
	}
	if len(series) != 60 {
		t.Fatalf("len = %d, want 60", len(series))
	}
	if !sort.SliceIsSorted(series, func(i, j int) bool {
		return series[i].Timestamp.Before(series[j].Timestamp)
	}) {
		t.Fatal("series is not ascending by timestamp")
	}
	if series[0].Close != 100 {
		t.Fatalf("oldest close = %v, want 100", series[0].Close)
	}
	if series[59].Close != 159 {
		t.Fatalf("newest close = %v, want 159", series[59].Close)
	}
}

func TestGetSeriesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		serveJSON(w, map[string]any{"retCode": 10001, "retMsg": "params error"})
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).GetSeries(context.Background(), "BTCUSDT"); err == nil {
		t.Fatal("expected error for non-zero retCode")
	}
}

func TestGetLatestPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		serveJSON(w, tickerPayload("BTCUSDT", "64250.5"))
	}))
	defer srv.Close()

	price, err := newTestClient(srv.URL).GetLatestPrice(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("GetLatestPrice: %v", err)
	}
	if price != 64250.5 {
		t.Fatalf("price = %v, want 64250.5", price)
	}
}

func TestWarmPriceSeedsCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("warmed price should not hit the network")
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	c.WarmPrice("BTCUSDT", 70000)

	price, err := c.GetLatestPrice(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("GetLatestPrice: %v", err)
	}
	if price != 70000 {
		t.Fatalf("price = %v, want 70000", price)
	}
}

func TestGetAllDropsFailingSymbols(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		symbol := r.URL.Query().Get("symbol")
		switch {
		case symbol == "BADUSDT":
			http.Error(w, "boom", http.StatusInternalServerError)
		case r.URL.Path == "/v5/market/kline" && symbol == "SHORTUSDT":
			serveJSON(w, klinePayload(10))
		case r.URL.Path == "/v5/market/kline":
			serveJSON(w, klinePayload(60))
		case r.URL.Path == "/v5/market/tickers":
			serveJSON(w, tickerPayload(symbol, "123.45"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	got := newTestClient(srv.URL).GetAll(context.Background(),
		[]string{"BTCUSDT", "ETHUSDT", "BADUSDT", "SHORTUSDT", "SOLUSDT"})

	if len(got) != 3 {
		t.Fatalf("fetched %d symbols, want 3", len(got))
	}
	for _, d := range got {
		if d.Symbol == "BADUSDT" || d.Symbol == "SHORTUSDT" {
			t.Fatalf("symbol %s should have been dropped", d.Symbol)
		}
		if len(d.Series) != 60 {
			t.Fatalf("%s series len = %d, want 60", d.Symbol, len(d.Series))
		}
		if d.LatestPrice != 123.45 {
			t.Fatalf("%s price = %v, want 123.45", d.Symbol, d.LatestPrice)
		}
	}
}
