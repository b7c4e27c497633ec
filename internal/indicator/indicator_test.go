package indicator

import (
	"math"
	"testing"
)

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func constant(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func ascending(start float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)
	}
	return out
}

func TestSMA(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		period int
		want   float64
	}{
		{"empty", nil, 5, 0},
		{"short averages available", []float64{2, 4}, 5, 3},
		{"exact window", []float64{1, 2, 3}, 3, 2},
		{"uses last period only", []float64{100, 1, 2, 3}, 3, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SMA(tt.values, tt.period)
			if !almostEqual(got, tt.want, 1e-9) {
				t.Fatalf("SMA(%v, %d) = %v, want %v", tt.values, tt.period, got, tt.want)
			}
		})
	}
}

func TestZScore(t *testing.T) {
	if got := ZScore([]float64{1, 2}, 3); got != 0 {
		t.Fatalf("short series z = %v, want 0", got)
	}
	if got := ZScore(constant(5, 30), 20); got != 0 {
		t.Fatalf("flat series z = %v, want 0", got)
	}
	// Window [1,2,3]: mean 2, sample std 1, last value 3.
	if got := ZScore([]float64{1, 2, 3}, 3); !almostEqual(got, 1, 1e-9) {
		t.Fatalf("z = %v, want 1", got)
	}
	// Same window regardless of older values.
	if got := ZScore([]float64{50, 1, 2, 3}, 3); !almostEqual(got, 1, 1e-9) {
		t.Fatalf("z with prefix = %v, want 1", got)
	}
}

func TestRSI(t *testing.T) {
	if got := RSI(ascending(1, 14), 14); got != 50 {
		t.Fatalf("short series rsi = %v, want 50", got)
	}
	if got := RSI(ascending(1, 30), 14); got != 100 {
		t.Fatalf("all-gain rsi = %v, want 100", got)
	}
	// Deltas in window: -1 then +1: equal gain and loss, rsi 50.
	if got := RSI([]float64{1, 2, 1, 2}, 2); !almostEqual(got, 50, 1e-9) {
		t.Fatalf("balanced rsi = %v, want 50", got)
	}
	// Window deltas +2, -1: avg gain 1, avg loss 0.5, rs 2, rsi 100-100/3.
	if got := RSI([]float64{5, 7, 6}, 2); !almostEqual(got, 100-100.0/3, 1e-9) {
		t.Fatalf("rsi = %v, want %v", got, 100-100.0/3)
	}
}

func TestMACD(t *testing.T) {
	line, sig, hist := MACD(ascending(1, 10), 12, 26, 9)
	if line != 0 || sig != 0 || hist != 0 {
		t.Fatalf("short series macd = (%v, %v, %v), want zeros", line, sig, hist)
	}

	line, sig, hist = MACD(constant(100, 60), 12, 26, 9)
	if !almostEqual(line, 0, 1e-9) || !almostEqual(sig, 0, 1e-9) || !almostEqual(hist, 0, 1e-9) {
		t.Fatalf("flat series macd = (%v, %v, %v), want zeros", line, sig, hist)
	}

	// Sustained uptrend: fast ema above slow ema, line above its signal.
	line, sig, hist = MACD(ascending(1, 60), 12, 26, 9)
	if line <= 0 {
		t.Fatalf("uptrend macd line = %v, want > 0", line)
	}
	if hist <= 0 {
		t.Fatalf("uptrend macd histogram = %v, want > 0", hist)
	}

	// Downtrend mirrors the uptrend.
	down := make([]float64, 60)
	for i := range down {
		down[i] = float64(100 - i)
	}
	line, _, hist = MACD(down, 12, 26, 9)
	if line >= 0 || hist >= 0 {
		t.Fatalf("downtrend macd = (%v, hist %v), want both < 0", line, hist)
	}
}

func TestEWMAMatchesAdjustedWeighting(t *testing.T) {
	// span 3: alpha 0.5. For [2, 4]: (4 + 0.5*2) / (1 + 0.5) = 10/3.
	out := ewma([]float64{2, 4}, 3)
	if !almostEqual(out[0], 2, 1e-9) {
		t.Fatalf("ewma[0] = %v, want 2", out[0])
	}
	if !almostEqual(out[1], 10.0/3, 1e-9) {
		t.Fatalf("ewma[1] = %v, want %v", out[1], 10.0/3)
	}
}

func TestBollinger(t *testing.T) {
	u, m, l := Bollinger([]float64{1, 2}, 20, 2)
	if u != 0 || m != 0 || l != 0 {
		t.Fatalf("short series bands = (%v, %v, %v), want zeros", u, m, l)
	}

	u, m, l = Bollinger(constant(7, 25), 20, 2)
	if !almostEqual(u, 7, 1e-9) || !almostEqual(m, 7, 1e-9) || !almostEqual(l, 7, 1e-9) {
		t.Fatalf("flat series bands = (%v, %v, %v), want all 7", u, m, l)
	}

	// Window [1,2,3]: mid 2, sample std 1, k=2.
	u, m, l = Bollinger([]float64{1, 2, 3}, 3, 2)
	if !almostEqual(u, 4, 1e-9) || !almostEqual(m, 2, 1e-9) || !almostEqual(l, 0, 1e-9) {
		t.Fatalf("bands = (%v, %v, %v), want (4, 2, 0)", u, m, l)
	}
}

func TestStochastic(t *testing.T) {
	k, d := Stochastic(nil, nil, nil, 14)
	if k != 50 || d != 50 {
		t.Fatalf("short series stochastic = (%v, %v), want (50, 50)", k, d)
	}

	// Flat market has no range: both read neutral.
	flat := constant(10, 20)
	k, d = Stochastic(flat, flat, flat, 14)
	if k != 50 || d != 50 {
		t.Fatalf("flat stochastic = (%v, %v), want (50, 50)", k, d)
	}

	// Close pinned at the window high: %K saturates.
	highs := ascending(10, 20)
	lows := ascending(1, 20)
	closes := ascending(10, 20)
	k, _ = Stochastic(highs, lows, closes, 14)
	if !almostEqual(k, 100, 1e-9) {
		t.Fatalf("pinned-high %%K = %v, want 100", k)
	}
}

func TestATR(t *testing.T) {
	if got := ATR(nil, nil, nil, 14); got != 0 {
		t.Fatalf("short series atr = %v, want 0", got)
	}

	// Constant 2-point range with no gaps: atr equals the range.
	n := 20
	highs := constant(12, n)
	lows := constant(10, n)
	closes := constant(11, n)
	if got := ATR(highs, lows, closes, 14); !almostEqual(got, 2, 1e-9) {
		t.Fatalf("atr = %v, want 2", got)
	}

	// A gap against the previous close widens the true range.
	closes[n-2] = 20
	got := ATR(highs, lows, closes, 14)
	if got <= 2 {
		t.Fatalf("gapped atr = %v, want > 2", got)
	}
}
