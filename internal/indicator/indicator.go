// Package indicator computes technical indicators over price and volume
// series. Every function is pure: same input, same output, no I/O and no
// retained state. Series that are too short never error; each indicator
// falls back to a documented neutral value instead.
package indicator

import "math"

// SMA returns the simple moving average of the last period values. A series
// shorter than period averages whatever is available; an empty series is 0.
func SMA(values []float64, period int) float64 {
	if len(values) == 0 {
		return 0
	}
	if len(values) < period {
		return mean(values)
	}
	return mean(values[len(values)-period:])
}

// ZScore measures how far the latest value sits from its rolling mean, in
// units of rolling standard deviation. Too-short series and zero-deviation
// windows yield 0.
func ZScore(values []float64, period int) float64 {
	if len(values) < period {
		return 0
	}
	window := values[len(values)-period:]
	m := mean(window)
	sd := stddev(window, m)
	if sd == 0 {
		return 0
	}
	return (values[len(values)-1] - m) / sd
}

// RSI returns the relative strength index over simple rolling averages of
// gains and losses. Fewer than period+1 values yield the neutral 50; a
// window with no losses saturates at 100.
func RSI(values []float64, period int) float64 {
	if len(values) < period+1 {
		return 50
	}
	var gains, losses float64
	for i := len(values) - period; i < len(values); i++ {
		d := values[i] - values[i-1]
		if d > 0 {
			gains += d
		} else {
			losses -= d
		}
	}
	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// MACD returns the moving average convergence/divergence line, its signal
// line and their histogram. EMAs are span-parameterized with adjusted
// weighting, so early values average the full available prefix. Series
// shorter than the slow span yield all zeros.
func MACD(values []float64, fast, slow, signal int) (line, sig, hist float64) {
	if len(values) < slow {
		return 0, 0, 0
	}
	emaFast := ewma(values, fast)
	emaSlow := ewma(values, slow)
	macd := make([]float64, len(values))
	for i := range values {
		macd[i] = emaFast[i] - emaSlow[i]
	}
	sigSeries := ewma(macd, signal)

	line = macd[len(macd)-1]
	sig = sigSeries[len(sigSeries)-1]
	return line, sig, line - sig
}

// Bollinger returns the upper band, middle band and lower band over the
// last period values with the given deviation multiplier. Too-short series
// yield all zeros.
func Bollinger(values []float64, period int, stdDev float64) (upper, middle, lower float64) {
	if len(values) < period {
		return 0, 0, 0
	}
	window := values[len(values)-period:]
	m := mean(window)
	sd := stddev(window, m)
	return m + sd*stdDev, m, m - sd*stdDev
}

// Stochastic returns the %K oscillator and its 3-period simple moving
// average %D. Too-short series yield the neutral (50, 50); a flat window
// with no high/low range also reads as 50.
func Stochastic(highs, lows, closes []float64, period int) (k, d float64) {
	if len(closes) < period {
		return 50, 50
	}

	// Raw %K per trailing window, newest last. Three points are enough to
	// smooth %D.
	n := len(closes)
	count := n - period + 1
	if count > 3 {
		count = 3
	}
	ks := make([]float64, 0, count)
	for i := n - count; i < n; i++ {
		lo := minOf(lows[i-period+1 : i+1])
		hi := maxOf(highs[i-period+1 : i+1])
		if hi == lo {
			ks = append(ks, 50)
			continue
		}
		ks = append(ks, 100*(closes[i]-lo)/(hi-lo))
	}

	k = ks[len(ks)-1]
	d = mean(ks)
	return k, d
}

// ATR returns the average true range over the last period candles, a mean
// of true ranges where each range accounts for gaps against the previous
// close. Too-short series yield 0.
func ATR(highs, lows, closes []float64, period int) float64 {
	if len(closes) < period {
		return 0
	}
	n := len(closes)
	var sum float64
	for i := n - period; i < n; i++ {
		tr := highs[i] - lows[i]
		if i > 0 {
			tr = math.Max(tr, math.Abs(highs[i]-closes[i-1]))
			tr = math.Max(tr, math.Abs(lows[i]-closes[i-1]))
		}
		sum += tr
	}
	return sum / float64(period)
}

// ewma computes the exponentially weighted moving average series for the
// given span with adjusted weights: each point is the weighted mean of its
// full prefix, weights decaying by (1-alpha) per step back.
func ewma(values []float64, span int) []float64 {
	alpha := 2.0 / (float64(span) + 1)
	decay := 1 - alpha

	out := make([]float64, len(values))
	var num, den float64
	for i, v := range values {
		num = v + decay*num
		den = 1 + decay*den
		out[i] = num / den
	}
	return out
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stddev is the sample standard deviation (n-1 denominator). A single-point
// window reads as 0.
func stddev(values []float64, m float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sum float64
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
