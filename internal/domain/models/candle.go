package models

import "time"

// Candle is one OHLCV observation. Immutable once fetched.
type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// Series is an ordered candle sequence for one symbol, timestamps strictly
// increasing. Gaps are tolerated; windows simply see fewer points.
type Series []Candle

// Closes extracts close prices in series order.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s))
	for i, c := range s {
		out[i] = c.Close
	}
	return out
}

// Volumes extracts volumes in series order.
func (s Series) Volumes() []float64 {
	out := make([]float64, len(s))
	for i, c := range s {
		out[i] = c.Volume
	}
	return out
}

// Highs extracts high prices in series order.
func (s Series) Highs() []float64 {
	out := make([]float64, len(s))
	for i, c := range s {
		out[i] = c.High
	}
	return out
}

// Lows extracts low prices in series order.
func (s Series) Lows() []float64 {
	out := make([]float64, len(s))
	for i, c := range s {
		out[i] = c.Low
	}
	return out
}

// LastVolume returns the most recent volume, or 0 for an empty series.
func (s Series) LastVolume() float64 {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1].Volume
}

// SymbolData bundles one symbol's acquired series and latest price.
type SymbolData struct {
	Symbol      string
	Series      Series
	LatestPrice float64
}
