package models

import "time"

// Direction of a trading signal.
type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
)

// Strength of a trading signal.
type Strength string

const (
	StrengthWeak     Strength = "WEAK"
	StrengthModerate Strength = "MODERATE"
	StrengthStrong   Strength = "STRONG"
)

// Rank orders strengths by severity: WEAK < MODERATE < STRONG.
func (s Strength) Rank() int {
	switch s {
	case StrengthModerate:
		return 1
	case StrengthStrong:
		return 2
	default:
		return 0
	}
}

// IndicatorSnapshot is the per-symbol indicator state at one evaluation
// instant. Recomputed each evaluation, never persisted on its own.
type IndicatorSnapshot struct {
	ZScore        float64 `json:"z_score"`
	SMA           float64 `json:"sma_50"`
	RSI           float64 `json:"rsi"`
	MACDLine      float64 `json:"macd_line"`
	MACDSignal    float64 `json:"macd_signal"`
	MACDHistogram float64 `json:"macd_histogram"`
	VolumeSMA     float64 `json:"volume_sma"`
	VolumeRatio   float64 `json:"volume_ratio"`
}

// SignalDecision is one classified signal for a symbol. Immutable after
// creation; the store flips Valid to false after the freshness window.
type SignalDecision struct {
	Symbol       string    `json:"symbol"`
	CurrentPrice float64   `json:"current_price"`
	IndicatorSnapshot
	Direction Direction `json:"signal"`
	Strength  Strength  `json:"strength"`
	Precision float64   `json:"precision"`
	Timestamp time.Time `json:"timestamp"`
	Valid     bool      `json:"valid"`
}

// SignalStats is the store-level aggregate over all persisted decisions.
type SignalStats struct {
	Total        int64     `json:"total_signals"`
	Valid        int64     `json:"valid_signals"`
	BuyCount     int64     `json:"buy_signals"`
	SellCount    int64     `json:"sell_signals"`
	AvgPrecision float64   `json:"avg_precision"`
	LastUpdate   time.Time `json:"last_update"`
}
