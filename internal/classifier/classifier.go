// Package classifier turns an indicator reading into a trading decision.
// Classification is deterministic and stateless: direction comes from a
// fixed precedence ladder, strength from confirmation rules, and a 0-100
// precision score gates out low-conviction results.
package classifier

import (
	"Barashor/internal/domain/models"
)

// Params are the classification thresholds.
type Params struct {
	ZScoreThreshold float64
	RSIOverbought   float64
	RSIOversold     float64
	MinPrecision    float64
}

// DefaultParams mirror the production strategy configuration.
func DefaultParams() Params {
	return Params{
		ZScoreThreshold: 2.0,
		RSIOverbought:   70,
		RSIOversold:     30,
		MinPrecision:    60,
	}
}

// Outcome is a positive classification: a direction, its strength, and the
// precision score that cleared the gate.
type Outcome struct {
	Direction models.Direction
	Strength  models.Strength
	Precision float64
}

// Classifier applies the decision ladder with a fixed set of thresholds.
type Classifier struct {
	params Params
}

func New(params Params) *Classifier {
	return &Classifier{params: params}
}

// Classify evaluates one indicator reading. The second return is false when
// no indicator fires or the precision score fails the minimum gate; such a
// symbol produces no decision at all.
//
// Direction precedence: z-score outranks RSI, RSI outranks MACD. Later
// indicators are consulted only while earlier ones stay silent.
func (c *Classifier) Classify(zScore, rsi, macdHistogram, volumeRatio float64) (Outcome, bool) {
	var direction models.Direction

	switch {
	case zScore > c.params.ZScoreThreshold:
		direction = models.DirectionSell
	case zScore < -c.params.ZScoreThreshold:
		direction = models.DirectionBuy
	case rsi > c.params.RSIOverbought:
		direction = models.DirectionSell
	case rsi < c.params.RSIOversold:
		direction = models.DirectionBuy
	case macdHistogram > 0.001:
		direction = models.DirectionBuy
	case macdHistogram < -0.001:
		direction = models.DirectionSell
	default:
		return Outcome{}, false
	}

	strength := models.StrengthWeak

	// RSI or MACD agreement upgrades straight to STRONG.
	if direction == models.DirectionSell && rsi > c.params.RSIOverbought {
		strength = models.StrengthStrong
	}
	if direction == models.DirectionBuy && rsi < c.params.RSIOversold {
		strength = models.StrengthStrong
	}
	if direction == models.DirectionBuy && macdHistogram > 0 {
		strength = models.StrengthStrong
	}
	if direction == models.DirectionSell && macdHistogram < 0 {
		strength = models.StrengthStrong
	}

	// Above-average volume escalates one tier.
	if volumeRatio > 1.5 {
		switch strength {
		case models.StrengthWeak:
			strength = models.StrengthModerate
		case models.StrengthModerate:
			strength = models.StrengthStrong
		}
	}

	precision := c.Precision(zScore, rsi, macdHistogram, volumeRatio)
	if precision < c.params.MinPrecision {
		return Outcome{}, false
	}

	return Outcome{Direction: direction, Strength: strength, Precision: precision}, true
}

// Precision scores conviction on a 0-100 scale: a 50-point base plus
// additive contributions from z-score magnitude, RSI extremity, MACD
// magnitude and volume, capped at 100.
func (c *Classifier) Precision(zScore, rsi, macdHistogram, volumeRatio float64) float64 {
	precision := 50.0

	z := zScore
	if z < 0 {
		z = -z
	}
	frac := z / 3.0
	if frac > 1 {
		frac = 1
	}
	precision += frac * 30

	switch {
	case rsi < 25 || rsi > 75:
		precision += 20
	case rsi < 30 || rsi > 70:
		precision += 15
	case rsi < 40 || rsi > 60:
		precision += 10
	}

	h := macdHistogram
	if h < 0 {
		h = -h
	}
	switch {
	case h > 0.002:
		precision += 15
	case h > 0.001:
		precision += 10
	}

	switch {
	case volumeRatio > 1.5:
		precision += 15
	case volumeRatio > 1.2:
		precision += 10
	}

	if precision > 100 {
		precision = 100
	}
	return precision
}
