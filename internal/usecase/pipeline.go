// Package usecase orchestrates the signal pipeline: acquisition fan-out,
// indicator evaluation, classification, persistence and event publishing.
package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"Barashor/internal/classifier"
	"Barashor/internal/domain/models"
	"Barashor/internal/domain/repository"
	"Barashor/internal/indicator"
	"Barashor/pkg/logger"
	"Barashor/pkg/util"
)

// StrategyParams are the indicator window sizes and the history floor.
type StrategyParams struct {
	ZScorePeriod    int
	SMAPeriod       int
	RSIPeriod       int
	MACDFast        int
	MACDSlow        int
	MACDSignal      int
	VolumeSMAPeriod int
	MinCandles      int
}

// OpRecorder receives pipeline-level operation timings.
type OpRecorder interface {
	Record(op string, elapsed time.Duration, err error)
}

// Pipeline evaluates the whole market: every tradable symbol is fetched,
// scored and classified; positive decisions are persisted and published
// best-effort and returned ranked.
type Pipeline struct {
	market     repository.MarketData
	store      repository.SignalStore
	publisher  repository.DecisionPublisher
	classifier *classifier.Classifier
	metrics    repository.Metrics
	monitor    OpRecorder
	params     StrategyParams
	log        *logger.Logger
}

func NewPipeline(
	market repository.MarketData,
	store repository.SignalStore,
	publisher repository.DecisionPublisher,
	cls *classifier.Classifier,
	metrics repository.Metrics,
	mon OpRecorder,
	params StrategyParams,
	log *logger.Logger,
) *Pipeline {
	return &Pipeline{
		market:     market,
		store:      store,
		publisher:  publisher,
		classifier: cls,
		metrics:    metrics,
		monitor:    mon,
		params:     params,
		log:        log,
	}
}

// Evaluate scores one symbol. The boolean is false when the series is too
// short or no indicator produces a classifiable reading; such symbols leave
// no trace. Classification runs on full-precision values; rounding is
// applied only to the emitted decision.
func (p *Pipeline) Evaluate(symbol string, series models.Series, price float64) (*models.SignalDecision, bool) {
	if len(series) < p.params.MinCandles {
		return nil, false
	}

	closes := series.Closes()
	volumes := series.Volumes()

	zScore := indicator.ZScore(closes, p.params.ZScorePeriod)
	sma := indicator.SMA(closes, p.params.SMAPeriod)
	rsi := indicator.RSI(closes, p.params.RSIPeriod)
	line, sig, hist := indicator.MACD(closes, p.params.MACDFast, p.params.MACDSlow, p.params.MACDSignal)
	volumeSMA := indicator.SMA(volumes, p.params.VolumeSMAPeriod)

	volumeRatio := 1.0
	if volumeSMA > 0 {
		volumeRatio = series.LastVolume() / volumeSMA
	}

	outcome, ok := p.classifier.Classify(zScore, rsi, hist, volumeRatio)
	if !ok {
		return nil, false
	}

	d := &models.SignalDecision{
		Symbol:       symbol,
		CurrentPrice: util.RoundTo(price, 6),
		IndicatorSnapshot: models.IndicatorSnapshot{
			ZScore:        util.RoundTo(zScore, 4),
			SMA:           util.RoundTo(sma, 4),
			RSI:           util.RoundTo(rsi, 2),
			MACDLine:      util.RoundTo(line, 6),
			MACDSignal:    util.RoundTo(sig, 6),
			MACDHistogram: util.RoundTo(hist, 6),
			VolumeSMA:     util.RoundTo(volumeSMA, 2),
			VolumeRatio:   util.RoundTo(volumeRatio, 2),
		},
		Direction: outcome.Direction,
		Strength:  outcome.Strength,
		Precision: util.RoundTo(outcome.Precision, 2),
		Timestamp: time.Now().UTC(),
		Valid:     true,
	}

	if p.metrics != nil {
		p.metrics.RecordDecision(string(d.Direction), string(d.Strength))
		p.metrics.RecordLastPrice(symbol, price)
	}
	return d, true
}

// EvaluateAll runs one full market sweep and returns the ranked decisions.
// Persistence and publishing are best-effort per decision: a failing store
// or broker never drops a decision from the result.
func (p *Pipeline) EvaluateAll(ctx context.Context) (decisions []*models.SignalDecision, err error) {
	start := time.Now()
	defer func() {
		if p.monitor != nil {
			p.monitor.Record("evaluate_all", time.Since(start), err)
		}
	}()

	symbols, err := p.market.ListSymbols(ctx)
	if err != nil {
		return nil, fmt.Errorf("list symbols: %w", err)
	}
	if len(symbols) == 0 {
		p.log.Warn("empty symbol universe")
		return nil, nil
	}

	data := p.market.GetAll(ctx, symbols)

	decisions = make([]*models.SignalDecision, 0, len(data))
	for _, sd := range data {
		d, ok := p.Evaluate(sd.Symbol, sd.Series, sd.LatestPrice)
		if !ok {
			continue
		}
		decisions = append(decisions, d)

		if saveErr := p.store.Save(ctx, d); saveErr != nil {
			p.log.Error("signal save failed", logger.String("symbol", d.Symbol), logger.Error(saveErr))
		}
		if pubErr := p.publisher.Publish(ctx, d); pubErr != nil {
			p.log.Error("signal publish failed", logger.String("symbol", d.Symbol), logger.Error(pubErr))
		}
	}

	sortDecisions(decisions)

	p.log.Info("market sweep completed",
		logger.Int("symbols", len(symbols)),
		logger.Int("evaluated", len(data)),
		logger.Int("signals", len(decisions)))
	return decisions, nil
}

// sortDecisions ranks by precision descending, then by the strength label
// text descending. The label-text tiebreak makes WEAK outrank STRONG on
// equal precision; consumers depend on this exact ordering, so it is kept
// as is rather than switched to severity rank.
func sortDecisions(decisions []*models.SignalDecision) {
	sort.SliceStable(decisions, func(i, j int) bool {
		if decisions[i].Precision != decisions[j].Precision {
			return decisions[i].Precision > decisions[j].Precision
		}
		return decisions[i].Strength > decisions[j].Strength
	})
}
