// Package repository holds the persistence implementations behind the
// domain interfaces: a ClickHouse-backed signal store and a Kafka-backed
// decision publisher.
package repository

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"Barashor/internal/domain/models"
	"Barashor/internal/domain/repository"
	"Barashor/pkg/clickhouse"
	"Barashor/pkg/logger"
)

const signalsSchema = `
CREATE TABLE IF NOT EXISTS signals (
    symbol         LowCardinality(String),
    current_price  Float64,
    z_score        Float64,
    sma_50         Float64,
    rsi            Float64,
    macd_line      Float64,
    macd_signal    Float64,
    macd_histogram Float64,
    volume_sma     Float64,
    volume_ratio   Float64,
    signal         LowCardinality(String),
    strength       LowCardinality(String),
    precision      Float64,
    timestamp      DateTime64(3, 'UTC'),
    valid          UInt8
) ENGINE = MergeTree()
ORDER BY (symbol, timestamp)
TTL toDateTime(timestamp) + INTERVAL 90 DAY
`

const signalColumns = `symbol, current_price, z_score, sma_50, rsi,
	macd_line, macd_signal, macd_histogram, volume_sma, volume_ratio,
	signal, strength, precision, timestamp, valid`

// SignalStore persists decisions in ClickHouse. Rows are append-only except
// for the staleness mutation; reads always order newest first.
type SignalStore struct {
	client *clickhouse.Client
	log    *logger.Logger
}

var _ repository.SignalStore = (*SignalStore)(nil)

func NewSignalStore(client *clickhouse.Client, log *logger.Logger) *SignalStore {
	return &SignalStore{client: client, log: log}
}

// Init creates the signals table when missing.
func (s *SignalStore) Init(ctx context.Context) error {
	return s.client.InitSchema(ctx, []string{signalsSchema})
}

// Save inserts one decision.
func (s *SignalStore) Save(ctx context.Context, d *models.SignalDecision) error {
	query := fmt.Sprintf("INSERT INTO signals (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", signalColumns)

	_, err := s.client.DB().ExecContext(ctx, query,
		d.Symbol,
		d.CurrentPrice,
		d.ZScore,
		d.SMA,
		d.RSI,
		d.MACDLine,
		d.MACDSignal,
		d.MACDHistogram,
		d.VolumeSMA,
		d.VolumeRatio,
		string(d.Direction),
		string(d.Strength),
		d.Precision,
		d.Timestamp,
		boolToUInt8(d.Valid),
	)
	if err != nil {
		return fmt.Errorf("save signal %s: %w", d.Symbol, err)
	}
	return nil
}

// Query returns decisions newest first, optionally narrowed to one symbol.
func (s *SignalStore) Query(ctx context.Context, symbol string, limit int) ([]*models.SignalDecision, error) {
	var (
		where string
		args  []any
	)
	if symbol != "" {
		where = "WHERE symbol = ?"
		args = append(args, symbol)
	}
	args = append(args, limit)

	query := fmt.Sprintf("SELECT %s FROM signals %s ORDER BY timestamp DESC LIMIT ?", signalColumns, where)
	return s.scanDecisions(ctx, query, args...)
}

// Recent returns the latest decisions matching the filter, newest first.
func (s *SignalStore) Recent(ctx context.Context, f repository.RecentFilter) ([]*models.SignalDecision, error) {
	var (
		conds []string
		args  []any
	)
	if f.Symbol != "" {
		conds = append(conds, "symbol = ?")
		args = append(args, f.Symbol)
	}
	if f.Direction != "" {
		conds = append(conds, "signal = ?")
		args = append(args, f.Direction)
	}
	if f.ValidOnly {
		conds = append(conds, "valid = 1")
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, f.Limit)

	query := fmt.Sprintf("SELECT %s FROM signals %s ORDER BY timestamp DESC LIMIT ?", signalColumns, where)
	return s.scanDecisions(ctx, query, args...)
}

// Aggregate computes store-wide signal statistics in a single pass.
func (s *SignalStore) Aggregate(ctx context.Context) (*models.SignalStats, error) {
	query := `
SELECT
    count()                   AS total,
    countIf(valid = 1)        AS valid,
    countIf(signal = 'BUY')   AS buys,
    countIf(signal = 'SELL')  AS sells,
    avg(precision)            AS avg_precision,
    max(timestamp)            AS last_update
FROM signals`

	var stats models.SignalStats
	row := s.client.DB().QueryRowContext(ctx, query)
	if err := row.Scan(&stats.Total, &stats.Valid, &stats.BuyCount, &stats.SellCount,
		&stats.AvgPrecision, &stats.LastUpdate); err != nil {
		return nil, fmt.Errorf("aggregate signals: %w", err)
	}

	// avg() over an empty table is NaN.
	if math.IsNaN(stats.AvgPrecision) {
		stats.AvgPrecision = 0
	}
	return &stats, nil
}

// MarkStale invalidates decisions older than the freshness window and
// returns how many rows were flipped. The count is taken before the
// mutation because ClickHouse mutations report no affected-row count.
func (s *SignalStore) MarkStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)

	var affected int64
	row := s.client.DB().QueryRowContext(ctx,
		"SELECT count() FROM signals WHERE timestamp < ? AND valid = 1", cutoff)
	if err := row.Scan(&affected); err != nil {
		return 0, fmt.Errorf("count stale signals: %w", err)
	}
	if affected == 0 {
		return 0, nil
	}

	_, err := s.client.DB().ExecContext(ctx,
		"ALTER TABLE signals UPDATE valid = 0 WHERE timestamp < ? AND valid = 1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("mark stale signals: %w", err)
	}

	s.log.Info("stale signals invalidated", logger.Int64("rows", affected))
	return affected, nil
}

// Health pings the backing connection.
func (s *SignalStore) Health(ctx context.Context) error {
	return s.client.Health(ctx)
}

func (s *SignalStore) Close() error {
	return s.client.Close()
}

func (s *SignalStore) scanDecisions(ctx context.Context, query string, args ...any) ([]*models.SignalDecision, error) {
	rows, err := s.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query signals: %w", err)
	}
	defer rows.Close()

	var out []*models.SignalDecision
	for rows.Next() {
		var (
			d         models.SignalDecision
			direction string
			strength  string
			valid     uint8
		)
		if err := rows.Scan(
			&d.Symbol,
			&d.CurrentPrice,
			&d.ZScore,
			&d.SMA,
			&d.RSI,
			&d.MACDLine,
			&d.MACDSignal,
			&d.MACDHistogram,
			&d.VolumeSMA,
			&d.VolumeRatio,
			&direction,
			&strength,
			&d.Precision,
			&d.Timestamp,
			&valid,
		); err != nil {
			return nil, fmt.Errorf("scan signal row: %w", err)
		}
		d.Direction = models.Direction(direction)
		d.Strength = models.Strength(strength)
		d.Valid = valid != 0
		out = append(out, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate signal rows: %w", err)
	}
	return out, nil
}

func boolToUInt8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
