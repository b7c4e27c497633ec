// Package monitor tracks runtime behavior of the pipeline: per-operation
// timing aggregates and component health probes with an alert trail.
package monitor

import (
	"sync"
	"time"

	"Barashor/internal/domain/repository"
)

// OpStats is the aggregate view of one operation.
type OpStats struct {
	Count         int64     `json:"count"`
	AvgTime       float64   `json:"avg_time"`
	MinTime       float64   `json:"min_time"`
	MaxTime       float64   `json:"max_time"`
	SuccessRate   float64   `json:"success_rate"`
	Errors        int64     `json:"errors"`
	LastExecution time.Time `json:"last_execution"`
}

type opMetric struct {
	count  int64
	errors int64
	total  float64
	min    float64
	max    float64
	last   time.Time
}

// Performance aggregates operation timings in memory and mirrors them to
// the metrics recorder. Aggregates survive until Reset; the recorder side
// is append-only.
type Performance struct {
	mu      sync.Mutex
	ops     map[string]*opMetric
	metrics repository.Metrics
}

func NewPerformance(metrics repository.Metrics) *Performance {
	return &Performance{
		ops:     make(map[string]*opMetric),
		metrics: metrics,
	}
}

// Record folds one execution into the aggregates.
func (p *Performance) Record(op string, elapsed time.Duration, err error) {
	seconds := elapsed.Seconds()

	p.mu.Lock()
	m, ok := p.ops[op]
	if !ok {
		m = &opMetric{min: seconds}
		p.ops[op] = m
	}
	m.count++
	m.total += seconds
	if seconds < m.min {
		m.min = seconds
	}
	if seconds > m.max {
		m.max = seconds
	}
	m.last = time.Now()
	if err != nil {
		m.errors++
	}
	p.mu.Unlock()

	if p.metrics != nil {
		p.metrics.RecordLatency(op, seconds)
		if err != nil {
			p.metrics.RecordError(op)
		}
	}
}

// Snapshot returns a copy of all aggregates keyed by operation.
func (p *Performance) Snapshot() map[string]OpStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make(map[string]OpStats, len(p.ops))
	for op, m := range p.ops {
		out[op] = OpStats{
			Count:         m.count,
			AvgTime:       m.total / float64(m.count),
			MinTime:       m.min,
			MaxTime:       m.max,
			SuccessRate:   float64(m.count-m.errors) / float64(m.count) * 100,
			Errors:        m.errors,
			LastExecution: m.last,
		}
	}
	return out
}

// Reset drops all aggregates.
func (p *Performance) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ops = make(map[string]*opMetric)
}
