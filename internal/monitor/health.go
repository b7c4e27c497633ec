package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"Barashor/internal/domain/repository"
)

const (
	alertCapacity = 100

	// Probe deadlines: acquisition is allowed a slower round trip than the
	// store because it crosses the public internet.
	acquisitionDeadline = 10 * time.Second
	storeDeadline       = 5 * time.Second
)

// Alert is one recorded health incident.
type Alert struct {
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
}

// HealthStatus is the externally visible health view.
type HealthStatus struct {
	APIConnectivity   bool      `json:"api_connectivity"`
	StoreConnectivity bool      `json:"database_connectivity"`
	LastCheck         time.Time `json:"last_check"`
	Alerts            []Alert   `json:"alerts"`
	Overall           bool      `json:"overall_health"`
}

// Health probes the acquisition layer and the signal store and keeps the
// last hundred alerts. Both components start out presumed healthy.
type Health struct {
	mu        sync.Mutex
	apiOK     bool
	storeOK   bool
	lastCheck time.Time
	alerts    []Alert
}

func NewHealth() *Health {
	return &Health{apiOK: true, storeOK: true, lastCheck: time.Now()}
}

// ProbeAcquisition lists the symbol universe and judges the acquisition
// layer healthy when symbols come back within the deadline.
func (h *Health) ProbeAcquisition(ctx context.Context, market repository.MarketData) bool {
	start := time.Now()
	symbols, err := market.ListSymbols(ctx)
	elapsed := time.Since(start)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastCheck = time.Now()

	if err != nil {
		h.apiOK = false
		h.push(Alert{
			Timestamp: time.Now(),
			Type:      "API_ERROR",
			Message:   fmt.Sprintf("symbol listing failed: %v", err),
		})
		return false
	}

	h.apiOK = len(symbols) > 0 && elapsed < acquisitionDeadline
	if !h.apiOK {
		h.push(Alert{
			Timestamp: time.Now(),
			Type:      "API_HEALTH",
			Message:   fmt.Sprintf("degraded acquisition: %.2fs round trip, %d symbols", elapsed.Seconds(), len(symbols)),
		})
	}
	return h.apiOK
}

// ProbeStore pings the signal store and judges it healthy when the ping
// returns within the deadline.
func (h *Health) ProbeStore(ctx context.Context, store repository.SignalStore) bool {
	start := time.Now()
	err := store.Health(ctx)
	elapsed := time.Since(start)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastCheck = time.Now()

	if err != nil {
		h.storeOK = false
		h.push(Alert{
			Timestamp: time.Now(),
			Type:      "DB_ERROR",
			Message:   fmt.Sprintf("store ping failed: %v", err),
		})
		return false
	}

	h.storeOK = elapsed < storeDeadline
	if !h.storeOK {
		h.push(Alert{
			Timestamp: time.Now(),
			Type:      "DB_HEALTH",
			Message:   fmt.Sprintf("slow store ping: %.2fs", elapsed.Seconds()),
		})
	}
	return h.storeOK
}

// Status returns the current view with a copy of the alert trail.
func (h *Health) Status() HealthStatus {
	h.mu.Lock()
	defer h.mu.Unlock()

	alerts := make([]Alert, len(h.alerts))
	copy(alerts, h.alerts)
	return HealthStatus{
		APIConnectivity:   h.apiOK,
		StoreConnectivity: h.storeOK,
		LastCheck:         h.lastCheck,
		Alerts:            alerts,
		Overall:           h.apiOK && h.storeOK,
	}
}

// push appends an alert, evicting the oldest past capacity.
func (h *Health) push(a Alert) {
	h.alerts = append(h.alerts, a)
	if len(h.alerts) > alertCapacity {
		h.alerts = h.alerts[len(h.alerts)-alertCapacity:]
	}
}
