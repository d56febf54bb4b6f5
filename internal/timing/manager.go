// Package timing is the single source of truth for movement durations. The
// planner and the movement engine never compute durations themselves.
package timing

import (
	"fmt"
	"math"
	"time"

	"github.com/warehouse-sim/backend/internal/models"
)

// MinDuration is returned for identical start/end points so downstream
// progress math never divides by zero.
const MinDuration = 0.1

// maxHistory bounds the rolling movement history.
const maxHistory = 200

// Config holds the per-unit speeds. All values are seconds.
type Config struct {
	AisleTraversalTime     float64 // per aisle for vertical movement
	HorizontalMovementTime float64 // per rack for horizontal movement
	MaxTimingVariance      float64 // fraction, vertical sanity check
}

// DefaultConfig returns the stock timing configuration.
func DefaultConfig() Config {
	return Config{
		AisleTraversalTime:     7.0,
		HorizontalMovementTime: 0.35,
		MaxTimingVariance:      0.10,
	}
}

// Validate rejects non-positive timing values. Called eagerly at startup so
// misconfiguration never surfaces mid-route.
func (c Config) Validate() error {
	if c.AisleTraversalTime <= 0 {
		return fmt.Errorf("aisle traversal time must be positive, got %v", c.AisleTraversalTime)
	}
	if c.HorizontalMovementTime <= 0 {
		return fmt.Errorf("horizontal movement time must be positive, got %v", c.HorizontalMovementTime)
	}
	if c.MaxTimingVariance < 0 {
		return fmt.Errorf("timing variance must not be negative, got %v", c.MaxTimingVariance)
	}
	return nil
}

// UpdateResult reports the progress of the in-flight movement.
type UpdateResult struct {
	InProgress bool
	Complete   bool
	Progress   float64 // 0..1
}

// Manager classifies movements, computes durations, and tracks the
// start/update/complete lifecycle of the current movement plus cumulative
// traversal statistics.
type Manager struct {
	config  Config
	current *models.MovementTiming
	history []models.MovementTiming

	totalAisles int
	totalRacks  int
}

// NewManager creates a timing manager with the given configuration.
func NewManager(config Config) *Manager {
	return &Manager{
		config:  config,
		history: make([]models.MovementTiming, 0, maxHistory),
	}
}

// MovementType classifies the raw point pair. Legalized segments are never
// diagonal; the diagonal branch exists for raw pairs handed in directly by
// analytics call sites.
func (m *Manager) MovementType(start, end models.Coordinate) models.MovementType {
	sameAisle := start.Aisle == end.Aisle
	sameRack := start.Rack == end.Rack

	switch {
	case sameAisle && !sameRack:
		return models.MovementHorizontal
	case sameRack && !sameAisle:
		return models.MovementVertical
	default:
		return models.MovementDiagonal
	}
}

// Duration returns how long the movement between two cells takes in seconds.
// Diagonal pairs cost the sum of the horizontal and vertical components: the
// robot cannot physically cut corners, so both axes must be traversed in full.
func (m *Manager) Duration(start, end models.Coordinate) float64 {
	if start == end {
		return MinDuration
	}

	racks := math.Abs(float64(end.Rack - start.Rack))
	aisles := math.Abs(float64(end.Aisle - start.Aisle))

	var duration float64
	switch m.MovementType(start, end) {
	case models.MovementHorizontal:
		duration = racks * m.config.HorizontalMovementTime
	case models.MovementVertical:
		duration = aisles * m.config.AisleTraversalTime
		m.checkVerticalVariance(start, end, duration, aisles)
	default:
		duration = racks*m.config.HorizontalMovementTime + aisles*m.config.AisleTraversalTime
	}

	if duration <= 0 {
		// Should be unreachable with a validated config.
		fmt.Printf("[Timing] WARNING: non-positive duration %.3f for %s -> %s, clamping\n", duration, start, end)
		duration = MinDuration
	}
	return duration
}

// checkVerticalVariance warns when a vertical duration drifts from the pure
// per-aisle rate by more than the configured variance. Sanity check against
// misconfiguration, not a correctness gate.
func (m *Manager) checkVerticalVariance(start, end models.Coordinate, duration, aisles float64) {
	if aisles == 0 || m.config.MaxTimingVariance <= 0 {
		return
	}
	perAisle := duration / aisles
	deviation := math.Abs(perAisle-m.config.AisleTraversalTime) / m.config.AisleTraversalTime
	if deviation > m.config.MaxTimingVariance {
		fmt.Printf("[Timing] WARNING: vertical %s -> %s deviates %.1f%% from aisle traversal time\n",
			start, end, deviation*100)
	}
}

// StartMovement begins tracking a movement at the given instant and returns
// its timing record. Any previous in-flight movement is discarded. The clock
// is supplied by the caller so the simulation stays deterministic.
func (m *Manager) StartMovement(start, end models.Coordinate, now time.Time) *models.MovementTiming {
	timing := &models.MovementTiming{
		StartTime:     now,
		Duration:      m.Duration(start, end),
		MovementType:  m.MovementType(start, end),
		StartPosition: start,
		EndPosition:   end,
	}
	m.current = timing
	return timing
}

// Update advances the in-flight movement to the given instant. On completion
// the record moves to history and the traversal counters accumulate.
func (m *Manager) Update(now time.Time) UpdateResult {
	if m.current == nil {
		return UpdateResult{}
	}

	elapsed := now.Sub(m.current.StartTime).Seconds()
	progress := elapsed / m.current.Duration
	if progress < 1.0 {
		return UpdateResult{InProgress: true, Progress: progress}
	}

	m.complete(now)
	return UpdateResult{Complete: true, Progress: 1.0}
}

func (m *Manager) complete(now time.Time) {
	t := m.current
	t.EndTime = &now
	t.IsCompleted = true

	m.totalAisles += abs(t.EndPosition.Aisle - t.StartPosition.Aisle)
	m.totalRacks += abs(t.EndPosition.Rack - t.StartPosition.Rack)

	m.history = append(m.history, *t)
	if len(m.history) > maxHistory {
		m.history = m.history[len(m.history)-maxHistory:]
	}
	m.current = nil
}

// Current returns the in-flight movement record, or nil.
func (m *Manager) Current() *models.MovementTiming {
	return m.current
}

// History returns a copy of the completed-movement history.
func (m *Manager) History() []models.MovementTiming {
	out := make([]models.MovementTiming, len(m.history))
	copy(out, m.history)
	return out
}

// Totals returns the cumulative aisles and racks traversed.
func (m *Manager) Totals() (aisles, racks int) {
	return m.totalAisles, m.totalRacks
}

// Reset clears the in-flight movement, history and counters.
func (m *Manager) Reset() {
	m.current = nil
	m.history = m.history[:0]
	m.totalAisles = 0
	m.totalRacks = 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
