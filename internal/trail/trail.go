// Package trail keeps a bounded, time-decayed history of visited points for
// the dashboard. Write-mostly and purely observational: nothing in planning
// or movement reads it.
package trail

import (
	"fmt"
	"time"

	"github.com/warehouse-sim/backend/internal/models"
)

// Config bounds the trail by count and by age.
type Config struct {
	MaxTrailLength int
	TrailDuration  float64 // seconds
	FadeRate       float64 // intensity lost per second of age
}

// DefaultConfig returns the stock trail configuration.
func DefaultConfig() Config {
	return Config{
		MaxTrailLength: 500,
		TrailDuration:  10.0,
		FadeRate:       0.1,
	}
}

// Validate rejects unusable trail settings.
func (c Config) Validate() error {
	if c.MaxTrailLength <= 0 {
		return fmt.Errorf("max trail length must be positive, got %d", c.MaxTrailLength)
	}
	if c.TrailDuration <= 0 {
		return fmt.Errorf("trail duration must be positive, got %v", c.TrailDuration)
	}
	if c.FadeRate < 0 {
		return fmt.Errorf("fade rate must not be negative, got %v", c.FadeRate)
	}
	return nil
}

// Manager records visited points with linear intensity fade and purges
// points past the trail duration or count bound (oldest evicted first).
type Manager struct {
	config Config
	points []models.TrailPoint
}

// NewManager creates a trail manager with the given configuration.
func NewManager(config Config) *Manager {
	return &Manager{
		config: config,
		points: make([]models.TrailPoint, 0, config.MaxTrailLength),
	}
}

// Add appends a point at full intensity.
func (m *Manager) Add(position models.SmoothCoordinate, pointType models.TrailPointType) {
	m.points = append(m.points, models.TrailPoint{
		Position:  position,
		Type:      pointType,
		Intensity: 1.0,
		AddedAt:   time.Now(),
	})
	if len(m.points) > m.config.MaxTrailLength {
		m.points = m.points[len(m.points)-m.config.MaxTrailLength:]
	}
}

// Update decays intensities to the given instant and purges expired points.
func (m *Manager) Update(now time.Time) {
	kept := m.points[:0]
	for _, p := range m.points {
		age := now.Sub(p.AddedAt).Seconds()
		if age > m.config.TrailDuration {
			continue
		}
		p.Intensity = 1.0 - age*m.config.FadeRate
		if p.Intensity < 0 {
			p.Intensity = 0
		}
		kept = append(kept, p)
	}
	m.points = kept
}

// Export returns a read-only snapshot grouped by point type. Ages are
// computed at export time; no side effects.
func (m *Manager) Export(now time.Time) *models.TrailSnapshot {
	snap := &models.TrailSnapshot{
		RecentPath:   make([]models.TrailPoint, 0),
		CompletePath: make([]models.TrailPoint, 0),
		Highlights:   make([]models.TrailPoint, 0),
		DebugPoints:  make([]models.TrailPoint, 0),
	}
	for _, p := range m.points {
		p.Age = now.Sub(p.AddedAt).Seconds()
		switch p.Type {
		case models.TrailRecentPath:
			snap.RecentPath = append(snap.RecentPath, p)
		case models.TrailCompletePath:
			snap.CompletePath = append(snap.CompletePath, p)
		case models.TrailHighlight:
			snap.Highlights = append(snap.Highlights, p)
		case models.TrailDebug:
			snap.DebugPoints = append(snap.DebugPoints, p)
		}
	}
	return snap
}

// Len returns the number of live trail points.
func (m *Manager) Len() int {
	return len(m.points)
}

// Clear drops all points.
func (m *Manager) Clear() {
	m.points = m.points[:0]
}
