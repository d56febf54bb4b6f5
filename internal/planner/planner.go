// Package planner converts "robot at P must visit items I1..In" into a fully
// ordered, warehouse-legal path.
//
// Movement rule: horizontal travel (changing rack) is legal only within the
// current aisle; vertical travel (changing aisle) is legal only at a boundary
// rack (1 or 20). Crossing aisles therefore takes up to three legs: out to
// the nearer boundary rack, along the boundary to the target aisle, then in
// to the target rack. No segment ever cuts a corner.
package planner

import (
	"fmt"
	"math"
	"sort"

	"github.com/warehouse-sim/backend/internal/layout"
	"github.com/warehouse-sim/backend/internal/models"
	"github.com/warehouse-sim/backend/internal/timing"
)

// Calculator plans warehouse-legal routes. Plan is a pure function of its
// inputs plus the timing configuration: identical calls yield identical
// paths, so it is safe for what-if queries.
type Calculator struct {
	timing *timing.Manager
}

// NewCalculator creates a path calculator using the given timing manager for
// segment durations.
func NewCalculator(t *timing.Manager) *Calculator {
	return &Calculator{timing: t}
}

// nearestBoundaryRack picks the closer of racks 1 and 20, ties toward 1.
func nearestBoundaryRack(rack int) int {
	if rack-1 <= models.MaxRack-rack {
		return 1
	}
	return models.MaxRack
}

// SegmentDirection derives the snake-convention direction of a leg. In odd
// aisles ascending rack is Forward, in even aisles descending rack is
// Forward. For vertical legs, ascending aisle continues the sweep away from
// packout and counts as Forward; descending is a reverse toward the packout
// boundary.
func SegmentDirection(start, end models.Coordinate) models.Direction {
	if start.Aisle == end.Aisle {
		ascending := end.Rack > start.Rack
		if start.Aisle%2 == 1 {
			if ascending {
				return models.DirectionForward
			}
			return models.DirectionReverse
		}
		if ascending {
			return models.DirectionReverse
		}
		return models.DirectionForward
	}
	if end.Aisle > start.Aisle {
		return models.DirectionForward
	}
	return models.DirectionReverse
}

// newSegment builds one leg with its duration and metadata.
func (c *Calculator) newSegment(start, end models.Coordinate) models.PathSegment {
	return models.PathSegment{
		Start:        start,
		End:          end,
		Direction:    SegmentDirection(start, end),
		Duration:     c.timing.Duration(start, end),
		AisleNumber:  start.Aisle,
		IsHorizontal: start.Aisle == end.Aisle,
	}
}

// Route computes the legal segments from current to target. An empty slice
// means the two coordinates coincide.
func (c *Calculator) Route(current, target models.Coordinate) ([]models.PathSegment, error) {
	if err := layout.ValidateRoutePoint(current); err != nil {
		return nil, err
	}
	if err := layout.ValidateRoutePoint(target); err != nil {
		return nil, err
	}

	if current == target {
		return nil, nil
	}

	// Same aisle: a single horizontal leg.
	if current.Aisle == target.Aisle {
		return []models.PathSegment{c.newSegment(current, target)}, nil
	}

	segments := make([]models.PathSegment, 0, 3)
	cursor := current

	// Phase 1: reach the nearer boundary rack within the current aisle.
	boundary := nearestBoundaryRack(cursor.Rack)
	if cursor.Rack != boundary {
		next := models.Coordinate{Aisle: cursor.Aisle, Rack: boundary}
		segments = append(segments, c.newSegment(cursor, next))
		cursor = next
	}

	// Phase 2: travel along the boundary rack to the target aisle.
	next := models.Coordinate{Aisle: target.Aisle, Rack: cursor.Rack}
	segments = append(segments, c.newSegment(cursor, next))
	cursor = next

	// Phase 3: move in to the target rack.
	if cursor.Rack != target.Rack {
		segments = append(segments, c.newSegment(cursor, target))
	}

	return segments, nil
}

// OptimizeOrder sorts targets ascending by (aisle, rack). This is the whole
// optimization strategy: deterministic O(n log n) ordering, deliberately not
// a shortest-path TSP solve.
func OptimizeOrder(targets []models.Coordinate) []models.Coordinate {
	ordered := make([]models.Coordinate, len(targets))
	copy(ordered, targets)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Aisle != ordered[j].Aisle {
			return ordered[i].Aisle < ordered[j].Aisle
		}
		return ordered[i].Rack < ordered[j].Rack
	})
	return ordered
}

// Plan assembles the complete path: targets in optimized order, then the
// return leg to packout. Unroutable targets are skipped with a diagnostic
// rather than failing the whole plan.
func (c *Calculator) Plan(start models.Coordinate, targets []models.Coordinate) (*models.CompletePath, error) {
	if err := layout.ValidateRoutePoint(start); err != nil {
		return nil, err
	}

	ordered := OptimizeOrder(targets)

	path := &models.CompletePath{
		Segments:       make([]models.PathSegment, 0, len(ordered)*3+3),
		ItemsToCollect: append([]models.Coordinate(nil), targets...),
		OptimizedOrder: ordered,
	}

	cursor := start
	prevDirection := models.Direction("")

	for _, target := range ordered {
		segments, err := c.Route(cursor, target)
		if err != nil {
			fmt.Printf("[Planner] Skipping unroutable target %s: %v\n", target, err)
			continue
		}
		path.Segments = append(path.Segments, segments...)
		cursor = target

		if dir, ok := targetDirection(segments); ok {
			if prevDirection != "" && dir != prevDirection {
				path.DirectionChanges++
			}
			prevDirection = dir
		}
	}

	// Trailing return-to-packout leg.
	returnSegments, err := c.Route(cursor, models.Packout())
	if err != nil {
		return nil, err
	}
	path.Segments = append(path.Segments, returnSegments...)

	for _, seg := range path.Segments {
		path.TotalDistance += seg.Distance()
		path.TotalDuration += seg.Duration
	}

	return path, nil
}

// targetDirection is the direction chosen for one target: the direction of
// the final leg arriving at it.
func targetDirection(segments []models.PathSegment) (models.Direction, bool) {
	if len(segments) == 0 {
		return "", false
	}
	return segments[len(segments)-1].Direction, true
}

// Validate checks every segment endpoint against the warehouse bounds.
// Fails closed: an invalid path yields false, never a panic, so callers can
// fall back to replanning.
func (c *Calculator) Validate(path *models.CompletePath) bool {
	if path == nil {
		return false
	}
	for _, seg := range path.Segments {
		if !seg.Start.IsValid() || !seg.End.IsValid() {
			return false
		}
	}
	return true
}

// EfficiencyScore is a diagnostic in [0,1]; planning decisions never read it.
func EfficiencyScore(path *models.CompletePath) float64 {
	if path == nil {
		return 0
	}
	score := 1.0/(1.0+path.TotalDistance/100.0) - 0.05*float64(path.DirectionChanges)
	return math.Max(0, math.Min(1, score))
}
