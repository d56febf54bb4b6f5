// Package engine owns the robot and advances it tick by tick: it resolves
// orders to coordinates, steps the robot along planned paths with linear
// interpolation, runs the timed picking dwell, and handles the return to
// packout. All methods must be called from a single logical sequence; the
// engine has no internal locking.
package engine

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/warehouse-sim/backend/internal/layout"
	"github.com/warehouse-sim/backend/internal/models"
	"github.com/warehouse-sim/backend/internal/planner"
	"github.com/warehouse-sim/backend/internal/timing"
	"github.com/warehouse-sim/backend/internal/trail"
)

// OrderSource is the FIFO queue of pending orders the engine polls while
// idle. Done reports that no further orders will ever arrive.
type OrderSource interface {
	Next() (*models.Order, bool)
	Done() bool
}

// Catalog resolves item IDs to stock locations.
type Catalog interface {
	Resolve(itemID string) (models.Coordinate, error)
}

// EventSink receives the engine's notifications. The transport is the
// host's concern.
type EventSink func(models.Event)

// Config holds the engine's timing knobs.
type Config struct {
	PickingDuration         float64 // seconds the robot dwells at an item
	DirectionChangeCooldown float64 // seconds; metrics-only, never blocks movement
}

// DefaultConfig returns the stock engine configuration.
func DefaultConfig() Config {
	return Config{
		PickingDuration:         3.0,
		DirectionChangeCooldown: 0.5,
	}
}

// Validate rejects non-positive timing values.
func (c Config) Validate() error {
	if c.PickingDuration <= 0 {
		return fmt.Errorf("picking duration must be positive, got %v", c.PickingDuration)
	}
	if c.DirectionChangeCooldown < 0 {
		return fmt.Errorf("direction change cooldown must not be negative, got %v", c.DirectionChangeCooldown)
	}
	return nil
}

// Engine is the tick-driven movement state machine.
type Engine struct {
	config     Config
	robot      *models.Robot
	calculator *planner.Calculator
	timing     *timing.Manager
	catalog    Catalog
	source     OrderSource
	trail      *trail.Manager // optional, observational only
	sink       EventSink      // optional
	rng        *rand.Rand     // malformed-item-ID fallback only

	clock time.Time // simulation time, advanced by Step

	currentOrder *models.Order
	currentPlan  *models.CompletePath
	// uncollected maps grid cells to the item IDs still to be picked there.
	uncollected map[models.Coordinate][]string

	completedOrders []*models.Order
}

// New creates an engine with the robot parked at packout. The rand source
// feeds only the malformed-item-ID fallback and is injected so planning
// stays deterministic under test.
func New(config Config, calc *planner.Calculator, tm *timing.Manager, catalog Catalog, source OrderSource, rng *rand.Rand) *Engine {
	return &Engine{
		config:      config,
		robot:       models.NewRobot(),
		calculator:  calc,
		timing:      tm,
		catalog:     catalog,
		source:      source,
		rng:         rng,
		clock:       time.Now(),
		uncollected: make(map[models.Coordinate][]string),
	}
}

// AttachTrail wires an optional trail manager. The trail is write-only from
// the engine's perspective and never influences movement.
func (e *Engine) AttachTrail(t *trail.Manager) {
	e.trail = t
}

// SetSink wires the notification sink.
func (e *Engine) SetSink(sink EventSink) {
	e.sink = sink
}

func (e *Engine) emit(ev models.Event) {
	if e.sink != nil {
		e.sink(ev)
	}
}

// Step advances the simulation by dt. It never panics in normal operation:
// every reachable state has a defined transition, and planning or resolution
// failures degrade to per-target or per-order recovery.
func (e *Engine) Step(dt time.Duration) {
	e.clock = e.clock.Add(dt)

	switch e.robot.State {
	case models.RobotStateIdle:
		e.stepIdle()
	case models.RobotStatePicking:
		e.stepPicking()
	case models.RobotStateMoving, models.RobotStateReturning:
		e.stepMoving()
	case models.RobotStateCompleted:
		// Terminal; nothing to do.
	}
}

// stepIdle polls the order source and starts the next order, or ends the
// simulation when the source is exhausted.
func (e *Engine) stepIdle() {
	order, ok := e.source.Next()
	if !ok {
		if e.source.Done() {
			e.robot.State = models.RobotStateCompleted
			fmt.Printf("[Engine] No more orders, simulation complete\n")
		}
		return
	}
	e.beginOrder(order)
}

// beginOrder resolves the order's items and plans the full route. A
// malformed item ID falls back to a random valid cell (logged — it signals
// an upstream data problem); an unresolvable one is skipped. An empty or
// invalid plan completes the order immediately without movement.
func (e *Engine) beginOrder(order *models.Order) {
	// Restamp creation on the simulation clock: completion is stamped from
	// the same clock, so elapsed time never mixes wall and simulated time.
	order.CreatedTime = e.clock
	e.currentOrder = order
	e.uncollected = make(map[models.Coordinate][]string, len(order.Items))
	e.robot.CollectedItems = e.robot.CollectedItems[:0]

	targets := make([]models.Coordinate, 0, len(order.Items))
	for _, itemID := range order.Items {
		coord, err := e.catalog.Resolve(itemID)
		switch {
		case err == nil:
		case errors.Is(err, layout.ErrParse):
			coord = layout.RandomCoordinate(e.rng)
			fmt.Printf("[Engine] Malformed item id %q, falling back to random cell %s: %v\n", itemID, coord, err)
		default:
			fmt.Printf("[Engine] Skipping unresolvable item %q: %v\n", itemID, err)
			continue
		}
		targets = append(targets, coord)
		e.uncollected[coord] = append(e.uncollected[coord], itemID)
	}

	path, err := e.calculator.Plan(e.robot.Position.Round(), targets)
	if err != nil || path.IsEmpty() || !e.calculator.Validate(path) {
		fmt.Printf("[Engine] Planning failed for order %s (%d targets, err=%v), completing without movement\n",
			order.ID, len(targets), err)
		e.finishOrderAtPackout(0)
		return
	}

	e.currentPlan = path
	e.robot.CurrentPath = path.Waypoints()
	e.robot.PathIndex = 0
	e.robot.State = models.RobotStateMoving
	fmt.Printf("[Engine] Order %s: %d items, %d segments, %.1f total distance, %.1fs planned\n",
		order.ID, len(order.Items), len(path.Segments), path.TotalDistance, path.TotalDuration)
}

// stepPicking advances the timed dwell and collects the item when it ends.
func (e *Engine) stepPicking() {
	pick := e.robot.Picking
	if pick == nil {
		// Defensive: no token means nothing to dwell on.
		e.robot.State = models.RobotStateMoving
		return
	}

	if e.clock.Sub(pick.StartTime).Seconds() < e.config.PickingDuration {
		return
	}

	e.robot.CollectedItems = append(e.robot.CollectedItems, pick.ItemID)
	e.robot.Picking = nil
	fmt.Printf("[Engine] Picked %s (%d/%d)\n", pick.ItemID, len(e.robot.CollectedItems), len(e.currentOrder.Items))

	if e.allCollected() {
		e.beginReturn()
		return
	}
	e.robot.State = models.RobotStateMoving
}

// allCollected reports whether every resolvable item has been picked.
func (e *Engine) allCollected() bool {
	for _, ids := range e.uncollected {
		if len(ids) > 0 {
			return false
		}
	}
	return true
}

// stepMoving advances the in-flight leg by interpolation, or handles path
// completion when the waypoints are exhausted.
func (e *Engine) stepMoving() {
	if e.robot.AtPathEnd() {
		e.handlePathEnd()
		return
	}

	target := e.robot.CurrentPath[e.robot.PathIndex]

	if e.robot.Movement == nil {
		e.startLeg(target)
	}

	token := e.robot.Movement
	duration := e.timing.Duration(token.StartPosition.Round(), token.Target.Round())
	progress := e.clock.Sub(token.StartTime).Seconds() / duration
	if progress > 1.0 {
		progress = 1.0
	}

	if progress < 1.0 {
		e.robot.Position = models.Lerp(token.StartPosition, token.Target, progress)
	} else {
		e.robot.Position = token.Target
		e.robot.PathIndex++
		e.robot.Movement = nil
		e.timing.Update(e.clock)
		e.emit(models.RobotMoved{
			OldPosition:  token.StartPosition,
			NewPosition:  token.Target,
			Distance:     token.StartPosition.DistanceTo(token.Target),
			MovementTime: duration,
		})
	}

	if e.trail != nil {
		e.trail.Add(e.robot.Position, models.TrailRecentPath)
	}

	if e.robot.State == models.RobotStateMoving {
		e.checkPickArrival()
	}
}

// startLeg opens a movement token for the next waypoint and registers the
// movement with the timing manager. Direction bookkeeping happens here.
func (e *Engine) startLeg(target models.SmoothCoordinate) {
	e.robot.Movement = &models.MovementToken{
		StartTime:     e.clock,
		StartPosition: e.robot.Position,
		Target:        target,
	}
	e.timing.StartMovement(e.robot.Position.Round(), target.Round(), e.clock)
	e.trackDirection(e.robot.Position.Round(), target.Round())
}

// trackDirection commits a direction change only after the cooldown since
// the previous one; earlier requests are dropped, not queued. The cooldown
// is informational: it shapes the metrics stream, never the movement.
func (e *Engine) trackDirection(start, end models.Coordinate) {
	if start == end {
		return
	}
	dir := planner.SegmentDirection(start, end)
	if dir == e.robot.CurrentDirection {
		return
	}
	if e.robot.CurrentDirection != "" &&
		e.clock.Sub(e.robot.LastDirectionChange).Seconds() < e.config.DirectionChangeCooldown {
		return
	}
	old := e.robot.CurrentDirection
	e.robot.CurrentDirection = dir
	e.robot.LastDirectionChange = e.clock
	if old != "" {
		e.emit(models.DirectionChanged{Old: old, New: dir, Timestamp: e.clock})
	}
}

// checkPickArrival transitions to picking when the robot's rounded position
// sits on a cell with uncollected items. The robot stops moving while it
// picks.
func (e *Engine) checkPickArrival() {
	cell := e.robot.Position.Round()
	ids := e.uncollected[cell]
	if len(ids) == 0 {
		return
	}

	itemID := ids[0]
	e.uncollected[cell] = ids[1:]

	e.robot.State = models.RobotStatePicking
	e.robot.Picking = &models.PickingToken{StartTime: e.clock, ItemID: itemID}
	e.robot.Movement = nil
	if e.trail != nil {
		e.trail.Add(e.robot.Position, models.TrailHighlight)
	}
	fmt.Printf("[Engine] Arrived at %s, picking %s\n", cell, itemID)
}

// handlePathEnd covers both movement states once the waypoints run out.
func (e *Engine) handlePathEnd() {
	switch e.robot.State {
	case models.RobotStateReturning:
		e.arriveAtPackout()
	case models.RobotStateMoving:
		if e.currentOrder == nil {
			e.robot.State = models.RobotStateIdle
			return
		}
		if e.allCollected() {
			e.beginReturn()
			return
		}
		// Path exhausted with items outstanding: replan from here for the
		// remainder rather than abandoning the order.
		fmt.Printf("[Engine] Path exhausted with items outstanding, replanning order %s\n", e.currentOrder.ID)
		e.replanRemaining()
	}
}

// replanRemaining plans a fresh route for the still-uncollected cells.
func (e *Engine) replanRemaining() {
	targets := make([]models.Coordinate, 0, len(e.uncollected))
	for coord, ids := range e.uncollected {
		for range ids {
			targets = append(targets, coord)
		}
	}

	path, err := e.calculator.Plan(e.robot.Position.Round(), targets)
	if err != nil || path.IsEmpty() || !e.calculator.Validate(path) {
		fmt.Printf("[Engine] Replanning failed for order %s, completing without remaining items: %v\n",
			e.currentOrder.ID, err)
		e.finishOrderAtPackout(e.collectedDistance())
		return
	}
	e.currentPlan = path
	e.robot.CurrentPath = path.Waypoints()
	e.robot.PathIndex = 0
}

// beginReturn marks the order collected and routes the robot home. The
// order's completion timestamp is stamped only on physical arrival at
// packout; "completed" at this point means all items are on board.
func (e *Engine) beginReturn() {
	e.currentOrder.Status = models.OrderStatusCompleted
	e.currentOrder.TotalDistance = e.collectedDistance()

	returnPath, err := e.calculator.Plan(e.robot.Position.Round(), nil)
	if err != nil || returnPath.IsEmpty() {
		// Already at packout or unroutable: hand off in place.
		e.arriveAtPackout()
		return
	}

	e.robot.CurrentPath = returnPath.Waypoints()
	e.robot.PathIndex = 0
	e.robot.Movement = nil
	e.robot.State = models.RobotStateReturning
	if e.trail != nil {
		e.trail.Add(e.robot.Position, models.TrailCompletePath)
	}
	fmt.Printf("[Engine] Order %s collected, returning to packout\n", e.currentOrder.ID)
}

// collectedDistance reports the planned distance of the current path.
func (e *Engine) collectedDistance() float64 {
	if e.currentPlan == nil {
		return 0
	}
	return e.currentPlan.TotalDistance
}

// arriveAtPackout finalizes the order at physical hand-off.
func (e *Engine) arriveAtPackout() {
	e.finishOrderAtPackout(e.collectedDistance())
}

func (e *Engine) finishOrderAtPackout(distance float64) {
	order := e.currentOrder
	if order != nil {
		order.Complete(e.clock, distance)
		e.completedOrders = append(e.completedOrders, order)
		e.emit(models.OrderCompleted{
			OrderID:        order.ID,
			CompletionTime: *order.CompletedTime,
			ElapsedTime:    order.ElapsedTime,
			TotalDistance:  order.TotalDistance,
			ItemCount:      len(order.Items),
		})
		fmt.Printf("[Engine] Order %s completed in %s (%.1f distance)\n", order.ID, order.ElapsedTime, distance)
	}

	e.currentOrder = nil
	e.currentPlan = nil
	e.uncollected = make(map[models.Coordinate][]string)
	e.robot.CurrentPath = e.robot.CurrentPath[:0]
	e.robot.PathIndex = 0
	e.robot.Movement = nil
	e.robot.Picking = nil
	e.robot.State = models.RobotStateIdle
}

// Robot returns the engine's robot. Read-only for callers outside the tick
// sequence.
func (e *Engine) Robot() *models.Robot {
	return e.robot
}

// CurrentOrder returns the in-progress order, or nil.
func (e *Engine) CurrentOrder() *models.Order {
	return e.currentOrder
}

// CurrentPlan returns the active complete path, or nil.
func (e *Engine) CurrentPlan() *models.CompletePath {
	return e.currentPlan
}

// CompletedOrders returns the orders finished so far.
func (e *Engine) CompletedOrders() []*models.Order {
	return e.completedOrders
}

// Clock returns the current simulation time.
func (e *Engine) Clock() time.Time {
	return e.clock
}

// Reset returns the engine and robot to the initial parked state.
func (e *Engine) Reset() {
	e.robot.Reset()
	e.currentOrder = nil
	e.currentPlan = nil
	e.uncollected = make(map[models.Coordinate][]string)
	e.completedOrders = e.completedOrders[:0]
	e.timing.Reset()
	if e.trail != nil {
		e.trail.Clear()
	}
	e.clock = time.Now()
}
