// Package sim hosts the tick loop. The runner owns the engine and is the
// single logical sequence that may call Step; everything the HTTP layer
// reads goes through the runner's mutex as snapshots.
package sim

import (
	"fmt"
	"sync"
	"time"

	"github.com/warehouse-sim/backend/internal/engine"
	"github.com/warehouse-sim/backend/internal/models"
	"github.com/warehouse-sim/backend/internal/orders"
	"github.com/warehouse-sim/backend/internal/planner"
	"github.com/warehouse-sim/backend/internal/timing"
	"github.com/warehouse-sim/backend/internal/trail"
)

// Config controls the frame loop.
type Config struct {
	TickInterval  time.Duration // wall-clock spacing of ticks
	Speed         float64       // simulated seconds per wall second
	OrderInterval time.Duration // spacing of synthetic order generation
}

// DefaultConfig returns the stock loop settings.
func DefaultConfig() Config {
	return Config{
		TickInterval:  50 * time.Millisecond,
		Speed:         1.0,
		OrderInterval: 20 * time.Second,
	}
}

// Validate rejects unusable loop settings.
func (c Config) Validate() error {
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %v", c.TickInterval)
	}
	if c.Speed <= 0 {
		return fmt.Errorf("speed must be positive, got %v", c.Speed)
	}
	if c.OrderInterval <= 0 {
		return fmt.Errorf("order interval must be positive, got %v", c.OrderInterval)
	}
	return nil
}

// Status is the snapshot served to the dashboard.
type Status struct {
	Running         bool                 `json:"running"`
	Paused          bool                 `json:"paused"`
	Speed           float64              `json:"speed"`
	Robot           models.Robot         `json:"robot"`
	CurrentOrder    *models.Order        `json:"currentOrder,omitempty"`
	PendingOrders   int                  `json:"pendingOrders"`
	CompletedOrders int                  `json:"completedOrders"`
	EfficiencyScore float64              `json:"efficiencyScore"`
	TotalAisles     int                  `json:"totalAisles"`
	TotalRacks      int                  `json:"totalRacks"`
	Plan            *models.CompletePath `json:"plan,omitempty"`
}

// Runner drives the engine at a fixed timestep. Pause stops calling Step
// between ticks, which keeps every robot invariant intact across
// pause/resume (checkpoint-safe, never mid-interpolation).
type Runner struct {
	config    Config
	engine    *engine.Engine
	generator *orders.Generator
	trail     *trail.Manager
	timing    *timing.Manager

	mu      sync.Mutex
	running bool
	paused  bool
	stop    chan struct{}
	wg      sync.WaitGroup
}

// NewRunner wires the runner around an engine built elsewhere.
func NewRunner(config Config, eng *engine.Engine, gen *orders.Generator, tr *trail.Manager, tm *timing.Manager) *Runner {
	return &Runner{
		config:    config,
		engine:    eng,
		generator: gen,
		trail:     tr,
		timing:    tm,
	}
}

// Start launches the tick loop. Idempotent while running.
func (r *Runner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		r.paused = false
		return
	}
	r.running = true
	r.paused = false
	r.stop = make(chan struct{})
	r.wg.Add(1)
	go r.loop(r.stop)
	fmt.Printf("[Sim] Started: tick=%v speed=%.1fx orders every %v\n",
		r.config.TickInterval, r.config.Speed, r.config.OrderInterval)
}

func (r *Runner) loop(stop chan struct{}) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.TickInterval)
	defer ticker.Stop()

	lastOrder := time.Now()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			r.mu.Lock()
			if r.paused {
				r.mu.Unlock()
				continue
			}

			if now.Sub(lastOrder) >= r.config.OrderInterval {
				if order := r.generator.Generate(); order != nil {
					fmt.Printf("[Sim] Generated order %s with %d items\n", order.ID, len(order.Items))
				}
				lastOrder = now
			}

			dt := time.Duration(float64(r.config.TickInterval) * r.config.Speed)
			r.engine.Step(dt)
			if r.trail != nil {
				r.trail.Update(time.Now())
			}
			r.mu.Unlock()
		}
	}
}

// Pause suspends stepping between ticks.
func (r *Runner) Pause() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paused = true
}

// Resume continues stepping.
func (r *Runner) Resume() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paused = false
}

// SetSpeed adjusts the simulated-seconds-per-wall-second multiplier.
func (r *Runner) SetSpeed(speed float64) error {
	if speed <= 0 {
		return fmt.Errorf("speed must be positive, got %v", speed)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.config.Speed = speed
	return nil
}

// Reset returns the whole simulation to its initial state.
func (r *Runner) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engine.Reset()
	r.generator.Reset()
	fmt.Printf("[Sim] Reset\n")
}

// Stop terminates the loop.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	close(r.stop)
	r.mu.Unlock()
	r.wg.Wait()
}

// Status returns a copy-safe snapshot of the simulation.
func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	robot := *r.engine.Robot()
	robot.CurrentPath = append([]models.SmoothCoordinate(nil), robot.CurrentPath...)
	robot.CollectedItems = append([]string(nil), robot.CollectedItems...)

	// The tick goroutine mutates the live order in place; serialization
	// happens after this mutex is released, so the snapshot must carry a
	// detached copy. The plan needs no copy: the engine never mutates a
	// CompletePath after construction, it swaps in a fresh one.
	var currentOrder *models.Order
	if live := r.engine.CurrentOrder(); live != nil {
		order := *live
		order.Items = append([]string(nil), live.Items...)
		currentOrder = &order
	}

	aisles, racks := r.timing.Totals()

	return Status{
		Running:         r.running,
		Paused:          r.paused,
		Speed:           r.config.Speed,
		Robot:           robot,
		CurrentOrder:    currentOrder,
		PendingOrders:   r.generator.Pending(),
		CompletedOrders: len(r.engine.CompletedOrders()),
		EfficiencyScore: planner.EfficiencyScore(r.engine.CurrentPlan()),
		TotalAisles:     aisles,
		TotalRacks:      racks,
		Plan:            r.engine.CurrentPlan(),
	}
}

// CompletedOrders snapshots the finished orders.
func (r *Runner) CompletedOrders() []*models.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*models.Order(nil), r.engine.CompletedOrders()...)
}

// EnqueueOrder injects an externally built order.
func (r *Runner) EnqueueOrder(order *models.Order) {
	r.generator.Enqueue(order)
}

// TrailSnapshot exports the current trail.
func (r *Runner) TrailSnapshot() *models.TrailSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.trail == nil {
		return &models.TrailSnapshot{}
	}
	return r.trail.Export(time.Now())
}
