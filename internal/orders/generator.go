package orders

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/google/uuid"
	"github.com/warehouse-sim/backend/internal/models"
)

// GeneratorConfig controls synthetic order production.
type GeneratorConfig struct {
	MinItemsPerOrder int
	MaxItemsPerOrder int
	MaxOrders        int // 0 means unlimited
}

// DefaultGeneratorConfig returns the stock generation settings.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		MinItemsPerOrder: 1,
		MaxItemsPerOrder: 5,
		MaxOrders:        0,
	}
}

// Validate rejects unusable generation settings.
func (c GeneratorConfig) Validate() error {
	if c.MinItemsPerOrder < 1 {
		return fmt.Errorf("min items per order must be at least 1, got %d", c.MinItemsPerOrder)
	}
	if c.MaxItemsPerOrder < c.MinItemsPerOrder {
		return fmt.Errorf("max items per order %d below min %d", c.MaxItemsPerOrder, c.MinItemsPerOrder)
	}
	if c.MaxOrders < 0 {
		return fmt.Errorf("max orders must not be negative, got %d", c.MaxOrders)
	}
	return nil
}

// Generator produces synthetic orders from catalog items and queues them
// FIFO for the engine. The rand source is injected so tests stay
// deterministic. Safe for concurrent Enqueue/Next.
type Generator struct {
	config  GeneratorConfig
	catalog *Catalog
	rng     *rand.Rand

	mu        sync.Mutex
	queue     []*models.Order
	generated int
}

// NewGenerator creates an order generator over the given catalog.
func NewGenerator(config GeneratorConfig, catalog *Catalog, rng *rand.Rand) *Generator {
	return &Generator{
		config:  config,
		catalog: catalog,
		rng:     rng,
		queue:   make([]*models.Order, 0, 8),
	}
}

// Generate creates one random order and enqueues it. Returns nil when the
// configured order budget is exhausted.
func (g *Generator) Generate() *models.Order {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.config.MaxOrders > 0 && g.generated >= g.config.MaxOrders {
		return nil
	}

	ids := g.catalog.ItemIDs()
	count := g.config.MinItemsPerOrder
	if spread := g.config.MaxItemsPerOrder - g.config.MinItemsPerOrder; spread > 0 {
		count += g.rng.Intn(spread + 1)
	}

	items := make([]string, 0, count)
	seen := make(map[string]bool, count)
	for len(items) < count {
		id := ids[g.rng.Intn(len(ids))]
		if seen[id] {
			continue
		}
		seen[id] = true
		items = append(items, id)
	}

	order := models.NewOrder(uuid.New().String(), items)
	g.queue = append(g.queue, order)
	g.generated++
	return order
}

// Enqueue adds an externally constructed order to the queue.
func (g *Generator) Enqueue(order *models.Order) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queue = append(g.queue, order)
	g.generated++
}

// Next pops the oldest pending order. FIFO by insertion, per the engine's
// order source contract.
func (g *Generator) Next() (*models.Order, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.queue) == 0 {
		return nil, false
	}
	order := g.queue[0]
	g.queue = g.queue[1:]
	return order, true
}

// Done reports that no further orders will ever arrive: the budget is spent
// and the queue is drained.
func (g *Generator) Done() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.config.MaxOrders > 0 && g.generated >= g.config.MaxOrders && len(g.queue) == 0
}

// Pending returns the number of queued orders.
func (g *Generator) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.queue)
}

// Reset drains the queue and restores the order budget.
func (g *Generator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queue = g.queue[:0]
	g.generated = 0
}
