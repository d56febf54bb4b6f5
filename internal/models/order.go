package models

import "time"

// OrderStatus represents the status of a pick order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
)

// Order is one synthetic pick order: a batch of item IDs the robot must
// collect and deliver to packout.
type Order struct {
	ID            string      `json:"id"`
	Items         []string    `json:"items"`
	Status        OrderStatus `json:"status"`
	CreatedTime   time.Time   `json:"createdTime"`
	CompletedTime *time.Time  `json:"completedTime,omitempty"`
	ElapsedTime   string      `json:"elapsedTime,omitempty"`
	TotalDistance float64     `json:"totalDistance,omitempty"`
}

// NewOrder creates a pending order with the given items. CreatedTime is
// provisional: the engine restamps it from the simulation clock when it
// begins the order, so elapsed time is measured on a single clock.
func NewOrder(id string, items []string) *Order {
	return &Order{
		ID:          id,
		Items:       items,
		Status:      OrderStatusPending,
		CreatedTime: time.Now(),
	}
}

// Complete finalizes the order at the given hand-off time. The completion
// timestamp is stamped only when the robot physically arrives back at
// packout, not when the last item is picked.
func (o *Order) Complete(at time.Time, distance float64) {
	o.Status = OrderStatusCompleted
	o.CompletedTime = &at
	o.ElapsedTime = at.Sub(o.CreatedTime).Round(time.Millisecond).String()
	o.TotalDistance = distance
}
