package models

import "time"

// Event kind tags carried on every notification emitted by the engine.
const (
	EventOrderCompleted   = "order_completed"
	EventRobotMoved       = "robot_moved"
	EventDirectionChanged = "direction_changed"
)

// Event is a discrete notification emitted by the movement engine. The
// transport (WebSocket hub, MQTT, telemetry store) is the host's concern.
type Event interface {
	Kind() string
}

// OrderCompleted is emitted when the robot hands a finished order off at
// packout.
type OrderCompleted struct {
	OrderID        string    `json:"orderId"`
	CompletionTime time.Time `json:"completionTime"`
	ElapsedTime    string    `json:"elapsedTime"`
	TotalDistance  float64   `json:"totalDistance"`
	ItemCount      int       `json:"itemCount"`
}

func (OrderCompleted) Kind() string { return EventOrderCompleted }

// RobotMoved is emitted when the robot completes one leg of its path.
type RobotMoved struct {
	OldPosition  SmoothCoordinate `json:"oldPosition"`
	NewPosition  SmoothCoordinate `json:"newPosition"`
	Distance     float64          `json:"distance"`
	MovementTime float64          `json:"movementTime"` // seconds
}

func (RobotMoved) Kind() string { return EventRobotMoved }

// DirectionChanged is emitted when a direction change is committed after the
// cooldown window. Informational only; it never gates movement.
type DirectionChanged struct {
	Old       Direction `json:"old"`
	New       Direction `json:"new"`
	Timestamp time.Time `json:"timestamp"`
}

func (DirectionChanged) Kind() string { return EventDirectionChanged }
