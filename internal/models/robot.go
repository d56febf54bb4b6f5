package models

import "time"

// RobotState represents the robot's lifecycle state.
type RobotState string

const (
	RobotStateIdle      RobotState = "idle"
	RobotStateMoving    RobotState = "moving"
	RobotStatePicking   RobotState = "picking"
	RobotStateReturning RobotState = "returning"
	RobotStateCompleted RobotState = "completed"
)

// MovementToken groups the in-flight interpolation fields. The three values
// are set together when a leg starts and cleared together when it finishes,
// so a nil token means "no movement in progress".
type MovementToken struct {
	StartTime     time.Time        `json:"startTime"`
	StartPosition SmoothCoordinate `json:"startPosition"`
	Target        SmoothCoordinate `json:"target"`
}

// PickingToken groups the timed-dwell fields for an in-progress pick.
type PickingToken struct {
	StartTime time.Time `json:"startTime"`
	ItemID    string    `json:"itemId"`
}

// Robot is the single mutable simulation entity. It is owned exclusively by
// the movement engine and mutated only from the tick sequence.
type Robot struct {
	Position            SmoothCoordinate   `json:"position"`
	State               RobotState         `json:"state"`
	CurrentPath         []SmoothCoordinate `json:"currentPath"`
	PathIndex           int                `json:"pathIndex"`
	CollectedItems      []string           `json:"collectedItems"`
	Movement            *MovementToken     `json:"movement,omitempty"`
	Picking             *PickingToken      `json:"picking,omitempty"`
	CurrentDirection    Direction          `json:"currentDirection"`
	LastDirectionChange time.Time          `json:"lastDirectionChange"`
}

// NewRobot creates an idle robot parked at the packout cell.
func NewRobot() *Robot {
	return &Robot{
		Position:       Packout().Smooth(),
		State:          RobotStateIdle,
		CurrentPath:    make([]SmoothCoordinate, 0),
		CollectedItems: make([]string, 0),
	}
}

// Reset returns the robot to its initial parked state.
func (r *Robot) Reset() {
	r.Position = Packout().Smooth()
	r.State = RobotStateIdle
	r.CurrentPath = r.CurrentPath[:0]
	r.PathIndex = 0
	r.CollectedItems = r.CollectedItems[:0]
	r.Movement = nil
	r.Picking = nil
	r.CurrentDirection = ""
	r.LastDirectionChange = time.Time{}
}

// AtPathEnd reports whether the robot has consumed its current path.
func (r *Robot) AtPathEnd() bool {
	return r.PathIndex >= len(r.CurrentPath)
}
