package models

import "time"

// MovementType classifies a raw point-to-point movement. Legalized path
// segments are always Horizontal or Vertical; Diagonal only ever applies to
// raw pairs handed directly to the timing manager.
type MovementType string

const (
	MovementHorizontal MovementType = "horizontal"
	MovementVertical   MovementType = "vertical"
	MovementDiagonal   MovementType = "diagonal"
)

// MovementTiming is the lifecycle record for one in-flight movement. Owned by
// the timing manager; moved to history on completion.
type MovementTiming struct {
	StartTime     time.Time    `json:"startTime"`
	EndTime       *time.Time   `json:"endTime,omitempty"`
	Duration      float64      `json:"duration"` // seconds
	MovementType  MovementType `json:"movementType"`
	StartPosition Coordinate   `json:"startPosition"`
	EndPosition   Coordinate   `json:"endPosition"`
	IsCompleted   bool         `json:"isCompleted"`
}
