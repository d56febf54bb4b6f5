package models

import "time"

// TrailPointType categorizes visualization trail points.
type TrailPointType string

const (
	TrailRecentPath   TrailPointType = "recent_path"
	TrailCompletePath TrailPointType = "complete_path"
	TrailHighlight    TrailPointType = "highlight"
	TrailDebug        TrailPointType = "debug"
)

// TrailPoint is one time-decayed visited point.
type TrailPoint struct {
	Position  SmoothCoordinate `json:"position"`
	Type      TrailPointType   `json:"type"`
	Intensity float64          `json:"intensity"`
	AddedAt   time.Time        `json:"-"`
	Age       float64          `json:"age"` // seconds, filled on export
}

// TrailSnapshot is the read-only export consumed by the dashboard.
type TrailSnapshot struct {
	RecentPath   []TrailPoint `json:"recentPath" msgpack:"recentPath"`
	CompletePath []TrailPoint `json:"completePath" msgpack:"completePath"`
	Highlights   []TrailPoint `json:"highlights" msgpack:"highlights"`
	DebugPoints  []TrailPoint `json:"debugPoints" msgpack:"debugPoints"`
}
