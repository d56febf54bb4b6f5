package models

// Direction is the travel direction of a segment relative to the snake
// traversal convention: in odd aisles ascending rack is Forward, in even
// aisles descending rack is Forward.
type Direction string

const (
	DirectionForward Direction = "forward"
	DirectionReverse Direction = "reverse"
)

// PathSegment is one atomic straight-line leg of a planned route.
// Immutable once constructed by the planner.
type PathSegment struct {
	Start        Coordinate `json:"start"`
	End          Coordinate `json:"end"`
	Direction    Direction  `json:"direction"`
	Duration     float64    `json:"duration"` // seconds
	AisleNumber  int        `json:"aisleNumber"`
	IsHorizontal bool       `json:"isHorizontal"`
}

// Distance returns the Manhattan length of the segment.
func (s PathSegment) Distance() float64 {
	da := s.End.Aisle - s.Start.Aisle
	if da < 0 {
		da = -da
	}
	dr := s.End.Rack - s.Start.Rack
	if dr < 0 {
		dr = -dr
	}
	return float64(da + dr)
}

// CompletePath is the full plan for one order, including the trailing
// return-to-packout leg. Replanning produces a new instance.
type CompletePath struct {
	Segments         []PathSegment `json:"segments"`
	TotalDistance    float64       `json:"totalDistance"`
	TotalDuration    float64       `json:"totalDuration"`
	DirectionChanges int           `json:"directionChanges"`
	ItemsToCollect   []Coordinate  `json:"itemsToCollect"`
	OptimizedOrder   []Coordinate  `json:"optimizedOrder"`
}

// Waypoints flattens the segment endpoints into the ordered list of
// coordinates the robot must pass through, starting after the path origin.
func (p *CompletePath) Waypoints() []SmoothCoordinate {
	points := make([]SmoothCoordinate, 0, len(p.Segments))
	for _, seg := range p.Segments {
		points = append(points, seg.End.Smooth())
	}
	return points
}

// IsEmpty reports whether the path contains no segments.
func (p *CompletePath) IsEmpty() bool {
	return p == nil || len(p.Segments) == 0
}
