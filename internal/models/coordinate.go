package models

import (
	"fmt"
	"math"
)

// Warehouse grid dimensions. Aisles run 1..MaxAisle, racks 1..MaxRack.
const (
	MaxAisle = 25
	MaxRack  = 20
)

// PackoutAisle/PackoutRack identify the fixed packout cell where the robot
// starts, drops off completed orders, and returns between orders.
const (
	PackoutAisle = 1
	PackoutRack  = 1
)

// Coordinate is an integer grid position. Value type: compare and hash by value.
type Coordinate struct {
	Aisle int `json:"aisle"`
	Rack  int `json:"rack"`
}

// IsValid reports whether the coordinate lies inside the warehouse grid.
func (c Coordinate) IsValid() bool {
	return c.Aisle >= 1 && c.Aisle <= MaxAisle && c.Rack >= 1 && c.Rack <= MaxRack
}

// IsPackout reports whether the coordinate is the packout cell.
func (c Coordinate) IsPackout() bool {
	return c.Aisle == PackoutAisle && c.Rack == PackoutRack
}

// Smooth converts to a fractional coordinate.
func (c Coordinate) Smooth() SmoothCoordinate {
	return SmoothCoordinate{Aisle: float64(c.Aisle), Rack: float64(c.Rack)}
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.Aisle, c.Rack)
}

// Packout returns the packout cell coordinate.
func Packout() Coordinate {
	return Coordinate{Aisle: PackoutAisle, Rack: PackoutRack}
}

// SmoothCoordinate is a fractional grid position used for interpolated motion.
// A fresh value is produced every interpolation step.
type SmoothCoordinate struct {
	Aisle float64 `json:"aisle"`
	Rack  float64 `json:"rack"`
}

// DistanceTo returns the Euclidean distance to another smooth coordinate.
func (s SmoothCoordinate) DistanceTo(other SmoothCoordinate) float64 {
	da := s.Aisle - other.Aisle
	dr := s.Rack - other.Rack
	return math.Sqrt(da*da + dr*dr)
}

// Round snaps to the nearest integer coordinate.
func (s SmoothCoordinate) Round() Coordinate {
	return Coordinate{
		Aisle: int(math.Round(s.Aisle)),
		Rack:  int(math.Round(s.Rack)),
	}
}

// IsValid reports whether the fractional position lies inside the grid.
func (s SmoothCoordinate) IsValid() bool {
	return s.Aisle >= 1 && s.Aisle <= MaxAisle && s.Rack >= 1 && s.Rack <= MaxRack
}

func (s SmoothCoordinate) String() string {
	return fmt.Sprintf("(%.2f,%.2f)", s.Aisle, s.Rack)
}

// Lerp interpolates component-wise between a and b at progress t in [0,1].
func Lerp(a, b SmoothCoordinate, t float64) SmoothCoordinate {
	return SmoothCoordinate{
		Aisle: a.Aisle + (b.Aisle-a.Aisle)*t,
		Rack:  a.Rack + (b.Rack-a.Rack)*t,
	}
}
