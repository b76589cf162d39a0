package geometry

import (
	"fmt"
	"math"
	"strings"
)

// Orientation is the dominant-axis classification of a wall direction.
type Orientation int

const (
	Vertical Orientation = iota
	Horizontal
)

// ClassifyOrientation reports Horizontal when |dx| > |dy| and Vertical
// otherwise, so an exact diagonal resolves to Vertical. Reversing the
// direction never changes the result.
func ClassifyOrientation(direction Point) Orientation {
	if math.Abs(direction.X) > math.Abs(direction.Y) {
		return Horizontal
	}
	return Vertical
}

func (o Orientation) String() string {
	if o == Horizontal {
		return "Horizontal"
	}
	return "Vertical"
}

// MeasurementAxis is the axis orthogonal to walls of this orientation: a
// horizontal wall runs along x, so the distance across it is measured on y.
func (o Orientation) MeasurementAxis() Axis {
	if o == Horizontal {
		return AxisY
	}
	return AxisX
}

// ParseOrientation accepts the wire spelling ("Horizontal" / "Vertical"),
// case-insensitively.
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "horizontal":
		return Horizontal, nil
	case "vertical":
		return Vertical, nil
	default:
		return Vertical, fmt.Errorf("unknown orientation %q", s)
	}
}

// Axis selects one coordinate of a Point.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

// Of returns p's coordinate on a.
func (a Axis) Of(p Point) float64 {
	if a == AxisY {
		return p.Y
	}
	return p.X
}

// Other returns the remaining axis.
func (a Axis) Other() Axis {
	if a == AxisY {
		return AxisX
	}
	return AxisY
}

// Point builds a point whose coordinate on a is along and whose coordinate on
// the other axis is across.
func (a Axis) Point(along, across float64) Point {
	if a == AxisY {
		return Point{X: across, Y: along}
	}
	return Point{X: along, Y: across}
}

func (a Axis) String() string {
	if a == AxisY {
		return "Y"
	}
	return "X"
}
