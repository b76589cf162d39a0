// Package dimension turns located walls into dimension-annotation anchors.
//
// The measured value of a corridor is always the distance between the two
// facing wall surfaces. Widths derived from a room's bounding box are off by
// the wall thickness and any box padding, so this package refuses to produce
// one.
package dimension

import (
	"errors"
	"fmt"

	"github.com/lydakis/hostbridge/internal/geometry"
	"github.com/lydakis/hostbridge/internal/walls"
)

var (
	// ErrNoOpposingWall means one side of the reference center has no wall
	// of the governing orientation.
	ErrNoOpposingWall = errors.New("no opposing wall")
	// ErrAmbiguousSide means a wall of the governing orientation sits
	// exactly on the reference center, so it belongs to neither side.
	ErrAmbiguousSide = errors.New("wall coordinate equals reference center")
	// ErrBoundingBoxOnly is returned when a width is asked of a bounding
	// box.
	ErrBoundingBoxOnly = errors.New("bounding box cannot yield a net width; query the walls")
)

// Spec is one dimension annotation: two anchors on an axis-aligned line and
// the perpendicular offset at which the visible dimension line is drawn.
// Offset only places the annotation; it never changes the measured value.
type Spec struct {
	Start  geometry.Point
	End    geometry.Point
	Offset float64
}

// BuildSpec places anchors at min(a, b) and max(a, b) on axis. Both anchors
// share fixed as their coordinate on the other axis.
func BuildSpec(axis geometry.Axis, a, b, fixed, offset float64) Spec {
	lo, hi := a, b
	if hi < lo {
		lo, hi = hi, lo
	}
	return Spec{
		Start:  axis.Point(lo, fixed),
		End:    axis.Point(hi, fixed),
		Offset: offset,
	}
}

// Width is the net width between two opposing walls around a reference
// center.
type Width struct {
	Net         float64
	Orientation geometry.Orientation
	Axis        geometry.Axis
	Reference   geometry.Point

	// FaceA and FaceB are the facing-surface coordinates on Axis; CenterA
	// and CenterB are the location-line coordinates of the same walls.
	FaceA, FaceB     float64
	CenterA, CenterB float64

	WallA, WallB walls.Result
}

// Centerline returns the distance between the two location lines.
func (w Width) Centerline() float64 {
	d := w.CenterB - w.CenterA
	if d < 0 {
		return -d
	}
	return d
}

// NetSpec is the annotation measuring the net width.
func (w Width) NetSpec(offset float64) Spec {
	return BuildSpec(w.Axis, w.FaceA, w.FaceB, w.Axis.Other().Of(w.Reference), offset)
}

// CenterlineSpec is the reference annotation between the location lines. Use
// an offset different from the net annotation's so the two do not overlap.
func (w Width) CenterlineSpec(offset float64) Spec {
	return BuildSpec(w.Axis, w.CenterA, w.CenterB, w.Axis.Other().Of(w.Reference), offset)
}

// CorridorWidth measures the net width around reference from walls, which
// must be sorted nearest first (as walls.FindNear returns them).
//
// The nearest wall fixes the governing orientation; walls of the other
// orientation are ignored. The rest are split by which side of reference
// their location line falls on, and the nearest wall on each side bounds the
// corridor through its face closest to reference. A wall whose location line
// passes through reference fails the whole measurement.
func CorridorWidth(results []walls.Result, reference geometry.Point) (Width, error) {
	if len(results) == 0 {
		return Width{}, fmt.Errorf("%w: no walls near (%.2f, %.2f)", ErrNoOpposingWall, reference.X, reference.Y)
	}

	orientation := results[0].Orientation()
	axis := orientation.MeasurementAxis()
	ref := axis.Of(reference)

	var (
		sideA, sideB *walls.Result
		ambiguous    []int64
	)
	for i := range results {
		r := &results[i]
		if r.Orientation() != orientation {
			continue
		}
		c := axis.Of(r.ClosestPoint)
		switch {
		case c < ref:
			if sideA == nil {
				sideA = r
			}
		case c > ref:
			if sideB == nil {
				sideB = r
			}
		default:
			ambiguous = append(ambiguous, r.Wall.ID)
		}
	}

	if len(ambiguous) > 0 {
		return Width{}, fmt.Errorf("%w: walls %v at %s=%.2f", ErrAmbiguousSide, ambiguous, axis, ref)
	}
	if sideA == nil || sideB == nil {
		missing := "below"
		if sideA != nil {
			missing = "above"
		}
		return Width{}, fmt.Errorf("%w: no %s wall %s %s=%.2f", ErrNoOpposingWall, orientation, missing, axis, ref)
	}

	faceA := geometry.SelectFacingFace(sideA.Face1, sideA.Face2, ref, axis)
	faceB := geometry.SelectFacingFace(sideB.Face1, sideB.Face2, ref, axis)
	net := faceB - faceA
	if net < 0 {
		net = -net
	}

	return Width{
		Net:         net,
		Orientation: orientation,
		Axis:        axis,
		Reference:   reference,
		FaceA:       faceA,
		FaceB:       faceB,
		CenterA:     axis.Of(sideA.ClosestPoint),
		CenterB:     axis.Of(sideB.ClosestPoint),
		WallA:       *sideA,
		WallB:       *sideB,
	}, nil
}

// BoundingBox is the axis-aligned extent of a room as reported by the host.
type BoundingBox struct {
	Min, Max geometry.Point
}

// Center is the middle of the box, a usable start for a wall query.
func (b BoundingBox) Center() geometry.Point {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Width always fails with ErrBoundingBoxOnly. The error names the box
// extents so the caller can see what a box-derived value would have been.
func (b BoundingBox) Width() (float64, error) {
	span := b.Max.Sub(b.Min)
	return 0, fmt.Errorf("%w: box spans %.2f x %.2f around (%.2f, %.2f)",
		ErrBoundingBoxOnly, span.X, span.Y, b.Center().X, b.Center().Y)
}
