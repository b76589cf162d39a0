// Package geometry holds the plane geometry used to locate walls and place
// dimension anchors. Every function is pure and unit-agnostic: callers keep
// one unit (millimeters at the wire boundary) for the whole computation.
package geometry

import "math"

// Point is a planar coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p + q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Scale returns p * k.
func (p Point) Scale(k float64) Point { return Point{X: p.X * k, Y: p.Y * k} }

// Dot returns the dot product of p and q.
func (p Point) Dot(q Point) float64 { return p.X*q.X + p.Y*q.Y }

// Len returns the Euclidean length of p as a vector.
func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 { return b.Sub(a).Len() }

// Normalize returns v scaled to unit length. The zero vector stays zero.
func Normalize(v Point) Point {
	l := v.Len()
	if l == 0 {
		return Point{}
	}
	return v.Scale(1 / l)
}

// ClosestPointOnSegment projects p onto the segment a→b. The projection
// parameter t is the distance along the segment from a, clamped to
// [0, |b-a|], so the returned distance is to the segment and never to its
// infinite extension. A degenerate segment (a == b) yields a with t = 0.
func ClosestPointOnSegment(p, a, b Point) (closest Point, dist float64, t float64) {
	ab := b.Sub(a)
	length := ab.Len()
	if length == 0 {
		return a, Distance(p, a), 0
	}

	dir := ab.Scale(1 / length)
	t = clamp(p.Sub(a).Dot(dir), 0, length)
	switch t {
	case 0:
		closest = a
	case length:
		closest = b
	default:
		closest = a.Add(dir.Scale(t))
	}
	return closest, Distance(p, closest), t
}

// FacePoints offsets the closest point on a wall's location line by half the
// wall thickness to either side, along the unit perpendicular (-dy, dx).
func FacePoints(closest, direction Point, thickness float64) (face1, face2 Point) {
	perp := Normalize(Point{X: -direction.Y, Y: direction.X})
	half := perp.Scale(thickness / 2)
	return closest.Add(half), closest.Sub(half)
}

// SelectFacingFace returns the coordinate, on axis, of whichever face lies
// closer to reference. That face bounds the space being measured. On a tie
// face1 wins.
func SelectFacingFace(face1, face2 Point, reference float64, axis Axis) float64 {
	c1, c2 := axis.Of(face1), axis.Of(face2)
	if math.Abs(c2-reference) < math.Abs(c1-reference) {
		return c2
	}
	return c1
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
