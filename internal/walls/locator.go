// Package walls answers "which walls lie within radius R of point P on level
// L" over an immutable snapshot of wall location lines.
package walls

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/lydakis/hostbridge/internal/geometry"
)

var (
	// ErrDegenerateSegment reports a zero-length wall inside the search radius.
	ErrDegenerateSegment = errors.New("degenerate wall segment")
	// ErrInvalidRadius reports a negative or non-finite search radius.
	ErrInvalidRadius = errors.New("invalid search radius")
)

// Segment is one wall as seen at query time. Start and End are the center
// (location) line.
type Segment struct {
	ID        int64
	Name      string
	WallType  string
	Start     geometry.Point
	End       geometry.Point
	Thickness float64
	Level     string
}

// Length returns the location line length.
func (s Segment) Length() float64 { return geometry.Distance(s.Start, s.End) }

// Degenerate reports whether the location line has zero length.
func (s Segment) Degenerate() bool { return s.Start == s.End }

// Direction returns the unit vector from Start to End.
func (s Segment) Direction() geometry.Point { return geometry.Normalize(s.End.Sub(s.Start)) }

// Orientation classifies the wall by its dominant axis.
func (s Segment) Orientation() geometry.Orientation {
	return geometry.ClassifyOrientation(s.Direction())
}

// Result is one wall that passed the radius filter.
type Result struct {
	Wall         Segment
	ClosestPoint geometry.Point
	Distance     float64
	Face1        geometry.Point
	Face2        geometry.Point
}

// Orientation is shorthand for r.Wall.Orientation().
func (r Result) Orientation() geometry.Orientation { return r.Wall.Orientation() }

// FindNear returns every wall whose location-line segment lies within radius
// of center, nearest first. Consumers rely on that order: the first entry on
// each side of the center is the nearest boundary. Ties keep ascending wall
// ID so identical inputs always give identical output.
//
// level, when non-empty, is applied with FilterLevel.
func FindNear(center geometry.Point, radius float64, level string, all []Segment) ([]Result, error) {
	if math.IsNaN(radius) || math.IsInf(radius, 0) || radius < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRadius, radius)
	}

	candidates := all
	if strings.TrimSpace(level) != "" {
		candidates = FilterLevel(all, level)
	}

	results := make([]Result, 0, len(candidates))
	for _, w := range candidates {
		closest, dist, _ := geometry.ClosestPointOnSegment(center, w.Start, w.End)
		if dist > radius {
			continue
		}
		if w.Degenerate() {
			return nil, fmt.Errorf("%w: wall %d", ErrDegenerateSegment, w.ID)
		}
		f1, f2 := geometry.FacePoints(closest, w.Direction(), w.Thickness)
		results = append(results, Result{
			Wall:         w,
			ClosestPoint: closest,
			Distance:     dist,
			Face1:        f1,
			Face2:        f2,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].Wall.ID < results[j].Wall.ID
	})
	return results, nil
}

// FilterLevel keeps the walls whose level matches filter. Level names vary
// across projects ("2FL", "Level 2 - FL"), so matching is fuzzy:
// comparison is case-insensitive and trimmed; if any wall's level equals the
// filter exactly only those walls are kept, otherwise a wall is kept when its
// level contains the filter or the filter contains its level.
func FilterLevel(all []Segment, filter string) []Segment {
	want := normalizeLevel(filter)

	var exact, fuzzy []Segment
	for _, w := range all {
		got := normalizeLevel(w.Level)
		switch {
		case got == want:
			exact = append(exact, w)
		case got != "" && (strings.Contains(got, want) || strings.Contains(want, got)):
			fuzzy = append(fuzzy, w)
		}
	}
	if len(exact) > 0 {
		return exact
	}
	return fuzzy
}

// MatchLevel reports whether name matches filter under the fuzzy policy of
// FilterLevel, ignoring the exact-match preference.
func MatchLevel(name, filter string) bool {
	got, want := normalizeLevel(name), normalizeLevel(filter)
	if got == want {
		return true
	}
	return got != "" && want != "" && (strings.Contains(got, want) || strings.Contains(want, got))
}

func normalizeLevel(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
