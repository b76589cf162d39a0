package dimension

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lydakis/hostbridge/internal/geometry"
	"github.com/lydakis/hostbridge/internal/walls"
)

func locate(t *testing.T, center geometry.Point, radius float64, segs ...walls.Segment) []walls.Result {
	t.Helper()
	got, err := walls.FindNear(center, radius, "", segs)
	require.NoError(t, err)
	return got
}

func horizontal(id int64, y, thickness float64) walls.Segment {
	return walls.Segment{ID: id, Start: geometry.Point{X: -970, Y: y}, End: geometry.Point{X: 4425, Y: y}, Thickness: thickness}
}

func vertical(id int64, x, thickness float64) walls.Segment {
	return walls.Segment{ID: id, Start: geometry.Point{X: x, Y: 13675}, End: geometry.Point{X: x, Y: 18925}, Thickness: thickness}
}

func TestCorridorWidthHorizontalPair(t *testing.T) {
	center := geometry.Point{X: 1727, Y: 16300}
	results := locate(t, center, 3000, horizontal(1, 13675, 200), horizontal(2, 18925, 200))

	w, err := CorridorWidth(results, center)
	require.NoError(t, err)

	assert.Equal(t, geometry.Horizontal, w.Orientation)
	assert.Equal(t, geometry.AxisY, w.Axis)
	assert.InDelta(t, 13775, w.FaceA, 1e-9)
	assert.InDelta(t, 18825, w.FaceB, 1e-9)
	assert.InDelta(t, 5050, w.Net, 1e-9)
	assert.InDelta(t, 5250, w.Centerline(), 1e-9)

	net := w.NetSpec(1200)
	assert.Equal(t, geometry.Point{X: 1727, Y: 13775}, net.Start)
	assert.Equal(t, geometry.Point{X: 1727, Y: 18825}, net.End)
	assert.Equal(t, 1200.0, net.Offset)

	ref := w.CenterlineSpec(2000)
	assert.Equal(t, geometry.Point{X: 1727, Y: 13675}, ref.Start)
	assert.Equal(t, geometry.Point{X: 1727, Y: 18925}, ref.End)
	assert.NotEqual(t, net, ref)
}

func TestCorridorWidthVerticalPair(t *testing.T) {
	center := geometry.Point{X: 1727, Y: 16300}
	results := locate(t, center, 3000, vertical(1, -970, 200), vertical(2, 4425, 200))

	w, err := CorridorWidth(results, center)
	require.NoError(t, err)

	assert.Equal(t, geometry.Vertical, w.Orientation)
	assert.Equal(t, geometry.AxisX, w.Axis)
	assert.InDelta(t, -870, w.FaceA, 1e-9)
	assert.InDelta(t, 4325, w.FaceB, 1e-9)
	assert.InDelta(t, 5195, w.Net, 1e-9)

	spec := w.NetSpec(1200)
	assert.Equal(t, spec.Start.Y, center.Y, "fixed coordinate is the center's Y")
	assert.Equal(t, spec.End.Y, center.Y)
	assert.Less(t, spec.Start.X, spec.End.X)
}

func TestCorridorWidthIgnoresOtherOrientation(t *testing.T) {
	center := geometry.Point{X: 1727, Y: 16300}
	// The vertical end wall is closer than the north wall but must not be
	// used as the opposing boundary.
	results := locate(t, center, 3000,
		horizontal(1, 15300, 200),
		walls.Segment{ID: 3, Start: geometry.Point{X: 3000, Y: 16000}, End: geometry.Point{X: 3000, Y: 20000}, Thickness: 100},
		horizontal(2, 18925, 200),
	)
	require.Equal(t, int64(1), results[0].Wall.ID)

	w, err := CorridorWidth(results, center)
	require.NoError(t, err)
	assert.Equal(t, int64(1), w.WallA.Wall.ID)
	assert.Equal(t, int64(2), w.WallB.Wall.ID)
	assert.InDelta(t, 18825-15400, w.Net, 1e-9)
}

func TestCorridorWidthPicksNearestPerSide(t *testing.T) {
	center := geometry.Point{X: 0, Y: 0}
	results := locate(t, center, 5000,
		horizontal(1, -1000, 100),
		horizontal(2, -3000, 100),
		horizontal(3, 2000, 100),
		horizontal(4, 4000, 100),
	)
	w, err := CorridorWidth(results, center)
	require.NoError(t, err)
	assert.Equal(t, int64(1), w.WallA.Wall.ID)
	assert.Equal(t, int64(3), w.WallB.Wall.ID)
	assert.InDelta(t, 1950-(-950), w.Net, 1e-9)
}

func TestCorridorWidthNoOpposingWall(t *testing.T) {
	center := geometry.Point{X: 1727, Y: 16300}
	results := locate(t, center, 3000, horizontal(1, 13675, 200))

	_, err := CorridorWidth(results, center)
	assert.ErrorIs(t, err, ErrNoOpposingWall)

	_, err = CorridorWidth(nil, center)
	assert.ErrorIs(t, err, ErrNoOpposingWall)
}

func TestCorridorWidthAmbiguousSide(t *testing.T) {
	center := geometry.Point{X: 1727, Y: 16300}
	results := locate(t, center, 3000, horizontal(1, 16300, 200), horizontal(2, 18925, 200))

	_, err := CorridorWidth(results, center)
	assert.ErrorIs(t, err, ErrAmbiguousSide)
}

func TestCorridorWidthRefusesWallOnCenterBetweenSides(t *testing.T) {
	center := geometry.Point{X: 1727, Y: 16300}
	results := locate(t, center, 3000,
		horizontal(1, 13675, 200),
		horizontal(2, 16300, 200),
		horizontal(3, 18925, 200))
	require.Len(t, results, 3)
	require.Equal(t, int64(2), results[0].Wall.ID, "the wall on the center is nearest")

	_, err := CorridorWidth(results, center)
	assert.ErrorIs(t, err, ErrAmbiguousSide)
	assert.NotErrorIs(t, err, ErrNoOpposingWall)
	assert.Contains(t, err.Error(), "[2]")
}

func TestBuildSpecOrdersAnchors(t *testing.T) {
	s := BuildSpec(geometry.AxisX, 4325, -870, 16300, 800)
	assert.Equal(t, geometry.Point{X: -870, Y: 16300}, s.Start)
	assert.Equal(t, geometry.Point{X: 4325, Y: 16300}, s.End)
	assert.Equal(t, 800.0, s.Offset)
}

func TestBoundingBoxCenterButNoWidth(t *testing.T) {
	box := BoundingBox{
		Min: geometry.Point{X: -970, Y: 13675},
		Max: geometry.Point{X: 4425, Y: 18925},
	}
	assert.Equal(t, geometry.Point{X: 1727.5, Y: 16300}, box.Center())

	w, err := box.Width()
	assert.ErrorIs(t, err, ErrBoundingBoxOnly)
	assert.Zero(t, w)
	assert.Contains(t, err.Error(), "5395.00 x 5250.00")
}
