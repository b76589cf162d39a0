package host

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/lydakis/hostbridge/internal/geometry"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func corridorDoc(t *testing.T) *MemoryDocument {
	t.Helper()
	doc, err := LoadPlan("testdata/corridor.toml")
	require.NoError(t, err)
	return doc
}

func TestLoadPlanCorridor(t *testing.T) {
	doc := corridorDoc(t)

	assert.Equal(t, "Riverside Offices", doc.ProjectInfo().Name)
	assert.Len(t, doc.Levels(), 3)
	assert.Len(t, doc.Walls(), 5)
	assert.Len(t, doc.Views(), 3)

	w, err := doc.Wall(11)
	require.NoError(t, err)
	assert.Equal(t, geometry.Point{X: -970, Y: 13675}, w.Start)
	assert.Equal(t, 200.0, w.Thickness)
	assert.Equal(t, defaultWallHeight, w.Height)

	view, err := doc.ActiveView()
	require.NoError(t, err)
	assert.Equal(t, int64(101), view.ID)

	room, err := doc.Room(201)
	require.NoError(t, err)
	require.NotNil(t, room.Bounds)
	assert.Equal(t, geometry.Point{X: 4425, Y: 18925}, room.Bounds.Max)
}

func TestParsePlanReportsEveryProblem(t *testing.T) {
	_, err := ParsePlan([]byte(`
active_view = 999

[[levels]]
id = 1
name = "1FL"

[[walls]]
id = 1
start = [0, 0]
end = [1000, 0]
thickness = 200
level = "1FL"

[[walls]]
start = [0, 0]
end = [0, 0]
thickness = 200

[[walls]]
start = [0, 0]
end = [10, 0]
thickness = 100
level = "9FL"

[[rooms]]
name = "Lobby"
min = [0, 0]
`))
	require.Error(t, err)
	for _, want := range []string{
		"walls[0]: element id 1 already in use",
		"walls[1]: wall start and end coincide",
		`walls[2]: unknown level "9FL"`,
		"rooms[0]: min and max must be given together",
		"active_view",
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestParsePlanRejectsBadTOML(t *testing.T) {
	_, err := ParsePlan([]byte(`[[walls]`))
	require.Error(t, err)
}

func TestLoadPlanMissingFile(t *testing.T) {
	_, err := LoadPlan("testdata/does-not-exist.toml")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMemoryDocumentAssignsFreshIDs(t *testing.T) {
	doc := corridorDoc(t)

	id, err := doc.AddDimension(Dimension{ViewID: 101, Start: geometry.Point{X: 0, Y: 0}, End: geometry.Point{X: 0, Y: 100}})
	require.NoError(t, err)
	assert.Greater(t, id, int64(201), "ids continue after the highest plan id")

	_, err = doc.AddDimension(Dimension{ViewID: 999, Start: geometry.Point{}, End: geometry.Point{X: 1}})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryDocumentDelete(t *testing.T) {
	doc := corridorDoc(t)

	require.NoError(t, doc.Delete(101))
	_, err := doc.ActiveView()
	assert.ErrorIs(t, err, ErrNotFound, "deleting the active view clears it")

	require.NoError(t, doc.Delete(11))
	_, err = doc.Wall(11)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, doc.Delete(11), ErrNotFound)
}

func TestMemoryDocumentOrdering(t *testing.T) {
	doc := corridorDoc(t)

	var names []string
	for _, l := range doc.Levels() {
		names = append(names, l.Name)
	}
	assert.Equal(t, []string{"1FL", "2FL", "3FL"}, names)

	views := doc.Views()
	assert.Equal(t, "Elevation", views[0].ViewType)
	assert.Equal(t, "2FL Floor Plan", views[1].Name)
}
