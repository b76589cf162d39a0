package host

import (
	"fmt"
	"math"
	"strings"

	"github.com/lydakis/hostbridge/internal/geometry"
	"github.com/lydakis/hostbridge/internal/walls"
)

const (
	defaultSearchRadius    = 5000.0
	defaultDimensionOffset = 500.0
	defaultWallHeight      = 3000.0
	defaultWallThickness   = 200.0
)

// round2 rounds to two decimals. Values are rounded only when they leave the
// host; the model and the geometry keep full precision.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

type pointOut struct {
	X float64 `json:"X"`
	Y float64 `json:"Y"`
}

func pointOf(p geometry.Point) pointOut {
	return pointOut{X: round2(p.X), Y: round2(p.Y)}
}

type point3Out struct {
	X float64 `json:"X"`
	Y float64 `json:"Y"`
	Z float64 `json:"Z"`
}

type locationLineOut struct {
	StartX float64 `json:"StartX"`
	StartY float64 `json:"StartY"`
	EndX   float64 `json:"EndX"`
	EndY   float64 `json:"EndY"`
}

type wallHitOut struct {
	ElementID        int64           `json:"ElementId"`
	Name             string          `json:"Name"`
	WallType         string          `json:"WallType"`
	Thickness        float64         `json:"Thickness"`
	Length           float64         `json:"Length"`
	DistanceToCenter float64         `json:"DistanceToCenter"`
	Level            string          `json:"Level"`
	LocationLine     locationLineOut `json:"LocationLine"`
	ClosestPoint     pointOut        `json:"ClosestPoint"`
	Face1            pointOut        `json:"Face1"`
	Face2            pointOut        `json:"Face2"`
	Orientation      string          `json:"Orientation"`
}

type wallQueryOut struct {
	Count        int          `json:"Count"`
	SearchCenter pointOut     `json:"SearchCenter"`
	SearchRadius float64      `json:"SearchRadius"`
	Walls        []wallHitOut `json:"Walls"`
}

func (c QueryWallsByLocation) execute(doc Document) (any, error) {
	radius := defaultSearchRadius
	if c.SearchRadius != nil {
		radius = *c.SearchRadius
	}

	all := doc.Walls()
	segments := make([]walls.Segment, len(all))
	for i, w := range all {
		segments[i] = w.Segment
	}

	center := geometry.Point{X: c.X, Y: c.Y}
	results, err := walls.FindNear(center, radius, c.Level, segments)
	if err != nil {
		return nil, err
	}

	out := wallQueryOut{
		Count:        len(results),
		SearchCenter: pointOut{X: c.X, Y: c.Y},
		SearchRadius: radius,
		Walls:        make([]wallHitOut, 0, len(results)),
	}
	for _, r := range results {
		w := r.Wall
		out.Walls = append(out.Walls, wallHitOut{
			ElementID:        w.ID,
			Name:             w.Name,
			WallType:         w.WallType,
			Thickness:        round2(w.Thickness),
			Length:           round2(w.Length()),
			DistanceToCenter: round2(r.Distance),
			Level:            w.Level,
			LocationLine: locationLineOut{
				StartX: round2(w.Start.X),
				StartY: round2(w.Start.Y),
				EndX:   round2(w.End.X),
				EndY:   round2(w.End.Y),
			},
			ClosestPoint: pointOf(r.ClosestPoint),
			Face1:        pointOf(r.Face1),
			Face2:        pointOf(r.Face2),
			Orientation:  r.Orientation().String(),
		})
	}
	return out, nil
}

type dimensionOut struct {
	DimensionID int64   `json:"DimensionId"`
	Value       float64 `json:"Value"`
	Unit        string  `json:"Unit"`
	ViewID      int64   `json:"ViewId"`
	ViewName    string  `json:"ViewName"`
	Message     string  `json:"Message"`
}

func (c CreateDimension) execute(doc Document) (any, error) {
	view, err := doc.View(c.ViewID)
	if err != nil {
		return nil, err
	}
	offset := defaultDimensionOffset
	if c.Offset != nil {
		offset = *c.Offset
	}

	dim := Dimension{
		ViewID: view.ID,
		Start:  geometry.Point{X: c.StartX, Y: c.StartY},
		End:    geometry.Point{X: c.EndX, Y: c.EndY},
		Offset: offset,
	}
	id, err := doc.AddDimension(dim)
	if err != nil {
		return nil, err
	}

	value := dim.Value()
	return dimensionOut{
		DimensionID: id,
		Value:       round2(value),
		Unit:        "mm",
		ViewID:      view.ID,
		ViewName:    view.Name,
		Message:     fmt.Sprintf("created dimension: %.0f mm", value),
	}, nil
}

type createdOut struct {
	ElementID int64  `json:"ElementId"`
	Message   string `json:"Message"`
}

func (c CreateWall) execute(doc Document) (any, error) {
	level, err := resolveLevel(doc, c.Level)
	if err != nil {
		return nil, err
	}
	height := defaultWallHeight
	if c.Height != nil {
		height = *c.Height
	}
	thickness := defaultWallThickness
	if c.Thickness != nil {
		thickness = *c.Thickness
	}

	id, err := doc.AddWall(Wall{
		Segment: walls.Segment{
			Name:      "Basic Wall",
			WallType:  fmt.Sprintf("Generic - %.0fmm", thickness),
			Start:     geometry.Point{X: c.StartX, Y: c.StartY},
			End:       geometry.Point{X: c.EndX, Y: c.EndY},
			Thickness: thickness,
			Level:     level.Name,
		},
		Height: height,
	})
	if err != nil {
		return nil, err
	}
	return createdOut{ElementID: id, Message: fmt.Sprintf("created wall %d", id)}, nil
}

// resolveLevel finds the level for name: an exact (case-insensitive) match
// first, then the first level by elevation whose name contains name or is
// contained in it. An empty name picks the lowest level.
func resolveLevel(doc Document, name string) (Level, error) {
	levels := doc.Levels()
	if len(levels) == 0 {
		return Level{}, fmt.Errorf("%w: document has no levels", ErrNotFound)
	}
	if strings.TrimSpace(name) == "" {
		return levels[0], nil
	}
	for _, l := range levels {
		if strings.EqualFold(strings.TrimSpace(l.Name), strings.TrimSpace(name)) {
			return l, nil
		}
	}
	for _, l := range levels {
		if walls.MatchLevel(l.Name, name) {
			return l, nil
		}
	}
	return Level{}, fmt.Errorf("%w: no level matching %q", ErrNotFound, name)
}

type messageOut struct {
	Message string `json:"Message"`
}

func (c DeleteElement) execute(doc Document) (any, error) {
	if err := doc.Delete(c.ElementID); err != nil {
		return nil, err
	}
	return messageOut{Message: fmt.Sprintf("deleted element %d", c.ElementID)}, nil
}

type levelOut struct {
	ElementID int64   `json:"ElementId"`
	Name      string  `json:"Name"`
	Elevation float64 `json:"Elevation"`
}

type levelsOut struct {
	Count  int        `json:"Count"`
	Levels []levelOut `json:"Levels"`
}

func (GetAllLevels) execute(doc Document) (any, error) {
	levels := doc.Levels()
	out := levelsOut{Count: len(levels), Levels: make([]levelOut, 0, len(levels))}
	for _, l := range levels {
		out.Levels = append(out.Levels, levelOut{ElementID: l.ID, Name: l.Name, Elevation: round2(l.Elevation)})
	}
	return out, nil
}

type wallInfoOut struct {
	ElementID int64   `json:"ElementId"`
	Name      string  `json:"Name"`
	WallType  string  `json:"WallType"`
	Thickness float64 `json:"Thickness"`
	Length    float64 `json:"Length"`
	Height    float64 `json:"Height"`
	StartX    float64 `json:"StartX"`
	StartY    float64 `json:"StartY"`
	EndX      float64 `json:"EndX"`
	EndY      float64 `json:"EndY"`
	Level     string  `json:"Level"`
}

func (c GetWallInfo) execute(doc Document) (any, error) {
	w, err := doc.Wall(c.WallID)
	if err != nil {
		return nil, err
	}
	return wallInfoOut{
		ElementID: w.ID,
		Name:      w.Name,
		WallType:  w.WallType,
		Thickness: round2(w.Thickness),
		Length:    round2(w.Length()),
		Height:    round2(w.Height),
		StartX:    round2(w.Start.X),
		StartY:    round2(w.Start.Y),
		EndX:      round2(w.End.X),
		EndY:      round2(w.End.Y),
		Level:     w.Level,
	}, nil
}

type viewOut struct {
	ElementID int64  `json:"ElementId"`
	Name      string `json:"Name"`
	ViewType  string `json:"ViewType"`
	LevelName string `json:"LevelName"`
	Scale     int    `json:"Scale"`
}

func viewOf(v View) viewOut {
	return viewOut{ElementID: v.ID, Name: v.Name, ViewType: v.ViewType, LevelName: v.Level, Scale: v.Scale}
}

func (GetActiveView) execute(doc Document) (any, error) {
	v, err := doc.ActiveView()
	if err != nil {
		return nil, err
	}
	return viewOf(v), nil
}

type viewsOut struct {
	Count int       `json:"Count"`
	Views []viewOut `json:"Views"`
}

func (c GetAllViews) execute(doc Document) (any, error) {
	wantType := strings.ToLower(strings.TrimSpace(c.ViewType))
	wantLevel := strings.TrimSpace(c.LevelName)

	out := viewsOut{Views: []viewOut{}}
	for _, v := range doc.Views() {
		if wantType != "" && !strings.Contains(strings.ToLower(v.ViewType), wantType) {
			continue
		}
		if wantLevel != "" && !strings.Contains(v.Level, wantLevel) {
			continue
		}
		out.Views = append(out.Views, viewOf(v))
	}
	out.Count = len(out.Views)
	return out, nil
}

type setViewOut struct {
	Success  bool   `json:"Success"`
	ViewID   int64  `json:"ViewId"`
	ViewName string `json:"ViewName"`
	Message  string `json:"Message"`
}

func (c SetActiveView) execute(doc Document) (any, error) {
	if err := doc.SetActiveView(c.ViewID); err != nil {
		return nil, err
	}
	v, err := doc.View(c.ViewID)
	if err != nil {
		return nil, err
	}
	return setViewOut{Success: true, ViewID: v.ID, ViewName: v.Name, Message: "switched to view: " + v.Name}, nil
}

type boundsOut struct {
	MinX float64 `json:"MinX"`
	MinY float64 `json:"MinY"`
	MaxX float64 `json:"MaxX"`
	MaxY float64 `json:"MaxY"`
}

type roomOut struct {
	ElementID   int64      `json:"ElementId"`
	Name        string     `json:"Name"`
	Number      string     `json:"Number"`
	Level       string     `json:"Level"`
	Area        float64    `json:"Area"`
	CenterX     float64    `json:"CenterX"`
	CenterY     float64    `json:"CenterY"`
	BoundingBox *boundsOut `json:"BoundingBox"`
}

func (c GetRoomInfo) execute(doc Document) (any, error) {
	var room Room
	if c.RoomID != nil {
		r, err := doc.Room(*c.RoomID)
		if err != nil {
			return nil, err
		}
		room = r
	} else {
		found := false
		for _, r := range doc.Rooms() {
			if strings.Contains(r.Name, c.RoomName) {
				room, found = r, true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: no room named like %q", ErrNotFound, c.RoomName)
		}
	}

	out := roomOut{
		ElementID: room.ID,
		Name:      room.Name,
		Number:    room.Number,
		Level:     room.Level,
		Area:      round2(room.Area),
		CenterX:   round2(room.Center.X),
		CenterY:   round2(room.Center.Y),
	}
	if room.Bounds != nil {
		out.BoundingBox = &boundsOut{
			MinX: round2(room.Bounds.Min.X),
			MinY: round2(room.Bounds.Min.Y),
			MaxX: round2(room.Bounds.Max.X),
			MaxY: round2(room.Bounds.Max.Y),
		}
	}
	return out, nil
}

type distanceOut struct {
	Distance float64   `json:"Distance"`
	Unit     string    `json:"Unit"`
	Point1   point3Out `json:"Point1"`
	Point2   point3Out `json:"Point2"`
}

func (c MeasureDistance) execute(Document) (any, error) {
	dx, dy, dz := c.Point2X-c.Point1X, c.Point2Y-c.Point1Y, c.Point2Z-c.Point1Z
	return distanceOut{
		Distance: round2(math.Sqrt(dx*dx + dy*dy + dz*dz)),
		Unit:     "mm",
		Point1:   point3Out{X: c.Point1X, Y: c.Point1Y, Z: c.Point1Z},
		Point2:   point3Out{X: c.Point2X, Y: c.Point2Y, Z: c.Point2Z},
	}, nil
}

type projectOut struct {
	ProjectName      string `json:"ProjectName"`
	BuildingName     string `json:"BuildingName"`
	OrganizationName string `json:"OrganizationName"`
	Author           string `json:"Author"`
	Address          string `json:"Address"`
	ClientName       string `json:"ClientName"`
	ProjectNumber    string `json:"ProjectNumber"`
	ProjectStatus    string `json:"ProjectStatus"`
}

func (GetProjectInfo) execute(doc Document) (any, error) {
	p := doc.ProjectInfo()
	return projectOut{
		ProjectName:      p.Name,
		BuildingName:     p.BuildingName,
		OrganizationName: p.OrganizationName,
		Author:           p.Author,
		Address:          p.Address,
		ClientName:       p.ClientName,
		ProjectNumber:    p.Number,
		ProjectStatus:    p.Status,
	}, nil
}
