package workflow

import (
	"encoding/json"
	"fmt"

	"github.com/lydakis/hostbridge/internal/dimension"
	"github.com/lydakis/hostbridge/internal/geometry"
	"github.com/lydakis/hostbridge/internal/walls"
)

type xy struct {
	X float64 `json:"X"`
	Y float64 `json:"Y"`
}

func (p xy) point() geometry.Point { return geometry.Point{X: p.X, Y: p.Y} }

type wallHit struct {
	ElementID        int64   `json:"ElementId"`
	Name             string  `json:"Name"`
	WallType         string  `json:"WallType"`
	Thickness        float64 `json:"Thickness"`
	DistanceToCenter float64 `json:"DistanceToCenter"`
	Level            string  `json:"Level"`
	LocationLine     struct {
		StartX float64 `json:"StartX"`
		StartY float64 `json:"StartY"`
		EndX   float64 `json:"EndX"`
		EndY   float64 `json:"EndY"`
	} `json:"LocationLine"`
	ClosestPoint xy `json:"ClosestPoint"`
	Face1        xy `json:"Face1"`
	Face2        xy `json:"Face2"`
}

type wallQuery struct {
	Count int       `json:"Count"`
	Walls []wallHit `json:"Walls"`
}

// decodeWalls turns a query_walls_by_location reply back into locator
// results, keeping the host's nearest-first order.
func decodeWalls(data json.RawMessage) ([]walls.Result, error) {
	var q wallQuery
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, fmt.Errorf("decoding wall query: %w", err)
	}
	out := make([]walls.Result, 0, len(q.Walls))
	for _, w := range q.Walls {
		out = append(out, walls.Result{
			Wall: walls.Segment{
				ID:        w.ElementID,
				Name:      w.Name,
				WallType:  w.WallType,
				Start:     geometry.Point{X: w.LocationLine.StartX, Y: w.LocationLine.StartY},
				End:       geometry.Point{X: w.LocationLine.EndX, Y: w.LocationLine.EndY},
				Thickness: w.Thickness,
				Level:     w.Level,
			},
			ClosestPoint: w.ClosestPoint.point(),
			Distance:     w.DistanceToCenter,
			Face1:        w.Face1.point(),
			Face2:        w.Face2.point(),
		})
	}
	return out, nil
}

type viewInfo struct {
	ElementID int64  `json:"ElementId"`
	Name      string `json:"Name"`
	LevelName string `json:"LevelName"`
}

type createdDimension struct {
	DimensionID int64   `json:"DimensionId"`
	Value       float64 `json:"Value"`
	ViewName    string  `json:"ViewName"`
}

type roomInfo struct {
	ElementID   int64   `json:"ElementId"`
	Name        string  `json:"Name"`
	Level       string  `json:"Level"`
	CenterX     float64 `json:"CenterX"`
	CenterY     float64 `json:"CenterY"`
	BoundingBox *struct {
		MinX float64 `json:"MinX"`
		MinY float64 `json:"MinY"`
		MaxX float64 `json:"MaxX"`
		MaxY float64 `json:"MaxY"`
	} `json:"BoundingBox"`
}

// box is the room's bounding box, nil when the host reported none.
func (r roomInfo) box() *dimension.BoundingBox {
	if r.BoundingBox == nil {
		return nil
	}
	return &dimension.BoundingBox{
		Min: geometry.Point{X: r.BoundingBox.MinX, Y: r.BoundingBox.MinY},
		Max: geometry.Point{X: r.BoundingBox.MaxX, Y: r.BoundingBox.MaxY},
	}
}

// center is where the wall query should start. A bounding box only ever
// yields its center; the width always comes from the walls.
func (r roomInfo) center() geometry.Point {
	if box := r.box(); box != nil {
		return box.Center()
	}
	return geometry.Point{X: r.CenterX, Y: r.CenterY}
}

func decode[T any](what string, data json.RawMessage) (T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("decoding %s: %w", what, err)
	}
	return v, nil
}
