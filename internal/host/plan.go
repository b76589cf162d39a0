package host

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/lydakis/hostbridge/internal/geometry"
	"github.com/lydakis/hostbridge/internal/walls"
)

// Plan is the TOML form of a document. Coordinates are [x, y] pairs in
// millimeters.
type Plan struct {
	Project    planProject `toml:"project"`
	ActiveView int64       `toml:"active_view"`
	Levels     []planLevel `toml:"levels"`
	Walls      []planWall  `toml:"walls"`
	Views      []planView  `toml:"views"`
	Rooms      []planRoom  `toml:"rooms"`
}

type planProject struct {
	Name             string `toml:"name"`
	BuildingName     string `toml:"building_name"`
	OrganizationName string `toml:"organization_name"`
	Author           string `toml:"author"`
	Address          string `toml:"address"`
	ClientName       string `toml:"client_name"`
	Number           string `toml:"number"`
	Status           string `toml:"status"`
}

type planLevel struct {
	ID        int64   `toml:"id"`
	Name      string  `toml:"name"`
	Elevation float64 `toml:"elevation"`
}

type planWall struct {
	ID        int64      `toml:"id"`
	Name      string     `toml:"name"`
	Type      string     `toml:"type"`
	Start     [2]float64 `toml:"start"`
	End       [2]float64 `toml:"end"`
	Thickness float64    `toml:"thickness"`
	Height    float64    `toml:"height"`
	Level     string     `toml:"level"`
}

type planView struct {
	ID    int64  `toml:"id"`
	Name  string `toml:"name"`
	Type  string `toml:"type"`
	Level string `toml:"level"`
	Scale int    `toml:"scale"`
}

type planRoom struct {
	ID     int64       `toml:"id"`
	Name   string      `toml:"name"`
	Number string      `toml:"number"`
	Level  string      `toml:"level"`
	Area   float64     `toml:"area"`
	Center [2]float64  `toml:"center"`
	Min    *[2]float64 `toml:"min"`
	Max    *[2]float64 `toml:"max"`
}

// LoadPlan reads a plan file into a new MemoryDocument.
func LoadPlan(path string) (*MemoryDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan: %w", err)
	}
	doc, err := ParsePlan(data)
	if err != nil {
		return nil, fmt.Errorf("plan %s: %w", path, err)
	}
	return doc, nil
}

// ParsePlan decodes a TOML plan. Every invalid element is reported.
func ParsePlan(data []byte) (*MemoryDocument, error) {
	var p Plan
	if err := toml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing plan: %w", err)
	}
	return p.Build()
}

// Build creates a document from the plan.
func (p Plan) Build() (*MemoryDocument, error) {
	doc := NewMemoryDocument(ProjectInfo(p.Project))

	var errs []error
	levels := make(map[string]bool, len(p.Levels))
	for i, l := range p.Levels {
		if l.Name == "" {
			errs = append(errs, fmt.Errorf("levels[%d]: name is required", i))
			continue
		}
		if _, err := doc.AddLevel(Level{ID: l.ID, Name: l.Name, Elevation: l.Elevation}); err != nil {
			errs = append(errs, fmt.Errorf("levels[%d]: %w", i, err))
			continue
		}
		levels[l.Name] = true
	}

	for i, w := range p.Walls {
		if w.Level != "" && !levels[w.Level] {
			errs = append(errs, fmt.Errorf("walls[%d]: unknown level %q", i, w.Level))
			continue
		}
		height := w.Height
		if height == 0 {
			height = defaultWallHeight
		}
		_, err := doc.AddWall(Wall{
			Segment: walls.Segment{
				ID:        w.ID,
				Name:      w.Name,
				WallType:  w.Type,
				Start:     pointFrom(w.Start),
				End:       pointFrom(w.End),
				Thickness: w.Thickness,
				Level:     w.Level,
			},
			Height: height,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("walls[%d]: %w", i, err))
		}
	}

	for i, v := range p.Views {
		if v.Level != "" && !levels[v.Level] {
			errs = append(errs, fmt.Errorf("views[%d]: unknown level %q", i, v.Level))
			continue
		}
		if _, err := doc.AddView(View{ID: v.ID, Name: v.Name, ViewType: v.Type, Level: v.Level, Scale: v.Scale}); err != nil {
			errs = append(errs, fmt.Errorf("views[%d]: %w", i, err))
		}
	}

	for i, r := range p.Rooms {
		room := Room{
			ID:     r.ID,
			Name:   r.Name,
			Number: r.Number,
			Level:  r.Level,
			Area:   r.Area,
			Center: pointFrom(r.Center),
		}
		switch {
		case r.Min != nil && r.Max != nil:
			room.Bounds = &Bounds{Min: pointFrom(*r.Min), Max: pointFrom(*r.Max)}
		case r.Min != nil || r.Max != nil:
			errs = append(errs, fmt.Errorf("rooms[%d]: min and max must be given together", i))
			continue
		}
		if _, err := doc.AddRoom(room); err != nil {
			errs = append(errs, fmt.Errorf("rooms[%d]: %w", i, err))
		}
	}

	if p.ActiveView != 0 {
		if err := doc.SetActiveView(p.ActiveView); err != nil {
			errs = append(errs, fmt.Errorf("active_view: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return doc, nil
}

func pointFrom(xy [2]float64) geometry.Point {
	return geometry.Point{X: xy[0], Y: xy[1]}
}
