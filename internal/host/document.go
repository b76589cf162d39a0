// Package host is the reference design host: the element model, the typed
// commands it understands, the single-threaded executor that applies them,
// and the WebSocket endpoint the bridge connects to.
package host

import (
	"errors"
	"fmt"
	"sort"

	"github.com/lydakis/hostbridge/internal/geometry"
	"github.com/lydakis/hostbridge/internal/walls"
)

// ErrNotFound reports a missing element.
var ErrNotFound = errors.New("element not found")

// ProjectInfo is descriptive project metadata.
type ProjectInfo struct {
	Name             string
	BuildingName     string
	OrganizationName string
	Author           string
	Address          string
	ClientName       string
	Number           string
	Status           string
}

// Level is a named storey.
type Level struct {
	ID        int64
	Name      string
	Elevation float64
}

// Wall is a wall element. Segment carries the geometry the locator needs.
type Wall struct {
	walls.Segment
	Height float64
}

// View is a drawing view.
type View struct {
	ID       int64
	Name     string
	ViewType string
	Level    string
	Scale    int
}

// Bounds is an axis-aligned box.
type Bounds struct {
	Min geometry.Point
	Max geometry.Point
}

// Room is a bounded space. Area is in square meters.
type Room struct {
	ID     int64
	Name   string
	Number string
	Level  string
	Area   float64
	Center geometry.Point
	Bounds *Bounds
}

// Dimension is a placed linear dimension annotation.
type Dimension struct {
	ID     int64
	ViewID int64
	Start  geometry.Point
	End    geometry.Point
	Offset float64
}

// Value is the measured length.
func (d Dimension) Value() float64 { return geometry.Distance(d.Start, d.End) }

// Document is the element model commands run against. Implementations need
// not be safe for concurrent use; the Executor is their only caller.
type Document interface {
	ProjectInfo() ProjectInfo
	Levels() []Level
	Walls() []Wall
	Wall(id int64) (Wall, error)
	Views() []View
	View(id int64) (View, error)
	ActiveView() (View, error)
	SetActiveView(id int64) error
	Rooms() []Room
	Room(id int64) (Room, error)
	Dimensions() []Dimension
	AddWall(w Wall) (int64, error)
	AddDimension(d Dimension) (int64, error)
	Delete(id int64) error
}

// MemoryDocument is an in-memory Document. Element ids share one sequence.
type MemoryDocument struct {
	project    ProjectInfo
	levels     map[int64]Level
	walls      map[int64]Wall
	views      map[int64]View
	rooms      map[int64]Room
	dimensions map[int64]Dimension
	activeView int64
	nextID     int64
}

// NewMemoryDocument returns an empty document.
func NewMemoryDocument(project ProjectInfo) *MemoryDocument {
	return &MemoryDocument{
		project:    project,
		levels:     make(map[int64]Level),
		walls:      make(map[int64]Wall),
		views:      make(map[int64]View),
		rooms:      make(map[int64]Room),
		dimensions: make(map[int64]Dimension),
		nextID:     1,
	}
}

func (d *MemoryDocument) ProjectInfo() ProjectInfo { return d.project }

// Levels returns levels by ascending elevation.
func (d *MemoryDocument) Levels() []Level {
	out := values(d.levels)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Elevation != out[j].Elevation {
			return out[i].Elevation < out[j].Elevation
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (d *MemoryDocument) Walls() []Wall {
	out := values(d.walls)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (d *MemoryDocument) Wall(id int64) (Wall, error) {
	w, ok := d.walls[id]
	if !ok {
		return Wall{}, fmt.Errorf("%w: no wall with id %d", ErrNotFound, id)
	}
	return w, nil
}

// Views returns views ordered by type then name.
func (d *MemoryDocument) Views() []View {
	out := values(d.views)
	sort.Slice(out, func(i, j int) bool {
		if out[i].ViewType != out[j].ViewType {
			return out[i].ViewType < out[j].ViewType
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (d *MemoryDocument) View(id int64) (View, error) {
	v, ok := d.views[id]
	if !ok {
		return View{}, fmt.Errorf("%w: no view with id %d", ErrNotFound, id)
	}
	return v, nil
}

func (d *MemoryDocument) ActiveView() (View, error) {
	if d.activeView == 0 {
		return View{}, fmt.Errorf("%w: no active view", ErrNotFound)
	}
	return d.View(d.activeView)
}

func (d *MemoryDocument) SetActiveView(id int64) error {
	if _, err := d.View(id); err != nil {
		return err
	}
	d.activeView = id
	return nil
}

func (d *MemoryDocument) Rooms() []Room {
	out := values(d.rooms)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (d *MemoryDocument) Room(id int64) (Room, error) {
	r, ok := d.rooms[id]
	if !ok {
		return Room{}, fmt.Errorf("%w: no room with id %d", ErrNotFound, id)
	}
	return r, nil
}

func (d *MemoryDocument) Dimensions() []Dimension {
	out := values(d.dimensions)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AddLevel inserts a level, assigning an id when l.ID is zero.
func (d *MemoryDocument) AddLevel(l Level) (int64, error) {
	id, err := d.claim(l.ID)
	if err != nil {
		return 0, err
	}
	l.ID = id
	d.levels[id] = l
	return id, nil
}

func (d *MemoryDocument) AddWall(w Wall) (int64, error) {
	if w.Degenerate() {
		return 0, fmt.Errorf("wall start and end coincide at (%.2f, %.2f)", w.Start.X, w.Start.Y)
	}
	if w.Thickness <= 0 {
		return 0, fmt.Errorf("wall thickness must be > 0, got %v", w.Thickness)
	}
	id, err := d.claim(w.ID)
	if err != nil {
		return 0, err
	}
	w.ID = id
	d.walls[id] = w
	return id, nil
}

// AddView inserts a view, assigning an id when v.ID is zero.
func (d *MemoryDocument) AddView(v View) (int64, error) {
	id, err := d.claim(v.ID)
	if err != nil {
		return 0, err
	}
	v.ID = id
	d.views[id] = v
	return id, nil
}

// AddRoom inserts a room, assigning an id when r.ID is zero.
func (d *MemoryDocument) AddRoom(r Room) (int64, error) {
	id, err := d.claim(r.ID)
	if err != nil {
		return 0, err
	}
	r.ID = id
	d.rooms[id] = r
	return id, nil
}

func (d *MemoryDocument) AddDimension(dim Dimension) (int64, error) {
	if _, err := d.View(dim.ViewID); err != nil {
		return 0, err
	}
	if dim.Start == dim.End {
		return 0, fmt.Errorf("dimension start and end coincide at (%.2f, %.2f)", dim.Start.X, dim.Start.Y)
	}
	id, err := d.claim(dim.ID)
	if err != nil {
		return 0, err
	}
	dim.ID = id
	d.dimensions[id] = dim
	return id, nil
}

// Delete removes any element by id. Deleting the active view clears it.
func (d *MemoryDocument) Delete(id int64) error {
	switch {
	case has(d.walls, id):
		delete(d.walls, id)
	case has(d.dimensions, id):
		delete(d.dimensions, id)
	case has(d.rooms, id):
		delete(d.rooms, id)
	case has(d.views, id):
		delete(d.views, id)
		if d.activeView == id {
			d.activeView = 0
		}
	case has(d.levels, id):
		delete(d.levels, id)
	default:
		return fmt.Errorf("%w: no element with id %d", ErrNotFound, id)
	}
	return nil
}

// claim reserves id, or the next free id when id is zero.
func (d *MemoryDocument) claim(id int64) (int64, error) {
	if id == 0 {
		for d.taken(d.nextID) {
			d.nextID++
		}
		id = d.nextID
		d.nextID++
		return id, nil
	}
	if id < 0 {
		return 0, fmt.Errorf("element id must be positive, got %d", id)
	}
	if d.taken(id) {
		return 0, fmt.Errorf("element id %d already in use", id)
	}
	if id >= d.nextID {
		d.nextID = id + 1
	}
	return id, nil
}

func (d *MemoryDocument) taken(id int64) bool {
	return has(d.levels, id) || has(d.walls, id) || has(d.views, id) ||
		has(d.rooms, id) || has(d.dimensions, id)
}

func has[V any](m map[int64]V, id int64) bool {
	_, ok := m[id]
	return ok
}

func values[V any](m map[int64]V) []V {
	out := make([]V, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}
