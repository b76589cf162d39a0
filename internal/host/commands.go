package host

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownCommand is returned for command names the host does not
// implement.
var ErrUnknownCommand = errors.New("unimplemented command")

// Command is one parsed host command. Implementations are the structs in
// this file; execute runs on the Executor goroutine only.
type Command interface {
	Name() string
	execute(doc Document) (any, error)
}

type validator interface {
	validate() error
}

// QueryWallsByLocation finds walls near a point.
type QueryWallsByLocation struct {
	X            float64  `json:"x"`
	Y            float64  `json:"y"`
	SearchRadius *float64 `json:"searchRadius,omitempty"`
	Level        string   `json:"level,omitempty"`
}

// CreateDimension places a linear dimension between two points in a view.
type CreateDimension struct {
	ViewID int64    `json:"viewId"`
	StartX float64  `json:"startX"`
	StartY float64  `json:"startY"`
	EndX   float64  `json:"endX"`
	EndY   float64  `json:"endY"`
	Offset *float64 `json:"offset,omitempty"`
}

// CreateWall adds a straight wall.
type CreateWall struct {
	StartX    float64  `json:"startX"`
	StartY    float64  `json:"startY"`
	EndX      float64  `json:"endX"`
	EndY      float64  `json:"endY"`
	Height    *float64 `json:"height,omitempty"`
	Thickness *float64 `json:"thickness,omitempty"`
	Level     string   `json:"level,omitempty"`
}

// DeleteElement removes an element by id.
type DeleteElement struct {
	ElementID int64 `json:"elementId"`
}

// GetAllLevels lists levels.
type GetAllLevels struct{}

// GetWallInfo describes one wall.
type GetWallInfo struct {
	WallID int64 `json:"wallId"`
}

// GetActiveView describes the active view.
type GetActiveView struct{}

// GetAllViews lists views, optionally filtered.
type GetAllViews struct {
	ViewType  string `json:"viewType,omitempty"`
	LevelName string `json:"levelName,omitempty"`
}

// SetActiveView switches the active view.
type SetActiveView struct {
	ViewID int64 `json:"viewId"`
}

// GetRoomInfo describes a room found by id or by name fragment.
type GetRoomInfo struct {
	RoomID   *int64 `json:"roomId,omitempty"`
	RoomName string `json:"roomName,omitempty"`
}

// MeasureDistance is the straight-line distance between two 3D points.
type MeasureDistance struct {
	Point1X float64 `json:"point1X"`
	Point1Y float64 `json:"point1Y"`
	Point1Z float64 `json:"point1Z"`
	Point2X float64 `json:"point2X"`
	Point2Y float64 `json:"point2Y"`
	Point2Z float64 `json:"point2Z"`
}

// GetProjectInfo returns project metadata.
type GetProjectInfo struct{}

func (QueryWallsByLocation) Name() string { return "query_walls_by_location" }
func (CreateDimension) Name() string      { return "create_dimension" }
func (CreateWall) Name() string           { return "create_wall" }
func (DeleteElement) Name() string        { return "delete_element" }
func (GetAllLevels) Name() string         { return "get_all_levels" }
func (GetWallInfo) Name() string          { return "get_wall_info" }
func (GetActiveView) Name() string        { return "get_active_view" }
func (GetAllViews) Name() string          { return "get_all_views" }
func (SetActiveView) Name() string        { return "set_active_view" }
func (GetRoomInfo) Name() string          { return "get_room_info" }
func (MeasureDistance) Name() string      { return "measure_distance" }
func (GetProjectInfo) Name() string       { return "get_project_info" }

func (c CreateDimension) validate() error {
	if c.ViewID <= 0 {
		return fmt.Errorf("viewId is required")
	}
	return nil
}

func (c DeleteElement) validate() error {
	if c.ElementID <= 0 {
		return fmt.Errorf("elementId is required")
	}
	return nil
}

func (c GetWallInfo) validate() error {
	if c.WallID <= 0 {
		return fmt.Errorf("wallId is required")
	}
	return nil
}

func (c SetActiveView) validate() error {
	if c.ViewID <= 0 {
		return fmt.Errorf("viewId is required")
	}
	return nil
}

func (c GetRoomInfo) validate() error {
	if c.RoomID == nil && strings.TrimSpace(c.RoomName) == "" {
		return fmt.Errorf("roomId or roomName is required")
	}
	return nil
}

var commandFactories = map[string]func() Command{
	"query_walls_by_location": func() Command { return &QueryWallsByLocation{} },
	"create_dimension":        func() Command { return &CreateDimension{} },
	"create_wall":             func() Command { return &CreateWall{} },
	"delete_element":          func() Command { return &DeleteElement{} },
	"get_all_levels":          func() Command { return &GetAllLevels{} },
	"get_wall_info":           func() Command { return &GetWallInfo{} },
	"get_active_view":         func() Command { return &GetActiveView{} },
	"get_all_views":           func() Command { return &GetAllViews{} },
	"set_active_view":         func() Command { return &SetActiveView{} },
	"get_room_info":           func() Command { return &GetRoomInfo{} },
	"measure_distance":        func() Command { return &MeasureDistance{} },
	"get_project_info":        func() Command { return &GetProjectInfo{} },
}

// CommandNames lists the implemented command names, sorted.
func CommandNames() []string {
	names := make([]string, 0, len(commandFactories))
	for name := range commandFactories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseCommand decodes params into the typed command for name. Names match
// case-insensitively. Missing params decode as an empty object.
func ParseCommand(name string, params json.RawMessage) (Command, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	factory, ok := commandFactories[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}

	cmd := factory()
	trimmed := bytes.TrimSpace(params)
	if len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		if err := json.Unmarshal(trimmed, cmd); err != nil {
			return nil, fmt.Errorf("%s: invalid parameters: %w", key, err)
		}
	}

	if v, ok := cmd.(validator); ok {
		if err := v.validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
	}
	return cmd, nil
}
