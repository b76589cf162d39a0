// Package workflow chains host commands into multi-step operations.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/lydakis/hostbridge/internal/dimension"
	"github.com/lydakis/hostbridge/internal/geometry"
	"github.com/lydakis/hostbridge/internal/wire"
)

// Sender issues one host command and waits for its reply.
// *channel.Channel satisfies it.
type Sender interface {
	Send(ctx context.Context, command string, params any) (wire.Response, error)
}

// ErrInvalidRequest wraps every problem found in a CorridorRequest before
// anything is sent.
var ErrInvalidRequest = errors.New("invalid corridor request")

// Defaults fills in what a CorridorRequest leaves unset.
type Defaults struct {
	SearchRadius     float64
	NetOffset        float64
	CenterlineOffset float64
}

// CorridorRequest asks for the net width of the corridor around Center,
// or around the center of Room when Center is nil. Nil numeric fields take
// the workflow defaults; zero is a real value.
type CorridorRequest struct {
	Center *geometry.Point
	Room   string
	// ViewID zero means the active view.
	ViewID       int64
	Level        string
	SearchRadius *float64

	NetOffset        *float64
	CenterlineOffset *float64
	SkipCenterline   bool
}

// settings are the numeric values a request runs with once defaults are
// applied.
type settings struct {
	radius           float64
	netOffset        float64
	centerlineOffset float64
}

// Anchor is one dimension as created on the host.
type Anchor struct {
	DimensionID int64   `json:"DimensionId"`
	Value       float64 `json:"Value"`
	Start       xy      `json:"Start"`
	End         xy      `json:"End"`
	Offset      float64 `json:"Offset"`
}

// CorridorResult reports what the workflow measured and created.
type CorridorResult struct {
	ViewID          int64   `json:"ViewId"`
	ViewName        string  `json:"ViewName"`
	Center          xy      `json:"Center"`
	Orientation     string  `json:"Orientation"`
	NetWidth        float64 `json:"NetWidth"`
	CenterlineWidth float64 `json:"CenterlineWidth"`
	WallIDs         []int64 `json:"WallIds"`
	Net             Anchor  `json:"NetDimension"`
	Centerline      *Anchor `json:"CenterlineDimension,omitempty"`
	Message         string  `json:"Message"`
}

// Corridor runs the corridor dimension workflow against a host.
type Corridor struct {
	sender   Sender
	defaults Defaults
	log      *zap.Logger
}

// NewCorridor returns a workflow that sends through s.
func NewCorridor(s Sender, defaults Defaults, log *zap.Logger) *Corridor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Corridor{sender: s, defaults: defaults, log: log.With(zap.String("component", "workflow"))}
}

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func (c *Corridor) resolve(req CorridorRequest) (settings, error) {
	set := settings{
		radius:           orDefault(req.SearchRadius, c.defaults.SearchRadius),
		netOffset:        orDefault(req.NetOffset, c.defaults.NetOffset),
		centerlineOffset: orDefault(req.CenterlineOffset, c.defaults.CenterlineOffset),
	}

	var errs []error
	if req.Center == nil && strings.TrimSpace(req.Room) == "" {
		errs = append(errs, errors.New("a center point or a room name is required"))
	}
	if req.Center != nil && !finite(req.Center.X, req.Center.Y) {
		errs = append(errs, errors.New("center must be finite"))
	}
	if !(set.radius > 0) || !finite(set.radius) {
		errs = append(errs, fmt.Errorf("search radius must be > 0, got %v", set.radius))
	}
	if !finite(set.netOffset, set.centerlineOffset) {
		errs = append(errs, errors.New("offsets must be finite"))
	}
	if !req.SkipCenterline && set.netOffset == set.centerlineOffset {
		errs = append(errs, fmt.Errorf("net and centerline offsets must differ, both are %v", set.netOffset))
	}
	if len(errs) > 0 {
		return set, fmt.Errorf("%w: %w", ErrInvalidRequest, errors.Join(errs...))
	}
	return set, nil
}

// Dimension measures the corridor and creates its dimensions. Every step
// waits for the previous reply. Nothing is created when the walls do not
// bound a corridor.
func (c *Corridor) Dimension(ctx context.Context, req CorridorRequest) (CorridorResult, error) {
	set, err := c.resolve(req)
	if err != nil {
		return CorridorResult{}, err
	}

	center, level, box, err := c.center(ctx, req)
	if err != nil {
		return CorridorResult{}, err
	}

	view, err := c.view(ctx, req.ViewID)
	if err != nil {
		return CorridorResult{}, err
	}
	if level == "" {
		// Walls on other floors share plan coordinates; stay on the view's level.
		level = view.LevelName
	}

	resp, err := c.sender.Send(ctx, "query_walls_by_location", map[string]any{
		"x":            center.X,
		"y":            center.Y,
		"searchRadius": set.radius,
		"level":        level,
	})
	if err != nil {
		return CorridorResult{}, err
	}
	found, err := decodeWalls(resp.Data)
	if err != nil {
		return CorridorResult{}, err
	}

	width, err := dimension.CorridorWidth(found, center)
	if err != nil {
		if box != nil {
			// The room's box is no substitute for the walls; say so.
			_, boxErr := box.Width()
			err = errors.Join(err, boxErr)
		}
		return CorridorResult{}, fmt.Errorf("corridor at (%.2f, %.2f): %w", center.X, center.Y, err)
	}
	c.log.Info("measured corridor",
		zap.Float64("net_width", width.Net),
		zap.Float64("centerline_width", width.Centerline()),
		zap.Stringer("orientation", width.Orientation),
		zap.Int64("wall_a", width.WallA.Wall.ID),
		zap.Int64("wall_b", width.WallB.Wall.ID))

	out := CorridorResult{
		ViewID:          view.ElementID,
		ViewName:        view.Name,
		Center:          xy{X: center.X, Y: center.Y},
		Orientation:     width.Orientation.String(),
		NetWidth:        width.Net,
		CenterlineWidth: width.Centerline(),
		WallIDs:         []int64{width.WallA.Wall.ID, width.WallB.Wall.ID},
	}

	var viewName string
	out.Net, viewName, err = c.create(ctx, view.ElementID, width.NetSpec(set.netOffset))
	if err != nil {
		return CorridorResult{}, fmt.Errorf("creating net dimension: %w", err)
	}
	if out.ViewName == "" {
		out.ViewName = viewName
	}

	if !req.SkipCenterline {
		anchor, _, err := c.create(ctx, view.ElementID, width.CenterlineSpec(set.centerlineOffset))
		if err != nil {
			return out, fmt.Errorf("net dimension %d created; creating centerline dimension: %w", out.Net.DimensionID, err)
		}
		out.Centerline = &anchor
	}

	out.Message = fmt.Sprintf("net width %.0f mm between walls %d and %d", width.Net, out.WallIDs[0], out.WallIDs[1])
	return out, nil
}

// center resolves the query center and level. The room's bounding box is
// returned when the center came from one.
func (c *Corridor) center(ctx context.Context, req CorridorRequest) (geometry.Point, string, *dimension.BoundingBox, error) {
	if req.Center != nil {
		return *req.Center, req.Level, nil, nil
	}
	resp, err := c.sender.Send(ctx, "get_room_info", map[string]any{"roomName": req.Room})
	if err != nil {
		return geometry.Point{}, "", nil, err
	}
	room, err := decode[roomInfo]("room", resp.Data)
	if err != nil {
		return geometry.Point{}, "", nil, err
	}
	level := req.Level
	if level == "" {
		level = room.Level
	}
	return room.center(), level, room.box(), nil
}

// view resolves the target view. An explicit id is trusted; the host
// rejects it on create_dimension if it does not exist.
func (c *Corridor) view(ctx context.Context, id int64) (viewInfo, error) {
	if id != 0 {
		return viewInfo{ElementID: id}, nil
	}
	resp, err := c.sender.Send(ctx, "get_active_view", nil)
	if err != nil {
		return viewInfo{}, err
	}
	info, err := decode[viewInfo]("active view", resp.Data)
	if err != nil {
		return viewInfo{}, err
	}
	if info.ElementID == 0 {
		return viewInfo{}, errors.New("host reported no active view")
	}
	return info, nil
}

func (c *Corridor) create(ctx context.Context, viewID int64, spec dimension.Spec) (Anchor, string, error) {
	resp, err := c.sender.Send(ctx, "create_dimension", map[string]any{
		"viewId": viewID,
		"startX": spec.Start.X,
		"startY": spec.Start.Y,
		"endX":   spec.End.X,
		"endY":   spec.End.Y,
		"offset": spec.Offset,
	})
	if err != nil {
		return Anchor{}, "", err
	}
	created, err := decode[createdDimension]("created dimension", resp.Data)
	if err != nil {
		return Anchor{}, "", err
	}
	return Anchor{
		DimensionID: created.DimensionID,
		Value:       created.Value,
		Start:       xy{X: spec.Start.X, Y: spec.Start.Y},
		End:         xy{X: spec.End.X, Y: spec.End.Y},
		Offset:      spec.Offset,
	}, created.ViewName, nil
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
