// Package tools declares the MCP tools the bridge exposes. Every catalog
// tool maps one-to-one onto a host command of the same name and forwards its
// arguments unchanged as the command parameters.
package tools

import (
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// CorridorToolName is the composite tool that runs the corridor dimension
// workflow instead of forwarding to a single host command.
const CorridorToolName = "create_corridor_dimensions"

func number(desc string) map[string]any {
	return map[string]any{"type": "number", "description": desc}
}

func integer(desc string) map[string]any {
	return map[string]any{"type": "integer", "description": desc}
}

func str(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func boolean(desc string) map[string]any {
	return map[string]any{"type": "boolean", "description": desc}
}

func boolPtr(b bool) *bool { return &b }

func object(props map[string]any, required ...string) mcp.ToolInputSchema {
	return mcp.ToolInputSchema{
		Type:       "object",
		Properties: props,
		Required:   required,
	}
}

func readOnly(title string) mcp.ToolAnnotation {
	return mcp.ToolAnnotation{Title: title, ReadOnlyHint: boolPtr(true)}
}

func mutating(title string, destructive bool) mcp.ToolAnnotation {
	return mcp.ToolAnnotation{
		Title:           title,
		ReadOnlyHint:    boolPtr(false),
		DestructiveHint: boolPtr(destructive),
	}
}

var catalog = []mcp.Tool{
	{
		Name: "query_walls_by_location",
		Description: "Find walls whose location line lies within searchRadius of (x, y), nearest first. " +
			"Each wall carries its two face points so net widths can be measured between facing surfaces. " +
			"Coordinates are millimeters.",
		InputSchema: object(map[string]any{
			"x":            number("Search center X in mm"),
			"y":            number("Search center Y in mm"),
			"searchRadius": number("Search radius in mm (default 5000)"),
			"level":        str("Level name filter, matched loosely (\"2FL\" matches \"2FL Floor\")"),
		}, "x", "y"),
		Annotations: readOnly("Query walls by location"),
	},
	{
		Name: "create_dimension",
		Description: "Create a linear dimension between two points in a view. " +
			"The offset only places the dimension line; it never changes the measured value.",
		InputSchema: object(map[string]any{
			"viewId": integer("View to draw the dimension in"),
			"startX": number("First anchor X in mm"),
			"startY": number("First anchor Y in mm"),
			"endX":   number("Second anchor X in mm"),
			"endY":   number("Second anchor Y in mm"),
			"offset": number("Perpendicular offset of the dimension line in mm (default 500)"),
		}, "viewId", "startX", "startY", "endX", "endY"),
		Annotations: mutating("Create dimension", false),
	},
	{
		Name:        "create_wall",
		Description: "Create a straight wall along the given location line.",
		InputSchema: object(map[string]any{
			"startX":    number("Start X in mm"),
			"startY":    number("Start Y in mm"),
			"endX":      number("End X in mm"),
			"endY":      number("End Y in mm"),
			"height":    number("Wall height in mm (default 3000)"),
			"thickness": number("Wall thickness in mm (default 200)"),
			"level":     str("Level name; the lowest level when omitted"),
		}, "startX", "startY", "endX", "endY"),
		Annotations: mutating("Create wall", false),
	},
	{
		Name:        "delete_element",
		Description: "Delete any element by id.",
		InputSchema: object(map[string]any{
			"elementId": integer("Element id"),
		}, "elementId"),
		Annotations: mutating("Delete element", true),
	},
	{
		Name:        "get_all_levels",
		Description: "List every level with its elevation, lowest first.",
		InputSchema: object(map[string]any{}),
		Annotations: readOnly("List levels"),
	},
	{
		Name:        "get_wall_info",
		Description: "Describe one wall: location line, thickness, height, level.",
		InputSchema: object(map[string]any{
			"wallId": integer("Wall element id"),
		}, "wallId"),
		Annotations: readOnly("Wall info"),
	},
	{
		Name:        "get_active_view",
		Description: "Describe the view currently active in the host.",
		InputSchema: object(map[string]any{}),
		Annotations: readOnly("Active view"),
	},
	{
		Name:        "get_all_views",
		Description: "List views, optionally filtered by view type or level.",
		InputSchema: object(map[string]any{
			"viewType":  str("View type filter, e.g. FloorPlan"),
			"levelName": str("Level name filter"),
		}),
		Annotations: readOnly("List views"),
	},
	{
		Name:        "set_active_view",
		Description: "Switch the active view.",
		InputSchema: object(map[string]any{
			"viewId": integer("View id"),
		}, "viewId"),
		Annotations: mutating("Set active view", false),
	},
	{
		Name: "get_room_info",
		Description: "Describe a room by id or name, including its center and bounding box. " +
			"The bounding box is not a wall-to-wall width; query walls around the center for that.",
		InputSchema: object(map[string]any{
			"roomId":   integer("Room element id"),
			"roomName": str("Room name, matched by prefix"),
		}),
		Annotations: readOnly("Room info"),
	},
	{
		Name:        "measure_distance",
		Description: "Straight-line distance between two 3D points in mm.",
		InputSchema: object(map[string]any{
			"point1X": number("First point X"),
			"point1Y": number("First point Y"),
			"point1Z": number("First point Z"),
			"point2X": number("Second point X"),
			"point2Y": number("Second point Y"),
			"point2Z": number("Second point Z"),
		}, "point1X", "point1Y", "point2X", "point2Y"),
		Annotations: readOnly("Measure distance"),
	},
	{
		Name:        "get_project_info",
		Description: "Project name, number, client and address.",
		InputSchema: object(map[string]any{}),
		Annotations: readOnly("Project info"),
	},
}

var corridorTool = mcp.Tool{
	Name: CorridorToolName,
	Description: "Dimension the net width of a corridor around (x, y), or around the center of a named room. " +
		"Finds the two opposing walls, measures between their facing surfaces and creates a net-width " +
		"dimension plus an optional centerline reference dimension at a different offset.",
	InputSchema: object(map[string]any{
		"x":                 number("Point inside the corridor, X in mm"),
		"y":                 number("Point inside the corridor, Y in mm"),
		"room":              str("Room whose center is used when x and y are omitted"),
		"viewId":            integer("View for the dimensions; the active view when omitted"),
		"level":             str("Level name filter for the wall query"),
		"searchRadius":      number("Wall search radius in mm; the configured default when omitted"),
		"netOffset":         number("Offset of the net-width dimension line in mm; 0 draws it on the measured line"),
		"centerlineOffset":  number("Offset of the centerline dimension line in mm; the configured default when omitted"),
		"includeCenterline": boolean("Also create the centerline reference dimension (default true)"),
	}),
	Annotations: mutating("Create corridor dimensions", false),
}

// Catalog returns the forwarding tools, sorted by name.
func Catalog() []mcp.Tool {
	out := make([]mcp.Tool, len(catalog))
	copy(out, catalog)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// CorridorTool returns the composite workflow tool.
func CorridorTool() mcp.Tool { return corridorTool }

// Lookup finds a tool by name, case-insensitively. The composite tool is
// included.
func Lookup(name string) (mcp.Tool, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == CorridorToolName {
		return corridorTool, true
	}
	for _, t := range catalog {
		if t.Name == name {
			return t, true
		}
	}
	return mcp.Tool{}, false
}

// Names lists every tool name, composite included.
func Names() []string {
	names := make([]string, 0, len(catalog)+1)
	for _, t := range catalog {
		names = append(names, t.Name)
	}
	names = append(names, CorridorToolName)
	sort.Strings(names)
	return names
}

// ReadOnly reports whether calling tool leaves the host model unchanged.
func ReadOnly(tool mcp.Tool) bool {
	hint := tool.Annotations.ReadOnlyHint
	return hint != nil && *hint
}
