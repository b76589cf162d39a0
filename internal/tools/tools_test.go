package tools

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lydakis/hostbridge/internal/host"
)

func TestCatalogMatchesHostCommands(t *testing.T) {
	var names []string
	for _, tool := range Catalog() {
		names = append(names, tool.Name)
	}
	want := host.CommandNames()
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("catalog = %v, want %v", names, want)
	}
}

func TestCatalogRequiredArgsAreDeclared(t *testing.T) {
	for _, tool := range append(Catalog(), CorridorTool()) {
		if tool.InputSchema.Type != "object" {
			t.Errorf("%s: schema type = %q", tool.Name, tool.InputSchema.Type)
		}
		if tool.Description == "" {
			t.Errorf("%s: missing description", tool.Name)
		}
		for _, req := range tool.InputSchema.Required {
			if _, ok := tool.InputSchema.Properties[req]; !ok {
				t.Errorf("%s: required %q is not a property", tool.Name, req)
			}
		}
	}
}

// Every catalog schema must describe parameters the host accepts: a fully
// populated argument set compiled from strings parses as the host command.
func TestCatalogArgsParseOnHost(t *testing.T) {
	for _, tool := range Catalog() {
		raw := map[string]any{}
		for key, prop := range tool.InputSchema.Properties {
			switch prop.(map[string]any)["type"] {
			case "integer":
				raw[key] = "7"
			case "number":
				raw[key] = "12.5"
			case "string":
				raw[key] = "2FL"
			}
		}
		args, err := CompileArgs(tool, raw)
		if err != nil {
			t.Fatalf("%s: CompileArgs() error = %v", tool.Name, err)
		}
		params, err := json.Marshal(args)
		if err != nil {
			t.Fatalf("%s: marshal: %v", tool.Name, err)
		}
		if _, err := host.ParseCommand(tool.Name, params); err != nil {
			t.Fatalf("%s: ParseCommand(%s) error = %v", tool.Name, params, err)
		}
	}
}

func TestLookup(t *testing.T) {
	tool, ok := Lookup(" Query_Walls_By_Location ")
	if !ok || tool.Name != "query_walls_by_location" {
		t.Fatalf("Lookup() = %q, %v", tool.Name, ok)
	}
	if _, ok := Lookup(CorridorToolName); !ok {
		t.Fatal("composite tool not found")
	}
	if _, ok := Lookup("create_floor"); ok {
		t.Fatal("Lookup(create_floor) succeeded")
	}
	if got := len(Names()); got != 13 {
		t.Fatalf("len(Names()) = %d, want 13", got)
	}
}

func TestCompileArgsCoercesStrings(t *testing.T) {
	tool, _ := Lookup(CorridorToolName)
	args, err := CompileArgs(tool, map[string]any{
		"x":                    "1727",
		"y":                    16300.0,
		"viewId":               "101",
		"no-includeCenterline": true,
	})
	if err != nil {
		t.Fatalf("CompileArgs() error = %v", err)
	}
	if args["x"] != 1727.0 {
		t.Fatalf("x = %#v, want 1727.0", args["x"])
	}
	if args["viewId"] != int64(101) {
		t.Fatalf("viewId = %#v, want int64(101)", args["viewId"])
	}
	if args["includeCenterline"] != false {
		t.Fatalf("includeCenterline = %#v, want false", args["includeCenterline"])
	}
	if _, ok := args["no-includeCenterline"]; ok {
		t.Fatal("negated alias was not rewritten")
	}
}

func TestCompileArgsRejects(t *testing.T) {
	tool, _ := Lookup("get_wall_info")
	corridor := CorridorTool()

	tests := []struct {
		name string
		tool mcp.Tool
		raw  map[string]any
		want string
	}{
		{"missing", tool, map[string]any{}, `missing required argument "wallId"`},
		{"unknown", tool, map[string]any{"wallId": 1, "wall": 2}, `unknown argument "wall"`},
		{"fraction", tool, map[string]any{"wallId": 1.5}, "must be integer"},
		{"text", tool, map[string]any{"wallId": "eleven"}, "must be integer"},
		{"nan", corridor, map[string]any{"x": "NaN", "y": 0}, "finite"},
		{"conflict", corridor, map[string]any{"x": 0, "y": 0, "includeCenterline": true, "no-includeCenterline": true}, "conflicting"},
		{"bool", corridor, map[string]any{"x": 0, "y": 0, "includeCenterline": "maybe"}, "must be boolean"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompileArgs(tt.tool, tt.raw)
			if err == nil {
				t.Fatal("CompileArgs() error = nil")
			}
			if !errors.Is(err, mcp.ErrInvalidParams) {
				t.Fatalf("error %v does not wrap ErrInvalidParams", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error = %q, want %q", err, tt.want)
			}
		})
	}
}
