package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
)

type flagLine struct {
	Name        string
	Type        string
	Description string
	Required    bool
}

// inputFlagLines lists a tool's parameters, required ones first, each group
// sorted by name.
func inputFlagLines(tool mcp.Tool) []flagLine {
	required := make(map[string]bool, len(tool.InputSchema.Required))
	for _, name := range tool.InputSchema.Required {
		required[name] = true
	}

	lines := make([]flagLine, 0, len(tool.InputSchema.Properties))
	for name, raw := range tool.InputSchema.Properties {
		line := flagLine{Name: name, Type: "any", Required: required[name]}
		if prop, ok := raw.(map[string]any); ok {
			if t, ok := prop["type"].(string); ok {
				line.Type = t
			}
			line.Description, _ = prop["description"].(string)
		}
		lines = append(lines, line)
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].Required != lines[j].Required {
			return lines[i].Required
		}
		return lines[i].Name < lines[j].Name
	})
	return lines
}

func printToolHelp(w io.Writer, tool mcp.Tool) {
	fmt.Fprintf(w, "Usage: hostbridge call %s [FLAGS]\n", tool.Name)
	if tool.Description != "" {
		fmt.Fprintf(w, "\nDescription:\n  %s\n", tool.Description)
	}

	fmt.Fprintln(w, "\nOptions:")
	fmt.Fprintln(w, "  Tool flags:")
	printToolInputFlags(w, tool)
	fmt.Fprintln(w, "\n  Global flags:")
	printGlobalFlags(w)
	fmt.Fprintln(w, "\n  Namespace:")
	fmt.Fprintln(w, "    Prefix colliding tool params with --tool- (for example: --tool-verbose).")
	fmt.Fprintln(w, "    Use -- to force all following flags to tool parameters.")
	fmt.Fprintln(w, "\n  Type to flag forms:")
	fmt.Fprintln(w, "    string/number/integer: --key=value or --key value")
	fmt.Fprintln(w, "    boolean: --flag / --no-flag")

	fmt.Fprintln(w, "\nOutput contract:")
	fmt.Fprintln(w, "  - structured results are emitted as JSON on stdout.")
	fmt.Fprintln(w, "  - host and geometry failures go to stderr with exit code 1.")
	fmt.Fprintln(w, "  - bad arguments exit 2; an unreachable host exits 3.")

	fmt.Fprintln(w, "\nExamples:")
	for _, ex := range toolExamples(tool) {
		fmt.Fprintf(w, "  %s\n", ex)
	}
}

func printToolInputFlags(w io.Writer, tool mcp.Tool) {
	lines := inputFlagLines(tool)
	if len(lines) == 0 {
		fmt.Fprintln(w, "    (none)")
		return
	}

	for _, line := range lines {
		semantics := " (optional)"
		if line.Required {
			semantics = " (required)"
		}
		fmt.Fprintf(w, "    --%s <%s>%s\n", line.Name, line.Type, semantics)
		if line.Description != "" {
			fmt.Fprintf(w, "      %s\n", line.Description)
		}
		if line.Type == "boolean" {
			fmt.Fprintf(w, "    --no-%s <%s>%s\n", line.Name, line.Type, semantics)
		}
	}
}

func printGlobalFlags(w io.Writer) {
	fmt.Fprintln(w, "    --no-cache           Bypass the response cache for this call.")
	fmt.Fprintln(w, "    --verbose, -v        Log debug diagnostics to stderr.")
	fmt.Fprintln(w, "    --quiet, -q          Suppress stderr output.")
	fmt.Fprintln(w, "    --help, -h           Show this help output.")
}

// toolExamples builds a flag example from the required parameters and a
// JSON example from the same values.
func toolExamples(tool mcp.Tool) []string {
	flagForm := "hostbridge call " + tool.Name
	jsonForm := "hostbridge call " + tool.Name + " '{"
	first := true
	for _, line := range inputFlagLines(tool) {
		if !line.Required {
			continue
		}
		value := exampleValue(line.Type)
		flagForm += fmt.Sprintf(" --%s=%s", line.Name, value)
		if !first {
			jsonForm += ","
		}
		if line.Type == "string" {
			value = fmt.Sprintf("%q", value)
		}
		jsonForm += fmt.Sprintf("%q:%s", line.Name, value)
		first = false
	}
	jsonForm += "}'"
	return []string{flagForm, jsonForm}
}

func exampleValue(typ string) string {
	switch typ {
	case "integer":
		return "101"
	case "number":
		return "1500"
	case "boolean":
		return "true"
	default:
		return "value"
	}
}
