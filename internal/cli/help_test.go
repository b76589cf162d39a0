package cli

import (
	"bytes"
	"testing"

	"github.com/lydakis/hostbridge/internal/tools"
)

func lookupTool(t *testing.T, name string) []byte {
	t.Helper()
	tool, ok := tools.Lookup(name)
	if !ok {
		t.Fatalf("Lookup(%q) failed", name)
	}
	var out bytes.Buffer
	printToolHelp(&out, tool)
	return out.Bytes()
}

func TestPrintToolHelpIncludesOptionSemanticsAndExamples(t *testing.T) {
	out := lookupTool(t, "get_wall_info")

	for _, want := range []string{
		"Usage: hostbridge call get_wall_info [FLAGS]",
		"--wallId <integer> (required)",
		"Wall element id",
		"Examples:",
		"hostbridge call get_wall_info --wallId=101",
		`hostbridge call get_wall_info '{"wallId":101}'`,
	} {
		if !bytes.Contains(out, []byte(want)) {
			t.Fatalf("help missing %q, got: %q", want, out)
		}
	}
}

func TestPrintToolHelpListsRequiredFirst(t *testing.T) {
	out := lookupTool(t, "query_walls_by_location")

	x := bytes.Index(out, []byte("--x <number> (required)"))
	level := bytes.Index(out, []byte("--level <string> (optional)"))
	if x < 0 || level < 0 {
		t.Fatalf("expected x and level options, got: %q", out)
	}
	if x > level {
		t.Fatalf("required --x listed after optional --level: %q", out)
	}
	if !bytes.Contains(out, []byte("hostbridge call query_walls_by_location --x=1500 --y=1500")) {
		t.Fatalf("expected flag example with both required args, got: %q", out)
	}
}

func TestPrintToolHelpShowsNegatedBooleans(t *testing.T) {
	out := lookupTool(t, tools.CorridorToolName)

	if !bytes.Contains(out, []byte("--includeCenterline <boolean> (optional)")) {
		t.Fatalf("expected boolean option, got: %q", out)
	}
	if !bytes.Contains(out, []byte("--no-includeCenterline <boolean> (optional)")) {
		t.Fatalf("expected negated boolean option, got: %q", out)
	}
}

func TestPrintToolHelpShowsGlobalFlagsAndCollisionNamespace(t *testing.T) {
	out := lookupTool(t, "get_all_levels")

	for _, want := range []string{
		"(none)",
		"--no-cache",
		"--verbose, -v",
		"--quiet, -q",
		"--tool-",
		"Use -- to force all following flags to tool parameters.",
		"hostbridge call get_all_levels '{}'",
	} {
		if !bytes.Contains(out, []byte(want)) {
			t.Fatalf("help missing %q, got: %q", want, out)
		}
	}
}
