package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/lydakis/hostbridge/internal/response"
	"github.com/lydakis/hostbridge/internal/tools"
)

func (a *app) corridorCommand() *cobra.Command {
	var (
		x, y, radius, netOffset, centerlineOffset float64
		room, level                               string
		viewID                                    int64
		noCenterline, noCache, quiet              bool
	)

	cmd := &cobra.Command{
		Use:   "corridor (--x X --y Y | --room NAME) [flags]",
		Short: "Dimension a corridor's net width",
		Long: `Find the two walls facing each other across a corridor and dimension the
clear width between their surfaces. A centerline reference dimension is
added at a second offset unless --no-centerline is given.

Without --view the dimensions go into the host's active view, and the wall
search is limited to that view's level.`,
		Example: `  hostbridge corridor --x 1727 --y 16300
  hostbridge corridor --room Corridor --net-offset 800 --no-centerline`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			args := corridorArgs(cmd.Flags(), map[string]any{
				"x":                x,
				"y":                y,
				"room":             room,
				"viewId":           viewID,
				"level":            level,
				"searchRadius":     radius,
				"netOffset":        netOffset,
				"centerlineOffset": centerlineOffset,
			})
			if noCenterline {
				args["includeCenterline"] = false
			}

			code, err := a.invoke(cmd.Context(), tools.CorridorToolName, args, noCache, quiet)
			if err != nil {
				return err
			}
			if code != response.ExitOK {
				return &exitError{code: code}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.Float64Var(&x, "x", 0, "point inside the corridor, X in mm")
	f.Float64Var(&y, "y", 0, "point inside the corridor, Y in mm")
	f.StringVar(&room, "room", "", "use the center of this room instead of --x/--y")
	f.Int64Var(&viewID, "view", 0, "view id for the dimensions (default: active view)")
	f.StringVar(&level, "level", "", "level name filter for the wall search (default: the view's level)")
	f.Float64Var(&radius, "radius", 0, "wall search radius in mm (default from config)")
	f.Float64Var(&netOffset, "net-offset", 0, "net-width dimension line offset in mm (default from config)")
	f.Float64Var(&centerlineOffset, "centerline-offset", 0, "centerline dimension line offset in mm (default from config)")
	f.BoolVar(&noCenterline, "no-centerline", false, "skip the centerline reference dimension")
	f.BoolVar(&noCache, "no-cache", false, "do not read or store cached host responses")
	f.BoolVarP(&quiet, "quiet", "q", false, "suppress tool error output")
	return cmd
}

// corridorArgs keeps only the values whose flags were set, so unset flags
// fall back to the configured workflow defaults.
func corridorArgs(flags *pflag.FlagSet, values map[string]any) map[string]any {
	flagFor := map[string]string{
		"viewId":           "view",
		"searchRadius":     "radius",
		"netOffset":        "net-offset",
		"centerlineOffset": "centerline-offset",
	}
	args := make(map[string]any, len(values))
	for key, value := range values {
		name, ok := flagFor[key]
		if !ok {
			name = key
		}
		if flags.Changed(name) {
			args[key] = value
		}
	}
	return args
}
