package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lydakis/hostbridge/internal/bridge"
	"github.com/lydakis/hostbridge/internal/response"
	"github.com/lydakis/hostbridge/internal/tools"
)

func (a *app) callCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "call <tool> [--key value ... | JSON]",
		Short: "Call one tool against the host",
		Long: `Call one tool against the host and print its result.

Arguments come from --key value flags, a single JSON object, or a JSON
object on stdin. Run "hostbridge call <tool> --help" for a tool's flags.`,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || args[0] == "-h" || args[0] == "--help" {
				return cmd.Help()
			}
			return a.runCall(cmd.Context(), args[0], args[1:])
		},
	}
}

func (a *app) runCall(ctx context.Context, name string, rawArgs []string) error {
	tool, ok := tools.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: unknown tool %q (see hostbridge tools)", response.ErrUsage, name)
	}

	parsed, err := parseToolCallArgs(rawArgs, a.stdin, a.stdinTTY)
	if err != nil {
		return fmt.Errorf("%w: %v", response.ErrUsage, err)
	}
	if parsed.help {
		printToolHelp(a.stdout, tool)
		return nil
	}

	if parsed.verbose {
		a.logLevel = "debug"
	}
	if parsed.quiet {
		a.logLevel = "error"
	}
	code, err := a.invoke(ctx, tool.Name, parsed.toolArgs, parsed.noCache, parsed.quiet)
	if err != nil {
		if parsed.quiet {
			return &exitError{code: response.ExitCode(err)}
		}
		return err
	}
	if code != response.ExitOK {
		return &exitError{code: code}
	}
	return nil
}

// invoke connects, runs one tool through the bridge and writes its output.
// Successful output goes to stdout; a tool error goes to stderr unless
// quiet.
func (a *app) invoke(ctx context.Context, name string, args map[string]any, noCache, quiet bool) (int, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return 0, err
	}
	log, err := a.logger(cfg)
	if err != nil {
		return 0, err
	}
	defer log.Sync() //nolint: errcheck

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ch, err := connect(ctx, cfg, log)
	if err != nil {
		return 0, err
	}
	defer ch.Close() //nolint: errcheck

	b := bridge.New(ch, bridgeOptions(cfg, log, noCache))
	res, err := b.Call(ctx, name, args)
	if err != nil {
		return 0, err
	}

	out, code := response.Unwrap(res)
	log.Debug("tool finished", zap.String("tool", name), zap.Int("exit_code", code))
	switch {
	case code == response.ExitOK:
		a.stdout.Write(out) //nolint: errcheck
	case !quiet:
		a.stderr.Write(out) //nolint: errcheck
	}
	return code, nil
}
