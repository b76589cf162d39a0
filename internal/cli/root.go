// Package cli implements the hostbridge command line.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lydakis/hostbridge/internal/config"
	"github.com/lydakis/hostbridge/internal/logging"
	"github.com/lydakis/hostbridge/internal/paths"
	"github.com/lydakis/hostbridge/internal/response"
)

// exitError carries an exit code out of a command. A nil err means the
// command already reported the failure.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

type app struct {
	stdin    io.Reader
	stdinTTY bool
	stdout   io.Writer
	stderr   io.Writer

	configPath string
	logLevel   string
}

// Run is the main CLI entry point. Returns an exit code.
func Run(args []string) int {
	return run(args, os.Stdin, stdinIsTTY(os.Stdin), os.Stdout, os.Stderr)
}

func run(args []string, stdin io.Reader, tty bool, stdout, stderr io.Writer) int {
	a := &app{stdin: stdin, stdinTTY: tty, stdout: stdout, stderr: stderr}
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err == nil {
		return response.ExitOK
	}

	var exit *exitError
	if errors.As(err, &exit) {
		if exit.err != nil {
			fmt.Fprintf(stderr, "hostbridge: %v\n", exit.err)
		}
		return exit.code
	}
	fmt.Fprintf(stderr, "hostbridge: %v\n", err)
	return response.ExitCode(err)
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "hostbridge",
		Short: "Bridge MCP clients to a building-model host",
		Long: `hostbridge talks to a building-model host over a WebSocket command channel.

It serves the host's commands as MCP tools on stdio, calls them from the
shell, and dimensions corridors between facing wall surfaces. "hostbridge
host" runs a reference host backed by a TOML plan for local use.`,
		Version:          buildVersion,
		SilenceErrors:    true,
		SilenceUsage:     true,
		TraverseChildren: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("%w: unknown command %q", response.ErrUsage, args[0])
			}
			return cmd.Help()
		},
	}
	root.SetVersionTemplate("hostbridge {{.Version}}\n")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", response.ErrUsage, err)
	})

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default "+config.ExampleConfigPath()+")")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")

	root.AddCommand(
		a.initCommand(),
		a.toolsCommand(),
		a.callCommand(),
		a.corridorCommand(),
		a.serveCommand(),
		a.hostCommand(),
	)
	return root
}

// usageArgs marks argument count errors as usage errors.
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return fmt.Errorf("%w: %v", response.ErrUsage, err)
		}
		return nil
	}
}

func (a *app) configFile() string {
	if a.configPath != "" {
		return a.configPath
	}
	return paths.ConfigFile()
}

// loadConfig reads and validates the config file. A missing file yields
// the defaults.
func (a *app) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFrom(a.configFile())
	if err != nil {
		return nil, &exitError{code: response.ExitUsageErr, err: err}
	}
	if err := config.Validate(cfg); err != nil {
		return nil, &exitError{code: response.ExitUsageErr, err: fmt.Errorf("invalid config: %w", err)}
	}
	return cfg, nil
}

// logger builds the stderr logger. The --log-level flag wins over the
// config file.
func (a *app) logger(cfg *config.Config) (*zap.Logger, error) {
	level := cfg.Log.Level
	if a.logLevel != "" {
		level = a.logLevel
	}
	log, err := logging.New(a.stderr, level)
	if err != nil {
		return nil, &exitError{code: response.ExitUsageErr, err: err}
	}
	return log, nil
}

func (a *app) initCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := a.configFile()
			if err := config.Init(path); err != nil {
				if errors.Is(err, config.ErrExists) {
					return &exitError{code: response.ExitUsageErr, err: err}
				}
				return err
			}
			fmt.Fprintf(a.stdout, "wrote %s\n", path)
			return nil
		},
	}
}
