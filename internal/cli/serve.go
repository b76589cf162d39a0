package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lydakis/hostbridge/internal/bridge"
)

func (a *app) serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve host tools to an MCP client over stdio",
		Long: `Serve every host command, plus the corridor workflow, as MCP tools on
stdin/stdout. The host connection is kept up in the background: calls made
while it is down fail at once and the bridge keeps reconnecting.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runServe(cmd.Context())
		},
	}
}

func (a *app) runServe(ctx context.Context) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	log, err := a.logger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint: errcheck

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := newChannel(cfg, log)
	ch.Start()
	defer ch.Close() //nolint: errcheck

	b := bridge.New(ch, bridgeOptions(cfg, log, false))
	stdio := server.NewStdioServer(b.NewServer("hostbridge", buildVersion))
	stdio.SetErrorLogger(zap.NewStdLog(log))

	log.Info("serving MCP on stdio", zap.String("host", cfg.Host.URL()), zap.String("version", buildVersion))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// stdin closing ends the session.
		defer cancel()
		return stdio.Listen(gctx, a.stdin, a.stdout)
	})
	g.Go(func() error {
		if err := ch.WaitConnected(gctx); err == nil {
			log.Info("connected to host", zap.String("url", cfg.Host.URL()))
		}
		return nil
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
