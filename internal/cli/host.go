package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lydakis/hostbridge/internal/host"
	"github.com/lydakis/hostbridge/internal/paths"
	"github.com/lydakis/hostbridge/internal/response"
)

func (a *app) hostCommand() *cobra.Command {
	var planPath, listen string
	cmd := &cobra.Command{
		Use:   "host",
		Short: "Run the reference host over a TOML plan",
		Long: `Run a reference design host that answers the bridge's commands from an
in-memory model loaded from a TOML plan. Commands run one at a time on a
single executor, the way a desktop host runs them on its UI thread.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runHost(cmd.Context(), planPath, listen)
		},
	}
	cmd.Flags().StringVar(&planPath, "plan", "", "plan file (default: host.plan from config, then "+paths.PlanFile()+")")
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default: host address and port from config)")
	return cmd
}

func (a *app) runHost(ctx context.Context, planPath, listen string) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	log, err := a.logger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint: errcheck

	if planPath == "" {
		planPath = cfg.Host.Plan
	}
	if planPath == "" {
		planPath = paths.PlanFile()
	}
	if listen == "" {
		listen = cfg.Host.ListenAddr()
	}

	doc, err := host.LoadPlan(planPath)
	if err != nil {
		return &exitError{code: response.ExitUsageErr, err: err}
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	exec := host.NewExecutor(doc, log)
	srv := host.NewServer(listen, cfg.Host.Path, host.NewDispatcher(exec, log).Handle, log)
	if err := srv.Start(); err != nil {
		return err
	}
	log.Info("reference host ready", zap.String("plan", planPath), zap.String("addr", srv.Addr()))

	execCtx, stopExec := context.WithCancel(context.Background())
	var g errgroup.Group
	g.Go(func() error { return exec.Run(execCtx) })
	g.Go(func() error {
		<-ctx.Done()
		// Connections close before the executor so no handler is left
		// waiting on a stopped queue.
		srv.Stop()
		stopExec()
		return nil
	})
	return g.Wait()
}
