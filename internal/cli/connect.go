package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/lydakis/hostbridge/internal/bridge"
	"github.com/lydakis/hostbridge/internal/cache"
	"github.com/lydakis/hostbridge/internal/channel"
	"github.com/lydakis/hostbridge/internal/config"
	"github.com/lydakis/hostbridge/internal/httpheaders"
	"github.com/lydakis/hostbridge/internal/workflow"
)

func newChannel(cfg *config.Config, log *zap.Logger) *channel.Channel {
	dialer := channel.WebSocketDialer{
		URL:              cfg.Host.URL(),
		HandshakeTimeout: cfg.Channel.Connect(),
		Header:           httpheaders.Handshake(buildVersion, cfg.Host.Headers),
	}
	return channel.New(dialer, channel.Options{
		ReconnectInterval:       cfg.Channel.Reconnect(),
		DefaultTimeout:          cfg.Channel.Timeout(),
		CommandTimeouts:         cfg.Channel.Timeouts(),
		FailPendingOnDisconnect: cfg.Channel.FailPendingOnDisconnect,
		Logger:                  log,
	})
}

// connect starts a channel and waits for the first connection. One-shot
// commands use it; serve keeps reconnecting in the background instead.
func connect(ctx context.Context, cfg *config.Config, log *zap.Logger) (*channel.Channel, error) {
	ch := newChannel(cfg, log)
	ch.Start()

	waitCtx, cancel := context.WithTimeout(ctx, cfg.Channel.Connect())
	defer cancel()
	if err := ch.WaitConnected(waitCtx); err != nil {
		ch.Close() //nolint: errcheck
		return nil, fmt.Errorf("%w: %s: %w", channel.ErrConnection, cfg.Host.URL(), err)
	}
	return ch, nil
}

func bridgeOptions(cfg *config.Config, log *zap.Logger, noCache bool) bridge.Options {
	opts := bridge.Options{
		CacheConfig: cfg.Cache,
		Workflow: workflow.Defaults{
			SearchRadius:     cfg.Workflow.SearchRadius,
			NetOffset:        cfg.Workflow.NetOffset,
			CenterlineOffset: cfg.Workflow.CenterlineOffset,
		},
		Logger: log,
	}
	if cfg.Cache.Enabled {
		// With --no-cache nothing is read or stored, but mutations still
		// purge what earlier calls cached.
		opts.Cache = cache.Default()
		opts.CacheConfig.Enabled = !noCache
	}
	return opts
}
