package channel

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// run is the connection loop: dial, read until the connection fails, wait
// the reconnect interval, repeat. It returns only when the channel closes.
func (c *Channel) run() {
	retry := time.NewTimer(0)
	defer retry.Stop()
	<-retry.C

	for {
		if c.ctx.Err() != nil {
			return
		}

		c.setState(Connecting)
		conn, err := c.dialer.Dial(c.ctx)
		if err != nil {
			c.setState(Disconnected)
			if c.ctx.Err() != nil {
				return
			}
			c.log.Warn("connect failed",
				zap.Error(err),
				zap.Duration("retry_in", c.opts.ReconnectInterval))
		} else {
			c.serve(conn)
		}

		retry.Reset(c.opts.ReconnectInterval)
		select {
		case <-c.ctx.Done():
			return
		case <-retry.C:
		}
	}
}

// serve owns conn until it fails, dispatching every inbound message.
func (c *Channel) serve(conn Conn) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		conn.Close() //nolint: errcheck
		return
	}
	c.conn = conn
	c.state = Connected
	close(c.up)
	c.mu.Unlock()

	c.log.Info("connected to host")

	stop := context.AfterFunc(c.ctx, func() { conn.Close() }) //nolint: errcheck
	defer stop()

	var readErr error
	for {
		data, err := conn.ReadMessage()
		if err != nil {
			readErr = err
			break
		}
		c.deliver(data)
	}
	conn.Close() //nolint: errcheck

	c.mu.Lock()
	c.conn = nil
	c.state = Disconnected
	c.up = make(chan struct{})
	var orphans []*pending
	if c.opts.FailPendingOnDisconnect {
		orphans = c.drainLocked()
	}
	waiting := len(c.pending)
	c.mu.Unlock()

	for _, p := range orphans {
		p.done <- result{err: ErrDisconnected}
	}

	if c.ctx.Err() == nil {
		c.log.Warn("host connection lost",
			zap.Error(readErr),
			zap.Int("failed_pending", len(orphans)),
			zap.Int("awaiting_timeout", waiting),
			zap.Duration("retry_in", c.opts.ReconnectInterval))
	}
}

func (c *Channel) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}
