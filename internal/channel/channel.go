// Package channel correlates commands sent to the host with their responses.
//
// A Channel owns one duplex connection and the table of requests waiting for
// a reply. Each Send gets its own request id and timer; replies are matched
// purely on that id, in whatever order they arrive. The connection is
// re-established forever at a fixed interval until Close.
package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lydakis/hostbridge/internal/wire"
)

const (
	defaultReconnectInterval = 5 * time.Second
	defaultCommandTimeout    = 30 * time.Second
)

// State is the connection lifecycle state.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Options tunes a Channel. Zero values select the defaults.
type Options struct {
	ReconnectInterval time.Duration
	DefaultTimeout    time.Duration
	// CommandTimeouts overrides DefaultTimeout per command name
	// (case-insensitive).
	CommandTimeouts map[string]time.Duration
	// FailPendingOnDisconnect rejects every waiting request with
	// ErrDisconnected when the connection drops. When false they wait out
	// their own timeouts.
	FailPendingOnDisconnect bool
	Logger                  *zap.Logger
	NewRequestID            func() string
}

type result struct {
	resp wire.Response
	err  error
}

type pending struct {
	id        string
	command   string
	createdAt time.Time
	timeout   time.Duration
	done      chan result // buffered; written exactly once by whoever takes the entry
	timer     *time.Timer
}

// Channel is a request/response layer over a reconnecting connection.
type Channel struct {
	dialer Dialer
	opts   Options
	log    *zap.Logger

	mu      sync.Mutex
	state   State
	conn    Conn
	pending map[string]*pending
	up      chan struct{} // closed while connected
	started bool
	closed  bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Channel. Call Start to begin connecting.
func New(dialer Dialer, opts Options) *Channel {
	if opts.ReconnectInterval <= 0 {
		opts.ReconnectInterval = defaultReconnectInterval
	}
	if opts.DefaultTimeout <= 0 {
		opts.DefaultTimeout = defaultCommandTimeout
	}
	if opts.NewRequestID == nil {
		opts.NewRequestID = NewRequestID
	}
	timeouts := make(map[string]time.Duration, len(opts.CommandTimeouts))
	for name, d := range opts.CommandTimeouts {
		timeouts[strings.ToLower(name)] = d
	}
	opts.CommandTimeouts = timeouts

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Channel{
		dialer:  dialer,
		opts:    opts,
		log:     log.With(zap.String("component", "channel")),
		pending: make(map[string]*pending),
		up:      make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// NewRequestID returns "req_<unix-millis>_<random>".
func NewRequestID() string {
	return fmt.Sprintf("req_%d_%s", time.Now().UnixMilli(), strings.ReplaceAll(uuid.NewString(), "-", ""))
}

// Start launches the connect/reconnect loop. Calling it twice is a no-op.
func (c *Channel) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started || c.closed {
		return
	}
	c.started = true

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.run()
	}()
}

// Close stops reconnecting, closes the connection and fails every waiting
// request with ErrClosed.
func (c *Channel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	conn := c.conn
	orphans := c.drainLocked()
	c.mu.Unlock()

	c.cancel()
	if conn != nil {
		conn.Close() //nolint: errcheck
	}
	c.wg.Wait()

	for _, p := range orphans {
		p.done <- result{err: ErrClosed}
	}
	return nil
}

// State reports the current connection state.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Pending returns the number of requests waiting for a response.
func (c *Channel) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// WaitConnected blocks until the channel is connected, ctx ends, or the
// channel is closed.
func (c *Channel) WaitConnected(ctx context.Context) error {
	for {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return ErrClosed
		}
		if c.state == Connected {
			c.mu.Unlock()
			return nil
		}
		up := c.up
		c.mu.Unlock()

		select {
		case <-up:
		case <-ctx.Done():
			return ctx.Err()
		case <-c.ctx.Done():
			return ErrClosed
		}
	}
}

// Send issues command with params and waits for the matching response.
//
// It fails fast with ErrNotConnected while disconnected. A reply with
// Success false yields a *HostError carrying the host's message. When no
// reply arrives within the command's timeout the call fails with ErrTimeout;
// the host is not told, and may still carry out the command. Canceling ctx
// abandons the request the same way.
func (c *Channel) Send(ctx context.Context, command string, params any) (wire.Response, error) {
	raw, err := marshalParams(params)
	if err != nil {
		return wire.Response{}, fmt.Errorf("encoding %s parameters: %w", command, err)
	}

	id := c.opts.NewRequestID()
	data, err := wire.EncodeRequest(wire.Request{ID: id, Command: command, Params: raw})
	if err != nil {
		return wire.Response{}, fmt.Errorf("encoding %s: %w", command, err)
	}

	p := &pending{
		id:        id,
		command:   command,
		createdAt: time.Now(),
		timeout:   c.timeoutFor(command),
		done:      make(chan result, 1),
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return wire.Response{}, ErrClosed
	}
	conn := c.conn
	if c.state != Connected || conn == nil {
		c.mu.Unlock()
		return wire.Response{}, ErrNotConnected
	}
	if _, dup := c.pending[id]; dup {
		c.mu.Unlock()
		return wire.Response{}, fmt.Errorf("duplicate request id %q", id)
	}
	c.pending[id] = p
	p.timer = time.AfterFunc(p.timeout, func() { c.expire(id) })
	c.mu.Unlock()

	c.log.Debug("sending command", zap.String("command", command), zap.String("request_id", id))

	if err := conn.WriteMessage(data); err != nil {
		if c.take(id) != nil {
			p.timer.Stop()
		}
		return wire.Response{}, fmt.Errorf("%w: sending %s: %v", ErrConnection, command, err)
	}

	select {
	case r := <-p.done:
		return r.resp, r.err
	case <-ctx.Done():
		if c.take(id) != nil {
			p.timer.Stop()
			return wire.Response{}, ctx.Err()
		}
		// Someone else already owns the entry and is about to complete it.
		r := <-p.done
		return r.resp, r.err
	}
}

// take removes and returns the pending entry for id. Of the receive path,
// the timer and the caller, only the first to take an entry completes it.
func (c *Channel) take(id string) *pending {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pending[id]
	if !ok {
		return nil
	}
	delete(c.pending, id)
	return p
}

func (c *Channel) drainLocked() []*pending {
	out := make([]*pending, 0, len(c.pending))
	for id, p := range c.pending {
		delete(c.pending, id)
		if p.timer != nil {
			p.timer.Stop()
		}
		out = append(out, p)
	}
	return out
}

func (c *Channel) expire(id string) {
	p := c.take(id)
	if p == nil {
		return
	}
	c.log.Warn("command timed out",
		zap.String("command", p.command),
		zap.String("request_id", id),
		zap.Duration("timeout", p.timeout))
	p.done <- result{err: fmt.Errorf("%w (%s after %s)", ErrTimeout, p.command, p.timeout)}
}

func (c *Channel) deliver(data []byte) {
	resp, err := wire.DecodeResponse(data)
	if err != nil {
		c.log.Warn("discarding undecodable message", zap.Error(err))
		return
	}

	p := c.take(resp.ID)
	if p == nil {
		c.log.Debug("dropping response without pending request", zap.String("request_id", resp.ID))
		return
	}
	p.timer.Stop()

	c.log.Debug("received response",
		zap.String("command", p.command),
		zap.String("request_id", p.id),
		zap.Bool("success", resp.Success),
		zap.Duration("elapsed", time.Since(p.createdAt)))

	if !resp.Success {
		p.done <- result{resp: resp, err: &HostError{Command: p.command, Message: resp.Error}}
		return
	}
	p.done <- result{resp: resp}
}

func (c *Channel) timeoutFor(command string) time.Duration {
	if d, ok := c.opts.CommandTimeouts[strings.ToLower(command)]; ok && d > 0 {
		return d
	}
	return c.opts.DefaultTimeout
}

func marshalParams(params any) (json.RawMessage, error) {
	switch v := params.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return v, nil
	case []byte:
		return json.RawMessage(v), nil
	default:
		return json.Marshal(v)
	}
}
