package host

import (
	"context"

	"go.uber.org/zap"

	"github.com/lydakis/hostbridge/internal/wire"
)

// Dispatcher turns raw command envelopes into response envelopes. It is the
// only place host commands are decoded, validated and routed.
type Dispatcher struct {
	exec *Executor
	log  *zap.Logger
}

// NewDispatcher routes commands to exec.
func NewDispatcher(exec *Executor, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{exec: exec, log: log.With(zap.String("component", "dispatcher"))}
}

// Handle processes one command envelope and returns the encoded response.
// Every failure, including malformed input, becomes a response with
// Success false so the caller is never left waiting.
func (d *Dispatcher) Handle(ctx context.Context, data []byte) []byte {
	return d.encode(d.dispatch(ctx, data))
}

func (d *Dispatcher) dispatch(ctx context.Context, data []byte) wire.Response {
	req, err := wire.DecodeRequest(data)
	if err != nil {
		d.log.Warn("rejecting malformed command", zap.Error(err))
		return wire.Failure(req.ID, err)
	}

	cmd, err := ParseCommand(req.Command, req.Params)
	if err != nil {
		return wire.Failure(req.ID, err)
	}

	value, err := d.exec.Submit(ctx, cmd)
	if err != nil {
		return wire.Failure(req.ID, err)
	}

	resp, err := wire.Success(req.ID, value)
	if err != nil {
		return wire.Failure(req.ID, err)
	}
	return resp
}

func (d *Dispatcher) encode(resp wire.Response) []byte {
	out, err := wire.EncodeResponse(resp)
	if err != nil {
		d.log.Error("encoding response", zap.String("request_id", resp.ID), zap.Error(err))
		out, _ = wire.EncodeResponse(wire.Failure(resp.ID, err))
	}
	return out
}
