package host

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ErrExecutorStopped is returned by Submit once Run has returned.
var ErrExecutorStopped = errors.New("executor stopped")

const executorQueue = 64

type job struct {
	cmd   Command
	reply chan jobResult
}

type jobResult struct {
	value any
	err   error
}

// Executor applies commands to a Document one at a time on its own
// goroutine. Submissions made while a command runs are queued in order.
type Executor struct {
	doc     Document
	log     *zap.Logger
	jobs    chan job
	stopped chan struct{}
}

// NewExecutor returns an executor owning doc. Nothing else may touch doc
// once Run starts.
func NewExecutor(doc Document, log *zap.Logger) *Executor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Executor{
		doc:     doc,
		log:     log.With(zap.String("component", "executor")),
		jobs:    make(chan job, executorQueue),
		stopped: make(chan struct{}),
	}
}

// Run executes queued commands until ctx is done.
func (e *Executor) Run(ctx context.Context) error {
	defer close(e.stopped)
	for {
		select {
		case <-ctx.Done():
			return nil
		case j := <-e.jobs:
			j.reply <- e.execute(j.cmd)
		}
	}
}

// Submit queues cmd and waits for its result. If ctx ends first the command
// still runs; only the caller stops waiting.
func (e *Executor) Submit(ctx context.Context, cmd Command) (any, error) {
	j := job{cmd: cmd, reply: make(chan jobResult, 1)}

	select {
	case e.jobs <- j:
	case <-e.stopped:
		return nil, ErrExecutorStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case r := <-j.reply:
		return r.value, r.err
	case <-e.stopped:
		// Run may have answered just before stopping.
		select {
		case r := <-j.reply:
			return r.value, r.err
		default:
			return nil, ErrExecutorStopped
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (e *Executor) execute(cmd Command) (res jobResult) {
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			e.log.Error("command panicked", zap.String("command", cmd.Name()), zap.Any("panic", p))
			res = jobResult{err: fmt.Errorf("%s: internal error: %v", cmd.Name(), p)}
		}
	}()

	value, err := cmd.execute(e.doc)
	if err != nil {
		e.log.Info("command failed",
			zap.String("command", cmd.Name()),
			zap.Error(err),
			zap.Duration("elapsed", time.Since(start)))
		return jobResult{err: err}
	}
	e.log.Debug("command executed",
		zap.String("command", cmd.Name()),
		zap.Duration("elapsed", time.Since(start)))
	return jobResult{value: value}
}
