package channel

import (
	"errors"
	"fmt"
)

var (
	// ErrConnection is the root of every transport failure.
	ErrConnection = errors.New("host connection error")
	// ErrNotConnected is returned by Send while no connection is up.
	ErrNotConnected = fmt.Errorf("%w: not connected", ErrConnection)
	// ErrDisconnected fails requests pending when the connection dropped,
	// when the channel is configured to do so.
	ErrDisconnected = fmt.Errorf("%w: connection lost while waiting for response", ErrConnection)
	// ErrClosed is returned once Close has been called.
	ErrClosed = errors.New("channel closed")
	// ErrTimeout means no response arrived in time. The host may still
	// complete the command after the caller gave up.
	ErrTimeout = errors.New("timed out waiting for host response; the command may still complete on the host")
)

// HostError is a command the host executed and reported as failed.
type HostError struct {
	Command string
	Message string
}

func (e *HostError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("host: %s failed", e.Command)
	}
	return fmt.Sprintf("host: %s: %s", e.Command, e.Message)
}
