// Package response renders tool results for MCP clients and the command
// line, and maps failures onto exit codes.
package response

import (
	"context"
	"errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lydakis/hostbridge/internal/channel"
	"github.com/lydakis/hostbridge/internal/dimension"
	"github.com/lydakis/hostbridge/internal/walls"
	"github.com/lydakis/hostbridge/internal/workflow"
)

// Exit codes.
const (
	ExitOK       = 0
	ExitToolErr  = 1
	ExitUsageErr = 2
	ExitInternal = 3
)

// ErrUsage marks command-line mistakes.
var ErrUsage = errors.New("usage error")

// ExitCode classifies err. Host-reported failures and geometry that does
// not describe a corridor are tool errors; bad arguments are usage errors;
// anything about reaching the host is internal.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var hostErr *channel.HostError
	switch {
	case errors.Is(err, ErrUsage),
		errors.Is(err, mcp.ErrInvalidParams),
		errors.Is(err, mcp.ErrMethodNotFound),
		errors.Is(err, workflow.ErrInvalidRequest):
		return ExitUsageErr
	case errors.As(err, &hostErr),
		errors.Is(err, dimension.ErrNoOpposingWall),
		errors.Is(err, dimension.ErrAmbiguousSide),
		errors.Is(err, dimension.ErrBoundingBoxOnly),
		errors.Is(err, walls.ErrDegenerateSegment),
		errors.Is(err, walls.ErrInvalidRadius):
		return ExitToolErr
	case errors.Is(err, channel.ErrConnection),
		errors.Is(err, channel.ErrTimeout),
		errors.Is(err, channel.ErrClosed),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return ExitInternal
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "-32602") || strings.Contains(msg, "-32601") {
		return ExitUsageErr
	}
	return ExitInternal
}
