// Package bridge exposes host commands as MCP tools. Catalog tools forward
// to the host one command at a time; the corridor tool runs the dimension
// workflow.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/lydakis/hostbridge/internal/cache"
	"github.com/lydakis/hostbridge/internal/config"
	"github.com/lydakis/hostbridge/internal/geometry"
	"github.com/lydakis/hostbridge/internal/response"
	"github.com/lydakis/hostbridge/internal/tools"
	"github.com/lydakis/hostbridge/internal/workflow"
)

const instructions = `hostbridge drives a building-model host over a live connection.
All lengths are millimeters. To dimension a corridor use create_corridor_dimensions:
it measures between the facing wall surfaces. Never derive a corridor width from a
room bounding box; it includes wall thickness and padding.`

// Options configures a Bridge.
type Options struct {
	// Cache, when non-nil, holds replies to the commands CacheConfig lists.
	Cache       *cache.Store
	CacheConfig config.CacheConfig
	Workflow    workflow.Defaults
	Logger      *zap.Logger
}

// Bridge turns tool calls into host commands.
type Bridge struct {
	sender   workflow.Sender
	corridor *workflow.Corridor
	opts     Options
	log      *zap.Logger
}

// New returns a bridge that sends through s.
func New(s workflow.Sender, opts Options) *Bridge {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Bridge{
		sender:   s,
		corridor: workflow.NewCorridor(s, opts.Workflow, log),
		opts:     opts,
		log:      log.With(zap.String("component", "bridge")),
	}
}

// NewServer builds the MCP server with every tool registered.
func (b *Bridge) NewServer(name, version string) *server.MCPServer {
	s := server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)
	for _, tool := range append(tools.Catalog(), tools.CorridorTool()) {
		s.AddTool(tool, b.handle)
	}
	return s
}

func (b *Bridge) handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := b.Call(ctx, req.Params.Name, req.GetArguments())
	if err != nil {
		return response.Error(err), nil
	}
	return res, nil
}

// Call runs one tool. Failures the host or the geometry report come back as
// an error result. The error return is for bad arguments and for failing to
// reach the host at all.
func (b *Bridge) Call(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	tool, ok := tools.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: unknown tool %q", response.ErrUsage, name)
	}
	compiled, err := tools.CompileArgs(tool, args)
	if err != nil {
		return nil, err
	}

	var res *mcp.CallToolResult
	if tool.Name == tools.CorridorToolName {
		res, err = b.callCorridor(ctx, compiled)
	} else {
		res, err = b.forward(ctx, tool, compiled)
	}
	if err != nil {
		b.log.Debug("tool failed", zap.String("tool", tool.Name), zap.Error(err))
		if response.ExitCode(err) == response.ExitToolErr {
			return response.Error(err), nil
		}
		return nil, err
	}
	return res, nil
}

func (b *Bridge) forward(ctx context.Context, tool mcp.Tool, args map[string]any) (*mcp.CallToolResult, error) {
	params, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("encoding %s arguments: %w", tool.Name, err)
	}

	cacheable := b.opts.Cache != nil && b.opts.CacheConfig.Cacheable(tool.Name)
	if cacheable {
		if data, ok := b.opts.Cache.Get(tool.Name, params); ok {
			b.log.Debug("cache hit", zap.String("command", tool.Name))
			return response.Result(data), nil
		}
	}

	resp, err := b.sender.Send(ctx, tool.Name, json.RawMessage(params))
	if err != nil {
		return nil, err
	}

	switch {
	case cacheable:
		if err := b.opts.Cache.Put(tool.Name, params, resp.Data, b.opts.CacheConfig.TTLDuration()); err != nil {
			b.log.Warn("caching response", zap.String("command", tool.Name), zap.Error(err))
		}
	case b.opts.Cache != nil && !tools.ReadOnly(tool):
		b.purge(tool.Name)
	}
	return response.Result(resp.Data), nil
}

func (b *Bridge) callCorridor(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
	req, err := corridorRequest(args)
	if err != nil {
		return nil, err
	}
	res, err := b.corridor.Dimension(ctx, req)
	if b.opts.Cache != nil && (err == nil || res.Net.DimensionID != 0) {
		b.purge(tools.CorridorToolName)
	}
	if err != nil {
		return nil, err
	}
	return response.Value(res)
}

// purge drops cached replies after a mutation so no read returns a model
// state older than a change made through the bridge.
func (b *Bridge) purge(cause string) {
	if err := b.opts.Cache.Purge(); err != nil {
		b.log.Warn("purging response cache", zap.String("after", cause), zap.Error(err))
	}
}

func corridorRequest(args map[string]any) (workflow.CorridorRequest, error) {
	var req workflow.CorridorRequest

	x, hasX := args["x"].(float64)
	y, hasY := args["y"].(float64)
	switch {
	case hasX && hasY:
		req.Center = &geometry.Point{X: x, Y: y}
	case hasX || hasY:
		return req, fmt.Errorf("%w: x and y must be given together", mcp.ErrInvalidParams)
	}

	req.Room, _ = args["room"].(string)
	req.ViewID, _ = args["viewId"].(int64)
	req.Level, _ = args["level"].(string)
	req.SearchRadius = optionalNumber(args, "searchRadius")
	req.NetOffset = optionalNumber(args, "netOffset")
	req.CenterlineOffset = optionalNumber(args, "centerlineOffset")
	if include, ok := args["includeCenterline"].(bool); ok {
		req.SkipCenterline = !include
	}
	return req, nil
}

// optionalNumber returns nil when key is absent so the workflow default
// applies. An explicit 0 is kept.
func optionalNumber(args map[string]any, key string) *float64 {
	v, ok := args[key].(float64)
	if !ok {
		return nil
	}
	return &v
}
