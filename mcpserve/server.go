// Package mcpserve exposes a tool registry over the Model Context Protocol
// on stdio. Tool schemas are forwarded verbatim so the orchestrator sees the
// same JSON Schema the validators enforce.
package mcpserve

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/secbridge/secquery/tools"
)

var logger = xlog.NewPackageLogger("github.com/secbridge/secquery", "mcpserve")

// ConfigureLogging routes logs to stderr and applies the configured level.
// Stdout carries the MCP transport and must stay clean.
func ConfigureLogging(level string) {
	xlog.SetFormatter(xlog.NewStringFormatter(os.Stderr))
	l, err := xlog.ParseLevel(strings.ToUpper(level))
	if err != nil {
		l = xlog.INFO
	}
	xlog.SetGlobalLogLevel(l)
}

// New assembles an MCP server advertising every tool in the registry.
func New(name, version string, reg *tools.Registry) (*server.MCPServer, error) {
	srv := server.NewMCPServer(name, version)
	for _, t := range reg.List() {
		raw, err := json.Marshal(t.Parameters())
		if err != nil {
			return nil, errors.WithMessagef(err, "schema for tool %s", t.Name())
		}
		tool := mcp.NewToolWithRawSchema(t.Name(), t.Description(), raw)
		srv.AddTool(tool, handler(reg, t.Name()))
	}
	return srv, nil
}

// Serve runs the server on stdio until the client disconnects.
func Serve(name, version string, reg *tools.Registry) error {
	srv, err := New(name, version, reg)
	if err != nil {
		return err
	}
	logger.KV(xlog.INFO, "status", "serving", "server", name, "tools", len(reg.List()))
	return server.ServeStdio(srv)
}

// handler adapts a registry call to the MCP result shape. Tool failures are
// reported as tool results, not protocol errors, so the orchestrator can read
// them and retry with corrected arguments.
func handler(reg *tools.Registry, name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := json.Marshal(req.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		out, err := reg.Call(ctx, name, string(args))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(out), nil
	}
}
