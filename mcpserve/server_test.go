package mcpserve_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/server"
	"github.com/secbridge/secquery/mcpserve"
	"github.com/secbridge/secquery/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoTool struct{}

func (echoTool) Name() string        { return "echo" }
func (echoTool) Description() string { return "Echoes its input back." }
func (echoTool) Parameters() any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text": map[string]any{"type": "string"},
		},
	}
}

func (echoTool) Call(_ context.Context, input string) (string, error) {
	return input, nil
}

func handle(t *testing.T, srv *server.MCPServer, msg string) string {
	t.Helper()
	res := srv.HandleMessage(context.Background(), json.RawMessage(msg))
	require.NotNil(t, res)
	bs, err := json.Marshal(res)
	require.NoError(t, err)
	return string(bs)
}

func TestServer_ListAndCall(t *testing.T) {
	reg := tools.NewRegistry()
	reg.MustRegister(echoTool{})

	srv, err := mcpserve.New("secquery-test", "0.0.1", reg)
	require.NoError(t, err)

	out := handle(t, srv, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"0"}}}`)
	assert.Contains(t, out, "secquery-test")

	out = handle(t, srv, `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)
	assert.Contains(t, out, `"echo"`)
	assert.Contains(t, out, "Echoes its input back.")

	out = handle(t, srv, `{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"echo","arguments":{"text":"hi"}}}`)
	assert.Contains(t, out, `hi`)
	assert.NotContains(t, out, `"isError":true`)
}

func TestServer_UnknownToolIsToolError(t *testing.T) {
	reg := tools.NewRegistry()
	reg.MustRegister(echoTool{})

	srv, err := mcpserve.New("secquery-test", "0.0.1", reg)
	require.NoError(t, err)

	handle(t, srv, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"0"}}}`)

	out := handle(t, srv, `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"missing","arguments":{}}}`)
	// Unknown tools are a protocol-level error from the server.
	assert.Contains(t, out, "error")
}
