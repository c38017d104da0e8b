package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	ai "github.com/spetersoncode/convo"
	"github.com/spetersoncode/convo/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type textArgs struct {
	Text string `json:"text"`
}

func testServer(names ...string) *server.MCPServer {
	registry := tool.NewRegistry()
	for _, name := range names {
		registry.Add(tool.Func(name, "Tool "+name, func(ctx context.Context, args textArgs) (string, error) {
			if args.Text == "fail" {
				return "", errors.New("asked to fail")
			}
			return name + ":" + args.Text, nil
		}))
	}
	return NewServer(registry, WithName("test-server"), WithVersion("0.0.1"))
}

// inProcessDialer serves each configured server name from servers.
func inProcessDialer(servers map[string]*server.MCPServer, dialed *[]string) Dialer {
	return func(ctx context.Context, name string, cfg ServerConfig) (*client.Client, error) {
		if dialed != nil {
			*dialed = append(*dialed, name)
		}
		s, ok := servers[name]
		if !ok {
			return nil, errors.New("no such server")
		}
		c, err := client.NewInProcessClient(s)
		if err != nil {
			return nil, err
		}
		if err := c.Start(ctx); err != nil {
			return nil, err
		}
		return c, nil
	}
}

func configFor(names ...string) Config {
	cfg := Config{MCPServers: map[string]ServerConfig{}}
	for _, n := range names {
		cfg.MCPServers[n] = ServerConfig{Command: "unused"}
	}
	return cfg
}

func TestParseConfig(t *testing.T) {
	t.Run("stdio server", func(t *testing.T) {
		cfg, err := ParseConfig([]byte(`{"mcpServers":{"fetch":{"command":"uvx","args":["mcp-server-fetch"]}}}`))
		require.NoError(t, err)
		assert.Equal(t, ServerConfig{Command: "uvx", Args: []string{"mcp-server-fetch"}}, cfg.MCPServers["fetch"])
	})

	t.Run("rejects server without transport", func(t *testing.T) {
		_, err := ParseConfig([]byte(`{"mcpServers":{"broken":{}}}`))
		assert.ErrorContains(t, err, `server "broken"`)
	})

	t.Run("rejects both transports", func(t *testing.T) {
		_, err := ParseConfig([]byte(`{"mcpServers":{"x":{"command":"a","url":"http://b"}}}`))
		assert.ErrorContains(t, err, "mutually exclusive")
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := ParseConfig([]byte(`{`))
		assert.Error(t, err)
	})

	t.Run("load from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "mcp.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"mcpServers":{"b":{"url":"http://localhost:1/sse"},"a":{"command":"x"}}}`), 0o644))
		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, cfg.ServerNames())

		_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
		assert.Error(t, err)
	})

	t.Run("environ is sorted", func(t *testing.T) {
		sc := ServerConfig{Command: "x", Env: map[string]string{"B": "2", "A": "1"}}
		assert.Equal(t, []string{"A=1", "B=2"}, sc.environ())
	})
}

func TestCreateToolsEmptyConfig(t *testing.T) {
	var dialed []string
	ts, err := CreateTools(context.Background(), Config{}, time.Second, WithDialer(inProcessDialer(nil, &dialed)))
	require.NoError(t, err)
	assert.Equal(t, 0, ts.Len())
	assert.Empty(t, ts.Registrations())
	assert.Empty(t, dialed)
	assert.NoError(t, ts.Close())
}

func TestCreateTools(t *testing.T) {
	servers := map[string]*server.MCPServer{
		"beta":  testServer("fetch"),
		"alpha": testServer("search", "lookup"),
	}
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	var dialed []string

	ts, err := CreateTools(context.Background(), configFor("beta", "alpha"), time.Second,
		WithDialer(inProcessDialer(servers, &dialed)),
		WithLogger(logger),
	)
	require.NoError(t, err)
	defer ts.Close()

	assert.Equal(t, []string{"alpha", "beta"}, dialed)

	regs := ts.Registrations()
	require.Len(t, regs, 3)
	assert.Equal(t, "search", regs[0].Tool.Name)
	assert.Equal(t, "lookup", regs[1].Tool.Name)
	assert.Equal(t, "fetch", regs[2].Tool.Name)
	assert.Equal(t, "Tool fetch", regs[2].Tool.Description)
	assert.Contains(t, string(regs[2].Tool.Parameters), `"text"`)

	assert.Contains(t, logs.String(), "tool=fetch")
	assert.Contains(t, logs.String(), `description="Tool fetch"`)

	registry := tool.NewRegistry(regs...)
	ctx := context.Background()

	res, err := registry.Execute(ctx, ai.ToolCall{ID: "1", Name: "fetch", Arguments: `{"text":"page"}`})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "fetch:page", res.Content)

	res, err = registry.Execute(ctx, ai.ToolCall{ID: "2", Name: "search", Arguments: `{"text":"fail"}`})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content, "asked to fail")
}

func TestCreateToolsAborts(t *testing.T) {
	t.Run("dial failure aborts consistently", func(t *testing.T) {
		servers := map[string]*server.MCPServer{"a": testServer("one")}
		cfg := configFor("a", "b")

		for attempt := 0; attempt < 3; attempt++ {
			var dialed []string
			ts, err := CreateTools(context.Background(), cfg, time.Second, WithDialer(inProcessDialer(servers, &dialed)))
			assert.Nil(t, ts)

			var de *DiscoveryError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, "b", de.Server)
			assert.ErrorContains(t, err, "no such server")
			assert.Equal(t, []string{"a", "b"}, dialed)
		}
	})

	t.Run("timeout aborts", func(t *testing.T) {
		hang := func(ctx context.Context, name string, cfg ServerConfig) (*client.Client, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}

		start := time.Now()
		_, err := CreateTools(context.Background(), configFor("slow"), 50*time.Millisecond, WithDialer(hang))
		assert.Less(t, time.Since(start), 2*time.Second)

		var de *DiscoveryError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "slow", de.Server)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("invalid server config", func(t *testing.T) {
		cfg := Config{MCPServers: map[string]ServerConfig{"empty": {}}}
		_, err := CreateTools(context.Background(), cfg, time.Second)

		var de *DiscoveryError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "empty", de.Server)
	})
}

func TestServerIntegration(t *testing.T) {
	c, err := client.NewInProcessClient(testServer("echo"))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, c.Start(ctx))
	defer c.Close()

	_, err = c.Initialize(ctx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			ClientInfo:      mcp.Implementation{Name: "test-client", Version: "1.0.0"},
		},
	})
	require.NoError(t, err)

	list, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	require.NoError(t, err)
	require.Len(t, list.Tools, 1)
	assert.Equal(t, "echo", list.Tools[0].Name)

	result, err := c.CallTool(ctx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: "echo", Arguments: map[string]any{"text": "hi"}},
	})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.Equal(t, "echo:hi", text.Text)

	result, err = c.CallTool(ctx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: "echo", Arguments: map[string]any{"text": "fail"}},
	})
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestConversions(t *testing.T) {
	t.Run("tool round trip", func(t *testing.T) {
		schema := json.RawMessage(`{"type":"object","properties":{"url":{"type":"string"}}}`)
		back := FromMCPTool(ToMCPTool(ai.Tool{Name: "fetch", Description: "Fetch a URL", Parameters: schema}))
		assert.Equal(t, "fetch", back.Name)
		assert.JSONEq(t, string(schema), string(back.Parameters))
	})

	t.Run("structured schema", func(t *testing.T) {
		mt := mcp.NewTool("search", mcp.WithDescription("Search"), mcp.WithString("query", mcp.Required()))
		got := FromMCPTool(mt)
		assert.Contains(t, string(got.Parameters), `"query"`)
	})

	t.Run("call request arguments", func(t *testing.T) {
		req := ToMCPCallToolRequest(ai.ToolCall{Name: "fetch", Arguments: `{"url":"https://example.com"}`})
		assert.Equal(t, map[string]any{"url": "https://example.com"}, req.Params.Arguments)

		req = ToMCPCallToolRequest(ai.ToolCall{Name: "fetch", Arguments: "not json"})
		assert.Equal(t, "not json", req.Params.Arguments)
	})

	t.Run("call results", func(t *testing.T) {
		res := FromMCPCallToolResult("c1", mcp.NewToolResultText("body"))
		assert.Equal(t, ai.ToolResult{ToolCallID: "c1", Content: "body"}, res)

		res = FromMCPCallToolResult("c2", nil)
		assert.True(t, res.IsError)

		assert.True(t, ToMCPCallToolResult(ai.ToolResult{Content: "x", IsError: true}).IsError)
	})
}
