package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	ai "github.com/spetersoncode/convo"
	"github.com/spetersoncode/convo/tool"
)

// DefaultTimeout bounds discovery on one server when no timeout is given.
const DefaultTimeout = 30 * time.Second

// DiscoveryError reports the server that stopped tool discovery.
type DiscoveryError struct {
	Server string
	Err    error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("mcp: discover tools from %q: %v", e.Server, e.Err)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// Dialer connects to a configured server and returns a started, not yet
// initialized client.
type Dialer func(ctx context.Context, name string, cfg ServerConfig) (*client.Client, error)

// Option configures tool discovery.
type Option func(*discoverConfig)

type discoverConfig struct {
	logger     *slog.Logger
	dial       Dialer
	clientInfo mcp.Implementation
}

// WithLogger sets the logger discovered tools are reported to.
// Default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *discoverConfig) {
		c.logger = l
	}
}

// WithDialer replaces how servers are connected.
func WithDialer(d Dialer) Option {
	return func(c *discoverConfig) {
		c.dial = d
	}
}

// WithClientInfo sets the implementation name and version sent on initialize.
func WithClientInfo(name, version string) Option {
	return func(c *discoverConfig) {
		c.clientInfo = mcp.Implementation{Name: name, Version: version}
	}
}

// DialServer is the default Dialer. A stdio subprocess outlives ctx; only
// connection setup is bounded by it.
func DialServer(ctx context.Context, name string, cfg ServerConfig) (*client.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Command != "" {
		c, err := client.NewStdioMCPClient(cfg.Command, cfg.environ(), cfg.Args...)
		if err != nil {
			return nil, fmt.Errorf("start %s: %w", cfg.Command, err)
		}
		return c, nil
	}

	c, err := client.NewSSEMCPClient(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("create SSE client: %w", err)
	}
	if err := c.Start(context.WithoutCancel(ctx)); err != nil {
		c.Close()
		return nil, fmt.Errorf("connect %s: %w", cfg.URL, err)
	}
	return c, nil
}

// Toolset is the set of tools discovered from MCP servers, along with the
// sessions that serve them. Close releases the sessions.
type Toolset struct {
	sessions []*client.Client
	regs     []tool.Registration
}

// Registrations returns the discovered tools in discovery order.
func (t *Toolset) Registrations() []tool.Registration {
	return append([]tool.Registration(nil), t.regs...)
}

// Len returns the number of discovered tools.
func (t *Toolset) Len() int { return len(t.regs) }

// Close closes every session.
func (t *Toolset) Close() error {
	var errs []error
	for _, c := range t.sessions {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	t.sessions = nil
	return errors.Join(errs...)
}

// CreateTools connects to every configured server, in name order, and
// turns each advertised tool into a registration that proxies calls to its
// server. Connecting, initializing and listing are bounded by timeout per
// server. The first failure closes every session opened so far and returns
// a *DiscoveryError; a partial toolset is never returned.
func CreateTools(ctx context.Context, cfg Config, timeout time.Duration, opts ...Option) (*Toolset, error) {
	dc := &discoverConfig{
		logger:     slog.Default(),
		dial:       DialServer,
		clientInfo: mcp.Implementation{Name: "convo", Version: "1.0.0"},
	}
	for _, opt := range opts {
		opt(dc)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ts := &Toolset{}
	for _, name := range cfg.ServerNames() {
		c, tools, err := dc.discover(ctx, name, cfg.MCPServers[name], timeout)
		if err != nil {
			ts.Close()
			return nil, &DiscoveryError{Server: name, Err: err}
		}
		ts.sessions = append(ts.sessions, c)

		for _, t := range tools {
			dc.logger.Info("discovered MCP tool", "server", name, "tool", t.Name, "description", t.Description)
			ts.regs = append(ts.regs, tool.WithTool(FromMCPTool(t), proxyHandler(c, t.Name)))
		}
	}
	return ts, nil
}

func (dc *discoverConfig) discover(ctx context.Context, name string, sc ServerConfig, timeout time.Duration) (*client.Client, []mcp.Tool, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	c, err := dc.dial(ctx, name, sc)
	if err != nil {
		return nil, nil, fmt.Errorf("connect: %w", err)
	}

	_, err = c.Initialize(ctx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			Capabilities:    mcp.ClientCapabilities{},
			ClientInfo:      dc.clientInfo,
		},
	})
	if err != nil {
		c.Close()
		return nil, nil, fmt.Errorf("initialize: %w", err)
	}

	result, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		c.Close()
		return nil, nil, fmt.Errorf("list tools: %w", err)
	}
	return c, result.Tools, nil
}

// proxyHandler forwards a call to the server that advertised the tool.
// A result flagged as an error on the server is returned as an error.
func proxyHandler(c *client.Client, name string) tool.Handler {
	return func(ctx context.Context, call ai.ToolCall) (string, error) {
		call.Name = name
		res, err := c.CallTool(ctx, ToMCPCallToolRequest(call))
		if err != nil {
			return "", fmt.Errorf("mcp: call %s: %w", name, err)
		}
		out := FromMCPCallToolResult(call.ID, res)
		if out.IsError {
			return "", errors.New(out.Content)
		}
		return out.Content, nil
	}
}
