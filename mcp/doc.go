// Package mcp connects conversations to Model Context Protocol servers.
//
// CreateTools discovers tools from configured servers and returns them as
// registrations for a [tool.Registry]; each registration proxies calls to
// the session that advertised it:
//
//	cfg := mcp.Config{MCPServers: map[string]mcp.ServerConfig{
//	    "fetch": {Command: "uvx", Args: []string{"mcp-server-fetch"}},
//	}}
//	toolset, err := mcp.CreateTools(ctx, cfg, 30*time.Second)
//	if err != nil {
//	    return err
//	}
//	defer toolset.Close()
//
// NewServer goes the other way and exposes a registry to MCP clients.
package mcp
