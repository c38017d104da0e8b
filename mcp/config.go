package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
)

// Config describes the MCP servers to discover tools from. Its JSON form
// matches the common client configuration file:
//
//	{"mcpServers": {"fetch": {"command": "uvx", "args": ["mcp-server-fetch"]}}}
type Config struct {
	MCPServers map[string]ServerConfig `json:"mcpServers"`
}

// ServerConfig launches or locates one MCP server. Command starts a stdio
// subprocess; URL connects to an SSE endpoint. Exactly one must be set.
type ServerConfig struct {
	Command string            `json:"command,omitempty"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
	URL     string            `json:"url,omitempty"`
}

// Validate checks that the server has exactly one transport.
func (s ServerConfig) Validate() error {
	switch {
	case s.Command == "" && s.URL == "":
		return errors.New("either command or url is required")
	case s.Command != "" && s.URL != "":
		return errors.New("command and url are mutually exclusive")
	}
	return nil
}

// environ renders Env as sorted KEY=VALUE pairs.
func (s ServerConfig) environ() []string {
	env := make([]string, 0, len(s.Env))
	for k, v := range s.Env {
		env = append(env, k+"="+v)
	}
	sort.Strings(env)
	return env
}

// ServerNames returns the configured server names in lexicographic order,
// which is the order discovery visits them.
func (c Config) ServerNames() []string {
	names := make([]string, 0, len(c.MCPServers))
	for name := range c.MCPServers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseConfig decodes a JSON MCP configuration.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("mcp: parse config: %w", err)
	}
	for _, name := range cfg.ServerNames() {
		if err := cfg.MCPServers[name].Validate(); err != nil {
			return Config{}, fmt.Errorf("mcp: server %q: %w", name, err)
		}
	}
	return cfg, nil
}

// LoadConfig reads and decodes a JSON MCP configuration file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("mcp: read config: %w", err)
	}
	return ParseConfig(data)
}
