package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/spetersoncode/convo/client"
	"github.com/spetersoncode/convo/mcp"
	"github.com/spetersoncode/convo/store"
)

// Config holds the example configuration loaded from environment variables.
type Config struct {
	// Model client
	Model   string
	BaseURL string
	APIKey  string

	// MCP discovery
	MCPConfigPath string
	MCPTimeout    time.Duration

	// Runtime
	LogLevel  string // debug, info, warn, error
	TracePath string
	WorkDir   string

	// Persistence: a directory, or a .db/.sqlite file for SQLite
	StorePath      string
	ConversationID string
}

// LoadConfig loads configuration from environment variables.
// It loads a .env file if present (silent fail if not found).
func LoadConfig() (*Config, error) {
	godotenv.Load() // Load .env file if present

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("working directory: %w", err)
	}

	mcpTimeout, err := getEnvInt("MCP_TIMEOUT", 30)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Model:         getEnvOrDefault("LLM_MODEL", "ollama/devstral-64k"),
		BaseURL:       os.Getenv("LLM_BASE_URL"),
		APIKey:        os.Getenv("LLM_API_KEY"),
		MCPConfigPath: os.Getenv("MCP_CONFIG"),
		MCPTimeout:    time.Duration(mcpTimeout) * time.Second,
		LogLevel:      getEnvOrDefault("LOG_LEVEL", "info"),
		TracePath:     os.Getenv("AGUI_TRACE"),
		WorkDir:       getEnvOrDefault("CONVO_WORKDIR", wd),

		StorePath:      os.Getenv("CONVO_STORE"),
		ConversationID: os.Getenv("CONVO_ID"),
	}
	if cfg.BaseURL == "" && strings.HasPrefix(cfg.Model, "ollama/") {
		cfg.BaseURL = client.DefaultOllamaURL
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("LLM_MODEL is required")
	}
	if c.MCPTimeout <= 0 {
		return fmt.Errorf("MCP_TIMEOUT must be positive")
	}
	if _, err := c.slogLevel(); err != nil {
		return err
	}
	if c.ConversationID != "" && c.StorePath == "" {
		return fmt.Errorf("CONVO_ID requires CONVO_STORE")
	}
	return nil
}

// OpenStore opens the configured persistence adapter. It returns nil when
// CONVO_STORE is unset. The returned func releases the adapter.
func (c *Config) OpenStore() (store.Adapter, func() error, error) {
	switch ext := filepath.Ext(c.StorePath); {
	case c.StorePath == "":
		return nil, func() error { return nil }, nil
	case ext == ".db" || ext == ".sqlite":
		a, err := store.OpenSQLite(c.StorePath)
		if err != nil {
			return nil, nil, err
		}
		return a, a.Close, nil
	default:
		a, err := store.NewFileAdapter(c.StorePath)
		if err != nil {
			return nil, nil, err
		}
		return a, func() error { return nil }, nil
	}
}

// ClientConfig returns the model client configuration.
func (c *Config) ClientConfig() client.Config {
	return client.Config{
		Model:   c.Model,
		BaseURL: c.BaseURL,
		APIKey:  c.APIKey,
	}
}

// MCPConfig returns the MCP server map, either from MCP_CONFIG or the
// default fetch server.
func (c *Config) MCPConfig() (mcp.Config, error) {
	if c.MCPConfigPath != "" {
		return mcp.LoadConfig(c.MCPConfigPath)
	}
	return mcp.Config{
		MCPServers: map[string]mcp.ServerConfig{
			"fetch": {Command: "uvx", Args: []string{"mcp-server-fetch"}},
		},
	}, nil
}

func (c *Config) slogLevel() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown LOG_LEVEL: %s (must be debug, info, warn, or error)", c.LogLevel)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns defaultValue when key is unset. A set value that is not
// an integer is an error.
func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer number of seconds, got %q", key, value)
	}
	return i, nil
}
