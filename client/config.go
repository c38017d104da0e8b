package client

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	ai "github.com/spetersoncode/convo"
	"github.com/spetersoncode/convo/model"
	"github.com/spetersoncode/convo/retry"
)

// DefaultOllamaURL is used for ollama/ models when BaseURL is empty.
const DefaultOllamaURL = "http://localhost:11434"

// Config holds the connection parameters for a model client.
type Config struct {
	// Model is a "provider/name" identifier. Required.
	Model string

	// BaseURL overrides the provider endpoint. Required for litellm_proxy and
	// for identifiers without a provider prefix.
	BaseURL string

	// APIKey authenticates with hosted providers. It may be empty for local
	// endpoints and whenever BaseURL points at a self-hosted server.
	APIKey string

	// VertexProject and VertexLocation configure vertex_ai models, which
	// authenticate with Application Default Credentials.
	VertexProject  string
	VertexLocation string

	// RetryConfig configures retry behavior for transient errors.
	// If nil, retry.DefaultConfig is used.
	RetryConfig *retry.Config

	// Events is an optional channel for receiving client operation events.
	Events chan<- Event

	// HTTPClient replaces the transport for every backend.
	HTTPClient *http.Client
}

// ConfigError reports an invalid Config field.
type ConfigError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("client: invalid %s: %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("client: invalid %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ErrMissingAPIKey is returned when a hosted provider has no credential.
type ErrMissingAPIKey struct {
	Provider string
	Model    string
}

func (e *ErrMissingAPIKey) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("no API key configured for %s (required by model %q)", e.Provider, e.Model)
	}
	return fmt.Sprintf("no API key configured for %s", e.Provider)
}

// Validate checks the configuration and returns the parsed model reference.
func (c Config) Validate() (model.Ref, error) {
	ref, err := model.Parse(c.Model)
	if err != nil {
		return model.Ref{}, &ConfigError{Field: "model", Reason: "cannot parse identifier", Err: err}
	}

	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil {
			return model.Ref{}, &ConfigError{Field: "base URL", Reason: "cannot parse", Err: err}
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return model.Ref{}, &ConfigError{Field: "base URL", Reason: fmt.Sprintf("%q must be an absolute http(s) URL", c.BaseURL)}
		}
	}

	if c.RetryConfig != nil {
		if err := c.RetryConfig.Validate(); err != nil {
			return model.Ref{}, &ConfigError{Field: "retry config", Reason: "out of range", Err: err}
		}
	}

	switch ref.Provider {
	case ai.ProviderOllama:
	case ai.ProviderVertex:
		if c.VertexProject == "" || c.VertexLocation == "" {
			return model.Ref{}, &ConfigError{Field: "vertex project", Reason: "vertex_ai models need a project and a location"}
		}
	case ai.ProviderLiteLLMProxy, "":
		if c.BaseURL == "" {
			return model.Ref{}, &ConfigError{Field: "base URL", Reason: fmt.Sprintf("model %q needs a base URL", c.Model)}
		}
	default:
		if strings.TrimSpace(c.APIKey) == "" && c.BaseURL == "" {
			return model.Ref{}, &ConfigError{
				Field:  "API key",
				Reason: "required for hosted providers",
				Err:    &ErrMissingAPIKey{Provider: ref.Provider.String(), Model: ref.Name},
			}
		}
	}
	return ref, nil
}

// openAIBaseURL returns the chat completions root for OpenAI-compatible backends.
func (c Config) openAIBaseURL(p ai.Provider) string {
	base := strings.TrimRight(c.BaseURL, "/")
	if p != ai.ProviderOllama {
		return base
	}
	if base == "" {
		base = DefaultOllamaURL
	}
	if !strings.HasSuffix(base, "/v1") {
		base += "/v1"
	}
	return base
}
