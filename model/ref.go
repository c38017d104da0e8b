package model

import (
	"errors"
	"fmt"
	"strings"

	ai "github.com/spetersoncode/convo"
)

// ErrEmptyModel is returned when a model identifier is blank.
var ErrEmptyModel = errors.New("model: identifier is empty")

// Ref is a parsed model identifier.
type Ref struct {
	// Provider routes the request. Empty means OpenAI-compatible.
	Provider ai.Provider
	// Name is the identifier sent to the provider API.
	Name string
}

// String returns the identifier in "provider/name" form.
func (r Ref) String() string {
	if r.Provider == "" {
		return r.Name
	}
	return string(r.Provider) + "/" + r.Name
}

var knownProviders = map[string]ai.Provider{
	"openai":        ai.ProviderOpenAI,
	"anthropic":     ai.ProviderAnthropic,
	"gemini":        ai.ProviderGemini,
	"google":        ai.ProviderGemini,
	"vertex_ai":     ai.ProviderVertex,
	"vertex":        ai.ProviderVertex,
	"ollama":        ai.ProviderOllama,
	"ollama_chat":   ai.ProviderOllama,
	"litellm_proxy": ai.ProviderLiteLLMProxy,
}

// Parse splits an identifier such as "anthropic/claude-sonnet-4-5".
//
// Only a recognised prefix is treated as a provider, so names that contain
// slashes themselves ("openrouter/meta-llama/llama-3") survive intact when
// sent through an OpenAI-compatible proxy.
func Parse(id string) (Ref, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Ref{}, ErrEmptyModel
	}
	prefix, rest, found := strings.Cut(id, "/")
	if !found {
		return Ref{Name: id}, nil
	}
	p, ok := knownProviders[strings.ToLower(prefix)]
	if !ok {
		return Ref{Name: id}, nil
	}
	if rest == "" {
		return Ref{}, fmt.Errorf("model: %q has a provider but no model name", id)
	}
	return Ref{Provider: p, Name: rest}, nil
}
