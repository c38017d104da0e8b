package model

import (
	"testing"

	ai "github.com/spetersoncode/convo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		id       string
		provider ai.Provider
		name     string
	}{
		{"ollama/devstral-64k", ai.ProviderOllama, "devstral-64k"},
		{"anthropic/claude-sonnet-4-5", ai.ProviderAnthropic, "claude-sonnet-4-5"},
		{"gemini/gemini-2.5-flash", ai.ProviderGemini, "gemini-2.5-flash"},
		{"google/gemini-2.5-flash", ai.ProviderGemini, "gemini-2.5-flash"},
		{"vertex_ai/gemini-2.5-pro", ai.ProviderVertex, "gemini-2.5-pro"},
		{"litellm_proxy/claude-sonnet-4-5", ai.ProviderLiteLLMProxy, "claude-sonnet-4-5"},
		{"openai/gpt-5-mini", ai.ProviderOpenAI, "gpt-5-mini"},
		{"gpt-5-mini", "", "gpt-5-mini"},
		{"openrouter/meta-llama/llama-3", "", "openrouter/meta-llama/llama-3"},
		{"  OLLAMA/qwen3  ", ai.ProviderOllama, "qwen3"},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			ref, err := Parse(tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.provider, ref.Provider)
			assert.Equal(t, tt.name, ref.Name)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse("   ")
	assert.ErrorIs(t, err, ErrEmptyModel)

	_, err = Parse("anthropic/")
	assert.Error(t, err)
}

func TestRef_String(t *testing.T) {
	assert.Equal(t, "ollama/devstral-64k", Ref{Provider: ai.ProviderOllama, Name: "devstral-64k"}.String())
	assert.Equal(t, "gpt-5", Ref{Name: "gpt-5"}.String())
}

func TestChatPricing_Cost(t *testing.T) {
	pricing := ChatPricing{InputPerMillion: 1.00, OutputPerMillion: 2.00}

	t.Run("standard usage", func(t *testing.T) {
		// 1000/1M * $1 + 500/1M * $2 = $0.002
		cost := pricing.Cost(ai.Usage{InputTokens: 1000, OutputTokens: 500})
		assert.InDelta(t, 0.002, cost, 1e-9)
	})

	t.Run("zero usage", func(t *testing.T) {
		assert.Zero(t, pricing.Cost(ai.Usage{}))
	})

	t.Run("cached reads use cached rate", func(t *testing.T) {
		p := ChatPricing{InputPerMillion: 2.00, CachedInputPerMillion: 0.50}
		cost := p.Cost(ai.Usage{InputTokens: 1_000_000, CacheReadTokens: 500_000})
		// 500k * $2 + 500k * $0.5 = $1.25
		assert.InDelta(t, 1.25, cost, 1e-9)
	})

	t.Run("cache writes billed separately", func(t *testing.T) {
		p := ChatPricing{CacheWritePerMillion: 4.00}
		assert.InDelta(t, 4.0, p.Cost(ai.Usage{CacheWriteTokens: 1_000_000}), 1e-9)
	})
}

func TestLookup(t *testing.T) {
	t.Run("known model", func(t *testing.T) {
		p := Lookup(Ref{Provider: ai.ProviderAnthropic, Name: "claude-sonnet-4-5"})
		assert.Equal(t, 3.00, p.InputPerMillion)
	})

	t.Run("dated snapshot", func(t *testing.T) {
		p := Lookup(Ref{Provider: ai.ProviderAnthropic, Name: "claude-sonnet-4-5-20250929"})
		assert.Equal(t, 15.00, p.OutputPerMillion)
	})

	t.Run("ollama is free even for known names", func(t *testing.T) {
		assert.True(t, Lookup(Ref{Provider: ai.ProviderOllama, Name: "gpt-5"}).Free())
	})

	t.Run("unknown model", func(t *testing.T) {
		assert.True(t, Lookup(Ref{Name: "devstral-64k"}).Free())
	})
}
