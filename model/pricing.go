package model

import (
	"strings"

	ai "github.com/spetersoncode/convo"
)

// ChatPricing contains pricing per million tokens (USD) for chat models.
type ChatPricing struct {
	InputPerMillion  float64
	OutputPerMillion float64
	// CachedInputPerMillion prices prompt tokens served from the provider cache.
	CachedInputPerMillion float64
	// CacheWritePerMillion prices tokens written to the cache (Anthropic only).
	CacheWritePerMillion float64
}

// Free reports whether every rate is zero.
func (p ChatPricing) Free() bool {
	return p == ChatPricing{}
}

// Cost returns the USD cost of usage. Cached reads are billed at the cached
// rate when one is set and at the input rate otherwise.
func (p ChatPricing) Cost(u ai.Usage) float64 {
	input := u.InputTokens
	cached := 0
	if p.CachedInputPerMillion > 0 && u.CacheReadTokens > 0 && u.CacheReadTokens <= input {
		cached = u.CacheReadTokens
		input -= cached
	}
	return float64(input)/1_000_000*p.InputPerMillion +
		float64(cached)/1_000_000*p.CachedInputPerMillion +
		float64(u.CacheWriteTokens)/1_000_000*p.CacheWritePerMillion +
		float64(u.OutputTokens)/1_000_000*p.OutputPerMillion
}

// Model pricing last verified: December 14, 2025
var catalogue = map[string]ChatPricing{
	"claude-opus-4-5":   {InputPerMillion: 5.00, OutputPerMillion: 25.00, CachedInputPerMillion: 0.50, CacheWritePerMillion: 6.25},
	"claude-sonnet-4-5": {InputPerMillion: 3.00, OutputPerMillion: 15.00, CachedInputPerMillion: 0.30, CacheWritePerMillion: 3.75},
	"claude-haiku-4-5":  {InputPerMillion: 1.00, OutputPerMillion: 5.00, CachedInputPerMillion: 0.10, CacheWritePerMillion: 1.25},

	"gpt-5.2":    {InputPerMillion: 1.75, OutputPerMillion: 14.00, CachedInputPerMillion: 0.175},
	"gpt-5.1":    {InputPerMillion: 1.25, OutputPerMillion: 10.00, CachedInputPerMillion: 0.125},
	"gpt-5":      {InputPerMillion: 1.25, OutputPerMillion: 10.00, CachedInputPerMillion: 0.125},
	"gpt-5-mini": {InputPerMillion: 0.25, OutputPerMillion: 1.00, CachedInputPerMillion: 0.025},
	"gpt-5-nano": {InputPerMillion: 0.10, OutputPerMillion: 0.40, CachedInputPerMillion: 0.01},
	"gpt-4.1":    {InputPerMillion: 2.00, OutputPerMillion: 8.00, CachedInputPerMillion: 0.50},
	"gpt-4o":     {InputPerMillion: 2.50, OutputPerMillion: 10.00, CachedInputPerMillion: 1.25},
	"o3":         {InputPerMillion: 2.00, OutputPerMillion: 8.00, CachedInputPerMillion: 0.50},
	"o4-mini":    {InputPerMillion: 1.10, OutputPerMillion: 4.40, CachedInputPerMillion: 0.275},

	"gemini-2.5-pro":        {InputPerMillion: 1.25, OutputPerMillion: 10.00},
	"gemini-2.5-flash":      {InputPerMillion: 0.30, OutputPerMillion: 2.50},
	"gemini-2.5-flash-lite": {InputPerMillion: 0.10, OutputPerMillion: 0.40},
}

// Lookup returns pricing for a model reference. Models served by Ollama run
// locally and are always free. Dated snapshot suffixes ("-20250929") fall
// back to the undated entry.
func Lookup(ref Ref) ChatPricing {
	if ref.Provider == ai.ProviderOllama {
		return ChatPricing{}
	}
	name := strings.ToLower(ref.Name)
	if p, ok := catalogue[name]; ok {
		return p
	}
	if i := strings.LastIndex(name, "-"); i > 0 && isDigits(name[i+1:]) && len(name)-i-1 == 8 {
		if p, ok := catalogue[name[:i]]; ok {
			return p
		}
	}
	return ChatPricing{}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
