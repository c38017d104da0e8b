package metrics

import (
	"sync"
	"time"

	ai "github.com/spetersoncode/convo"
)

// Cost is the price of a single model call.
type Cost struct {
	Model      string    `json:"model"`
	USD        float64   `json:"cost"`
	ResponseID string    `json:"response_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Latency is the wall-clock duration of a single model call.
type Latency struct {
	Model      string        `json:"model"`
	Duration   time.Duration `json:"latency"`
	ResponseID string        `json:"response_id,omitempty"`
}

// TokenUsage counts tokens for one call, or accumulated across calls.
type TokenUsage struct {
	Model            string `json:"model"`
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	CacheReadTokens  int    `json:"cache_read_tokens"`
	CacheWriteTokens int    `json:"cache_write_tokens"`
	// ContextWindow is the largest prompt seen, a proxy for context pressure.
	ContextWindow int    `json:"context_window"`
	ResponseID    string `json:"response_id,omitempty"`
}

// Total returns prompt plus completion tokens.
func (u TokenUsage) Total() int {
	return u.PromptTokens + u.CompletionTokens
}

func (u *TokenUsage) add(o TokenUsage) {
	u.PromptTokens += o.PromptTokens
	u.CompletionTokens += o.CompletionTokens
	u.CacheReadTokens += o.CacheReadTokens
	u.CacheWriteTokens += o.CacheWriteTokens
	u.ContextWindow = max(u.ContextWindow, o.ContextWindow)
}

// Metrics is the mutable accumulator owned by a model client.
type Metrics struct {
	mu          sync.Mutex
	model       string
	cost        float64
	usage       TokenUsage
	costs       []Cost
	latencies   []Latency
	tokenUsages []TokenUsage
	calls       int
}

// New creates an empty accumulator for model.
func New(model string) *Metrics {
	return &Metrics{model: model, usage: TokenUsage{Model: model}}
}

// Record adds one completed model call.
func (m *Metrics) Record(responseID string, usage ai.Usage, usd float64, latency time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	m.calls++
	if usd > 0 {
		m.cost += usd
		m.costs = append(m.costs, Cost{Model: m.model, USD: usd, ResponseID: responseID, Timestamp: now})
	}
	m.latencies = append(m.latencies, Latency{Model: m.model, Duration: latency, ResponseID: responseID})

	tu := TokenUsage{
		Model:            m.model,
		PromptTokens:     usage.InputTokens,
		CompletionTokens: usage.OutputTokens,
		CacheReadTokens:  usage.CacheReadTokens,
		CacheWriteTokens: usage.CacheWriteTokens,
		ContextWindow:    usage.InputTokens,
		ResponseID:       responseID,
	}
	m.tokenUsages = append(m.tokenUsages, tu)
	m.usage.add(tu)
}

// Calls returns the number of recorded calls.
func (m *Metrics) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Snapshot returns a deep copy of the accumulated totals.
func (m *Metrics) Snapshot() *Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return &Snapshot{
		ModelName:             m.model,
		AccumulatedCost:       m.cost,
		AccumulatedTokenUsage: m.usage,
		Costs:                 append([]Cost(nil), m.costs...),
		ResponseLatencies:     append([]Latency(nil), m.latencies...),
		TokenUsages:           append([]TokenUsage(nil), m.tokenUsages...),
		Calls:                 m.calls,
	}
}

// Reset discards everything recorded so far.
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cost = 0
	m.usage = TokenUsage{Model: m.model}
	m.costs = nil
	m.latencies = nil
	m.tokenUsages = nil
	m.calls = 0
}
