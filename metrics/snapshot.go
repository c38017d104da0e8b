package metrics

import (
	"encoding/json"
	"fmt"
	"time"
)

// Snapshot is a point-in-time copy of a session's metrics.
type Snapshot struct {
	ModelName             string       `json:"model_name"`
	AccumulatedCost       float64      `json:"accumulated_cost"`
	AccumulatedTokenUsage TokenUsage   `json:"accumulated_token_usage"`
	Costs                 []Cost       `json:"costs"`
	ResponseLatencies     []Latency    `json:"response_latencies"`
	TokenUsages           []TokenUsage `json:"token_usages"`
	Calls                 int          `json:"calls"`
}

// AverageLatency returns the mean call latency, or zero without calls.
func (s *Snapshot) AverageLatency() time.Duration {
	if len(s.ResponseLatencies) == 0 {
		return 0
	}
	var total time.Duration
	for _, l := range s.ResponseLatencies {
		total += l.Duration
	}
	return total / time.Duration(len(s.ResponseLatencies))
}

// String renders a one-line summary for logs.
func (s *Snapshot) String() string {
	if s == nil {
		return "<nil>"
	}
	u := s.AccumulatedTokenUsage
	return fmt.Sprintf(
		"model=%s calls=%d cost=$%.6f prompt_tokens=%d completion_tokens=%d cache_read_tokens=%d cache_write_tokens=%d context_window=%d avg_latency=%s",
		s.ModelName, s.Calls, s.AccumulatedCost,
		u.PromptTokens, u.CompletionTokens, u.CacheReadTokens, u.CacheWriteTokens, u.ContextWindow,
		s.AverageLatency().Round(time.Millisecond),
	)
}

// ModelDump renders the snapshot as a key to value mapping.
// Latencies are reported in seconds.
func (s *Snapshot) ModelDump() map[string]any {
	latencies := make([]map[string]any, len(s.ResponseLatencies))
	for i, l := range s.ResponseLatencies {
		latencies[i] = map[string]any{
			"model":       l.Model,
			"latency":     l.Duration.Seconds(),
			"response_id": l.ResponseID,
		}
	}
	costs := make([]map[string]any, len(s.Costs))
	for i, c := range s.Costs {
		costs[i] = map[string]any{
			"model":       c.Model,
			"cost":        c.USD,
			"response_id": c.ResponseID,
			"timestamp":   c.Timestamp.Unix(),
		}
	}
	usages := make([]map[string]any, len(s.TokenUsages))
	for i, u := range s.TokenUsages {
		usages[i] = usageDump(u)
	}

	return map[string]any{
		"model_name":              s.ModelName,
		"calls":                   s.Calls,
		"accumulated_cost":        s.AccumulatedCost,
		"accumulated_token_usage": usageDump(s.AccumulatedTokenUsage),
		"costs":                   costs,
		"response_latencies":      latencies,
		"token_usages":            usages,
	}
}

func usageDump(u TokenUsage) map[string]any {
	return map[string]any{
		"model":              u.Model,
		"prompt_tokens":      u.PromptTokens,
		"completion_tokens":  u.CompletionTokens,
		"cache_read_tokens":  u.CacheReadTokens,
		"cache_write_tokens": u.CacheWriteTokens,
		"context_window":     u.ContextWindow,
		"response_id":        u.ResponseID,
	}
}

// MarshalIndent renders ModelDump as indented JSON.
func (s *Snapshot) MarshalIndent() (string, error) {
	data, err := json.MarshalIndent(s.ModelDump(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("metrics: marshal snapshot: %w", err)
	}
	return string(data), nil
}
