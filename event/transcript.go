package event

import ai "github.com/spetersoncode/convo"

// LLMMessages builds the model transcript from an event history.
// Non-convertible events are skipped. Consecutive actions from the same
// model response collapse into one assistant message, which is how the
// provider sent them.
func LLMMessages(events []Event) []ai.Message {
	var out []ai.Message
	lastResponse := ""

	for _, ev := range events {
		conv, ok := ev.(LLMConvertible)
		if !ok {
			continue
		}
		if act, ok := ev.(*Action); ok && act.ResponseID != "" {
			if act.ResponseID == lastResponse && len(out) > 0 {
				prev := &out[len(out)-1]
				prev.ToolCalls = append(prev.ToolCalls, act.ToolCall)
				continue
			}
			lastResponse = act.ResponseID
			out = append(out, act.ToLLMMessage())
			continue
		}
		lastResponse = ""
		out = append(out, conv.ToLLMMessage())
	}
	return out
}
