package event

import (
	"fmt"

	ai "github.com/spetersoncode/convo"
	"github.com/spetersoncode/convo/metrics"
)

// SystemPrompt opens a conversation with the agent's instructions and the
// tools it was offered.
type SystemPrompt struct {
	Base
	Prompt string    `json:"prompt"`
	Tools  []ai.Tool `json:"tools,omitempty"`
}

// NewSystemPrompt creates a system prompt event.
func NewSystemPrompt(prompt string, tools []ai.Tool) *SystemPrompt {
	return &SystemPrompt{Base: newBase(SourceAgent), Prompt: prompt, Tools: tools}
}

func (e *SystemPrompt) Kind() Kind { return KindSystemPrompt }

func (e *SystemPrompt) ToLLMMessage() ai.Message {
	return ai.NewSystemMessage(e.Prompt)
}

// Message is a chat message from the user or a final reply from the agent.
type Message struct {
	Base
	Message  ai.Message        `json:"message"`
	Snapshot *metrics.Snapshot `json:"metrics,omitempty"`
}

// NewUserMessage wraps a user message.
func NewUserMessage(msg ai.Message) *Message {
	return &Message{Base: newBase(SourceUser), Message: msg}
}

// NewAgentMessage wraps an agent reply with the metrics at the time it was produced.
func NewAgentMessage(msg ai.Message, snap *metrics.Snapshot) *Message {
	return &Message{Base: newBase(SourceAgent), Message: msg, Snapshot: snap}
}

func (e *Message) Kind() Kind                 { return KindMessage }
func (e *Message) ToLLMMessage() ai.Message   { return e.Message }
func (e *Message) Metrics() *metrics.Snapshot { return e.Snapshot }

// Action is a tool call the agent decided to make. Calls produced by one
// model response share a ResponseID.
type Action struct {
	Base
	ToolCall   ai.ToolCall       `json:"tool_call"`
	ResponseID string            `json:"response_id"`
	Thought    string            `json:"thought,omitempty"`
	Snapshot   *metrics.Snapshot `json:"metrics,omitempty"`
}

// NewAction creates an action event.
func NewAction(call ai.ToolCall, responseID, thought string, snap *metrics.Snapshot) *Action {
	return &Action{Base: newBase(SourceAgent), ToolCall: call, ResponseID: responseID, Thought: thought, Snapshot: snap}
}

func (e *Action) Kind() Kind                 { return KindAction }
func (e *Action) Metrics() *metrics.Snapshot { return e.Snapshot }

func (e *Action) ToLLMMessage() ai.Message {
	return ai.NewAssistantMessage(e.Thought, e.ToolCall)
}

// Observation is the result of executing an action.
type Observation struct {
	Base
	ToolCallID string `json:"tool_call_id"`
	ToolName   string `json:"tool_name"`
	Content    string `json:"content"`
	IsError    bool   `json:"is_error,omitempty"`
}

// NewObservation creates an observation event.
func NewObservation(result ai.ToolResult, toolName string) *Observation {
	return &Observation{
		Base:       newBase(SourceEnvironment),
		ToolCallID: result.ToolCallID,
		ToolName:   toolName,
		Content:    result.Content,
		IsError:    result.IsError,
	}
}

func (e *Observation) Kind() Kind { return KindObservation }

func (e *Observation) ToLLMMessage() ai.Message {
	return ai.NewToolResultMessage(ai.ToolResult{
		ToolCallID: e.ToolCallID,
		Name:       e.ToolName,
		Content:    e.Content,
		IsError:    e.IsError,
	})
}

// UserReject records that an action was refused before it ran.
type UserReject struct {
	Base
	ToolCallID string `json:"tool_call_id"`
	ToolName   string `json:"tool_name"`
	Reason     string `json:"reason,omitempty"`
}

// NewUserReject creates a rejection event.
func NewUserReject(call ai.ToolCall, reason string) *UserReject {
	return &UserReject{Base: newBase(SourceUser), ToolCallID: call.ID, ToolName: call.Name, Reason: reason}
}

func (e *UserReject) Kind() Kind { return KindUserReject }

func (e *UserReject) ToLLMMessage() ai.Message {
	content := "The user rejected this action."
	if e.Reason != "" {
		content = fmt.Sprintf("The user rejected this action: %s", e.Reason)
	}
	return ai.NewToolResultMessage(ai.ToolResult{
		ToolCallID: e.ToolCallID,
		Name:       e.ToolName,
		Content:    content,
		IsError:    true,
	})
}

// AgentError reports a recoverable agent mistake, such as calling a tool
// that does not exist. It is shown to the model so it can correct itself.
type AgentError struct {
	Base
	ToolCallID string `json:"tool_call_id,omitempty"`
	ToolName   string `json:"tool_name,omitempty"`
	Detail     string `json:"error"`
}

// NewAgentError creates an agent error event. call may be zero when the
// error is not tied to a tool call.
func NewAgentError(call ai.ToolCall, detail string) *AgentError {
	return &AgentError{Base: newBase(SourceAgent), ToolCallID: call.ID, ToolName: call.Name, Detail: detail}
}

func (e *AgentError) Kind() Kind { return KindAgentError }

func (e *AgentError) ToLLMMessage() ai.Message {
	if e.ToolCallID == "" {
		return ai.NewUserMessage(ai.TextContent("Error: " + e.Detail))
	}
	return ai.NewToolResultMessage(ai.ToolResult{
		ToolCallID: e.ToolCallID,
		Name:       e.ToolName,
		Content:    e.Detail,
		IsError:    true,
	})
}

// StateUpdate records a conversation status change. It is bookkeeping only
// and never reaches the model.
type StateUpdate struct {
	Base
	Status    string `json:"status"`
	Iteration int    `json:"iteration"`
	Reason    string `json:"reason,omitempty"`
}

// NewStateUpdate creates a state update event.
func NewStateUpdate(status string, iteration int, reason string) *StateUpdate {
	return &StateUpdate{Base: newBase(SourceEnvironment), Status: status, Iteration: iteration, Reason: reason}
}

func (e *StateUpdate) Kind() Kind { return KindStateUpdate }

var (
	_ LLMConvertible = (*SystemPrompt)(nil)
	_ LLMConvertible = (*Message)(nil)
	_ MetricsCarrier = (*Message)(nil)
	_ LLMConvertible = (*Action)(nil)
	_ MetricsCarrier = (*Action)(nil)
	_ LLMConvertible = (*Observation)(nil)
	_ LLMConvertible = (*UserReject)(nil)
	_ LLMConvertible = (*AgentError)(nil)
	_ Event          = (*StateUpdate)(nil)
)
