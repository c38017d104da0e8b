package convo

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Role represents the role of a message sender in a conversation.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem, RoleTool:
		return true
	}
	return false
}

// ContentPartType identifies the kind of a content part.
type ContentPartType string

const (
	ContentPartTypeText ContentPartType = "text"
)

// ContentPart is a single typed piece of message content.
type ContentPart struct {
	Type ContentPartType `json:"type"`
	Text string          `json:"text,omitempty"`
}

// TextContent creates a text content part.
func TextContent(text string) ContentPart {
	return ContentPart{Type: ContentPartTypeText, Text: text}
}

// Message represents a single message in a conversation.
//
// The JSON encoding matches the wire shape models consume:
// {"role": "...", "content": [{"type": "text", "text": "..."}]}.
type Message struct {
	// ID is an optional unique identifier for the message.
	ID      string        `json:"id,omitempty"`
	Role    Role          `json:"role"`
	Content []ContentPart `json:"content"`
	// ToolCalls contains tool invocation requests from an assistant message.
	ToolCalls []ToolCall `json:"toolCalls,omitempty"`
	// ToolResults contains results from tool executions.
	// Only populated when Role is RoleTool.
	ToolResults []ToolResult `json:"toolResults,omitempty"`
}

// NewUserMessage builds a user message from content parts.
func NewUserMessage(parts ...ContentPart) Message {
	return Message{Role: RoleUser, Content: parts}
}

// NewSystemMessage builds a system message holding a single text part.
func NewSystemMessage(text string) Message {
	return Message{Role: RoleSystem, Content: []ContentPart{TextContent(text)}}
}

// NewAssistantMessage builds an assistant message. Empty text yields no content parts.
func NewAssistantMessage(text string, calls ...ToolCall) Message {
	m := Message{Role: RoleAssistant, ToolCalls: calls}
	if text != "" {
		m.Content = []ContentPart{TextContent(text)}
	}
	return m
}

// GenerateMessageID creates a unique message identifier.
func GenerateMessageID() string {
	return "msg-" + uuid.New().String()
}

// Text concatenates the text of all text parts.
func (m Message) Text() string {
	var b strings.Builder
	for _, p := range m.Content {
		if p.Type == ContentPartTypeText {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

// String renders the message for logs.
func (m Message) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", m.Role, m.Text())
	for _, tc := range m.ToolCalls {
		fmt.Fprintf(&b, " [call %s %s(%s)]", tc.ID, tc.Name, tc.Arguments)
	}
	for _, tr := range m.ToolResults {
		status := "ok"
		if tr.IsError {
			status = "error"
		}
		fmt.Fprintf(&b, " [result %s %s: %s]", tr.ToolCallID, status, tr.Content)
	}
	return b.String()
}

// Response represents a complete response from a chat provider.
type Response struct {
	ID           string `json:"id,omitempty"`
	Model        string `json:"model,omitempty"`
	Content      string `json:"content,omitempty"`
	FinishReason string `json:"finishReason,omitempty"`
	Usage        Usage  `json:"usage"`
	// ToolCalls contains any tool invocation requests from the model.
	ToolCalls []ToolCall `json:"toolCalls,omitempty"`
}

// Message converts the response into the assistant message it represents.
func (r *Response) Message() Message {
	m := NewAssistantMessage(r.Content, r.ToolCalls...)
	m.ID = r.ID
	return m
}

// Usage contains token usage information for a request.
type Usage struct {
	InputTokens      int `json:"inputTokens"`
	OutputTokens     int `json:"outputTokens"`
	CacheReadTokens  int `json:"cacheReadTokens,omitempty"`
	CacheWriteTokens int `json:"cacheWriteTokens,omitempty"`
}

// Total returns input plus output tokens.
func (u Usage) Total() int {
	return u.InputTokens + u.OutputTokens
}
