package convo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleConstants(t *testing.T) {
	assert.Equal(t, Role("user"), RoleUser)
	assert.Equal(t, Role("assistant"), RoleAssistant)
	assert.Equal(t, Role("system"), RoleSystem)
	assert.Equal(t, Role("tool"), RoleTool)
}

func TestRoleValid(t *testing.T) {
	tests := []struct {
		role     Role
		expected bool
	}{
		{RoleUser, true},
		{RoleAssistant, true},
		{RoleSystem, true},
		{RoleTool, true},
		{Role("narrator"), false},
		{Role(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.role.Valid())
		})
	}
}

func TestTextContent(t *testing.T) {
	part := TextContent("Hello, world!")
	assert.Equal(t, ContentPart{Type: ContentPartTypeText, Text: "Hello, world!"}, part)
}

func TestMessage_WireShape(t *testing.T) {
	msg := NewUserMessage(TextContent("Read the docs"), TextContent(" then summarize"))

	data, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"role": "user",
		"content": [
			{"type": "text", "text": "Read the docs"},
			{"type": "text", "text": " then summarize"}
		]
	}`, string(data))
}

func TestMessage_Text(t *testing.T) {
	t.Run("concatenates text parts", func(t *testing.T) {
		msg := NewUserMessage(TextContent("a"), TextContent("b"))
		assert.Equal(t, "ab", msg.Text())
	})

	t.Run("empty message", func(t *testing.T) {
		assert.Empty(t, Message{Role: RoleAssistant}.Text())
	})
}

func TestMessage_String(t *testing.T) {
	t.Run("plain text", func(t *testing.T) {
		assert.Equal(t, "user: hi", NewUserMessage(TextContent("hi")).String())
	})

	t.Run("tool calls", func(t *testing.T) {
		msg := NewAssistantMessage("", ToolCall{ID: "c1", Name: "execute_bash", Arguments: `{"command":"ls"}`})
		assert.Equal(t, `assistant:  [call c1 execute_bash({"command":"ls"})]`, msg.String())
	})

	t.Run("tool results", func(t *testing.T) {
		msg := NewToolResultMessage(ToolResult{ToolCallID: "c1", Content: "boom", IsError: true})
		assert.Equal(t, "tool:  [result c1 error: boom]", msg.String())
	})
}

func TestNewAssistantMessage(t *testing.T) {
	t.Run("empty text has no parts", func(t *testing.T) {
		msg := NewAssistantMessage("")
		assert.Equal(t, RoleAssistant, msg.Role)
		assert.Empty(t, msg.Content)
	})

	t.Run("keeps tool calls", func(t *testing.T) {
		call := ToolCall{ID: "1", Name: "x"}
		msg := NewAssistantMessage("thinking", call)
		assert.Equal(t, "thinking", msg.Text())
		assert.Equal(t, []ToolCall{call}, msg.ToolCalls)
	})
}

func TestResponse_Message(t *testing.T) {
	resp := &Response{
		ID:        "resp-1",
		Content:   "done",
		ToolCalls: []ToolCall{{ID: "c", Name: "t"}},
	}
	msg := resp.Message()
	assert.Equal(t, "resp-1", msg.ID)
	assert.Equal(t, RoleAssistant, msg.Role)
	assert.Equal(t, "done", msg.Text())
	assert.Len(t, msg.ToolCalls, 1)
}

func TestUsage_Total(t *testing.T) {
	assert.Equal(t, 15, Usage{InputTokens: 10, OutputTokens: 5}.Total())
}

func TestGenerateMessageID(t *testing.T) {
	a := GenerateMessageID()
	b := GenerateMessageID()
	assert.Contains(t, a, "msg-")
	assert.NotEqual(t, a, b)
}

func TestNewSystemMessage(t *testing.T) {
	msg := NewSystemMessage("be brief")
	assert.Equal(t, RoleSystem, msg.Role)
	assert.Equal(t, "be brief", msg.Text())
}
