package agui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"

	ai "github.com/spetersoncode/convo"
	"github.com/spetersoncode/convo/event"
)

func types(evs []events.Event) []events.EventType {
	out := make([]events.EventType, len(evs))
	for i, ev := range evs {
		out[i] = ev.Type()
	}
	return out
}

func assertTypes(t *testing.T, got []events.Event, want ...events.EventType) {
	t.Helper()
	gotTypes := types(got)
	if len(gotTypes) != len(want) {
		t.Fatalf("expected %v, got %v", want, gotTypes)
	}
	for i := range want {
		if gotTypes[i] != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], gotTypes[i])
		}
	}
}

func TestNewMapper(t *testing.T) {
	m := NewMapper("thread-123", "run-456")
	if m.ThreadID() != "thread-123" || m.RunID() != "run-456" {
		t.Errorf("unexpected IDs %q %q", m.ThreadID(), m.RunID())
	}

	generated := NewMapper("", "")
	if generated.ThreadID() == "" || generated.RunID() == "" {
		t.Error("expected generated IDs")
	}
}

func TestMapper_StateUpdates(t *testing.T) {
	m := NewMapper("thread-1", "run-1")

	assertTypes(t, m.Map(event.NewStateUpdate("running", 0, "")), events.EventTypeRunStarted)
	if m.RunID() != "run-1" {
		t.Errorf("first run should keep run ID, got %q", m.RunID())
	}
	assertTypes(t, m.Map(event.NewStateUpdate("finished", 2, "")), events.EventTypeRunFinished)

	assertTypes(t, m.Map(event.NewStateUpdate("running", 2, "")), events.EventTypeRunStarted)
	if m.RunID() == "run-1" {
		t.Error("expected a new run ID for the second run")
	}
	assertTypes(t, m.Map(event.NewStateUpdate("error", 3, "boom")), events.EventTypeRunError)
	assertTypes(t, m.Map(event.NewStateUpdate("idle", 3, "")))
}

func TestMapper_Messages(t *testing.T) {
	m := NewMapper("t", "r")

	assertTypes(t, m.Map(event.NewSystemPrompt("sys", nil)))
	assertTypes(t, m.Map(event.NewUserMessage(ai.NewUserMessage(ai.TextContent("hi")))))
	assertTypes(t, m.Map(event.NewAgentMessage(ai.NewAssistantMessage("done"), nil)),
		events.EventTypeTextMessageStart, events.EventTypeTextMessageContent, events.EventTypeTextMessageEnd)
	assertTypes(t, m.Map(event.NewAgentMessage(ai.NewAssistantMessage(""), nil)),
		events.EventTypeTextMessageStart, events.EventTypeTextMessageEnd)
}

func TestMapper_ToolCalls(t *testing.T) {
	m := NewMapper("t", "r")
	call := ai.ToolCall{ID: "call-1", Name: "fetch", Arguments: `{"url":"https://example.com"}`}

	assertTypes(t, m.Map(event.NewAction(call, "resp", "", nil)),
		events.EventTypeToolCallStart, events.EventTypeToolCallArgs, events.EventTypeToolCallEnd)
	assertTypes(t, m.Map(event.NewAction(call, "resp", "fetching the page", nil)),
		events.EventTypeTextMessageStart, events.EventTypeTextMessageContent, events.EventTypeTextMessageEnd,
		events.EventTypeToolCallStart, events.EventTypeToolCallArgs, events.EventTypeToolCallEnd)

	assertTypes(t, m.Map(event.NewObservation(ai.ToolResult{ToolCallID: "call-1", Content: "<html>"}, "fetch")),
		events.EventTypeToolCallResult)
	assertTypes(t, m.Map(event.NewUserReject(call, "no")), events.EventTypeToolCallResult)
	assertTypes(t, m.Map(event.NewAgentError(call, "bad")), events.EventTypeToolCallResult)
	assertTypes(t, m.Map(event.NewAgentError(ai.ToolCall{}, "bad")),
		events.EventTypeTextMessageStart, events.EventTypeTextMessageContent, events.EventTypeTextMessageEnd)
}

func TestCallbackWritesSSE(t *testing.T) {
	var buf bytes.Buffer
	cb := NewCallback(&buf, "thread-9", nil)

	cb(event.NewStateUpdate("running", 0, ""))
	cb(event.NewAgentMessage(ai.NewAssistantMessage("hello"), nil))
	cb(event.NewStateUpdate("finished", 1, ""))

	out := buf.String()
	frames := strings.Split(strings.TrimSuffix(out, "\n\n"), "\n\n")
	if len(frames) != 5 {
		t.Fatalf("expected 5 SSE frames, got %d:\n%s", len(frames), out)
	}
	if !strings.HasPrefix(frames[0], "event: "+string(events.EventTypeRunStarted)+"\ndata: {") {
		t.Errorf("unexpected first frame %q", frames[0])
	}
	if !strings.Contains(frames[2], `"delta":"hello"`) {
		t.Errorf("expected content delta in %q", frames[2])
	}
	if !strings.Contains(out, `"threadId":"thread-9"`) {
		t.Errorf("expected thread ID in output")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestSSEWriterError(t *testing.T) {
	w := NewSSEWriter(failingWriter{})
	if err := w.Write(NewMapper("t", "r").RunStarted()); err == nil {
		t.Error("expected write error")
	}
}
