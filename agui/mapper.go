package agui

import (
	"fmt"

	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"

	"github.com/spetersoncode/convo/event"
)

// RoleAssistant is the AG-UI role for agent text messages.
const RoleAssistant = "assistant"

// Mapper converts conversation events to AG-UI events. Each "running"
// state update starts a new run ID. A Mapper is not safe for concurrent use.
type Mapper struct {
	threadID string
	runID    string
}

// NewMapper creates a mapper for one conversation thread. Empty IDs are generated.
func NewMapper(threadID, runID string) *Mapper {
	if threadID == "" {
		threadID = events.GenerateThreadID()
	}
	if runID == "" {
		runID = events.GenerateRunID()
	}
	return &Mapper{threadID: threadID, runID: runID}
}

// ThreadID returns the thread ID.
func (m *Mapper) ThreadID() string { return m.threadID }

// RunID returns the current run ID.
func (m *Mapper) RunID() string { return m.runID }

// RunStarted returns a RUN_STARTED event.
func (m *Mapper) RunStarted() events.Event {
	return events.NewRunStartedEvent(m.threadID, m.runID)
}

// RunFinished returns a RUN_FINISHED event.
func (m *Mapper) RunFinished() events.Event {
	return events.NewRunFinishedEvent(m.threadID, m.runID)
}

// RunError returns a RUN_ERROR event.
func (m *Mapper) RunError(msg string) events.Event {
	if msg == "" {
		msg = "unknown error"
	}
	return events.NewRunErrorEvent(msg)
}

// Map converts one conversation event. System prompts and user messages are
// inputs to a run and have no AG-UI output.
func (m *Mapper) Map(ev event.Event) []events.Event {
	switch e := ev.(type) {
	case *event.StateUpdate:
		switch e.Status {
		case "running":
			if e.Iteration > 0 {
				m.runID = events.GenerateRunID()
			}
			return []events.Event{m.RunStarted()}
		case "finished":
			return []events.Event{m.RunFinished()}
		case "error":
			return []events.Event{m.RunError(e.Reason)}
		}
		return nil

	case *event.Message:
		if e.Source() != event.SourceAgent {
			return nil
		}
		return textMessage(e.ID(), e.Message.Text())

	case *event.Action:
		var out []events.Event
		if e.Thought != "" {
			out = textMessage(e.ID(), e.Thought)
		}
		out = append(out, events.NewToolCallStartEvent(e.ToolCall.ID, e.ToolCall.Name))
		if e.ToolCall.Arguments != "" {
			out = append(out, events.NewToolCallArgsEvent(e.ToolCall.ID, e.ToolCall.Arguments))
		}
		return append(out, events.NewToolCallEndEvent(e.ToolCall.ID))

	case *event.Observation:
		return []events.Event{events.NewToolCallResultEvent(e.ID(), e.ToolCallID, e.Content)}

	case *event.UserReject:
		return []events.Event{events.NewToolCallResultEvent(e.ID(), e.ToolCallID, fmt.Sprintf("rejected: %s", e.Reason))}

	case *event.AgentError:
		if e.ToolCallID == "" {
			return textMessage(e.ID(), "Error: "+e.Detail)
		}
		return []events.Event{events.NewToolCallResultEvent(e.ID(), e.ToolCallID, e.Detail)}
	}
	return nil
}

// textMessage emits start, content and end. Content is omitted when empty
// because AG-UI rejects empty deltas.
func textMessage(id, text string) []events.Event {
	out := []events.Event{events.NewTextMessageStartEvent(id, events.WithRole(RoleAssistant))}
	if text != "" {
		out = append(out, events.NewTextMessageContentEvent(id, text))
	}
	return append(out, events.NewTextMessageEndEvent(id))
}
