package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	ai "github.com/spetersoncode/convo"
	"github.com/spetersoncode/convo/event"
	"github.com/spetersoncode/convo/metrics"
	"github.com/spetersoncode/convo/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLLM returns queued responses and records what it was sent.
type mockLLM struct {
	responses []*ai.Response
	errs      []error
	calls     int
	seen      [][]ai.Message
	lastOpts  ai.Options
	metrics   *metrics.Metrics
}

func newMockLLM(responses ...*ai.Response) *mockLLM {
	return &mockLLM{responses: responses, metrics: metrics.New("mock/model")}
}

func (m *mockLLM) Chat(ctx context.Context, messages []ai.Message, opts ...ai.Option) (*ai.Response, error) {
	i := m.calls
	m.calls++
	m.seen = append(m.seen, messages)
	m.lastOpts = *ai.ApplyOptions(opts...)
	if i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}
	if i >= len(m.responses) {
		return &ai.Response{ID: "done", Content: "No more responses"}, nil
	}
	resp := m.responses[i]
	m.metrics.Record(resp.ID, resp.Usage, 0, time.Millisecond)
	return resp, nil
}

func (m *mockLLM) Metrics() (*metrics.Snapshot, error) {
	if m.metrics.Calls() == 0 {
		return nil, errors.New("no metrics yet")
	}
	return m.metrics.Snapshot(), nil
}

type textArgs struct {
	Text string `json:"text"`
}

func echoRegistry() *tool.Registry {
	return tool.NewRegistry(
		tool.Func("echo", "Echo text", func(ctx context.Context, args textArgs) (string, error) {
			return "echo: " + args.Text, nil
		}),
		tool.Func("fail", "Always fails", func(ctx context.Context, args textArgs) (string, error) {
			return "", errors.New("tool broke")
		}),
	)
}

func collect() (*[]event.Event, func(event.Event)) {
	var out []event.Event
	return &out, func(ev event.Event) { out = append(out, ev) }
}

func userHistory(text string) []event.Event {
	return []event.Event{
		event.NewSystemPrompt("sys", nil),
		event.NewUserMessage(ai.NewUserMessage(ai.TextContent(text))),
	}
}

func TestStepFinalMessage(t *testing.T) {
	llm := newMockLLM(&ai.Response{ID: "r1", Content: "all done", Usage: ai.Usage{InputTokens: 12, OutputTokens: 3}})
	a := New(llm, echoRegistry())

	emitted, emit := collect()
	finished, err := a.Step(context.Background(), userHistory("hi"), emit)
	require.NoError(t, err)
	assert.True(t, finished)

	require.Len(t, *emitted, 1)
	msg, ok := (*emitted)[0].(*event.Message)
	require.True(t, ok)
	assert.Equal(t, event.SourceAgent, msg.Source())
	assert.Equal(t, "all done", msg.Message.Text())
	require.NotNil(t, msg.Metrics())
	assert.Equal(t, 1, msg.Metrics().Calls)

	require.Len(t, llm.seen, 1)
	assert.Len(t, llm.seen[0], 2)
	require.Len(t, llm.lastOpts.Tools, 2)
	assert.Equal(t, "echo", llm.lastOpts.Tools[0].Name)
}

func TestStepToolCalls(t *testing.T) {
	llm := newMockLLM(&ai.Response{
		ID:      "r1",
		Content: "running tools",
		ToolCalls: []ai.ToolCall{
			{ID: "c1", Name: "echo", Arguments: `{"text":"a"}`},
			{ID: "c2", Name: "fail", Arguments: `{}`},
			{ID: "c3", Name: "missing", Arguments: `{}`},
		},
	})
	a := New(llm, echoRegistry())

	emitted, emit := collect()
	finished, err := a.Step(context.Background(), userHistory("go"), emit)
	require.NoError(t, err)
	assert.False(t, finished)

	evs := *emitted
	require.Len(t, evs, 6)

	for i := 0; i < 3; i++ {
		act, ok := evs[i].(*event.Action)
		require.True(t, ok, "event %d", i)
		assert.Equal(t, "r1", act.ResponseID)
	}
	first := evs[0].(*event.Action)
	assert.Equal(t, "running tools", first.Thought)
	assert.NotNil(t, first.Metrics())
	assert.Nil(t, evs[1].(*event.Action).Metrics())

	obs, ok := evs[3].(*event.Observation)
	require.True(t, ok)
	assert.Equal(t, "echo: a", obs.Content)
	assert.False(t, obs.IsError)

	failed, ok := evs[4].(*event.Observation)
	require.True(t, ok)
	assert.True(t, failed.IsError)
	assert.Equal(t, "tool broke", failed.Content)

	agentErr, ok := evs[5].(*event.AgentError)
	require.True(t, ok)
	assert.Equal(t, "c3", agentErr.ToolCallID)
	assert.Contains(t, agentErr.Detail, "echo, fail")
}

func TestStepBuildsContextFromHistory(t *testing.T) {
	llm := newMockLLM(
		&ai.Response{ID: "r1", ToolCalls: []ai.ToolCall{
			{ID: "c1", Name: "echo", Arguments: `{"text":"1"}`},
			{ID: "c2", Name: "echo", Arguments: `{"text":"2"}`},
		}},
		&ai.Response{ID: "r2", Content: "finished"},
	)
	a := New(llm, echoRegistry())

	history := userHistory("two echoes")
	emit := func(ev event.Event) { history = append(history, ev) }

	finished, err := a.Step(context.Background(), history, emit)
	require.NoError(t, err)
	require.False(t, finished)

	finished, err = a.Step(context.Background(), history, emit)
	require.NoError(t, err)
	require.True(t, finished)

	second := llm.seen[1]
	require.Len(t, second, 5)
	assert.Equal(t, ai.RoleAssistant, second[2].Role)
	assert.Len(t, second[2].ToolCalls, 2)
	assert.Equal(t, ai.RoleTool, second[3].Role)
	assert.Equal(t, ai.RoleTool, second[4].Role)
}

func TestStepGeneratesResponseID(t *testing.T) {
	llm := newMockLLM(&ai.Response{ToolCalls: []ai.ToolCall{
		{ID: "c1", Name: "echo"}, {ID: "c2", Name: "echo"},
	}})
	a := New(llm, echoRegistry())

	emitted, emit := collect()
	_, err := a.Step(context.Background(), userHistory("x"), emit)
	require.NoError(t, err)

	first := (*emitted)[0].(*event.Action)
	second := (*emitted)[1].(*event.Action)
	assert.NotEmpty(t, first.ResponseID)
	assert.Equal(t, first.ResponseID, second.ResponseID)
}

func TestStepModelError(t *testing.T) {
	llm := newMockLLM()
	llm.errs = []error{ai.NewPermanentError("unauthorized", 401, nil)}
	a := New(llm, nil)

	emitted, emit := collect()
	finished, err := a.Step(context.Background(), userHistory("hi"), emit)
	assert.False(t, finished)
	require.Error(t, err)
	assert.True(t, ai.IsPermanent(err))
	assert.Empty(t, *emitted)
	assert.Empty(t, llm.lastOpts.Tools)
}

func TestStepApproval(t *testing.T) {
	newLLM := func() *mockLLM {
		return newMockLLM(&ai.Response{ID: "r1", ToolCalls: []ai.ToolCall{
			{ID: "c1", Name: "echo", Arguments: `{"text":"x"}`},
			{ID: "c2", Name: "fail", Arguments: `{}`},
		}})
	}

	t.Run("deny listed tool", func(t *testing.T) {
		a := New(newLLM(), echoRegistry(), WithApprover(DenyTools("not allowed", "echo")))
		emitted, emit := collect()
		_, err := a.Step(context.Background(), userHistory("x"), emit)
		require.NoError(t, err)

		rej, ok := (*emitted)[2].(*event.UserReject)
		require.True(t, ok)
		assert.Equal(t, "not allowed", rej.Reason)
		_, ok = (*emitted)[3].(*event.Observation)
		assert.True(t, ok)
	})

	t.Run("approval limited to named tools", func(t *testing.T) {
		var asked []string
		approver := func(ctx context.Context, call ai.ToolCall) (bool, string) {
			asked = append(asked, call.Name)
			return false, "no"
		}
		a := New(newLLM(), echoRegistry(), WithApprover(approver), WithApprovalRequired("fail"))
		emitted, emit := collect()
		_, err := a.Step(context.Background(), userHistory("x"), emit)
		require.NoError(t, err)

		assert.Equal(t, []string{"fail"}, asked)
		_, ok := (*emitted)[2].(*event.Observation)
		assert.True(t, ok)
		_, ok = (*emitted)[3].(*event.UserReject)
		assert.True(t, ok)
	})
}

func TestHandlerTimeout(t *testing.T) {
	slow := tool.Func("slow", "Waits", func(ctx context.Context, args textArgs) (string, error) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(5 * time.Second):
			return "late", nil
		}
	})
	llm := newMockLLM(&ai.Response{ID: "r1", ToolCalls: []ai.ToolCall{{ID: "c1", Name: "slow"}}})
	a := New(llm, tool.NewRegistry(slow), WithHandlerTimeout(20*time.Millisecond))

	emitted, emit := collect()
	_, err := a.Step(context.Background(), userHistory("x"), emit)
	require.NoError(t, err)

	obs := (*emitted)[1].(*event.Observation)
	assert.True(t, obs.IsError)
	assert.Contains(t, obs.Content, "deadline exceeded")
}

func TestSystemPrompt(t *testing.T) {
	a := New(newMockLLM(), echoRegistry())
	sp := a.SystemPrompt()
	assert.Equal(t, DefaultSystemPrompt, sp.Prompt)
	assert.Len(t, sp.Tools, 2)

	custom := New(newMockLLM(), nil, WithSystemPrompt("be brief"))
	assert.Equal(t, "be brief", custom.SystemPrompt().Prompt)
	assert.Empty(t, custom.SystemPrompt().Tools)
}
