package agent

import (
	"context"
	"fmt"
	"strings"

	ai "github.com/spetersoncode/convo"
	"github.com/spetersoncode/convo/event"
	"github.com/spetersoncode/convo/metrics"
	"github.com/spetersoncode/convo/tool"
)

// LLM is the model client an agent reasons with. *client.Client satisfies it.
type LLM interface {
	Chat(ctx context.Context, messages []ai.Message, opts ...ai.Option) (*ai.Response, error)
	Metrics() (*metrics.Snapshot, error)
}

// Agent decides the next actions of a conversation and runs them against
// its tool registry.
type Agent struct {
	llm      LLM
	registry *tool.Registry
	opts     *Options
}

// New creates an agent. A nil registry means the agent has no tools.
func New(llm LLM, registry *tool.Registry, opts ...Option) *Agent {
	if registry == nil {
		registry = tool.NewRegistry()
	}
	return &Agent{
		llm:      llm,
		registry: registry,
		opts:     applyOptions(opts...),
	}
}

// Registry returns the agent's tools.
func (a *Agent) Registry() *tool.Registry { return a.registry }

// Metrics returns the model client's session metrics.
func (a *Agent) Metrics() (*metrics.Snapshot, error) { return a.llm.Metrics() }

// SystemPrompt returns the event that opens a conversation with this agent.
func (a *Agent) SystemPrompt() *event.SystemPrompt {
	return event.NewSystemPrompt(a.opts.SystemPrompt, a.registry.Tools())
}

// Step performs one model call over history and emits what follows from it.
//
// A reply without tool calls is emitted as an agent message and finishes the
// turn. Otherwise one action is emitted per tool call, then each call runs in
// order and its outcome is emitted: an observation, a rejection, or an agent
// error for a tool that does not exist. Only a failed model call returns an
// error.
func (a *Agent) Step(ctx context.Context, history []event.Event, emit func(event.Event)) (finished bool, err error) {
	messages := event.LLMMessages(history)

	opts := a.opts.ChatOptions
	if tools := a.registry.Tools(); len(tools) > 0 {
		opts = append([]ai.Option{ai.WithTools(tools)}, opts...)
	}

	resp, err := a.llm.Chat(ctx, messages, opts...)
	if err != nil {
		return false, fmt.Errorf("agent: model call: %w", err)
	}
	if resp == nil {
		return false, ErrNilResponse
	}
	snap := a.snapshot()

	if len(resp.ToolCalls) == 0 {
		emit(event.NewAgentMessage(resp.Message(), snap))
		return true, nil
	}

	responseID := resp.ID
	if responseID == "" {
		responseID = ai.GenerateMessageID()
	}
	for i, call := range resp.ToolCalls {
		if i == 0 {
			emit(event.NewAction(call, responseID, resp.Content, snap))
			continue
		}
		emit(event.NewAction(call, responseID, "", nil))
	}

	for _, call := range resp.ToolCalls {
		emit(a.execute(ctx, call))
	}
	return false, nil
}

// execute runs one tool call and returns the event describing its outcome.
func (a *Agent) execute(ctx context.Context, call ai.ToolCall) event.Event {
	if _, ok := a.registry.GetTool(call.Name); !ok {
		return event.NewAgentError(call, fmt.Sprintf("Tool %q not found. Available tools: %s",
			call.Name, strings.Join(a.registry.Names(), ", ")))
	}

	if a.requiresApproval(call.Name) {
		if approved, reason := a.opts.Approver(ctx, call); !approved {
			return event.NewUserReject(call, reason)
		}
	}

	execCtx := ctx
	if a.opts.HandlerTimeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, a.opts.HandlerTimeout)
		defer cancel()
	}

	result, err := a.registry.Execute(execCtx, call)
	if err != nil {
		return event.NewAgentError(call, err.Error())
	}
	return event.NewObservation(result, call.Name)
}

// snapshot returns the current metrics, or nil if the client has none yet.
func (a *Agent) snapshot() *metrics.Snapshot {
	snap, err := a.llm.Metrics()
	if err != nil {
		return nil
	}
	return snap
}
