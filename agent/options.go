package agent

import (
	"context"
	"time"

	ai "github.com/spetersoncode/convo"
)

// DefaultSystemPrompt is used when no system prompt is configured.
const DefaultSystemPrompt = "You are a helpful assistant that can interact with a computer to solve tasks. " +
	"Use the available tools to inspect and change files, run commands and fetch information. " +
	"When the task is complete, reply with a short summary and no tool calls."

// ApproverFunc decides whether a tool call may run. Returning false rejects
// the call; the reason is shown to the model.
type ApproverFunc func(ctx context.Context, call ai.ToolCall) (approved bool, reason string)

// Options configures an Agent.
type Options struct {
	// SystemPrompt opens every conversation the agent takes part in.
	SystemPrompt string

	// HandlerTimeout bounds each tool handler. Zero means no limit.
	// Default is 30 seconds.
	HandlerTimeout time.Duration

	// Approver, when set, is consulted before tool calls run.
	Approver ApproverFunc

	// ApprovalRequired limits approval to the named tools. Empty means every
	// tool requires approval once an Approver is set.
	ApprovalRequired []string

	// ChatOptions are applied to every model call.
	ChatOptions []ai.Option
}

// Option configures an Agent.
type Option func(*Options)

// WithSystemPrompt replaces the default system prompt.
func WithSystemPrompt(prompt string) Option {
	return func(o *Options) {
		o.SystemPrompt = prompt
	}
}

// WithHandlerTimeout sets the timeout for each tool handler.
func WithHandlerTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.HandlerTimeout = d
	}
}

// WithApprover sets the function consulted before tool calls run.
func WithApprover(fn ApproverFunc) Option {
	return func(o *Options) {
		o.Approver = fn
	}
}

// WithApprovalRequired restricts approval to the named tools.
func WithApprovalRequired(tools ...string) Option {
	return func(o *Options) {
		o.ApprovalRequired = tools
	}
}

// WithChatOptions passes options through to every model call.
func WithChatOptions(opts ...ai.Option) Option {
	return func(o *Options) {
		o.ChatOptions = append(o.ChatOptions, opts...)
	}
}

func applyOptions(opts ...Option) *Options {
	o := &Options{
		SystemPrompt:   DefaultSystemPrompt,
		HandlerTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
