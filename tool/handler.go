package tool

import (
	"context"

	ai "github.com/spetersoncode/convo"
)

// Handler executes a tool call and returns the result content.
// A returned error is reported to the model as an error result.
type Handler func(ctx context.Context, call ai.ToolCall) (string, error)

// TypedHandler executes a tool call with arguments decoded into T.
type TypedHandler[T any] func(ctx context.Context, args T) (string, error)
