// Package event defines the records a conversation emits while the agent
// works. Handling is decided by capability, not by concrete type: an event
// that can be replayed to the model implements LLMConvertible, and an event
// that reports usage implements MetricsCarrier. A variant may implement
// neither, one, or both.
package event

import (
	"time"

	"github.com/google/uuid"
	ai "github.com/spetersoncode/convo"
	"github.com/spetersoncode/convo/metrics"
)

// Kind identifies the variant of an event.
type Kind string

const (
	KindSystemPrompt Kind = "system_prompt"
	KindMessage      Kind = "message"
	KindAction       Kind = "action"
	KindObservation  Kind = "observation"
	KindUserReject   Kind = "user_reject"
	KindAgentError   Kind = "agent_error"
	KindStateUpdate  Kind = "state_update"
)

// Source identifies who produced an event.
type Source string

const (
	SourceUser        Source = "user"
	SourceAgent       Source = "agent"
	SourceEnvironment Source = "environment"
)

// Event is a discrete occurrence in a conversation.
type Event interface {
	ID() string
	Kind() Kind
	Source() Source
	Timestamp() time.Time
}

// LLMConvertible is implemented by events that belong in the model transcript.
type LLMConvertible interface {
	Event
	ToLLMMessage() ai.Message
}

// MetricsCarrier is implemented by events that may carry a usage snapshot.
// Metrics returns nil when the event has none.
type MetricsCarrier interface {
	Event
	Metrics() *metrics.Snapshot
}

// Base holds the fields every event shares.
type Base struct {
	EventID string    `json:"id"`
	At      time.Time `json:"timestamp"`
	From    Source    `json:"source"`
}

func newBase(src Source) Base {
	return Base{EventID: uuid.NewString(), At: time.Now(), From: src}
}

func (b Base) ID() string           { return b.EventID }
func (b Base) Source() Source       { return b.From }
func (b Base) Timestamp() time.Time { return b.At }
