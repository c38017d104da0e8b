package event

import (
	"encoding/json"
	"fmt"
)

// envelope is the persisted form of an event.
type envelope struct {
	Kind Kind            `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// Marshal encodes an event with its kind so Unmarshal can restore the variant.
func Marshal(ev Event) ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("event: marshal %s: %w", ev.Kind(), err)
	}
	return json.Marshal(envelope{Kind: ev.Kind(), Data: data})
}

// Unmarshal decodes an event written by Marshal.
func Unmarshal(data []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("event: decode envelope: %w", err)
	}

	var ev Event
	switch env.Kind {
	case KindSystemPrompt:
		ev = &SystemPrompt{}
	case KindMessage:
		ev = &Message{}
	case KindAction:
		ev = &Action{}
	case KindObservation:
		ev = &Observation{}
	case KindUserReject:
		ev = &UserReject{}
	case KindAgentError:
		ev = &AgentError{}
	case KindStateUpdate:
		ev = &StateUpdate{}
	default:
		return nil, fmt.Errorf("event: unknown kind %q", env.Kind)
	}
	if err := json.Unmarshal(env.Data, ev); err != nil {
		return nil, fmt.Errorf("event: decode %s: %w", env.Kind, err)
	}
	return ev, nil
}
