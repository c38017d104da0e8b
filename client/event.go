package client

import (
	"time"

	ai "github.com/spetersoncode/convo"
	"github.com/spetersoncode/convo/retry"
)

// EventType identifies the kind of event occurring during client operations.
type EventType string

const (
	// EventRequestStart fires before an API request begins.
	EventRequestStart EventType = "request_start"

	// EventRequestComplete fires after an API request completes successfully.
	EventRequestComplete EventType = "request_complete"

	// EventRequestError fires when an API request fails.
	EventRequestError EventType = "request_error"

	// EventRetry wraps an event from the retry loop.
	EventRetry EventType = "retry"
)

// Event represents an observable occurrence during client operations.
type Event struct {
	Type      EventType
	Operation string
	Provider  ai.Provider
	Model     string
	// Duration is the elapsed time for completed or failed requests.
	Duration time.Duration
	Usage    *ai.Usage
	// Cost is the USD price of a completed request.
	Cost       float64
	Error      error
	RetryEvent *retry.Event
	Timestamp  time.Time
}

// emit sends an event with timestamp to the channel without blocking.
func emit(ch chan<- Event, event Event) {
	if ch == nil {
		return
	}
	event.Timestamp = time.Now()
	select {
	case ch <- event:
	default:
	}
}
