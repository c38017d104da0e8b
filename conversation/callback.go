package conversation

import (
	"log/slog"
	"sync"

	ai "github.com/spetersoncode/convo"
	"github.com/spetersoncode/convo/event"
)

// Callback observes conversation events. Callbacks run synchronously on the
// goroutine that produced the event.
type Callback func(event.Event)

// MessageLog collects model messages in arrival order.
type MessageLog struct {
	mu   sync.Mutex
	msgs []ai.Message
}

// NewMessageLog creates an empty log.
func NewMessageLog() *MessageLog {
	return &MessageLog{}
}

// Append adds a message.
func (l *MessageLog) Append(msg ai.Message) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msgs = append(l.msgs, msg)
}

// Messages returns a copy of the collected messages.
func (l *MessageLog) Messages() []ai.Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]ai.Message(nil), l.msgs...)
}

// Len returns the number of collected messages.
func (l *MessageLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.msgs)
}

// NewMetricsCallback returns a callback that appends every model-convertible
// event to log and reports every non-nil metrics snapshot to logger.
// A nil logger uses slog.Default().
func NewMetricsCallback(log *MessageLog, logger *slog.Logger) Callback {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ev event.Event) {
		if conv, ok := ev.(event.LLMConvertible); ok {
			log.Append(conv.ToLLMMessage())
		}
		if carrier, ok := ev.(event.MetricsCarrier); ok {
			if snap := carrier.Metrics(); snap != nil {
				logger.Info("metrics snapshot", "event", ev.ID(), "metrics", snap.String())
			}
		}
	}
}

// NewLogCallback returns a callback that logs each event at debug level.
func NewLogCallback(logger *slog.Logger) Callback {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ev event.Event) {
		logger.Debug("conversation event",
			"id", ev.ID(),
			"kind", ev.Kind(),
			"source", ev.Source(),
		)
	}
}
