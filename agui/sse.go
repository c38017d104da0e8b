package agui

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"

	"github.com/spetersoncode/convo/conversation"
	"github.com/spetersoncode/convo/event"
)

// SSEWriter writes AG-UI events in server-sent events framing.
type SSEWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewSSEWriter wraps w.
func NewSSEWriter(w io.Writer) *SSEWriter {
	return &SSEWriter{w: w}
}

// Write serializes and writes one event.
func (s *SSEWriter) Write(ev events.Event) error {
	data, err := ev.ToJSON()
	if err != nil {
		return fmt.Errorf("agui: serialize %s: %w", ev.Type(), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// event: TYPE\ndata: {json}\n\n
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", ev.Type(), data); err != nil {
		return fmt.Errorf("agui: write %s: %w", ev.Type(), err)
	}
	if f, ok := s.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// NewCallback returns a conversation callback that streams every event to w
// as AG-UI SSE. Write failures are logged and do not stop the conversation.
func NewCallback(w io.Writer, threadID string, logger *slog.Logger) conversation.Callback {
	if logger == nil {
		logger = slog.Default()
	}
	mapper := NewMapper(threadID, "")
	sse := NewSSEWriter(w)

	return func(ev event.Event) {
		for _, out := range mapper.Map(ev) {
			if err := sse.Write(out); err != nil {
				logger.Warn("agui trace write failed", "event_type", out.Type(), "error", err)
				return
			}
		}
	}
}
