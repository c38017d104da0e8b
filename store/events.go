package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/spetersoncode/convo/event"
)

// EventLog is an append-only event history for one conversation, stored
// under <id>/events/<seq>.
type EventLog struct {
	adapter Adapter
	prefix  string

	mu    sync.Mutex
	next  int
	count int
}

// NewEventLog opens the log for conversation id, continuing after any
// events already stored.
func NewEventLog(ctx context.Context, adapter Adapter, id string) (*EventLog, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty conversation id", ErrInvalidKey)
	}
	l := &EventLog{adapter: adapter, prefix: id + "/events/"}
	keys, err := adapter.Keys(ctx, l.prefix)
	if err != nil {
		return nil, err
	}
	// Deleted entries leave gaps; continue after the highest sequence.
	for _, k := range keys {
		seq, err := strconv.Atoi(strings.TrimPrefix(k, l.prefix))
		if err != nil {
			continue
		}
		if seq >= l.next {
			l.next = seq + 1
		}
	}
	l.count = len(keys)
	return l, nil
}

// Append stores ev as the next entry.
func (l *EventLog) Append(ctx context.Context, ev event.Event) error {
	data, err := event.Marshal(ev)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.adapter.Set(ctx, l.key(l.next), data); err != nil {
		return err
	}
	l.next++
	l.count++
	return nil
}

// Load returns every stored event in append order.
func (l *EventLog) Load(ctx context.Context) ([]event.Event, error) {
	keys, err := l.adapter.Keys(ctx, l.prefix)
	if err != nil {
		return nil, err
	}
	events := make([]event.Event, 0, len(keys))
	for _, k := range keys {
		data, ok, err := l.adapter.Get(ctx, k)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		ev, err := event.Unmarshal(data)
		if err != nil {
			return nil, fmt.Errorf("store: %s: %w", k, err)
		}
		events = append(events, ev)
	}
	return events, nil
}

// Len returns the number of stored events.
func (l *EventLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}

// Zero-padded so lexicographic key order is append order.
func (l *EventLog) key(seq int) string {
	return fmt.Sprintf("%s%08d", l.prefix, seq)
}
