package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	ai "github.com/spetersoncode/convo"
	"github.com/spetersoncode/convo/event"
	"github.com/spetersoncode/convo/store"
)

// DefaultMaxIterations bounds the agent steps of a single Run.
const DefaultMaxIterations = 100

// Status is the lifecycle state of a conversation.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusRunning  Status = "running"
	StatusFinished Status = "finished"
	StatusError    Status = "error"
)

// Agent is what a conversation drives. *agent.Agent satisfies it.
type Agent interface {
	SystemPrompt() *event.SystemPrompt
	Step(ctx context.Context, history []event.Event, emit func(event.Event)) (finished bool, err error)
}

// Option configures a Conversation.
type Option func(*Conversation)

// WithCallbacks registers callbacks, in order, after any already registered.
func WithCallbacks(cbs ...Callback) Option {
	return func(c *Conversation) {
		c.callbacks = append(c.callbacks, cbs...)
	}
}

// WithMaxIterations sets the agent step limit per Run. Default is 100.
func WithMaxIterations(n int) Option {
	return func(c *Conversation) {
		c.maxIterations = n
	}
}

// WithPersistence stores every event in adapter under the conversation id.
// An existing history for id is loaded, so the conversation resumes.
func WithPersistence(adapter store.Adapter, id string) Option {
	return func(c *Conversation) {
		c.adapter = adapter
		c.id = id
	}
}

// WithLogger sets the logger used for conversation diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Conversation) {
		c.logger = l
	}
}

// Conversation is a single user/agent exchange. It is meant to be driven from
// one goroutine; a concurrent Run is rejected.
type Conversation struct {
	id            string
	agent         Agent
	callbacks     []Callback
	maxIterations int
	logger        *slog.Logger
	adapter       store.Adapter
	log           *store.EventLog

	mu        sync.Mutex
	events    []event.Event
	status    Status
	running   bool
	prompted  bool
	iteration int
}

// New creates a conversation driven by agent.
func New(agent Agent, opts ...Option) (*Conversation, error) {
	c := &Conversation{
		agent:         agent,
		maxIterations: DefaultMaxIterations,
		logger:        slog.Default(),
		status:        StatusIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.id == "" {
		c.id = uuid.NewString()
	}

	if c.adapter != nil {
		ctx := context.Background()
		log, err := store.NewEventLog(ctx, c.adapter, c.id)
		if err != nil {
			return nil, fmt.Errorf("conversation: open event log: %w", err)
		}
		events, err := log.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("conversation: load event log: %w", err)
		}
		c.log = log
		c.restore(events)
	}
	return c, nil
}

// restore replays a persisted history without notifying callbacks.
func (c *Conversation) restore(events []event.Event) {
	c.events = events
	for _, ev := range events {
		switch e := ev.(type) {
		case *event.SystemPrompt:
			c.prompted = true
		case *event.StateUpdate:
			if s := Status(e.Status); s != StatusRunning {
				c.status = s
			}
		}
	}
	if len(events) > 0 {
		c.logger.Info("resumed conversation", "id", c.id, "events", len(events), "status", c.status)
	}
}

// ID returns the conversation identifier.
func (c *Conversation) ID() string { return c.id }

// Status returns the current lifecycle state.
func (c *Conversation) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Events returns a copy of the event history.
func (c *Conversation) Events() []event.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]event.Event(nil), c.events...)
}

// SendMessage appends a user message to the history. It does not run the
// agent. Only user messages are accepted.
func (c *Conversation) SendMessage(msg ai.Message) error {
	if msg.Role != ai.RoleUser {
		return fmt.Errorf("%w: got %q", ErrInvalidRole, msg.Role)
	}
	if msg.ID == "" {
		msg.ID = ai.GenerateMessageID()
	}

	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return ErrRunInProgress
	}
	c.mu.Unlock()

	c.ensureSystemPrompt()
	c.emit(event.NewUserMessage(msg))
	if c.Status() != StatusIdle {
		c.setStatus(StatusIdle, "")
	}
	return nil
}

// Run steps the agent until it finishes, blocking the caller. A finished
// conversation with no new message returns immediately.
//
// A failed step, the iteration limit and context cancellation all stop the
// run with a *RunError and leave the conversation in StatusError. The
// history is kept, so a later SendMessage and Run continue from it.
func (c *Conversation) Run(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return ErrRunInProgress
	}
	if c.status == StatusFinished {
		c.mu.Unlock()
		return nil
	}
	c.running = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()

	c.ensureSystemPrompt()
	c.setStatus(StatusRunning, "")

	for i := 1; ; i++ {
		if i > c.maxIterations {
			return c.fail(i-1, ErrMaxIterations)
		}
		if err := ctx.Err(); err != nil {
			return c.fail(i, err)
		}

		c.mu.Lock()
		c.iteration++
		c.mu.Unlock()

		finished, err := c.agent.Step(ctx, c.Events(), c.emit)
		if err != nil {
			return c.fail(i, err)
		}
		if finished {
			c.setStatus(StatusFinished, "")
			return nil
		}
	}
}

func (c *Conversation) fail(iteration int, err error) error {
	c.logger.Error("conversation run failed", "id", c.id, "iteration", iteration, "error", err)
	c.setStatus(StatusError, err.Error())
	return &RunError{Iteration: iteration, Err: err}
}

func (c *Conversation) ensureSystemPrompt() {
	c.mu.Lock()
	if c.prompted {
		c.mu.Unlock()
		return
	}
	c.prompted = true
	c.mu.Unlock()

	c.emit(c.agent.SystemPrompt())
}

func (c *Conversation) setStatus(s Status, reason string) {
	c.mu.Lock()
	c.status = s
	iteration := c.iteration
	c.mu.Unlock()

	c.emit(event.NewStateUpdate(string(s), iteration, reason))
}

// emit records ev and then delivers it to every callback in order.
func (c *Conversation) emit(ev event.Event) {
	c.mu.Lock()
	c.events = append(c.events, ev)
	c.mu.Unlock()

	if c.log != nil {
		if err := c.log.Append(context.Background(), ev); err != nil {
			c.logger.Warn("persist event", "id", c.id, "event", ev.ID(), "error", err)
		}
	}
	for _, cb := range c.callbacks {
		cb(ev)
	}
}
