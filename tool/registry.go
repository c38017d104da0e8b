package tool

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	ai "github.com/spetersoncode/convo"
)

// Registration pairs a tool definition with its handler.
type Registration struct {
	Tool    ai.Tool
	Handler Handler
}

// Func creates a Registration whose parameter schema is reflected from T.
//
//	tool.Func("greet", "Greet someone", func(ctx context.Context, args GreetArgs) (string, error) {
//	    return "hello " + args.Name, nil
//	})
func Func[T any](name, description string, fn TypedHandler[T]) Registration {
	handler := func(ctx context.Context, call ai.ToolCall) (string, error) {
		var args T
		raw := strings.TrimSpace(call.Arguments)
		if raw == "" {
			raw = "{}"
		}
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			return "", &ErrInvalidArguments{Name: name, Err: err}
		}
		return fn(ctx, args)
	}
	return Registration{
		Tool: ai.Tool{
			Name:        name,
			Description: description,
			Parameters:  ai.SchemaFor[T](),
		},
		Handler: handler,
	}
}

// WithTool creates a Registration from an existing definition and handler.
func WithTool(t ai.Tool, h Handler) Registration {
	return Registration{Tool: t, Handler: h}
}

// Registry holds tools in registration order. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	order []string
	tools map[string]Registration
}

// NewRegistry creates a registry holding regs. It panics on duplicate names;
// use Assemble first when the inputs are not known to be unique.
func NewRegistry(regs ...Registration) *Registry {
	r := &Registry{tools: make(map[string]Registration)}
	return r.Add(regs...)
}

// Register adds a tool. Returns *ErrToolAlreadyRegistered if the name is taken.
func (r *Registry) Register(reg Registration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[reg.Tool.Name]; exists {
		return &ErrToolAlreadyRegistered{Name: reg.Tool.Name}
	}
	r.tools[reg.Tool.Name] = reg
	r.order = append(r.order, reg.Tool.Name)
	return nil
}

// Add registers tools and returns the registry for chaining.
// Panics if any name is already registered.
func (r *Registry) Add(regs ...Registration) *Registry {
	for _, reg := range regs {
		if err := r.Register(reg); err != nil {
			panic(err)
		}
	}
	return r
}

// Get returns the handler for a tool name.
func (r *Registry) Get(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.tools[name]
	return reg.Handler, ok
}

// GetTool returns the definition for a tool name.
func (r *Registry) GetTool(name string) (ai.Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.tools[name]
	return reg.Tool, ok
}

// Tools returns all definitions in registration order.
func (r *Registry) Tools() []ai.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]ai.Tool, 0, len(r.order))
	for _, name := range r.order {
		tools = append(tools, r.tools[name].Tool)
	}
	return tools
}

// Names returns tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Execute runs the handler for call. An unknown tool returns
// *ErrToolNotFound. A handler error is not returned; it becomes an error
// result so the model can recover.
func (r *Registry) Execute(ctx context.Context, call ai.ToolCall) (ai.ToolResult, error) {
	r.mu.RLock()
	reg, ok := r.tools[call.Name]
	r.mu.RUnlock()

	if !ok {
		return ai.ToolResult{}, &ErrToolNotFound{Name: call.Name}
	}

	content, err := reg.Handler(ctx, call)
	if err != nil {
		return ai.ToolResult{
			ToolCallID: call.ID,
			Name:       call.Name,
			Content:    err.Error(),
			IsError:    true,
		}, nil
	}
	return ai.ToolResult{
		ToolCallID: call.ID,
		Name:       call.Name,
		Content:    content,
	}, nil
}
