package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Registry holds all available tools and provides lookup and dispatch.
// It is thread-safe; registration normally happens once at startup.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*Tool

	// byCog provides fast lookup by cog for command registration.
	byCog map[Cog][]*Tool

	log *zap.Logger
}

// NewRegistry creates a new empty tool registry. A nil logger is replaced
// with a no-op logger.
func NewRegistry(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		tools: make(map[string]*Tool),
		byCog: make(map[Cog][]*Tool),
		log:   log,
	}
}

// Register adds a tool to the registry.
// Returns an error if a tool with the same name already exists.
func (r *Registry) Register(tool *Tool) error {
	if err := tool.Validate(); err != nil {
		return fmt.Errorf("invalid tool: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[tool.Name]; exists {
		return fmt.Errorf("%w: %s", ErrToolAlreadyRegistered, tool.Name)
	}

	r.tools[tool.Name] = tool
	r.byCog[tool.Cog] = append(r.byCog[tool.Cog], tool)

	r.log.Debug("registered tool",
		zap.String("tool", tool.Name),
		zap.String("cog", string(tool.Cog)))
	return nil
}

// MustRegister registers a tool and panics on error.
// Use this for static tool registration at startup.
func (r *Registry) MustRegister(tool *Tool) {
	if err := r.Register(tool); err != nil {
		panic(fmt.Sprintf("failed to register tool %s: %v", tool.Name, err))
	}
}

// Get returns a tool by name, or nil if not found.
func (r *Registry) Get(name string) *Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[name]
}

// Has returns true if a tool with the given name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tools[name]
	return ok
}

// ByCog returns all tools in a cog, sorted by name.
func (r *Registry) ByCog(cog Cog) []*Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Tool, len(r.byCog[cog]))
	copy(out, r.byCog[cog])

	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// All returns all registered tools.
func (r *Registry) All() []*Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		out = append(out, tool)
	}
	return out
}

// Names returns all registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Dispatch resolves the request's tool by its explicit name and runs it.
// Returns ErrToolNotFound if no tool carries that name.
func (r *Registry) Dispatch(ctx context.Context, req Request) (*Result, error) {
	tool := r.Get(req.Tool)
	if tool == nil {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, req.Tool)
	}
	return r.execute(ctx, tool, req.Args)
}

// Execute runs a tool by name with the given arguments. It is shorthand
// for Dispatch with an inline Request.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (*Result, error) {
	return r.Dispatch(ctx, Request{Tool: name, Args: args})
}

func (r *Registry) execute(ctx context.Context, tool *Tool, args map[string]any) (*Result, error) {
	start := time.Now()

	// Required presence and declared types are checked before the handler
	// runs, so invalid input never reaches the network.
	if err := validateArgs(tool, args); err != nil {
		return &Result{
			ToolName:   tool.Name,
			Err:        err,
			DurationMs: time.Since(start).Milliseconds(),
		}, err
	}

	r.log.Debug("executing tool", zap.String("tool", tool.Name))
	out, err := tool.Execute(ctx, args)

	duration := time.Since(start)
	if err != nil {
		r.log.Error("tool failed",
			zap.String("tool", tool.Name),
			zap.Duration("duration", duration),
			zap.Error(err))
	} else {
		r.log.Debug("tool completed",
			zap.String("tool", tool.Name),
			zap.Duration("duration", duration))
	}

	return &Result{
		ToolName:   tool.Name,
		Output:     out,
		Err:        err,
		DurationMs: duration.Milliseconds(),
	}, err
}

// validateArgs checks that all required arguments are present and that
// provided arguments match their declared types.
func validateArgs(tool *Tool, args map[string]any) error {
	for _, required := range tool.Schema.Required {
		if _, ok := args[required]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingRequiredArg, required)
		}
	}
	for name, val := range args {
		prop, ok := tool.Schema.Properties[name]
		if !ok {
			continue // undeclared args are passed through untouched
		}
		if !typeMatches(prop.Type, val) {
			return fmt.Errorf("%w: %s must be %s", ErrInvalidArgType, name, prop.Type)
		}
	}
	return nil
}

// typeMatches reports whether val conforms to the declared schema type.
// Numbers arrive as float64 from JSON decoding and as int64 from the
// chat platform's integer options; both satisfy "number" and "integer".
func typeMatches(declared string, val any) bool {
	if val == nil {
		return true
	}
	switch declared {
	case "string":
		_, ok := val.(string)
		return ok
	case "number":
		switch val.(type) {
		case float64, float32, int, int64:
			return true
		}
		return false
	case "integer":
		switch v := val.(type) {
		case int, int64:
			return true
		case float64:
			return v == float64(int64(v))
		}
		return false
	case "boolean":
		_, ok := val.(bool)
		return ok
	case "array":
		switch val.(type) {
		case []any, []string:
			return true
		}
		return false
	default:
		return true
	}
}
