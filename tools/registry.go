package tools

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/google/uuid"
	"github.com/secbridge/secquery/cliexec"
)

var logger = xlog.NewPackageLogger("github.com/secbridge/secquery", "tools")

// Registry is the static dispatch table mapping declared tool names to
// implementations. It is populated once at server startup and only read
// afterwards; reads are safe for concurrent calls.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]ITool
	order   []string
}

func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]ITool),
	}
}

// Register adds a tool to the dispatch table.
// Registering an empty or duplicate name is a configuration error.
func (r *Registry) Register(t ITool) error {
	name := t.Name()
	if name == "" {
		return errors.New("tool name is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; exists {
		return errors.Newf("tool already registered: %s", name)
	}
	r.entries[name] = t
	r.order = append(r.order, name)
	return nil
}

// MustRegister panics on registration failure. Startup wiring only.
func (r *Registry) MustRegister(list ...ITool) {
	for _, t := range list {
		if err := r.Register(t); err != nil {
			panic(err)
		}
	}
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) (ITool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.entries[name]
	return t, ok
}

// List returns the registered tools in registration order, for the transport
// layer to advertise the catalog.
func (r *Registry) List() []ITool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]ITool, 0, len(r.entries))
	for _, name := range r.order {
		list = append(list, r.entries[name])
	}
	return list
}

// Call validates the tool name against the dispatch table and executes it.
// Every call is independent; nothing is shared or retained across calls.
func (r *Registry) Call(ctx context.Context, name, input string) (string, error) {
	t, ok := r.Get(name)
	if !ok {
		return "", errors.WithMessagef(cliexec.ErrInvalidArgument, "unknown tool: %s", name)
	}

	callID := uuid.NewString()
	logger.ContextKV(ctx, xlog.DEBUG,
		"call_id", callID,
		"tool", name,
		"status", "started",
	)

	out, err := t.Call(ctx, input)
	if err != nil {
		logger.ContextKV(ctx, xlog.WARNING,
			"call_id", callID,
			"tool", name,
			"status", "failed",
			"err", err.Error(),
		)
		return "", err
	}

	logger.ContextKV(ctx, xlog.DEBUG,
		"call_id", callID,
		"tool", name,
		"status", "completed",
		"response_bytes", len(out),
	)
	return out, nil
}
