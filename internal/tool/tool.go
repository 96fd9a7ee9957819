package tool

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/harunnryd/planpal/internal/model/contract"
)

// Tool represents a calendar capability the model may call.
type Tool interface {
	Name() string
	Description() string
	Schema() Schema
	Execute(ctx context.Context, session *Session, args Args) (string, error)
}

// Registry holds the tool catalog. It is built once at startup and frozen
// before it is shared between requests.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]Tool
	order  []string
	frozen bool
}

func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

func (r *Registry) Register(t Tool) {
	name := NormalizeToolName(t.Name())
	if name == "" {
		panic("tool: empty tool name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		panic(fmt.Sprintf("tool: registry is frozen, cannot register %s", name))
	}
	if _, exists := r.tools[name]; exists {
		panic(fmt.Sprintf("tool: already registered: %s", name))
	}
	r.tools[name] = t
	r.order = append(r.order, name)
}

// Freeze makes the registry read-only.
func (r *Registry) Freeze() *Registry {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
	return r
}

func (r *Registry) Get(name string) (Tool, bool) {
	name = NormalizeToolName(name)
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Names returns tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Definitions describes every tool to the model, in registration order.
func (r *Registry) Definitions() []contract.ToolDef {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]contract.ToolDef, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		defs = append(defs, contract.ToolDef{
			Name:        name,
			Description: t.Description(),
			Parameters:  t.Schema().Parameters(),
		})
	}
	return defs
}

func NormalizeToolName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
