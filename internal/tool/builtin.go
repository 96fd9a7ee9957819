package tool

import (
	"fmt"
	"slices"
	"sync"
)

// BuiltinOptions carries startup settings needed by built-in tool factories.
type BuiltinOptions struct {
	// CasualReply overrides the capability description returned by casual_chat.
	CasualReply string
}

type BuiltinFactory func(options BuiltinOptions) (Tool, error)

var builtinCatalog = struct {
	mu        sync.RWMutex
	names     []string
	factories map[string]BuiltinFactory
}{
	factories: map[string]BuiltinFactory{},
}

// RegisterBuiltin registers a built-in tool factory under a tool name.
// Intended to be called in init() from built-in tool files.
func RegisterBuiltin(name string, factory BuiltinFactory) {
	normalized := NormalizeToolName(name)
	if normalized == "" {
		panic("tool: built-in name cannot be empty")
	}
	if factory == nil {
		panic(fmt.Sprintf("tool: built-in factory cannot be nil (%s)", normalized))
	}

	builtinCatalog.mu.Lock()
	defer builtinCatalog.mu.Unlock()

	if _, exists := builtinCatalog.factories[normalized]; exists {
		panic(fmt.Sprintf("tool: built-in already registered: %s", normalized))
	}
	builtinCatalog.factories[normalized] = factory
	builtinCatalog.names = append(builtinCatalog.names, normalized)
}

// BuiltinNames returns all registered built-in names in catalog order.
func BuiltinNames() []string {
	builtinCatalog.mu.RLock()
	defer builtinCatalog.mu.RUnlock()

	ordered := make([]string, 0, len(builtinCatalog.names))
	for _, name := range catalogOrder {
		if _, ok := builtinCatalog.factories[name]; ok {
			ordered = append(ordered, name)
		}
	}
	for _, name := range builtinCatalog.names {
		if !slices.Contains(catalogOrder, name) {
			ordered = append(ordered, name)
		}
	}
	return ordered
}

// catalogOrder fixes the order tools are presented to the model in,
// independent of init order across files.
var catalogOrder = []string{
	"check_availability",
	"book_meeting",
	"delete_event",
	"reschedule_event",
	"current_datetime",
	"casual_chat",
}

// NewBuiltinRegistry instantiates every built-in tool into a frozen registry.
func NewBuiltinRegistry(options BuiltinOptions) (*Registry, error) {
	names := BuiltinNames()

	builtinCatalog.mu.RLock()
	factories := make(map[string]BuiltinFactory, len(builtinCatalog.factories))
	for name, factory := range builtinCatalog.factories {
		factories[name] = factory
	}
	builtinCatalog.mu.RUnlock()

	registry := NewRegistry()
	for _, name := range names {
		t, err := factories[name](options)
		if err != nil {
			return nil, fmt.Errorf("instantiate built-in %q: %w", name, err)
		}
		registry.Register(t)
	}
	return registry.Freeze(), nil
}
