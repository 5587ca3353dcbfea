package handler

import (
	"fmt"
	"log/slog"

	"github.com/vk/modtest/internal/agentio"
	"github.com/vk/modtest/internal/model"
)

// ExecutionContext is the minimal capability surface an execution context must
// expose to run a handler: a connection URI and a synchronous-run adapter
// backed by its event loop.
type ExecutionContext interface {
	URI() string
	RunSync(fn func() error) error
}

// Factory constructs a module's ResourceHandler for a resolved execution
// context and I/O handle.
type Factory func(agent ExecutionContext, io agentio.IO) (ResourceHandler, error)

// Commander is the handler-dispatch registry, keyed by fully qualified
// resource type name.
type Commander struct {
	factories map[string]Factory
}

// NewCommander creates a new, empty handler registry.
func NewCommander() *Commander {
	return &Commander{factories: make(map[string]Factory)}
}

// Register registers a handler factory for a resource type.
func (c *Commander) Register(typeName string, factory Factory) {
	if _, exists := c.factories[typeName]; exists {
		panic(fmt.Sprintf("handler for resource type '%s' already registered", typeName))
	}
	slog.Debug("Registering resource handler.", "type", typeName)
	c.factories[typeName] = factory
}

// Has reports whether a handler factory is registered for the resource type.
func (c *Commander) Has(typeName string) bool {
	_, ok := c.factories[typeName]
	return ok
}

// GetProvider resolves a provider for the resource: it looks up the factory
// for the resource's type, binds agent I/O for the agent's URI, and wraps the
// constructed handler with the framework plumbing.
func (c *Commander) GetProvider(cache *AgentCache, agent ExecutionContext, resource *model.Resource) (*Provider, error) {
	factory, ok := c.factories[resource.TypeName]
	if !ok {
		return nil, fmt.Errorf("no handler registered for resource type %q", resource.TypeName)
	}

	io, err := agentio.GetIO(nil, agent.URI(), resource.ID.Version)
	if err != nil {
		return nil, err
	}

	h, err := factory(agent, io)
	if err != nil {
		return nil, fmt.Errorf("handler factory for %q failed: %w", resource.TypeName, err)
	}

	return &Provider{
		Handler: h,
		RunSync: agent.RunSync,
		cache:   cache,
		agent:   agent,
		io:      io,
	}, nil
}

// DefaultCommander is the process-wide handler registry modules register into
// unless a test supplies its own.
var DefaultCommander = NewCommander()

// Register registers a handler factory with the default commander.
func Register(typeName string, factory Factory) {
	DefaultCommander.Register(typeName, factory)
}
