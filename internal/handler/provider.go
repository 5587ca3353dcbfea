package handler

import (
	"errors"
	"reflect"
	"runtime/debug"

	"github.com/vk/modtest/internal/agentio"
	"github.com/vk/modtest/internal/model"
)

// ErrNotFound is returned by ResourceHandler.Read when the resource does not
// exist on the target yet.
var ErrNotFound = errors.New("resource does not exist on target")

// ResourceHandler is the minimal CRUD surface a module implements per
// resource type. Read returns the current state of the attributes the handler
// manages; attributes it does not report are left out of change computation.
type ResourceHandler interface {
	Read(ctx *Context, desired *model.Resource) (map[string]any, error)
	Create(ctx *Context, desired *model.Resource) error
	Update(ctx *Context, changes map[string]Change, desired *model.Resource) error
	Delete(ctx *Context, desired *model.Resource) error
}

// Provider wraps a module's ResourceHandler with the framework plumbing: blob
// transfer callbacks, the synchronous-run adapter, the agent cache, and the
// change-set computation around the CRUD calls.
type Provider struct {
	Handler ResourceHandler

	// File transfer callbacks, wired by the harness against its blob store.
	GetFile    func(key string) ([]byte, error)
	StatFile   func(key string) bool
	UploadFile func(key string, content []byte) error

	// RunSync executes a function on the owning event loop and blocks until
	// it completes. Nil means run inline.
	RunSync func(fn func() error) error

	cache *AgentCache
	agent ExecutionContext
	io    agentio.IO
}

// SetCache attaches the agent cache the provider operates under.
func (p *Provider) SetCache(c *AgentCache) {
	p.cache = c
}

// Cache returns the attached agent cache.
func (p *Provider) Cache() *AgentCache {
	return p.cache
}

// Agent returns the execution context the provider was resolved for.
func (p *Provider) Agent() ExecutionContext {
	return p.agent
}

// IO returns the agent I/O handle.
func (p *Provider) IO() agentio.IO {
	return p.io
}

// Execute runs the handler against the desired resource and records the
// outcome on ctx. A dry run computes the change set and stops; a real run
// applies it. Handler errors never escape: they mark the context failed with
// a traceback log entry.
func (p *Provider) Execute(ctx *Context, desired *model.Resource, dryRun bool) {
	run := p.RunSync
	if run == nil {
		run = func(fn func() error) error { return fn() }
	}

	if err := run(func() error {
		return p.execute(ctx, desired, dryRun)
	}); err != nil {
		ctx.Error("deployment failed", map[string]any{
			"error":     err.Error(),
			"traceback": string(debug.Stack()),
		})
		ctx.SetStatus(StatusFailed)
	}
}

func (p *Provider) execute(ctx *Context, desired *model.Resource, dryRun bool) error {
	current, err := p.Handler.Read(ctx, desired)
	exists := err == nil
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	changes := diffState(current, desired, exists)
	for attr, ch := range changes {
		ctx.AddChange(attr, ch.From, ch.To)
	}

	if dryRun {
		ctx.SetStatus(StatusDry)
		return nil
	}

	if !exists {
		if err := p.Handler.Create(ctx, desired); err != nil {
			return err
		}
	} else if len(changes) > 0 {
		if err := p.Handler.Update(ctx, changes, desired); err != nil {
			return err
		}
	}

	ctx.SetStatus(StatusDeployed)
	return nil
}

// diffState compares the handler-reported current state against the desired
// attributes. Only attributes the handler reported are compared; when the
// resource does not exist yet, every reported-or-desired attribute pair is a
// creation change keyed by the handler's managed set being empty, so the whole
// desired set is used.
func diffState(current map[string]any, desired *model.Resource, exists bool) map[string]Change {
	changes := make(map[string]Change)
	if !exists {
		for attr, want := range desired.Attributes {
			changes[attr] = Change{From: nil, To: want}
		}
		return changes
	}
	for attr, have := range current {
		want, ok := desired.Get(attr)
		if !ok {
			continue
		}
		if !reflect.DeepEqual(have, want) {
			changes[attr] = Change{From: have, To: want}
		}
	}
	return changes
}
