// Package mockexec provides the stand-in execution context a handler runs
// inside when no real agent process exists. It carries exactly the capability
// surface the handler framework requires: a run-to-completion event loop and a
// connection URI.
package mockexec

import "github.com/vk/modtest/internal/agentio"

// Loop is a cooperative event loop handle. The mock loop executes work
// synchronously on the caller's goroutine and blocks until it completes.
type Loop struct{}

// NewLoop returns a new mock event loop.
func NewLoop() *Loop {
	return &Loop{}
}

// RunSync runs fn to completion and returns its error.
func (l *Loop) RunSync(fn func() error) error {
	return fn()
}

// Process is a mock agent process owning the event loop.
type Process struct {
	loop *Loop
}

// NewProcess returns a new mock agent process.
func NewProcess() *Process {
	return &Process{loop: NewLoop()}
}

// Loop returns the process event loop.
func (p *Process) Loop() *Loop {
	return p.loop
}

// Agent is a mock agent bound to a connection URI.
type Agent struct {
	uri     string
	process *Process
}

// NewAgent returns a mock agent for the given connection URI.
func NewAgent(uri string) *Agent {
	return &Agent{uri: uri, process: NewProcess()}
}

// NewLocalAgent returns a mock agent in local execution mode.
func NewLocalAgent() *Agent {
	return NewAgent(agentio.LocalURI)
}

// NewRootAgent returns a mock agent in root-over-network execution mode.
func NewRootAgent() *Agent {
	return NewAgent(agentio.RootURI)
}

// URI returns the agent's connection URI.
func (a *Agent) URI() string {
	return a.uri
}

// Process returns the agent's process.
func (a *Agent) Process() *Process {
	return a.process
}

// RunSync schedules fn on the agent's event loop and blocks until done.
func (a *Agent) RunSync(fn func() error) error {
	return a.process.Loop().RunSync(fn)
}
