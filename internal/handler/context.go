package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/vk/modtest/internal/model"
)

// Change records a single attribute difference between current and desired
// state.
type Change struct {
	From any `json:"from"`
	To   any `json:"to"`
}

// LogEntry is one structured message emitted by a handler during a deployment.
// Fields may carry a "traceback" payload on failure.
type LogEntry struct {
	Level   slog.Level     `json:"level"`
	Message string         `json:"msg"`
	Fields  map[string]any `json:"kwargs,omitempty"`
}

// Context is the per-deployment record handed to a handler. It is created
// fresh for every deploy or dry-run call and discarded after assertions.
type Context struct {
	resource *model.Resource
	status   Status
	logs     []LogEntry
	changes  map[string]Change
}

// NewContext creates a deployment context for the given resource.
func NewContext(resource *model.Resource) *Context {
	return &Context{
		resource: resource,
		changes:  make(map[string]Change),
	}
}

// Resource returns the resource under deployment.
func (c *Context) Resource() *model.Resource {
	return c.resource
}

// Status returns the current deployment status.
func (c *Context) Status() Status {
	return c.status
}

// SetStatus records the deployment status.
func (c *Context) SetStatus(s Status) {
	c.status = s
}

// AddChange records a required attribute change.
func (c *Context) AddChange(attribute string, from, to any) {
	c.changes[attribute] = Change{From: from, To: to}
}

// Changes returns the recorded change set.
func (c *Context) Changes() map[string]Change {
	out := make(map[string]Change, len(c.changes))
	for k, v := range c.changes {
		out[k] = v
	}
	return out
}

// Logs returns every log entry recorded so far.
func (c *Context) Logs() []LogEntry {
	out := make([]LogEntry, len(c.logs))
	copy(out, c.logs)
	return out
}

func (c *Context) log(level slog.Level, msg string, fields map[string]any) {
	c.logs = append(c.logs, LogEntry{Level: level, Message: msg, Fields: fields})
}

// Debug records a debug-level log entry.
func (c *Context) Debug(msg string, fields map[string]any) {
	c.log(slog.LevelDebug, msg, fields)
}

// Info records an info-level log entry.
func (c *Context) Info(msg string, fields map[string]any) {
	c.log(slog.LevelInfo, msg, fields)
}

// Warning records a warn-level log entry.
func (c *Context) Warning(msg string, fields map[string]any) {
	c.log(slog.LevelWarn, msg, fields)
}

// Error records an error-level log entry.
func (c *Context) Error(msg string, fields map[string]any) {
	c.log(slog.LevelError, msg, fields)
}

// Finalize verifies the recorded log entries are serializable, mirroring the
// wire encoding a real orchestrator would apply before shipping them.
func (c *Context) Finalize() error {
	if _, err := json.Marshal(c.logs); err != nil {
		return fmt.Errorf("handler logs are not serializable: %w", err)
	}
	return nil
}
