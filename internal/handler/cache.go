package handler

import (
	"fmt"
	"sync"
)

// AgentCache is a per-version scratch cache shared by handlers during a
// deployment. Entries are scoped to an open version and evicted when the last
// holder of that version releases it.
type AgentCache struct {
	mu      sync.Mutex
	open    map[int]int
	entries map[int]map[string]any
}

// NewAgentCache creates a new, empty agent cache.
func NewAgentCache() *AgentCache {
	return &AgentCache{
		open:    make(map[int]int),
		entries: make(map[int]map[string]any),
	}
}

// OpenVersion acquires a cache scope for the given version. Scopes nest: each
// OpenVersion must be paired with a CloseVersion. Prefer WithVersion, which
// guarantees the release on every exit path.
func (c *AgentCache) OpenVersion(version int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open[version]++
	if _, ok := c.entries[version]; !ok {
		c.entries[version] = make(map[string]any)
	}
}

// CloseVersion releases a cache scope. When the last holder releases, every
// entry stored under the version is evicted.
func (c *AgentCache) CloseVersion(version int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.open[version]
	if !ok || n <= 0 {
		return
	}
	n--
	if n == 0 {
		delete(c.open, version)
		delete(c.entries, version)
		return
	}
	c.open[version] = n
}

// IsOpen reports whether a cache scope is currently held for the version.
func (c *AgentCache) IsOpen(version int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open[version] > 0
}

// WithVersion runs fn inside an open cache scope for version, releasing the
// scope on every exit path including errors.
func (c *AgentCache) WithVersion(version int, fn func() error) error {
	c.OpenVersion(version)
	defer c.CloseVersion(version)
	return fn()
}

// Set stores a value under the open version scope.
func (c *AgentCache) Set(version int, key string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.open[version] <= 0 {
		return fmt.Errorf("cache version %d is not open", version)
	}
	c.entries[version][key] = value
	return nil
}

// Get returns a value stored under the open version scope.
func (c *AgentCache) Get(version int, key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.open[version] <= 0 {
		return nil, false
	}
	v, ok := c.entries[version][key]
	return v, ok
}
