package testutil

import (
	"errors"
	"sync"

	"github.com/vk/modtest/internal/agentio"
	"github.com/vk/modtest/internal/handler"
	"github.com/vk/modtest/internal/model"
)

// KVStore is the mock target system the testmodule handler deploys against: a
// plain key-value map.
type KVStore struct {
	mu     sync.Mutex
	values map[string]string
}

// NewKVStore creates an empty target store.
func NewKVStore() *KVStore {
	return &KVStore{values: make(map[string]string)}
}

// Get returns the value stored under key.
func (s *KVStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores a value under key.
func (s *KVStore) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Delete removes the value stored under key.
func (s *KVStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}

// kvHandler realizes testmodule::Resource on a KVStore. It manages the
// "value" attribute only.
type kvHandler struct {
	store *KVStore
	io    agentio.IO
}

func (h *kvHandler) key(desired *model.Resource) string {
	key, _ := desired.Attribute("key").(string)
	return key
}

func (h *kvHandler) Read(ctx *handler.Context, desired *model.Resource) (map[string]any, error) {
	value, ok := h.store.Get(h.key(desired))
	if !ok {
		return nil, handler.ErrNotFound
	}
	return map[string]any{"value": value}, nil
}

func (h *kvHandler) Create(ctx *handler.Context, desired *model.Resource) error {
	value, _ := desired.Attribute("value").(string)
	h.store.Set(h.key(desired), value)
	ctx.Info("created key", map[string]any{"key": h.key(desired)})
	return nil
}

func (h *kvHandler) Update(ctx *handler.Context, changes map[string]handler.Change, desired *model.Resource) error {
	value, _ := desired.Attribute("value").(string)
	h.store.Set(h.key(desired), value)
	ctx.Info("updated key", map[string]any{"key": h.key(desired)})
	return nil
}

func (h *kvHandler) Delete(ctx *handler.Context, desired *model.Resource) error {
	h.store.Delete(h.key(desired))
	return nil
}

// RegisterKVHandler registers the testmodule::Resource handler backed by the
// given target store.
func RegisterKVHandler(c *handler.Commander, store *KVStore) {
	c.Register("testmodule::Resource", func(agent handler.ExecutionContext, io agentio.IO) (handler.ResourceHandler, error) {
		return &kvHandler{store: store, io: io}, nil
	})
}

// failingHandler always fails its CRUD calls; used to exercise the failure
// and diagnostics paths.
type failingHandler struct{}

func (failingHandler) Read(ctx *handler.Context, desired *model.Resource) (map[string]any, error) {
	ctx.Debug("probing target", map[string]any{"resource": desired.ID.String()})
	return nil, handler.ErrNotFound
}

func (failingHandler) Create(ctx *handler.Context, desired *model.Resource) error {
	return errors.New("target rejected the change")
}

func (failingHandler) Update(ctx *handler.Context, changes map[string]handler.Change, desired *model.Resource) error {
	return errors.New("target rejected the change")
}

func (failingHandler) Delete(ctx *handler.Context, desired *model.Resource) error {
	return errors.New("target rejected the change")
}

// RegisterFailingHandler registers a handler for typeName whose deployments
// always fail.
func RegisterFailingHandler(c *handler.Commander, typeName string) {
	c.Register(typeName, func(agent handler.ExecutionContext, io agentio.IO) (handler.ResourceHandler, error) {
		return failingHandler{}, nil
	})
}
