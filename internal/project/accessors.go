package project

import (
	"github.com/vk/modtest/internal/agentio"
	"github.com/vk/modtest/internal/model"
	"github.com/vk/modtest/internal/plugins"
)

// IO returns an agent I/O handle in local or root-over-network mode, the same
// handle a handler resolved for this project would receive.
func (p *Project) IO(runAsRoot bool) (agentio.IO, error) {
	uri := agentio.LocalURI
	if runAsRoot {
		uri = agentio.RootURI
	}
	return agentio.GetIO(nil, uri, 1)
}

// AddFact records a fact for a resource identifier; it is replayed into the
// compiler as reference data on the next Compile.
func (p *Project) AddFact(resourceID, name string, value any) {
	p.facts.Add(resourceID, name, value)
}

// AddBlob stores a blob under the given key, typically the hash of its
// content. Overwriting is refused unless allowOverwrite is set.
func (p *Project) AddBlob(key string, content []byte, allowOverwrite bool) error {
	return p.blobs.Put(key, content, allowOverwrite)
}

// StatBlob reports whether a blob exists under key.
func (p *Project) StatBlob(key string) bool {
	return p.blobs.Stat(key)
}

// GetBlob returns the blob stored under key.
func (p *Project) GetBlob(key string) ([]byte, bool) {
	return p.blobs.Get(key)
}

// Version returns the version of the last successful compile, 0 before one.
func (p *Project) Version() int {
	return p.version
}

// Types returns the type mapping of the last successful compile, nil before
// one.
func (p *Project) Types() map[string]*model.Type {
	return p.types
}

// Resources returns the exported resources of the last successful compile,
// keyed by canonical id.
func (p *Project) Resources() map[string]*model.Resource {
	return p.resources
}

// GetInstances returns every compiled instance of the given type, or every
// resource when typeName is empty.
func (p *Project) GetInstances(typeName string) []*model.Resource {
	if p.types == nil {
		return nil
	}
	if typeName == "" {
		out := make([]*model.Resource, 0, len(p.resources))
		for _, res := range p.resources {
			out = append(out, res)
		}
		return out
	}
	t, ok := p.types[typeName]
	if !ok {
		return nil
	}
	return t.AllInstances()
}

// GetPluginFunction returns the named plugin function loaded from the module
// under test.
func (p *Project) GetPluginFunction(name string) (*plugins.Function, error) {
	return p.plugins.Get(name)
}

// Plugins returns every loaded plugin function keyed by name.
func (p *Project) Plugins() map[string]*plugins.Function {
	return p.plugins.All()
}
