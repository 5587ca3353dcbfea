// Package model holds the artifacts produced by compiling a configuration
// model: type descriptors and the resource instances exported from them.
package model

import (
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/modtest/internal/resourceid"
)

// AttributeDef describes a single attribute declared on an entity.
type AttributeDef struct {
	Name     string
	Type     cty.Type
	Optional bool
	Default  *cty.Value
}

// Type is the descriptor for a compiled entity type, e.g.
// "testmodule::Resource". It collects the instances created from it during a
// compile.
type Type struct {
	// Name is the fully qualified type name.
	Name string
	// Attributes are the declared attributes, in declaration order.
	Attributes []*AttributeDef
	// IDAttribute names the attribute that identifies an instance.
	IDAttribute string
	// AgentAttribute names the attribute that binds an instance to an agent.
	AgentAttribute string

	instances []*Resource
}

// Attribute returns the definition for the named attribute, or nil.
func (t *Type) Attribute(name string) *AttributeDef {
	for _, a := range t.Attributes {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// AddInstance records a compiled instance of this type.
func (t *Type) AddInstance(r *Resource) {
	t.instances = append(t.instances, r)
}

// AllInstances returns every instance compiled for this type, in creation order.
func (t *Type) AllInstances() []*Resource {
	out := make([]*Resource, len(t.instances))
	copy(out, t.instances)
	return out
}

// Resource is a single typed unit of desired state produced by a compile. The
// harness never inspects it beyond type membership and attribute equality.
type Resource struct {
	ID         resourceid.ID
	TypeName   string
	Attributes map[string]any
}

// IsType reports whether the resource is an instance of the given type name.
func (r *Resource) IsType(name string) bool {
	return r.TypeName == name
}

// Get returns the named attribute value and whether it is present.
func (r *Resource) Get(name string) (any, bool) {
	v, ok := r.Attributes[name]
	return v, ok
}

// Attribute returns the named attribute value, or nil when absent.
func (r *Resource) Attribute(name string) any {
	return r.Attributes[name]
}
