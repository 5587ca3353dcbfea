// Package resourceid defines the typed identifier attached to every exported
// resource. The canonical string form is
//
//	module::Entity[agent,attribute=value],v=N
//
// where the bracketed pair names the agent the resource is bound to and the
// attribute that makes the instance unique within its type.
package resourceid

// ID is the structured representation of a resource identifier.
type ID struct {
	// EntityType is the fully qualified type name, e.g. "testmodule::Resource".
	EntityType string
	// Agent is the name of the agent the resource is deployed through.
	Agent string
	// AttributeName is the identifying attribute of the entity.
	AttributeName string
	// AttributeValue is the value of the identifying attribute.
	AttributeValue string
	// Version is the compile version the resource was exported at.
	Version int
}

// WithVersion returns a copy of the ID stamped with the given version.
func (id ID) WithVersion(version int) ID {
	id.Version = version
	return id
}

// Equal reports whether two IDs are identical, version included.
func (id ID) Equal(other ID) bool {
	return id == other
}
