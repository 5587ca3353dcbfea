// Package schema defines the HCL shapes of the configuration model language
// and the YAML shapes of the project and module manifests.
package schema

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// --- Module model schemas ---

// AttributeBlock declares a single attribute of an entity.
type AttributeBlock struct {
	Name     string         `hcl:"attribute_name,label"`
	Type     hcl.Expression `hcl:"type"`
	Optional bool           `hcl:"optional,optional"`
	Default  *cty.Value     `hcl:"default,optional"`
}

// EntityBlock declares an entity type inside a module's model. The fully
// qualified type name becomes `<module>::<entity_name>`.
type EntityBlock struct {
	Name           string            `hcl:"entity_name,label"`
	Attributes     []*AttributeBlock `hcl:"attribute,block"`
	IDAttribute    string            `hcl:"id_attribute"`
	AgentAttribute string            `hcl:"agent_attribute"`
}

// ModelConfig is the top-level structure of a module model file.
type ModelConfig struct {
	Entities []*EntityBlock `hcl:"entity,block"`
	Body     hcl.Body       `hcl:",remain"`
}

// --- Main model schemas ---

// ImportBlock pulls a module's entity definitions into scope.
type ImportBlock struct {
	Module string `hcl:"module_name,label"`
}

// ResourceBlock instantiates an entity. Its attributes are free-form and are
// decoded against the entity definition, so the body is kept opaque here.
type ResourceBlock struct {
	TypeName string   `hcl:"resource_type,label"`
	Name     string   `hcl:"instance_name,label"`
	Body     hcl.Body `hcl:",remain"`
}

// MainConfig is the top-level structure of the compiled test model (main.hcl).
type MainConfig struct {
	Imports   []*ImportBlock   `hcl:"import,block"`
	Resources []*ResourceBlock `hcl:"resource,block"`
	Body      hcl.Body         `hcl:",remain"`
}
