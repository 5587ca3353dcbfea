// Package compiler turns a test project's configuration model into typed
// resources. It loads entity definitions from the model files of every
// imported module under the project's module path, then decodes the resource
// blocks of main.hcl against those definitions.
//
// The compiler is a collaborator of the harness, not a general-purpose type
// checker: it validates exactly what a module unit test needs (known types,
// required attributes, attribute type constraints, unique resource ids) and
// propagates any failure unchanged to the caller.
package compiler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/ext/typeexpr"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/function"
	"gopkg.in/yaml.v3"

	"github.com/vk/modtest/internal/ctxlog"
	"github.com/vk/modtest/internal/fsutil"
	"github.com/vk/modtest/internal/model"
	"github.com/vk/modtest/internal/resourceid"
	"github.com/vk/modtest/internal/schema"
)

// Refs carries the external reference data fed into a compile.
type Refs struct {
	// Facts maps resource identifier -> fact name -> value, resolved by the
	// fact() model function.
	Facts map[string]map[string]any
}

// Result is the output of a successful compile.
type Result struct {
	// Types maps fully qualified type names to their descriptors.
	Types map[string]*model.Type
	// Resources are the compiled instances, in declaration order.
	Resources []*model.Resource
	// Files holds content-addressed file artifacts referenced by the model
	// through the file() function, keyed by their hash reference.
	Files map[string][]byte
}

// Compile compiles the model in <projectDir>/main.hcl. Module definitions are
// resolved against the project's module path as configured in project.yml.
func Compile(ctx context.Context, projectDir string, refs Refs) (*Result, error) {
	logger := ctxlog.FromContext(ctx)

	modulePath, err := readModulePath(projectDir)
	if err != nil {
		return nil, err
	}
	libsDir := filepath.Join(projectDir, modulePath)

	parser := hclparse.NewParser()

	mainFile := filepath.Join(projectDir, "main.hcl")
	hclFile, diags := parser.ParseHCLFile(mainFile)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse %s: %w", mainFile, diags)
	}

	var main schema.MainConfig
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &main); diags.HasErrors() {
		return nil, fmt.Errorf("invalid model in %s: %w", mainFile, diags)
	}

	result := &Result{
		Types: make(map[string]*model.Type),
		Files: make(map[string][]byte),
	}

	for _, imp := range main.Imports {
		if err := loadModuleTypes(ctx, parser, libsDir, imp.Module, result.Types); err != nil {
			return nil, err
		}
	}
	logger.Debug("Module definitions loaded.", "types", len(result.Types), "imports", len(main.Imports))

	evalCtx := &hcl.EvalContext{
		Functions: map[string]function.Function{
			"fact": factFunction(refs.Facts),
			"file": fileFunction(libsDir, result.Files),
		},
	}

	seen := make(map[string]string, len(main.Resources))
	for _, block := range main.Resources {
		res, err := compileResource(block, result.Types, evalCtx)
		if err != nil {
			return nil, err
		}
		key := res.ID.Unversioned()
		if prev, ok := seen[key]; ok {
			return nil, fmt.Errorf("resource %q and resource %q map to the same resource id %s", prev, block.Name, key)
		}
		seen[key] = block.Name
		result.Resources = append(result.Resources, res)
		result.Types[res.TypeName].AddInstance(res)
	}
	logger.Debug("Model compiled.", "resources", len(result.Resources))

	return result, nil
}

// readModulePath returns the modulepath configured in project.yml, defaulting
// to "libs".
func readModulePath(projectDir string) (string, error) {
	raw, err := os.ReadFile(filepath.Join(projectDir, "project.yml"))
	if err != nil {
		return "", fmt.Errorf("cannot read project manifest: %w", err)
	}
	var manifest schema.ProjectManifest
	if err := yaml.Unmarshal(raw, &manifest); err != nil {
		return "", fmt.Errorf("invalid project manifest: %w", err)
	}
	if manifest.ModulePath == "" {
		return "libs", nil
	}
	return manifest.ModulePath, nil
}

// loadModuleTypes parses every model file of the named module and registers
// its entities under `<module>::<Entity>`.
func loadModuleTypes(ctx context.Context, parser *hclparse.Parser, libsDir, moduleName string, types map[string]*model.Type) error {
	logger := ctxlog.FromContext(ctx)
	moduleDir := filepath.Join(libsDir, moduleName)

	if _, err := os.Stat(filepath.Join(moduleDir, "module.yml")); err != nil {
		return fmt.Errorf("imported module %q not found under %s", moduleName, libsDir)
	}

	modelDir := filepath.Join(moduleDir, "model")
	files, err := fsutil.FindFilesByExtension(modelDir, ".hcl")
	if err != nil {
		return fmt.Errorf("failed to scan model files of module %q: %w", moduleName, err)
	}

	for _, path := range files {
		hclFile, diags := parser.ParseHCLFile(path)
		if diags.HasErrors() {
			return fmt.Errorf("failed to parse %s: %w", path, diags)
		}
		var cfg schema.ModelConfig
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &cfg); diags.HasErrors() {
			return fmt.Errorf("invalid model file %s: %w", path, diags)
		}
		for _, entity := range cfg.Entities {
			t, err := buildType(moduleName, entity)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			if _, exists := types[t.Name]; exists {
				return fmt.Errorf("entity %q defined more than once", t.Name)
			}
			types[t.Name] = t
			logger.Debug("Registered entity type.", "type", t.Name, "attributes", len(t.Attributes))
		}
	}
	return nil
}

func buildType(moduleName string, entity *schema.EntityBlock) (*model.Type, error) {
	t := &model.Type{
		Name:           moduleName + "::" + entity.Name,
		IDAttribute:    entity.IDAttribute,
		AgentAttribute: entity.AgentAttribute,
	}
	for _, attr := range entity.Attributes {
		ctyType, diags := typeexpr.TypeConstraint(attr.Type)
		if diags.HasErrors() {
			return nil, fmt.Errorf("entity %q attribute %q has an invalid type: %w", entity.Name, attr.Name, diags)
		}
		t.Attributes = append(t.Attributes, &model.AttributeDef{
			Name:     attr.Name,
			Type:     ctyType,
			Optional: attr.Optional || attr.Default != nil,
			Default:  attr.Default,
		})
	}
	if t.Attribute(entity.IDAttribute) == nil {
		return nil, fmt.Errorf("entity %q declares unknown id_attribute %q", entity.Name, entity.IDAttribute)
	}
	if t.Attribute(entity.AgentAttribute) == nil {
		return nil, fmt.Errorf("entity %q declares unknown agent_attribute %q", entity.Name, entity.AgentAttribute)
	}
	return t, nil
}

// compileResource decodes a resource block against its entity definition.
func compileResource(block *schema.ResourceBlock, types map[string]*model.Type, evalCtx *hcl.EvalContext) (*model.Resource, error) {
	t, ok := types[block.TypeName]
	if !ok {
		return nil, fmt.Errorf("resource %q instantiates unknown type %q (missing import?)", block.Name, block.TypeName)
	}

	attrs, diags := block.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid attributes on resource %q: %w", block.Name, diags)
	}

	values := make(map[string]any, len(attrs))
	ctyValues := make(map[string]cty.Value, len(attrs))
	for name, attr := range attrs {
		def := t.Attribute(name)
		if def == nil {
			return nil, fmt.Errorf("resource %q sets undeclared attribute %q on type %q", block.Name, name, t.Name)
		}
		val, diags := attr.Expr.Value(evalCtx)
		if diags.HasErrors() {
			return nil, fmt.Errorf("resource %q attribute %q: %w", block.Name, name, diags)
		}
		converted, err := convert.Convert(val, def.Type)
		if err != nil {
			return nil, fmt.Errorf("resource %q attribute %q: %w", block.Name, name, err)
		}
		ctyValues[name] = converted
		values[name] = model.FromCty(converted)
	}

	for _, def := range t.Attributes {
		if _, ok := ctyValues[def.Name]; ok {
			continue
		}
		if def.Default != nil {
			ctyValues[def.Name] = *def.Default
			values[def.Name] = model.FromCty(*def.Default)
			continue
		}
		if !def.Optional {
			return nil, fmt.Errorf("resource %q is missing required attribute %q", block.Name, def.Name)
		}
	}

	agent, ok := values[t.AgentAttribute].(string)
	if !ok {
		return nil, fmt.Errorf("resource %q: agent attribute %q must be a string", block.Name, t.AgentAttribute)
	}
	idValue, ok := values[t.IDAttribute].(string)
	if !ok {
		return nil, fmt.Errorf("resource %q: id attribute %q must be a string", block.Name, t.IDAttribute)
	}

	return &model.Resource{
		ID: resourceid.ID{
			EntityType:     t.Name,
			Agent:          agent,
			AttributeName:  t.IDAttribute,
			AttributeValue: idValue,
		},
		TypeName:   t.Name,
		Attributes: values,
	}, nil
}
