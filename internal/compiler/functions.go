package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"

	"github.com/vk/modtest/internal/blobstore"
)

// factFunction resolves externally supplied facts:
// fact(resource_id, name) -> string. A fact that was never recorded is a
// compile error, so a test fails loudly instead of deploying against an
// unknown value.
func factFunction(facts map[string]map[string]any) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "resource_id", Type: cty.String},
			{Name: "name", Type: cty.String},
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			resourceID := args[0].AsString()
			name := args[1].AsString()
			forResource, ok := facts[resourceID]
			if !ok {
				return cty.NilVal, fmt.Errorf("no facts recorded for resource %q", resourceID)
			}
			value, ok := forResource[name]
			if !ok {
				return cty.NilVal, fmt.Errorf("fact %q not recorded for resource %q", name, resourceID)
			}
			return cty.StringVal(fmt.Sprintf("%v", value)), nil
		},
	})
}

// fileFunction reads a file from a module tree and returns its
// content-addressed hash reference: file("unittest/files/motd") -> "hash:...".
// The content is recorded in the compile result so the export step can persist
// it into the blob store.
func fileFunction(libsDir string, files map[string][]byte) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "path", Type: cty.String},
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			rel := args[0].AsString()
			if strings.Contains(rel, "..") {
				return cty.NilVal, fmt.Errorf("file path %q may not leave the module tree", rel)
			}
			content, err := os.ReadFile(filepath.Join(libsDir, filepath.FromSlash(rel)))
			if err != nil {
				return cty.NilVal, fmt.Errorf("cannot read model file %q: %w", rel, err)
			}
			key := blobstore.Hash(content)
			files[key] = content
			return cty.StringVal(key), nil
		},
	})
}
