// Package exporter turns a compile result into deployable state: it stamps
// every resource with the compile version, keys the resources by canonical id,
// and surfaces the content-addressed file artifacts for the blob store.
package exporter

import (
	"github.com/vk/modtest/internal/compiler"
	"github.com/vk/modtest/internal/model"
)

// Export stamps the compiled resources with version and returns them keyed by
// canonical id string, together with the file artifacts produced during the
// compile.
func Export(result *compiler.Result, version int) (map[string]*model.Resource, map[string][]byte) {
	resources := make(map[string]*model.Resource, len(result.Resources))
	for _, res := range result.Resources {
		res.ID = res.ID.WithVersion(version)
		resources[res.ID.String()] = res
	}

	files := make(map[string][]byte, len(result.Files))
	for key, content := range result.Files {
		files[key] = content
	}

	return resources, files
}
