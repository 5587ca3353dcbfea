package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestmoduleModel is the model of the scaffolded "testmodule": a single
// key-value entity bound to an agent.
const TestmoduleModel = `entity "Resource" {
  attribute "agent" {
    type = string
  }
  attribute "name" {
    type = string
  }
  attribute "key" {
    type = string
  }
  attribute "value" {
    type = string
  }

  id_attribute    = "name"
  agent_attribute = "agent"
}
`

// TestmoduleManifest is the module.yml of the scaffolded module.
const TestmoduleManifest = `name: testmodule
version: "0.1"
license: Test License
`

// ScaffoldModule writes a complete testmodule into a fresh temp directory and
// returns its path: module.yml, the entity model, and the plugin files given
// as name -> source (the package marker is always written).
func ScaffoldModule(t *testing.T, pluginFiles map[string]string) string {
	t.Helper()

	moduleDir := filepath.Join(t.TempDir(), "testmodule")
	require.NoError(t, os.MkdirAll(filepath.Join(moduleDir, "model"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(moduleDir, "plugins"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(moduleDir, "tests"), 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(moduleDir, "module.yml"), []byte(TestmoduleManifest), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(moduleDir, "model", "init.hcl"), []byte(TestmoduleModel), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(moduleDir, "plugins", "init.go"), []byte("package plugins\n"), 0o644))

	for name, src := range pluginFiles {
		require.NoError(t, os.WriteFile(filepath.Join(moduleDir, "plugins", name), []byte(src), 0o644))
	}

	return moduleDir
}
