package plugins

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeModule(t *testing.T, pluginFiles map[string]string) string {
	t.Helper()
	moduleDir := t.TempDir()
	if pluginFiles == nil {
		return moduleDir
	}
	pluginDir := filepath.Join(moduleDir, "plugins")
	require.NoError(t, os.MkdirAll(pluginDir, 0o755))
	for name, src := range pluginFiles {
		require.NoError(t, os.WriteFile(filepath.Join(pluginDir, name), []byte(src), 0o644))
	}
	return moduleDir
}

func TestMissingPluginDirYieldsEmptyRegistry(t *testing.T) {
	moduleDir := writeModule(t, nil)

	registry, err := Load(context.Background(), moduleDir)
	require.NoError(t, err)
	assert.Empty(t, registry.All())
}

func TestMissingMarkerFails(t *testing.T) {
	moduleDir := writeModule(t, map[string]string{
		"helpers.go": "package plugins\n\nfunc Hello() string { return \"hi\" }\n",
	})

	_, err := Load(context.Background(), moduleDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), MarkerFile)
}

func TestLoadsTopLevelFunctions(t *testing.T) {
	moduleDir := writeModule(t, map[string]string{
		"init.go": "package plugins\n",
		"helpers.go": `package plugins

import "strings"

func Upper(s string) string { return strings.ToUpper(s) }

func Hello() string { return "hi" }
`,
	})

	registry, err := Load(context.Background(), moduleDir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Upper", "Hello"}, registry.Names())

	fn, err := registry.Get("Upper")
	require.NoError(t, err)
	results, err := fn.Call("abc")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "ABC", results[0])
}

func TestUnknownFunctionIsDescriptiveError(t *testing.T) {
	moduleDir := writeModule(t, map[string]string{"init.go": "package plugins\n"})

	registry, err := Load(context.Background(), moduleDir)
	require.NoError(t, err)

	_, err = registry.Get("DoesNotExist")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DoesNotExist")
}

func TestCallRejectsMistypedArguments(t *testing.T) {
	moduleDir := writeModule(t, map[string]string{
		"init.go": "package plugins\n",
		"helpers.go": `package plugins

func Repeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}
`,
	})

	registry, err := Load(context.Background(), moduleDir)
	require.NoError(t, err)

	fn, err := registry.Get("Repeat")
	require.NoError(t, err)

	_, err = fn.Call(42, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "argument 0")
	assert.Contains(t, err.Error(), "string")

	_, err = fn.Call("ab")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 arguments")

	results, err := fn.Call("ab", 2)
	require.NoError(t, err)
	assert.Equal(t, "abab", results[0])
}

func TestLaterFileWinsOnDuplicateName(t *testing.T) {
	moduleDir := writeModule(t, map[string]string{
		"init.go": "package plugins\n",
		"aaaa.go": "package plugins\n\nfunc Origin() string { return \"aaaa\" }\n",
		"zzzz.go": "package plugins\n\nfunc Origin() string { return \"zzzz\" }\n",
	})

	registry, err := Load(context.Background(), moduleDir)
	require.NoError(t, err)

	fn, err := registry.Get("Origin")
	require.NoError(t, err)
	results, err := fn.Call()
	require.NoError(t, err)
	assert.Equal(t, "zzzz", results[0])
	assert.Contains(t, fn.File(), "zzzz.go")
}

func TestMethodsAndInitAreSkipped(t *testing.T) {
	moduleDir := writeModule(t, map[string]string{
		"init.go": "package plugins\n",
		"types.go": `package plugins

type counter struct{ n int }

func (c *counter) Inc() { c.n++ }

func NewCounter() int { return 0 }
`,
	})

	registry, err := Load(context.Background(), moduleDir)
	require.NoError(t, err)
	assert.Equal(t, []string{"NewCounter"}, registry.Names())
}
