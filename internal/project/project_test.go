package project_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/modtest/internal/blobstore"
	"github.com/vk/modtest/internal/handler"
	"github.com/vk/modtest/internal/project"
	"github.com/vk/modtest/internal/testutil"
)

const basicModel = `import "testmodule" {}

resource "testmodule::Resource" "r" {
  agent = "a"
  name  = "IT"
  key   = "k"
  value = "write"
}
`

// newProject stands up a project around a scaffolded testmodule with a
// key-value handler registered for testmodule::Resource.
func newProject(t *testing.T, pluginFiles map[string]string) (*project.Project, *testutil.KVStore, *testutil.SafeBuffer) {
	t.Helper()

	moduleDir := testutil.ScaffoldModule(t, pluginFiles)

	commander := handler.NewCommander()
	store := testutil.NewKVStore()
	testutil.RegisterKVHandler(commander, store)

	out := &testutil.SafeBuffer{}
	p, err := project.New(project.Options{
		WorkDir:   moduleDir,
		Commander: commander,
		Out:       out,
	})
	require.NoError(t, err)
	t.Cleanup(p.Close)
	p.Init()

	return p, store, out
}

func TestCompileProducesTypedResources(t *testing.T) {
	p, _, _ := newProject(t, nil)

	require.NoError(t, p.Compile(basicModel))

	assert.Equal(t, 1, p.Version())
	assert.Contains(t, p.Types(), "testmodule::Resource")
	require.Len(t, p.Resources(), 1)

	res := p.GetResource("testmodule::Resource", nil)
	require.NotNil(t, res)
	assert.Equal(t, "write", res.Attribute("value"))
	assert.Equal(t, 1, res.ID.Version)
}

func TestDeployResourceEndToEnd(t *testing.T) {
	p, store, _ := newProject(t, nil)
	require.NoError(t, p.Compile(basicModel))

	res, hctx, err := p.DeployResource("testmodule::Resource", handler.StatusDeployed, false, nil)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, handler.StatusDeployed, hctx.Status())

	value, ok := store.Get("k")
	require.True(t, ok)
	assert.Equal(t, "write", value)
}

func TestDryRunComputesChangesWithoutApplying(t *testing.T) {
	p, store, _ := newProject(t, nil)
	require.NoError(t, p.Compile(basicModel))

	changes, err := p.DryRunResource("testmodule::Resource", handler.StatusDry, false, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, changes, "missing resource must require changes")

	_, ok := store.Get("k")
	assert.False(t, ok, "dry run must not touch the target")
}

func TestDryRunOfInSyncResourceIsEmpty(t *testing.T) {
	p, _, _ := newProject(t, nil)
	require.NoError(t, p.Compile(basicModel))

	_, _, err := p.DeployResource("testmodule::Resource", handler.StatusDeployed, false, nil)
	require.NoError(t, err)

	changes, err := p.DryRunResource("testmodule::Resource", handler.StatusDry, false, nil)
	require.NoError(t, err)
	assert.Empty(t, changes)
}

func TestDeployResourceWithFilters(t *testing.T) {
	p, store, _ := newProject(t, nil)
	require.NoError(t, p.Compile(`import "testmodule" {}

resource "testmodule::Resource" "one" {
  agent = "a"
  name  = "first"
  key   = "k1"
  value = "v1"
}

resource "testmodule::Resource" "two" {
  agent = "a"
  name  = "second"
  key   = "k2"
  value = "v2"
}
`))

	res, _, err := p.DeployResource("testmodule::Resource", handler.StatusDeployed, false,
		map[string]any{"key": "k2"})
	require.NoError(t, err)
	assert.Equal(t, "second", res.Attribute("name"))

	_, ok := store.Get("k2")
	assert.True(t, ok)
	_, ok = store.Get("k1")
	assert.False(t, ok)
}

func TestDeployResourceNoMatchFailsBeforeDeploying(t *testing.T) {
	p, store, _ := newProject(t, nil)
	require.NoError(t, p.Compile(basicModel))

	_, _, err := p.DeployResource("testmodule::Resource", handler.StatusDeployed, false,
		map[string]any{"key": "nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no resource found")

	_, ok := store.Get("k")
	assert.False(t, ok, "nothing may be deployed on a lookup failure")
}

func TestFilterOnMissingAttributeExcludesResource(t *testing.T) {
	p, _, _ := newProject(t, nil)
	require.NoError(t, p.Compile(basicModel))

	res := p.GetResource("testmodule::Resource", map[string]any{"no_such_attr": "x"})
	assert.Nil(t, res)
}

func TestStatusMismatchDumpsDiagnostics(t *testing.T) {
	moduleDir := testutil.ScaffoldModule(t, nil)

	commander := handler.NewCommander()
	testutil.RegisterFailingHandler(commander, "testmodule::Resource")

	out := &testutil.SafeBuffer{}
	p, err := project.New(project.Options{WorkDir: moduleDir, Commander: commander, Out: out})
	require.NoError(t, err)
	t.Cleanup(p.Close)
	p.Init()

	require.NoError(t, p.Compile(basicModel))

	_, hctx, err := p.DeployResource("testmodule::Resource", handler.StatusDeployed, false, nil)
	require.Error(t, err)
	assert.Equal(t, handler.StatusFailed, hctx.Status())

	dump := out.String()
	assert.Contains(t, dump, "did not result in the expected status")
	assert.Contains(t, dump, "target rejected the change")
	assert.Contains(t, dump, "Traceback")
}

func TestInitFullyResetsState(t *testing.T) {
	p, _, _ := newProject(t, nil)
	require.NoError(t, p.Compile(basicModel))
	p.AddFact("r1", "state", "up")
	require.NoError(t, p.AddBlob("k", []byte("blob"), false))

	p.Init()

	assert.Nil(t, p.Types())
	assert.Empty(t, p.Resources())
	assert.Equal(t, 0, p.Version())
	assert.False(t, p.StatBlob("k"))
	assert.Nil(t, p.GetResource("testmodule::Resource", nil))
	assert.Empty(t, p.Stdout())
	assert.Empty(t, p.Stderr())
}

func TestVersionIsMonotonicAcrossInit(t *testing.T) {
	p, _, _ := newProject(t, nil)

	require.NoError(t, p.Compile(basicModel))
	assert.Equal(t, 1, p.Version())
	require.NoError(t, p.Compile(basicModel))
	assert.Equal(t, 2, p.Version())

	p.Init()
	require.NoError(t, p.Compile(basicModel))
	assert.Equal(t, 3, p.Version())
}

func TestFactRoundTripThroughCompile(t *testing.T) {
	p, _, _ := newProject(t, nil)
	p.AddFact("r1", "current_value", "observed")

	require.NoError(t, p.Compile(`import "testmodule" {}

resource "testmodule::Resource" "r" {
  agent = "a"
  name  = "IT"
  key   = "k"
  value = fact("r1", "current_value")
}
`))

	res := p.GetResource("testmodule::Resource", nil)
	require.NotNil(t, res)
	assert.Equal(t, "observed", res.Attribute("value"))
}

func TestMockFileFeedsBlobStore(t *testing.T) {
	p, _, _ := newProject(t, nil)
	content := "template body"
	require.NoError(t, p.AddMockFile("files", "motd", content))

	require.NoError(t, p.Compile(`import "testmodule" {}

resource "testmodule::Resource" "r" {
  agent = "a"
  name  = "IT"
  key   = "k"
  value = file("unittest/files/motd")
}
`))

	key := blobstore.Hash([]byte(content))
	require.True(t, p.StatBlob(key))
	blob, ok := p.GetBlob(key)
	require.True(t, ok)
	assert.Equal(t, content, string(blob))

	res := p.GetResource("testmodule::Resource", nil)
	require.NotNil(t, res)
	assert.Equal(t, key, res.Attribute("value"))
}

func TestGetInstances(t *testing.T) {
	p, _, _ := newProject(t, nil)

	assert.Nil(t, p.GetInstances("testmodule::Resource"), "no instances before a compile")

	require.NoError(t, p.Compile(basicModel))

	instances := p.GetInstances("testmodule::Resource")
	require.Len(t, instances, 1)
	assert.Equal(t, "IT", instances[0].Attribute("name"))

	all := p.GetInstances("")
	assert.Len(t, all, 1)
	assert.Empty(t, p.GetInstances("testmodule::Other"))
}

func TestCompileErrorPropagates(t *testing.T) {
	p, _, _ := newProject(t, nil)

	err := p.Compile(`resource "testmodule::Resource" "r" {
  agent = "a"
  name  = "IT"
  key   = "k"
  value = "write"
}
`)
	require.Error(t, err, "type is unknown without the import")
}

func TestPluginFunctions(t *testing.T) {
	p, _, _ := newProject(t, map[string]string{
		"aaaa.go": "package plugins\n\nfunc Origin() string { return \"aaaa\" }\n",
		"zzzz.go": "package plugins\n\nfunc Origin() string { return \"zzzz\" }\n\nfunc Shout(s string) string { return s + \"!\" }\n",
	})

	fn, err := p.GetPluginFunction("Shout")
	require.NoError(t, err)
	results, err := fn.Call("deploy")
	require.NoError(t, err)
	assert.Equal(t, "deploy!", results[0])

	// Lexicographically later file wins on duplicate names.
	fn, err = p.GetPluginFunction("Origin")
	require.NoError(t, err)
	results, err = fn.Call()
	require.NoError(t, err)
	assert.Equal(t, "zzzz", results[0])

	_, err = p.GetPluginFunction("Missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Missing")

	assert.Len(t, p.Plugins(), 2)
}

func TestModuleWithoutManifestIsASetupError(t *testing.T) {
	_, err := project.New(project.Options{WorkDir: t.TempDir()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not part of a module path")
}
