package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/modtest/internal/handler"
	"github.com/vk/modtest/internal/testutil"
)

func TestRunPrintsResourcesAndDryRunChanges(t *testing.T) {
	moduleDir := testutil.ScaffoldModule(t, nil)
	store := testutil.NewKVStore()
	testutil.RegisterKVHandler(handler.DefaultCommander, store)

	modelFile := filepath.Join(t.TempDir(), "deploy.hcl")
	require.NoError(t, os.WriteFile(modelFile, []byte(`import "testmodule" {}

resource "testmodule::Resource" "r" {
  agent = "a"
  name  = "IT"
  key   = "k"
  value = "write"
}
`), 0o644))

	out := &testutil.SafeBuffer{}
	require.NoError(t, run(out, []string{"-workdir", moduleDir, modelFile}))

	output := out.String()
	assert.Contains(t, output, "compiled version 1, 1 resource(s)")
	assert.Contains(t, output, "testmodule::Resource[a,name=IT],v=1")
	assert.Contains(t, output, "dry run (dry): 4 change(s)")
	assert.Contains(t, output, "value: <nil> -> write")

	_, ok := store.Get("k")
	assert.False(t, ok, "the command must not apply changes")
}

func TestRunWithoutModelFileIsAUsageError(t *testing.T) {
	out := &testutil.SafeBuffer{}
	err := run(out, nil)
	require.Error(t, err)
	exitErr, ok := err.(*exitError)
	require.True(t, ok)
	assert.Equal(t, 2, exitErr.code)
}
