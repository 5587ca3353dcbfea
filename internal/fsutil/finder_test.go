package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFilesByExtensionReturnsSortedPaths(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a"), 0o755))
	// "a-b.hcl" sorts before "a/x.hcl" but is walked after it, since the
	// directory "a" is visited first.
	require.NoError(t, os.WriteFile(filepath.Join(root, "a-b.hcl"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a", "x.hcl"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "ignored.txt"), nil, 0o644))

	files, err := FindFilesByExtension(root, ".hcl")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a-b.hcl"),
		filepath.Join(root, "a", "x.hcl"),
	}, files)
}

func TestFindFilesByExtensionMissingRootFails(t *testing.T) {
	_, err := FindFilesByExtension(filepath.Join(t.TempDir(), "nope"), ".hcl")
	assert.Error(t, err)
}
