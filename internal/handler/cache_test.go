package handler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithVersionReleasesOnSuccess(t *testing.T) {
	c := NewAgentCache()

	err := c.WithVersion(1, func() error {
		assert.True(t, c.IsOpen(1))
		return nil
	})
	require.NoError(t, err)
	assert.False(t, c.IsOpen(1))
}

func TestWithVersionReleasesOnError(t *testing.T) {
	c := NewAgentCache()
	boom := errors.New("boom")

	err := c.WithVersion(1, func() error { return boom })
	require.ErrorIs(t, err, boom)
	assert.False(t, c.IsOpen(1))
}

func TestEntriesAreEvictedOnLastClose(t *testing.T) {
	c := NewAgentCache()

	c.OpenVersion(2)
	c.OpenVersion(2)
	require.NoError(t, c.Set(2, "connection", "cached"))

	c.CloseVersion(2)
	v, ok := c.Get(2, "connection")
	require.True(t, ok, "nested scope still open, entry must survive")
	assert.Equal(t, "cached", v)

	c.CloseVersion(2)
	_, ok = c.Get(2, "connection")
	assert.False(t, ok)
	assert.False(t, c.IsOpen(2))
}

func TestSetOutsideOpenScopeFails(t *testing.T) {
	c := NewAgentCache()
	err := c.Set(3, "k", "v")
	assert.Error(t, err)
}

func TestCloseWithoutOpenIsANoop(t *testing.T) {
	c := NewAgentCache()
	c.CloseVersion(9)
	assert.False(t, c.IsOpen(9))
}
