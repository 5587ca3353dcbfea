package factstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFactsAccumulate(t *testing.T) {
	s := New()
	s.Add("r1", "mtu", 1500)
	s.Add("r1", "state", "up")
	s.Add("r2", "state", "down")

	assert.Equal(t, map[string]any{"mtu": 1500, "state": "up"}, s.ForResource("r1"))
	assert.Equal(t, map[string]any{"state": "down"}, s.ForResource("r2"))
}

func TestRepeatedFactOverwrites(t *testing.T) {
	s := New()
	s.Add("r1", "state", "up")
	s.Add("r1", "state", "down")

	assert.Equal(t, map[string]any{"state": "down"}, s.ForResource("r1"))
}

func TestAllReturnsACopy(t *testing.T) {
	s := New()
	s.Add("r1", "state", "up")

	all := s.All()
	all["r1"]["state"] = "mutated"
	assert.Equal(t, "up", s.ForResource("r1")["state"])
}

func TestReset(t *testing.T) {
	s := New()
	s.Add("r1", "state", "up")
	s.Reset()
	assert.Empty(t, s.All())
}
