package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptsPreferFresh(t *testing.T) {
	c := New(nil)

	first := c.Prompts(3, nil)
	require.Len(t, first, 3)

	used := make(map[string]struct{})
	for _, prompt := range first {
		used[prompt.ID] = struct{}{}
	}
	second := c.Prompts(3, used)
	require.Len(t, second, 3)
	for _, prompt := range second {
		_, repeated := used[prompt.ID]
		assert.False(t, repeated, "fresh prompts available, none should repeat")
	}
}

func TestPromptsReuseWhenExhausted(t *testing.T) {
	c := New(nil)

	used := make(map[string]struct{})
	for _, prompt := range c.Prompts(1000, nil) {
		used[prompt.ID] = struct{}{}
	}
	// Everything is used; the draw must still produce candidates.
	prompts := c.Prompts(3, used)
	assert.Len(t, prompts, 3)
}

func TestSoundSetDraw(t *testing.T) {
	c := New(nil)

	set := c.SoundSet(6)
	require.Len(t, set, 6)
	seen := make(map[string]struct{})
	for _, id := range set {
		_, dup := seen[id]
		assert.False(t, dup, "a dealt set has no duplicates")
		seen[id] = struct{}{}
		assert.True(t, c.HasSound(id))
	}
	assert.False(t, c.HasSound("definitely-not-a-sound"))
}

func TestZeroAndOversizedDraws(t *testing.T) {
	c := New(nil)

	assert.Nil(t, c.Prompts(0, nil))
	assert.Nil(t, c.SoundSet(0))
	huge := c.SoundSet(10000)
	assert.NotEmpty(t, huge)
}
