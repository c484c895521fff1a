package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaleCache_PutRequiresCurrentGeneration(t *testing.T) {
	sc := newStaleCache(time.Minute, time.Minute)

	gen := sc.generation("k")
	assert.True(t, sc.put("k", gen, "v1"))

	got, found := sc.Get("k")
	require.True(t, found)
	assert.Equal(t, "v1", got)

	sc.invalidate("k")
	assert.False(t, sc.put("k", gen, "v2"), "stale generation must be discarded")
	_, found = sc.Get("k")
	assert.False(t, found)

	// A refresh started after the invalidation applies normally.
	gen = sc.generation("k")
	assert.True(t, sc.put("k", gen, "v3"))
}

func TestStaleCache_InvalidateAllCoversInFlightKeys(t *testing.T) {
	sc := newStaleCache(time.Minute, time.Minute)

	// generation() registers the key even before anything is stored, so a
	// flush that lands mid-fetch still wins.
	gen := sc.generation("unseen")
	sc.invalidateAll()
	assert.False(t, sc.put("unseen", gen, "late"))
}

func TestStaleCache_IndependentKeys(t *testing.T) {
	sc := newStaleCache(time.Minute, time.Minute)

	genA := sc.generation("a")
	genB := sc.generation("b")
	sc.invalidate("a")

	assert.False(t, sc.put("a", genA, 1))
	assert.True(t, sc.put("b", genB, 2))
}
