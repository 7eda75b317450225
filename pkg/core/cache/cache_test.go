package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryResultCache_SetGet(t *testing.T) {
	c := NewMemoryResultCache[int](0)
	defer c.Close()

	c.Set("forward", 3, time.Hour)
	v, ok := c.Get("forward")
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	_, ok = c.Get("backward")
	assert.False(t, ok)

	c.Set("", 1, time.Hour)
	assert.Equal(t, 1, c.Len())
}

func TestMemoryResultCache_Expiry(t *testing.T) {
	c := NewMemoryResultCache[string](0)
	defer c.Close()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("k", "v", time.Minute)
	c.Set("forever", "v", 0)

	now = now.Add(2 * time.Minute)
	_, ok := c.Get("k")
	assert.False(t, ok)
	_, ok = c.Get("forever")
	assert.True(t, ok)
	assert.Equal(t, 1, c.Len())
}

func TestMemoryResultCache_Purge(t *testing.T) {
	c := NewMemoryResultCache[string](0)
	defer c.Close()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	c.Set("a", "1", time.Second)
	c.Set("b", "2", time.Hour)

	now = now.Add(time.Minute)
	c.purge()
	assert.Equal(t, 1, c.Len())
}

func TestMemoryResultCache_DeleteClear(t *testing.T) {
	c := NewMemoryResultCache[string](time.Millisecond)
	defer c.Close()

	c.Set("a", "1", time.Hour)
	c.Set("b", "2", time.Hour)
	c.Delete("a")
	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Clear()
	assert.Equal(t, 0, c.Len())
	c.Close()
	c.Close()
}
