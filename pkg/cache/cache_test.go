package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSetAndGet(t *testing.T) {
	c := New(time.Minute, 0, 0)

	c.Set("mira", "a stoic blacksmith")
	value, ok := c.Get("mira")
	assert.True(t, ok)
	assert.Equal(t, "a stoic blacksmith", value)

	_, ok = c.Get("absent")
	assert.False(t, ok)
}

func TestExpiredItemsAreInvisible(t *testing.T) {
	c := New(time.Minute, 0, 0)

	c.SetWithExpiration("short", "gone soon", time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get("short")
	assert.False(t, ok)
}

func TestMaxItemsEvictsOldest(t *testing.T) {
	c := New(time.Minute, 0, 2)

	c.SetWithExpiration("a", 1, time.Minute)
	c.SetWithExpiration("b", 2, time.Hour)
	c.Set("c", 3)

	assert.Equal(t, 2, c.Count())
	_, ok := c.Get("a")
	assert.False(t, ok, "item closest to expiry should have been evicted")
}

func TestDeleteAndFlush(t *testing.T) {
	c := New(time.Minute, 0, 0)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Delete("a")
	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Flush()
	assert.Zero(t, c.Count())
}
