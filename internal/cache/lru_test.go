package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	_, _ = c.Get("a")
	c.Set("c", 3)

	_, okB := c.Get("b")
	a, okA := c.Get("a")
	assert.False(t, okB)
	assert.True(t, okA)
	assert.Equal(t, 1, a)
	assert.Equal(t, 2, c.Size())
}

func TestLRUCache_Expiry(t *testing.T) {
	now := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRUCache[string](10, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("report", "cached")
	c.Set("other", "cached")
	now = now.Add(30 * time.Second)
	c.Set("fresh", "cached")

	now = now.Add(45 * time.Second)
	_, ok := c.Get("report")
	assert.False(t, ok)
	assert.Equal(t, 1, c.CleanExpired())
	assert.Equal(t, 1, c.Size())
}

func TestLRUCache_Purge(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	assert.Equal(t, 2, c.Purge())
	assert.Equal(t, 0, c.Size())
	c.Set("c", 3)
	v, ok := c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestManager_StopWithoutStart(t *testing.T) {
	m := NewManager(nil)
	m.Register(NewLRUCache[int](1, time.Minute))
	m.Stop()
}

func TestManager_CleanupLoop(t *testing.T) {
	c := NewLRUCache[int](10, time.Millisecond)
	c.Set("a", 1)

	m := NewManager(nil)
	m.Register(c)
	m.StartCleanup(5 * time.Millisecond)
	defer m.Stop()

	assert.Eventually(t, func() bool { return c.Size() == 0 }, time.Second, 5*time.Millisecond)
}

func TestScoped_SeparatesUsers(t *testing.T) {
	user := "1"
	inner := NewLRUCache[string](10, time.Minute)
	c := NewScoped[string](inner, func() string { return user })

	c.Set("start_date=2025-01-01", "budi")
	user = "2"
	_, ok := c.Get("start_date=2025-01-01")
	assert.False(t, ok)

	c.Set("start_date=2025-01-01", "sari")
	assert.Equal(t, 2, c.Size())

	user = "1"
	got, ok := c.Get("start_date=2025-01-01")
	assert.True(t, ok)
	assert.Equal(t, "budi", got)

	assert.Equal(t, 2, c.Purge())
	assert.Equal(t, 0, inner.Size())
}
