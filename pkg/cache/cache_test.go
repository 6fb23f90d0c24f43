package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDistinguishesMissFromStoredZero(t *testing.T) {
	c := New[string, bool](time.Minute, 10)

	_, ok := c.Get("absent")
	assert.False(t, ok)

	c.Put("known-false", false)
	v, ok := c.Get("known-false")
	require.True(t, ok)
	assert.False(t, v)
}

func TestEntriesExpireAfterTTL(t *testing.T) {
	c := New[string, int](30*time.Millisecond, 10)

	c.Put("a", 1)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	time.Sleep(50 * time.Millisecond)

	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestPutRefreshesWriteTime(t *testing.T) {
	c := New[string, int](60*time.Millisecond, 10)

	c.Put("a", 1)
	time.Sleep(40 * time.Millisecond)
	c.Put("a", 2)
	time.Sleep(40 * time.Millisecond)

	// 80ms since the first write but only 40ms since the overwrite.
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestLRUEvictionDropsColdestEntry(t *testing.T) {
	c := New[string, int](time.Minute, 3)

	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)

	// Touch "a" so "b" becomes the coldest.
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Put("d", 4)

	_, ok = c.Get("b")
	assert.False(t, ok, "coldest entry should have been evicted")
	for _, key := range []string{"a", "c", "d"} {
		_, ok := c.Get(key)
		assert.True(t, ok, "entry %q should have survived", key)
	}
	assert.Equal(t, 3, c.Len())
}

func TestInvalidate(t *testing.T) {
	c := New[string, int](time.Minute, 10)

	c.Put("a", 1)
	c.Put("b", 2)
	c.Invalidate("a")
	c.Invalidate("never-existed")

	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.True(t, ok)

	c.InvalidateAll()
	assert.Equal(t, 0, c.Len())
}

func TestPurgeExpired(t *testing.T) {
	c := New[string, int](30*time.Millisecond, 10)

	c.Put("a", 1)
	c.Put("b", 2)
	time.Sleep(50 * time.Millisecond)
	c.Put("c", 3)

	removed := c.PurgeExpired()
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, c.Len())

	_, ok := c.Get("c")
	assert.True(t, ok)
}

func TestZeroTTLNeverExpires(t *testing.T) {
	c := New[string, int](0, 10)

	c.Put("a", 1)
	time.Sleep(20 * time.Millisecond)

	_, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 0, c.PurgeExpired())
}

func TestConcurrentAccess(t *testing.T) {
	c := New[string, int](time.Minute, 100)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				key := fmt.Sprintf("key-%d", j%50)
				c.Put(key, n)
				c.Get(key)
				if j%10 == 0 {
					c.Invalidate(key)
				}
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 100)
}
