package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/labelscan/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(text string) *domain.NutritionRecord {
	return &domain.NutritionRecord{
		Protein: &domain.Measurement{Value: 5, Unit: "g"},
		RawText: text,
	}
}

func TestMemoryCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(10, time.Minute)

	want := record("Protein: 5g")
	require.NoError(t, c.Set(ctx, "label:a", want))

	got, err := c.Get(ctx, "label:a")
	require.NoError(t, err)
	assert.Same(t, want, got)

	empty := &domain.NutritionRecord{RawText: "nothing here"}
	require.NoError(t, c.Set(ctx, "label:b", empty))
	got, err = c.Get(ctx, "label:b")
	require.NoError(t, err)
	assert.Zero(t, got.Found())
}

func TestMemoryCache_RejectsNil(t *testing.T) {
	c := NewMemoryCache(10, time.Minute)

	err := c.Set(context.Background(), "label:nil", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	assert.Equal(t, 0, c.Size())
}

func TestMemoryCache_Miss(t *testing.T) {
	c := NewMemoryCache(10, time.Minute)

	got, err := c.Get(context.Background(), "label:missing")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
	assert.Nil(t, got)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(10, 5*time.Millisecond)

	require.NoError(t, c.Set(ctx, "label:ttl", record("short lived")))
	time.Sleep(30 * time.Millisecond)

	_, err := c.Get(ctx, "label:ttl")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestMemoryCache_NoTTL(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(10, 0)

	require.NoError(t, c.Set(ctx, "label:forever", record("kept")))
	time.Sleep(5 * time.Millisecond)

	_, err := c.Get(ctx, "label:forever")
	assert.NoError(t, err)
}

func TestMemoryCache_DeleteAndExists(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(10, time.Minute)
	require.NoError(t, c.Set(ctx, "label:d", record("delete me")))

	exists, err := c.Exists(ctx, "label:d")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, c.Delete(ctx, "label:d"))

	exists, err = c.Exists(ctx, "label:d")
	require.NoError(t, err)
	assert.False(t, exists)

	// deleting an absent key is not an error
	assert.NoError(t, c.Delete(ctx, "label:never"))
}

func TestMemoryCache_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2, time.Minute)

	require.NoError(t, c.Set(ctx, "label:1", record("one")))
	require.NoError(t, c.Set(ctx, "label:2", record("two")))

	// touch 1 so 2 becomes the eviction candidate
	_, err := c.Get(ctx, "label:1")
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "label:3", record("three")))

	assert.Equal(t, 2, c.Size())
	_, err = c.Get(ctx, "label:2")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
	_, err = c.Get(ctx, "label:1")
	assert.NoError(t, err)
}

func TestMemoryCache_Clear(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(10, time.Minute)
	for i := 0; i < 5; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("label:%d", i), record("x")))
	}
	require.Equal(t, 5, c.Size())

	c.Clear()
	assert.Equal(t, 0, c.Size())
}

func TestMemoryCache_Concurrent(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(64, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("label:%d:%d", n, j%8)
				_ = c.Set(ctx, key, record(key))
				_, _ = c.Get(ctx, key)
				_, _ = c.Exists(ctx, key)
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Size(), 64)
}
