package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/docintel/internal/models"
	"github.com/feichai0017/docintel/pkg/logger"
)

func TestFingerprintDeterministic(t *testing.T) {
	cfg := models.DefaultConfig()
	data := []byte("Content 1\nContent 2")

	fp1 := Fingerprint(data, "text/plain", cfg)
	fp2 := Fingerprint(data, "text/plain", cfg)
	assert.Equal(t, fp1, fp2)
	assert.Len(t, fp1, 64)
}

func TestFingerprintSensitivity(t *testing.T) {
	cfg := models.DefaultConfig()
	data := []byte("same bytes")

	base := Fingerprint(data, "text/plain", cfg)

	assert.NotEqual(t, base, Fingerprint([]byte("other bytes"), "text/plain", cfg))
	assert.NotEqual(t, base, Fingerprint(data, "text/markdown", cfg))

	changed := models.DefaultConfig()
	changed.Chunking.Enabled = true
	assert.NotEqual(t, base, Fingerprint(data, "text/plain", changed))
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(logger.NewTestLogger())

	result := &models.ExtractionResult{
		Content:  "cached text",
		MimeType: "text/plain",
		Metadata: map[string]interface{}{"source": "test"},
	}
	require.NoError(t, c.Set(ctx, "fp-1", result))

	got, ok := c.Get(ctx, "fp-1")
	require.True(t, ok)
	assert.Equal(t, "cached text", got.Content)
	assert.Equal(t, "text/plain", got.MimeType)

	// the cached snapshot must not alias the stored value
	got.Content = "mutated"
	again, ok := c.Get(ctx, "fp-1")
	require.True(t, ok)
	assert.Equal(t, "cached text", again.Content)
}

func TestMemoryCacheMiss(t *testing.T) {
	c := NewMemoryCache(logger.NewTestLogger())
	_, ok := c.Get(context.Background(), "absent")
	assert.False(t, ok)
}

func TestMemoryCacheStats(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(logger.NewTestLogger())

	require.NoError(t, c.Set(ctx, "a", &models.ExtractionResult{Content: "one"}))
	require.NoError(t, c.Set(ctx, "b", &models.ExtractionResult{Content: "two"}))
	c.Get(ctx, "a")
	c.Get(ctx, "missing")

	stats := c.Stats(ctx)
	assert.Equal(t, 2, stats["entries"])
	assert.Equal(t, int64(1), stats["hits"])
	assert.Equal(t, int64(1), stats["misses"])
	assert.Equal(t, int64(2), stats["stores"])
	assert.Greater(t, stats["total_size_bytes"].(int64), int64(0))

	// every stats key is a plain string
	for k := range stats {
		assert.IsType(t, "", k)
	}
}

func TestMemoryCacheClearIdempotent(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(logger.NewTestLogger())

	require.NoError(t, c.Set(ctx, "a", &models.ExtractionResult{Content: "one"}))
	require.NoError(t, c.Clear(ctx))
	assert.Equal(t, 0, c.Stats(ctx)["entries"])

	require.NoError(t, c.Clear(ctx))
	assert.Equal(t, 0, c.Stats(ctx)["entries"])
}

func TestMemoryCacheConcurrent(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(logger.NewTestLogger())

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("fp-%d", i%8)
			_ = c.Set(ctx, key, &models.ExtractionResult{Content: key})
			if res, ok := c.Get(ctx, key); ok {
				// a reader never observes a torn entry
				assert.Contains(t, res.Content, "fp-")
			}
			c.Stats(ctx)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 8, c.Stats(ctx)["entries"])
}
