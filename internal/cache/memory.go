package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/feichai0017/docintel/internal/models"
	"github.com/feichai0017/docintel/pkg/logger"
)

type memoryEntry struct {
	payload   []byte
	size      int64
	createdAt time.Time
}

// MemoryCache is the default in-process cache. Entries are stored as
// serialized snapshots so a cached result can never alias a caller's copy,
// and a reader always sees a whole entry or none.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry

	hits   int64
	misses int64
	stores int64

	log logger.Logger
}

// NewMemoryCache builds an empty in-memory cache.
func NewMemoryCache(log logger.Logger) *MemoryCache {
	if log == nil {
		log = logger.NewNop()
	}
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		log:     log,
	}
}

func (c *MemoryCache) Get(_ context.Context, fingerprint string) (*models.ExtractionResult, bool) {
	c.mu.RLock()
	entry, ok := c.entries[fingerprint]
	c.mu.RUnlock()

	c.mu.Lock()
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	c.mu.Unlock()

	if !ok {
		return nil, false
	}

	var result models.ExtractionResult
	if err := json.Unmarshal(entry.payload, &result); err != nil {
		// corrupt snapshot degrades to a miss
		c.log.Warn("cache entry unreadable, treating as miss",
			logger.String("fingerprint", fingerprint),
			logger.Error(err),
		)
		return nil, false
	}
	return &result, true
}

func (c *MemoryCache) Set(_ context.Context, fingerprint string, result *models.ExtractionResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.entries[fingerprint] = memoryEntry{
		payload:   payload,
		size:      int64(len(payload)),
		createdAt: time.Now(),
	}
	c.stores++
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Stats(_ context.Context) map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var totalSize int64
	for _, e := range c.entries {
		totalSize += e.size
	}
	return map[string]interface{}{
		"backend":          "memory",
		"entries":          len(c.entries),
		"total_size_bytes": totalSize,
		"hits":             c.hits,
		"misses":           c.misses,
		"stores":           c.stores,
	}
}

func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string]memoryEntry)
	c.mu.Unlock()
	return nil
}
