package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryListCache keeps JSON copies so callers never share slices with the cache.
type MemoryListCache struct {
	entries sync.Map
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryListCache(ttl time.Duration) *MemoryListCache {
	return &MemoryListCache{ttl: ttl, now: time.Now}
}

func (c *MemoryListCache) Get(_ context.Context, key string, dest any) (bool, error) {
	val, ok := c.entries.Load(key)
	if !ok {
		return false, nil
	}
	entry := val.(memoryEntry)
	if c.ttl > 0 && c.now().After(entry.expiresAt) {
		c.entries.Delete(key)
		return false, nil
	}
	if err := json.Unmarshal(entry.data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return true, nil
}

func (c *MemoryListCache) Set(_ context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	c.entries.Store(key, memoryEntry{data: data, expiresAt: c.now().Add(c.ttl)})
	return nil
}

func (c *MemoryListCache) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		c.entries.Delete(key)
	}
	return nil
}
