package store

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/JonMunkholm/csvtree/internal/core"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Cached keeps recently used projects in memory in front of another Store.
// Listings always go to the underlying store.
type Cached struct {
	Store
	cache  *lru.Cache[uuid.UUID, core.ProjectRecord]
	hits   atomic.Int64
	misses atomic.Int64
}

// CacheStats reports cache effectiveness.
type CacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Size   int   `json:"size"`
}

// NewCached wraps s with an LRU cache holding up to size projects.
func NewCached(s Store, size int) (*Cached, error) {
	cache, err := lru.New[uuid.UUID, core.ProjectRecord](size)
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}
	return &Cached{Store: s, cache: cache}, nil
}

func (c *Cached) Save(ctx context.Context, rec core.ProjectRecord) error {
	if err := c.Store.Save(ctx, rec); err != nil {
		c.cache.Remove(rec.ID)
		return err
	}
	c.cache.Add(rec.ID, rec)
	return nil
}

func (c *Cached) Get(ctx context.Context, id uuid.UUID) (core.ProjectRecord, error) {
	if rec, ok := c.cache.Get(id); ok {
		c.hits.Add(1)
		return rec, nil
	}
	c.misses.Add(1)

	rec, err := c.Store.Get(ctx, id)
	if err != nil {
		return core.ProjectRecord{}, err
	}
	c.cache.Add(id, rec)
	return rec, nil
}

func (c *Cached) Delete(ctx context.Context, id uuid.UUID) error {
	c.cache.Remove(id)
	return c.Store.Delete(ctx, id)
}

func (c *Cached) Close() error {
	c.cache.Purge()
	return c.Store.Close()
}

// Stats returns hit and miss counts since creation.
func (c *Cached) Stats() CacheStats {
	return CacheStats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Size:   c.cache.Len(),
	}
}
