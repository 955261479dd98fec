package terrain

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"

	"golang.org/x/sync/singleflight"

	"terrainnav/grid"
)

type resultKind uint8

const (
	kindOcclusion resultKind = 1
	kindLight     resultKind = 2
)

// cacheKey 分析参数, 与输入一起决定结果. 并行度不影响结果, 不参与.
type cacheKey struct {
	kind               resultKind
	stretchH, stretchV float32
}

type cacheEntry struct {
	key       cacheKey
	heights   *grid.Grid[byte] // private clone of the input
	occlusion *grid.Grid[OcclusionInterval]
	light     LightAngleMaps
}

// Cache memoizes analyzer results by height-map content. Concurrent
// requests for the same input share one computation. Results handed out
// are copies. Each entry holds a copy of its input and its result; once
// the entry limit is reached the oldest entry is evicted.
type Cache struct {
	mu         sync.RWMutex
	byHash     map[uint64][]*cacheEntry
	order      []cacheSlot // insertion order, oldest first
	maxEntries int
	flight     singleflight.Group
}

type cacheSlot struct {
	hash  uint64
	entry *cacheEntry
}

// DefaultCacheEntries is the entry limit of a Cache built without
// WithMaxEntries.
const DefaultCacheEntries = 256

type CacheOption func(*Cache)

// WithMaxEntries bounds the number of cached results. n <= 0 removes the
// bound.
func WithMaxEntries(n int) CacheOption {
	return func(c *Cache) { c.maxEntries = n }
}

func NewCache(opts ...CacheOption) *Cache {
	c := &Cache{byHash: make(map[uint64][]*cacheEntry), maxEntries: DefaultCacheEntries}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Len returns the number of cached results.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.byHash)
	c.order = nil
}

// Occlusion returns the cached Occlusion result for heights, computing it
// on a miss. Progress is only reported to the caller that computes.
func (c *Cache) Occlusion(ctx context.Context, heights *grid.Grid[byte], opts ...Option) (*grid.Grid[OcclusionInterval], error) {
	if heights == nil {
		return nil, fmt.Errorf("%w: nil height-map", grid.ErrInvalidArgument)
	}
	o := buildOptions(opts)
	key := cacheKey{kind: kindOcclusion, stretchH: o.stretchH, stretchV: o.stretchV}
	e, err := c.resolve(ctx, key, heights, func(ctx context.Context) (*cacheEntry, error) {
		res, err := Occlusion(ctx, heights, opts...)
		if err != nil {
			return nil, err
		}
		return &cacheEntry{key: key, heights: heights.Clone(), occlusion: res}, nil
	})
	if err != nil {
		return nil, err
	}
	return e.occlusion.Clone(), nil
}

// LightAngles returns the cached LightAngles result for heights.
func (c *Cache) LightAngles(ctx context.Context, size grid.Size, heights *grid.Grid[byte], opts ...Option) (LightAngleMaps, error) {
	if heights == nil {
		return LightAngleMaps{}, fmt.Errorf("%w: nil height-map", grid.ErrInvalidArgument)
	}
	key := cacheKey{kind: kindLight, stretchH: size.StretchH, stretchV: size.StretchV}
	if !size.Matches(heights.Width(), heights.Height()) {
		// let LightAngles report the mismatch
		return LightAngles(ctx, size, heights, opts...)
	}
	e, err := c.resolve(ctx, key, heights, func(ctx context.Context) (*cacheEntry, error) {
		res, err := LightAngles(ctx, size, heights, opts...)
		if err != nil {
			return nil, err
		}
		return &cacheEntry{key: key, heights: heights.Clone(), light: res}, nil
	})
	if err != nil {
		return LightAngleMaps{}, err
	}
	return e.light.Clone(), nil
}

func (c *Cache) resolve(ctx context.Context, key cacheKey, heights *grid.Grid[byte], compute func(context.Context) (*cacheEntry, error)) (*cacheEntry, error) {
	h := hashInput(key, heights)
	if e := c.lookup(h, key, heights); e != nil {
		return e, nil
	}

	v, err, _ := c.flight.Do(fmt.Sprintf("%d:%016x", key.kind, h), func() (any, error) {
		// double-check
		if e := c.lookup(h, key, heights); e != nil {
			return e, nil
		}
		e, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		c.store(h, e)
		return e, nil
	})
	if err != nil {
		// the leader was canceled but this caller was not
		if isContextErr(err) && ctx.Err() == nil {
			return compute(ctx)
		}
		return nil, err
	}
	e := v.(*cacheEntry)
	if !e.matches(key, heights) {
		// hash collision with a concurrent request
		return compute(ctx)
	}
	return e, nil
}

func (c *Cache) lookup(h uint64, key cacheKey, heights *grid.Grid[byte]) *cacheEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, e := range c.byHash[h] {
		if e.matches(key, heights) {
			return e
		}
	}
	return nil
}

func (c *Cache) store(h uint64, e *cacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, old := range c.byHash[h] {
		if old.matches(e.key, e.heights) {
			return
		}
	}
	c.byHash[h] = append(c.byHash[h], e)
	c.order = append(c.order, cacheSlot{hash: h, entry: e})
	for c.maxEntries > 0 && len(c.order) > c.maxEntries {
		c.evictOldest()
	}
}

// evictOldest 需持有写锁.
func (c *Cache) evictOldest() {
	old := c.order[0]
	c.order[0] = cacheSlot{}
	c.order = c.order[1:]

	bucket := c.byHash[old.hash]
	for i, e := range bucket {
		if e == old.entry {
			bucket = append(bucket[:i], bucket[i+1:]...)
			break
		}
	}
	if len(bucket) == 0 {
		delete(c.byHash, old.hash)
		return
	}
	c.byHash[old.hash] = bucket
}

func (e *cacheEntry) matches(key cacheKey, heights *grid.Grid[byte]) bool {
	return e.key == key && grid.Equal(e.heights, heights)
}

func hashInput(key cacheKey, heights *grid.Grid[byte]) uint64 {
	h := fnv.New64a()
	w := grid.NewBinWriter(h, true)
	w.WriteUint8(uint8(key.kind))
	w.WriteFloat32(key.stretchH)
	w.WriteFloat32(key.stretchV)
	w.WriteByteGrid(heights)
	w.Flush()
	return h.Sum64()
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
