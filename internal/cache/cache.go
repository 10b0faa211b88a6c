package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sort"
	"sync"
	"time"
)

const (
	defaultTTL     = 5 * time.Minute
	defaultPrefix  = "forex_cache:"
	defaultMaxSize = 10 * 1024 * 1024
	evictionTarget = 0.8
)

// ErrNoOfflineData means the host is offline and nothing was cached for the
// requested key.
var ErrNoOfflineData = errors.New("no cached data available offline")

type entry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
	ExpiresAt int64           `json:"expires_at"`
}

type Options struct {
	Prefix     string
	DefaultTTL time.Duration
	MaxSize    int // persistent-tier footprint cap, in bytes
	Online     func() bool
	Now        func() time.Time
}

// Cache is a TTL cache with two tiers: an in-process map for the fast path
// and a persistent Store. Reads promote valid persistent entries into memory;
// writes land in memory first so a failed persist never leaves the tiers
// divergent. Store failures degrade to misses and no-ops, never errors.
type Cache struct {
	store      Store
	prefix     string
	defaultTTL time.Duration
	maxSize    int
	online     func() bool
	now        func() time.Time

	mu     sync.RWMutex
	memory map[string]entry
}

func New(store Store, opts Options) *Cache {
	c := &Cache{
		store:      store,
		prefix:     opts.Prefix,
		defaultTTL: opts.DefaultTTL,
		maxSize:    opts.MaxSize,
		online:     opts.Online,
		now:        opts.Now,
		memory:     make(map[string]entry),
	}
	if c.prefix == "" {
		c.prefix = defaultPrefix
	}
	if c.defaultTTL <= 0 {
		c.defaultTTL = defaultTTL
	}
	if c.maxSize <= 0 {
		c.maxSize = defaultMaxSize
	}
	if c.online == nil {
		c.online = func() bool { return true }
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

func (c *Cache) cacheKey(key string) string { return c.prefix + key }

func (c *Cache) valid(e entry) bool {
	return e.ExpiresAt > c.now().UnixMilli()
}

// Get decodes the cached value for key into T. Misses, expired entries, and
// storage failures all report found=false.
func Get[T any](ctx context.Context, c *Cache, key string) (T, bool) {
	var zero T
	e, ok := c.getEntry(ctx, key)
	if !ok {
		return zero, false
	}
	var out T
	if err := json.Unmarshal(e.Data, &out); err != nil {
		log.Printf("cache decode error for %s: %v", key, err)
		return zero, false
	}
	return out, true
}

// Set caches data under key for ttl (the cache default when ttl <= 0).
// The error return covers encoding only; persistence failures are logged,
// roll back the memory write, and leave the cache simply without the entry.
func Set[T any](ctx context.Context, c *Cache, key string, data T, ttl time.Duration) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	c.setEntry(ctx, key, raw, ttl)
	return nil
}

func (c *Cache) getEntry(ctx context.Context, key string) (entry, bool) {
	cacheKey := c.cacheKey(key)

	c.mu.RLock()
	memoryEntry, inMemory := c.memory[cacheKey]
	c.mu.RUnlock()
	if inMemory && c.valid(memoryEntry) {
		return memoryEntry, true
	}

	stored, found, err := c.store.GetItem(ctx, cacheKey)
	if err != nil {
		log.Printf("cache get error for %s: %v", key, err)
		return entry{}, false
	}
	if !found {
		return entry{}, false
	}

	var e entry
	if err := json.Unmarshal([]byte(stored), &e); err != nil {
		log.Printf("cache entry decode error for %s: %v", key, err)
		return entry{}, false
	}

	if c.valid(e) {
		c.mu.Lock()
		c.memory[cacheKey] = e
		c.mu.Unlock()
		return e, true
	}

	// Lazy sweep of the expired entry.
	c.removeKey(ctx, cacheKey)
	return entry{}, false
}

func (c *Cache) setEntry(ctx context.Context, key string, raw json.RawMessage, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	cacheKey := c.cacheKey(key)
	now := c.now()
	e := entry{
		Data:      raw,
		Timestamp: now.UnixMilli(),
		ExpiresAt: now.Add(ttl).UnixMilli(),
	}

	// Memory first: a fresh Get must see the write even if persistence fails
	// mid-flight. Rolled back below on persist error.
	c.mu.Lock()
	c.memory[cacheKey] = e
	c.mu.Unlock()

	c.manageCacheSize(ctx)

	encoded, err := json.Marshal(e)
	if err == nil {
		err = c.store.SetItem(ctx, cacheKey, string(encoded))
	}
	if err != nil {
		log.Printf("cache set error for %s: %v", key, err)
		c.mu.Lock()
		delete(c.memory, cacheKey)
		c.mu.Unlock()
	}
}

func (c *Cache) Remove(ctx context.Context, key string) {
	c.removeKey(ctx, c.cacheKey(key))
}

func (c *Cache) removeKey(ctx context.Context, cacheKey string) {
	c.mu.Lock()
	delete(c.memory, cacheKey)
	c.mu.Unlock()

	if err := c.store.RemoveItem(ctx, cacheKey); err != nil {
		log.Printf("cache remove error for %s: %v", cacheKey, err)
	}
}

// Clear drops every entry under the cache's prefix from both tiers.
func (c *Cache) Clear(ctx context.Context) {
	c.mu.Lock()
	c.memory = make(map[string]entry)
	c.mu.Unlock()

	keys, err := c.store.Keys(ctx, c.prefix)
	if err != nil {
		log.Printf("cache clear error: %v", err)
		return
	}
	if err := c.store.MultiRemove(ctx, keys); err != nil {
		log.Printf("cache clear error: %v", err)
	}
}

// ClearExpired is a full compaction sweep over the cache's namespace.
func (c *Cache) ClearExpired(ctx context.Context) {
	keys, err := c.store.Keys(ctx, c.prefix)
	if err != nil {
		log.Printf("clear expired error: %v", err)
		return
	}

	values, err := c.store.MultiGet(ctx, keys)
	if err != nil {
		log.Printf("clear expired error: %v", err)
		return
	}

	var expired []string
	for key, stored := range values {
		var e entry
		if err := json.Unmarshal([]byte(stored), &e); err != nil || !c.valid(e) {
			expired = append(expired, key)
		}
	}
	if len(expired) == 0 {
		return
	}

	c.mu.Lock()
	for _, key := range expired {
		delete(c.memory, key)
	}
	c.mu.Unlock()

	if err := c.store.MultiRemove(ctx, expired); err != nil {
		log.Printf("clear expired error: %v", err)
	}
}

// manageCacheSize evicts oldest entries from the persistent tier until its
// footprint is back under 80% of the configured cap.
func (c *Cache) manageCacheSize(ctx context.Context) {
	keys, err := c.store.Keys(ctx, c.prefix)
	if err != nil {
		log.Printf("manage cache size error: %v", err)
		return
	}
	if len(keys) == 0 {
		return
	}

	values, err := c.store.MultiGet(ctx, keys)
	if err != nil {
		log.Printf("manage cache size error: %v", err)
		return
	}

	type sized struct {
		key       string
		size      int
		timestamp int64
	}
	entries := make([]sized, 0, len(values))
	totalSize := 0
	for key, stored := range values {
		var e entry
		ts := int64(0)
		if err := json.Unmarshal([]byte(stored), &e); err == nil {
			ts = e.Timestamp
		}
		entries = append(entries, sized{key: key, size: len(stored), timestamp: ts})
		totalSize += len(stored)
	}
	if totalSize <= c.maxSize {
		return
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].timestamp < entries[j].timestamp })

	limit := int(float64(c.maxSize) * evictionTarget)
	currentSize := totalSize
	var evict []string
	for _, e := range entries {
		if currentSize <= limit {
			break
		}
		evict = append(evict, e.key)
		currentSize -= e.size
	}

	c.mu.Lock()
	for _, key := range evict {
		delete(c.memory, key)
	}
	c.mu.Unlock()

	if err := c.store.MultiRemove(ctx, evict); err != nil {
		log.Printf("manage cache size error: %v", err)
	}
}

// peekEntry reads the entry for key without sweeping it when expired. The
// fallback path needs the expired payload to stay put until a refresh lands.
func (c *Cache) peekEntry(ctx context.Context, key string) (entry, bool) {
	cacheKey := c.cacheKey(key)

	c.mu.RLock()
	memoryEntry, inMemory := c.memory[cacheKey]
	c.mu.RUnlock()
	if inMemory && c.valid(memoryEntry) {
		return memoryEntry, true
	}

	stored, found, err := c.store.GetItem(ctx, cacheKey)
	if err == nil && found {
		var e entry
		if json.Unmarshal([]byte(stored), &e) == nil {
			return e, true
		}
	}
	if inMemory {
		return memoryEntry, true
	}
	return entry{}, false
}

type FallbackOptions struct {
	TTL          time.Duration
	ForceRefresh bool
}

// GetWithFallback is the resilience contract around an arbitrary fetcher:
// offline callers get cache or ErrNoOfflineData, forced refreshes always hit
// the fetcher, and fetcher failures fall back to an expired cached value
// before surfacing the error.
func GetWithFallback[T any](ctx context.Context, c *Cache, key string, fetcher func(context.Context) (T, error), opts FallbackOptions) (T, error) {
	var zero T

	if opts.ForceRefresh {
		fresh, err := fetcher(ctx)
		if err != nil {
			return zero, err
		}
		if err := Set(ctx, c, key, fresh, opts.TTL); err != nil {
			log.Printf("cache refresh store error for %s: %v", key, err)
		}
		return fresh, nil
	}

	cached, found := c.peekEntry(ctx, key)

	if !c.online() {
		if found && c.valid(cached) {
			var out T
			if err := json.Unmarshal(cached.Data, &out); err == nil {
				return out, nil
			}
		}
		return zero, ErrNoOfflineData
	}

	if found && c.valid(cached) {
		var out T
		if err := json.Unmarshal(cached.Data, &out); err == nil {
			return out, nil
		}
		log.Printf("cache decode error for %s, refetching", key)
	}

	fresh, fetchErr := fetcher(ctx)
	if fetchErr == nil {
		if err := Set(ctx, c, key, fresh, opts.TTL); err != nil {
			log.Printf("cache store error for %s: %v", key, err)
		}
		return fresh, nil
	}

	// Serve stale rather than fail when the upstream is down.
	if found {
		var stale T
		if err := json.Unmarshal(cached.Data, &stale); err == nil {
			log.Printf("serving expired cache for %s after fetch error: %v", key, fetchErr)
			return stale, nil
		}
	}
	return zero, fetchErr
}

type Item[T any] struct {
	Key  string
	Data T
	TTL  time.Duration
}

// GetBatch resolves multiple keys in one persistent-store round trip. The
// result is positional; nil marks a miss or expired entry. Valid entries are
// promoted into memory like single gets.
func GetBatch[T any](ctx context.Context, c *Cache, keys []string) []*T {
	out := make([]*T, len(keys))

	cacheKeys := make([]string, len(keys))
	for i, key := range keys {
		cacheKeys[i] = c.cacheKey(key)
	}

	values, err := c.store.MultiGet(ctx, cacheKeys)
	if err != nil {
		log.Printf("batch get error: %v", err)
		return out
	}

	for i, cacheKey := range cacheKeys {
		stored, found := values[cacheKey]
		if !found {
			continue
		}
		var e entry
		if err := json.Unmarshal([]byte(stored), &e); err != nil || !c.valid(e) {
			continue
		}
		var data T
		if err := json.Unmarshal(e.Data, &data); err != nil {
			continue
		}
		c.mu.Lock()
		c.memory[cacheKey] = e
		c.mu.Unlock()
		out[i] = &data
	}
	return out
}

// SetBatch writes multiple entries with one persistent-store round trip,
// with the same memory-first-then-rollback semantics as Set.
func SetBatch[T any](ctx context.Context, c *Cache, items []Item[T]) error {
	if len(items) == 0 {
		return nil
	}

	now := c.now()
	encoded := make(map[string]string, len(items))
	cacheKeys := make([]string, 0, len(items))
	for _, item := range items {
		raw, err := json.Marshal(item.Data)
		if err != nil {
			return err
		}
		ttl := item.TTL
		if ttl <= 0 {
			ttl = c.defaultTTL
		}
		e := entry{
			Data:      raw,
			Timestamp: now.UnixMilli(),
			ExpiresAt: now.Add(ttl).UnixMilli(),
		}
		envelope, err := json.Marshal(e)
		if err != nil {
			return err
		}
		cacheKey := c.cacheKey(item.Key)
		encoded[cacheKey] = string(envelope)
		cacheKeys = append(cacheKeys, cacheKey)

		c.mu.Lock()
		c.memory[cacheKey] = e
		c.mu.Unlock()
	}

	c.manageCacheSize(ctx)

	if err := c.store.MultiSet(ctx, encoded); err != nil {
		log.Printf("batch set error: %v", err)
		c.mu.Lock()
		for _, cacheKey := range cacheKeys {
			delete(c.memory, cacheKey)
		}
		c.mu.Unlock()
	}
	return nil
}
