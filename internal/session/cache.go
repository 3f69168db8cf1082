package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"golang.org/x/sync/singleflight"

	"fmpmcp/pkg/logging"
)

// Closer is implemented by cached resources; Close is called once the entry
// leaves the cache.
type Closer interface {
	Close()
}

// Recorder observes cache activity.
type Recorder interface {
	CacheHit(ctx context.Context)
	CacheMiss(ctx context.Context)
	CacheEviction(ctx context.Context, reason string)
}

// Eviction reasons passed to Recorder.
const (
	reasonTTL  = "ttl"
	reasonSize = "size"
)

// Options configures a ResourceCache.
type Options struct {
	MaxSize int
	TTL     time.Duration
	// SweepInterval defaults to TTL/2.
	SweepInterval time.Duration
	// Now defaults to time.Now.
	Now      func() time.Time
	Recorder Recorder
}

// Entry is a snapshot of a cached resource and its timestamps.
type Entry[V Closer] struct {
	Value        V
	CreatedAt    time.Time
	LastAccessed time.Time
}

// ResourceCache is a size- and TTL-bounded cache of per-client resources.
// All operations are safe for concurrent use; a single mutex serializes
// reads that refresh access time, inserts, evictions and the sweep.
type ResourceCache[V Closer] struct {
	mu  sync.Mutex
	lru *simplelru.LRU[string, *Entry[V]]

	maxSize       int
	ttl           time.Duration
	sweepInterval time.Duration
	now           func() time.Time
	recorder      Recorder

	group singleflight.Group

	stopSweep chan struct{}
	stopOnce  sync.Once
	sweepDone chan struct{}
}

// New creates a cache and starts its background sweep. Callers must call Stop.
func New[V Closer](opts Options) (*ResourceCache[V], error) {
	if opts.MaxSize <= 0 {
		return nil, fmt.Errorf("cache max size must be positive, got %d", opts.MaxSize)
	}
	if opts.TTL <= 0 {
		return nil, fmt.Errorf("cache ttl must be positive, got %s", opts.TTL)
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = opts.TTL / 2
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	lru, err := simplelru.NewLRU[string, *Entry[V]](opts.MaxSize, nil)
	if err != nil {
		return nil, err
	}

	c := &ResourceCache[V]{
		lru:           lru,
		maxSize:       opts.MaxSize,
		ttl:           opts.TTL,
		sweepInterval: opts.SweepInterval,
		now:           opts.Now,
		recorder:      opts.Recorder,
		stopSweep:     make(chan struct{}),
		sweepDone:     make(chan struct{}),
	}
	go c.sweepLoop()

	logging.Debug("Cache", "Started with maxSize=%d ttl=%s sweep=%s", c.maxSize, c.ttl, c.sweepInterval)
	return c, nil
}

// Get returns the entry for id and refreshes its access time. An expired
// entry is removed and reported as a miss.
func (c *ResourceCache[V]) Get(id string) (Entry[V], bool) {
	c.mu.Lock()
	e, ok := c.lru.Get(id)
	if !ok {
		c.mu.Unlock()
		return Entry[V]{}, false
	}
	now := c.now()
	if c.expired(e, now) {
		c.lru.Remove(id)
		c.mu.Unlock()
		c.dispose(id, e, reasonTTL)
		return Entry[V]{}, false
	}
	e.LastAccessed = now
	snapshot := *e
	c.mu.Unlock()
	return snapshot, true
}

// Set stores value under id, evicting the least recently accessed entry
// first if the cache is full. A previous value for id is closed.
func (c *ResourceCache[V]) Set(id string, value V) {
	now := c.now()

	c.mu.Lock()
	var evictedID string
	var evicted, replaced *Entry[V]
	if old, ok := c.lru.Peek(id); ok {
		replaced = old
	} else if c.lru.Len() >= c.maxSize {
		evictedID, evicted, _ = c.lru.RemoveOldest()
	}
	c.lru.Add(id, &Entry[V]{Value: value, CreatedAt: now, LastAccessed: now})
	c.mu.Unlock()

	if evicted != nil {
		c.dispose(evictedID, evicted, reasonSize)
	}
	if replaced != nil {
		logging.Debug("Cache", "Replaced entry for %s", logging.TruncateIdentifier(id))
		replaced.Value.Close()
	}
}

// GetOrCreate returns the cached value for id or builds, stores and returns a
// new one. Concurrent callers for the same id share a single build. Build
// errors are logged, returned, and not cached.
func (c *ResourceCache[V]) GetOrCreate(ctx context.Context, id string, build func(ctx context.Context) (V, error)) (V, error) {
	if e, ok := c.Get(id); ok {
		c.hit(ctx)
		return e.Value, nil
	}

	// Do runs fn on the calling goroutine, so only the leader sets built.
	built := false
	v, err, shared := c.group.Do(id, func() (any, error) {
		if e, ok := c.Get(id); ok {
			return e.Value, nil
		}
		built = true
		c.miss(ctx)
		value, err := build(context.WithoutCancel(ctx))
		if err != nil {
			logging.Error("Cache", err, "Failed to construct resource for %s", logging.TruncateIdentifier(id))
			return nil, err
		}
		// With a very small MaxSize a concurrent Set can evict and close value
		// before the caller uses it.
		c.Set(id, value)
		logging.Debug("Cache", "Stored new entry for %s (%d/%d)", logging.TruncateIdentifier(id), c.EntryCount(), c.maxSize)
		return value, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	if !built {
		c.hit(ctx)
	}
	if shared {
		logging.Debug("Cache", "Shared in-flight construction for %s", logging.TruncateIdentifier(id))
	}
	return v.(V), nil
}

// Lookup returns the value cached for id without building one. It records a
// hit or a miss like GetOrCreate.
func (c *ResourceCache[V]) Lookup(ctx context.Context, id string) (V, bool) {
	if e, ok := c.Get(id); ok {
		c.hit(ctx)
		return e.Value, true
	}
	c.miss(ctx)
	var zero V
	return zero, false
}

// Remove drops id from the cache and closes its value.
func (c *ResourceCache[V]) Remove(id string) bool {
	c.mu.Lock()
	e, ok := c.lru.Peek(id)
	if ok {
		c.lru.Remove(id)
	}
	c.mu.Unlock()
	if ok {
		e.Value.Close()
	}
	return ok
}

// EntryCount returns the number of cached entries, including expired ones
// the sweep has not yet removed.
func (c *ResourceCache[V]) EntryCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// MaxSize returns the configured capacity.
func (c *ResourceCache[V]) MaxSize() int {
	return c.maxSize
}

// TTL returns the configured idle lifetime.
func (c *ResourceCache[V]) TTL() time.Duration {
	return c.ttl
}

// Stop halts the background sweep. It is safe to call more than once.
func (c *ResourceCache[V]) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopSweep)
		<-c.sweepDone
		logging.Debug("Cache", "Sweep stopped")
	})
}

// Close stops the sweep and closes every cached value.
func (c *ResourceCache[V]) Close() error {
	c.Stop()

	c.mu.Lock()
	entries := c.lru.Values()
	c.lru.Purge()
	c.mu.Unlock()

	for _, e := range entries {
		e.Value.Close()
	}
	if n := len(entries); n > 0 {
		logging.Info("Cache", "Released %d cached client server(s)", n)
	}
	return nil
}

func (c *ResourceCache[V]) sweepLoop() {
	defer close(c.sweepDone)
	ticker := time.NewTicker(c.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopSweep:
			return
		case <-ticker.C:
			if n := c.sweep(); n > 0 {
				logging.Debug("Cache", "Sweep removed %d expired entr(ies)", n)
			}
		}
	}
}

// sweep removes expired entries and returns how many it removed. Entries are
// kept in access order, so it stops at the first live one.
func (c *ResourceCache[V]) sweep() int {
	now := c.now()
	type victim struct {
		id    string
		entry *Entry[V]
	}
	var victims []victim

	c.mu.Lock()
	for {
		id, e, ok := c.lru.GetOldest()
		if !ok || !c.expired(e, now) {
			break
		}
		c.lru.RemoveOldest()
		victims = append(victims, victim{id: id, entry: e})
	}
	c.mu.Unlock()

	for _, v := range victims {
		c.dispose(v.id, v.entry, reasonTTL)
	}
	return len(victims)
}

func (c *ResourceCache[V]) expired(e *Entry[V], now time.Time) bool {
	return now.Sub(e.LastAccessed) > c.ttl
}

func (c *ResourceCache[V]) dispose(id string, e *Entry[V], reason string) {
	logging.Debug("Cache", "Evicting %s (%s, idle %s)", logging.TruncateIdentifier(id), reason, c.now().Sub(e.LastAccessed))
	if c.recorder != nil {
		c.recorder.CacheEviction(context.Background(), reason)
	}
	e.Value.Close()
}

func (c *ResourceCache[V]) hit(ctx context.Context) {
	if c.recorder != nil {
		c.recorder.CacheHit(ctx)
	}
}

func (c *ResourceCache[V]) miss(ctx context.Context) {
	if c.recorder != nil {
		c.recorder.CacheMiss(ctx)
	}
}
