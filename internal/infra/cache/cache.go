// Package cache implements a stale-while-revalidate cache over a pluggable
// storage adapter. Fresh entries are served directly, stale entries are
// served while exactly one background revalidation runs per key, and
// missing or expired entries trigger a synchronous fetch whose failure
// propagates to the caller.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"toolforge/internal/domain"
)

// FetchFunc produces a value for a cache key.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Cache fronts a Storage adapter with SWR semantics. Safe for concurrent
// use; the single-flight guards are per-key.
type Cache struct {
	storage           Storage
	logger            *zap.Logger
	metrics           domain.Metrics
	now               func() time.Time
	revalidateTimeout time.Duration

	// group coalesces synchronous fetches so concurrent misses on one
	// key share a single upstream call.
	group singleflight.Group

	// inflight tracks keys with a background revalidation running.
	// Insertion and removal bracket each refresh, including error paths.
	mu       sync.Mutex
	inflight map[string]struct{}
}

// Options configures a Cache.
type Options struct {
	Storage           Storage
	Logger            *zap.Logger
	Metrics           domain.Metrics
	RevalidateTimeout time.Duration
	Now               func() time.Time
}

// New creates a Cache. A nil Storage falls back to the in-process map.
func New(opts Options) *Cache {
	storage := opts.Storage
	if storage == nil {
		storage = NewMemoryStorage()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = domain.NopMetrics{}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	timeout := opts.RevalidateTimeout
	if timeout <= 0 {
		timeout = domain.DefaultRevalidateTimeoutSecs * time.Second
	}
	return &Cache{
		storage:           storage,
		logger:            logger.Named("cache"),
		metrics:           metrics,
		now:               now,
		revalidateTimeout: timeout,
		inflight:          make(map[string]struct{}),
	}
}

// Get returns the cached value for key, fetching when necessary.
// Fresh entries return without any upstream call. Stale entries return
// immediately and schedule one background revalidation. Missing or
// expired entries fetch synchronously; that error is the caller's.
func Get[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, fetch FetchFunc[T]) (T, error) {
	var zero T

	entry, ok, err := c.storage.Get(key)
	if err != nil {
		// Storage trouble degrades to a miss rather than failing the read.
		c.logger.Warn("cache storage read failed",
			zap.String("key", key),
			zap.Error(err))
		ok = false
	}

	if ok {
		switch entry.State(c.now()) {
		case domain.EntryFresh:
			c.metrics.ObserveCacheLookup(domain.CacheOutcomeHit)
			return decode[T](entry.Data)
		case domain.EntryStale:
			c.metrics.ObserveCacheLookup(domain.CacheOutcomeStaleHit)
			c.startRevalidate(key, ttl, rawFetch(fetch))
			return decode[T](entry.Data)
		default:
			c.metrics.ObserveCacheLookup(domain.CacheOutcomeExpired)
		}
	} else {
		c.metrics.ObserveCacheLookup(domain.CacheOutcomeMiss)
	}

	value, err := fetchAndStore(ctx, c, key, ttl, fetch)
	if err != nil {
		return zero, err
	}
	return value, nil
}

// Refresh forces a synchronous fetch and store, bypassing freshness checks.
func Refresh[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, fetch FetchFunc[T]) (T, error) {
	c.group.Forget(key)
	return fetchAndStore(ctx, c, key, ttl, fetch)
}

// Invalidate removes a single entry. A missing key reports
// domain.ErrNoSuchKey.
func (c *Cache) Invalidate(key string) error {
	_, ok, err := c.storage.Get(key)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%q: %w", key, domain.ErrNoSuchKey)
	}
	return c.storage.Delete(key)
}

// InvalidateRepo removes every entry under a repository's key prefix.
func (c *Cache) InvalidateRepo(owner, repo string) (int, error) {
	return c.storage.DeletePrefix(RepoPrefix(owner, repo))
}

// Clear removes all entries.
func (c *Cache) Clear() error {
	return c.storage.Clear()
}

// Keys lists all stored keys.
func (c *Cache) Keys() ([]string, error) {
	return c.storage.Keys()
}

// InflightRevalidations reports how many background refreshes are running.
func (c *Cache) InflightRevalidations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.inflight)
}

func fetchAndStore[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, fetch FetchFunc[T]) (T, error) {
	var zero T
	result, err, _ := c.group.Do(key, func() (any, error) {
		value, fetchErr := fetch(ctx)
		if fetchErr != nil {
			return nil, fetchErr
		}
		if storeErr := c.store(key, ttl, value); storeErr != nil {
			c.logger.Warn("cache storage write failed",
				zap.String("key", key),
				zap.Error(storeErr))
		}
		return value, nil
	})
	if err != nil {
		return zero, err
	}
	value, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("cache key %q: conflicting value type %T", key, result)
	}
	return value, nil
}

func (c *Cache) store(key string, ttl time.Duration, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode value: %w", err)
	}
	return c.storage.Set(key, domain.NewCacheEntry[json.RawMessage](data, c.now(), ttl))
}

// startRevalidate launches at most one background refresh per key.
// Failures are swallowed: the stale entry keeps serving until the next
// successful refresh or an explicit Refresh call.
func (c *Cache) startRevalidate(key string, ttl time.Duration, fetch FetchFunc[json.RawMessage]) {
	c.mu.Lock()
	if _, busy := c.inflight[key]; busy {
		c.mu.Unlock()
		return
	}
	c.inflight[key] = struct{}{}
	c.mu.Unlock()

	go func() {
		defer func() {
			c.mu.Lock()
			delete(c.inflight, key)
			c.mu.Unlock()
		}()

		// Detached from the triggering caller: a stale read must not tie
		// the refresh to that caller's lifetime.
		ctx, cancel := context.WithTimeout(context.Background(), c.revalidateTimeout)
		defer cancel()

		start := c.now()
		data, err := fetch(ctx)
		if err != nil {
			c.metrics.ObserveRevalidation(domain.RevalidateFailure, c.now().Sub(start))
			c.logger.Warn("background revalidation failed, keeping stale entry",
				zap.String("key", key),
				zap.Error(err))
			return
		}
		if err := c.storage.Set(key, domain.NewCacheEntry[json.RawMessage](data, c.now(), ttl)); err != nil {
			c.metrics.ObserveRevalidation(domain.RevalidateFailure, c.now().Sub(start))
			c.logger.Warn("cache storage write failed after revalidation",
				zap.String("key", key),
				zap.Error(err))
			return
		}
		c.metrics.ObserveRevalidation(domain.RevalidateSuccess, c.now().Sub(start))
	}()
}

func rawFetch[T any](fetch FetchFunc[T]) FetchFunc[json.RawMessage] {
	return func(ctx context.Context) (json.RawMessage, error) {
		value, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("encode value: %w", err)
		}
		return data, nil
	}
}

func decode[T any](data json.RawMessage) (T, error) {
	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		var zero T
		return zero, fmt.Errorf("decode cached value: %w", err)
	}
	return value, nil
}
