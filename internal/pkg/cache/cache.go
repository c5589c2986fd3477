// Package cache is the response cache shared by the read endpoints. Values
// are JSON documents under string keys built by the functions in keys.go;
// every write in the service layer evicts an explicit key set.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// ErrMiss is returned by Store.Get when the key is absent.
var ErrMiss = errors.New("cache miss")

// Store is the key-value backend.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// VersionedStore is a Store shared by several processes. Bump advances each
// key's version and drops its value in one step; SetIfVersion writes only
// while the version still matches the one read before the fill.
type VersionedStore interface {
	Store
	Version(ctx context.Context, key string) (int64, error)
	Bump(ctx context.Context, keys ...string) error
	SetIfVersion(ctx context.Context, key string, value []byte, ttl time.Duration, version int64) (bool, error)
}

// fillTimeout bounds a shared fill, which no longer follows any one caller's context.
const fillTimeout = 30 * time.Second

// Cache adds TTL policy, fill collapsing and failure tolerance on top of a Store.
// Backend errors are logged and never fail the request.
//
// A fill that started before an invalidation of its key never writes its
// result: gens holds one counter per invalidated key, and the check and the
// write happen under mu.
type Cache struct {
	store  Store
	ttl    time.Duration
	group  singleflight.Group
	logger zerolog.Logger

	mu   sync.Mutex
	gens map[string]uint64
}

// New creates a Cache. A nil store disables caching.
func New(store Store, ttl time.Duration, logger zerolog.Logger) *Cache {
	if store == nil {
		store = NopStore{}
	}
	return &Cache{
		store:  store,
		ttl:    ttl,
		logger: logger.With().Str("component", "cache").Logger(),
		gens:   make(map[string]uint64),
	}
}

// Invalidate evicts keys. Failures are logged; stale entries expire with the TTL.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}

	c.mu.Lock()
	for _, key := range keys {
		c.gens[key]++
		c.group.Forget(key)
	}
	c.mu.Unlock()

	var err error
	if vs, ok := c.store.(VersionedStore); ok {
		err = vs.Bump(ctx, keys...)
	} else {
		err = c.store.Delete(ctx, keys...)
	}
	if err != nil {
		c.logger.Warn().Err(err).Strs("keys", keys).Msg("Cache invalidation failed")
		return
	}
	c.logger.Debug().Strs("keys", keys).Msg("Cache keys invalidated")
}

// fillGuard records the state of a key when its fill started.
type fillGuard struct {
	gen     uint64
	version int64
	skip    bool
}

func (c *Cache) beginFill(ctx context.Context, key string) fillGuard {
	c.mu.Lock()
	guard := fillGuard{gen: c.gens[key]}
	c.mu.Unlock()

	if vs, ok := c.store.(VersionedStore); ok {
		version, err := vs.Version(ctx, key)
		if err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("Cache version read failed")
			guard.skip = true
		}
		guard.version = version
	}
	return guard
}

func (c *Cache) commitFill(ctx context.Context, key string, value []byte, guard fillGuard) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if guard.skip || c.gens[key] != guard.gen {
		c.logger.Debug().Str("key", key).Msg("Dropping fill overtaken by invalidation")
		return
	}

	if vs, ok := c.store.(VersionedStore); ok {
		stored, err := vs.SetIfVersion(ctx, key, value, c.ttl, guard.version)
		if err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("Cache write failed")
		} else if !stored {
			c.logger.Debug().Str("key", key).Msg("Dropping fill overtaken by invalidation")
		}
		return
	}
	if err := c.store.Set(ctx, key, value, c.ttl); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
}

// Remember returns the cached value at key or computes it with fill, storing
// the result. Concurrent misses on one key share a single fill call, which
// runs detached from the caller that happened to start it.
func Remember[T any](ctx context.Context, c *Cache, key string, fill func(ctx context.Context) (T, error)) (T, error) {
	if c == nil {
		return fill(ctx)
	}

	var out T
	raw, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		if jsonErr := json.Unmarshal(raw, &out); jsonErr == nil {
			return out, nil
		}
		c.logger.Warn().Str("key", key).Msg("Discarding undecodable cache entry")
	case !errors.Is(err, ErrMiss):
		c.logger.Warn().Err(err).Str("key", key).Msg("Cache read failed")
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		fillCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fillTimeout)
		defer cancel()

		guard := c.beginFill(fillCtx, key)
		value, fillErr := fill(fillCtx)
		if fillErr != nil {
			return nil, fillErr
		}
		if encoded, encErr := json.Marshal(value); encErr == nil {
			c.commitFill(fillCtx, key, encoded, guard)
		}
		return value, nil
	})
	if err != nil {
		return out, err
	}
	return v.(T), nil
}

// NopStore never stores anything.
type NopStore struct{}

func (NopStore) Get(context.Context, string) ([]byte, error) { return nil, ErrMiss }

func (NopStore) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (NopStore) Delete(context.Context, ...string) error { return nil }
