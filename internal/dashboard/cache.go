package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/odyssey-erp/soit-dashboard/internal/report"
)

const cachePrefix = "dashboard:modules"

// CacheObserver counts cache lookups.
type CacheObserver interface {
	ObserveCache(hit bool)
}

// Cache stores ranked datasets in Redis keyed by report fingerprint and
// filter state. A nil Cache or nil client always misses.
type Cache struct {
	client   *redis.Client
	ttl      time.Duration
	group    singleflight.Group
	observer CacheObserver
}

// NewCache constructs a Cache. ttl <= 0 keeps entries until the fingerprint
// changes.
func NewCache(client *redis.Client, ttl time.Duration, observer CacheObserver) *Cache {
	return &Cache{client: client, ttl: ttl, observer: observer}
}

// Key composes the cache key for a filter state.
func Key(fingerprint string, state FilterState) string {
	state = state.Normalize()
	week := state.Week
	if week == "" {
		week = "all"
	}
	return strings.Join([]string{cachePrefix, fingerprint, week, string(state.Basis), string(state.Scope)}, ":")
}

// Fetch returns the cached dataset for key or fills it from loader. Concurrent
// misses on one key share a single load.
func (c *Cache) Fetch(ctx context.Context, key string, loader func(context.Context) (RankedDataset, error)) (RankedDataset, error) {
	if c == nil || c.client == nil {
		return loader(ctx)
	}
	ch := c.group.DoChan(key, func() (any, error) {
		return c.fetch(ctx, key, loader)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(RankedDataset), nil
	}
}

func (c *Cache) fetch(ctx context.Context, key string, loader func(context.Context) (RankedDataset, error)) (RankedDataset, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var ds RankedDataset
		if err := json.Unmarshal(payload, &ds); err == nil {
			c.observe(true)
			return ds, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("dashboard: cache get: %w", err)
	}
	c.observe(false)
	ds, err := loader(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.Put(ctx, key, ds); err != nil {
		return ds, err
	}
	return ds, nil
}

// Put stores ds under key.
func (c *Cache) Put(ctx context.Context, key string, ds RankedDataset) error {
	if c == nil || c.client == nil {
		return nil
	}
	if ds == nil {
		ds = RankedDataset{}
	}
	raw, err := json.Marshal(ds)
	if err != nil {
		return fmt.Errorf("dashboard: cache encode: %w", err)
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("dashboard: cache set: %w", err)
	}
	return nil
}

func (c *Cache) observe(hit bool) {
	if c.observer != nil {
		c.observer.ObserveCache(hit)
	}
}

// Warm fills the cache for every filter combination of r and returns how
// many entries were written.
func (c *Cache) Warm(ctx context.Context, fingerprint string, r *report.Report) (int, error) {
	if c == nil || c.client == nil || r == nil {
		return 0, nil
	}
	written := 0
	for _, state := range Combinations(r) {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		if err := c.Put(ctx, Key(fingerprint, state), Select(r, state)); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

// CachedSelector serves selections through the cache and falls back to a
// direct selection when Redis fails.
type CachedSelector struct {
	Cache       *Cache
	Report      *report.Report
	Fingerprint string
	Logger      *slog.Logger
}

// Select implements Selector.
func (s CachedSelector) Select(ctx context.Context, state FilterState) (RankedDataset, error) {
	load := func(context.Context) (RankedDataset, error) {
		return Select(s.Report, state), nil
	}
	ds, err := s.Cache.Fetch(ctx, Key(s.Fingerprint, state), load)
	if err == nil {
		return ds, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if s.Logger != nil {
		s.Logger.Warn("module cache unavailable", slog.Any("error", err))
	}
	return Select(s.Report, state), nil
}
