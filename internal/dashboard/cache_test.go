package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingObserver struct{ hits, misses int }

func (c *countingObserver) ObserveCache(hit bool) {
	if hit {
		c.hits++
		return
	}
	c.misses++
}

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis, *countingObserver) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	obs := &countingObserver{}
	return NewCache(client, time.Minute, obs), mr, obs
}

func TestKeyNormalisesState(t *testing.T) {
	assert.Equal(t, "dashboard:modules:abc:all:all:all", Key("abc", FilterState{}))
	assert.Equal(t, "dashboard:modules:abc:W2:attendance:top3", Key("abc", FilterState{Week: "W2", Basis: "attendance", Scope: "top3_att"}))
}

func TestCachedSelectorHitsAfterFirstLoad(t *testing.T) {
	cache, mr, obs := newTestCache(t)
	sel := CachedSelector{Cache: cache, Report: sampleReport(), Fingerprint: "fp"}
	ctx := context.Background()
	state := FilterState{Scope: ScopeTop3}

	first, err := sel.Select(ctx, state)
	require.NoError(t, err)
	second, err := sel.Select(ctx, state)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, obs.hits)
	assert.Equal(t, 1, obs.misses)
	assert.True(t, mr.Exists(Key("fp", state)))
	assert.Equal(t, time.Minute, mr.TTL(Key("fp", state)))
}

func TestCachedSelectorCachesEmptyDataset(t *testing.T) {
	cache, _, obs := newTestCache(t)
	sel := CachedSelector{Cache: cache, Report: sampleReport(), Fingerprint: "fp"}
	ctx := context.Background()
	state := FilterState{Week: "W2"}

	for i := 0; i < 2; i++ {
		ds, err := sel.Select(ctx, state)
		require.NoError(t, err)
		assert.NotNil(t, ds)
		assert.True(t, ds.Empty())
	}
	assert.Equal(t, 1, obs.hits)
}

func TestCachedSelectorFallsBackWhenRedisIsDown(t *testing.T) {
	cache, mr, _ := newTestCache(t)
	mr.Close()
	sel := CachedSelector{Cache: cache, Report: sampleReport(), Fingerprint: "fp"}

	ds, err := sel.Select(context.Background(), FilterState{Scope: ScopeTop3})
	require.NoError(t, err)
	assert.Equal(t, RankedDataset{{"CS104", 20}, {"CS101", 12}, {"CS102", 7}}, ds)
}

func TestNilCacheLoadsDirectly(t *testing.T) {
	var cache *Cache
	sel := CachedSelector{Cache: cache, Report: sampleReport(), Fingerprint: "fp"}
	ds, err := sel.Select(context.Background(), DefaultFilterState())
	require.NoError(t, err)
	assert.Len(t, ds, 4)
}

func TestCacheWarmWritesEveryCombination(t *testing.T) {
	cache, mr, _ := newTestCache(t)
	r := sampleReport()

	n, err := cache.Warm(context.Background(), "fp", r)
	require.NoError(t, err)
	assert.Equal(t, len(Combinations(r)), n)
	assert.True(t, mr.Exists(Key("fp", FilterState{Week: "W1", Basis: BasisAttendance, Scope: ScopeTop10})))
}
