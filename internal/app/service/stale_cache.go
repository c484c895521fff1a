package service

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// staleCache is a TTL cache with per-key generation counters. A refresh
// records the generation it started under and its result is applied only if
// no invalidation happened in between, so a late-arriving response can never
// resurrect data that a mutation already declared stale.
type staleCache struct {
	*cache.Cache

	mu   sync.Mutex
	gens map[string]uint64
}

func newStaleCache(defaultExpiration, cleanupInterval time.Duration) *staleCache {
	return &staleCache{
		Cache: cache.New(defaultExpiration, cleanupInterval),
		gens:  make(map[string]uint64),
	}
}

// generation returns the token a refresh must present to put to apply its
// result. The key is registered so a later invalidateAll covers it even if
// the refresh is still in flight.
func (sc *staleCache) generation(key string) uint64 {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	gen, ok := sc.gens[key]
	if !ok {
		sc.gens[key] = 0
	}
	return gen
}

// put stores value only when gen is still the key's current generation.
// Reports whether the value was applied.
func (sc *staleCache) put(key string, gen uint64, value interface{}) bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.gens[key] != gen {
		return false
	}
	sc.Set(key, value, cache.DefaultExpiration)
	return true
}

// invalidate bumps the generation and drops the entry; the next read misses
// and triggers a fresh fetch.
func (sc *staleCache) invalidate(key string) {
	sc.mu.Lock()
	sc.gens[key]++
	sc.mu.Unlock()
	sc.Delete(key)
}

// invalidateAll drops every entry. Used by administrative mutations whose
// affected key set is unknown to the gateway.
func (sc *staleCache) invalidateAll() {
	sc.mu.Lock()
	for key := range sc.gens {
		sc.gens[key]++
	}
	sc.mu.Unlock()
	sc.Flush()
}
