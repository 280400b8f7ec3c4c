// Package statuscache implements the status-response cache: a
// single-flight-coalesced, TTL-expiring, capacity-evicted map from
// (route id, protocol version) to a cached status JSON payload.
package statuscache

import (
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Fingerprint identifies a cache entry: the route and the protocol version
// the client asked for (status payloads can vary by version).
type Fingerprint struct {
	RouteID         string
	ProtocolVersion int32
}

// CachedStatus is one cache entry.
type CachedStatus struct {
	Payload    []byte
	InsertedAt time.Time
	TTL        time.Duration
}

func (c CachedStatus) age(now time.Time) time.Duration { return now.Sub(c.InsertedAt) }
func (c CachedStatus) fresh(now time.Time) bool         { return c.age(now) < c.TTL }

// staleMultiplier bounds how long past TTL a stale entry may still be served
// opportunistically while a refresh is in flight, per spec: ttl * 2.
const staleMultiplier = 2

// Cache maps Fingerprint to CachedStatus with single-flight-coalesced
// fetches, TTL expiry, and ascending-insertion-order eviction once
// MaxEntries is exceeded.
type Cache struct {
	mu         sync.Mutex
	entries    map[Fingerprint]CachedStatus
	maxEntries int
	defaultTTL time.Duration
	group      singleflight.Group

	// AllowStaleWhileRevalidate controls whether GetOrFetch may return a
	// stale (but < ttl*2 old) entry instead of blocking on an in-flight
	// refresh. Deterministic per configuration, per spec §4.5.
	AllowStaleWhileRevalidate bool

	now func() time.Time // overridable for tests
}

// New creates a Cache bounded to maxEntries, applying defaultTTL to every
// entry produced via GetOrFetch (Insert may override it per call, e.g. for
// seeding or tests).
func New(maxEntries int, defaultTTL time.Duration) *Cache {
	return &Cache{
		entries:    make(map[Fingerprint]CachedStatus),
		maxEntries: maxEntries,
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

// FetchFunc produces a fresh status payload for a cache miss.
type FetchFunc func() ([]byte, error)

// GetOrFetch returns a fresh cached entry if one exists; otherwise it
// coalesces concurrent callers for the same fingerprint into a single
// fetch via singleflight, stores the result, and returns it to all waiters.
//
// If AllowStaleWhileRevalidate is set and a stale-but-not-too-stale entry
// exists while a refresh for the same fingerprint is already in flight, that
// entry is returned immediately instead of waiting on the refresh.
func (c *Cache) GetOrFetch(fp Fingerprint, fetch FetchFunc) ([]byte, error) {
	now := c.now()

	c.mu.Lock()
	if entry, ok := c.entries[fp]; ok {
		if entry.fresh(now) {
			c.mu.Unlock()
			return entry.Payload, nil
		}
		if c.AllowStaleWhileRevalidate && entry.age(now) < entry.TTL*staleMultiplier {
			stale := entry.Payload
			c.mu.Unlock()
			// Kick off (or join) a background refresh, but don't wait on it.
			go func() { _, _, _ = c.group.Do(fp.key(), c.refresher(fp, fetch)) }()
			return stale, nil
		}
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do(fp.key(), c.refresher(fp, fetch))
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (c *Cache) refresher(fp Fingerprint, fetch FetchFunc) func() (any, error) {
	return func() (any, error) {
		payload, err := fetch()
		if err != nil {
			return nil, err
		}
		c.insert(fp, payload, c.defaultTTL)
		return payload, nil
	}
}

// insert stores a status payload and evicts down to maxEntries; both Insert
// and the GetOrFetch refresher call it.
func (c *Cache) insert(fp Fingerprint, payload []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[fp] = CachedStatus{Payload: payload, InsertedAt: c.now(), TTL: ttl}
	c.evictLocked()
}

// Insert stores a status payload with an explicit TTL, for seeding the cache
// ahead of the first request.
func (c *Cache) Insert(fp Fingerprint, payload []byte, ttl time.Duration) {
	c.insert(fp, payload, ttl)
}

// evictLocked removes entries in ascending InsertedAt order until the cache
// is back under maxEntries. Caller must hold c.mu.
func (c *Cache) evictLocked() {
	if c.maxEntries <= 0 || len(c.entries) <= c.maxEntries {
		return
	}
	type keyed struct {
		fp Fingerprint
		at time.Time
	}
	ordered := make([]keyed, 0, len(c.entries))
	for fp, entry := range c.entries {
		ordered = append(ordered, keyed{fp, entry.InsertedAt})
	}
	// Simple insertion sort: eviction batches are small and infrequent
	// relative to lookup volume, so this avoids pulling in sort for a
	// handful of comparisons.
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && ordered[j].at.Before(ordered[j-1].at); j-- {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
		}
	}
	toEvict := len(c.entries) - c.maxEntries
	for i := 0; i < toEvict; i++ {
		delete(c.entries, ordered[i].fp)
	}
}

func (fp Fingerprint) key() string {
	return fp.RouteID + "#" + strconv.FormatInt(int64(fp.ProtocolVersion), 10)
}
