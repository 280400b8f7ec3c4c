// Package route resolves a client-supplied hostname to a routing table
// entry. Lookups are read-mostly and lock-free; updates replace the whole
// table under a write lock, RCU-style, so concurrent lookups never observe
// a half-applied update.
package route

import (
	"strings"
	"sync"

	"go.uber.org/atomic"

	"github.com/go-mclib/gateway/internal/session"
)

// Forge/FML clients append one of these markers to the handshake hostname;
// vanilla servers ignore it but the marker breaks a literal hostname match,
// so it's stripped before lookup.
const (
	fmlSuffix  = "\x00FML\x00"
	fml2Suffix = "\x00FML2\x00"
)

// StripForgeSuffix removes a trailing FML/FML2 marker from a handshake
// server_address, if present.
func StripForgeSuffix(hostname string) string {
	if i := strings.Index(hostname, fmlSuffix); i >= 0 {
		return hostname[:i]
	}
	if i := strings.Index(hostname, fml2Suffix); i >= 0 {
		return hostname[:i]
	}
	return hostname
}

// table is one immutable snapshot of the routing data: a literal-hostname
// map plus a slice of wildcard suffixes sorted longest-suffix-first so the
// first match found is the correct (longest) one.
type table struct {
	exact    map[string]*session.Route
	wildcard []wildcardEntry
}

type wildcardEntry struct {
	suffix string // the literal part after "*.", e.g. "example.com"
	route  *session.Route
}

func newTable() *table {
	return &table{exact: make(map[string]*session.Route)}
}

// Resolver maps hostnames to routes. Zero value is not usable; use New.
type Resolver struct {
	mu  sync.Mutex // serializes writers; readers never block on it
	cur atomic.Pointer[table]
}

// New creates an empty Resolver.
func New() *Resolver {
	r := &Resolver{}
	r.cur.Store(newTable())
	return r
}

// Resolve looks up hostname per spec: exact match wins, then the longest
// matching wildcard suffix, else a miss (ok=false). hostname is stripped of
// any Forge/FML handshake marker before matching.
func (r *Resolver) Resolve(hostname string) (*session.Route, bool) {
	hostname = strings.ToLower(StripForgeSuffix(hostname))
	t := r.cur.Load()

	if rt, ok := t.exact[hostname]; ok {
		return rt, true
	}
	for _, w := range t.wildcard {
		if strings.HasSuffix(hostname, w.suffix) {
			return w.route, true
		}
	}
	return nil, false
}

// Put inserts or replaces a single route by its hostname pattern, copying
// the current snapshot before mutating it so in-flight readers of the old
// snapshot are unaffected.
func (r *Resolver) Put(pattern string, rt *session.Route) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.cloneLocked()
	insert(next, strings.ToLower(pattern), rt)
	r.cur.Store(next)
}

// Remove deletes a route by its hostname pattern, if present.
func (r *Resolver) Remove(pattern string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.cloneLocked()
	pattern = strings.ToLower(pattern)
	if suffix, ok := strings.CutPrefix(pattern, "*."); ok {
		filtered := next.wildcard[:0]
		for _, w := range next.wildcard {
			if w.suffix != suffix {
				filtered = append(filtered, w)
			}
		}
		next.wildcard = filtered
	} else {
		delete(next.exact, pattern)
	}
	r.cur.Store(next)
}

// Replace atomically swaps in an entirely new route set built from patterns,
// used when a provider delivers a full reload rather than an incremental
// update.
func (r *Resolver) Replace(routes map[string]*session.Route) {
	next := newTable()
	for pattern, rt := range routes {
		insert(next, strings.ToLower(pattern), rt)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.cur.Store(next)
}

func insert(t *table, pattern string, rt *session.Route) {
	if suffix, ok := strings.CutPrefix(pattern, "*."); ok {
		for i, w := range t.wildcard {
			if w.suffix == suffix {
				t.wildcard[i].route = rt
				return
			}
		}
		t.wildcard = append(t.wildcard, wildcardEntry{suffix: suffix, route: rt})
		sortWildcardsLongestFirst(t.wildcard)
		return
	}
	t.exact[pattern] = rt
}

func sortWildcardsLongestFirst(w []wildcardEntry) {
	for i := 1; i < len(w); i++ {
		for j := i; j > 0 && len(w[j].suffix) > len(w[j-1].suffix); j-- {
			w[j], w[j-1] = w[j-1], w[j]
		}
	}
}

func (r *Resolver) cloneLocked() *table {
	cur := r.cur.Load()
	next := newTable()
	for k, v := range cur.exact {
		next.exact[k] = v
	}
	next.wildcard = append(next.wildcard, cur.wildcard...)
	return next
}
