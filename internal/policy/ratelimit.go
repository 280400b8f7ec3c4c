package policy

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter is a per-remote-address token bucket: requestsPerMinute
// governs refill, burstSize bounds how many requests may be absorbed at
// once. Idle buckets (untouched for 10x the refill interval) are evicted
// lazily so long-lived gateways don't accumulate one bucket per IP forever.
type RateLimiter struct {
	mu            sync.Mutex
	buckets       map[string]*bucket
	refillPeriod  time.Duration // time to add one token, i.e. 1/requestsPerSecond
	burstSize     int
	idleThreshold time.Duration
	now           func() time.Time
	sinceSweep    int
}

// sweepEvery bounds how often evictIdleLocked walks the whole bucket map —
// every request would make eviction cost scale with total bucket count.
const sweepEvery = 256

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter builds a RateLimiter refilling at requestsPerMinute with
// burstSize capacity per bucket.
func NewRateLimiter(requestsPerMinute float64, burstSize int) *RateLimiter {
	refill := time.Minute
	if requestsPerMinute > 0 {
		refill = time.Duration(float64(time.Minute) / requestsPerMinute)
	}
	return &RateLimiter{
		buckets:       make(map[string]*bucket),
		refillPeriod:  refill,
		burstSize:     burstSize,
		idleThreshold: refill * 10,
		now:           time.Now,
	}
}

func (rl *RateLimiter) Name() string { return "rate_limiter" }

func (rl *RateLimiter) Evaluate(_ context.Context, req Request) (Verdict, error) {
	now := rl.now()

	rl.mu.Lock()
	b, ok := rl.buckets[req.RemoteIP]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rate.Every(rl.refillPeriod), rl.burstSize)}
		rl.buckets[req.RemoteIP] = b
	}
	b.lastSeen = now
	allowed := b.limiter.AllowN(now, 1)
	rl.sinceSweep++
	if rl.sinceSweep >= sweepEvery {
		rl.sinceSweep = 0
		rl.evictIdleLocked(now)
	}
	rl.mu.Unlock()

	if !allowed {
		return Deny("too_many_requests"), nil
	}
	return Pass, nil
}

// evictIdleLocked removes buckets untouched for idleThreshold. Caller must
// hold rl.mu.
func (rl *RateLimiter) evictIdleLocked(now time.Time) {
	for ip, b := range rl.buckets {
		if now.Sub(b.lastSeen) > rl.idleThreshold {
			delete(rl.buckets, ip)
		}
	}
}
