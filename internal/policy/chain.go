// Package policy implements the ordered filter chain consulted before a
// session is allowed to proceed past status or login: rate limiting, IP/
// name/UUID access lists, and ban lookup.
package policy

import "context"

// Verdict is a filter's outcome for one evaluation.
type Verdict struct {
	Denied bool
	Reason string
}

// Pass is the zero Verdict: no denial.
var Pass = Verdict{}

// Deny builds a denying Verdict with a human-readable reason.
func Deny(reason string) Verdict {
	return Verdict{Denied: true, Reason: reason}
}

// Request carries what filters need to know about the connecting client.
// Username/UUID are zero-valued until the login packet has been read, so
// filters that need them only run meaningfully during LoginExchange; the
// RateLimiter and IP filter also run during the earlier status path.
type Request struct {
	RemoteIP string
	Username string
	UUID     string // dashed string form, empty if not yet known
}

// Filter is one pure, named capability in the chain.
type Filter interface {
	Name() string
	Evaluate(ctx context.Context, req Request) (Verdict, error)
}

// Chain evaluates its filters in the fixed order they were constructed
// with, short-circuiting on the first Deny or Error per spec §4.6/§7.
type Chain struct {
	filters []Filter
}

// NewChain builds a chain from filters in evaluation order. Callers should
// pass rate-limit, IP, name, UUID, ban filters in that order (cheapest
// first) to match spec.md's fixed ordering, though Chain itself doesn't
// enforce a particular order — it runs whatever it's given.
func NewChain(filters ...Filter) *Chain {
	return &Chain{filters: filters}
}

// Evaluate runs every filter in order, stopping at the first Deny or error.
// A Deny is returned exactly as the filter produced it; its Reason is not
// prefixed with the filter's Name.
func (c *Chain) Evaluate(ctx context.Context, req Request) (Verdict, error) {
	for _, f := range c.filters {
		v, err := f.Evaluate(ctx, req)
		if err != nil {
			return Verdict{}, err
		}
		if v.Denied {
			return v, nil
		}
	}
	return Pass, nil
}
