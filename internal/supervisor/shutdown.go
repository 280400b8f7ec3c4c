package supervisor

import (
	"sync"
	"time"
)

// DefaultFlushDeadline is the default ShutdownController.FlushDeadline.
// Nothing in the gateway reads FlushDeadline: Trigger only closes the Done
// channel, and Serve stops accepting and waits for in-flight sessions to end
// on their own, without flushing or disconnecting them.
const DefaultFlushDeadline = 5 * time.Second

// ShutdownController broadcasts a single notification to every subscriber.
// Trigger is idempotent: calling it more than once is a no-op, matching
// spec.md §"Cancellation"'s requirement that repeated shutdown requests
// never panic on a closed channel.
type ShutdownController struct {
	once sync.Once
	ch   chan struct{}

	FlushDeadline time.Duration
}

// NewShutdownController returns a controller with the default flush
// deadline; callers may override FlushDeadline before the first Trigger.
func NewShutdownController() *ShutdownController {
	return &ShutdownController{
		ch:            make(chan struct{}),
		FlushDeadline: DefaultFlushDeadline,
	}
}

// Trigger fires the shutdown signal. Safe to call multiple times or from
// multiple goroutines; only the first call has any effect.
func (c *ShutdownController) Trigger() {
	c.once.Do(func() { close(c.ch) })
}

// Done returns a channel closed once Trigger has fired, for use in a
// select alongside a task's normal work.
func (c *ShutdownController) Done() <-chan struct{} {
	return c.ch
}

// Triggered reports whether Trigger has already fired.
func (c *ShutdownController) Triggered() bool {
	select {
	case <-c.ch:
		return true
	default:
		return false
	}
}
