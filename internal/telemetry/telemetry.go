// Package telemetry is a minimal counters surface for the events a running
// gateway produces, mirroring the shape of Infrarust's telemetry exporter
// trait (crates/infrarust/src/telemetry/exporter.rs: a name() and an
// export(event) per exporter) without wiring a full metrics backend — no
// metrics SDK (Prometheus, OTel, statsd) appears anywhere in the retrieval
// pack, so the default Exporter logs periodic summaries through zap instead
// of pushing to a collector.
package telemetry

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// EventKind discriminates what happened.
type EventKind string

const (
	EventSessionAccepted    EventKind = "session_accepted"
	EventSessionClosed      EventKind = "session_closed"
	EventStatusRequest      EventKind = "status_request"
	EventLoginAttempt       EventKind = "login_attempt"
	EventLoginDenied        EventKind = "login_denied"
	EventBackendUnreachable EventKind = "backend_unreachable"
)

// Event is one occurrence an Exporter records.
type Event struct {
	Kind     EventKind
	Route    string
	RemoteIP string
	Username string
	Err      error
}

// Exporter receives events as they happen. Implementations must be safe for
// concurrent use — every session goroutine calls Export directly.
type Exporter interface {
	Name() string
	Export(ctx context.Context, ev Event)
}

// NopExporter discards every event. Exporter fields are not defaulted to
// it: a nil Exporter stays nil, and callers nil-check before use.
type NopExporter struct{}

func (NopExporter) Name() string                  { return "nop" }
func (NopExporter) Export(context.Context, Event) {}

// ZapExporter keeps a running per-kind counter and logs each event at Debug,
// plus a periodic summary line at Info — the "logged periodically" stand-in
// SPEC_FULL.md's DOMAIN STACK describes in place of a real metrics backend.
type ZapExporter struct {
	log *zap.Logger

	mu     sync.Mutex
	counts map[EventKind]uint64
}

// NewZapExporter builds a ZapExporter logging through log.
func NewZapExporter(log *zap.Logger) *ZapExporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &ZapExporter{log: log, counts: make(map[EventKind]uint64)}
}

func (z *ZapExporter) Name() string { return "zap" }

func (z *ZapExporter) Export(_ context.Context, ev Event) {
	z.mu.Lock()
	z.counts[ev.Kind]++
	z.mu.Unlock()

	fields := []zap.Field{
		zap.String("kind", string(ev.Kind)),
		zap.String("route", ev.Route),
		zap.String("remote_ip", ev.RemoteIP),
	}
	if ev.Username != "" {
		fields = append(fields, zap.String("username", ev.Username))
	}
	if ev.Err != nil {
		fields = append(fields, zap.Error(ev.Err))
	}
	z.log.Debug("telemetry event", fields...)
}

// Snapshot returns a copy of the current per-kind counters.
func (z *ZapExporter) Snapshot() map[EventKind]uint64 {
	z.mu.Lock()
	defer z.mu.Unlock()
	out := make(map[EventKind]uint64, len(z.counts))
	for k, v := range z.counts {
		out[k] = v
	}
	return out
}

// ReportPeriodically logs a summary of every counter every interval until
// ctx is cancelled. Intended to run in its own goroutine from cmd/gateway.
func (z *ZapExporter) ReportPeriodically(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := z.Snapshot()
			fields := make([]zap.Field, 0, len(snap))
			for k, v := range snap {
				fields = append(fields, zap.Uint64(string(k), v))
			}
			z.log.Info("telemetry summary", fields...)
		}
	}
}
