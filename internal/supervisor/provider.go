package supervisor

import (
	"go.uber.org/zap"

	"github.com/go-mclib/gateway/internal/session"
)

// ProviderMessageKind discriminates a ProviderMessage's payload, mirroring
// the configuration-provider protocol spec.md §4.8 describes.
type ProviderMessageKind uint8

const (
	// ProviderFirstInit carries the full initial route snapshot.
	ProviderFirstInit ProviderMessageKind = iota
	// ProviderUpdate carries an insert/replace (Route != nil) or a removal
	// (Route == nil) for a single hostname pattern.
	ProviderUpdate
	// ProviderError reports a collaborator failure that doesn't change the
	// route map (e.g. a config file failed to parse on a reload).
	ProviderError
	// ProviderShutdown requests a cascade shutdown of the whole gateway.
	ProviderShutdown
)

// ProviderMessage is what a config.Provider sends the supervisor whenever
// routing configuration changes.
type ProviderMessage struct {
	Kind ProviderMessageKind

	// Routes is used by ProviderFirstInit: the full initial snapshot,
	// keyed by hostname pattern.
	Routes map[string]*session.Route

	// Key/Route are used by ProviderUpdate: Route nil means "remove Key".
	Key   string
	Route *session.Route

	Err error
}

// HandleProviderMessage applies one ProviderMessage to the supervisor's
// resolver (or triggers shutdown), per spec.md §4.8. Messages are expected
// to arrive serialized — from a single provider-reading goroutine — so two
// updates for the same key apply in send order.
func (s *Supervisor) HandleProviderMessage(msg ProviderMessage) {
	switch msg.Kind {
	case ProviderFirstInit:
		s.resolver.Replace(msg.Routes)
		s.log.Info("route snapshot initialized", zap.Int("routes", len(msg.Routes)))

	case ProviderUpdate:
		if msg.Route != nil {
			s.resolver.Put(msg.Key, msg.Route)
			s.log.Info("route updated", zap.String("key", msg.Key))
		} else {
			s.resolver.Remove(msg.Key)
			s.log.Info("route removed", zap.String("key", msg.Key))
		}
		// Sessions already resolved against the old snapshot keep running
		// unaffected: actor.Deps.Resolver is consulted only once, during
		// RoutingDecision, never again for the lifetime of a session.

	case ProviderError:
		s.log.Error("configuration provider error", zap.Error(msg.Err))

	case ProviderShutdown:
		s.shutdown.Trigger()
	}
}
