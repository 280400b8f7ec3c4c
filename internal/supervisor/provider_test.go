package supervisor

import (
	"testing"

	"go.uber.org/zap"

	"github.com/go-mclib/gateway/internal/policy"
	"github.com/go-mclib/gateway/internal/route"
	"github.com/go-mclib/gateway/internal/session"
	"github.com/go-mclib/gateway/internal/statuscache"
)

func newTestSupervisor(t *testing.T) *Supervisor {
	t.Helper()
	return New(
		Config{ListenAddr: "127.0.0.1:0", MaxConnections: 10},
		route.New(),
		policy.NewChain(),
		statuscache.New(8, 0),
		nil,
		zap.NewNop(),
		nil,
	)
}

func TestHandleProviderMessageFirstInitSeedsResolver(t *testing.T) {
	s := newTestSupervisor(t)
	rt := &session.Route{HostnamePattern: "play.example.com", BackendAddr: "10.0.0.1:25565"}

	s.HandleProviderMessage(ProviderMessage{
		Kind:   ProviderFirstInit,
		Routes: map[string]*session.Route{"play.example.com": rt},
	})

	got, ok := s.resolver.Resolve("play.example.com")
	if !ok || got.BackendAddr != "10.0.0.1:25565" {
		t.Fatalf("expected resolved route, got %+v ok=%v", got, ok)
	}
}

func TestHandleProviderMessageUpdateInsertsThenRemoves(t *testing.T) {
	s := newTestSupervisor(t)
	rt := &session.Route{HostnamePattern: "lobby.example.com", BackendAddr: "10.0.0.2:25565"}

	s.HandleProviderMessage(ProviderMessage{Kind: ProviderUpdate, Key: "lobby.example.com", Route: rt})
	if _, ok := s.resolver.Resolve("lobby.example.com"); !ok {
		t.Fatal("expected route present after insert")
	}

	s.HandleProviderMessage(ProviderMessage{Kind: ProviderUpdate, Key: "lobby.example.com", Route: nil})
	if _, ok := s.resolver.Resolve("lobby.example.com"); ok {
		t.Fatal("expected route gone after removal")
	}
}

func TestHandleProviderMessageShutdownTriggersController(t *testing.T) {
	s := newTestSupervisor(t)
	s.HandleProviderMessage(ProviderMessage{Kind: ProviderShutdown})
	if !s.shutdown.Triggered() {
		t.Fatal("expected shutdown controller triggered")
	}
}
