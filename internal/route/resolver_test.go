package route_test

import (
	"testing"

	"github.com/go-mclib/gateway/internal/route"
	"github.com/go-mclib/gateway/internal/session"
)

func TestResolvePrecedenceExactBeatsWildcard(t *testing.T) {
	r := route.New()
	literal := &session.Route{BackendAddr: "literal:25565"}
	wildcard := &session.Route{BackendAddr: "wildcard:25565"}

	r.Put("mc.example.com", literal)
	r.Put("*.example.com", wildcard)

	got, ok := r.Resolve("mc.example.com")
	if !ok || got != literal {
		t.Fatalf("expected literal match for exact hostname")
	}

	got, ok = r.Resolve("play.example.com")
	if !ok || got != wildcard {
		t.Fatalf("expected wildcard match for subdomain")
	}

	_, ok = r.Resolve("example.org")
	if ok {
		t.Fatalf("expected miss for unrelated hostname")
	}
}

func TestResolveLongestSuffixWildcardWins(t *testing.T) {
	r := route.New()
	broad := &session.Route{BackendAddr: "broad:25565"}
	narrow := &session.Route{BackendAddr: "narrow:25565"}

	r.Put("*.example.com", broad)
	r.Put("*.eu.example.com", narrow)

	got, ok := r.Resolve("play.eu.example.com")
	if !ok || got != narrow {
		t.Fatalf("expected longest-suffix wildcard to win, got %v", got)
	}

	got, ok = r.Resolve("play.us.example.com")
	if !ok || got != broad {
		t.Fatalf("expected broad wildcard fallback, got %v", got)
	}
}

func TestResolveStripsForgeHandshakeSuffix(t *testing.T) {
	r := route.New()
	rt := &session.Route{BackendAddr: "forge:25565"}
	r.Put("mc.example.com", rt)

	got, ok := r.Resolve("mc.example.com\x00FML\x00")
	if !ok || got != rt {
		t.Fatalf("expected FML-suffixed hostname to still resolve")
	}

	got, ok = r.Resolve("mc.example.com\x00FML2\x00")
	if !ok || got != rt {
		t.Fatalf("expected FML2-suffixed hostname to still resolve")
	}
}

func TestRemoveDeletesExactAndWildcard(t *testing.T) {
	r := route.New()
	literal := &session.Route{BackendAddr: "a:25565"}
	wildcard := &session.Route{BackendAddr: "b:25565"}
	r.Put("mc.example.com", literal)
	r.Put("*.example.com", wildcard)

	r.Remove("mc.example.com")
	got, ok := r.Resolve("mc.example.com")
	if !ok || got != wildcard {
		t.Fatalf("expected removing the literal to fall through to the wildcard, got %v ok=%v", got, ok)
	}

	r.Remove("*.example.com")
	if _, ok := r.Resolve("play.example.com"); ok {
		t.Fatalf("expected wildcard entry to be removed")
	}
}

func TestReplaceSwapsWholeSnapshot(t *testing.T) {
	r := route.New()
	r.Put("old.example.com", &session.Route{BackendAddr: "old:25565"})

	r.Replace(map[string]*session.Route{
		"new.example.com": {BackendAddr: "new:25565"},
	})

	if _, ok := r.Resolve("old.example.com"); ok {
		t.Fatalf("expected Replace to discard prior routes")
	}
	if rt, ok := r.Resolve("new.example.com"); !ok || rt.BackendAddr != "new:25565" {
		t.Fatalf("expected Replace to install new route")
	}
}

func TestConcurrentReadsDuringWrite(t *testing.T) {
	r := route.New()
	r.Put("mc.example.com", &session.Route{BackendAddr: "a:25565"})

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			r.Put("other.example.com", &session.Route{BackendAddr: "b:25565"})
		}
		close(done)
	}()

	for i := 0; i < 100; i++ {
		r.Resolve("mc.example.com")
	}
	<-done
}
