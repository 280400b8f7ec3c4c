package statuscache_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-mclib/gateway/internal/statuscache"
)

func TestGetOrFetchCachesFreshEntry(t *testing.T) {
	c := statuscache.New(10, 5*time.Second)
	fp := statuscache.Fingerprint{RouteID: "a", ProtocolVersion: 770}

	var calls int32
	fetch := func() ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		return []byte("status"), nil
	}

	for i := 0; i < 3; i++ {
		got, err := c.GetOrFetch(fp, fetch)
		if err != nil {
			t.Fatalf("GetOrFetch: %v", err)
		}
		if string(got) != "status" {
			t.Fatalf("got %q, want %q", got, "status")
		}
	}

	if calls != 1 {
		t.Fatalf("expected exactly 1 fetch for repeated fresh reads, got %d", calls)
	}
}

func TestGetOrFetchCoalescesConcurrentMisses(t *testing.T) {
	c := statuscache.New(10, 5*time.Second)
	fp := statuscache.Fingerprint{RouteID: "a", ProtocolVersion: 1}

	var calls int32
	start := make(chan struct{})
	fetch := func() ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		<-start
		return []byte("status"), nil
	}

	done := make(chan struct{})
	for i := 0; i < 5; i++ {
		go func() {
			_, _ = c.GetOrFetch(fp, fetch)
			done <- struct{}{}
		}()
	}
	close(start)
	for i := 0; i < 5; i++ {
		<-done
	}

	if calls != 1 {
		t.Fatalf("expected single-flight to coalesce into 1 fetch, got %d", calls)
	}
}

func TestEvictionRemovesOldestFirst(t *testing.T) {
	c := statuscache.New(2, time.Minute)

	c.Insert(statuscache.Fingerprint{RouteID: "a"}, []byte("a"), time.Minute)
	c.Insert(statuscache.Fingerprint{RouteID: "b"}, []byte("b"), time.Minute)
	c.Insert(statuscache.Fingerprint{RouteID: "c"}, []byte("c"), time.Minute)

	// "a" was inserted first, so it should have been evicted to make room
	// for "c" once the 2-entry cap was exceeded. Fetching it again must
	// therefore call fetch, while "b" and "c" remain cached.
	var aFetches int32
	got, err := c.GetOrFetch(statuscache.Fingerprint{RouteID: "a"}, func() ([]byte, error) {
		atomic.AddInt32(&aFetches, 1)
		return []byte("refetched-a"), nil
	})
	if err != nil {
		t.Fatalf("GetOrFetch: %v", err)
	}
	if string(got) != "refetched-a" || aFetches != 1 {
		t.Fatalf("expected eviction of %q to force exactly one refetch, got payload %q calls %d", "a", got, aFetches)
	}

	for _, id := range []string{"b", "c"} {
		got, err := c.GetOrFetch(statuscache.Fingerprint{RouteID: id}, func() ([]byte, error) {
			t.Fatalf("%q should still be cached, should not refetch", id)
			return nil, nil
		})
		if err != nil {
			t.Fatalf("GetOrFetch(%q): %v", id, err)
		}
		if string(got) != id {
			t.Fatalf("GetOrFetch(%q) = %q, want %q", id, got, id)
		}
	}
}
