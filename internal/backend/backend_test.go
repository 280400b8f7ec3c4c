package backend_test

import (
	"context"
	"net"
	"testing"

	"github.com/go-mclib/gateway/internal/backend"
)

func TestManualProvider_AlwaysRunning(t *testing.T) {
	var p backend.Provider = backend.ManualProvider{}
	ctx := context.Background()

	if err := p.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	status, err := p.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status != backend.StatusRunning {
		t.Errorf("got %s, want running", status)
	}
}

func TestCommandProvider_StatusByDial(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	p := backend.NewCommandProvider("", "", ln.Addr().String())
	status, err := p.Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status != backend.StatusRunning {
		t.Errorf("got %s, want running for a listening address", status)
	}

	ln.Close()
	status, err = p.Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status != backend.StatusStopped {
		t.Errorf("got %s, want stopped once the listener closes", status)
	}
}

func TestCommandProvider_NoAddressIsUnknown(t *testing.T) {
	p := backend.NewCommandProvider("", "", "")
	status, err := p.Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status != backend.StatusUnknown {
		t.Errorf("got %s, want unknown with no address configured", status)
	}
}
