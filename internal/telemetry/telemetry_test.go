package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/go-mclib/gateway/internal/telemetry"
)

func TestZapExporter_Snapshot(t *testing.T) {
	exp := telemetry.NewZapExporter(zap.NewNop())
	ctx := context.Background()

	exp.Export(ctx, telemetry.Event{Kind: telemetry.EventSessionAccepted, Route: "survival"})
	exp.Export(ctx, telemetry.Event{Kind: telemetry.EventSessionAccepted, Route: "survival"})
	exp.Export(ctx, telemetry.Event{Kind: telemetry.EventLoginDenied, Err: errors.New("banned")})

	snap := exp.Snapshot()
	if snap[telemetry.EventSessionAccepted] != 2 {
		t.Errorf("got %d session_accepted, want 2", snap[telemetry.EventSessionAccepted])
	}
	if snap[telemetry.EventLoginDenied] != 1 {
		t.Errorf("got %d login_denied, want 1", snap[telemetry.EventLoginDenied])
	}
}

func TestNopExporter(t *testing.T) {
	var exp telemetry.Exporter = telemetry.NopExporter{}
	exp.Export(context.Background(), telemetry.Event{Kind: telemetry.EventStatusRequest})
	if exp.Name() != "nop" {
		t.Errorf("got name %q, want nop", exp.Name())
	}
}
