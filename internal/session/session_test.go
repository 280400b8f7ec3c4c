package session_test

import (
	"net"
	"testing"

	"github.com/go-mclib/gateway/internal/netio"
	"github.com/go-mclib/gateway/internal/session"
)

func newTestSession(t *testing.T) *session.Session {
	t.Helper()
	client, srv := net.Pipe()
	t.Cleanup(func() { client.Close(); srv.Close() })
	return session.New(netio.NewConn(client))
}

func TestSession_InitialState(t *testing.T) {
	sess := newTestSession(t)
	if sess.State() != session.StateHandshake {
		t.Errorf("got state %v, want StateHandshake", sess.State())
	}
	if sess.CompressionThreshold() != -1 {
		t.Errorf("got compression threshold %d, want -1 (disabled)", sess.CompressionThreshold())
	}
	if sess.Route() != nil {
		t.Error("expected nil route before routing")
	}
	if sess.Username() != "" {
		t.Error("expected empty username before login")
	}
}

func TestSession_StateTransitions(t *testing.T) {
	sess := newTestSession(t)
	for _, st := range []session.State{session.StateStatus, session.StateLogin, session.StateTransfer, session.StatePlay, session.StateClosing} {
		sess.SetState(st)
		if sess.State() != st {
			t.Errorf("got state %v, want %v", sess.State(), st)
		}
	}
}

func TestSession_RouteAndUsername(t *testing.T) {
	sess := newTestSession(t)
	rt := &session.Route{HostnamePattern: "survival.example.com", BackendAddr: "127.0.0.1:25566"}
	sess.SetRoute(rt)
	if got := sess.Route(); got != rt {
		t.Errorf("got route %+v, want %+v", got, rt)
	}

	sess.SetUsername("Notch")
	if sess.Username() != "Notch" {
		t.Errorf("got username %q, want Notch", sess.Username())
	}
}

func TestSession_ProtocolVersionAndCompression(t *testing.T) {
	sess := newTestSession(t)
	sess.SetProtocolVersion(767)
	if sess.ProtocolVersion() != 767 {
		t.Errorf("got protocol version %d, want 767", sess.ProtocolVersion())
	}
	sess.SetCompressionThreshold(256)
	if sess.CompressionThreshold() != 256 {
		t.Errorf("got compression threshold %d, want 256", sess.CompressionThreshold())
	}
}

func TestState_String(t *testing.T) {
	cases := map[session.State]string{
		session.StateHandshake: "handshake",
		session.StateStatus:    "status",
		session.StateLogin:     "login",
		session.StateTransfer:  "transfer",
		session.StatePlay:      "play",
		session.StateClosing:   "closing",
		session.State(255):     "unknown",
	}
	for st, want := range cases {
		if got := st.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", st, got, want)
		}
	}
}

func TestMinecraftCommunication_Constructors(t *testing.T) {
	raw := session.RawData[int]([]byte("hello"))
	if raw.Kind != session.CommRawData || string(raw.Raw) != "hello" {
		t.Errorf("RawData: got %+v", raw)
	}

	shutdown := session.Shutdown[int]()
	if shutdown.Kind != session.CommShutdown {
		t.Errorf("Shutdown: got kind %v, want CommShutdown", shutdown.Kind)
	}

	custom := session.CustomData(42)
	if custom.Kind != session.CommCustomData || custom.Custom != 42 {
		t.Errorf("CustomData: got %+v", custom)
	}
}
