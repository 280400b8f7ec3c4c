package actor

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"

	"github.com/go-mclib/gateway/internal/backend"
	"github.com/go-mclib/gateway/internal/gwerr"
	"github.com/go-mclib/gateway/internal/mccrypto"
	"github.com/go-mclib/gateway/internal/netio"
	"github.com/go-mclib/gateway/internal/packets"
	"github.com/go-mclib/gateway/internal/policy"
	"github.com/go-mclib/gateway/internal/session"
	"github.com/go-mclib/gateway/internal/telemetry"
	"github.com/go-mclib/gateway/internal/values"
)

// runLoginExchange implements the client actor's LoginExchange state: read
// LoginStart, evaluate the full policy chain (username/uuid now known), then
// dispatch to the route's proxy mode.
func runLoginExchange(ctx context.Context, sess *session.Session, rt *session.Route, hs *packets.Handshake, deps *Deps) error {
	sess.SetState(session.StateLogin)
	pr := netio.NewPacketReader(sess.ClientConn)
	pw := netio.NewPacketWriter(sess.ClientConn)

	raw, err := readPacketCtx(ctx, pr)
	if err != nil {
		return fmt.Errorf("%w: %v", gwerr.ErrIncomplete, err)
	}
	start, err := packets.Decode[packets.LoginStart](raw)
	if err != nil {
		return fmt.Errorf("%w: %v", gwerr.ErrMalformed, err)
	}
	sess.SetUsername(string(start.Name))

	req := policy.Request{
		RemoteIP: remoteIP(sess),
		Username: string(start.Name),
		UUID:     start.PlayerUUID.String(),
	}
	verdict, err := deps.Policy.Evaluate(ctx, req)
	if err != nil {
		return err
	}
	if verdict.Denied {
		if deps.Telemetry != nil {
			deps.Telemetry.Export(ctx, telemetry.Event{Kind: telemetry.EventLoginDenied, Route: rt.HostnamePattern, RemoteIP: req.RemoteIP, Username: req.Username})
		}
		return disconnectLogin(pw, verdict.Reason)
	}
	if deps.Telemetry != nil {
		deps.Telemetry.Export(ctx, telemetry.Event{Kind: telemetry.EventLoginAttempt, Route: rt.HostnamePattern, RemoteIP: req.RemoteIP, Username: req.Username})
	}

	switch rt.ProxyMode {
	case session.ModeOffline:
		return loginOffline(ctx, sess, rt, hs, start, pr, pw, deps)
	case session.ModeClientOnly:
		return loginClientOnly(ctx, sess, rt, hs, start, pr, pw, deps)
	case session.ModeServerOnly:
		// Acting as the connecting player toward an online-mode backend
		// would require the gateway to hold and spend the player's own
		// Mojang session token — exactly the Mojang-authentication-client
		// role this gateway does not implement. Forwarding verbatim (like
		// Passthrough) is the closest honest behavior: the real client and
		// the backend negotiate encryption directly, end to end.
		return loginPassthrough(ctx, sess, rt, hs, start, deps)
	default:
		return loginPassthrough(ctx, sess, rt, hs, start, deps)
	}
}

func disconnectLogin(pw *netio.PacketWriter, reason string) error {
	pkt, err := packets.Encode(&packets.Disconnect{Reason: values.NewDisconnectReason(reason)})
	if err != nil {
		return err
	}
	return pw.WritePacket(pkt)
}

// loginPassthrough forwards the original handshake and login-start frames to
// the backend verbatim and splices every subsequent byte both ways without
// further decoding — the backend handles its own authentication.
func loginPassthrough(ctx context.Context, sess *session.Session, rt *session.Route, hs *packets.Handshake, start *packets.LoginStart, deps *Deps) error {
	backend, err := dialAndForwardHandshake(ctx, rt, hs, deps)
	if err != nil {
		return disconnectAfterDial(ctx, sess, rt, err)
	}
	defer backend.Close()

	startPkt, err := packets.Encode(start)
	if err != nil {
		return err
	}
	if err := netio.NewPacketWriter(backend).WritePacket(startPkt); err != nil {
		return err
	}

	sess.SetState(session.StateTransfer)
	return spliceRaw(ctx, sess.ClientConn, backend)
}

// loginOffline terminates login at the gateway: the client never talks to
// the backend's own login sequence. The gateway logs into the backend
// itself (offline mode, so no shared-secret handshake on that side either),
// then synthesizes a LoginSuccess for the client once the backend accepts.
func loginOffline(ctx context.Context, sess *session.Session, rt *session.Route, hs *packets.Handshake, start *packets.LoginStart, pr *netio.PacketReader, pw *netio.PacketWriter, deps *Deps) error {
	offlineUUID := mccrypto.OfflineUUID(string(start.Name))

	backend, err := dialAndForwardHandshake(ctx, rt, hs, deps)
	if err != nil {
		return disconnectAfterDial(ctx, sess, rt, err)
	}
	defer backend.Close()

	backendStart := &packets.LoginStart{Name: start.Name, PlayerUUID: offlineUUID}
	startPkt, err := packets.Encode(backendStart)
	if err != nil {
		return err
	}
	backendWriter := netio.NewPacketWriter(backend)
	if err := backendWriter.WritePacket(startPkt); err != nil {
		return err
	}

	backendReader := netio.NewPacketReader(backend)
	if err := pumpBackendLoginToSuccess(ctx, backendReader, backendWriter, pr, pw); err != nil {
		return err
	}

	success, err := packets.Encode(&packets.LoginSuccess{UUID: offlineUUID, Username: start.Name})
	if err != nil {
		return err
	}
	if err := pw.WritePacket(success); err != nil {
		return err
	}

	sess.SetState(session.StateTransfer)
	return splicePackets(ctx, pr, pw, backendReader, backendWriter)
}

// loginClientOnly performs the real online-mode encryption handshake with
// the client (EncryptionRequest/Response, Mojang session-server
// verification), then hands off to the backend in offline mode — the
// backend never sees the client's encryption at all.
func loginClientOnly(ctx context.Context, sess *session.Session, rt *session.Route, hs *packets.Handshake, start *packets.LoginStart, pr *netio.PacketReader, pw *netio.PacketWriter, deps *Deps) error {
	key, err := mccrypto.GenerateServerKeyPair()
	if err != nil {
		return err
	}
	pubDER, err := mccrypto.ConvertPublicKeyToSPKI(&key.PublicKey)
	if err != nil {
		return err
	}

	verifyToken := make([]byte, 4)
	if _, err := rand.Read(verifyToken); err != nil {
		return err
	}

	encReq, err := packets.Encode(&packets.EncryptionRequest{
		ServerID:    "",
		PublicKey:   values.ByteArray(pubDER),
		VerifyToken: values.ByteArray(verifyToken),
	})
	if err != nil {
		return err
	}
	if err := pw.WritePacket(encReq); err != nil {
		return err
	}

	raw, err := readPacketCtx(ctx, pr)
	if err != nil {
		return fmt.Errorf("%w: %v", gwerr.ErrIncomplete, err)
	}
	encResp, err := packets.Decode[packets.EncryptionResponse](raw)
	if err != nil {
		return fmt.Errorf("%w: %v", gwerr.ErrMalformed, err)
	}

	enc := sess.ClientConn.Encryption()
	decryptedToken, err := enc.DecryptWithPrivateKey(key, encResp.VerifyToken)
	if err != nil || !bytes.Equal(decryptedToken, verifyToken) {
		return fmt.Errorf("%w: verify token mismatch", gwerr.ErrDenied)
	}
	sharedSecret, err := enc.DecryptWithPrivateKey(key, encResp.SharedSecret)
	if err != nil {
		return fmt.Errorf("%w: %v", gwerr.ErrDecrypt, err)
	}
	enc.SetSharedSecret(sharedSecret)
	if err := enc.EnableEncryption(); err != nil {
		return err
	}

	serverHash := mccrypto.ComputeServerHash("", sharedSecret, pubDER)
	sessClient := mccrypto.NewSessionServerClient()
	profile, err := sessClient.HasJoined(ctx, string(start.Name), serverHash, remoteIP(sess))
	if err != nil || profile == nil {
		return disconnectLogin(pw, "Failed to verify username with Mojang session servers.")
	}
	verifiedUUID, err := values.UUIDFromString(profile.ID)
	if err != nil {
		verifiedUUID = mccrypto.OfflineUUID(string(start.Name))
	}
	sess.SetUsername(profile.Name)
	loginStart := &packets.LoginStart{Name: values.String(profile.Name), PlayerUUID: verifiedUUID}

	backend, err := dialAndForwardHandshake(ctx, rt, hs, deps)
	if err != nil {
		return disconnectAfterDial(ctx, sess, rt, err)
	}
	defer backend.Close()

	startPkt, err := packets.Encode(loginStart)
	if err != nil {
		return err
	}
	backendWriter := netio.NewPacketWriter(backend)
	if err := backendWriter.WritePacket(startPkt); err != nil {
		return err
	}

	backendReader := netio.NewPacketReader(backend)
	if err := pumpBackendLoginToSuccess(ctx, backendReader, backendWriter, pr, pw); err != nil {
		return err
	}

	success, err := packets.Encode(&packets.LoginSuccess{UUID: loginStart.PlayerUUID, Username: loginStart.Name})
	if err != nil {
		return err
	}
	if err := pw.WritePacket(success); err != nil {
		return err
	}

	sess.SetState(session.StateTransfer)
	return splicePackets(ctx, pr, pw, backendReader, backendWriter)
}

// pumpBackendLoginToSuccess reads backend login packets until LoginSuccess.
// A SetCompression from the backend is relayed to the client as its own
// SetCompression (the client never saw the backend's, since the gateway
// terminated login on both sides independently) before both pairs'
// thresholds are updated, so the post-login packet relay stays in sync on
// both sides even though they negotiated compression separately.
func pumpBackendLoginToSuccess(ctx context.Context, backendReader *netio.PacketReader, backendWriter *netio.PacketWriter, clientReader *netio.PacketReader, clientWriter *netio.PacketWriter) error {
	for {
		raw, err := readPacketCtx(ctx, backendReader)
		if err != nil {
			return fmt.Errorf("%w: %v", gwerr.ErrBackendUnreachable, err)
		}
		switch raw.ID {
		case packets.SetCompression{}.PacketID():
			sc, err := packets.Decode[packets.SetCompression](raw)
			if err != nil {
				return err
			}
			threshold := int(sc.Threshold)
			clientPkt, err := packets.Encode(sc)
			if err != nil {
				return err
			}
			if err := clientWriter.WritePacket(clientPkt); err != nil {
				return err
			}
			backendReader.SetCompressionThreshold(threshold)
			backendWriter.SetCompressionThreshold(threshold)
			clientReader.SetCompressionThreshold(threshold)
			clientWriter.SetCompressionThreshold(threshold)
		case packets.Disconnect{}.PacketID():
			d, derr := packets.Decode[packets.Disconnect](raw)
			if derr != nil {
				return fmt.Errorf("%w: %v", gwerr.ErrBackendUnreachable, derr)
			}
			return fmt.Errorf("%w: backend disconnected during login: %s", gwerr.ErrBackendUnreachable, d.Reason)
		case packets.LoginSuccess{}.PacketID():
			return nil
		default:
			// PluginRequest or another id we don't special-case: skip it.
			continue
		}
	}
}

// dialAndForwardHandshake opens the backend connection and writes the
// original handshake packet (next_state=Login) unchanged, server_address
// included.
func dialAndForwardHandshake(ctx context.Context, rt *session.Route, hs *packets.Handshake, deps *Deps) (*netio.Conn, error) {
	if deps.DialBackend == nil {
		return nil, fmt.Errorf("%w: no backend dialer configured", gwerr.ErrBackendUnreachable)
	}
	backend, err := deps.DialBackend(ctx, rt)
	if err != nil {
		return nil, err
	}
	pkt, err := packets.Encode(hs)
	if err != nil {
		backend.Close()
		return nil, err
	}
	if err := netio.NewPacketWriter(backend).WritePacket(pkt); err != nil {
		backend.Close()
		return nil, err
	}
	return backend, nil
}

// disconnectAfterDial tells the client why the backend couldn't be reached.
// When the route has a Process provider and it reports StatusStarting, the
// reason says the server is starting; otherwise it says the server is
// unreachable. backend.CommandProvider and backend.ManualProvider never
// report StatusStarting, so with them the reason is always the latter.
func disconnectAfterDial(ctx context.Context, sess *session.Session, rt *session.Route, cause error) error {
	reason := "This server is currently unreachable."
	if rt != nil && rt.Process != nil {
		if status, err := rt.Process.Status(ctx); err == nil && status == backend.StatusStarting {
			reason = "This server is starting, please try again shortly."
		}
	}
	pw := netio.NewPacketWriter(sess.ClientConn)
	_ = disconnectLogin(pw, reason)
	sess.SetState(session.StateClosing)
	return fmt.Errorf("%w: %v", gwerr.ErrBackendUnreachable, cause)
}
