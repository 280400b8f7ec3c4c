package netio

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
)

// DialBackend resolves and connects to a backend Minecraft server address,
// honoring SRV records (_minecraft._tcp.<host>) when no explicit port is given.
func DialBackend(ctx context.Context, address string) (*Conn, error) {
	resolved, err := ResolveBackendAddress(address)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve backend address %q: %w", address, err)
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to backend %s: %w", resolved, err)
	}
	return NewConn(conn), nil
}

// ResolveBackendAddress resolves a backend address using SRV records if the
// caller didn't specify a port explicitly, falling back to the vanilla
// default port 25565.
func ResolveBackendAddress(address string) (string, error) {
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		// No port in the address: treat the whole string as a hostname.
		host = address
		port = ""
	}

	if port != "" {
		return net.JoinHostPort(host, port), nil
	}

	_, records, err := net.LookupSRV("minecraft", "tcp", host)
	if err == nil && len(records) > 0 {
		target := strings.TrimSuffix(records[0].Target, ".")
		return net.JoinHostPort(target, strconv.Itoa(int(records[0].Port))), nil
	}

	return net.JoinHostPort(host, "25565"), nil
}
