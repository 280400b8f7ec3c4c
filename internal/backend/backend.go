// Package backend adapts backend server process lifecycle management into
// one narrow Provider interface, mirroring the trait shape
// infrarust_server_manager/src/process/provider.rs and its api/mod.rs
// ApiProvider use (get_server_status/start_server/stop_server) — without
// wiring a Pterodactyl/Crafty panel HTTP client, since no such SDK appears
// anywhere in the retrieval pack. This stays an adapter point a real panel
// integration would implement against, not a dropped feature.
package backend

import (
	"context"
	"fmt"
	"net"
	"os/exec"
	"time"
)

// Status is a backend process's reported lifecycle state, matching the
// states internal/motd renders a status payload for.
type Status string

const (
	StatusUnknown  Status = "unknown"
	StatusStarting Status = "starting"
	StatusRunning  Status = "running"
	StatusStopping Status = "stopping"
	StatusStopped  Status = "stopped"
	StatusCrashed  Status = "crashed"
)

// Provider starts, stops, and reports on one backend server process.
type Provider interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Restart(ctx context.Context) error
	Status(ctx context.Context) (Status, error)
}

// ManualProvider assumes the backend is managed outside the gateway
// entirely (a server started by hand, or by infrastructure the gateway
// doesn't control) and always reports it as running. This is the default
// when a route sets neither start_command nor stop_command.
type ManualProvider struct{}

func (ManualProvider) Start(context.Context) error   { return nil }
func (ManualProvider) Stop(context.Context) error    { return nil }
func (ManualProvider) Restart(context.Context) error { return nil }
func (ManualProvider) Status(context.Context) (Status, error) {
	return StatusRunning, nil
}

// CommandProvider starts/stops a backend by running shell commands (e.g. a
// systemd unit, a screen/tmux-wrapped server jar, a docker compose
// service), mirroring terminal/command.rs's execute_command shape, and
// reports Status by dialing Address — a process that accepts a TCP
// connection is "running", one that refuses it is "stopped".
type CommandProvider struct {
	StartCommand string
	StopCommand  string
	Address      string
	DialTimeout  time.Duration

	runCommand func(ctx context.Context, command string) error
}

// NewCommandProvider builds a CommandProvider. An empty startCmd/stopCmd
// makes the corresponding method a no-op (useful when only Status should be
// probed).
func NewCommandProvider(startCmd, stopCmd, address string) *CommandProvider {
	return &CommandProvider{
		StartCommand: startCmd,
		StopCommand:  stopCmd,
		Address:      address,
		DialTimeout:  2 * time.Second,
	}
}

func (p *CommandProvider) run(ctx context.Context, command string) error {
	if command == "" {
		return nil
	}
	if p.runCommand != nil {
		return p.runCommand(ctx, command)
	}
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("backend: running %q: %w: %s", command, err, out)
	}
	return nil
}

func (p *CommandProvider) Start(ctx context.Context) error {
	return p.run(ctx, p.StartCommand)
}

func (p *CommandProvider) Stop(ctx context.Context) error {
	return p.run(ctx, p.StopCommand)
}

func (p *CommandProvider) Restart(ctx context.Context) error {
	if err := p.Stop(ctx); err != nil {
		return err
	}
	return p.Start(ctx)
}

func (p *CommandProvider) Status(ctx context.Context) (Status, error) {
	if p.Address == "" {
		return StatusUnknown, nil
	}
	d := net.Dialer{Timeout: p.DialTimeout}
	conn, err := d.DialContext(ctx, "tcp", p.Address)
	if err != nil {
		return StatusStopped, nil
	}
	conn.Close()
	return StatusRunning, nil
}
