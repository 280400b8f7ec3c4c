package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/go-mclib/gateway/internal/motd"
	"github.com/go-mclib/gateway/internal/session"
	"github.com/go-mclib/gateway/internal/supervisor"
)

// Provider is a source of routing configuration that pushes
// supervisor.ProviderMessage values as the configuration changes, per
// spec.md §4.8.
type Provider interface {
	// Watch starts the provider and returns the channel it sends messages
	// on. The first message is always a ProviderFirstInit with the full
	// initial snapshot. The channel is closed when ctx is cancelled.
	Watch(ctx context.Context) (<-chan supervisor.ProviderMessage, error)
	Close() error
}

// FileProvider reads Config from a single YAML file and hot-reloads it:
// viper loads the file (so the provider gets viper's env-var-override layer
// for free — GATEWAY_LISTEN overrides "listen", etc.), gopkg.in/yaml.v3
// decodes the strongly-typed Config/RouteSpec document, and
// github.com/fsnotify/fsnotify watches the file's directory directly
// (rather than going through viper's own OnConfigChange) so a reload only
// fires for writes to this exact path.
type FileProvider struct {
	path        string
	motdBuilder *motd.Builder
	log         *zap.Logger

	mu      sync.Mutex
	current map[string]*session.Route
}

// NewFileProvider builds a FileProvider for the YAML document at path.
func NewFileProvider(path string, motdBuilder *motd.Builder, log *zap.Logger) *FileProvider {
	if log == nil {
		log = zap.NewNop()
	}
	return &FileProvider{path: path, motdBuilder: motdBuilder, log: log}
}

// Load reads and parses the document once, without starting the
// directory watch Watch sets up. Used by one-shot callers (e.g. the bans
// CLI subcommands) that only need the current settings, not hot reload.
func (p *FileProvider) Load() (*Config, error) {
	return p.load()
}

func (p *FileProvider) load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(p.path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", p.path, err)
	}
	v.SetEnvPrefix("GATEWAY")
	v.AutomaticEnv()

	raw, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", p.path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", p.path, err)
	}

	if v.IsSet("listen") {
		cfg.Listen = v.GetString("listen")
	}
	if v.IsSet("max_connections") {
		cfg.MaxConnections = v.GetInt("max_connections")
	}
	return &cfg, nil
}

// Watch loads the file, sends a ProviderFirstInit, then watches the file's
// directory for writes and sends incremental ProviderUpdate/removal
// messages for changed/removed hostnames on every reload.
func (p *FileProvider) Watch(ctx context.Context) (<-chan supervisor.ProviderMessage, error) {
	cfg, err := p.load()
	if err != nil {
		return nil, err
	}
	routes, err := cfg.BuildRoutes(p.motdBuilder)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.current = routes
	p.mu.Unlock()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: creating file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(p.path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("config: watching %s: %w", filepath.Dir(p.path), err)
	}

	ch := make(chan supervisor.ProviderMessage, 8)
	target := filepath.Clean(p.path)

	go func() {
		defer watcher.Close()
		defer close(ch)

		ch <- supervisor.ProviderMessage{Kind: supervisor.ProviderFirstInit, Routes: routes}

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				p.reload(ctx, ch)
			case watchErr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				p.log.Warn("config file watch error", zap.Error(watchErr))
				ch <- supervisor.ProviderMessage{Kind: supervisor.ProviderError, Err: watchErr}
			}
		}
	}()

	return ch, nil
}

func (p *FileProvider) reload(ctx context.Context, ch chan<- supervisor.ProviderMessage) {
	cfg, err := p.load()
	if err != nil {
		p.log.Error("config reload failed", zap.Error(err))
		ch <- supervisor.ProviderMessage{Kind: supervisor.ProviderError, Err: err}
		return
	}
	next, err := cfg.BuildRoutes(p.motdBuilder)
	if err != nil {
		p.log.Error("config reload failed", zap.Error(err))
		ch <- supervisor.ProviderMessage{Kind: supervisor.ProviderError, Err: err}
		return
	}

	p.mu.Lock()
	prev := p.current
	p.current = next
	p.mu.Unlock()

	for key, rt := range next {
		if old, ok := prev[key]; !ok || !routesEqual(old, rt) {
			ch <- supervisor.ProviderMessage{Kind: supervisor.ProviderUpdate, Key: key, Route: rt}
		}
	}
	for key := range prev {
		if _, ok := next[key]; !ok {
			ch <- supervisor.ProviderMessage{Kind: supervisor.ProviderUpdate, Key: key, Route: nil}
		}
	}
	p.log.Info("config reloaded", zap.Int("routes", len(next)))
}

func routesEqual(a, b *session.Route) bool {
	return a.BackendAddr == b.BackendAddr && a.ProxyMode == b.ProxyMode && string(a.MOTDOverride) == string(b.MOTDOverride)
}

// Close is a no-op: Watch's goroutine tears down its own watcher when ctx
// is cancelled.
func (p *FileProvider) Close() error { return nil }

var (
	_ Provider = (*FileProvider)(nil)
	_ Provider = (*DockerProvider)(nil)
)
