package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/go-mclib/gateway/internal/actor"
	"github.com/go-mclib/gateway/internal/banstore"
	"github.com/go-mclib/gateway/internal/bufferpool"
	gwconfig "github.com/go-mclib/gateway/internal/config"
	"github.com/go-mclib/gateway/internal/motd"
	"github.com/go-mclib/gateway/internal/policy"
	"github.com/go-mclib/gateway/internal/route"
	"github.com/go-mclib/gateway/internal/session"
	"github.com/go-mclib/gateway/internal/statuscache"
	"github.com/go-mclib/gateway/internal/supervisor"
	"github.com/go-mclib/gateway/internal/telemetry"
)

const (
	statusCacheDefaultTTL   = 30 * time.Second
	telemetryReportInterval = time.Minute
)

func loadConfig(path string) (*gwconfig.Config, error) {
	return gwconfig.NewFileProvider(path, nil, nil).Load()
}

func newServeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the gateway's accept loop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), flags)
		},
	}
}

func runServe(ctx context.Context, flags *globalFlags) error {
	log, err := buildLogger(flags.logLevel)
	if err != nil {
		return fmt.Errorf("gateway: building logger: %w", err)
	}
	defer log.Sync()

	cfg, err := loadConfig(flags.configPath)
	if err != nil {
		return fmt.Errorf("gateway: loading %s: %w", flags.configPath, err)
	}
	versionName := cfg.VersionName
	if versionName == "" {
		versionName = "Gateway"
	}
	motdBuilder := motd.NewBuilder(versionName, cfg.ProtocolVersion)

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	provider := gwconfig.NewFileProvider(flags.configPath, motdBuilder, log)
	providerCh, err := provider.Watch(ctx)
	if err != nil {
		return fmt.Errorf("gateway: watching %s: %w", flags.configPath, err)
	}

	first := <-providerCh
	if first.Kind != supervisor.ProviderFirstInit {
		return fmt.Errorf("gateway: expected initial config snapshot, got %v", first.Kind)
	}

	resolver := route.New()
	resolver.Replace(first.Routes)

	filters := cfg.BuildFilters()
	if cfg.BanFile != "" {
		store, err := banstore.Open(cfg.BanFile)
		if err != nil {
			return fmt.Errorf("gateway: opening ban store %s: %w", cfg.BanFile, err)
		}
		filters = append(filters, policy.BanFilter{Store: store})
	}
	chain := policy.NewChain(filters...)

	maxEntries := cfg.StatusCache.MaxEntries
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	ttl := cfg.StatusCache.DefaultTTL
	if ttl <= 0 {
		ttl = statusCacheDefaultTTL
	}
	cache := statuscache.New(maxEntries, ttl)

	maxCap := cfg.BufferPool.MaxCapacity
	if maxCap <= 0 {
		maxCap = 64 * 1024
	}
	maxRetained := cfg.BufferPool.MaxRetained
	if maxRetained <= 0 {
		maxRetained = 256
	}
	pool := bufferpool.New(maxCap, maxRetained)

	telem := telemetry.NewZapExporter(log)
	go telem.ReportPeriodically(ctx, telemetryReportInterval)

	fetchStatus := func(ctx context.Context, rt *session.Route, protocolVersion int32) ([]byte, error) {
		return actor.FetchStatus(ctx, nil, rt, protocolVersion)
	}

	sup := supervisor.New(cfg.SupervisorConfig(), resolver, chain, cache, pool, log, fetchStatus, telem, motdBuilder)

	go func() {
		for msg := range providerCh {
			sup.HandleProviderMessage(msg)
		}
	}()

	go func() {
		<-ctx.Done()
		sup.Shutdown().Trigger()
	}()

	log.Info("gateway starting", zap.String("listen", cfg.Listen), zap.Int("routes", len(first.Routes)))
	return sup.Serve(ctx)
}
