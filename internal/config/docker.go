package config

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/go-mclib/gateway/internal/supervisor"
)

// DockerProvider would derive routes from container labels the way
// Infrarust's docker provider does (infrarust_config/src/provider/docker).
// The original itself ships a disabled stub when its "docker" build feature
// is off (provider/docker/stub.rs); no Docker client SDK appears anywhere
// in this repo's retrieval pack, so this mirrors that stub rather than
// hand-rolling a raw Docker Engine API client against the unix socket.
// FileProvider is the supported provider and the only one cmd/gateway
// constructs; DockerProvider.Watch always returns an error.
type DockerProvider struct {
	log *zap.Logger
}

// NewDockerProvider builds a disabled DockerProvider.
func NewDockerProvider(log *zap.Logger) *DockerProvider {
	if log == nil {
		log = zap.NewNop()
	}
	return &DockerProvider{log: log}
}

// Watch always fails: see the type doc for why.
func (p *DockerProvider) Watch(ctx context.Context) (<-chan supervisor.ProviderMessage, error) {
	p.log.Error("docker provider is not enabled in this build")
	return nil, fmt.Errorf("config: docker provider requires a Docker client SDK not present in this build")
}

func (p *DockerProvider) Close() error { return nil }
