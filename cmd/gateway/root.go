package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// globalFlags holds the persistent flags every subcommand reads, rather
// than threading them individually — matches cobra's own documented
// pattern of package-level flag destinations bound in PersistentFlags.
type globalFlags struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "gateway",
		Short: "Minecraft Java Edition reverse proxy",
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "gateway.yaml", "path to the routing configuration file")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "log level: debug, info, warn, error")

	root.AddCommand(newServeCmd(flags))
	root.AddCommand(newBansCmd(flags))
	root.AddCommand(newVersionCmd())
	return root
}

func buildLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	var zl zap.AtomicLevel
	if err := zl.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}
	cfg.Level = zl
	return cfg.Build()
}
