package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/cpumon/internal/exporter"
	"github.com/Dicklesworthstone/cpumon/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose per-core metrics on a Prometheus /metrics endpoint",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&cfg.Listen, "listen", cfg.Listen, "address for the /metrics endpoint")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := notifyContext(cmd.Context())
	defer stop()

	log := logger.New(cfg)

	s, err := newSampler(ctx, log)
	if err != nil {
		log.Error("failed to start sampler", "error", err)
		return err
	}

	err = runWithSampler(ctx, s, func(ctx context.Context) error {
		return exporter.Serve(ctx, cfg.Listen, s, log)
	})
	log.Info("cpumon stopped")
	return err
}
