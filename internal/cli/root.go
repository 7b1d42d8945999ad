package cli

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/cpumon/internal/config"
	"github.com/Dicklesworthstone/cpumon/internal/logger"
	"github.com/Dicklesworthstone/cpumon/internal/sampler"
	"github.com/Dicklesworthstone/cpumon/internal/ui"
)

var cfg = config.Default()

var rootCmd = &cobra.Command{
	Use:           "cpumon",
	Short:         "Per-core CPU utilization and frequency monitor",
	Long:          "cpumon samples /proc/stat and cpufreq once per interval and shows per-core busy and clock percentages.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg.Load(cmd.Flags())
		return cfg.Validate()
	},
	RunE: runViewer,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		rootCmd.PrintErrln("Error:", err)
		os.Exit(1)
	}
}

func init() {
	cfg.BindFlags(rootCmd.PersistentFlags())
}

// newSampler discovers the unit count and takes the warm-up reading so no
// consumer ever sees a since-boot average.
func newSampler(ctx context.Context, log logger.Logger) (*sampler.Sampler, error) {
	s, err := sampler.New(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	s.Warm()
	return s, nil
}

// runViewer keeps the terminal for the TUI, so logs are dropped.
func runViewer(cmd *cobra.Command, args []string) error {
	ctx, stop := notifyContext(cmd.Context())
	defer stop()

	s, err := newSampler(ctx, logger.Discard())
	if err != nil {
		return err
	}

	return runWithSampler(ctx, s, func(ctx context.Context) error {
		return ui.Run(ctx, s)
	})
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
