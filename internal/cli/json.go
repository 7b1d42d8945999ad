package cli

import (
	"context"
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/cpumon/internal/logger"
	"github.com/Dicklesworthstone/cpumon/internal/model"
	"github.com/Dicklesworthstone/cpumon/internal/sampler"
)

var jsonCmd = &cobra.Command{
	Use:   "json",
	Short: "Print one snapshot as JSON, or stream NDJSON with --stream",
	RunE:  runJSON,
}

func init() {
	jsonCmd.Flags().BoolVar(&cfg.Stream, "stream", cfg.Stream, "stream NDJSON until interrupted")
	rootCmd.AddCommand(jsonCmd)
}

type unitReport struct {
	CPU              int     `json:"cpu"`
	Utilization      float64 `json:"utilization"`
	Frequency        float64 `json:"frequency"`
	FrequencyScaling bool    `json:"frequency_scaling"`
}

type report struct {
	Timestamp time.Time    `json:"timestamp"`
	Tick      uint64       `json:"tick"`
	State     string       `json:"state"`
	Units     []unitReport `json:"units"`
}

type reporter struct {
	scaling []bool
}

func newReporter(src sampler.Accessor) reporter {
	scaling := make([]bool, src.Units())
	for i := range scaling {
		scaling[i] = src.HasFrequencyScaling(i)
	}
	return reporter{scaling: scaling}
}

func (r reporter) build(snap model.Snapshot) report {
	out := report{
		Timestamp: snap.Timestamp,
		Tick:      snap.Tick,
		State:     snap.State.String(),
		Units:     make([]unitReport, len(snap.Units)),
	}
	for i, u := range snap.Units {
		out.Units[i] = unitReport{
			CPU:              i,
			Utilization:      u.Utilization,
			Frequency:        u.Frequency,
			FrequencyScaling: i < len(r.scaling) && r.scaling[i],
		}
	}
	return out
}

func runJSON(cmd *cobra.Command, args []string) error {
	ctx, stop := notifyContext(cmd.Context())
	defer stop()

	s, err := newSampler(ctx, logger.New(cfg))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	rep := newReporter(s)

	if !cfg.Stream {
		timer := time.NewTimer(s.Interval)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ignoreCanceled(ctx.Err())
		case <-timer.C:
		}
		s.Tick()
		return enc.Encode(rep.build(s.Snapshot()))
	}

	return runWithSampler(ctx, s, func(ctx context.Context) error {
		return streamJSON(ctx, s, rep, s.Interval/2, enc)
	})
}

// streamJSON polls src and writes each newly committed tick once.
func streamJSON(ctx context.Context, src sampler.Accessor, rep reporter, poll time.Duration, enc *json.Encoder) error {
	if poll <= 0 {
		poll = 100 * time.Millisecond
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	var last uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			snap := src.Snapshot()
			if snap.Tick == last {
				continue
			}
			last = snap.Tick
			if err := enc.Encode(rep.build(snap)); err != nil {
				return err
			}
		}
	}
}
