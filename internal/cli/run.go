package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/Dicklesworthstone/cpumon/internal/sampler"
)

func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// runWithSampler runs the sampling loop beside consumer. Whichever returns
// first stops the other.
func runWithSampler(ctx context.Context, s *sampler.Sampler, consumer func(context.Context) error) error {
	g, gCtx := errgroup.WithContext(ctx)
	runCtx, cancel := context.WithCancel(gCtx)
	defer cancel()

	g.Go(func() error {
		return s.Run(runCtx)
	})

	g.Go(func() error {
		defer cancel()
		return consumer(runCtx)
	})

	return ignoreCanceled(g.Wait())
}
