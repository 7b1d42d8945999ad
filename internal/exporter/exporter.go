// Package exporter publishes the sampler's latest snapshot as Prometheus
// metrics.
package exporter

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Dicklesworthstone/cpumon/internal/logger"
	"github.com/Dicklesworthstone/cpumon/internal/sampler"
)

const namespace = "cpumon"

// Collector reads the accessor on every scrape; it never samples itself.
type Collector struct {
	src     sampler.Accessor
	scaling []bool

	utilization *prometheus.Desc
	frequency   *prometheus.Desc
	hasScaling  *prometheus.Desc
	ticks       *prometheus.Desc
}

func NewCollector(src sampler.Accessor) *Collector {
	scaling := make([]bool, src.Units())
	for i := range scaling {
		scaling[i] = src.HasFrequencyScaling(i)
	}

	return &Collector{
		src:     src,
		scaling: scaling,
		utilization: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "cpu", "utilization_percent"),
			"Busy share of the last sampling interval per processing unit.",
			[]string{"cpu"}, nil,
		),
		frequency: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "cpu", "frequency_percent"),
			"Current clock as a percentage of the scaling maximum.",
			[]string{"cpu"}, nil,
		),
		hasScaling: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "cpu", "frequency_scaling"),
			"1 when the processing unit exposes cpufreq files.",
			[]string{"cpu"}, nil,
		),
		ticks: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "sampler", "ticks_total"),
			"Steady-state ticks committed since start.",
			nil, nil,
		),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.utilization
	ch <- c.frequency
	ch <- c.hasScaling
	ch <- c.ticks
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.src.Snapshot()

	for i, u := range snap.Units {
		label := strconv.Itoa(i)
		ch <- prometheus.MustNewConstMetric(c.utilization, prometheus.GaugeValue, u.Utilization, label)
		ch <- prometheus.MustNewConstMetric(c.frequency, prometheus.GaugeValue, u.Frequency, label)

		var scaling float64
		if i < len(c.scaling) && c.scaling[i] {
			scaling = 1
		}
		ch <- prometheus.MustNewConstMetric(c.hasScaling, prometheus.GaugeValue, scaling, label)
	}

	ch <- prometheus.MustNewConstMetric(c.ticks, prometheus.CounterValue, float64(snap.Tick))
}

// Handler serves src on a private registry.
func Handler(src sampler.Accessor) http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(NewCollector(src))
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// Serve listens on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, src sampler.Accessor, log logger.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(src))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("exporter listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Info("exporter stopping")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	}
}
