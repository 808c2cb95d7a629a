package daemon

import (
	"context"

	"go.opentelemetry.io/otel/metric"
)

// otelStats mirrors the in-process statsRing as an OpenTelemetry histogram,
// supplementing (not replacing) stats_mean's in-process FIFO so the same
// numbers are visible to an external collector.
type otelStats struct {
	tickDuration metric.Float64Histogram
	idleDuration metric.Float64Histogram
}

func newOtelStats(meter metric.Meter) (*otelStats, error) {
	if meter == nil {
		return nil, nil
	}
	tick, err := meter.Float64Histogram("daemon.tick.duration",
		metric.WithDescription("wall-clock duration of one daemon tick"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}
	idle, err := meter.Float64Histogram("daemon.tick.idle",
		metric.WithDescription("residual sleep time within one daemon tick"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}
	return &otelStats{tickDuration: tick, idleDuration: idle}, nil
}

func (s *otelStats) record(ctx context.Context, stat tickStat) {
	if s == nil {
		return
	}
	s.tickDuration.Record(ctx, float64(stat.Duration.Milliseconds()))
	s.idleDuration.Record(ctx, float64(stat.Idle.Milliseconds()))
}

// Option configures optional Daemon behavior at construction time.
type Option func(*Daemon)

// WithMeter wires an OpenTelemetry Meter so tick timing is exported as
// histograms alongside the required in-process stats FIFO. Passing a nil
// meter (the default) disables OTel export entirely.
func WithMeter(meter metric.Meter) Option {
	return func(d *Daemon) {
		stats, err := newOtelStats(meter)
		if err != nil {
			d.logger.Error("daemon: failed to initialize otel instruments", "error", err)
			return
		}
		d.otel = stats
	}
}
