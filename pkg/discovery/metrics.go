package discovery

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName              = "autochecks.discovery"
	tracerName             = "autochecks.discovery"
	metricServicesTotal    = "discovery_services_total"
	metricPluginErrors     = "discovery_plugin_errors_total"
	metricDiscoverDuration = "discovery_host_duration_seconds"
)

var (
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	meterOnce sync.Once
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	servicesCounter metric.Int64Counter
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	pluginErrorCounter metric.Int64Counter
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	durationHistogram metric.Float64Histogram
)

func initMeter() {
	meter := otel.Meter(meterName)

	services, err := meter.Int64Counter(
		metricServicesTotal,
		metric.WithDescription("Services classified by discovery, per transition"),
	)
	if err != nil {
		otel.Handle(err)
	}
	servicesCounter = services

	pluginErrors, err := meter.Int64Counter(
		metricPluginErrors,
		metric.WithDescription("Discovery plugin failures"),
	)
	if err != nil {
		otel.Handle(err)
	}
	pluginErrorCounter = pluginErrors

	hist, err := meter.Float64Histogram(
		metricDiscoverDuration,
		metric.WithDescription("Duration of discover_on_host runs"),
		metric.WithUnit("s"),
	)
	if err != nil {
		otel.Handle(err)
	}
	durationHistogram = hist
}

func recordTransitions(ctx context.Context, counts map[string]int) {
	meterOnce.Do(initMeter)
	if servicesCounter == nil {
		return
	}

	for transition, n := range counts {
		if n == 0 {
			continue
		}

		servicesCounter.Add(ctx, int64(n), metric.WithAttributes(attribute.String("transition", transition)))
	}
}

func recordPluginError(ctx context.Context, plugin, policy string) {
	meterOnce.Do(initMeter)
	if pluginErrorCounter == nil {
		return
	}

	pluginErrorCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("plugin", plugin),
		attribute.String("on_error", policy),
	))
}

func recordDiscoverDuration(ctx context.Context, d time.Duration, mode string, failed bool) {
	meterOnce.Do(initMeter)
	if durationHistogram == nil {
		return
	}

	durationHistogram.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("mode", mode),
		attribute.Bool("failed", failed),
	))
}
