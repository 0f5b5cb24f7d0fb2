package rediscovery

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName         = "autochecks.rediscovery"
	tracerName        = "autochecks.rediscovery"
	metricHostsTotal  = "rediscovery_hosts_total"
	metricActivations = "rediscovery_activations_total"
)

var (
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	meterOnce sync.Once
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	hostsCounter metric.Int64Counter
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	activationCounter metric.Int64Counter
)

func initMeter() {
	meter := otel.Meter(meterName)

	hosts, err := meter.Int64Counter(
		metricHostsTotal,
		metric.WithDescription("Flagged hosts handled by rediscovery sweeps, per outcome"),
	)
	if err != nil {
		otel.Handle(err)
	}
	hostsCounter = hosts

	activations, err := meter.Int64Counter(
		metricActivations,
		metric.WithDescription("Core activations requested by rediscovery sweeps"),
	)
	if err != nil {
		otel.Handle(err)
	}
	activationCounter = activations
}

func recordOutcome(ctx context.Context, outcome Outcome) {
	meterOnce.Do(initMeter)
	if hostsCounter == nil {
		return
	}

	hostsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", string(outcome))))
}

func recordActivation(ctx context.Context) {
	meterOnce.Do(initMeter)
	if activationCounter == nil {
		return
	}

	activationCounter.Add(ctx, 1)
}
