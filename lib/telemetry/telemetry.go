package telemetry

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/trace"
)

var tracerProvider *trace.TracerProvider
var meterProvider *metric.MeterProvider

// Setup installs otel trace/metric providers exporting to the endpoints
// named in the config. endpoints left empty are skipped, which leaves the
// corresponding provider exporting nowhere (useful for tests and dev).
func Setup(ctx context.Context, serviceName string, config Config) error {
	r, err := newResource(serviceName)
	if err != nil {
		return err
	}

	tp, err := newTraceProvider(ctx, r, config)
	if err != nil {
		return err
	}
	tracerProvider = tp
	otel.SetTracerProvider(tp)

	mp, err := newMetricProvider(ctx, r, config)
	if err != nil {
		return err
	}
	meterProvider = mp
	otel.SetMeterProvider(mp)

	return nil
}

func Shutdown(ctx context.Context) error {
	var errlist []error
	if tracerProvider != nil {
		err := tracerProvider.Shutdown(ctx)
		if err != nil {
			errlist = append(errlist, err)
		}
	}
	if meterProvider != nil {
		err := meterProvider.Shutdown(ctx)
		if err != nil {
			errlist = append(errlist, err)
		}
	}
	return errors.Join(errlist...)
}
