// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otel

import (
	"context"
	"errors"

	"github.com/z5labs/rawhttp"
	"github.com/z5labs/rawhttp/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// BuildTraceIDRatioBasedSampler samples the configured fraction of traces.
// A root span is sampled according to ratio and children follow their parent.
func BuildTraceIDRatioBasedSampler(ratio config.Reader[float64]) rawhttp.Builder[sdktrace.Sampler] {
	return rawhttp.BuilderFunc[sdktrace.Sampler](func(ctx context.Context) (sdktrace.Sampler, error) {
		sampler := sdktrace.ParentBased(
			sdktrace.TraceIDRatioBased(config.MustOr(ctx, 1.0, ratio)),
		)

		return sampler, nil
	})
}

func BuildBatchSpanProcessor[E sdktrace.SpanExporter](exporterBuilder rawhttp.Builder[E]) rawhttp.Builder[sdktrace.SpanProcessor] {
	return rawhttp.BuilderFunc[sdktrace.SpanProcessor](func(ctx context.Context) (sdktrace.SpanProcessor, error) {
		bsp := sdktrace.NewBatchSpanProcessor(
			rawhttp.MustBuild(ctx, exporterBuilder),
		)

		return bsp, nil
	})
}

func BuildTracerProvider[S sdktrace.Sampler, P sdktrace.SpanProcessor](
	resourceBuilder rawhttp.Builder[*resource.Resource],
	samplerBuilder rawhttp.Builder[S],
	spanProcessorBuilder rawhttp.Builder[P],
) rawhttp.Builder[*sdktrace.TracerProvider] {
	return rawhttp.BuilderFunc[*sdktrace.TracerProvider](func(ctx context.Context) (*sdktrace.TracerProvider, error) {
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithResource(rawhttp.MustBuild(ctx, resourceBuilder)),
			sdktrace.WithSampler(rawhttp.MustBuild(ctx, samplerBuilder)),
			sdktrace.WithSpanProcessor(rawhttp.MustBuild(ctx, spanProcessorBuilder)),
		)

		return tp, nil
	})
}

func BuildPeriodicReader[E sdkmetric.Exporter](exporterBuilder rawhttp.Builder[E]) rawhttp.Builder[*sdkmetric.PeriodicReader] {
	return rawhttp.BuilderFunc[*sdkmetric.PeriodicReader](func(ctx context.Context) (*sdkmetric.PeriodicReader, error) {
		pr := sdkmetric.NewPeriodicReader(
			rawhttp.MustBuild(ctx, exporterBuilder),
		)

		return pr, nil
	})
}

func BuildMeterProvider[R sdkmetric.Reader](
	resourceBuilder rawhttp.Builder[*resource.Resource],
	readerBuilder rawhttp.Builder[R],
) rawhttp.Builder[*sdkmetric.MeterProvider] {
	return rawhttp.BuilderFunc[*sdkmetric.MeterProvider](func(ctx context.Context) (*sdkmetric.MeterProvider, error) {
		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(rawhttp.MustBuild(ctx, resourceBuilder)),
			sdkmetric.WithReader(rawhttp.MustBuild(ctx, readerBuilder)),
		)

		return mp, nil
	})
}

// Runtime installs its providers as the OpenTelemetry globals for the
// duration of the wrapped runtime and shuts them down afterwards.
type Runtime[
	T trace.TracerProvider,
	M metric.MeterProvider,
	R rawhttp.Runtime,
] struct {
	textMapPropagator propagation.TextMapPropagator
	tracerProvider    T
	meterProvider     M
	runtime           R
}

func BuildRuntime[
	T trace.TracerProvider,
	M metric.MeterProvider,
	R rawhttp.Runtime,
](
	textMapPropagatorBuilder rawhttp.Builder[propagation.TextMapPropagator],
	tracerProviderBuilder rawhttp.Builder[T],
	meterProviderBuilder rawhttp.Builder[M],
	runtimeBuilder rawhttp.Builder[R],
) rawhttp.Builder[Runtime[T, M, R]] {
	return rawhttp.BuilderFunc[Runtime[T, M, R]](func(ctx context.Context) (Runtime[T, M, R], error) {
		textMapPropagator := rawhttp.MustBuild(ctx, textMapPropagatorBuilder)
		tracerProvider := rawhttp.MustBuild(ctx, tracerProviderBuilder)
		meterProvider := rawhttp.MustBuild(ctx, meterProviderBuilder)
		runtime := rawhttp.MustBuild(ctx, runtimeBuilder)

		return Runtime[T, M, R]{
			textMapPropagator: textMapPropagator,
			tracerProvider:    tracerProvider,
			meterProvider:     meterProvider,
			runtime:           runtime,
		}, nil
	})
}

type shutdownInterface interface {
	Shutdown(ctx context.Context) error
}

// Run implements the [rawhttp.Runtime] interface.
func (r Runtime[T, M, R]) Run(ctx context.Context) (err error) {
	shutdownFuncs := make([]func(context.Context) error, 2)

	otel.SetTextMapPropagator(r.textMapPropagator)

	otel.SetTracerProvider(r.tracerProvider)
	if sd, ok := any(r.tracerProvider).(shutdownInterface); ok {
		shutdownFuncs[0] = sd.Shutdown
	}

	otel.SetMeterProvider(r.meterProvider)
	if sd, ok := any(r.meterProvider).(shutdownInterface); ok {
		shutdownFuncs[1] = sd.Shutdown
	}

	defer func() {
		// ctx is usually cancelled by now but spans still need flushing
		shutdownCtx := context.WithoutCancel(ctx)

		shutdownErrs := make([]error, len(shutdownFuncs))
		for i, shutdown := range shutdownFuncs {
			if shutdown == nil {
				continue
			}
			shutdownErrs[i] = shutdown(shutdownCtx)
		}
		err = errors.Join(err, errors.Join(shutdownErrs...))
	}()

	return r.runtime.Run(ctx)
}
