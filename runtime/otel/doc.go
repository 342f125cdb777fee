// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package otel wraps a [rawhttp.Runtime] with OpenTelemetry tracing and
// metrics providers.
//
// The providers are registered globally when the runtime starts and are
// shut down once the wrapped runtime returns. Instruments obtained from
// the otel globals earlier, e.g. while building the connection server,
// are delegated to them. Shutdown errors are joined with the runtime error.
//
//	resourceB := rawhttp.MemoizeBuilder(rawhttp.BuilderFunc[*resource.Resource](func(ctx context.Context) (*resource.Resource, error) {
//	    return resource.New(ctx, resource.WithAttributes(semconv.ServiceName("rawhttp")))
//	}))
//
//	runtimeB := otel.BuildRuntime(
//	    rawhttp.BuilderOf(propagation.TraceContext{}),
//	    otel.BuildTracerProvider(
//	        resourceB,
//	        otel.BuildTraceIDRatioBasedSampler(config.ReaderOf(1.0)),
//	        otel.BuildBatchSpanProcessor(stdout.BuildSpanExporter(rawhttp.BuilderOf(os.Stdout))),
//	    ),
//	    otel.BuildMeterProvider(
//	        resourceB,
//	        otel.BuildPeriodicReader(stdout.BuildMetricExporter(rawhttp.BuilderOf(os.Stdout))),
//	    ),
//	    serverRuntimeB,
//	)
//
// Exporters live in the subpackages: otel/stdout, otel/otlp and otel/noop.
package otel
