// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package noop

import (
	"context"
	"sync/atomic"

	"github.com/z5labs/rawhttp"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// SpanExporter drops every span, only counting them.
type SpanExporter struct {
	dropped atomic.Int64
}

// BuildSpanExporter returns a builder for a fresh [SpanExporter].
func BuildSpanExporter() rawhttp.BuilderFunc[*SpanExporter] {
	return func(ctx context.Context) (*SpanExporter, error) {
		return &SpanExporter{}, nil
	}
}

// Dropped reports how many spans have been discarded.
func (e *SpanExporter) Dropped() int64 {
	return e.dropped.Load()
}

// ExportSpans implements the [sdktrace.SpanExporter] interface.
func (e *SpanExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	e.dropped.Add(int64(len(spans)))
	return nil
}

// Shutdown implements the [sdktrace.SpanExporter] interface.
func (e *SpanExporter) Shutdown(ctx context.Context) error {
	return nil
}

// MetricExporter drops every collection, only counting them.
type MetricExporter struct {
	dropped atomic.Int64
}

// BuildMetricExporter returns a builder for a fresh [MetricExporter].
func BuildMetricExporter() rawhttp.BuilderFunc[*MetricExporter] {
	return func(ctx context.Context) (*MetricExporter, error) {
		return &MetricExporter{}, nil
	}
}

// Dropped reports how many collections have been discarded.
func (e *MetricExporter) Dropped() int64 {
	return e.dropped.Load()
}

// Temporality implements the [sdkmetric.Exporter] interface.
func (e *MetricExporter) Temporality(kind sdkmetric.InstrumentKind) metricdata.Temporality {
	return sdkmetric.DefaultTemporalitySelector(kind)
}

// Aggregation implements the [sdkmetric.Exporter] interface.
func (e *MetricExporter) Aggregation(kind sdkmetric.InstrumentKind) sdkmetric.Aggregation {
	return sdkmetric.DefaultAggregationSelector(kind)
}

// Export implements the [sdkmetric.Exporter] interface.
func (e *MetricExporter) Export(ctx context.Context, rm *metricdata.ResourceMetrics) error {
	e.dropped.Add(1)
	return nil
}

// ForceFlush implements the [sdkmetric.Exporter] interface.
func (e *MetricExporter) ForceFlush(ctx context.Context) error {
	return nil
}

// Shutdown implements the [sdkmetric.Exporter] interface.
func (e *MetricExporter) Shutdown(ctx context.Context) error {
	return nil
}
