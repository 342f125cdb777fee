// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package stdout

import (
	"context"
	"io"

	"github.com/z5labs/rawhttp"

	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/metric"
)

// BuildSpanExporter returns a Builder that creates a span exporter which writes
// trace data to the provided io.Writer in a human-readable format.
func BuildSpanExporter[W io.Writer](writerB rawhttp.Builder[W]) rawhttp.BuilderFunc[*stdouttrace.Exporter] {
	return func(ctx context.Context) (*stdouttrace.Exporter, error) {
		return stdouttrace.New(
			stdouttrace.WithWriter(rawhttp.MustBuild(ctx, writerB)),
			stdouttrace.WithPrettyPrint(),
		)
	}
}

// BuildMetricExporter returns a Builder that creates a metric exporter which writes
// metric data to the provided io.Writer in a human-readable format.
func BuildMetricExporter[W io.Writer](writerB rawhttp.Builder[W]) rawhttp.BuilderFunc[metric.Exporter] {
	return func(ctx context.Context) (metric.Exporter, error) {
		return stdoutmetric.New(
			stdoutmetric.WithWriter(rawhttp.MustBuild(ctx, writerB)),
		)
	}
}
