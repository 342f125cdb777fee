// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otlp

import (
	"context"
	"net/http"

	"github.com/z5labs/rawhttp"
	"github.com/z5labs/rawhttp/config"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
)

// BuildHttpSpanExporter returns a Builder that creates an OTLP span exporter using
// HTTP transport. The exporter sends trace data to the specified endpoint using
// the provided HTTP client.
func BuildHttpSpanExporter(
	endpoint config.Reader[string],
	insecure config.Reader[bool],
	httpClientB rawhttp.Builder[*http.Client],
) rawhttp.BuilderFunc[*otlptrace.Exporter] {
	return func(ctx context.Context) (*otlptrace.Exporter, error) {
		opts := []otlptracehttp.Option{
			otlptracehttp.WithEndpoint(config.Must(ctx, endpoint)),
			otlptracehttp.WithHTTPClient(rawhttp.MustBuild(ctx, httpClientB)),
		}
		if config.MustOr(ctx, false, insecure) {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)
	}
}

// BuildHttpMetricExporter returns a Builder that creates an OTLP metric exporter using
// HTTP transport. The exporter sends metric data to the specified endpoint using
// the provided HTTP client.
func BuildHttpMetricExporter(
	endpoint config.Reader[string],
	insecure config.Reader[bool],
	httpClientB rawhttp.Builder[*http.Client],
) rawhttp.BuilderFunc[*otlpmetrichttp.Exporter] {
	return func(ctx context.Context) (*otlpmetrichttp.Exporter, error) {
		opts := []otlpmetrichttp.Option{
			otlpmetrichttp.WithEndpoint(config.Must(ctx, endpoint)),
			otlpmetrichttp.WithHTTPClient(rawhttp.MustBuild(ctx, httpClientB)),
		}
		if config.MustOr(ctx, false, insecure) {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		return otlpmetrichttp.New(ctx, opts...)
	}
}
