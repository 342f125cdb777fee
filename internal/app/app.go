// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package app assembles the rawhttp server from its [Config].
package app

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/z5labs/rawhttp"
	"github.com/z5labs/rawhttp/config"
	"github.com/z5labs/rawhttp/encoding"
	"github.com/z5labs/rawhttp/pkg/otelslog"
	"github.com/z5labs/rawhttp/route"
	"github.com/z5labs/rawhttp/runtime/otel"
	"github.com/z5labs/rawhttp/runtime/otel/noop"
	"github.com/z5labs/rawhttp/runtime/otel/otlp"
	"github.com/z5labs/rawhttp/runtime/otel/stdout"
	"github.com/z5labs/rawhttp/server"

	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// NewLogger returns a JSON logger writing to w which correlates records
// with the active span.
func NewLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}

	return otelslog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		AddSource: true,
		Level:     lvl,
	}))
}

// Build returns a [rawhttp.Builder] for the complete server runtime:
// the connection server wrapped with OpenTelemetry providers.
// Files are served from fs.
func Build(cfg Config, fs afero.Fs, log *slog.Logger) rawhttp.Builder[rawhttp.Runtime] {
	return BuildWithListener(cfg, server.BuildTCPListener(resolveAddr(cfg.Addr)), fs, log)
}

// BuildWithListener is like [Build] but accepts connections from the
// built listener instead of listening on cfg.Addr.
func BuildWithListener[L net.Listener](
	cfg Config,
	listener rawhttp.Builder[L],
	fs afero.Fs,
	log *slog.Logger,
) rawhttp.Builder[rawhttp.Runtime] {
	serverB := server.Build(
		listener,
		buildRouter(cfg, fs),
		server.Logger(log),
		server.ReadTimeout(config.ReaderOf(cfg.ReadTimeout)),
		server.WriteTimeout(config.ReaderOf(cfg.WriteTimeout)),
		server.MaxBodySize(config.ReaderOf(cfg.MaxBodySize)),
		server.MaxHeaderSize(config.ReaderOf(cfg.MaxHeaderSize)),
	)

	resourceB := rawhttp.MemoizeBuilder(rawhttp.BuilderFunc[*resource.Resource](func(ctx context.Context) (*resource.Resource, error) {
		return resource.Merge(
			resource.Default(),
			resource.NewWithAttributes(
				semconv.SchemaURL,
				semconv.ServiceName(cfg.Telemetry.ServiceName),
			),
		)
	}))

	tracerProviderB := otel.BuildTracerProvider(
		resourceB,
		otel.BuildTraceIDRatioBasedSampler(config.ReaderOf(cfg.Telemetry.SampleRatio)),
		otel.BuildBatchSpanProcessor(spanExporter(cfg.Telemetry)),
	)

	meterProviderB := otel.BuildMeterProvider(
		resourceB,
		otel.BuildPeriodicReader(metricExporter(cfg.Telemetry)),
	)

	runtimeB := otel.BuildRuntime(
		rawhttp.BuilderOf(propagation.NewCompositeTextMapPropagator(
			propagation.Baggage{},
			propagation.TraceContext{},
		)),
		tracerProviderB,
		meterProviderB,
		serverB,
	)

	return rawhttp.Map(runtimeB, func(ctx context.Context, rt otel.Runtime[*sdktrace.TracerProvider, *sdkmetric.MeterProvider, server.Runtime]) (rawhttp.Runtime, error) {
		log.InfoContext(ctx, "starting server", slog.String("addr", cfg.Addr), slog.String("directory", cfg.Directory))
		return rt, nil
	})
}

func resolveAddr(addr string) config.Reader[*net.TCPAddr] {
	return config.Map(config.ReaderOf(addr), func(ctx context.Context, s string) (*net.TCPAddr, error) {
		return net.ResolveTCPAddr("tcp", s)
	})
}

func buildRouter(cfg Config, fs afero.Fs) rawhttp.Builder[route.Handler] {
	return rawhttp.BuilderFunc[route.Handler](func(ctx context.Context) (route.Handler, error) {
		encoders := make([]encoding.Encoder, 0, len(cfg.Encodings))
		for _, name := range cfg.Encodings {
			e, err := encoding.Lookup(name)
			if err != nil {
				return nil, err
			}
			encoders = append(encoders, e)
		}

		return route.NewDefault(fs, cfg.Directory, encoding.NewRegistry(encoders...)), nil
	})
}

func as[I, E any](b rawhttp.Builder[E]) rawhttp.Builder[I] {
	return rawhttp.Map(b, func(ctx context.Context, e E) (I, error) {
		return any(e).(I), nil
	})
}

func otlpClient() rawhttp.Builder[*http.Client] {
	return rawhttp.BuilderOf(&http.Client{
		Timeout: 10 * time.Second,
	})
}

func spanExporter(cfg TelemetryConfig) rawhttp.Builder[sdktrace.SpanExporter] {
	switch cfg.Exporter {
	case ExporterStdout:
		return as[sdktrace.SpanExporter, *stdouttrace.Exporter](stdout.BuildSpanExporter(rawhttp.BuilderOf(os.Stdout)))
	case ExporterOTLP:
		return as[sdktrace.SpanExporter, *otlptrace.Exporter](otlp.BuildHttpSpanExporter(
			config.ReaderOf(cfg.OTLPEndpoint),
			config.ReaderOf(cfg.OTLPInsecure),
			otlpClient(),
		))
	default:
		return as[sdktrace.SpanExporter, *noop.SpanExporter](noop.BuildSpanExporter())
	}
}

func metricExporter(cfg TelemetryConfig) rawhttp.Builder[sdkmetric.Exporter] {
	switch cfg.Exporter {
	case ExporterStdout:
		return stdout.BuildMetricExporter(rawhttp.BuilderOf(os.Stdout))
	case ExporterOTLP:
		return as[sdkmetric.Exporter, *otlpmetrichttp.Exporter](otlp.BuildHttpMetricExporter(
			config.ReaderOf(cfg.OTLPEndpoint),
			config.ReaderOf(cfg.OTLPInsecure),
			otlpClient(),
		))
	default:
		return as[sdkmetric.Exporter, *noop.MetricExporter](noop.BuildMetricExporter())
	}
}
