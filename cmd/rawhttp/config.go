// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/z5labs/rawhttp/config"
	"github.com/z5labs/rawhttp/config/configtmpl"
	"github.com/z5labs/rawhttp/internal/app"
	"github.com/z5labs/rawhttp/internal/try"

	"github.com/spf13/pflag"
)

const envPrefix = "RAWHTTP_"

type flags struct {
	configPath   string
	directory    string
	addr         string
	readTimeout  time.Duration
	writeTimeout time.Duration
	maxBodySize  int64
	maxHeader    int
	encodings    []string
	logLevel     string
	exporter     string
	serviceName  string
	sampleRatio  float64
	otlpEndpoint string
	otlpInsecure bool
}

func (f *flags) register(fs *pflag.FlagSet) {
	def := app.DefaultConfig()

	fs.StringVar(&f.configPath, "config", "", "YAML config file, rendered as a text/template before parsing")
	fs.StringVar(&f.directory, "directory", def.Directory, "directory files are read from and written to")
	fs.StringVar(&f.addr, "addr", def.Addr, "TCP address to listen on")
	fs.DurationVar(&f.readTimeout, "read-timeout", def.ReadTimeout, "read deadline for each connection, 0 disables it")
	fs.DurationVar(&f.writeTimeout, "write-timeout", def.WriteTimeout, "write deadline for each connection, 0 disables it")
	fs.Int64Var(&f.maxBodySize, "max-body-size", def.MaxBodySize, "largest accepted request body in bytes, 0 disables the limit")
	fs.IntVar(&f.maxHeader, "max-header-size", def.MaxHeaderSize, "largest accepted request line and header section in bytes, 0 disables the limit")
	fs.StringSliceVar(&f.encodings, "encoding", def.Encodings, "content codings offered by /echo, in preference order")
	fs.StringVar(&f.logLevel, "log-level", def.LogLevel, "minimum log level")
	fs.StringVar(&f.exporter, "telemetry-exporter", def.Telemetry.Exporter, "telemetry exporter: none, stdout or otlp")
	fs.StringVar(&f.serviceName, "telemetry-service-name", def.Telemetry.ServiceName, "service name reported with telemetry")
	fs.Float64Var(&f.sampleRatio, "telemetry-sample-ratio", def.Telemetry.SampleRatio, "fraction of traces sampled")
	fs.StringVar(&f.otlpEndpoint, "otlp-endpoint", def.Telemetry.OTLPEndpoint, "OTLP HTTP collector endpoint")
	fs.BoolVar(&f.otlpInsecure, "otlp-insecure", def.Telemetry.OTLPInsecure, "disable TLS for the OTLP exporter")
}

// fileConfig mirrors [app.Config] with every setting optional.
type fileConfig struct {
	Addr         *string        `config:"addr"`
	Directory    *string        `config:"directory"`
	ReadTimeout  *time.Duration `config:"read_timeout"`
	WriteTimeout *time.Duration `config:"write_timeout"`
	MaxBodySize  *int64         `config:"max_body_size"`
	MaxHeader    *int           `config:"max_header_size"`
	Encodings    *[]string      `config:"encodings"`
	LogLevel     *string        `config:"log_level"`
	Telemetry    struct {
		Exporter     *string  `config:"exporter"`
		ServiceName  *string  `config:"service_name"`
		SampleRatio  *float64 `config:"sample_ratio"`
		OTLPEndpoint *string  `config:"otlp_endpoint"`
		OTLPInsecure *bool    `config:"otlp_insecure"`
	} `config:"telemetry"`
}

// ConfigFileNotFoundError is returned when an explicitly requested
// config file does not exist.
type ConfigFileNotFoundError struct {
	Path string
}

// Error implements the [error] interface.
func (e ConfigFileNotFoundError) Error() string {
	return fmt.Sprintf("config file not found: %s", e.Path)
}

func flagReader[T any](fs *pflag.FlagSet, name string, v *T) config.Reader[T] {
	return config.ReaderFunc[T](func(ctx context.Context) (config.Value[T], error) {
		if !fs.Changed(name) {
			return config.Value[T]{}, nil
		}
		return config.ValueOf(*v), nil
	})
}

func optional[T any](v *T) config.Reader[T] {
	return config.ReaderFunc[T](func(ctx context.Context) (config.Value[T], error) {
		if v == nil {
			return config.Value[T]{}, nil
		}
		return config.ValueOf(*v), nil
	})
}

func env(name string) config.Reader[string] {
	return config.Env(envPrefix + name)
}

func splitList(ctx context.Context, s string) ([]string, error) {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out, nil
}

func readFileConfig(ctx context.Context, path string) (fileConfig, error) {
	if path == "" {
		return fileConfig{}, nil
	}

	src := config.Map(config.ReadFile(path), func(ctx context.Context, f *os.File) (io.Reader, error) {
		return config.RenderTextTemplate(f, config.TemplateFuncs(configtmpl.Funcs())), nil
	})

	cfg, err := config.Read(ctx, config.Yaml[fileConfig](src))
	if errors.Is(err, config.ErrValueNotSet) {
		return fileConfig{}, ConfigFileNotFoundError{Path: path}
	}
	return cfg, err
}

// resolveConfig layers every setting as flag, then environment variable,
// then config file, then default.
func resolveConfig(ctx context.Context, fs *pflag.FlagSet, f *flags) (cfg app.Config, err error) {
	defer try.Recover(&err)

	path := config.MustOr(ctx, "", config.Or(
		flagReader(fs, "config", &f.configPath),
		env("CONFIG"),
	))

	file, err := readFileConfig(ctx, path)
	if err != nil {
		return cfg, err
	}

	def := app.DefaultConfig()

	cfg.Addr = config.MustOr(ctx, def.Addr, config.Or(
		flagReader(fs, "addr", &f.addr),
		env("ADDR"),
		optional(file.Addr),
	))
	cfg.Directory = config.MustOr(ctx, def.Directory, config.Or(
		flagReader(fs, "directory", &f.directory),
		env("DIRECTORY"),
		optional(file.Directory),
	))
	cfg.ReadTimeout = config.MustOr(ctx, def.ReadTimeout, config.Or(
		flagReader(fs, "read-timeout", &f.readTimeout),
		config.DurationFromString(env("READ_TIMEOUT")),
		optional(file.ReadTimeout),
	))
	cfg.WriteTimeout = config.MustOr(ctx, def.WriteTimeout, config.Or(
		flagReader(fs, "write-timeout", &f.writeTimeout),
		config.DurationFromString(env("WRITE_TIMEOUT")),
		optional(file.WriteTimeout),
	))
	cfg.MaxBodySize = config.MustOr(ctx, def.MaxBodySize, config.Or(
		flagReader(fs, "max-body-size", &f.maxBodySize),
		config.Int64FromString(env("MAX_BODY_SIZE")),
		optional(file.MaxBodySize),
	))
	cfg.MaxHeaderSize = config.MustOr(ctx, def.MaxHeaderSize, config.Or(
		flagReader(fs, "max-header-size", &f.maxHeader),
		config.IntFromString(env("MAX_HEADER_SIZE")),
		optional(file.MaxHeader),
	))
	cfg.Encodings = config.MustOr(ctx, def.Encodings, config.Or(
		flagReader(fs, "encoding", &f.encodings),
		config.Map(env("ENCODINGS"), splitList),
		optional(file.Encodings),
	))
	cfg.LogLevel = config.MustOr(ctx, def.LogLevel, config.Or(
		flagReader(fs, "log-level", &f.logLevel),
		env("LOG_LEVEL"),
		optional(file.LogLevel),
	))

	tel := file.Telemetry
	cfg.Telemetry.Exporter = config.MustOr(ctx, def.Telemetry.Exporter, config.Or(
		flagReader(fs, "telemetry-exporter", &f.exporter),
		env("TELEMETRY_EXPORTER"),
		optional(tel.Exporter),
	))
	cfg.Telemetry.ServiceName = config.MustOr(ctx, def.Telemetry.ServiceName, config.Or(
		flagReader(fs, "telemetry-service-name", &f.serviceName),
		env("TELEMETRY_SERVICE_NAME"),
		optional(tel.ServiceName),
	))
	cfg.Telemetry.SampleRatio = config.MustOr(ctx, def.Telemetry.SampleRatio, config.Or(
		flagReader(fs, "telemetry-sample-ratio", &f.sampleRatio),
		config.Float64FromString(env("TELEMETRY_SAMPLE_RATIO")),
		optional(tel.SampleRatio),
	))
	cfg.Telemetry.OTLPEndpoint = config.MustOr(ctx, def.Telemetry.OTLPEndpoint, config.Or(
		flagReader(fs, "otlp-endpoint", &f.otlpEndpoint),
		env("OTLP_ENDPOINT"),
		optional(tel.OTLPEndpoint),
	))
	cfg.Telemetry.OTLPInsecure = config.MustOr(ctx, def.Telemetry.OTLPInsecure, config.Or(
		flagReader(fs, "otlp-insecure", &f.otlpInsecure),
		config.BoolFromString(env("OTLP_INSECURE")),
		optional(tel.OTLPInsecure),
	))

	return cfg, nil
}
