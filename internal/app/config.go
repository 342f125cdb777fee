// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package app

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/z5labs/rawhttp/encoding"
	"github.com/z5labs/rawhttp/http1"
)

// Telemetry exporters.
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

// Config is the complete server configuration. It is resolved once at
// startup and never modified afterwards.
type Config struct {
	Addr          string          `config:"addr"`
	Directory     string          `config:"directory"`
	ReadTimeout   time.Duration   `config:"read_timeout"`
	WriteTimeout  time.Duration   `config:"write_timeout"`
	MaxBodySize   int64           `config:"max_body_size"`
	MaxHeaderSize int             `config:"max_header_size"`
	Encodings     []string        `config:"encodings"`
	LogLevel      string          `config:"log_level"`
	Telemetry     TelemetryConfig `config:"telemetry"`
}

// TelemetryConfig selects where spans and metrics are exported to.
type TelemetryConfig struct {
	Exporter     string  `config:"exporter"`
	ServiceName  string  `config:"service_name"`
	SampleRatio  float64 `config:"sample_ratio"`
	OTLPEndpoint string  `config:"otlp_endpoint"`
	OTLPInsecure bool    `config:"otlp_insecure"`
}

// DefaultConfig returns the configuration used for every setting
// which is not provided explicitly.
func DefaultConfig() Config {
	return Config{
		Addr:          "127.0.0.1:4221",
		MaxBodySize:   http1.DefaultMaxBodySize,
		MaxHeaderSize: http1.DefaultMaxHeaderSize,
		Encodings:     []string{"gzip"},
		LogLevel:      "info",
		Telemetry: TelemetryConfig{
			Exporter:    ExporterNone,
			ServiceName: "rawhttp",
			SampleRatio: 1,
		},
	}
}

// InvalidConfigError reports a single invalid setting.
type InvalidConfigError struct {
	Setting string
	Reason  string
}

// Error implements the [error] interface.
func (e InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Setting, e.Reason)
}

// Validate reports every invalid setting in c.
func (c Config) Validate() error {
	var errs []error

	if _, err := net.ResolveTCPAddr("tcp", c.Addr); err != nil {
		errs = append(errs, InvalidConfigError{Setting: "addr", Reason: err.Error()})
	}
	if c.ReadTimeout < 0 {
		errs = append(errs, InvalidConfigError{Setting: "read_timeout", Reason: "must not be negative"})
	}
	if c.WriteTimeout < 0 {
		errs = append(errs, InvalidConfigError{Setting: "write_timeout", Reason: "must not be negative"})
	}
	if c.MaxBodySize < 0 {
		errs = append(errs, InvalidConfigError{Setting: "max_body_size", Reason: "must not be negative"})
	}
	if c.MaxHeaderSize < 0 {
		errs = append(errs, InvalidConfigError{Setting: "max_header_size", Reason: "must not be negative"})
	}
	for _, name := range c.Encodings {
		if _, err := encoding.Lookup(name); err != nil {
			errs = append(errs, InvalidConfigError{Setting: "encodings", Reason: err.Error()})
		}
	}

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		errs = append(errs, InvalidConfigError{Setting: "log_level", Reason: err.Error()})
	}

	switch c.Telemetry.Exporter {
	case ExporterNone, ExporterStdout:
	case ExporterOTLP:
		if c.Telemetry.OTLPEndpoint == "" {
			errs = append(errs, InvalidConfigError{Setting: "telemetry.otlp_endpoint", Reason: "required by the otlp exporter"})
		}
	default:
		errs = append(errs, InvalidConfigError{
			Setting: "telemetry.exporter",
			Reason:  fmt.Sprintf("unknown exporter %q", c.Telemetry.Exporter),
		})
	}
	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		errs = append(errs, InvalidConfigError{Setting: "telemetry.sample_ratio", Reason: "must be within [0, 1]"})
	}

	return errors.Join(errs...)
}
