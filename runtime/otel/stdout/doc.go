// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package stdout provides builders for OpenTelemetry exporters that write
// spans and metrics to an io.Writer. They back the "stdout" telemetry
// exporter setting and are meant for local debugging.
package stdout
