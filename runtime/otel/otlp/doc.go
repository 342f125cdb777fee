// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package otlp provides builders for OpenTelemetry Protocol exporters
// sending spans and metrics to a collector over HTTP.
package otlp
