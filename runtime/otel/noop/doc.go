// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package noop provides OpenTelemetry exporters which discard everything.
// They back the "none" telemetry exporter setting so the server is always
// instrumented the same way regardless of where telemetry ends up.
package noop
