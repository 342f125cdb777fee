// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package slogfield provides the slog attributes rawhttp logs with so
// the same things are always logged under the same keys.
package slogfield

import (
	"log/slog"
	"time"
)

// Any returns an slog.Attr for the supplied value.
func Any(key string, value any) slog.Attr {
	return slog.Any(key, value)
}

// Bool returns an slog.Attr for a bool.
func Bool(key string, value bool) slog.Attr {
	return slog.Bool(key, value)
}

// Duration returns an slog.Attr for a time.Duration.
func Duration(key string, d time.Duration) slog.Attr {
	return slog.Duration(key, d)
}

// Error returns an slog.Attr for a error.
func Error(err error) slog.Attr {
	return slog.Any("error", err)
}

// String returns an slog.Attr for a string.
func String(key, value string) slog.Attr {
	return slog.String(key, value)
}

// Strings returns an slog.Attr for a slice of strings.
func Strings(key string, values []string) slog.Attr {
	return slog.Any(key, values)
}

// Int returns an slog.Attr for a int.
func Int(key string, n int) slog.Attr {
	return slog.Int(key, n)
}

// Int64 returns an slog.Attr for a int64.
func Int64(key string, n int64) slog.Attr {
	return slog.Int64(key, n)
}

// ConnID identifies the connection a record was logged for.
func ConnID(id string) slog.Attr {
	return slog.String("conn_id", id)
}

// TraceID is the id of the trace a record was logged within.
func TraceID(id string) slog.Attr {
	return slog.String("trace_id", id)
}

// SpanID is the id of the span a record was logged within.
func SpanID(id string) slog.Attr {
	return slog.String("span_id", id)
}

// RemoteAddr is the peer address of a connection.
func RemoteAddr(addr string) slog.Attr {
	return slog.String("remote_addr", addr)
}

// Method is the request method.
func Method(method string) slog.Attr {
	return slog.String("http_method", method)
}

// Target is the raw request target.
func Target(target string) slog.Attr {
	return slog.String("http_target", target)
}

// StatusCode is the response status code.
func StatusCode(code int) slog.Attr {
	return slog.Int("http_status_code", code)
}

// BytesWritten is the total size of the serialized response.
func BytesWritten(n int64) slog.Attr {
	return slog.Int64("bytes_written", n)
}
