// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package slogfield

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJsonHandler(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{}))

	log.Info(
		"handled connection",
		ConnID("c0ffee"),
		TraceID("4bf92f3577b34da6a3ce929d0e0e4736"),
		SpanID("00f067aa0ba902b7"),
		RemoteAddr("127.0.0.1:50000"),
		Method("GET"),
		Target("/echo/abc"),
		StatusCode(200),
		BytesWritten(68),
		Duration("elapsed", time.Millisecond),
		Strings("encodings", []string{"gzip"}),
		Bool("encoded", true),
		Int("segments", 2),
		Int64("body_size", 3),
		Any("header", map[string]string{"host": "localhost"}),
		String("proto", "HTTP/1.1"),
		Error(errors.New("boom")),
	)

	var record struct {
		ConnID       string            `json:"conn_id"`
		TraceID      string            `json:"trace_id"`
		SpanID       string            `json:"span_id"`
		RemoteAddr   string            `json:"remote_addr"`
		Method       string            `json:"http_method"`
		Target       string            `json:"http_target"`
		StatusCode   int               `json:"http_status_code"`
		BytesWritten int64             `json:"bytes_written"`
		Elapsed      int64             `json:"elapsed"`
		Encodings    []string          `json:"encodings"`
		Encoded      bool              `json:"encoded"`
		Segments     int               `json:"segments"`
		BodySize     int64             `json:"body_size"`
		Header       map[string]string `json:"header"`
		Proto        string            `json:"proto"`
		Error        string            `json:"error"`
	}
	err := json.Unmarshal(buf.Bytes(), &record)
	if !assert.Nil(t, err) {
		return
	}

	assert.Equal(t, "c0ffee", record.ConnID)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", record.TraceID)
	assert.Equal(t, "00f067aa0ba902b7", record.SpanID)
	assert.Equal(t, "127.0.0.1:50000", record.RemoteAddr)
	assert.Equal(t, "GET", record.Method)
	assert.Equal(t, "/echo/abc", record.Target)
	assert.Equal(t, 200, record.StatusCode)
	assert.Equal(t, int64(68), record.BytesWritten)
	assert.Equal(t, int64(time.Millisecond), record.Elapsed)
	assert.Equal(t, []string{"gzip"}, record.Encodings)
	assert.True(t, record.Encoded)
	assert.Equal(t, 2, record.Segments)
	assert.Equal(t, int64(3), record.BodySize)
	assert.Equal(t, "localhost", record.Header["host"])
	assert.Equal(t, "HTTP/1.1", record.Proto)
	assert.Equal(t, "boom", record.Error)
}
