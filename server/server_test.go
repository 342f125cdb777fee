// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/z5labs/rawhttp/config"
	"github.com/z5labs/rawhttp/encoding"
	"github.com/z5labs/rawhttp/http1"
	"github.com/z5labs/rawhttp/internal/try"
	"github.com/z5labs/rawhttp/route"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestServer(t *testing.T, h route.Handler, opts ...Option) *Server {
	t.Helper()

	srv, err := NewServer(context.Background(), h, opts...)
	require.NoError(t, err)
	return srv
}

func defaultHandler(fs afero.Fs) route.Handler {
	return route.NewDefault(fs, "/srv/", encoding.NewRegistry(encoding.Gzip()))
}

// serveOnce writes raw to one end of a pipe served by srv and returns
// everything written back before the server closed its end.
func serveOnce(t *testing.T, srv *Server, raw string) (string, error) {
	t.Helper()

	client, conn := net.Pipe()
	defer client.Close()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ServeConn(context.Background(), conn)
	}()
	go func() {
		// The server may close before consuming everything.
		_, _ = io.WriteString(client, raw)
	}()

	b, err := io.ReadAll(client)
	require.NoError(t, err)

	select {
	case err := <-errCh:
		return string(b), err
	case <-time.After(5 * time.Second):
		t.Fatal("ServeConn did not return")
		return "", nil
	}
}

func TestServer_ServeConn(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/srv/foo", []byte("bar"), 0o644))

	srv := newTestServer(t, defaultHandler(fs))

	testCases := []struct {
		name     string
		raw      string
		expected string
	}{
		{
			name:     "root",
			raw:      "GET / HTTP/1.1\r\nHost: localhost:4221\r\n\r\n",
			expected: "HTTP/1.1 200 OK\r\n\r\n",
		},
		{
			name:     "unknown path",
			raw:      "GET /foo/bar/baz HTTP/1.1\r\n\r\n",
			expected: "HTTP/1.1 404 Not Found\r\n\r\n",
		},
		{
			name:     "echo",
			raw:      "GET /echo/abc HTTP/1.1\r\n\r\n",
			expected: "HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nContent-Length: 3\r\n\r\nabc",
		},
		{
			name:     "user agent",
			raw:      "GET /user-agent HTTP/1.1\r\nUser-Agent: curl/7.64\r\n\r\n",
			expected: "HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nContent-Length: 9\r\n\r\ncurl/7.64",
		},
		{
			name:     "missing user agent",
			raw:      "GET /user-agent HTTP/1.1\r\n\r\n",
			expected: "HTTP/1.1 400 Bad Request\r\n\r\n",
		},
		{
			name:     "read file",
			raw:      "GET /files/foo HTTP/1.1\r\n\r\n",
			expected: "HTTP/1.1 200 OK\r\nContent-Type: application/octet-stream\r\nContent-Length: 3\r\n\r\nbar",
		},
		{
			name:     "missing file",
			raw:      "GET /files/non_existent_file HTTP/1.1\r\n\r\n",
			expected: "HTTP/1.1 404 Not Found\r\n\r\n",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := serveOnce(t, srv, tc.raw)
			require.NoError(t, err)
			require.Equal(t, tc.expected, resp)
		})
	}
}

func TestServer_ServeConn_Errors(t *testing.T) {
	t.Run("will return a ReadRequestError", func(t *testing.T) {
		t.Run("if the request line is malformed", func(t *testing.T) {
			srv := newTestServer(t, defaultHandler(afero.NewMemMapFs()))

			resp, err := serveOnce(t, srv, "GET\r\n\r\n")

			var rerr ReadRequestError
			if !assert.ErrorAs(t, err, &rerr) {
				return
			}
			var lerr http1.MalformedRequestLineError
			assert.ErrorAs(t, err, &lerr)
			assert.Empty(t, resp)
		})

		t.Run("if the body exceeds the maximum size", func(t *testing.T) {
			srv := newTestServer(
				t,
				defaultHandler(afero.NewMemMapFs()),
				MaxBodySize(config.ReaderOf[int64](4)),
			)

			_, err := serveOnce(t, srv, "POST /files/a HTTP/1.1\r\nContent-Length: 5\r\n\r\nhello")
			assert.ErrorIs(t, err, http1.ErrBodyTooLarge)
		})

		t.Run("if the header section exceeds the maximum size", func(t *testing.T) {
			srv := newTestServer(
				t,
				defaultHandler(afero.NewMemMapFs()),
				MaxHeaderSize(config.ReaderOf(24)),
			)

			resp, err := serveOnce(t, srv, "GET /user-agent HTTP/1.1\r\nUser-Agent: "+strings.Repeat("u", 64)+"\r\n\r\n")
			assert.ErrorIs(t, err, http1.ErrHeaderTooLarge)
			assert.Empty(t, resp)
		})

		t.Run("if the client is too slow", func(t *testing.T) {
			srv := newTestServer(
				t,
				defaultHandler(afero.NewMemMapFs()),
				ReadTimeout(config.ReaderOf(50*time.Millisecond)),
			)

			// The request line is never terminated.
			_, err := serveOnce(t, srv, "GET / HTTP/1.1")

			var rerr ReadRequestError
			assert.ErrorAs(t, err, &rerr)
		})
	})

	t.Run("will return a HandlerError", func(t *testing.T) {
		t.Run("if the handler fails", func(t *testing.T) {
			handlerErr := errors.New("compressor failed")
			srv := newTestServer(t, route.HandlerFunc(func(ctx context.Context, req *http1.Request) (route.Outcome, error) {
				return nil, handlerErr
			}))

			resp, err := serveOnce(t, srv, "GET /echo/abc HTTP/1.1\r\n\r\n")

			var herr HandlerError
			if !assert.ErrorAs(t, err, &herr) {
				return
			}
			assert.Equal(t, "/echo/abc", herr.Target)
			assert.ErrorIs(t, err, handlerErr)
			assert.Empty(t, resp)
		})
	})

	t.Run("will return a PanicError", func(t *testing.T) {
		t.Run("if the handler panics", func(t *testing.T) {
			srv := newTestServer(t, route.HandlerFunc(func(ctx context.Context, req *http1.Request) (route.Outcome, error) {
				panic("handler bug")
			}))

			_, err := serveOnce(t, srv, "GET / HTTP/1.1\r\n\r\n")

			var perr try.PanicError
			if !assert.ErrorAs(t, err, &perr) {
				return
			}
			assert.Equal(t, "handler bug", perr.Value)
		})
	})
}

func TestServer_ServeConn_Logging(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{}))

	srv := newTestServer(t, defaultHandler(afero.NewMemMapFs()), Logger(log))
	srv.newConnID = func() string {
		return "conn-1"
	}

	_, err := serveOnce(t, srv, "GET /echo/abc HTTP/1.1\r\n\r\n")
	require.NoError(t, err)

	var record struct {
		Message    string `json:"msg"`
		ConnID     string `json:"conn_id"`
		Method     string `json:"http_method"`
		Target     string `json:"http_target"`
		StatusCode int    `json:"http_status_code"`
		Bytes      int64  `json:"bytes_written"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	require.Equal(t, "handled request", record.Message)
	require.Equal(t, "conn-1", record.ConnID)
	require.Equal(t, "GET", record.Method)
	require.Equal(t, "/echo/abc", record.Target)
	require.Equal(t, 200, record.StatusCode)
	require.Equal(t, int64(len("HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nContent-Length: 3\r\n\r\nabc")), record.Bytes)
}

func TestServer_ServeConn_Metrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	otel.SetMeterProvider(mp)

	srv := newTestServer(t, defaultHandler(afero.NewMemMapFs()))

	for _, raw := range []string{
		"GET / HTTP/1.1\r\n\r\n",
		"GET /nope HTTP/1.1\r\n\r\n",
		"GET\r\n\r\n",
	} {
		_, _ = serveOnce(t, srv, raw)
	}

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	sums := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			data, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range data.DataPoints {
				sums[m.Name] += dp.Value
			}
		}
	}
	require.Equal(t, int64(2), sums["rawhttp.server.responses"])
	require.Equal(t, int64(1), sums["rawhttp.server.connection.failures"])
}

type flakyListener struct {
	net.Listener
	failures atomic.Int32
}

func (l *flakyListener) Accept() (net.Conn, error) {
	if l.failures.Add(-1) >= 0 {
		return nil, &net.OpError{Op: "accept", Net: "tcp", Err: syscall.EMFILE}
	}
	return l.Listener.Accept()
}

func TestServer_Serve(t *testing.T) {
	t.Run("will keep accepting connections", func(t *testing.T) {
		t.Run("if accept fails transiently", func(t *testing.T) {
			inner, err := net.Listen("tcp", "127.0.0.1:0")
			require.NoError(t, err)

			ls := &flakyListener{Listener: inner}
			ls.failures.Store(2)

			var buf bytes.Buffer
			log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{}))
			srv := newTestServer(t, defaultHandler(afero.NewMemMapFs()), Logger(log))

			done := make(chan error, 1)
			go func() {
				done <- srv.Serve(context.Background(), ls)
			}()

			conn, err := net.Dial("tcp", inner.Addr().String())
			require.NoError(t, err)
			defer conn.Close()

			_, err = io.WriteString(conn, "GET / HTTP/1.1\r\n\r\n")
			require.NoError(t, err)

			resp, err := io.ReadAll(conn)
			require.NoError(t, err)
			assert.Equal(t, "HTTP/1.1 200 OK\r\n\r\n", string(resp))

			require.NoError(t, inner.Close())
			select {
			case err := <-done:
				assert.Nil(t, err)
			case <-time.After(5 * time.Second):
				t.Fatal("Serve did not return")
			}

			assert.Equal(t, 2, strings.Count(buf.String(), "failed to accept connection"))
		})
	})

	t.Run("will return the context error", func(t *testing.T) {
		t.Run("if the context ends while backing off", func(t *testing.T) {
			inner, err := net.Listen("tcp", "127.0.0.1:0")
			require.NoError(t, err)
			defer inner.Close()

			ls := &flakyListener{Listener: inner}
			ls.failures.Store(1 << 20)

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			srv := newTestServer(t, defaultHandler(afero.NewMemMapFs()))

			err = srv.Serve(ctx, ls)
			assert.ErrorIs(t, err, context.Canceled)
		})
	})
}

func TestNextAcceptBackoff(t *testing.T) {
	d := nextAcceptBackoff(0)
	require.Equal(t, minAcceptBackoff, d)

	for range 20 {
		d = nextAcceptBackoff(d)
	}
	require.Equal(t, maxAcceptBackoff, d)
}
