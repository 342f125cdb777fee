// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"testing"
	"time"

	"github.com/z5labs/rawhttp"
	"github.com/z5labs/rawhttp/pkg/noop"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Run("will write json records", func(t *testing.T) {
		t.Run("if the record is at or above the configured level", func(t *testing.T) {
			var buf bytes.Buffer
			log := NewLogger(&buf, "warn")

			log.Info("hidden")
			log.Warn("shown")

			var record map[string]any
			err := json.Unmarshal(buf.Bytes(), &record)
			if !assert.Nil(t, err) {
				return
			}
			assert.Equal(t, "shown", record["msg"])
			assert.Equal(t, "WARN", record["level"])
		})

		t.Run("if the level is not recognised", func(t *testing.T) {
			var buf bytes.Buffer
			log := NewLogger(&buf, "loud")

			log.Debug("hidden")
			log.Info("shown")

			assert.NotContains(t, buf.String(), "hidden")
			assert.Contains(t, buf.String(), "shown")
		})
	})
}

func exchange(t *testing.T, addr, raw string) []byte {
	t.Helper()

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	_, err = io.WriteString(conn, raw)
	require.NoError(t, err)

	b, err := io.ReadAll(conn)
	require.NoError(t, err)
	return b
}

func TestBuildWithListener(t *testing.T) {
	t.Run("will serve the default routes", func(t *testing.T) {
		t.Run("if the runtime is run by the default runner", func(t *testing.T) {
			ls, err := net.Listen("tcp", "127.0.0.1:0")
			require.NoError(t, err)

			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, "/srv/notes.txt", []byte("remember"), 0o644))

			cfg := DefaultConfig()
			cfg.Directory = "/srv/"
			cfg.ReadTimeout = 5 * time.Second
			cfg.WriteTimeout = 5 * time.Second

			b := BuildWithListener(cfg, rawhttp.BuilderOf(ls), fs, noop.Logger())

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() {
				done <- rawhttp.DefaultRunner[rawhttp.Runtime]().Run(ctx, b)
			}()

			addr := ls.Addr().String()

			resp := exchange(t, addr, "GET /files/notes.txt HTTP/1.1\r\n\r\n")
			assert.Equal(t, "HTTP/1.1 200 OK\r\nContent-Type: application/octet-stream\r\nContent-Length: 8\r\n\r\nremember", string(resp))

			resp = exchange(t, addr, "GET /user-agent HTTP/1.1\r\nUser-Agent: curl/8.0\r\n\r\n")
			assert.Equal(t, "HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nContent-Length: 8\r\n\r\ncurl/8.0", string(resp))

			resp = exchange(t, addr, "GET /echo/hey HTTP/1.1\r\nAccept-Encoding: gzip\r\n\r\n")
			head, body, found := bytes.Cut(resp, []byte("\r\n\r\n"))
			if assert.True(t, found) {
				assert.Contains(t, string(head), "Content-Encoding: gzip")

				zr, err := gzip.NewReader(bytes.NewReader(body))
				if assert.Nil(t, err) {
					decoded, err := io.ReadAll(zr)
					assert.Nil(t, err)
					assert.Equal(t, "hey", string(decoded))
				}
			}

			resp = exchange(t, addr, "GET /nope HTTP/1.1\r\n\r\n")
			assert.Equal(t, "HTTP/1.1 404 Not Found\r\n\r\n", string(resp))

			cancel()
			select {
			case err := <-done:
				assert.Nil(t, err)
			case <-time.After(5 * time.Second):
				t.Fatal("runtime did not stop")
			}
		})
	})

	t.Run("will fail to build", func(t *testing.T) {
		t.Run("if an encoding is unknown", func(t *testing.T) {
			ls, err := net.Listen("tcp", "127.0.0.1:0")
			require.NoError(t, err)
			defer ls.Close()

			cfg := DefaultConfig()
			cfg.Encodings = []string{"deflate"}

			b := BuildWithListener(cfg, rawhttp.BuilderOf(ls), afero.NewMemMapFs(), noop.Logger())

			err = rawhttp.RecoverPanics(rawhttp.DefaultRunner[rawhttp.Runtime]()).Run(context.Background(), b)
			assert.NotNil(t, err)
		})
	})
}
