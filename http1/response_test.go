// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package http1

import (
	"bytes"
	"errors"
	"strconv"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestResponse_WriteTo(t *testing.T) {
	testCases := []struct {
		name     string
		resp     *Response
		expected string
	}{
		{
			name:     "empty ok response",
			resp:     NewResponse(StatusOK),
			expected: "HTTP/1.1 200 OK\r\n\r\n",
		},
		{
			name:     "not found keeps the blank separator",
			resp:     NewResponse(StatusNotFound),
			expected: "HTTP/1.1 404 Not Found\r\n\r\n",
		},
		{
			name:     "bad request keeps the blank separator",
			resp:     NewResponse(StatusBadRequest),
			expected: "HTTP/1.1 400 Bad Request\r\n\r\n",
		},
		{
			name:     "created",
			resp:     NewResponse(StatusCreated),
			expected: "HTTP/1.1 201 Created\r\n\r\n",
		},
		{
			name:     "text body",
			resp:     NewResponse(StatusOK).SetBody("text/plain", []byte("abc")),
			expected: "HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nContent-Length: 3\r\n\r\nabc",
		},
		{
			name: "header fields keep insertion order",
			resp: NewResponse(StatusOK).
				AddHeader("Content-Encoding", "gzip").
				SetBody("text/plain", []byte("xyz")),
			expected: "HTTP/1.1 200 OK\r\nContent-Encoding: gzip\r\nContent-Type: text/plain\r\nContent-Length: 3\r\n\r\nxyz",
		},
		{
			name: "status override",
			resp: &Response{
				StatusCode: 299,
				Status:     "Custom",
			},
			expected: "HTTP/1.1 299 Custom\r\n\r\n",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			n, err := tc.resp.WriteTo(&buf)
			require.NoError(t, err)
			require.Equal(t, int64(len(tc.expected)), n)
			require.Equal(t, tc.expected, buf.String())
		})
	}
}

func TestResponse_SetBody(t *testing.T) {
	bodies := []string{"", "abc", "héllo wörld", "日本語"}

	for _, body := range bodies {
		resp := NewResponse(StatusOK).SetBody("text/plain", []byte(body))

		cl, ok := resp.GetHeader("content-length")
		require.True(t, ok)

		n, err := strconv.Atoi(cl)
		require.NoError(t, err)
		require.Equal(t, len(body), n)
		if utf8.RuneCountInString(body) != len(body) {
			require.NotEqual(t, utf8.RuneCountInString(body), n)
		}
	}
}

func TestResponse_WriteTo_Error(t *testing.T) {
	writeErr := errors.New("broken pipe")

	_, err := NewResponse(StatusOK).WriteTo(errWriter{err: writeErr})
	require.ErrorIs(t, err, writeErr)
}

func TestStatusText(t *testing.T) {
	require.Equal(t, "OK", StatusText(StatusOK))
	require.Equal(t, "Created", StatusText(StatusCreated))
	require.Equal(t, "Bad Request", StatusText(StatusBadRequest))
	require.Equal(t, "Not Found", StatusText(StatusNotFound))
	require.Empty(t, StatusText(500))
}

type errWriter struct {
	err error
}

func (w errWriter) Write(b []byte) (int, error) {
	return 0, w.err
}
