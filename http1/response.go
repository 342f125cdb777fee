// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package http1 implements the HTTP/1.1 request parser and response
// serializer used by the rawhttp server.
package http1

import (
	"io"
	"strconv"

	"github.com/valyala/bytebufferpool"
)

// Field is a single response header line.
type Field struct {
	Name  string
	Value string
}

// Response is written back to the client exactly as described: the
// header fields keep their insertion order.
type Response struct {
	StatusCode int

	// Status overrides the reason phrase derived from StatusCode.
	Status string

	Header []Field
	Body   []byte
}

// NewResponse returns an empty [Response] with the given status code.
func NewResponse(code int) *Response {
	return &Response{StatusCode: code}
}

// AddHeader appends a header field.
func (r *Response) AddHeader(name, value string) *Response {
	r.Header = append(r.Header, Field{Name: name, Value: value})
	return r
}

// SetBody sets the body along with its Content-Type and a
// Content-Length equal to the body's length in bytes.
func (r *Response) SetBody(contentType string, body []byte) *Response {
	r.Body = body
	r.AddHeader("Content-Type", contentType)
	r.AddHeader("Content-Length", strconv.Itoa(len(body)))
	return r
}

// GetHeader returns the value of the first field with the given name.
func (r *Response) GetHeader(name string) (string, bool) {
	for _, f := range r.Header {
		if headerKey(f.Name) == headerKey(name) {
			return f.Value, true
		}
	}
	return "", false
}

func (r *Response) reason() string {
	if r.Status != "" {
		return r.Status
	}
	return StatusText(r.StatusCode)
}

// WriteTo serializes the response with a single Write to w.
// The empty line separating the header from the body is always written.
func (r *Response) WriteTo(w io.Writer) (int64, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	buf.WriteString("HTTP/1.1 ")
	buf.B = strconv.AppendInt(buf.B, int64(r.StatusCode), 10)
	buf.WriteString(" ")
	buf.WriteString(r.reason())
	buf.WriteString("\r\n")
	for _, f := range r.Header {
		buf.WriteString(f.Name)
		buf.WriteString(": ")
		buf.WriteString(f.Value)
		buf.WriteString("\r\n")
	}
	buf.WriteString("\r\n")
	buf.Write(r.Body)

	n, err := w.Write(buf.B)
	return int64(n), err
}
