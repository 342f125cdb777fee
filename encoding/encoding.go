// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package encoding provides the content codings a response body may be
// transformed with and the Accept-Encoding negotiation between them.
package encoding

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
)

// Encoder transforms a response body into a content coding.
type Encoder interface {
	// Name is the content coding token e.g. "gzip".
	Name() string
	Encode([]byte) ([]byte, error)
}

// EncoderFunc adapts a plain function into an [Encoder].
type EncoderFunc struct {
	Token string
	F     func([]byte) ([]byte, error)
}

// Name implements the [Encoder] interface.
func (e EncoderFunc) Name() string {
	return e.Token
}

// Encode implements the [Encoder] interface.
func (e EncoderFunc) Encode(b []byte) ([]byte, error) {
	return e.F(b)
}

// EncodeError wraps a failure of the underlying compressor.
type EncodeError struct {
	Encoding string
	Cause    error
}

// Error implements the [error] interface.
func (e EncodeError) Error() string {
	return fmt.Sprintf("failed to encode body as %s: %s", e.Encoding, e.Cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e EncodeError) Unwrap() error {
	return e.Cause
}

// Gzip returns an [Encoder] producing a complete gzip stream.
func Gzip() Encoder {
	return streamEncoder{
		name: "gzip",
		newWriter: func(w io.Writer) io.WriteCloser {
			return gzip.NewWriter(w)
		},
	}
}

// Brotli returns an [Encoder] producing a brotli stream.
func Brotli() Encoder {
	return streamEncoder{
		name: "br",
		newWriter: func(w io.Writer) io.WriteCloser {
			return brotli.NewWriterLevel(w, brotli.DefaultCompression)
		},
	}
}

type streamEncoder struct {
	name      string
	newWriter func(io.Writer) io.WriteCloser
}

func (e streamEncoder) Name() string {
	return e.name
}

func (e streamEncoder) Encode(b []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := e.newWriter(&buf)

	_, err := zw.Write(b)
	if err != nil {
		return nil, EncodeError{Encoding: e.name, Cause: err}
	}

	// Close flushes the footer so the stream is complete.
	err = zw.Close()
	if err != nil {
		return nil, EncodeError{Encoding: e.name, Cause: err}
	}
	return buf.Bytes(), nil
}

// UnknownEncodingError is returned by [Lookup] for tokens without an [Encoder].
type UnknownEncodingError struct {
	Name string
}

// Error implements the [error] interface.
func (e UnknownEncodingError) Error() string {
	return "unknown content encoding: " + e.Name
}

// Lookup returns the built-in [Encoder] registered under the given token.
func Lookup(name string) (Encoder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "gzip":
		return Gzip(), nil
	case "br":
		return Brotli(), nil
	default:
		return nil, UnknownEncodingError{Name: name}
	}
}

// Registry is an ordered set of [Encoder]s available for negotiation.
type Registry struct {
	encoders []Encoder
}

// NewRegistry returns a [Registry] containing the given encoders.
// Later encoders with a duplicate name are ignored.
func NewRegistry(encoders ...Encoder) *Registry {
	r := &Registry{}
	for _, e := range encoders {
		if _, ok := r.get(e.Name()); ok {
			continue
		}
		r.encoders = append(r.encoders, e)
	}
	return r
}

// Names returns the registered coding tokens in registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.encoders))
	for _, e := range r.encoders {
		names = append(names, e.Name())
	}
	return names
}

func (r *Registry) get(name string) (Encoder, bool) {
	for _, e := range r.encoders {
		if strings.EqualFold(e.Name(), name) {
			return e, true
		}
	}
	return nil, false
}

// Negotiate selects an [Encoder] for the given Accept-Encoding value.
//
// The value is treated as a comma separated list of codings. Parameters
// are ignored except q=0 which excludes the coding. The first coding, in
// the order the client listed them, that is registered wins.
func (r *Registry) Negotiate(acceptEncoding string) (Encoder, bool) {
	if r == nil {
		return nil, false
	}
	for _, item := range strings.Split(acceptEncoding, ",") {
		token, params, _ := strings.Cut(item, ";")
		token = strings.TrimSpace(token)
		if token == "" || rejected(params) {
			continue
		}
		e, ok := r.get(token)
		if ok {
			return e, true
		}
	}
	return nil, false
}

func rejected(params string) bool {
	for _, p := range strings.Split(params, ";") {
		k, v, ok := strings.Cut(p, "=")
		if !ok || !strings.EqualFold(strings.TrimSpace(k), "q") {
			continue
		}
		q, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err == nil && q == 0 {
			return true
		}
	}
	return false
}
