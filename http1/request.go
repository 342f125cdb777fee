// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package http1

import "strings"

// Header holds request header fields. Names compare case-insensitively
// and a repeated name keeps the last value seen.
type Header map[string]string

func headerKey(name string) string {
	return strings.ToLower(name)
}

// Get returns the value of the named field and whether it was present.
func (h Header) Get(name string) (string, bool) {
	v, ok := h[headerKey(name)]
	return v, ok
}

// Set stores value under name, replacing any existing value.
func (h Header) Set(name, value string) {
	h[headerKey(name)] = value
}

// Request is a parsed HTTP/1.1 request.
type Request struct {
	Method string
	Target string

	// Proto is the version token e.g. "HTTP/1.1". It is empty when the
	// request line only carried a method and a target.
	Proto string

	// Segments is Target split on "/" with the leading element dropped.
	// It is never nil.
	Segments []string

	Header Header

	// Body is only meaningful when HasBody is true, which happens when
	// the request declared a Content-Length.
	Body    []byte
	HasBody bool

	pathValues map[string]string
}

// PathValue returns the value bound to the named pattern wildcard
// by the router, or the empty string.
func (r *Request) PathValue(name string) string {
	return r.pathValues[name]
}

// SetPathValue binds value to the named pattern wildcard.
func (r *Request) SetPathValue(name, value string) {
	if r.pathValues == nil {
		r.pathValues = make(map[string]string)
	}
	r.pathValues[name] = value
}

func splitSegments(target string) []string {
	if target == "" {
		return []string{""}
	}
	return strings.Split(target, "/")[1:]
}
