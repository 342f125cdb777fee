// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package route maps parsed requests onto the handlers which produce
// their responses.
package route

import (
	"context"
	"fmt"
	"strings"

	"github.com/z5labs/rawhttp/http1"
)

// Outcome is the result of handling a single request.
type Outcome interface {
	Respond() *http1.Response
}

// Success carries a fully formed response.
type Success struct {
	Response *http1.Response
}

// Respond implements the [Outcome] interface.
func (s Success) Respond() *http1.Response {
	return s.Response
}

// NotFound results in an empty 404 response.
type NotFound struct{}

// Respond implements the [Outcome] interface.
func (NotFound) Respond() *http1.Response {
	return http1.NewResponse(http1.StatusNotFound)
}

// BadRequest results in an empty 400 response.
type BadRequest struct{}

// Respond implements the [Outcome] interface.
func (BadRequest) Respond() *http1.Response {
	return http1.NewResponse(http1.StatusBadRequest)
}

// Handler produces the [Outcome] for a request. A returned error means no
// response could be produced and the connection should be dropped.
type Handler interface {
	Handle(context.Context, *http1.Request) (Outcome, error)
}

// HandlerFunc is a func variant of the [Handler] interface.
type HandlerFunc func(context.Context, *http1.Request) (Outcome, error)

// Handle implements the [Handler] interface.
func (f HandlerFunc) Handle(ctx context.Context, req *http1.Request) (Outcome, error) {
	return f(ctx, req)
}

// InvalidPatternError is the panic value of [Router.Route] for patterns
// which can not be parsed.
type InvalidPatternError struct {
	Pattern string
	Reason  string
}

// Error implements the [error] interface.
func (e InvalidPatternError) Error() string {
	return fmt.Sprintf("route: invalid pattern %q: %s", e.Pattern, e.Reason)
}

type segment struct {
	literal  string
	wildcard string
}

type entry struct {
	pattern  string
	method   string
	segments []segment
	handler  Handler
}

func (e entry) match(segs []string) (map[string]string, bool) {
	if len(segs) != len(e.segments) {
		return nil, false
	}

	var values map[string]string
	for i, s := range e.segments {
		if s.wildcard == "" {
			if s.literal != segs[i] {
				return nil, false
			}
			continue
		}
		if values == nil {
			values = make(map[string]string)
		}
		values[s.wildcard] = segs[i]
	}
	return values, true
}

// Router dispatches requests to the first registered route whose
// pattern matches the request segments and method.
type Router struct {
	entries []entry
}

// NewRouter returns an empty [Router].
func NewRouter() *Router {
	return &Router{}
}

// Route registers h under pattern.
//
// Patterns take the form "[METHOD ]/literal/{name}". A "{name}" segment
// matches any single segment, including an empty one, and is made
// available through [http1.Request.PathValue]. Without a method the
// route accepts every method. Route panics if the pattern is invalid.
func (r *Router) Route(pattern string, h Handler) {
	e, err := parsePattern(pattern)
	if err != nil {
		panic(err)
	}
	e.handler = h
	r.entries = append(r.entries, e)
}

func parsePattern(pattern string) (entry, error) {
	e := entry{pattern: pattern}

	path := pattern
	if method, rest, found := strings.Cut(pattern, " "); found {
		if method == "" {
			return e, InvalidPatternError{Pattern: pattern, Reason: "empty method"}
		}
		e.method = method
		path = strings.TrimLeft(rest, " ")
	}
	if !strings.HasPrefix(path, "/") {
		return e, InvalidPatternError{Pattern: pattern, Reason: "path must begin with /"}
	}

	seen := make(map[string]bool)
	for _, s := range strings.Split(path, "/")[1:] {
		if !strings.HasPrefix(s, "{") {
			e.segments = append(e.segments, segment{literal: s})
			continue
		}

		name, ok := strings.CutSuffix(s[1:], "}")
		if !ok || name == "" {
			return e, InvalidPatternError{Pattern: pattern, Reason: "bad wildcard " + s}
		}
		if seen[name] {
			return e, InvalidPatternError{Pattern: pattern, Reason: "duplicate wildcard " + name}
		}
		seen[name] = true
		e.segments = append(e.segments, segment{wildcard: name})
	}
	return e, nil
}

// Handle implements the [Handler] interface. Requests which match no
// route, including ones whose path matches but whose method does not,
// result in [NotFound].
func (r *Router) Handle(ctx context.Context, req *http1.Request) (Outcome, error) {
	for _, e := range r.entries {
		values, ok := e.match(req.Segments)
		if !ok {
			continue
		}
		if e.method != "" && e.method != req.Method {
			continue
		}
		for name, value := range values {
			req.SetPathValue(name, value)
		}
		return e.handler.Handle(ctx, req)
	}
	return NotFound{}, nil
}
