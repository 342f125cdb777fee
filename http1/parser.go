// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package http1

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// DefaultMaxBodySize bounds the Content-Length a request may declare.
const DefaultMaxBodySize int64 = 32 << 20

// DefaultMaxHeaderSize bounds the bytes read for the request line and
// header section together, line terminators included.
const DefaultMaxHeaderSize = 1 << 20

var (
	// ErrBodyTooLarge is the cause of a [MalformedHeaderError] when the
	// declared Content-Length exceeds the configured maximum.
	ErrBodyTooLarge = errors.New("http1: declared body exceeds maximum size")

	// ErrHeaderTooLarge is the cause of a [MalformedRequestLineError] or
	// [MalformedHeaderError] when the request line and header section
	// exceed the configured maximum.
	ErrHeaderTooLarge = errors.New("http1: header section exceeds maximum size")
)

// MalformedRequestLineError is returned when the request line is missing
// or does not carry at least a method and a target.
type MalformedRequestLineError struct {
	Line  string
	Cause error
}

// Error implements the [error] interface.
func (e MalformedRequestLineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("http1: malformed request line %q: %s", e.Line, e.Cause)
	}
	return fmt.Sprintf("http1: malformed request line %q", e.Line)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e MalformedRequestLineError) Unwrap() error {
	return e.Cause
}

// MalformedHeaderError is returned when a header value which drives
// parsing, i.e. Content-Length, is invalid.
type MalformedHeaderError struct {
	Name  string
	Value string
	Cause error
}

// Error implements the [error] interface.
func (e MalformedHeaderError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("http1: malformed header field %q: %s", e.Value, e.Cause)
	}
	return fmt.Sprintf("http1: malformed %s header %q: %s", e.Name, e.Value, e.Cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e MalformedHeaderError) Unwrap() error {
	return e.Cause
}

// TruncatedBodyError is returned when the stream ends before the
// declared number of body bytes could be read.
type TruncatedBodyError struct {
	Expected int64
	Cause    error
}

// Error implements the [error] interface.
func (e TruncatedBodyError) Error() string {
	return fmt.Sprintf("http1: body shorter than declared %d bytes: %s", e.Expected, e.Cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e TruncatedBodyError) Unwrap() error {
	return e.Cause
}

// ParseOption configures [ReadRequest].
type ParseOption interface {
	applyParse(*parser)
}

type parseOptionFunc func(*parser)

func (f parseOptionFunc) applyParse(p *parser) {
	f(p)
}

// WithMaxBodySize overrides [DefaultMaxBodySize]. Zero disables the check.
func WithMaxBodySize(n int64) ParseOption {
	return parseOptionFunc(func(p *parser) {
		p.maxBodySize = n
	})
}

// WithMaxHeaderSize overrides [DefaultMaxHeaderSize]. Zero disables the check.
func WithMaxHeaderSize(n int) ParseOption {
	return parseOptionFunc(func(p *parser) {
		p.maxHeaderSize = n
	})
}

type parser struct {
	maxBodySize   int64
	maxHeaderSize int

	headerRead int
}

// ReadRequest reads exactly one request from br.
//
// Lines may end in CRLF or a bare LF. The header section ends at the
// first empty line or at the end of the stream. A body is only read when
// Content-Length is present.
func ReadRequest(br *bufio.Reader, opts ...ParseOption) (*Request, error) {
	p := &parser{
		maxBodySize:   DefaultMaxBodySize,
		maxHeaderSize: DefaultMaxHeaderSize,
	}
	for _, opt := range opts {
		opt.applyParse(p)
	}
	return p.read(br)
}

func (p *parser) read(br *bufio.Reader) (*Request, error) {
	line, err := p.readLine(br)
	if err != nil {
		return nil, MalformedRequestLineError{Line: truncate(line, 256), Cause: err}
	}
	line = trimEOL(line)

	tokens := strings.SplitN(line, " ", 3)
	if len(tokens) < 2 {
		return nil, MalformedRequestLineError{Line: line}
	}

	req := &Request{
		Method:   tokens[0],
		Target:   tokens[1],
		Segments: splitSegments(tokens[1]),
		Header:   make(Header),
	}
	if len(tokens) == 3 {
		req.Proto = tokens[2]
	}

	err = p.readHeader(br, req.Header)
	if err != nil {
		return nil, err
	}

	cl, ok := req.Header.Get("Content-Length")
	if !ok {
		return req, nil
	}

	n, err := p.contentLength(cl)
	if err != nil {
		return nil, err
	}

	req.Body = make([]byte, n)
	_, err = io.ReadFull(br, req.Body)
	if err != nil {
		return nil, TruncatedBodyError{Expected: n, Cause: err}
	}
	req.HasBody = true
	return req, nil
}

func (p *parser) readHeader(br *bufio.Reader, h Header) error {
	for {
		line, err := p.readLine(br)
		if errors.Is(err, ErrHeaderTooLarge) {
			name, _, _ := strings.Cut(line, ":")
			return MalformedHeaderError{Name: strings.TrimSpace(name), Value: truncate(line, 64), Cause: err}
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}

		line = trimEOL(line)
		if line == "" {
			return nil
		}

		name, value, found := strings.Cut(line, ":")
		if found {
			h.Set(strings.TrimSpace(name), strings.TrimSpace(value))
		}

		if err != nil {
			// EOF after a final unterminated field line
			return nil
		}
	}
}

func (p *parser) contentLength(v string) (int64, error) {
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, MalformedHeaderError{Name: "Content-Length", Value: v, Cause: err}
	}
	if n < 0 {
		return 0, MalformedHeaderError{Name: "Content-Length", Value: v, Cause: errors.New("negative length")}
	}
	if p.maxBodySize > 0 && n > p.maxBodySize {
		return 0, MalformedHeaderError{Name: "Content-Length", Value: v, Cause: ErrBodyTooLarge}
	}
	return n, nil
}

// readLine reads up to and including the next LF, charging the bytes
// against the header section budget. On ErrHeaderTooLarge the returned
// line holds what was read within the budget.
func (p *parser) readLine(br *bufio.Reader) (string, error) {
	var line []byte
	for {
		frag, err := br.ReadSlice('\n')
		if p.maxHeaderSize > 0 && p.headerRead+len(line)+len(frag) > p.maxHeaderSize {
			line = append(line, frag[:p.maxHeaderSize-p.headerRead-len(line)]...)
			return string(line), ErrHeaderTooLarge
		}
		line = append(line, frag...)
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		p.headerRead += len(line)
		return string(line), err
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func trimEOL(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}
