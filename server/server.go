// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package server drives connections: it reads one request per
// connection, routes it, writes the response and closes the connection.
package server

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/z5labs/rawhttp/config"
	"github.com/z5labs/rawhttp/http1"
	"github.com/z5labs/rawhttp/internal/try"
	"github.com/z5labs/rawhttp/pkg/noop"
	"github.com/z5labs/rawhttp/pkg/slogfield"
	"github.com/z5labs/rawhttp/route"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/z5labs/rawhttp/server"

// Option configures a [Server].
type Option func(*options)

type options struct {
	logger       *slog.Logger
	readTimeout  config.Reader[time.Duration]
	writeTimeout config.Reader[time.Duration]
	maxBodySize  config.Reader[int64]
	maxHeader    config.Reader[int]
}

// Logger sets the logger connection outcomes are reported to.
func Logger(log *slog.Logger) Option {
	return func(o *options) {
		o.logger = log
	}
}

// ReadTimeout bounds the time spent reading a request. Zero, the
// default, means no deadline.
func ReadTimeout(d config.Reader[time.Duration]) Option {
	return func(o *options) {
		o.readTimeout = d
	}
}

// WriteTimeout bounds the time spent writing a response. Zero, the
// default, means no deadline.
func WriteTimeout(d config.Reader[time.Duration]) Option {
	return func(o *options) {
		o.writeTimeout = d
	}
}

// MaxBodySize bounds the Content-Length a request may declare.
// It defaults to [http1.DefaultMaxBodySize].
func MaxBodySize(n config.Reader[int64]) Option {
	return func(o *options) {
		o.maxBodySize = n
	}
}

// MaxHeaderSize bounds the bytes of the request line and header section.
// It defaults to [http1.DefaultMaxHeaderSize].
func MaxHeaderSize(n config.Reader[int]) Option {
	return func(o *options) {
		o.maxHeader = n
	}
}

// Server serves a single request per connection.
type Server struct {
	handler route.Handler
	log     *slog.Logger

	readTimeout  time.Duration
	writeTimeout time.Duration
	parseOpts    []http1.ParseOption

	tracer    trace.Tracer
	responses metric.Int64Counter
	failures  metric.Int64Counter
	duration  metric.Float64Histogram

	newConnID func() string
}

// NewServer returns a [Server] routing every request to h. Instruments
// are created from the global OpenTelemetry providers.
func NewServer(ctx context.Context, h route.Handler, opts ...Option) (*Server, error) {
	o := options{
		logger: noop.Logger(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	meter := otel.Meter(instrumentationName)
	responses, err := meter.Int64Counter(
		"rawhttp.server.responses",
		metric.WithDescription("Number of responses written, by status code."),
		metric.WithUnit("{response}"),
	)
	if err != nil {
		return nil, err
	}

	failures, err := meter.Int64Counter(
		"rawhttp.server.connection.failures",
		metric.WithDescription("Number of connections dropped without a response."),
		metric.WithUnit("{connection}"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"rawhttp.server.connection.duration",
		metric.WithDescription("Time from accepting a connection until it is closed."),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	s := &Server{
		handler:      h,
		log:          o.logger,
		readTimeout:  config.MustOr(ctx, 0, o.readTimeout),
		writeTimeout: config.MustOr(ctx, 0, o.writeTimeout),
		parseOpts: []http1.ParseOption{
			http1.WithMaxBodySize(config.MustOr(ctx, http1.DefaultMaxBodySize, o.maxBodySize)),
			http1.WithMaxHeaderSize(config.MustOr(ctx, http1.DefaultMaxHeaderSize, o.maxHeader)),
		},
		tracer:    otel.Tracer(instrumentationName),
		responses: responses,
		failures:  failures,
		duration:  duration,
		newConnID: func() string {
			return uuid.New().String()
		},
	}
	return s, nil
}

// ServeConn handles exactly one request on conn and then closes it.
//
// An error is returned if no response could be written: the request was
// malformed, the handler failed or panicked, or the connection broke.
// The returned error never affects any other connection.
func (s *Server) ServeConn(ctx context.Context, conn net.Conn) (err error) {
	start := time.Now()
	id := s.newConnID()

	ctx, span := s.tracer.Start(
		ctx,
		"ServeConn",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("rawhttp.conn_id", id),
			attribute.String("network.peer.address", conn.RemoteAddr().String()),
		),
	)
	log := s.log.With(
		slogfield.ConnID(id),
		slogfield.RemoteAddr(conn.RemoteAddr().String()),
	)

	defer func() {
		s.duration.Record(ctx, time.Since(start).Seconds())
		if err != nil {
			s.failures.Add(ctx, 1)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	defer try.Close(&err, conn)
	defer try.Recover(&err)

	// Unblock any pending read or write once the server shuts down.
	stop := context.AfterFunc(ctx, func() {
		conn.SetDeadline(time.Now())
	})
	defer stop()

	if s.readTimeout > 0 {
		err = conn.SetReadDeadline(time.Now().Add(s.readTimeout))
		if err != nil {
			return err
		}
	}

	req, err := http1.ReadRequest(bufio.NewReader(conn), s.parseOpts...)
	if err != nil {
		return ReadRequestError{Cause: err}
	}
	span.SetAttributes(
		attribute.String("http.request.method", req.Method),
		attribute.String("url.path", req.Target),
	)

	outcome, err := s.handler.Handle(ctx, req)
	if err != nil {
		return HandlerError{Method: req.Method, Target: req.Target, Cause: err}
	}
	resp := outcome.Respond()

	if s.writeTimeout > 0 {
		err = conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
		if err != nil {
			return err
		}
	}

	n, err := resp.WriteTo(conn)
	if err != nil {
		return WriteResponseError{Cause: err}
	}

	status := attribute.Int("http.response.status_code", resp.StatusCode)
	span.SetAttributes(status)
	s.responses.Add(ctx, 1, metric.WithAttributes(status))

	log.InfoContext(
		ctx,
		"handled request",
		slogfield.Method(req.Method),
		slogfield.Target(req.Target),
		slogfield.StatusCode(resp.StatusCode),
		slogfield.BytesWritten(n),
		slogfield.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// Accept failures other than a closed listener are retried after a
// delay which doubles from minAcceptBackoff up to maxAcceptBackoff.
const (
	minAcceptBackoff = 5 * time.Millisecond
	maxAcceptBackoff = time.Second
)

// Serve accepts connections from ls one at a time, serving each to
// completion before accepting the next. It returns nil once ls is closed
// and the context error if ctx ends while waiting to retry an accept.
func (s *Server) Serve(ctx context.Context, ls net.Listener) error {
	var backoff time.Duration
	for {
		conn, err := ls.Accept()
		if errors.Is(err, net.ErrClosed) {
			return nil
		}
		if err != nil {
			backoff = nextAcceptBackoff(backoff)
			s.log.WarnContext(
				ctx,
				"failed to accept connection",
				slogfield.Error(err),
				slogfield.Duration("retry_in", backoff),
			)

			err = sleep(ctx, backoff)
			if err != nil {
				return err
			}
			continue
		}
		backoff = 0

		err = s.ServeConn(ctx, conn)
		if err != nil {
			s.log.ErrorContext(
				ctx,
				"dropped connection",
				slogfield.RemoteAddr(conn.RemoteAddr().String()),
				slogfield.Error(err),
			)
		}
	}
}

func nextAcceptBackoff(d time.Duration) time.Duration {
	if d == 0 {
		return minAcceptBackoff
	}
	return min(2*d, maxAcceptBackoff)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
