// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package server

import (
	"context"
	"errors"
	"net"

	"github.com/z5labs/rawhttp"
	"github.com/z5labs/rawhttp/config"
	"github.com/z5labs/rawhttp/lifecycle"
	"github.com/z5labs/rawhttp/route"

	"golang.org/x/sync/errgroup"
)

// BuildTCPListener creates a [rawhttp.Builder] that constructs a TCP listener.
// The listener is closed after the runtime returns.
func BuildTCPListener(addr config.Reader[*net.TCPAddr]) rawhttp.Builder[*net.TCPListener] {
	return rawhttp.BuilderFunc[*net.TCPListener](func(ctx context.Context) (*net.TCPListener, error) {
		tcpAddr := config.Must(ctx, addr)
		ln, err := net.ListenTCP("tcp", tcpAddr)
		if err != nil {
			return nil, err
		}

		if lc, ok := lifecycle.FromContext(ctx); ok {
			lc.OnPostRun("close tcp listener", lifecycle.HookFunc(func(ctx context.Context) error {
				err := ln.Close()
				if errors.Is(err, net.ErrClosed) {
					return nil
				}
				return err
			}))
		}
		return ln, nil
	})
}

// Runtime serves connections from a listener until its context is cancelled.
type Runtime struct {
	ls  net.Listener
	srv *Server
}

// NewRuntime returns a [Runtime] serving connections accepted from ls.
func NewRuntime(ls net.Listener, srv *Server) Runtime {
	return Runtime{
		ls:  ls,
		srv: srv,
	}
}

// Run implements the [rawhttp.Runtime] interface. Cancelling ctx closes
// the listener and interrupts the connection being served, if any.
func (r Runtime) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()

		return r.srv.Serve(gctx, r.ls)
	})
	g.Go(func() error {
		<-gctx.Done()

		err := r.ls.Close()
		if errors.Is(err, net.ErrClosed) {
			return nil
		}
		return err
	})

	err := g.Wait()
	if err == nil || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Build creates a [rawhttp.Builder] for a [Runtime] serving every
// connection accepted from the built listener with the built handler.
func Build[L net.Listener](
	listener rawhttp.Builder[L],
	handler rawhttp.Builder[route.Handler],
	opts ...Option,
) rawhttp.Builder[Runtime] {
	return rawhttp.BuilderFunc[Runtime](func(ctx context.Context) (Runtime, error) {
		ls := rawhttp.MustBuild(ctx, listener)
		h := rawhttp.MustBuild(ctx, handler)

		srv, err := NewServer(ctx, h, opts...)
		if err != nil {
			return Runtime{}, err
		}
		return NewRuntime(ls, srv), nil
	})
}
