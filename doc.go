// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package rawhttp provides the small functional framework the rawhttp
// server is assembled with.
//
// The package is built around three abstractions:
//
//   - Builder[T]: constructs a component with context support
//   - Runtime: a long running component e.g. the connection accept loop
//   - Runner[T]: builds a Runtime from a Builder and runs it
//
// Builders compose with [Map] and [Bind]:
//
//	rt := rawhttp.Map(listener, func(ctx context.Context, ls net.Listener) (rawhttp.Runtime, error) {
//	    return server.NewRuntime(ls, srv), nil
//	})
//
// The process entrypoint wraps the [DefaultRunner] with signal handling
// and panic recovery:
//
//	runner := rawhttp.RecoverPanics(
//	    rawhttp.NotifyOnSignal(
//	        rawhttp.DefaultRunner[rawhttp.Runtime](),
//	        os.Interrupt,
//	    ),
//	)
//	err := runner.Run(context.Background(), rt)
package rawhttp
