// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package lifecycle lets builders release what they acquired, e.g. a
// listening socket, once the [rawhttp.Runtime] they built has returned.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

// Hook is an action run at a fixed point around a [rawhttp.Runtime].
type Hook interface {
	Run(context.Context) error
}

// HookFunc is a func variant of the [Hook] interface.
type HookFunc func(context.Context) error

// Run implements the [Hook] interface.
func (f HookFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// MultiHook returns a [Hook] running hooks in order. Every hook runs
// even if an earlier one fails and all errors are joined.
func MultiHook(hooks ...Hook) Hook {
	return HookFunc(func(ctx context.Context) error {
		var errs []error
		for _, h := range hooks {
			errs = append(errs, h.Run(ctx))
		}
		return errors.Join(errs...)
	})
}

// HookError reports the failure of a named post run hook.
type HookError struct {
	Name  string
	Cause error
}

// Error implements the [error] interface.
func (e HookError) Error() string {
	return fmt.Sprintf("post run hook %q: %s", e.Name, e.Cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e HookError) Unwrap() error {
	return e.Cause
}

type namedHook struct {
	name string
	hook Hook
}

// Context collects the post run hooks builders register while the
// runtime is being built. It is safe for concurrent use.
type Context struct {
	mu       sync.Mutex
	postRuns []namedHook
}

// OnPostRun registers hook under name. Hooks run in reverse order of
// registration, like deferred calls, so something built on top of an
// earlier resource is released before that resource.
func (c *Context) OnPostRun(name string, hook Hook) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.postRuns = append(c.postRuns, namedHook{name: name, hook: hook})
}

// PostRun returns a [Hook] running every registered hook. A failing
// hook is reported as a [HookError] and does not stop the others.
func (c *Context) PostRun() Hook {
	c.mu.Lock()
	hooks := slices.Clone(c.postRuns)
	c.mu.Unlock()
	slices.Reverse(hooks)

	wrapped := make([]Hook, 0, len(hooks))
	for _, nh := range hooks {
		wrapped = append(wrapped, HookFunc(func(ctx context.Context) error {
			err := nh.hook.Run(ctx)
			if err != nil {
				return HookError{Name: nh.name, Cause: err}
			}
			return nil
		}))
	}
	return MultiHook(wrapped...)
}

type key struct{}

// NewContext returns a copy of parent carrying c.
func NewContext(parent context.Context, c *Context) context.Context {
	return context.WithValue(parent, key{}, c)
}

// FromContext returns the [Context] carried by ctx, if any.
func FromContext(ctx context.Context) (*Context, bool) {
	lc, ok := ctx.Value(key{}).(*Context)
	return lc, ok
}

// RunPostRun runs the post run hooks of c with a context which is never
// cancelled and joins their errors into err. It is meant to be deferred.
func RunPostRun(ctx context.Context, c *Context, err *error) {
	hookErr := c.PostRun().Run(context.WithoutCancel(ctx))

	*err = errors.Join(*err, hookErr)
}
