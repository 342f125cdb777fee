// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package otelslog correlates slog records with the span active in
// the context they are logged with.
package otelslog

import (
	"context"
	"log/slog"

	"github.com/z5labs/rawhttp/pkg/slogfield"

	"go.opentelemetry.io/otel/trace"
)

// Handler adds trace_id, span_id and trace_sampled to every record
// logged with a valid span in its context. The fields stay at the top
// level of the record even when the logger has open groups, so they
// can be joined against exported spans.
type Handler struct {
	root  slog.Handler
	steps []func(slog.Handler) slog.Handler

	// root with every step applied
	current slog.Handler
}

// NewHandler wraps h.
func NewHandler(h slog.Handler) *Handler {
	return &Handler{root: h, current: h}
}

// New is shorthand for slog.New(NewHandler(h)).
func New(h slog.Handler) *slog.Logger {
	return slog.New(NewHandler(h))
}

// Enabled implements the [slog.Handler] interface.
func (h *Handler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return h.current.Enabled(ctx, lvl)
}

// Handle implements the [slog.Handler] interface.
func (h *Handler) Handle(ctx context.Context, record slog.Record) error {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return h.current.Handle(ctx, record)
	}

	correlated := h.root.WithAttrs([]slog.Attr{
		slogfield.TraceID(spanCtx.TraceID().String()),
		slogfield.SpanID(spanCtx.SpanID().String()),
		slogfield.Bool("trace_sampled", spanCtx.IsSampled()),
	})
	for _, step := range h.steps {
		correlated = step(correlated)
	}
	return correlated.Handle(ctx, record)
}

// WithAttrs implements the [slog.Handler] interface.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.with(func(next slog.Handler) slog.Handler {
		return next.WithAttrs(attrs)
	})
}

// WithGroup implements the [slog.Handler] interface.
func (h *Handler) WithGroup(name string) slog.Handler {
	return h.with(func(next slog.Handler) slog.Handler {
		return next.WithGroup(name)
	})
}

func (h *Handler) with(step func(slog.Handler) slog.Handler) *Handler {
	steps := make([]func(slog.Handler) slog.Handler, len(h.steps), len(h.steps)+1)
	copy(steps, h.steps)

	return &Handler{
		root:    h.root,
		steps:   append(steps, step),
		current: step(h.current),
	}
}
