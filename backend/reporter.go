// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/gogpu/clkernel/internal/ctxlog"
)

// Reporter receives every failure the core observes. It decides how the
// failure is surfaced; the core only calls it, once per failure.
type Reporter interface {
	Report(err error)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(err error)

// Report calls f(err).
func (f ReporterFunc) Report(err error) { f(err) }

// LogReporter logs reported errors and keeps them for later inspection.
// It is safe for concurrent use.
type LogReporter struct {
	Logger *slog.Logger

	mu     sync.Mutex
	errors []error
}

// NewLogReporter returns a LogReporter writing to logger.
func NewLogReporter(logger *slog.Logger) *LogReporter {
	return &LogReporter{Logger: logger}
}

// Report logs err at error level and records it.
func (r *LogReporter) Report(err error) {
	if err == nil {
		return
	}
	r.mu.Lock()
	r.errors = append(r.errors, err)
	r.mu.Unlock()

	if r.Logger != nil {
		attrs := []any{"error", err}
		var se *StatusError
		if errors.As(err, &se) {
			attrs = append(attrs, "op", se.Op, "status", se.Status.String())
		}
		r.Logger.Error("clkernel failure", attrs...)
	}
}

// Errors returns a copy of everything reported so far.
func (r *LogReporter) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errors...)
}

// Err joins everything reported so far, or returns nil.
func (r *LogReporter) Err() error {
	return errors.Join(r.Errors()...)
}

type reporterKey struct{}

// WithReporter returns a context carrying r.
func WithReporter(ctx context.Context, r Reporter) context.Context {
	return context.WithValue(ctx, reporterKey{}, r)
}

// ReporterFromContext returns the Reporter attached to ctx. Without one it
// returns a reporter that logs through the context logger.
func ReporterFromContext(ctx context.Context) Reporter {
	if r, ok := ctx.Value(reporterKey{}).(Reporter); ok && r != nil {
		return r
	}
	logger := ctxlog.FromContext(ctx)
	return ReporterFunc(func(err error) {
		logger.Error("clkernel failure", "error", err)
	})
}
