// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package trace records kernel bodies written as ordinary Go code.
//
// A Tracer owns the single active-recording slot. Begin installs a Scope,
// the kernel body drives it through statements, control-flow helpers and
// accessors, and End uninstalls it and returns an immutable Recording:
//
//	tr := trace.NewTracer(trace.DefaultOptions())
//	s, _ := tr.Begin("K")
//	r := s.Access(buf, ir.ModeWrite)
//	r.Set(0, 1)
//	rec, err := s.End()
//
// The scope is passed explicitly to the kernel body; there is no global
// recording state. Separate tracers may record concurrently.
package trace

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/clkernel/backend"
	"github.com/gogpu/clkernel/internal/ctxlog"
	"github.com/gogpu/clkernel/ir"
)

// Resource is a device-visible memory object a kernel can access.
type Resource interface {
	ResourceHandle() ir.ResourceHandle
	TypeName() string
	ByteSize() uint64
}

// Options configures recording.
type Options struct {
	// KernelPrefix names kernels begun with an empty name.
	KernelPrefix string

	// ResourcePrefix prefixes generated resource names.
	ResourcePrefix string

	// Logger receives debug output and recording-context warnings.
	Logger *slog.Logger

	// Reporter receives recording-context errors that have no caller to
	// return to, such as statements appended after End.
	Reporter backend.Reporter
}

// DefaultOptions returns the default naming scheme.
func DefaultOptions() Options {
	return Options{
		KernelPrefix:   "_clk_kernel",
		ResourcePrefix: "_clk_buf",
	}
}

// Tracer holds the active-recording slot.
type Tracer struct {
	opts Options

	mu      sync.Mutex
	active  *Scope
	kernels uint64
}

// NewTracer creates a tracer. Empty prefixes fall back to DefaultOptions.
func NewTracer(opts Options) *Tracer {
	def := DefaultOptions()
	if opts.KernelPrefix == "" {
		opts.KernelPrefix = def.KernelPrefix
	}
	if opts.ResourcePrefix == "" {
		opts.ResourcePrefix = def.ResourcePrefix
	}
	if opts.Logger == nil {
		opts.Logger = ctxlog.Discard()
	}
	return &Tracer{opts: opts}
}

// Begin installs a new recording named name. An empty name is replaced by
// a generated one. Begin fails with ErrReentrant while another scope from
// this tracer is live.
func (t *Tracer) Begin(name string) (*Scope, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active != nil {
		return nil, NewError(ErrReentrant, name, "kernel %s is still recording", t.active.kernel.Name)
	}

	if name == "" {
		name = fmt.Sprintf("%s%d", t.opts.KernelPrefix, t.kernels)
	}
	t.kernels++

	s := newScope(t, name)
	t.active = s
	t.opts.Logger.Debug("recording started", "kernel", name)
	return s, nil
}

// Active reports whether a scope is currently recording.
func (t *Tracer) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active != nil
}

// release uninstalls s if it is the active scope.
func (t *Tracer) release(s *Scope) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active != s {
		return NewError(ErrForeignScope, s.kernel.Name, "scope is not the tracer's active recording")
	}
	t.active = nil
	return nil
}

// report forwards a recording-context error nobody can return.
func (t *Tracer) report(err error) {
	t.opts.Logger.Warn("recording-context error", "error", err)
	if t.opts.Reporter != nil {
		t.opts.Reporter.Report(err)
	}
}
