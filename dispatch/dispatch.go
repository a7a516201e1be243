// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package dispatch traces kernel bodies of the supported shapes.
//
// A shape pairs a Go callable with the iteration space it runs over. Trace
// opens a recording, emits the index prologue of the shape, runs the
// callable once to record its body and closes the recording:
//
//	shape := dispatch.ParallelFor(dispatch.Range1(n), func(s *trace.Scope, id dispatch.ID) {
//		c.Set(id.X(), ir.Add(a.At(id.X()), b.At(id.X())))
//	})
//	rec, err := dispatch.Trace(ctx, tracer, "vecadd", shape)
package dispatch

import (
	"context"
	"fmt"

	"github.com/gogpu/clkernel/backend"
	"github.com/gogpu/clkernel/internal/ctxlog"
	"github.com/gogpu/clkernel/ir"
	"github.com/gogpu/clkernel/trace"
)

// Shape is a kernel callable with its iteration space. The set of shapes
// is closed; use Task, ParallelFor, ParallelForItem or ParallelForND.
type Shape interface {
	fmt.Stringer
	launch() (ir.Launch, error)
	record(s *trace.Scope)
}

type taskShape struct {
	fn func(*trace.Scope)
}

// Task runs fn as a single work-item kernel. No prologue is emitted.
func Task(fn func(*trace.Scope)) Shape { return taskShape{fn: fn} }

func (t taskShape) String() string { return "task" }

func (t taskShape) launch() (ir.Launch, error) {
	if t.fn == nil {
		return ir.Launch{}, NewError(ErrNilCallable, "", "task without body")
	}
	return ir.Launch{}, nil
}

func (t taskShape) record(s *trace.Scope) { t.fn(s) }

type idShape struct {
	r  Range
	fn func(*trace.Scope, ID)
}

// ParallelFor runs fn once per work-item of r with its global index.
func ParallelFor(r Range, fn func(*trace.Scope, ID)) Shape { return idShape{r: r, fn: fn} }

func (p idShape) String() string { return "parallel_for" + p.r.String() }

func (p idShape) launch() (ir.Launch, error) {
	if p.fn == nil {
		return ir.Launch{}, NewError(ErrNilCallable, "", "parallel_for without body")
	}
	if err := p.r.validate(); err != nil {
		return ir.Launch{}, err
	}
	return p.r.launch(), nil
}

func (p idShape) record(s *trace.Scope) {
	p.fn(s, prologue(s, p.r.Dims, GlobalIDPrefix, "get_global_id"))
}

type itemShape struct {
	r  Range
	fn func(*trace.Scope, Item)
}

// ParallelForItem runs fn once per work-item of r with an Item carrying
// the index and the range.
func ParallelForItem(r Range, fn func(*trace.Scope, Item)) Shape { return itemShape{r: r, fn: fn} }

func (p itemShape) String() string { return "parallel_for_item" + p.r.String() }

func (p itemShape) launch() (ir.Launch, error) {
	if p.fn == nil {
		return ir.Launch{}, NewError(ErrNilCallable, "", "parallel_for without body")
	}
	if err := p.r.validate(); err != nil {
		return ir.Launch{}, err
	}
	return p.r.launch(), nil
}

func (p itemShape) record(s *trace.Scope) {
	id := prologue(s, p.r.Dims, GlobalIDPrefix, "get_global_id")
	p.fn(s, Item{ID: id, Range: p.r})
}

type ndShape struct {
	r  NDRange
	fn func(*trace.Scope, NDItem)
}

// ParallelForND runs fn over an ND range with global and local indices.
func ParallelForND(r NDRange, fn func(*trace.Scope, NDItem)) Shape { return ndShape{r: r, fn: fn} }

func (p ndShape) String() string {
	return "parallel_for_nd" + p.r.Global.String() + p.r.Local.String()
}

func (p ndShape) launch() (ir.Launch, error) {
	if p.fn == nil {
		return ir.Launch{}, NewError(ErrNilCallable, "", "parallel_for without body")
	}
	if err := p.r.validate(); err != nil {
		return ir.Launch{}, err
	}
	return p.r.launch(), nil
}

func (p ndShape) record(s *trace.Scope) {
	global := prologue(s, p.r.Global.Dims, GlobalIDPrefix, "get_global_id")
	local := prologue(s, p.r.Local.Dims, LocalIDPrefix, "get_local_id")
	p.fn(s, NDItem{
		Global: Item{ID: global, Range: p.r.Global},
		Local:  local,
		Group:  p.r.Local,
	})
}

// Trace records shape as kernel name on tracer. Failures, including a
// panic in the callable, are reported to the context's reporter and
// returned; nothing is retried.
func Trace(ctx context.Context, tracer *trace.Tracer, name string, shape Shape) (*trace.Recording, error) {
	rec, err := record(ctx, tracer, name, shape)
	if err != nil {
		backend.ReporterFromContext(ctx).Report(err)
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("kernel traced",
		"kernel", rec.Name(),
		"shape", shape.String(),
		"resources", len(rec.Resources()))
	return rec, nil
}

func record(ctx context.Context, tracer *trace.Tracer, name string, shape Shape) (rec *trace.Recording, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if tracer == nil {
		return nil, NewError(ErrNilTracer, name, "no tracer")
	}
	if shape == nil {
		return nil, NewError(ErrNilCallable, name, "no shape")
	}
	launch, err := shape.launch()
	if err != nil {
		if e, ok := err.(*Error); ok {
			e.Kernel = name
		}
		return nil, err
	}

	s, err := tracer.Begin(name)
	if err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			// Release the tracer slot.
			_, _ = s.End()
			rec = nil
			err = NewError(ErrCallablePanic, s.Name(), "%v", r)
		}
	}()

	s.SetLaunch(launch)
	shape.record(s)
	return s.End()
}
