// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package sched binds a recording's resources to a compiled kernel and
// schedules its transfers around the enqueue.
//
// Argument i of the kernel is resource i of the recording, the same order
// package clc uses for the parameter list. Resources the kernel reads are
// uploaded before the enqueue and resources it writes are downloaded after.
// Local resources are bound by size only and never transferred.
package sched

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/clkernel/backend"
	"github.com/gogpu/clkernel/internal/ctxlog"
	"github.com/gogpu/clkernel/ir"
	"github.com/gogpu/clkernel/trace"
)

// memory returns the backend memory of res, or nil for local resources.
func memory(rec *trace.Recording, res ir.Resource) (backend.Memory, error) {
	if res.Descriptor.Target == ir.TargetLocal {
		return nil, nil
	}
	obj, ok := rec.Object(res.Handle)
	if !ok {
		return nil, fmt.Errorf("resource %d has no object", res.Handle)
	}
	mem, ok := obj.(backend.Memory)
	if !ok {
		return nil, fmt.Errorf("%T is not backend memory", obj)
	}
	return mem, nil
}

// BindArguments binds every resource of rec as the next positional
// argument of kernel.
func BindArguments(ctx context.Context, kernel backend.Kernel, rec *trace.Recording) error {
	for i, res := range rec.Resources() {
		if err := ctx.Err(); err != nil {
			return err
		}
		fail := func(err error) error {
			return &Error{Kind: ErrBind, Kernel: rec.Name(), Index: i, Resource: res.Name, Err: err}
		}
		mem, err := memory(rec, res)
		if err != nil {
			return fail(err)
		}
		if err := kernel.SetArg(uint32(i), res.Descriptor.ByteSize, mem); err != nil {
			return fail(err)
		}
	}
	return nil
}

// ScheduleUploads enqueues a write for every resource NeedsUpload selects,
// in resource order.
func ScheduleUploads(ctx context.Context, queue backend.Queue, rec *trace.Recording) error {
	return transfer(ctx, rec, 1, ErrUpload, NeedsUpload, queue.EnqueueWrite)
}

// Enqueue submits kernel over launch.
func Enqueue(ctx context.Context, kernel backend.Kernel, queue backend.Queue, launch ir.Launch) error {
	if err := ctx.Err(); err != nil {
		return &Error{Kind: ErrEnqueue, Kernel: kernel.Name(), Index: -1, Err: err}
	}
	if err := queue.EnqueueKernel(ctx, kernel, launch); err != nil {
		return &Error{Kind: ErrEnqueue, Kernel: kernel.Name(), Index: -1, Err: err}
	}
	return nil
}

// ScheduleDownloads enqueues a read for every resource NeedsDownload
// selects, in resource order.
func ScheduleDownloads(ctx context.Context, queue backend.Queue, rec *trace.Recording) error {
	return transfer(ctx, rec, 1, ErrDownload, NeedsDownload, queue.EnqueueRead)
}

// transfer submits one transfer per selected resource through at most
// workers concurrent submitters and waits for all of them.
func transfer(
	ctx context.Context,
	rec *trace.Recording,
	workers int,
	kind ErrorKind,
	selected func(ir.ResourceDescriptor) bool,
	submit func(context.Context, backend.Memory) error,
) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))

	for i, res := range rec.Resources() {
		if !selected(res.Descriptor) {
			continue
		}
		g.Go(func() error {
			fail := func(err error) error {
				return &Error{Kind: kind, Kernel: rec.Name(), Index: i, Resource: res.Name, Err: err}
			}
			mem, err := memory(rec, res)
			if err != nil {
				return fail(err)
			}
			if err := submit(gctx, mem); err != nil {
				return fail(err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Options configures a Scheduler.
type Options struct {
	// TransferWorkers bounds concurrent transfer submissions within a
	// phase. 1 submits in resource order.
	TransferWorkers int

	// Finish waits for the queue after the downloads are enqueued.
	Finish bool
}

// DefaultOptions returns ordered transfers followed by a Finish.
func DefaultOptions() Options {
	return Options{TransferWorkers: 1, Finish: true}
}

// Scheduler runs the bind, upload, enqueue and download phases in order.
type Scheduler struct {
	opts Options
}

// New creates a scheduler.
func New(opts Options) *Scheduler {
	if opts.TransferWorkers < 1 {
		opts.TransferWorkers = 1
	}
	return &Scheduler{opts: opts}
}

// Run executes rec with kernel on queue. Each phase completes before the
// next starts. The first failure is reported to the context's reporter
// once and returned; nothing is retried.
func (s *Scheduler) Run(ctx context.Context, kernel backend.Kernel, queue backend.Queue, rec *trace.Recording) error {
	err := s.run(ctx, kernel, queue, rec)
	if err != nil {
		backend.ReporterFromContext(ctx).Report(err)
	}
	return err
}

func (s *Scheduler) run(ctx context.Context, kernel backend.Kernel, queue backend.Queue, rec *trace.Recording) error {
	logger := ctxlog.FromContext(ctx).With("kernel", rec.Name())
	workers := s.opts.TransferWorkers

	if err := BindArguments(ctx, kernel, rec); err != nil {
		return err
	}
	if err := transfer(ctx, rec, workers, ErrUpload, NeedsUpload, queue.EnqueueWrite); err != nil {
		return err
	}
	if err := Enqueue(ctx, kernel, queue, rec.Launch()); err != nil {
		return err
	}
	if err := transfer(ctx, rec, workers, ErrDownload, NeedsDownload, queue.EnqueueRead); err != nil {
		return err
	}
	if s.opts.Finish {
		if err := queue.Finish(ctx); err != nil {
			return &Error{Kind: ErrDownload, Kernel: rec.Name(), Index: -1, Err: err}
		}
	}

	logger.Debug("kernel executed", "arguments", len(rec.Resources()))
	return nil
}
