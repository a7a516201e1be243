// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package dryrun implements the backend contracts in memory.
//
// A Device compiles nothing and runs nothing on hardware. It checks the
// kernel signature, records every command it receives in a Log, mirrors
// Buffer contents on writes and reads, and can run a Go emulator in place
// of a kernel. Failures of any driver call can be injected with Fail.
package dryrun

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/gogpu/clkernel/backend"
	"github.com/gogpu/clkernel/internal/ctxlog"
	"github.com/gogpu/clkernel/ir"
)

// Driver call names used in commands and failure injection.
const (
	OpBuild  = "clBuildProgram"
	OpSetArg = "clSetKernelArg"
	OpWrite  = "clEnqueueWriteBuffer"
	OpKernel = "clEnqueueNDRangeKernel"
	OpRead   = "clEnqueueReadBuffer"
	OpFinish = "clFinish"
)

// Emulator stands in for a kernel on the host. args holds the bound
// memory objects by position; local arguments are nil.
type Emulator func(args []backend.Memory, launch ir.Launch) error

// Device is an in-memory compiler and in-order queue.
// It is safe for concurrent use.
type Device struct {
	log Log

	mu        sync.Mutex
	failures  map[string]backend.Status
	emulators map[string]Emulator
	builds    int
}

// NewDevice returns an empty device.
func NewDevice() *Device {
	return &Device{
		failures:  make(map[string]backend.Status),
		emulators: make(map[string]Emulator),
	}
}

// Log returns the command log.
func (d *Device) Log() *Log { return &d.log }

// Builds returns how many times Build was called.
func (d *Device) Builds() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.builds
}

// Fail makes every later call of op return status. StatusSuccess clears it.
func (d *Device) Fail(op string, status backend.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if status == backend.StatusSuccess {
		delete(d.failures, op)
		return
	}
	d.failures[op] = status
}

// Emulate registers fn to run when the kernel named name is enqueued.
func (d *Device) Emulate(name string, fn Emulator) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.emulators[name] = fn
}

func (d *Device) check(op string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return backend.Check(op, d.failures[op])
}

// Build checks that source declares kernelName and returns its kernel.
func (d *Device) Build(ctx context.Context, source, kernelName string) (backend.Kernel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	d.builds++
	d.mu.Unlock()

	if err := d.check(OpBuild); err != nil {
		return nil, err
	}

	params, ok := parameterCount(source, kernelName)
	if !ok {
		return nil, &backend.StatusError{
			Op:     OpBuild,
			Status: backend.StatusInvalidKernelName,
			Log:    fmt.Sprintf("no kernel named %q in program", kernelName),
		}
	}

	d.log.append(Command{Op: OpBuild, Kernel: kernelName})
	ctxlog.FromContext(ctx).Debug("dryrun build", "kernel", kernelName, "params", params)
	return &Kernel{device: d, name: kernelName, params: params, args: make(map[uint32]argument)}, nil
}

// parameterCount finds "__kernel void name(" in source and counts the
// parameters of its signature.
func parameterCount(source, name string) (int, bool) {
	header := "__kernel void " + name + "("
	i := strings.Index(source, header)
	if i < 0 {
		return 0, false
	}
	rest := source[i+len(header):]
	end := strings.IndexByte(rest, ')')
	if end < 0 {
		return 0, false
	}
	list := strings.TrimSpace(rest[:end])
	if list == "" {
		return 0, true
	}
	return strings.Count(list, ",") + 1, true
}

// EnqueueWrite copies the host contents of mem to its device copy.
func (d *Device) EnqueueWrite(ctx context.Context, mem backend.Memory) error {
	return d.transfer(ctx, OpWrite, mem, func(m mirrored) { m.upload() })
}

// EnqueueRead copies the device copy of mem back to the host.
func (d *Device) EnqueueRead(ctx context.Context, mem backend.Memory) error {
	return d.transfer(ctx, OpRead, mem, func(m mirrored) { m.download() })
}

func (d *Device) transfer(ctx context.Context, op string, mem backend.Memory, apply func(mirrored)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := d.check(op); err != nil {
		return err
	}
	if mem == nil {
		return &backend.StatusError{Op: op, Status: backend.StatusInvalidMemObject}
	}
	if m, ok := mem.(mirrored); ok {
		apply(m)
	}
	d.log.append(Command{Op: op, Handle: mem.ResourceHandle(), Size: mem.ByteSize()})
	return nil
}

// EnqueueKernel checks that every argument of k is bound and runs the
// kernel's emulator, if any.
func (d *Device) EnqueueKernel(ctx context.Context, k backend.Kernel, launch ir.Launch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := d.check(OpKernel); err != nil {
		return err
	}
	kernel, ok := k.(*Kernel)
	if !ok || kernel.device != d {
		return &backend.StatusError{Op: OpKernel, Status: backend.StatusInvalidKernel}
	}
	args, err := kernel.bound()
	if err != nil {
		return err
	}

	d.log.append(Command{Op: OpKernel, Kernel: kernel.name, Launch: launch})

	d.mu.Lock()
	emulate := d.emulators[kernel.name]
	d.mu.Unlock()
	if emulate != nil {
		return emulate(args, launch)
	}
	return nil
}

// Finish returns immediately; commands complete as they are enqueued.
func (d *Device) Finish(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := d.check(OpFinish); err != nil {
		return err
	}
	d.log.append(Command{Op: OpFinish})
	return nil
}

var (
	_ backend.Compiler = (*Device)(nil)
	_ backend.Queue    = (*Device)(nil)
)
