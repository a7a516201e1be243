// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package backend defines the contracts clkernel consumes from a native
// compute driver: program compilation, kernel argument binding, command
// queues, device memory and error reporting.
//
// Implementations are thin wrappers around a driver API. Package dryrun
// provides an in-memory implementation that records the command stream.
package backend

import (
	"context"

	"github.com/gogpu/clkernel/ir"
)

// Compiler builds kernel source into an executable kernel object.
type Compiler interface {
	// Build compiles source and creates the kernel named kernelName.
	// Build log and status are returned verbatim in the error.
	Build(ctx context.Context, source, kernelName string) (Kernel, error)
}

// Kernel is a compiled kernel object.
type Kernel interface {
	// Name returns the kernel function name.
	Name() string

	// SetArg binds positional argument index. mem is nil for local
	// scratch arguments, which only carry a size.
	SetArg(index uint32, size uint64, mem Memory) error
}

// Queue is an in-order command queue.
type Queue interface {
	// EnqueueWrite copies host contents of mem to the device.
	EnqueueWrite(ctx context.Context, mem Memory) error

	// EnqueueRead copies device contents of mem back to the host.
	EnqueueRead(ctx context.Context, mem Memory) error

	// EnqueueKernel submits k over the given iteration space.
	EnqueueKernel(ctx context.Context, k Kernel, launch ir.Launch) error

	// Finish blocks until all submitted commands completed.
	Finish(ctx context.Context) error
}

// Memory is a device-resident resource. clkernel reads its handle and
// size but never allocates or frees it.
type Memory interface {
	ResourceHandle() ir.ResourceHandle
	TypeName() string
	ByteSize() uint64

	// DeviceHandle returns the native memory object handle.
	DeviceHandle() uintptr
}
