// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package dryrun

import (
	"sync"

	"github.com/gogpu/clkernel/ir"
)

// Buffer is a host slice mirrored by an in-memory device copy.
// It implements backend.Memory and trace.Resource.
type Buffer[T ir.Scalar] struct {
	handle ir.ResourceHandle

	mu     sync.Mutex
	host   []T
	device []T
}

// NewBuffer wraps host. The slice is used in place: downloads write into it.
func NewBuffer[T ir.Scalar](host []T) *Buffer[T] {
	return &Buffer[T]{
		handle: ir.NewResourceHandle(),
		host:   host,
		device: make([]T, len(host)),
	}
}

// ResourceHandle returns the buffer identity.
func (b *Buffer[T]) ResourceHandle() ir.ResourceHandle { return b.handle }

// TypeName returns the OpenCL element type.
func (b *Buffer[T]) TypeName() string { return ir.TypeNameOf[T]() }

// ByteSize returns the size of the buffer in bytes.
func (b *Buffer[T]) ByteSize() uint64 {
	size, _ := ir.ScalarSize(b.TypeName())
	return size * uint64(len(b.host))
}

// DeviceHandle returns a fake native handle derived from the identity.
func (b *Buffer[T]) DeviceHandle() uintptr { return uintptr(b.handle) }

// Len returns the number of elements.
func (b *Buffer[T]) Len() int { return len(b.host) }

// Host returns the host slice.
func (b *Buffer[T]) Host() []T { return b.host }

// Device returns the device copy. Kernel emulators write results here.
func (b *Buffer[T]) Device() []T {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.device
}

func (b *Buffer[T]) upload() {
	b.mu.Lock()
	defer b.mu.Unlock()
	copy(b.device, b.host)
}

func (b *Buffer[T]) download() {
	b.mu.Lock()
	defer b.mu.Unlock()
	copy(b.host, b.device)
}

// mirrored is implemented by every Buffer instantiation.
type mirrored interface {
	upload()
	download()
}
