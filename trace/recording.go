// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package trace

import (
	"github.com/gogpu/clkernel/ir"
)

// Recording is a finished trace. It is immutable; accessors return copies
// of the resource list, and the statement tree must be treated as read-only.
type Recording struct {
	kernel  ir.Kernel
	objects map[ir.ResourceHandle]Resource
}

func newRecording(kernel ir.Kernel, objects map[ir.ResourceHandle]Resource) *Recording {
	kernel.Resources = append([]ir.Resource(nil), kernel.Resources...)
	copied := make(map[ir.ResourceHandle]Resource, len(objects))
	for h, o := range objects {
		copied[h] = o
	}
	return &Recording{kernel: kernel, objects: copied}
}

// Name returns the kernel name.
func (r *Recording) Name() string { return r.kernel.Name }

// Kernel returns the traced kernel for code generation.
func (r *Recording) Kernel() *ir.Kernel {
	k := r.kernel
	k.Resources = r.Resources()
	return &k
}

// Resources returns the resources in argument order.
func (r *Recording) Resources() []ir.Resource {
	return append([]ir.Resource(nil), r.kernel.Resources...)
}

// Object returns the resource object registered under h.
func (r *Recording) Object(h ir.ResourceHandle) (Resource, bool) {
	o, ok := r.objects[h]
	return o, ok
}

// Launch returns the recorded iteration space.
func (r *Recording) Launch() ir.Launch { return r.kernel.Launch }

// Statements returns the number of top-level statements.
func (r *Recording) Statements() int { return len(r.kernel.Body) }
