// Package ir defines the intermediate representation for clkernel.
//
// A traced kernel is described by a statement tree (Block) whose statements
// reference expression trees, plus the ordered list of resources the body
// touched. Backends such as package clc flatten this representation to
// kernel source text.
package ir

import (
	"fmt"
	"sync/atomic"
)

// ResourceHandle identifies a device-visible resource for the lifetime of
// the process. Handles are issued when a resource wrapper is constructed
// and are used as map keys instead of addresses.
type ResourceHandle uint64

var lastHandle atomic.Uint64

// NewResourceHandle returns a fresh, never reused resource handle.
func NewResourceHandle() ResourceHandle {
	return ResourceHandle(lastHandle.Add(1))
}

// AccessMode is the declared read/write intent for a resource within one kernel.
type AccessMode uint8

const (
	ModeRead AccessMode = iota
	ModeWrite
	ModeReadWrite
	ModeDiscardWrite
	ModeDiscardReadWrite
)

// String returns the mode name.
func (m AccessMode) String() string {
	switch m {
	case ModeRead:
		return "read"
	case ModeWrite:
		return "write"
	case ModeReadWrite:
		return "read_write"
	case ModeDiscardWrite:
		return "discard_write"
	case ModeDiscardReadWrite:
		return "discard_read_write"
	default:
		return fmt.Sprintf("AccessMode(%d)", uint8(m))
	}
}

// Valid reports whether m is one of the declared modes.
func (m AccessMode) Valid() bool {
	return m <= ModeDiscardReadWrite
}

// ReadOnly reports whether the kernel only reads the resource.
func (m AccessMode) ReadOnly() bool {
	return m == ModeRead
}

// ReadsHostData reports whether the kernel observes the contents the host
// had before the launch. Write-only and discard modes overwrite them.
func (m AccessMode) ReadsHostData() bool {
	switch m {
	case ModeWrite, ModeDiscardWrite, ModeDiscardReadWrite:
		return false
	default:
		return true
	}
}

// AccessTarget is the memory space a resource lives in.
type AccessTarget uint8

const (
	TargetGlobalBuffer AccessTarget = iota
	TargetConstantBuffer
	TargetLocal
)

// String returns the target name.
func (t AccessTarget) String() string {
	switch t {
	case TargetGlobalBuffer:
		return "global_buffer"
	case TargetConstantBuffer:
		return "constant_buffer"
	case TargetLocal:
		return "local"
	default:
		return fmt.Sprintf("AccessTarget(%d)", uint8(t))
	}
}

// Valid reports whether t is one of the declared targets.
func (t AccessTarget) Valid() bool {
	return t <= TargetLocal
}

// ResourceDescriptor carries what is needed to declare a kernel parameter
// and to plan its transfers.
type ResourceDescriptor struct {
	TypeName string // element type, e.g. "int"
	Mode     AccessMode
	Target   AccessTarget
	ByteSize uint64
}

// String formats the descriptor for diagnostics.
func (d ResourceDescriptor) String() string {
	return fmt.Sprintf("{%s %s %s %dB}", d.TypeName, d.Mode, d.Target, d.ByteSize)
}

// Launch describes the iteration space of one kernel invocation.
// Dims is 0 for a single task.
type Launch struct {
	Dims   int
	Global [3]uint64
	Local  [3]uint64 // all zero when the runtime picks the work-group size
	Offset [3]uint64
}

// IsTask reports whether the launch is a single work-item task.
func (l Launch) IsTask() bool {
	return l.Dims == 0
}

// Resource is one kernel parameter: a registered resource with its
// generated name. The position of a Resource in Kernel.Resources is its
// argument index.
type Resource struct {
	Handle     ResourceHandle
	Name       string
	Descriptor ResourceDescriptor
}

// Kernel is a complete traced kernel ready for code generation.
type Kernel struct {
	Name      string
	Resources []Resource
	Body      Block
	Launch    Launch
}

// ResourceIndex returns the argument index of the resource with the given
// handle, or -1.
func (k *Kernel) ResourceIndex(h ResourceHandle) int {
	for i := range k.Resources {
		if k.Resources[i].Handle == h {
			return i
		}
	}
	return -1
}
