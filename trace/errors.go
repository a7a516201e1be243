// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package trace

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes recording errors.
type ErrorKind uint8

const (
	// ErrNoActiveRecording indicates an operation on a scope that is not recording.
	ErrNoActiveRecording ErrorKind = iota

	// ErrReentrant indicates Begin was called while another scope was live on the tracer.
	ErrReentrant

	// ErrForeignScope indicates End was called with a scope the tracer did not install.
	ErrForeignScope

	// ErrUnbalancedBlock indicates block nesting did not return to zero.
	ErrUnbalancedBlock

	// ErrConflictingResource indicates a resource was registered twice with different descriptors.
	ErrConflictingResource

	// ErrUnsupportedValue indicates a value that has no kernel source form.
	ErrUnsupportedValue

	// ErrReadOnlyWrite indicates an assignment through a read-only accessor.
	ErrReadOnlyWrite

	// ErrDanglingElse indicates an else arm that does not directly follow its if.
	ErrDanglingElse

	// ErrInvalidKernel indicates the finished recording failed IR validation.
	ErrInvalidKernel
)

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrNoActiveRecording:
		return "NoActiveRecording"
	case ErrReentrant:
		return "Reentrant"
	case ErrForeignScope:
		return "ForeignScope"
	case ErrUnbalancedBlock:
		return "UnbalancedBlock"
	case ErrConflictingResource:
		return "ConflictingResource"
	case ErrUnsupportedValue:
		return "UnsupportedValue"
	case ErrReadOnlyWrite:
		return "ReadOnlyWrite"
	case ErrDanglingElse:
		return "DanglingElse"
	case ErrInvalidKernel:
		return "InvalidKernel"
	default:
		return "Unknown"
	}
}

// Error represents a recording error.
type Error struct {
	// Kind categorizes the error.
	Kind ErrorKind

	// Kernel names the recording, if known.
	Kernel string

	// Message provides details about the error.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Kernel != "" {
		return fmt.Sprintf("trace %s in kernel %s: %s", e.Kind, e.Kernel, e.Message)
	}
	return fmt.Sprintf("trace %s: %s", e.Kind, e.Message)
}

// Is matches errors of the same kind, so errors.Is(err, &Error{Kind: k}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// NewError creates a new recording error.
func NewError(kind ErrorKind, kernel, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Kernel:  kernel,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsKind reports whether err is a recording error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
