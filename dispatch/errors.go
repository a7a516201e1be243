// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package dispatch

import (
	"errors"
	"fmt"
)

// ErrorKind represents the category of a dispatch error.
type ErrorKind uint8

const (
	// ErrInvalidRange indicates an iteration space with a bad shape.
	ErrInvalidRange ErrorKind = iota

	// ErrNilCallable indicates a shape without a kernel body.
	ErrNilCallable

	// ErrNilTracer indicates a dispatch without a tracer.
	ErrNilTracer

	// ErrCallablePanic indicates the kernel body panicked while tracing.
	ErrCallablePanic
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrInvalidRange:
		return "invalid range"
	case ErrNilCallable:
		return "nil callable"
	case ErrNilTracer:
		return "nil tracer"
	case ErrCallablePanic:
		return "callable panic"
	default:
		return fmt.Sprintf("ErrorKind(%d)", k)
	}
}

// Error represents a dispatch error.
type Error struct {
	Kind    ErrorKind
	Kernel  string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Kernel == "" {
		return fmt.Sprintf("dispatch %s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("dispatch %s in kernel %s: %s", e.Kind, e.Kernel, e.Message)
}

// NewError creates a new dispatch error.
func NewError(kind ErrorKind, kernel, format string, args ...any) *Error {
	return &Error{Kind: kind, Kernel: kernel, Message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is a dispatch error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
