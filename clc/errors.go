// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package clc

import "fmt"

// ErrorKind categorizes OpenCL C generation errors.
type ErrorKind uint8

const (
	// ErrUnsupportedStatement indicates a statement kind the writer cannot emit.
	ErrUnsupportedStatement ErrorKind = iota

	// ErrUnsupportedExpression indicates an expression kind the writer cannot emit.
	ErrUnsupportedExpression

	// ErrUnknownResource indicates an expression referencing an unregistered resource.
	ErrUnknownResource

	// ErrReservedName indicates an identifier that collides with an OpenCL C reserved word.
	ErrReservedName

	// ErrInvalidKernel indicates the kernel is malformed.
	ErrInvalidKernel
)

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrUnsupportedStatement:
		return "UnsupportedStatement"
	case ErrUnsupportedExpression:
		return "UnsupportedExpression"
	case ErrUnknownResource:
		return "UnknownResource"
	case ErrReservedName:
		return "ReservedName"
	case ErrInvalidKernel:
		return "InvalidKernel"
	default:
		return "Unknown"
	}
}

// Error represents an OpenCL C generation error.
type Error struct {
	// Kind categorizes the error.
	Kind ErrorKind

	// Message provides details about the error.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("clc %s: %s", e.Kind, e.Message)
}

// NewError creates a new OpenCL C generation error.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
	}
}
