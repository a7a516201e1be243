// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package sched

import (
	"errors"
	"fmt"
)

// ErrorKind represents the phase in which scheduling failed.
type ErrorKind uint8

const (
	// ErrBind indicates an argument could not be bound.
	ErrBind ErrorKind = iota

	// ErrUpload indicates a host-to-device transfer failed.
	ErrUpload

	// ErrEnqueue indicates the kernel could not be enqueued.
	ErrEnqueue

	// ErrDownload indicates a device-to-host transfer failed.
	ErrDownload
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrBind:
		return "bind"
	case ErrUpload:
		return "upload"
	case ErrEnqueue:
		return "enqueue"
	case ErrDownload:
		return "download"
	default:
		return fmt.Sprintf("ErrorKind(%d)", k)
	}
}

// Error is a scheduling failure. Err holds the backend error verbatim.
type Error struct {
	Kind     ErrorKind
	Kernel   string
	Index    int    // argument index, -1 when not tied to a resource
	Resource string // generated resource name, if any
	Err      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("sched %s kernel %s: %v", e.Kind, e.Kernel, e.Err)
	}
	return fmt.Sprintf("sched %s kernel %s argument %d (%s): %v", e.Kind, e.Kernel, e.Index, e.Resource, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is a scheduling error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
