// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package clc

import (
	"fmt"

	"github.com/gogpu/clkernel/ir"
)

// Options configures OpenCL C code generation.
type Options struct {
	// Indent is the string written once per nesting level.
	// Defaults to a single tab if empty.
	Indent string

	// Validate runs ir.Validate before code generation.
	Validate bool
}

// DefaultOptions returns sensible default options for OpenCL C generation.
func DefaultOptions() Options {
	return Options{
		Indent:   "\t",
		Validate: true,
	}
}

// TranslationInfo contains metadata about the translation.
type TranslationInfo struct {
	// KernelName is the name of the generated __kernel function.
	KernelName string

	// Parameters lists the generated parameter names in argument order.
	Parameters []string

	// Lines is the number of lines in the generated source.
	Lines int
}

// Compile generates OpenCL C source code from a traced kernel.
// Returns the source as a string, translation info, or an error.
func Compile(kernel *ir.Kernel, options Options) (string, TranslationInfo, error) {
	if kernel == nil {
		return "", TranslationInfo{}, NewError(ErrInvalidKernel, "kernel is nil")
	}

	// Apply defaults for zero values
	if options.Indent == "" {
		options.Indent = "\t"
	}

	if options.Validate {
		validationErrors, err := ir.Validate(kernel)
		if err != nil {
			return "", TranslationInfo{}, fmt.Errorf("clc: %w", err)
		}
		if len(validationErrors) > 0 {
			return "", TranslationInfo{}, NewError(ErrInvalidKernel, validationErrors[0].Error())
		}
	}

	w := newWriter(kernel, &options)
	if err := w.writeKernel(); err != nil {
		return "", TranslationInfo{}, fmt.Errorf("clc: %w", err)
	}

	info := TranslationInfo{
		KernelName: kernel.Name,
		Parameters: w.parameters,
		Lines:      w.lines,
	}
	return w.String(), info, nil
}

// Finalize renders a traced kernel with default options.
func Finalize(kernel *ir.Kernel) (string, error) {
	source, _, err := Compile(kernel, DefaultOptions())
	return source, err
}
