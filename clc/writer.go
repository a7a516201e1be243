// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package clc

import (
	"fmt"
	"strings"

	"github.com/gogpu/clkernel/ir"
)

// Writer generates OpenCL C source code from a traced kernel.
type Writer struct {
	kernel  *ir.Kernel
	options *Options

	// Output buffer
	out strings.Builder

	// Current indentation level
	indent int

	// Resource names by handle
	names map[ir.ResourceHandle]string

	// Output tracking
	parameters []string
	lines      int
}

// newWriter creates a new OpenCL C writer.
func newWriter(kernel *ir.Kernel, options *Options) *Writer {
	names := make(map[ir.ResourceHandle]string, len(kernel.Resources))
	for _, res := range kernel.Resources {
		names[res.Handle] = res.Name
	}
	return &Writer{
		kernel:  kernel,
		options: options,
		names:   names,
	}
}

// String returns the generated OpenCL C source code.
func (w *Writer) String() string {
	return w.out.String()
}

// writeKernel generates the signature line, the body and the closing brace.
func (w *Writer) writeKernel() error {
	if IsReserved(w.kernel.Name) {
		return NewError(ErrReservedName, fmt.Sprintf("kernel name %q is reserved", w.kernel.Name))
	}

	params, err := w.parameterList()
	if err != nil {
		return err
	}

	w.writeLine("__kernel void %s(%s) {", w.kernel.Name, params)
	w.pushIndent()
	if err := w.writeBlock(w.kernel.Body); err != nil {
		return err
	}
	w.popIndent()
	w.writeLine("}")
	return nil
}

// parameterList builds the comma separated formal parameters in resource order.
func (w *Writer) parameterList() (string, error) {
	params := make([]string, 0, len(w.kernel.Resources))
	w.parameters = make([]string, 0, len(w.kernel.Resources))
	for _, res := range w.kernel.Resources {
		if IsReserved(res.Name) {
			return "", NewError(ErrReservedName, fmt.Sprintf("resource name %q is reserved", res.Name))
		}
		params = append(params, Parameter(res))
		w.parameters = append(w.parameters, res.Name)
	}
	return strings.Join(params, ", "), nil
}

// Parameter returns the declaration of one kernel parameter, e.g.
// "__global const int* _clk_buf0".
func Parameter(res ir.Resource) string {
	var b strings.Builder
	b.WriteString(AddressSpace(res.Descriptor.Target))
	b.WriteByte(' ')
	if res.Descriptor.Mode.ReadOnly() {
		b.WriteString("const ")
	}
	b.WriteString(res.Descriptor.TypeName)
	b.WriteString("* ")
	b.WriteString(res.Name)
	return b.String()
}

// AddressSpace returns the address space qualifier for an access target.
func AddressSpace(target ir.AccessTarget) string {
	switch target {
	case ir.TargetGlobalBuffer:
		return "__global"
	case ir.TargetConstantBuffer:
		return "__constant"
	case ir.TargetLocal:
		return "__local"
	default:
		return ""
	}
}

// writeLine writes a line with current indentation.
func (w *Writer) writeLine(format string, args ...any) {
	w.writeIndent()
	if len(args) == 0 {
		w.out.WriteString(format)
	} else {
		fmt.Fprintf(&w.out, format, args...)
	}
	w.out.WriteByte('\n')
	w.lines++
}

// writeIndent writes the current indentation.
func (w *Writer) writeIndent() {
	for i := 0; i < w.indent; i++ {
		w.out.WriteString(w.options.Indent)
	}
}

// pushIndent increases indentation.
func (w *Writer) pushIndent() {
	w.indent++
}

// popIndent decreases indentation.
func (w *Writer) popIndent() {
	if w.indent > 0 {
		w.indent--
	}
}
