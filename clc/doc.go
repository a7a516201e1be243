// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package clc provides an OpenCL C backend for clkernel.
//
// This package generates the source of a single __kernel function from a
// traced ir.Kernel. The parameter list is derived from the kernel's
// resources in argument order; the body is the flattened statement tree.
//
// # Basic Usage
//
//	source, info, err := clc.Compile(kernel, clc.DefaultOptions())
//
// For the common case Finalize uses default options:
//
//	source, err := clc.Finalize(kernel)
//
// # Output Shape
//
// A kernel named K with one read and one write buffer of int renders as
//
//	__kernel void K(__global const int* _clk_buf0, __global int* _clk_buf1) {
//		const int _clk_gid0 = get_global_id(0);
//		_clk_buf1[_clk_gid0]=_clk_buf0[_clk_gid0];
//	}
//
// Every body line is indented with one tab per nesting level and
// control-flow headers are followed by their braces on separate lines.
//
// # Reserved Words
//
// Kernel, resource and local names that collide with OpenCL C reserved
// words are rejected rather than renamed, because the host looks kernels
// up by name after compilation.
package clc
