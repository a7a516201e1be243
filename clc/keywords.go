// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package clc

import "strings"

// clKeywords contains OpenCL C reserved words.
// Based on the OpenCL C 1.2 and 2.0 specifications plus the C99 keywords they inherit.
var clKeywords = map[string]struct{}{
	// C99 keywords
	"auto": {}, "break": {}, "case": {}, "char": {}, "const": {}, "continue": {},
	"default": {}, "do": {}, "double": {}, "else": {}, "enum": {}, "extern": {},
	"float": {}, "for": {}, "goto": {}, "if": {}, "inline": {}, "int": {},
	"long": {}, "register": {}, "restrict": {}, "return": {}, "short": {},
	"signed": {}, "sizeof": {}, "static": {}, "struct": {}, "switch": {},
	"typedef": {}, "union": {}, "unsigned": {}, "void": {}, "volatile": {},
	"while": {}, "_Bool": {}, "_Complex": {}, "_Imaginary": {},

	// Scalar types
	"bool": {}, "uchar": {}, "ushort": {}, "uint": {}, "ulong": {}, "half": {},
	"size_t": {}, "ptrdiff_t": {}, "intptr_t": {}, "uintptr_t": {},
	"true": {}, "false": {},

	// Image and sampler types
	"image1d_t": {}, "image1d_array_t": {}, "image1d_buffer_t": {},
	"image2d_t": {}, "image2d_array_t": {}, "image3d_t": {},
	"sampler_t": {}, "event_t": {}, "queue_t": {}, "clk_event_t": {},
	"ndrange_t": {}, "reserve_id_t": {},

	// Address space and access qualifiers
	"__global": {}, "global": {}, "__local": {}, "local": {},
	"__constant": {}, "constant": {}, "__private": {}, "private": {},
	"__generic": {}, "generic": {},
	"__kernel": {}, "kernel": {},
	"__read_only": {}, "read_only": {}, "__write_only": {}, "write_only": {},
	"__read_write": {}, "read_write": {},
	"uniform": {}, "pipe": {},

	// Work-item functions commonly used by generated code
	"get_global_id": {}, "get_local_id": {}, "get_group_id": {},
	"get_global_size": {}, "get_local_size": {}, "get_num_groups": {},
	"get_global_offset": {}, "get_work_dim": {}, "barrier": {},
}

// vectorPrefixes are scalar type names that form vector types with a width suffix.
var vectorPrefixes = []string{
	"char", "uchar", "short", "ushort", "int", "uint", "long", "ulong", "half", "float", "double", "bool",
}

// vectorWidths are the vector widths OpenCL C defines.
var vectorWidths = map[string]struct{}{
	"2": {}, "3": {}, "4": {}, "8": {}, "16": {},
}

// IsReserved reports whether name is an OpenCL C reserved word, a vector
// type name such as float4, or uses the reserved "__" prefix.
func IsReserved(name string) bool {
	if _, ok := clKeywords[name]; ok {
		return true
	}
	for _, prefix := range vectorPrefixes {
		if rest, ok := strings.CutPrefix(name, prefix); ok {
			if _, ok := vectorWidths[rest]; ok {
				return true
			}
		}
	}
	return strings.HasPrefix(name, "__")
}
