// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package dispatch

import (
	"fmt"
	"strings"

	"github.com/gogpu/clkernel/ir"
)

// Range is a 1 to 3 dimensional iteration space with an optional offset.
type Range struct {
	Dims   int
	Sizes  [3]uint64
	Offset [3]uint64
}

// Range1 returns a one-dimensional range of x work-items.
func Range1(x uint64) Range { return Range{Dims: 1, Sizes: [3]uint64{x}} }

// Range2 returns a two-dimensional range.
func Range2(x, y uint64) Range { return Range{Dims: 2, Sizes: [3]uint64{x, y}} }

// Range3 returns a three-dimensional range.
func Range3(x, y, z uint64) Range { return Range{Dims: 3, Sizes: [3]uint64{x, y, z}} }

// WithOffset returns r with a global offset. Extra values are ignored.
func (r Range) WithOffset(offset ...uint64) Range {
	r.Offset = [3]uint64{}
	for d := 0; d < len(offset) && d < 3; d++ {
		r.Offset[d] = offset[d]
	}
	return r
}

// Count returns the total number of work-items.
func (r Range) Count() uint64 {
	n := uint64(1)
	for d := 0; d < r.Dims && d < 3; d++ {
		n *= r.Sizes[d]
	}
	return n
}

// String formats the range as "[x, y]".
func (r Range) String() string {
	parts := make([]string, 0, 3)
	for d := 0; d < r.Dims && d < 3; d++ {
		parts = append(parts, fmt.Sprint(r.Sizes[d]))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (r Range) validate() error {
	if r.Dims < 1 || r.Dims > 3 {
		return NewError(ErrInvalidRange, "", "range has %d dimensions, want 1 to 3", r.Dims)
	}
	for d := 0; d < r.Dims; d++ {
		if r.Sizes[d] == 0 {
			return NewError(ErrInvalidRange, "", "range %s is empty in dimension %d", r, d)
		}
	}
	return nil
}

// NDRange pairs a global range with a work-group range of the same
// dimensionality.
type NDRange struct {
	Global Range
	Local  Range
}

// ND returns an NDRange.
func ND(global, local Range) NDRange { return NDRange{Global: global, Local: local} }

func (r NDRange) validate() error {
	if err := r.Global.validate(); err != nil {
		return err
	}
	if err := r.Local.validate(); err != nil {
		return err
	}
	if r.Local.Dims != r.Global.Dims {
		return NewError(ErrInvalidRange, "", "local range has %d dimensions, global has %d", r.Local.Dims, r.Global.Dims)
	}
	for d := 0; d < r.Global.Dims; d++ {
		if r.Global.Sizes[d]%r.Local.Sizes[d] != 0 {
			return NewError(ErrInvalidRange, "", "local size %d does not divide global size %d in dimension %d",
				r.Local.Sizes[d], r.Global.Sizes[d], d)
		}
	}
	return nil
}

func (r Range) launch() ir.Launch {
	return ir.Launch{Dims: r.Dims, Global: r.Sizes, Offset: r.Offset}
}

func (r NDRange) launch() ir.Launch {
	l := r.Global.launch()
	l.Local = r.Local.Sizes
	return l
}
