// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package dispatch

import (
	"fmt"
	"strconv"

	"github.com/gogpu/clkernel/ir"
	"github.com/gogpu/clkernel/trace"
)

// Identifier prefixes of the index prologue. Dimension d is named
// GlobalIDPrefix+d and LocalIDPrefix+d.
const (
	GlobalIDPrefix = "_clk_gid"
	LocalIDPrefix  = "_clk_lid"
)

// ID is a work-item index. Each dimension refers to a constant declared
// by the prologue.
type ID struct {
	dims   int
	prefix string
}

// Dims returns the number of dimensions.
func (id ID) Dims() int { return id.dims }

// Get returns the index in dimension d. It panics if d is out of range.
func (id ID) Get(d int) ir.Expression {
	if d < 0 || d >= id.dims {
		panic(fmt.Sprintf("dispatch: dimension %d out of range for %d-dimensional index", d, id.dims))
	}
	return ir.Ident(id.prefix + strconv.Itoa(d))
}

// X returns the index in dimension 0.
func (id ID) X() ir.Expression { return id.Get(0) }

// Y returns the index in dimension 1.
func (id ID) Y() ir.Expression { return id.Get(1) }

// Z returns the index in dimension 2.
func (id ID) Z() ir.Expression { return id.Get(2) }

// Item is a global index together with the iteration space it belongs to.
type Item struct {
	ID    ID
	Range Range
}

// Size returns the global size of dimension d as a literal.
func (it Item) Size(d int) ir.Expression {
	it.ID.Get(d)
	return sizeLiteral(it.Range.Sizes[d])
}

// Offset returns the global offset of dimension d as a literal.
func (it Item) Offset(d int) ir.Expression {
	it.ID.Get(d)
	return sizeLiteral(it.Range.Offset[d])
}

// NDItem combines a global item with the local index inside its work-group.
type NDItem struct {
	Global Item
	Local  ID
	Group  Range
}

// LocalSize returns the work-group size of dimension d as a literal.
func (it NDItem) LocalSize(d int) ir.Expression {
	it.Local.Get(d)
	return sizeLiteral(it.Group.Sizes[d])
}

// GroupID returns the work-group index of dimension d.
func (it NDItem) GroupID(d int) ir.Expression {
	it.Local.Get(d)
	return ir.Call("get_group_id", ir.MustLit(d))
}

// Barrier appends a local-memory barrier to s.
func (it NDItem) Barrier(s *trace.Scope) {
	s.Barrier(ir.BarrierLocal)
}

func sizeLiteral(n uint64) ir.Expression {
	if n <= 1<<31-1 {
		return ir.MustLit(int(n))
	}
	return ir.MustLit(n)
}

// prologue declares one index constant per dimension.
func prologue(s *trace.Scope, dims int, prefix, builtin string) ID {
	for d := 0; d < dims; d++ {
		s.Const("int", prefix+strconv.Itoa(d), ir.Call(builtin, ir.MustLit(d)))
	}
	return ID{dims: dims, prefix: prefix}
}
