// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package trace

import (
	"github.com/gogpu/clkernel/ir"
)

// Accessor is a registered view of a resource inside one recording.
// Its methods build expressions and statements on the owning scope.
type Accessor struct {
	scope *Scope
	res   ir.Resource
}

// Access registers res as a global buffer with the given mode.
func (s *Scope) Access(res Resource, mode ir.AccessMode) Accessor {
	return s.AccessTarget(res, mode, ir.TargetGlobalBuffer)
}

// AccessTarget registers res with an explicit target. Registration errors
// are recorded on the scope and returned from End.
func (s *Scope) AccessTarget(res Resource, mode ir.AccessMode, target ir.AccessTarget) Accessor {
	name, err := s.Register(res, mode, target)
	if err != nil && name == "" {
		return Accessor{scope: s}
	}
	i := s.index[res.ResourceHandle()]
	return Accessor{scope: s, res: s.kernel.Resources[i]}
}

// Name returns the generated parameter name.
func (a Accessor) Name() string { return a.res.Name }

// Handle returns the resource handle.
func (a Accessor) Handle() ir.ResourceHandle { return a.res.Handle }

// Mode returns the registered access mode.
func (a Accessor) Mode() ir.AccessMode { return a.res.Descriptor.Mode }

// Target returns the registered access target.
func (a Accessor) Target() ir.AccessTarget { return a.res.Descriptor.Target }

// Expr returns a reference to the resource.
func (a Accessor) Expr() ir.Expression { return ir.ExprResource{Handle: a.res.Handle} }

// At returns the element expression a[index].
func (a Accessor) At(index any) ir.Expression {
	idx, ok := a.scope.mustExpr(index)
	if !ok {
		idx = ir.ExprLiteral{Value: ir.LiteralI32(0)}
	}
	return ir.Index(a.Expr(), idx)
}

// Set appends a[index]=value.
func (a Accessor) Set(index, value any) {
	a.scope.Assign(a.At(index), value)
}

// Update appends a compound assignment a[index] op= value.
func (a Accessor) Update(op ir.BinaryOperator, index, value any) {
	a.scope.AssignOp(op, a.At(index), value)
}

// localResource is work-group scratch memory. It has an identity and a
// size but no host or device backing.
type localResource struct {
	handle   ir.ResourceHandle
	typeName string
	size     uint64
}

func (l *localResource) ResourceHandle() ir.ResourceHandle { return l.handle }
func (l *localResource) TypeName() string                  { return l.typeName }
func (l *localResource) ByteSize() uint64                  { return l.size }

// Local declares work-group local scratch of count elements of typeName
// and returns a read-write accessor to it.
func (s *Scope) Local(typeName string, count uint64) Accessor {
	size, ok := ir.ScalarSize(typeName)
	if !ok {
		s.fail(NewError(ErrUnsupportedValue, s.Name(), "unknown local element type %q", typeName))
		return Accessor{scope: s}
	}
	res := &localResource{
		handle:   ir.NewResourceHandle(),
		typeName: typeName,
		size:     size * count,
	}
	return s.AccessTarget(res, ir.ModeReadWrite, ir.TargetLocal)
}
