// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package trace

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/gogpu/clkernel/clc"
	"github.com/gogpu/clkernel/ir"
)

// Scope is one in-flight recording. It is owned by the goroutine that
// called Begin and must not be shared.
type Scope struct {
	tracer *Tracer

	kernel  ir.Kernel
	index   map[ir.ResourceHandle]int
	objects map[ir.ResourceHandle]Resource

	// stack[0] is the kernel body; each open block pushes its statement list.
	stack []*ir.Block

	err   error
	ended bool
}

func newScope(t *Tracer, name string) *Scope {
	s := &Scope{
		tracer:  t,
		kernel:  ir.Kernel{Name: name},
		index:   make(map[ir.ResourceHandle]int),
		objects: make(map[ir.ResourceHandle]Resource),
	}
	s.stack = []*ir.Block{&s.kernel.Body}
	return s
}

// Name returns the kernel name assigned at Begin.
func (s *Scope) Name() string {
	if s == nil {
		return ""
	}
	return s.kernel.Name
}

// Depth returns the current block nesting depth. It is 0 at the top level.
func (s *Scope) Depth() int {
	if s == nil {
		return 0
	}
	return len(s.stack) - 1
}

// Err returns the first error recorded so far.
func (s *Scope) Err() error {
	if s == nil {
		return NewError(ErrNoActiveRecording, "", "nil scope")
	}
	return s.err
}

// SetLaunch records the iteration space of the kernel.
func (s *Scope) SetLaunch(l ir.Launch) {
	if err := s.live(); err != nil {
		s.fail(err)
		return
	}
	s.kernel.Launch = l
}

// live returns an error unless the scope is recording.
func (s *Scope) live() error {
	if s == nil {
		return NewError(ErrNoActiveRecording, "", "nil scope")
	}
	if s.ended {
		return NewError(ErrNoActiveRecording, s.kernel.Name, "recording has ended")
	}
	return nil
}

// fail records err. While recording, the first error is kept and returned
// from End. After End it is forwarded to the tracer's reporter.
func (s *Scope) fail(err error) {
	switch {
	case s == nil:
		slog.Default().Warn("recording-context error", "error", err)
	case s.ended:
		s.tracer.report(err)
	default:
		s.tracer.opts.Logger.Debug("recording error", "kernel", s.kernel.Name, "error", err)
		if s.err == nil {
			s.err = err
		}
	}
}

// emit appends a statement to the innermost open block.
func (s *Scope) emit(kind ir.StatementKind) {
	if err := s.live(); err != nil {
		s.fail(err)
		return
	}
	top := s.stack[len(s.stack)-1]
	*top = append(*top, ir.Statement{Kind: kind})
}

// nested records the statements fn appends into a fresh block.
// The block is popped even if fn panics, so nesting stays balanced.
func (s *Scope) nested(fn func()) ir.Block {
	var body ir.Block
	s.stack = append(s.stack, &body)
	defer func() {
		s.stack = s.stack[:len(s.stack)-1]
	}()
	if fn != nil {
		fn()
	}
	return body
}

// expr converts a kernel value to an expression.
func (s *Scope) expr(v any) (ir.Expression, error) {
	switch x := v.(type) {
	case Accessor:
		return x.Expr(), nil
	case ir.Expression:
		return x, nil
	}
	e, err := ir.Lit(v)
	if err != nil {
		return nil, NewError(ErrUnsupportedValue, s.Name(), "%v", err)
	}
	return e, nil
}

// mustExpr is expr for builder methods that have no error return.
func (s *Scope) mustExpr(v any) (ir.Expression, bool) {
	e, err := s.expr(v)
	if err != nil {
		s.fail(err)
		return nil, false
	}
	return e, true
}

// Statement appends text as a verbatim statement at the current depth.
// The terminator is added when the kernel is rendered.
func (s *Scope) Statement(text string) {
	s.emit(ir.StmtRaw{Text: strings.TrimSuffix(strings.TrimSpace(text), ";")})
}

// Eval appends an expression statement.
func (s *Scope) Eval(expr ir.Expression) {
	s.emit(ir.StmtExpr{Expr: expr})
}

// Assign appends lhs=rhs. rhs may be an expression, an accessor or a Go scalar.
func (s *Scope) Assign(lhs ir.Expression, rhs any) {
	s.AssignOp(ir.BinaryNone, lhs, rhs)
}

// AssignOp appends a compound assignment such as lhs+=rhs.
func (s *Scope) AssignOp(op ir.BinaryOperator, lhs ir.Expression, rhs any) {
	if err := s.live(); err != nil {
		s.fail(err)
		return
	}
	if !op.Compound() {
		s.fail(NewError(ErrUnsupportedValue, s.Name(), "operator %q is not a compound assignment", op.Token()))
		return
	}
	if err := s.checkWritable(lhs); err != nil {
		s.fail(err)
		return
	}
	value, ok := s.mustExpr(rhs)
	if !ok {
		return
	}
	s.emit(ir.StmtExpr{Expr: ir.ExprAssign{Op: op, Target: lhs, Value: value}})
}

// checkWritable rejects assignment targets that are not lvalues or that
// write through a read-only resource.
func (s *Scope) checkWritable(lhs ir.Expression) error {
	switch t := lhs.(type) {
	case ir.ExprIdent:
		return nil
	case ir.ExprIndex:
		base, ok := t.Base.(ir.ExprResource)
		if !ok {
			return nil
		}
		i, ok := s.index[base.Handle]
		if !ok {
			return NewError(ErrNoActiveRecording, s.kernel.Name, "resource %d is not registered in this recording", base.Handle)
		}
		res := s.kernel.Resources[i]
		if res.Descriptor.Mode.ReadOnly() {
			return NewError(ErrReadOnlyWrite, s.kernel.Name, "%s is accessed read-only", res.Name)
		}
		return nil
	default:
		return NewError(ErrUnsupportedValue, s.kernel.Name, "cannot assign to %T", lhs)
	}
}

// Declare appends a local variable declaration and returns its identifier.
// init may be nil.
func (s *Scope) Declare(typeName, name string, init any) ir.Expression {
	return s.declare(typeName, name, init, false)
}

// Const appends a const local declaration and returns its identifier.
func (s *Scope) Const(typeName, name string, init any) ir.Expression {
	return s.declare(typeName, name, init, true)
}

func (s *Scope) declare(typeName, name string, init any, isConst bool) ir.Expression {
	decl := ir.StmtDecl{TypeName: typeName, Name: name, Const: isConst}
	if init != nil {
		value, ok := s.mustExpr(init)
		if !ok {
			return ir.Ident(name)
		}
		decl.Init = value
	}
	s.emit(decl)
	return ir.Ident(name)
}

// Block records the statements fn appends inside a nested brace block.
// Entering and leaving the block is tied to fn, so nesting is always balanced.
func (s *Scope) Block(fn func()) {
	if err := s.live(); err != nil {
		s.fail(err)
		return
	}
	s.emit(ir.StmtBlock{Block: s.nested(fn)})
}

// Break appends a break statement.
func (s *Scope) Break() { s.emit(ir.StmtBreak{}) }

// Continue appends a continue statement.
func (s *Scope) Continue() { s.emit(ir.StmtContinue{}) }

// Return appends a return statement.
func (s *Scope) Return() { s.emit(ir.StmtReturn{}) }

// Barrier appends a work-group barrier with the given memory fences.
func (s *Scope) Barrier(flags ir.BarrierFlags) { s.emit(ir.StmtBarrier{Flags: flags}) }

// Register adds res to the recording's resource map and returns its
// generated name. Registering the same handle again with the same
// descriptor returns the existing name. A different descriptor is
// rejected with ErrConflictingResource and the first registration stays.
func (s *Scope) Register(res Resource, mode ir.AccessMode, target ir.AccessTarget) (string, error) {
	if err := s.live(); err != nil {
		s.fail(err)
		return "", err
	}
	if res == nil {
		err := NewError(ErrUnsupportedValue, s.kernel.Name, "nil resource")
		s.fail(err)
		return "", err
	}

	desc := ir.ResourceDescriptor{
		TypeName: res.TypeName(),
		Mode:     mode,
		Target:   target,
		ByteSize: res.ByteSize(),
	}
	handle := res.ResourceHandle()

	if i, ok := s.index[handle]; ok {
		existing := s.kernel.Resources[i]
		if existing.Descriptor != desc {
			err := NewError(ErrConflictingResource, s.kernel.Name,
				"%s registered as %s, then as %s", existing.Name, existing.Descriptor, desc)
			s.fail(err)
			return existing.Name, err
		}
		return existing.Name, nil
	}

	name := s.tracer.opts.ResourcePrefix + strconv.Itoa(len(s.kernel.Resources))
	s.index[handle] = len(s.kernel.Resources)
	s.objects[handle] = res
	s.kernel.Resources = append(s.kernel.Resources, ir.Resource{
		Handle:     handle,
		Name:       name,
		Descriptor: desc,
	})
	return name, nil
}

// NameOf returns the source text for v: an accessor's or registered
// resource's generated name, an expression folded to text, or a Go
// scalar's literal form. Other values fail with ErrUnsupportedValue.
func (s *Scope) NameOf(v any) (string, error) {
	if s == nil {
		return "", NewError(ErrNoActiveRecording, "", "nil scope")
	}
	switch x := v.(type) {
	case Accessor:
		return x.Name(), nil
	case Resource:
		i, ok := s.index[x.ResourceHandle()]
		if !ok {
			return "", NewError(ErrUnsupportedValue, s.kernel.Name, "resource %d is not registered", x.ResourceHandle())
		}
		return s.kernel.Resources[i].Name, nil
	}

	e, err := s.expr(v)
	if err != nil {
		return "", err
	}
	text, err := clc.ExpressionText(e, s.resolve)
	if err != nil {
		return "", NewError(ErrUnsupportedValue, s.kernel.Name, "%v", err)
	}
	return text, nil
}

// resolve maps a handle to its generated name.
func (s *Scope) resolve(h ir.ResourceHandle) (string, bool) {
	i, ok := s.index[h]
	if !ok {
		return "", false
	}
	return s.kernel.Resources[i].Name, true
}

// End uninstalls the scope and returns the finished recording. It fails if
// the scope already ended, if block nesting is not back at zero, if any
// recording error occurred, or if the kernel does not validate. A failed
// End still releases the tracer.
func (s *Scope) End() (*Recording, error) {
	if err := s.live(); err != nil {
		return nil, err
	}
	if err := s.tracer.release(s); err != nil {
		return nil, err
	}
	s.ended = true

	logger := s.tracer.opts.Logger
	if depth := s.Depth(); depth != 0 {
		return nil, NewError(ErrUnbalancedBlock, s.kernel.Name, "recording ended at block depth %d", depth)
	}
	if s.err != nil {
		return nil, s.err
	}

	validationErrors, err := ir.Validate(&s.kernel)
	if err != nil {
		return nil, err
	}
	if len(validationErrors) > 0 {
		errs := make([]error, len(validationErrors))
		for i := range validationErrors {
			errs[i] = validationErrors[i]
		}
		return nil, NewError(ErrInvalidKernel, s.kernel.Name, "%v", errors.Join(errs...))
	}

	logger.Debug("recording finished",
		"kernel", s.kernel.Name,
		"statements", len(s.kernel.Body),
		"resources", len(s.kernel.Resources))

	return newRecording(s.kernel, s.objects), nil
}

// End finishes s, which must be the scope this tracer installed.
func (t *Tracer) End(s *Scope) (*Recording, error) {
	if s != nil && s.tracer != t {
		return nil, NewError(ErrForeignScope, s.Name(), "scope belongs to another tracer")
	}
	return s.End()
}
