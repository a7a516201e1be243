// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package trace

import "github.com/gogpu/clkernel/ir"

// IfChain extends an if statement with else-if and else arms. Arms can
// only be attached while the if is the last statement of the innermost
// open block.
type IfChain struct {
	scope  *Scope
	block  *ir.Block
	pos    int
	closed bool
}

// If appends an if statement whose body is recorded by then.
func (s *Scope) If(cond any, then func()) *IfChain {
	chain := &IfChain{scope: s, closed: true}
	if err := s.live(); err != nil {
		s.fail(err)
		return chain
	}
	c, ok := s.mustExpr(cond)
	if !ok {
		return chain
	}

	accept := s.nested(then)
	chain.block = s.stack[len(s.stack)-1]
	s.emit(ir.StmtIf{Condition: c, Accept: accept})
	chain.pos = len(*chain.block) - 1
	chain.closed = false
	return chain
}

// attach checks that the chain can still take an arm.
func (c *IfChain) attach() bool {
	s := c.scope
	if err := s.live(); err != nil {
		s.fail(err)
		return false
	}
	if c.closed || c.block == nil || s.stack[len(s.stack)-1] != c.block || len(*c.block)-1 != c.pos {
		s.fail(NewError(ErrDanglingElse, s.Name(), "else arm does not directly follow its if"))
		return false
	}
	return true
}

// ElseIf adds an "else if" arm.
func (c *IfChain) ElseIf(cond any, then func()) *IfChain {
	if !c.attach() {
		return c
	}
	s := c.scope
	e, ok := s.mustExpr(cond)
	if !ok {
		return c
	}
	body := s.nested(then)

	stmt := (*c.block)[c.pos].Kind.(ir.StmtIf)
	stmt.ElseIfs = append(stmt.ElseIfs, ir.ElseIf{Condition: e, Body: body})
	(*c.block)[c.pos].Kind = stmt
	return c
}

// Else adds the final else arm. No arm can follow it.
func (c *IfChain) Else(otherwise func()) {
	if !c.attach() {
		return
	}
	body := c.scope.nested(otherwise)

	stmt := (*c.block)[c.pos].Kind.(ir.StmtIf)
	stmt.HasElse = true
	stmt.Reject = body
	(*c.block)[c.pos].Kind = stmt
	c.closed = true
}

// While appends a while loop whose body is recorded by body.
func (s *Scope) While(cond any, body func()) {
	if err := s.live(); err != nil {
		s.fail(err)
		return
	}
	c, ok := s.mustExpr(cond)
	if !ok {
		return
	}
	s.emit(ir.StmtWhile{Condition: c, Body: s.nested(body)})
}

// For appends a C for-loop. init may be nil or an ir.StmtDecl or
// ir.StmtExpr; cond and step may be nil.
func (s *Scope) For(init ir.StatementKind, cond any, step ir.Expression, body func()) {
	if err := s.live(); err != nil {
		s.fail(err)
		return
	}
	loop := ir.StmtFor{Init: ir.Statement{Kind: init}, Step: step}
	if cond != nil {
		c, ok := s.mustExpr(cond)
		if !ok {
			return
		}
		loop.Condition = c
	}
	loop.Body = s.nested(body)
	s.emit(loop)
}
