// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package clc

import (
	"fmt"
	"strings"

	"github.com/gogpu/clkernel/ir"
)

// writeBlock writes a block of statements.
func (w *Writer) writeBlock(block ir.Block) error {
	for _, stmt := range block {
		if err := w.writeStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

// writeStatement writes a single statement.
func (w *Writer) writeStatement(stmt ir.Statement) error {
	return w.writeStatementKind(stmt.Kind)
}

// writeStatementKind writes a statement based on its kind.
func (w *Writer) writeStatementKind(kind ir.StatementKind) error {
	switch k := kind.(type) {
	case ir.StmtRaw:
		w.writeLine("%s;", k.Text)
		return nil

	case ir.StmtDecl:
		decl, err := w.declaration(k)
		if err != nil {
			return err
		}
		w.writeLine("%s;", decl)
		return nil

	case ir.StmtExpr:
		expr, err := w.writeExpression(k.Expr)
		if err != nil {
			return err
		}
		w.writeLine("%s;", expr)
		return nil

	case ir.StmtBlock:
		return w.writeBraced(k.Block)

	case ir.StmtIf:
		return w.writeIf(k)

	case ir.StmtWhile:
		return w.writeWhile(k)

	case ir.StmtFor:
		return w.writeFor(k)

	case ir.StmtBreak:
		w.writeLine("break;")
		return nil

	case ir.StmtContinue:
		w.writeLine("continue;")
		return nil

	case ir.StmtReturn:
		w.writeLine("return;")
		return nil

	case ir.StmtBarrier:
		w.writeLine("barrier(%s);", fenceFlags(k.Flags))
		return nil

	default:
		return NewError(ErrUnsupportedStatement, fmt.Sprintf("unsupported statement kind: %T", kind))
	}
}

// writeBraced writes a block enclosed in braces on their own lines.
func (w *Writer) writeBraced(block ir.Block) error {
	w.writeLine("{")
	w.pushIndent()
	if err := w.writeBlock(block); err != nil {
		return err
	}
	w.popIndent()
	w.writeLine("}")
	return nil
}

// declaration returns a declaration without the terminator.
func (w *Writer) declaration(decl ir.StmtDecl) (string, error) {
	if IsReserved(decl.Name) {
		return "", NewError(ErrReservedName, fmt.Sprintf("local name %q is reserved", decl.Name))
	}
	var b strings.Builder
	if decl.Const {
		b.WriteString("const ")
	}
	b.WriteString(decl.TypeName)
	b.WriteByte(' ')
	b.WriteString(decl.Name)
	if decl.Init != nil {
		init, err := w.writeExpression(decl.Init)
		if err != nil {
			return "", err
		}
		b.WriteString(" = ")
		b.WriteString(init)
	}
	return b.String(), nil
}

// writeIf writes an if statement with its else-if arms and else branch.
func (w *Writer) writeIf(ifStmt ir.StmtIf) error {
	condition, err := w.writeExpression(ifStmt.Condition)
	if err != nil {
		return err
	}

	w.writeLine("if(%s)", condition)
	if err := w.writeBraced(ifStmt.Accept); err != nil {
		return err
	}

	for _, arm := range ifStmt.ElseIfs {
		condition, err := w.writeExpression(arm.Condition)
		if err != nil {
			return err
		}
		w.writeLine("else if(%s)", condition)
		if err := w.writeBraced(arm.Body); err != nil {
			return err
		}
	}

	if ifStmt.HasElse {
		w.writeLine("else")
		return w.writeBraced(ifStmt.Reject)
	}
	return nil
}

// writeWhile writes a while loop.
func (w *Writer) writeWhile(loop ir.StmtWhile) error {
	condition, err := w.writeExpression(loop.Condition)
	if err != nil {
		return err
	}
	w.writeLine("while(%s)", condition)
	return w.writeBraced(loop.Body)
}

// writeFor writes a for loop.
func (w *Writer) writeFor(loop ir.StmtFor) error {
	var init, condition, step string
	var err error

	switch k := loop.Init.Kind.(type) {
	case nil:
	case ir.StmtDecl:
		if init, err = w.declaration(k); err != nil {
			return err
		}
	case ir.StmtExpr:
		if init, err = w.writeExpression(k.Expr); err != nil {
			return err
		}
	default:
		return NewError(ErrUnsupportedStatement, fmt.Sprintf("unsupported for-loop initializer: %T", k))
	}

	if loop.Condition != nil {
		if condition, err = w.writeExpression(loop.Condition); err != nil {
			return err
		}
	}
	if loop.Step != nil {
		if step, err = w.writeExpression(loop.Step); err != nil {
			return err
		}
	}

	w.writeLine("for(%s; %s; %s)", init, condition, step)
	return w.writeBraced(loop.Body)
}

// fenceFlags returns the barrier argument for the given flags.
func fenceFlags(flags ir.BarrierFlags) string {
	var parts []string
	if flags&ir.BarrierLocal != 0 {
		parts = append(parts, "CLK_LOCAL_MEM_FENCE")
	}
	if flags&ir.BarrierGlobal != 0 {
		parts = append(parts, "CLK_GLOBAL_MEM_FENCE")
	}
	if len(parts) == 0 {
		return "0"
	}
	return strings.Join(parts, "|")
}
