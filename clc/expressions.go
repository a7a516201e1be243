// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package clc

import (
	"fmt"
	"strings"

	"github.com/gogpu/clkernel/ir"
)

// NameResolver returns the generated name of a resource.
type NameResolver func(ir.ResourceHandle) (string, bool)

// ExpressionText folds an expression into compact OpenCL C text, e.g.
// "a[i]+b[i]". Resource references are resolved through names.
func ExpressionText(expr ir.Expression, names NameResolver) (string, error) {
	return writeExpr(expr, names)
}

// writeExpression folds an expression using the kernel's resource names.
func (w *Writer) writeExpression(expr ir.Expression) (string, error) {
	return writeExpr(expr, func(h ir.ResourceHandle) (string, bool) {
		name, ok := w.names[h]
		return name, ok
	})
}

// Operator precedence, higher binds tighter. Assignment is lowest.
const (
	precAssign = iota + 1
	precLogicalOr
	precLogicalAnd
	precInclusiveOr
	precExclusiveOr
	precAnd
	precEquality
	precRelational
	precShift
	precAdditive
	precMultiplicative
	precUnary
	precPostfix
)

func binaryPrecedence(op ir.BinaryOperator) int {
	switch op {
	case ir.BinaryLogicalOr:
		return precLogicalOr
	case ir.BinaryLogicalAnd:
		return precLogicalAnd
	case ir.BinaryInclusiveOr:
		return precInclusiveOr
	case ir.BinaryExclusiveOr:
		return precExclusiveOr
	case ir.BinaryAnd:
		return precAnd
	case ir.BinaryEqual, ir.BinaryNotEqual:
		return precEquality
	case ir.BinaryLess, ir.BinaryLessEqual, ir.BinaryGreater, ir.BinaryGreaterEqual:
		return precRelational
	case ir.BinaryShiftLeft, ir.BinaryShiftRight:
		return precShift
	case ir.BinaryAdd, ir.BinarySubtract:
		return precAdditive
	default:
		return precMultiplicative
	}
}

func precedence(expr ir.Expression) int {
	switch e := expr.(type) {
	case ir.ExprAssign:
		return precAssign
	case ir.ExprBinary:
		return binaryPrecedence(e.Op)
	case ir.ExprUnary:
		return precUnary
	default:
		return precPostfix
	}
}

// operand folds expr and parenthesizes it when it binds looser than minPrec.
func operand(expr ir.Expression, names NameResolver, minPrec int) (string, error) {
	text, err := writeExpr(expr, names)
	if err != nil {
		return "", err
	}
	if precedence(expr) < minPrec {
		return "(" + text + ")", nil
	}
	return text, nil
}

// separate parenthesizes operand when gluing it to token would form
// "--" or "++".
func separate(token, operand string) string {
	if operand == "" {
		return operand
	}
	last := token[len(token)-1]
	if (last == '-' || last == '+') && operand[0] == last {
		return "(" + operand + ")"
	}
	return operand
}

//nolint:gocyclo,cyclop // One case per expression kind
func writeExpr(expr ir.Expression, names NameResolver) (string, error) {
	switch e := expr.(type) {
	case nil:
		return "", NewError(ErrUnsupportedExpression, "nil expression")

	case ir.ExprResource:
		name, ok := names(e.Handle)
		if !ok {
			return "", NewError(ErrUnknownResource, fmt.Sprintf("resource %d is not registered", e.Handle))
		}
		return name, nil

	case ir.ExprLiteral:
		text := ir.FormatLiteral(e.Value)
		if text == "" {
			return "", NewError(ErrUnsupportedExpression, fmt.Sprintf("unsupported literal %T", e.Value))
		}
		return text, nil

	case ir.ExprIdent:
		return e.Name, nil

	case ir.ExprIndex:
		base, err := operand(e.Base, names, precPostfix)
		if err != nil {
			return "", err
		}
		index, err := writeExpr(e.Index, names)
		if err != nil {
			return "", err
		}
		return base + "[" + index + "]", nil

	case ir.ExprBinary:
		token := e.Op.Token()
		if e.Op == ir.BinaryNone || token == "" {
			return "", NewError(ErrUnsupportedExpression, fmt.Sprintf("unsupported binary operator %d", e.Op))
		}
		prec := binaryPrecedence(e.Op)
		left, err := operand(e.Left, names, prec)
		if err != nil {
			return "", err
		}
		// Left-associative: an equal-precedence right operand needs parentheses.
		right, err := operand(e.Right, names, prec+1)
		if err != nil {
			return "", err
		}
		return left + token + separate(token, right), nil

	case ir.ExprUnary:
		token := e.Op.Token()
		if token == "" {
			return "", NewError(ErrUnsupportedExpression, fmt.Sprintf("unsupported unary operator %d", e.Op))
		}
		inner, err := operand(e.Expr, names, precUnary)
		if err != nil {
			return "", err
		}
		return token + separate(token, inner), nil

	case ir.ExprAssign:
		target, err := writeExpr(e.Target, names)
		if err != nil {
			return "", err
		}
		value, err := operand(e.Value, names, precAssign)
		if err != nil {
			return "", err
		}
		return target + e.Op.Token() + "=" + value, nil

	case ir.ExprCall:
		args := make([]string, 0, len(e.Arguments))
		for _, arg := range e.Arguments {
			text, err := writeExpr(arg, names)
			if err != nil {
				return "", err
			}
			args = append(args, text)
		}
		return e.Function + "(" + strings.Join(args, ", ") + ")", nil

	default:
		return "", NewError(ErrUnsupportedExpression, fmt.Sprintf("unsupported expression kind: %T", expr))
	}
}
