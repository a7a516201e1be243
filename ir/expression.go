package ir

import (
	"fmt"
	"math"
	"strconv"
)

// Expression is a node of an expression tree.
// The set of node kinds is closed; backends switch on the concrete type.
type Expression interface {
	expressionKind()
}

// ExprResource references a registered resource by handle.
type ExprResource struct {
	Handle ResourceHandle
}

func (ExprResource) expressionKind() {}

// ExprLiteral is a literal constant value.
type ExprLiteral struct {
	Value LiteralValue
}

func (ExprLiteral) expressionKind() {}

// LiteralValue represents the value of a literal.
type LiteralValue interface {
	literalValue()
}

// LiteralI32 represents a 32-bit signed integer literal.
type LiteralI32 int32

func (LiteralI32) literalValue() {}

// LiteralU32 represents a 32-bit unsigned integer literal.
type LiteralU32 uint32

func (LiteralU32) literalValue() {}

// LiteralI64 represents a 64-bit signed integer literal.
type LiteralI64 int64

func (LiteralI64) literalValue() {}

// LiteralU64 represents a 64-bit unsigned integer literal.
type LiteralU64 uint64

func (LiteralU64) literalValue() {}

// LiteralF32 represents a 32-bit float literal (may not be NaN or infinity).
type LiteralF32 float32

func (LiteralF32) literalValue() {}

// LiteralF64 represents a 64-bit float literal (may not be NaN or infinity).
type LiteralF64 float64

func (LiteralF64) literalValue() {}

// LiteralBool represents a boolean literal.
type LiteralBool bool

func (LiteralBool) literalValue() {}

// ExprIdent is a kernel-local identifier such as a work-item index.
type ExprIdent struct {
	Name string
}

func (ExprIdent) expressionKind() {}

// ExprIndex performs array access with a computed index.
type ExprIndex struct {
	Base  Expression
	Index Expression
}

func (ExprIndex) expressionKind() {}

// ExprBinary applies a binary operator.
type ExprBinary struct {
	Op    BinaryOperator
	Left  Expression
	Right Expression
}

func (ExprBinary) expressionKind() {}

// ExprUnary applies a unary operator.
type ExprUnary struct {
	Op   UnaryOperator
	Expr Expression
}

func (ExprUnary) expressionKind() {}

// ExprAssign stores Value into Target. Op is BinaryNone for plain
// assignment, otherwise the compound operator (+=, -=, ...).
type ExprAssign struct {
	Op     BinaryOperator
	Target Expression
	Value  Expression
}

func (ExprAssign) expressionKind() {}

// ExprCall calls a built-in function.
type ExprCall struct {
	Function  string
	Arguments []Expression
}

func (ExprCall) expressionKind() {}

// BinaryOperator represents binary operators.
type BinaryOperator uint8

const (
	BinaryNone BinaryOperator = iota
	BinaryAdd
	BinarySubtract
	BinaryMultiply
	BinaryDivide
	BinaryModulo
	BinaryEqual
	BinaryNotEqual
	BinaryLess
	BinaryLessEqual
	BinaryGreater
	BinaryGreaterEqual
	BinaryAnd
	BinaryExclusiveOr
	BinaryInclusiveOr
	BinaryLogicalAnd
	BinaryLogicalOr
	BinaryShiftLeft
	BinaryShiftRight
)

var binaryTokens = [...]string{
	BinaryNone:         "",
	BinaryAdd:          "+",
	BinarySubtract:     "-",
	BinaryMultiply:     "*",
	BinaryDivide:       "/",
	BinaryModulo:       "%",
	BinaryEqual:        "==",
	BinaryNotEqual:     "!=",
	BinaryLess:         "<",
	BinaryLessEqual:    "<=",
	BinaryGreater:      ">",
	BinaryGreaterEqual: ">=",
	BinaryAnd:          "&",
	BinaryExclusiveOr:  "^",
	BinaryInclusiveOr:  "|",
	BinaryLogicalAnd:   "&&",
	BinaryLogicalOr:    "||",
	BinaryShiftLeft:    "<<",
	BinaryShiftRight:   ">>",
}

// Token returns the C token for the operator.
func (op BinaryOperator) Token() string {
	if int(op) < len(binaryTokens) {
		return binaryTokens[op]
	}
	return ""
}

// Compound reports whether op may prefix "=" in an assignment.
// BinaryNone is a plain assignment.
func (op BinaryOperator) Compound() bool {
	switch op {
	case BinaryNone, BinaryAdd, BinarySubtract, BinaryMultiply, BinaryDivide, BinaryModulo,
		BinaryAnd, BinaryExclusiveOr, BinaryInclusiveOr, BinaryShiftLeft, BinaryShiftRight:
		return true
	default:
		return false
	}
}

// UnaryOperator represents unary operators.
type UnaryOperator uint8

const (
	UnaryNegate UnaryOperator = iota
	UnaryLogicalNot
	UnaryBitwiseNot
)

// Token returns the C token for the operator.
func (op UnaryOperator) Token() string {
	switch op {
	case UnaryNegate:
		return "-"
	case UnaryLogicalNot:
		return "!"
	case UnaryBitwiseNot:
		return "~"
	default:
		return ""
	}
}

// Expression builders. They keep call sites in traced kernel bodies short.

// Ident returns an identifier expression.
func Ident(name string) Expression { return ExprIdent{Name: name} }

// Index returns base[index].
func Index(base, index Expression) Expression { return ExprIndex{Base: base, Index: index} }

// Bin returns left op right.
func Bin(op BinaryOperator, left, right Expression) Expression {
	return ExprBinary{Op: op, Left: left, Right: right}
}

// Add returns left+right.
func Add(left, right Expression) Expression { return Bin(BinaryAdd, left, right) }

// Sub returns left-right.
func Sub(left, right Expression) Expression { return Bin(BinarySubtract, left, right) }

// Mul returns left*right.
func Mul(left, right Expression) Expression { return Bin(BinaryMultiply, left, right) }

// Div returns left/right.
func Div(left, right Expression) Expression { return Bin(BinaryDivide, left, right) }

// Less returns left<right.
func Less(left, right Expression) Expression { return Bin(BinaryLess, left, right) }

// Eq returns left==right.
func Eq(left, right Expression) Expression { return Bin(BinaryEqual, left, right) }

// Not returns !expr.
func Not(expr Expression) Expression { return ExprUnary{Op: UnaryLogicalNot, Expr: expr} }

// Neg returns -expr.
func Neg(expr Expression) Expression { return ExprUnary{Op: UnaryNegate, Expr: expr} }

// Call returns function(args...).
func Call(function string, args ...Expression) Expression {
	return ExprCall{Function: function, Arguments: args}
}

// Lit converts a Go scalar to a literal expression. An Expression is
// returned unchanged. Other values are rejected.
func Lit(v any) (Expression, error) {
	switch x := v.(type) {
	case Expression:
		return x, nil
	case int:
		if x >= math.MinInt32 && x <= math.MaxInt32 {
			return ExprLiteral{Value: LiteralI32(x)}, nil
		}
		return ExprLiteral{Value: LiteralI64(x)}, nil
	case int32:
		return ExprLiteral{Value: LiteralI32(x)}, nil
	case int64:
		return ExprLiteral{Value: LiteralI64(x)}, nil
	case uint32:
		return ExprLiteral{Value: LiteralU32(x)}, nil
	case uint64:
		return ExprLiteral{Value: LiteralU64(x)}, nil
	case float32:
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return nil, fmt.Errorf("literal %v is not finite", x)
		}
		return ExprLiteral{Value: LiteralF32(x)}, nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, fmt.Errorf("literal %v is not finite", x)
		}
		return ExprLiteral{Value: LiteralF64(x)}, nil
	case bool:
		return ExprLiteral{Value: LiteralBool(x)}, nil
	default:
		return nil, fmt.Errorf("unsupported value of type %T", v)
	}
}

// MustLit is like Lit but panics on unsupported values.
// It is meant for constants in kernel bodies.
func MustLit(v any) Expression {
	e, err := Lit(v)
	if err != nil {
		panic(err)
	}
	return e
}

// FormatLiteral returns the C source form of a literal value.
func FormatLiteral(v LiteralValue) string {
	switch x := v.(type) {
	case LiteralI32:
		if x == math.MinInt32 {
			return "(-2147483647-1)"
		}
		return strconv.FormatInt(int64(x), 10)
	case LiteralU32:
		return strconv.FormatUint(uint64(x), 10) + "u"
	case LiteralI64:
		if x == math.MinInt64 {
			return "(-9223372036854775807l-1)"
		}
		return strconv.FormatInt(int64(x), 10) + "l"
	case LiteralU64:
		return strconv.FormatUint(uint64(x), 10) + "ul"
	case LiteralF32:
		return formatFloat(float64(x), 32) + "f"
	case LiteralF64:
		return formatFloat(float64(x), 64)
	case LiteralBool:
		if x {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

// formatFloat always keeps a decimal point so the literal stays a float.
func formatFloat(f float64, bits int) string {
	s := strconv.FormatFloat(f, 'g', -1, bits)
	for _, c := range s {
		if c == '.' || c == 'e' || c == 'E' {
			return s
		}
	}
	return s + ".0"
}
