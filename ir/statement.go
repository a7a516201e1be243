package ir

// Statement represents a statement in the IR.
// Statements have side effects and structured control flow, but do not produce values.
// The kernel body is represented as a tree of statements, with references to expressions.
type Statement struct {
	Kind StatementKind
}

// StatementKind represents the different kinds of statements.
type StatementKind interface {
	statementKind()
}

// Block represents a sequence of statements executed in order.
type Block []Statement

// StmtRaw is a verbatim source line. The backend adds the terminator.
type StmtRaw struct {
	Text string
}

func (StmtRaw) statementKind() {}

// StmtDecl declares and initializes a kernel-local variable.
type StmtDecl struct {
	TypeName string
	Name     string
	Const    bool
	Init     Expression // nil for an uninitialized declaration
}

func (StmtDecl) statementKind() {}

// StmtExpr evaluates an expression for its side effects (usually an ExprAssign).
type StmtExpr struct {
	Expr Expression
}

func (StmtExpr) statementKind() {}

// StmtBlock contains a sequence of statements in a nested scope.
type StmtBlock struct {
	Block Block
}

func (StmtBlock) statementKind() {}

// StmtIf conditionally executes Accept. ElseIfs are tried in order when
// Condition is false; Reject runs when none matched. A nil Reject means
// there is no else branch.
type StmtIf struct {
	Condition Expression
	Accept    Block
	ElseIfs   []ElseIf
	Reject    Block
	HasElse   bool
}

func (StmtIf) statementKind() {}

// ElseIf is one "else if" arm of an StmtIf chain.
type ElseIf struct {
	Condition Expression
	Body      Block
}

// StmtWhile executes Body while Condition holds.
type StmtWhile struct {
	Condition Expression
	Body      Block
}

func (StmtWhile) statementKind() {}

// StmtFor is a C for-loop. Any of Init, Condition and Step may be nil.
type StmtFor struct {
	Init      Statement
	Condition Expression
	Step      Expression
	Body      Block
}

func (StmtFor) statementKind() {}

// StmtBreak exits the innermost enclosing loop.
type StmtBreak struct{}

func (StmtBreak) statementKind() {}

// StmtContinue skips to the next iteration of the innermost enclosing loop.
type StmtContinue struct{}

func (StmtContinue) statementKind() {}

// StmtReturn returns from the kernel.
type StmtReturn struct{}

func (StmtReturn) statementKind() {}

// StmtBarrier synchronizes work-items within the work group.
type StmtBarrier struct {
	Flags BarrierFlags
}

func (StmtBarrier) statementKind() {}

// BarrierFlags represents memory fence flags using bitflags pattern.
type BarrierFlags uint32

const (
	// BarrierLocal fences local memory accesses.
	BarrierLocal BarrierFlags = 1 << 0
	// BarrierGlobal fences global memory accesses.
	BarrierGlobal BarrierFlags = 1 << 1
)
