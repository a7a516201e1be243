package ir

import (
	"fmt"
)

// ValidationError represents a validation error.
type ValidationError struct {
	Message string
	// Optional context
	Kernel    string
	Statement int
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Kernel != "" {
		if e.Statement >= 0 {
			return fmt.Sprintf("in kernel %s, statement %d: %s", e.Kernel, e.Statement, e.Message)
		}
		return fmt.Sprintf("in kernel %s: %s", e.Kernel, e.Message)
	}
	return e.Message
}

// Validator validates traced kernels.
type Validator struct {
	kernel  *Kernel
	errors  []ValidationError
	context validationContext
}

// validationContext holds current validation context.
type validationContext struct {
	loopDepth int
	statement int
	known     map[ResourceHandle]struct{}
}

// Validate checks the kernel for correctness.
// Returns validation errors if any, or nil if the kernel is valid.
func Validate(kernel *Kernel) ([]ValidationError, error) {
	if kernel == nil {
		return nil, fmt.Errorf("kernel is nil")
	}

	v := &Validator{
		kernel: kernel,
		errors: make([]ValidationError, 0),
	}

	v.ValidateKernel()

	if len(v.errors) > 0 {
		return v.errors, nil
	}
	return nil, nil
}

// ValidateKernel validates the complete kernel.
func (v *Validator) ValidateKernel() {
	v.context = validationContext{statement: -1, known: make(map[ResourceHandle]struct{})}

	if !isIdentifier(v.kernel.Name) {
		v.addError(fmt.Sprintf("kernel name %q is not a valid identifier", v.kernel.Name))
	}

	v.validateResources()
	v.validateLaunch()

	for i := range v.kernel.Body {
		v.context.statement = i
		v.validateStatement(&v.kernel.Body[i])
	}
	v.context.statement = -1
}

// validateResources checks parameter declarations.
func (v *Validator) validateResources() {
	names := make(map[string]bool)

	for i, res := range v.kernel.Resources {
		if _, dup := v.context.known[res.Handle]; dup {
			v.addError(fmt.Sprintf("resource %d: handle %d registered twice", i, res.Handle))
		}
		v.context.known[res.Handle] = struct{}{}

		if !isIdentifier(res.Name) {
			v.addError(fmt.Sprintf("resource %d: name %q is not a valid identifier", i, res.Name))
		}
		if names[res.Name] {
			v.addError(fmt.Sprintf("duplicate resource name %q", res.Name))
		}
		names[res.Name] = true

		d := res.Descriptor
		if d.TypeName == "" {
			v.addError(fmt.Sprintf("resource %d (%s): empty type name", i, res.Name))
		}
		if !d.Mode.Valid() {
			v.addError(fmt.Sprintf("resource %d (%s): invalid access mode %v", i, res.Name, d.Mode))
		}
		if !d.Target.Valid() {
			v.addError(fmt.Sprintf("resource %d (%s): invalid access target %v", i, res.Name, d.Target))
		}
		if d.Target == TargetConstantBuffer && !d.Mode.ReadOnly() {
			v.addError(fmt.Sprintf("resource %d (%s): constant buffer must be read-only, got %v", i, res.Name, d.Mode))
		}
		if d.Target == TargetLocal && d.ByteSize == 0 {
			v.addError(fmt.Sprintf("resource %d (%s): local resource needs a non-zero size", i, res.Name))
		}
	}
}

// validateLaunch checks the iteration space.
func (v *Validator) validateLaunch() {
	l := v.kernel.Launch
	if l.Dims < 0 || l.Dims > 3 {
		v.addError(fmt.Sprintf("launch has %d dimensions, want 0 to 3", l.Dims))
		return
	}
	for d := 0; d < l.Dims; d++ {
		if l.Global[d] == 0 {
			v.addError(fmt.Sprintf("launch: global size of dimension %d is zero", d))
			continue
		}
		if l.Local[d] != 0 && l.Global[d]%l.Local[d] != 0 {
			v.addError(fmt.Sprintf("launch: local size %d does not divide global size %d in dimension %d", l.Local[d], l.Global[d], d))
		}
	}
}

// validateBlock validates a block of statements.
func (v *Validator) validateBlock(block Block) {
	for i := range block {
		v.validateStatement(&block[i])
	}
}

// validateStatement validates a statement and its children.
//
//nolint:gocyclo,cyclop // Statement validation requires checking many statement variants
func (v *Validator) validateStatement(stmt *Statement) {
	switch s := stmt.Kind.(type) {
	case nil:
		v.addErrorInStatement("statement has nil kind")

	case StmtRaw:
		if s.Text == "" {
			v.addErrorInStatement("empty raw statement")
		}

	case StmtDecl:
		if !isIdentifier(s.Name) {
			v.addErrorInStatement(fmt.Sprintf("declaration name %q is not a valid identifier", s.Name))
		}
		if s.TypeName == "" {
			v.addErrorInStatement(fmt.Sprintf("declaration %q has empty type", s.Name))
		}
		if s.Const && s.Init == nil {
			v.addErrorInStatement(fmt.Sprintf("const declaration %q needs an initializer", s.Name))
		}
		if s.Init != nil {
			v.validateExpression(s.Init)
		}

	case StmtExpr:
		v.validateExpression(s.Expr)

	case StmtBlock:
		v.validateBlock(s.Block)

	case StmtIf:
		v.validateCondition(s.Condition)
		v.validateBlock(s.Accept)
		for _, arm := range s.ElseIfs {
			v.validateCondition(arm.Condition)
			v.validateBlock(arm.Body)
		}
		if !s.HasElse && len(s.Reject) > 0 {
			v.addErrorInStatement("if statement has else body without else branch")
		}
		v.validateBlock(s.Reject)

	case StmtWhile:
		v.validateCondition(s.Condition)
		v.context.loopDepth++
		v.validateBlock(s.Body)
		v.context.loopDepth--

	case StmtFor:
		if s.Init.Kind != nil {
			v.validateStatement(&s.Init)
		}
		if s.Condition != nil {
			v.validateExpression(s.Condition)
		}
		if s.Step != nil {
			v.validateExpression(s.Step)
		}
		v.context.loopDepth++
		v.validateBlock(s.Body)
		v.context.loopDepth--

	case StmtBreak:
		if v.context.loopDepth == 0 {
			v.addErrorInStatement("break outside of loop")
		}

	case StmtContinue:
		if v.context.loopDepth == 0 {
			v.addErrorInStatement("continue outside of loop")
		}

	case StmtReturn:
		// Always valid

	case StmtBarrier:
		if s.Flags == 0 {
			v.addErrorInStatement("barrier without fence flags")
		}
	}
}

// validateCondition validates a control-flow condition.
func (v *Validator) validateCondition(cond Expression) {
	if cond == nil {
		v.addErrorInStatement("missing condition")
		return
	}
	v.validateExpression(cond)
}

// validateExpression checks resource references and assignment targets.
func (v *Validator) validateExpression(expr Expression) {
	switch e := expr.(type) {
	case nil:
		v.addErrorInStatement("nil expression")

	case ExprResource:
		if _, ok := v.context.known[e.Handle]; !ok {
			v.addErrorInStatement(fmt.Sprintf("reference to unregistered resource %d", e.Handle))
		}

	case ExprLiteral:
		if e.Value == nil {
			v.addErrorInStatement("literal without value")
		}

	case ExprIdent:
		if !isIdentifier(e.Name) {
			v.addErrorInStatement(fmt.Sprintf("identifier %q is not valid", e.Name))
		}

	case ExprIndex:
		v.validateExpression(e.Base)
		v.validateExpression(e.Index)

	case ExprBinary:
		if e.Op == BinaryNone || e.Op.Token() == "" {
			v.addErrorInStatement(fmt.Sprintf("invalid binary operator %d", e.Op))
		}
		v.validateExpression(e.Left)
		v.validateExpression(e.Right)

	case ExprUnary:
		if e.Op.Token() == "" {
			v.addErrorInStatement(fmt.Sprintf("invalid unary operator %d", e.Op))
		}
		v.validateExpression(e.Expr)

	case ExprAssign:
		switch e.Target.(type) {
		case ExprIdent, ExprIndex:
		default:
			v.addErrorInStatement(fmt.Sprintf("cannot assign to %T", e.Target))
		}
		if !e.Op.Compound() {
			v.addErrorInStatement(fmt.Sprintf("operator %q is not a compound assignment", e.Op.Token()))
		}
		v.validateExpression(e.Target)
		v.validateExpression(e.Value)

	case ExprCall:
		if !isIdentifier(e.Function) {
			v.addErrorInStatement(fmt.Sprintf("function name %q is not valid", e.Function))
		}
		for _, arg := range e.Arguments {
			v.validateExpression(arg)
		}
	}
}

// isIdentifier reports whether s is a C identifier.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}

// addError adds a kernel-level validation error.
func (v *Validator) addError(msg string) {
	v.errors = append(v.errors, ValidationError{
		Message:   msg,
		Kernel:    v.kernel.Name,
		Statement: -1,
	})
}

// addErrorInStatement adds a validation error for the current top-level statement.
func (v *Validator) addErrorInStatement(msg string) {
	v.errors = append(v.errors, ValidationError{
		Message:   msg,
		Kernel:    v.kernel.Name,
		Statement: v.context.statement,
	})
}
