package ir

import (
	"gotoc/internal/ice"
	"gotoc/internal/types"
)

// Stmt is a located goto-program statement.
type Stmt struct {
	body StmtBody
	loc  Location
}

func (s Stmt) Body() StmtBody     { return s.body }
func (s Stmt) Location() Location { return orNone(s.loc) }
func (s Stmt) IsValid() bool      { return s.body != nil }
func (s Stmt) implSymbolValue()   {}

// WithLocation returns s located at loc.
func (s Stmt) WithLocation(loc Location) Stmt {
	s.loc = loc
	return s
}

// StmtBody is the closed set of statement kinds.
type StmtBody interface {
	implStmtBody()
}

type AssignStmt struct{ Lhs, Rhs Expr }

// AssertStmt is a checked property. Its class and message live in the
// statement's PropertyLocation.
type AssertStmt struct{ Cond Expr }

type AssumeStmt struct{ Cond Expr }

// AtomicBlockStmt runs its statements without interleaving.
type AtomicBlockStmt struct{ Stmts []Stmt }

type BlockStmt struct{ Stmts []Stmt }

type BreakStmt struct{}

type ContinueStmt struct{}

// DeadStmt ends the lifetime of a local.
type DeadStmt struct{ X Expr }

// DeclStmt introduces a local; Value is nil for an uninitialized one.
type DeclStmt struct {
	Lhs   Expr
	Value *Expr
}

// DeinitStmt havocs a place.
type DeinitStmt struct{ X Expr }

type ExprStmt struct{ X Expr }

type ForStmt struct {
	Init   Stmt
	Cond   Expr
	Update Stmt
	Body   Stmt
}

// FunctionCallStmt calls Function; Lhs is nil when the result is dropped.
type FunctionCallStmt struct {
	Lhs      *Expr
	Function Expr
	Args     []Expr
}

type GotoStmt struct {
	Dest           string
	LoopInvariants *Expr
}

type IfThenElseStmt struct {
	Cond Expr
	Then Stmt
	Else *Stmt
}

type LabelStmt struct {
	Label string
	Body  Stmt
}

type ReturnStmt struct{ Value *Expr }

type SkipStmt struct{}

type SwitchStmt struct {
	Control Expr
	Cases   []SwitchCase
	Default *Stmt
}

// SwitchCase is one arm of a switch.
type SwitchCase struct {
	Case Expr
	Body Stmt
}

type WhileStmt struct {
	Cond Expr
	Body Stmt
}

func (AssignStmt) implStmtBody()       {}
func (AssertStmt) implStmtBody()       {}
func (AssumeStmt) implStmtBody()       {}
func (AtomicBlockStmt) implStmtBody()  {}
func (BlockStmt) implStmtBody()        {}
func (BreakStmt) implStmtBody()        {}
func (ContinueStmt) implStmtBody()     {}
func (DeadStmt) implStmtBody()         {}
func (DeclStmt) implStmtBody()         {}
func (DeinitStmt) implStmtBody()       {}
func (ExprStmt) implStmtBody()         {}
func (ForStmt) implStmtBody()          {}
func (FunctionCallStmt) implStmtBody() {}
func (GotoStmt) implStmtBody()         {}
func (IfThenElseStmt) implStmtBody()   {}
func (LabelStmt) implStmtBody()        {}
func (ReturnStmt) implStmtBody()       {}
func (SkipStmt) implStmtBody()         {}
func (SwitchStmt) implStmtBody()       {}
func (WhileStmt) implStmtBody()        {}

func stmt(body StmtBody, loc Location) Stmt {
	return Stmt{body: body, loc: orNone(loc)}
}

func assertBool(what string, cond Expr) {
	ice.Assertf(types.IsBool(cond.typ), "%s condition must be bool, got %v", what, cond.typ)
}

// Assign stores rhs into lhs. Both sides must share a type.
func Assign(lhs, rhs Expr, loc Location) Stmt {
	ice.Assertf(types.Equal(lhs.typ, rhs.typ), "assignment of %v to %v", rhs.typ, lhs.typ)
	return stmt(AssignStmt{Lhs: lhs, Rhs: rhs}, loc)
}

// Assert checks cond. The property class and message are attached to the
// location.
func Assert(cond Expr, propertyClass, message string, loc Location) Stmt {
	assertBool("assert", cond)
	ice.Assertf(propertyClass != "", "assert without a property class")
	ice.Assertf(message != "", "assert without a message")
	return stmt(AssertStmt{Cond: cond}, ToPropertyLocation(loc, propertyClass, message))
}

// AssertFalse is a property that always fails.
func AssertFalse(propertyClass, message string, loc Location) Stmt {
	return Assert(False(), propertyClass, message, loc)
}

func Assume(cond Expr, loc Location) Stmt {
	assertBool("assume", cond)
	return stmt(AssumeStmt{Cond: cond}, loc)
}

// AssumeFalse blocks every path reaching it.
func AssumeFalse(loc Location) Stmt { return Assume(False(), loc) }

// Cover reports whether cond is reachable and satisfiable: the verifier
// fails the negated assertion exactly when cond can hold.
func Cover(cond Expr, message string, loc Location) Stmt {
	assertBool("cover", cond)
	return Assert(cond.Not(), "cover", message, loc)
}

// Unreachable asserts that control never reaches loc.
func Unreachable(message string, loc Location) Stmt {
	return AssertFalse("unreachable", message, loc)
}

func AtomicBlock(stmts []Stmt, loc Location) Stmt {
	return stmt(AtomicBlockStmt{Stmts: stmts}, loc)
}

func Block(stmts []Stmt, loc Location) Stmt {
	return stmt(BlockStmt{Stmts: stmts}, loc)
}

func Break(loc Location) Stmt    { return stmt(BreakStmt{}, loc) }
func Continue(loc Location) Stmt { return stmt(ContinueStmt{}, loc) }
func Skip(loc Location) Stmt     { return stmt(SkipStmt{}, loc) }

func Dead(sym Expr, loc Location) Stmt {
	ice.Assertf(sym.IsSymbol(), "dead of non-symbol %T", sym.value)
	return stmt(DeadStmt{X: sym}, loc)
}

// Decl declares sym, optionally initialized to value.
func Decl(sym Expr, value *Expr, loc Location) Stmt {
	ice.Assertf(sym.IsSymbol(), "declaration of non-symbol %T", sym.value)
	if value != nil {
		ice.Assertf(types.Equal(sym.typ, value.typ), "declaration of %v initialized with %v", sym.typ, value.typ)
	}
	return stmt(DeclStmt{Lhs: sym, Value: value}, loc)
}

func Deinit(place Expr, loc Location) Stmt {
	return stmt(DeinitStmt{X: place}, loc)
}

// Expression evaluates e for its side effects.
func Expression(e Expr, loc Location) Stmt {
	return stmt(ExprStmt{X: e}, loc)
}

func For(init Stmt, cond Expr, update, body Stmt, loc Location) Stmt {
	assertBool("for", cond)
	return stmt(ForStmt{Init: init, Cond: cond, Update: update, Body: body}, loc)
}

// FunctionCall calls function with args, storing the result into lhs
// when lhs is non-nil.
func FunctionCall(lhs *Expr, function Expr, args []Expr, loc Location) Stmt {
	params, ret, variadic, ok := types.Signature(function.typ)
	ice.Assertf(ok, "call of non-function %v", function.typ)
	typecheckCall(params, variadic, args)
	if lhs != nil {
		ice.Assertf(types.Equal(lhs.typ, ret), "call result %v stored into %v", ret, lhs.typ)
	}
	return stmt(FunctionCallStmt{Lhs: lhs, Function: function, Args: args}, loc)
}

func Goto(dest string, loc Location) Stmt {
	ice.Assertf(dest != "", "goto without destination")
	return stmt(GotoStmt{Dest: dest}, loc)
}

// WithLoopContracts attaches a loop invariant to a backward goto.
func (s Stmt) WithLoopContracts(invariant Expr) Stmt {
	g, ok := s.body.(GotoStmt)
	ice.Assertf(ok, "loop contracts on %T", s.body)
	assertBool("loop invariant", invariant)
	g.LoopInvariants = &invariant
	s.body = g
	return s
}

func IfThenElse(cond Expr, then Stmt, els *Stmt, loc Location) Stmt {
	assertBool("if", cond)
	return stmt(IfThenElseStmt{Cond: cond, Then: then, Else: els}, loc)
}

// WithLabel returns s labelled with label, located where s is.
func (s Stmt) WithLabel(label string) Stmt {
	ice.Assertf(label != "", "empty label")
	return stmt(LabelStmt{Label: label, Body: s}, s.loc)
}

func Return(value *Expr, loc Location) Stmt {
	return stmt(ReturnStmt{Value: value}, loc)
}

// Case is one arm of a switch on a value of the control's type.
func Case(value Expr, body Stmt) SwitchCase {
	return SwitchCase{Case: value, Body: body}
}

func Switch(control Expr, cases []SwitchCase, dflt *Stmt, loc Location) Stmt {
	ice.Assertf(types.IsInteger(control.typ), "switch on %v", control.typ)
	for i, c := range cases {
		ice.Assertf(types.Equal(c.Case.typ, control.typ), "switch case %d: have %v, want %v", i, c.Case.typ, control.typ)
	}
	return stmt(SwitchStmt{Control: control, Cases: cases, Default: dflt}, loc)
}

func While(cond Expr, body Stmt, loc Location) Stmt {
	assertBool("while", cond)
	return stmt(WhileStmt{Cond: cond, Body: body}, loc)
}

// AsStmt wraps an expression into an expression statement at the
// expression's location.
func (e Expr) AsStmt() Stmt { return Expression(e, e.Location()) }

// Ptr returns a pointer to a copy of e, for optional operands.
func (e Expr) Ptr() *Expr { return &e }

// Ptr returns a pointer to a copy of s, for optional branches.
func (s Stmt) Ptr() *Stmt { return &s }
