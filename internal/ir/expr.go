// Package ir is the goto-program expression and statement algebra.
//
// Expr and Stmt values are immutable and are only produced by the
// constructors in this package. Every constructor checks the operand types
// against the operation's typing rule and computes the result type; a
// violation is an internal compiler error (see package ice), so an ill-typed
// Expr can not be observed. Operations that need aggregate definitions or
// target widths take the *SymbolTable or *machine.Model explicitly.
package ir

import (
	"math/big"

	"gotoc/internal/types"
)

// Expr is a typed, located expression.
type Expr struct {
	value  ExprValue
	typ    types.Type
	loc    Location
	sizeOf types.Type
}

func (e Expr) Value() ExprValue   { return e.value }
func (e Expr) Type() types.Type   { return e.typ }
func (e Expr) Location() Location { return orNone(e.loc) }
func (e Expr) IsValid() bool      { return e.value != nil && e.typ != nil }
func (e Expr) implSymbolValue()   {}

// SizeOfAnnotation is the type recorded by WithSizeOfAnnotation, if any.
func (e Expr) SizeOfAnnotation() (types.Type, bool) {
	return e.sizeOf, e.sizeOf != nil
}

// WithLocation returns e located at loc.
func (e Expr) WithLocation(loc Location) Expr {
	e.loc = loc
	return e
}

// WithSizeOfAnnotation marks e as the result of sizeof(t).
func (e Expr) WithSizeOfAnnotation(t types.Type) Expr {
	e.sizeOf = t
	return e
}

func mk(v ExprValue, t types.Type) Expr {
	return Expr{value: v, typ: t, loc: NoLocation{}}
}

// ExprValue is the closed set of expression kinds.
type ExprValue interface {
	implExprValue()
}

type AddrOfExpr struct{ X Expr }

type ArrayLit struct{ Elems []Expr }

// ArrayOfLit is an array whose every element is Elem.
type ArrayOfLit struct{ Elem Expr }

// AssignExpr is an assignment used as a value (a side effect).
type AssignExpr struct{ Lhs, Rhs Expr }

type BinaryExpr struct {
	Op       BinaryOperator
	Lhs, Rhs Expr
}

type BoolLit struct{ Value bool }

// ByteExtractExpr reinterprets the bytes of X starting at Offset.
type ByteExtractExpr struct {
	X      Expr
	Offset uint64
}

type CBoolLit struct{ Value bool }

type CallExpr struct {
	Function Expr
	Args     []Expr
}

type CondExpr struct{ Cond, Then, Else Expr }

type DerefExpr struct{ X Expr }

// Float literals hold raw IEEE-754 bits so NaN payloads and signed zeros
// survive serialization.
type (
	Float16Lit  struct{ Bits uint16 }
	FloatLit    struct{ Bits uint32 }
	DoubleLit   struct{ Bits uint64 }
	Float128Lit struct{ Hi, Lo uint64 }
)

type EmptyUnionLit struct{}

type IndexExpr struct{ Array, Index Expr }

type IntLit struct{ Value *big.Int }

type MemberExpr struct {
	X     Expr
	Field string
}

type NondetExpr struct{}

type PointerLit struct{ Value uint64 }

type QuantifierExpr struct {
	Quantifier Quantifier
	Variable   Expr
	Body       Expr
}

type SelfOpExpr struct {
	Op SelfOperator
	X  Expr
}

// StmtExpr is a statement sequence whose last statement yields the value.
type StmtExpr struct{ Stmts []Stmt }

type StringLit struct{ Value string }

// StructLit lists values for every component, padding included.
type StructLit struct{ Values []Expr }

type SymbolRef struct{ Identifier string }

type TypecastExpr struct{ X Expr }

// UnaryExpr applies Op to X. AllowZero is only meaningful for the zero
// counting operators and states whether a zero operand is defined.
type UnaryExpr struct {
	Op        UnaryOperator
	X         Expr
	AllowZero bool
}

type UnionLit struct {
	Field string
	Value Expr
}

type VectorLit struct{ Elems []Expr }

func (AddrOfExpr) implExprValue()      {}
func (ArrayLit) implExprValue()        {}
func (ArrayOfLit) implExprValue()      {}
func (AssignExpr) implExprValue()      {}
func (BinaryExpr) implExprValue()      {}
func (BoolLit) implExprValue()         {}
func (ByteExtractExpr) implExprValue() {}
func (CBoolLit) implExprValue()        {}
func (CallExpr) implExprValue()        {}
func (CondExpr) implExprValue()        {}
func (DerefExpr) implExprValue()       {}
func (Float16Lit) implExprValue()      {}
func (FloatLit) implExprValue()        {}
func (DoubleLit) implExprValue()       {}
func (Float128Lit) implExprValue()     {}
func (EmptyUnionLit) implExprValue()   {}
func (IndexExpr) implExprValue()       {}
func (IntLit) implExprValue()          {}
func (MemberExpr) implExprValue()      {}
func (NondetExpr) implExprValue()      {}
func (PointerLit) implExprValue()      {}
func (QuantifierExpr) implExprValue()  {}
func (SelfOpExpr) implExprValue()      {}
func (StmtExpr) implExprValue()        {}
func (StringLit) implExprValue()       {}
func (StructLit) implExprValue()       {}
func (SymbolRef) implExprValue()       {}
func (TypecastExpr) implExprValue()    {}
func (UnaryExpr) implExprValue()       {}
func (UnionLit) implExprValue()        {}
func (VectorLit) implExprValue()       {}

// CanTakeAddressOf reports whether &e is meaningful: only dereferences,
// index and member accesses and symbols denote storage.
func (e Expr) CanTakeAddressOf() bool {
	switch e.value.(type) {
	case DerefExpr, IndexExpr, MemberExpr, SymbolRef:
		return true
	default:
		return false
	}
}

// IsSymbol reports a symbol reference.
func (e Expr) IsSymbol() bool {
	_, ok := e.value.(SymbolRef)
	return ok
}

// IsIntConstant reports an integer literal.
func (e Expr) IsIntConstant() bool {
	_, ok := e.value.(IntLit)
	return ok
}

// IntValue returns the value of an integer literal.
func (e Expr) IntValue() (*big.Int, bool) {
	lit, ok := e.value.(IntLit)
	if !ok {
		return nil, false
	}
	return new(big.Int).Set(lit.Value), true
}
