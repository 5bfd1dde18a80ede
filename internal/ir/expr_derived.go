package ir

import (
	"gotoc/internal/ice"
	"gotoc/internal/machine"
	"gotoc/internal/types"
)

func (e Expr) Plus(rhs Expr) Expr   { return e.Binop(Plus, rhs) }
func (e Expr) Sub(rhs Expr) Expr    { return e.Binop(Minus, rhs) }
func (e Expr) Mul(rhs Expr) Expr    { return e.Binop(Mult, rhs) }
func (e Expr) Div(rhs Expr) Expr    { return e.Binop(Div, rhs) }
func (e Expr) Rem(rhs Expr) Expr    { return e.Binop(Mod, rhs) }
func (e Expr) Shl(rhs Expr) Expr    { return e.Binop(Shl, rhs) }
func (e Expr) Ashr(rhs Expr) Expr   { return e.Binop(Ashr, rhs) }
func (e Expr) Lshr(rhs Expr) Expr   { return e.Binop(Lshr, rhs) }
func (e Expr) Rol(rhs Expr) Expr    { return e.Binop(Rol, rhs) }
func (e Expr) Ror(rhs Expr) Expr    { return e.Binop(Ror, rhs) }
func (e Expr) Bitand(rhs Expr) Expr { return e.Binop(Bitand, rhs) }
func (e Expr) Bitor(rhs Expr) Expr  { return e.Binop(Bitor, rhs) }
func (e Expr) Bitxor(rhs Expr) Expr { return e.Binop(Bitxor, rhs) }
func (e Expr) Eq(rhs Expr) Expr     { return e.Binop(Equal, rhs) }
func (e Expr) Neq(rhs Expr) Expr    { return e.Binop(Notequal, rhs) }
func (e Expr) Lt(rhs Expr) Expr     { return e.Binop(Lt, rhs) }
func (e Expr) Le(rhs Expr) Expr     { return e.Binop(Le, rhs) }
func (e Expr) Gt(rhs Expr) Expr     { return e.Binop(Gt, rhs) }
func (e Expr) Ge(rhs Expr) Expr     { return e.Binop(Ge, rhs) }

// Feq and Fneq are IEEE comparisons: NaN is unequal to itself and +0 == -0.
func (e Expr) Feq(rhs Expr) Expr  { return e.Binop(IeeeFloatEqual, rhs) }
func (e Expr) Fneq(rhs Expr) Expr { return e.Binop(IeeeFloatNotequal, rhs) }

// And, Or, Xor and Implies cast both operands to bool first.
func (e Expr) And(rhs Expr) Expr {
	return e.CastTo(types.MakeBool()).Binop(And, rhs.CastTo(types.MakeBool()))
}

func (e Expr) Or(rhs Expr) Expr {
	return e.CastTo(types.MakeBool()).Binop(Or, rhs.CastTo(types.MakeBool()))
}

func (e Expr) Xor(rhs Expr) Expr {
	return e.CastTo(types.MakeBool()).Binop(Xor, rhs.CastTo(types.MakeBool()))
}

func (e Expr) Implies(rhs Expr) Expr {
	return e.CastTo(types.MakeBool()).Binop(Implies, rhs.CastTo(types.MakeBool()))
}

// Not negates a boolean; other scalars are first compared against zero.
func (e Expr) Not() Expr { return e.CastTo(types.MakeBool()).Unop(Not) }

func (e Expr) Neg() Expr      { return e.Unop(UnaryMinus) }
func (e Expr) Bitnot() Expr   { return e.Unop(Bitnot) }
func (e Expr) Popcount() Expr { return e.Unop(Popcount) }
func (e Expr) Bswap() Expr    { return e.Unop(Bswap) }

// All folds conjuncts; the empty conjunction is true.
func All(conds []Expr) Expr {
	acc := True()
	for i, c := range conds {
		if i == 0 {
			acc = c.CastTo(types.MakeBool())
			continue
		}
		acc = acc.And(c)
	}
	return acc
}

// Any folds disjuncts; the empty disjunction is false.
func Any(conds []Expr) Expr {
	acc := False()
	for i, c := range conds {
		if i == 0 {
			acc = c.CastTo(types.MakeBool())
			continue
		}
		acc = acc.Or(c)
	}
	return acc
}

// MemberOf is p->field.
func (e Expr) MemberOf(field string, st *SymbolTable) Expr {
	return e.Dereference().Member(field, st)
}

func (e Expr) IsZero() Expr { return e.Eq(ZeroOf(e.typ)) }

func (e Expr) IsNonNull() Expr {
	ice.Assertf(types.IsPointer(e.typ), "null check of non-pointer %v", e.typ)
	return e.Neq(NullPointer(e.typ))
}

func (e Expr) IsNegative() Expr {
	ice.Assertf(types.IsNumeric(e.typ), "sign of non-numeric %v", e.typ)
	return e.Lt(ZeroOf(e.typ))
}

// SameObject reports whether two pointers point into the same object.
func (e Expr) SameObject(other Expr) Expr {
	return e.Unop(PointerObject).Eq(other.Unop(PointerObject))
}

// Min selects the smaller operand.
func (e Expr) Min(other Expr) Expr { return e.Lt(other).Ternary(e, other) }

// Max selects the larger operand.
func (e Expr) Max(other Expr) Expr { return e.Lt(other).Ternary(other, e) }

// ArithmeticOverflowResult pairs a wrapped result with its overflow flag.
type ArithmeticOverflowResult struct {
	Result     Expr
	Overflowed Expr
}

func (e Expr) arithOverflow(op, check BinaryOperator, rhs Expr) ArithmeticOverflowResult {
	return ArithmeticOverflowResult{
		Result:     e.Binop(op, rhs),
		Overflowed: e.Binop(check, rhs),
	}
}

func (e Expr) AddOverflow(rhs Expr) ArithmeticOverflowResult {
	return e.arithOverflow(Plus, OverflowPlus, rhs)
}

func (e Expr) SubOverflow(rhs Expr) ArithmeticOverflowResult {
	return e.arithOverflow(Minus, OverflowMinus, rhs)
}

func (e Expr) MulOverflow(rhs Expr) ArithmeticOverflowResult {
	return e.arithOverflow(Mult, OverflowMult, rhs)
}

// OverflowResult builds the single-node form yielding a
// {result, overflowed} struct.
func (e Expr) OverflowResult(op BinaryOperator, rhs Expr) Expr {
	switch op {
	case Plus:
		op = OverflowResultPlus
	case Minus:
		op = OverflowResultMinus
	case Mult:
		op = OverflowResultMult
	}
	return e.Binop(op, rhs)
}

// SaturatingAdd clamps e + rhs to the range of e's type. On overflow the
// result is the minimum when e is negative, else the maximum.
func (e Expr) SaturatingAdd(rhs Expr, mm *machine.Model) Expr {
	ice.Assertf(types.IsInteger(e.typ), "saturating add of %v", e.typ)
	r := e.AddOverflow(rhs)
	bound := e.IsNegative().Ternary(MinIntExpr(e.typ, mm), MaxIntExpr(e.typ, mm))
	return r.Overflowed.Ternary(bound, r.Result)
}

// SaturatingSub clamps e - rhs to the range of e's type. On overflow the
// result is the maximum when rhs is negative, else the minimum.
func (e Expr) SaturatingSub(rhs Expr, mm *machine.Model) Expr {
	ice.Assertf(types.IsInteger(e.typ), "saturating sub of %v", e.typ)
	r := e.SubOverflow(rhs)
	bound := rhs.IsNegative().Ternary(MaxIntExpr(e.typ, mm), MinIntExpr(e.typ, mm))
	return r.Overflowed.Ternary(bound, r.Result)
}

// ReadOk reports whether size bytes are readable at the pointer e.
func (e Expr) ReadOk(size Expr) Expr { return e.Binop(ROk, size) }

// ArrayExpr builds an array literal of type t from its elements.
func ArrayExpr(t types.Type, elems []Expr) Expr {
	a, ok := types.UnwrapTypedef(t).(types.Array)
	ice.Assertf(ok, "array literal of non-array %v", t)
	ice.Assertf(uint64(len(elems)) == a.Size(), "array literal of %d elements for %v", len(elems), t)
	for i, el := range elems {
		ice.Assertf(types.Equal(el.typ, a.Elem()), "array element %d: have %v, want %v", i, el.typ, a.Elem())
	}
	return mk(ArrayLit{Elems: elems}, t)
}

// ArrayOf is an array of t whose every element is elem.
func ArrayOf(elem Expr, t types.Type) Expr {
	base, ok := types.BaseType(t)
	ice.Assertf(ok && types.IsArray(t), "array_of of non-array %v", t)
	ice.Assertf(types.Equal(base, elem.typ), "array_of element %v for %v", elem.typ, t)
	return mk(ArrayOfLit{Elem: elem}, t)
}

// VectorExpr builds a vector literal of type t.
func VectorExpr(t types.Type, elems []Expr) Expr {
	v, ok := types.UnwrapTypedef(t).(types.Vector)
	ice.Assertf(ok, "vector literal of non-vector %v", t)
	ice.Assertf(uint64(len(elems)) == v.Size(), "vector literal of %d lanes for %v", len(elems), t)
	for i, el := range elems {
		ice.Assertf(types.Equal(el.typ, v.Elem()), "vector lane %d: have %v, want %v", i, el.typ, v.Elem())
	}
	return mk(VectorLit{Elems: elems}, t)
}
