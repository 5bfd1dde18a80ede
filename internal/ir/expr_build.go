package ir

import (
	"math"
	"math/big"

	"gotoc/internal/ice"
	"gotoc/internal/machine"
	"gotoc/internal/types"
)

// BoolConstant is a mathematical boolean literal.
func BoolConstant(v bool) Expr { return mk(BoolLit{Value: v}, types.MakeBool()) }

func True() Expr  { return BoolConstant(true) }
func False() Expr { return BoolConstant(false) }

// CBoolConstant is a C _Bool literal.
func CBoolConstant(v bool) Expr { return mk(CBoolLit{Value: v}, types.MakeCBool()) }

// IntConstant builds an integer literal of an integer or bit-field type.
// Fixed-width types must be able to represent v.
func IntConstant(v *big.Int, t types.Type) Expr {
	ice.Assertf(v != nil, "nil integer constant")
	ice.Assertf(types.IsInteger(t) || types.IsBitField(t), "integer constant of non-integer type %v", t)
	switch w := types.UnwrapTypedef(t).(type) {
	case types.Signedbv:
		ice.Assertf(types.FitsInBits(v, w.Width(), true), "%s does not fit in %v", v, t)
	case types.Unsignedbv:
		ice.Assertf(types.FitsInBits(v, w.Width(), false), "%s does not fit in %v", v, t)
	}
	return mk(IntLit{Value: new(big.Int).Set(v)}, t)
}

// Int64Constant is IntConstant for machine-sized values.
func Int64Constant(v int64, t types.Type) Expr {
	return IntConstant(big.NewInt(v), t)
}

// Uint64Constant is IntConstant for unsigned machine-sized values.
func Uint64Constant(v uint64, t types.Type) Expr {
	return IntConstant(new(big.Int).SetUint64(v), t)
}

// CheckedIntConstant is IntConstant with a range check against mm.
func CheckedIntConstant(v *big.Int, t types.Type, mm *machine.Model) Expr {
	e := IntConstant(v, t)
	if w, ok := types.NativeWidth(t, mm); ok {
		ice.Assertf(types.FitsInBits(v, w, types.IsSigned(t, mm)), "%s does not fit in %v", v, t)
	}
	return e
}

// Float16Constant takes raw binary16 bits.
func Float16Constant(bits uint16) Expr { return mk(Float16Lit{Bits: bits}, types.MakeFloat16()) }

func FloatConstant(f float32) Expr { return FloatConstantFromBits(math.Float32bits(f)) }

// FloatConstantFromBits takes raw binary32 bits.
func FloatConstantFromBits(bits uint32) Expr { return mk(FloatLit{Bits: bits}, types.MakeFloat()) }

func DoubleConstant(f float64) Expr { return DoubleConstantFromBits(math.Float64bits(f)) }

// DoubleConstantFromBits takes raw binary64 bits.
func DoubleConstantFromBits(bits uint64) Expr { return mk(DoubleLit{Bits: bits}, types.MakeDouble()) }

// Float128Constant takes raw binary128 bits as high and low words.
func Float128Constant(hi, lo uint64) Expr {
	return mk(Float128Lit{Hi: hi, Lo: lo}, types.MakeFloat128())
}

// PointerConstant is an integer address of pointer type t.
func PointerConstant(v uint64, t types.Type) Expr {
	ice.Assertf(types.IsPointer(t), "pointer constant of non-pointer type %v", t)
	return mk(PointerLit{Value: v}, t)
}

// NullPointer is the null pointer of type t.
func NullPointer(t types.Type) Expr { return PointerConstant(0, t) }

// StringConstant is a NUL-terminated char array decayed to char*.
func StringConstant(s string) Expr {
	arr := mk(StringLit{Value: s}, types.MakeArray(types.MakeCChar(), uint64(len(s))+1))
	return arr.ArrayToPtr()
}

// Nondet is an unconstrained value of type t.
func Nondet(t types.Type) Expr {
	ice.Assertf(t != nil, "nondet of nil type")
	return mk(NondetExpr{}, t)
}

// SymbolExpr references the symbol named identifier.
func SymbolExpr(identifier string, t types.Type) Expr {
	ice.Assertf(identifier != "", "symbol expression without identifier")
	ice.Assertf(t != nil, "symbol %s has nil type", identifier)
	return mk(SymbolRef{Identifier: identifier}, t)
}

// ZeroOf is the zero value of a scalar type.
func ZeroOf(t types.Type) Expr {
	switch u := types.UnwrapTypedef(t); {
	case types.IsBool(u):
		return False()
	case types.IsCBool(u):
		return mk(CBoolLit{Value: false}, t)
	case types.IsInteger(u):
		return Int64Constant(0, t)
	case types.IsPointer(u):
		return NullPointer(t)
	}
	switch types.UnwrapTypedef(t).(type) {
	case types.Float16:
		return mk(Float16Lit{}, t)
	case types.Float:
		return mk(FloatLit{}, t)
	case types.Double:
		return mk(DoubleLit{}, t)
	case types.Float128:
		return mk(Float128Lit{}, t)
	}
	ice.Failf("no zero value for %v", t)
	return Expr{}
}

// OneOf is the unit value of a numeric or boolean type.
func OneOf(t types.Type) Expr {
	switch u := types.UnwrapTypedef(t); {
	case types.IsBool(u):
		return True()
	case types.IsCBool(u):
		return mk(CBoolLit{Value: true}, t)
	case types.IsInteger(u):
		return Int64Constant(1, t)
	}
	switch types.UnwrapTypedef(t).(type) {
	case types.Float16:
		return mk(Float16Lit{Bits: 0x3C00}, t)
	case types.Float:
		return mk(FloatLit{Bits: math.Float32bits(1)}, t)
	case types.Double:
		return mk(DoubleLit{Bits: math.Float64bits(1)}, t)
	case types.Float128:
		return mk(Float128Lit{Hi: 0x3FFF000000000000}, t)
	}
	ice.Failf("no unit value for %v", t)
	return Expr{}
}

// MaxIntExpr is the largest value of a fixed-width integer type.
func MaxIntExpr(t types.Type, mm *machine.Model) Expr {
	return IntConstant(types.MaxInt(t, mm), t)
}

// MinIntExpr is the smallest value of a fixed-width integer type.
func MinIntExpr(t types.Type, mm *machine.Model) Expr {
	return IntConstant(types.MinInt(t, mm), t)
}

// AddressOf takes the address of an addressable expression.
func (e Expr) AddressOf() Expr {
	ice.Assertf(e.CanTakeAddressOf(), "cannot take address of %T", e.value)
	return mk(AddrOfExpr{X: e}, types.MakePointer(e.typ))
}

// Dereference loads through a pointer.
func (e Expr) Dereference() Expr {
	p, ok := types.UnwrapTypedef(e.typ).(types.Pointer)
	ice.Assertf(ok, "dereference of non-pointer %v", e.typ)
	return mk(DerefExpr{X: e}, p.Elem())
}

// IndexArray indexes an array-like value.
func (e Expr) IndexArray(idx Expr) Expr {
	ice.Assertf(types.IsInteger(idx.typ), "array index of type %v", idx.typ)
	elem, ok := types.BaseType(e.typ)
	ice.Assertf(ok && types.IsArrayLike(e.typ), "index into non-array %v", e.typ)
	return mk(IndexExpr{Array: e, Index: idx}, elem)
}

// IndexPtr is *(e + idx).
func (e Expr) IndexPtr(idx Expr) Expr {
	ice.Assertf(types.IsPointer(e.typ), "pointer index into %v", e.typ)
	return e.Plus(idx).Dereference()
}

// Index dispatches to IndexPtr or IndexArray by the operand type.
func (e Expr) Index(idx Expr) Expr {
	if types.IsPointer(e.typ) {
		return e.IndexPtr(idx)
	}
	return e.IndexArray(idx)
}

// ArrayToPtr decays an array to a pointer to its first element.
func (e Expr) ArrayToPtr() Expr {
	ice.Assertf(types.IsArrayLike(e.typ), "decay of non-array %v", e.typ)
	return e.IndexArray(ZeroOf(types.MakeSSizeT())).AddressOf()
}

// Member accesses a struct or union field. Tags are resolved through st.
func (e Expr) Member(field string, st *SymbolTable) Expr {
	ice.Assertf(types.IsStructLike(e.typ) || types.IsUnionLike(e.typ), "member %s of non-aggregate %v", field, e.typ)
	c, ok := types.LookupComponent(e.typ, field, st)
	ice.Assertf(ok, "%v has no field %s", e.typ, field)
	return mk(MemberExpr{X: e, Field: field}, c.Type())
}

// Call applies a function-typed expression. Arguments must match the
// parameter types exactly; variadic functions accept extra arguments.
func (e Expr) Call(args []Expr) Expr {
	params, ret, variadic, ok := types.Signature(e.typ)
	ice.Assertf(ok, "call of non-function %v", e.typ)
	typecheckCall(params, variadic, args)
	return mk(CallExpr{Function: e, Args: args}, ret)
}

func typecheckCall(params []types.Parameter, variadic bool, args []Expr) {
	if variadic {
		ice.Assertf(len(args) >= len(params), "variadic call with %d arguments, want at least %d", len(args), len(params))
	} else {
		ice.Assertf(len(args) == len(params), "call with %d arguments, want %d", len(args), len(params))
	}
	for i, p := range params {
		ice.Assertf(types.Equal(p.Type(), args[i].typ), "argument %d: have %v, want %v", i, args[i].typ, p.Type())
	}
}

// CanCastFrom reports whether a value of type source may be cast to target.
func CanCastFrom(source, target types.Type) bool {
	if types.Equal(source, target) {
		return true
	}
	switch {
	case types.IsBool(target):
		return types.IsCBool(source) || types.IsInteger(source) || types.IsPointer(source)
	case types.IsCBool(target):
		return types.IsInteger(source) || types.IsPointer(source) || types.IsBool(source)
	case types.IsInteger(target):
		return types.IsCBool(source) || types.IsInteger(source) || types.IsFloatingPoint(source) || types.IsPointer(source)
	case types.IsFloatingPoint(target):
		return types.IsNumeric(source)
	case types.IsPointer(target):
		return types.IsInteger(source) || types.IsPointer(source)
	case types.IsEmpty(target):
		return true
	default:
		return false
	}
}

// CastTo converts e to t. Equal types return e itself; casts to bool
// compare against zero.
func (e Expr) CastTo(t types.Type) Expr {
	if types.Equal(e.typ, t) {
		return e
	}
	ice.Assertf(CanCastFrom(e.typ, t), "cannot cast %v to %v", e.typ, t)
	if types.IsBool(t) {
		return e.Neq(ZeroOf(e.typ))
	}
	return mk(TypecastExpr{X: e}, t)
}

// CastToMachineEquivalentType relabels e with a type of identical width and
// signedness on mm. The value is unchanged.
func (e Expr) CastToMachineEquivalentType(t types.Type, mm *machine.Model) Expr {
	if types.Equal(e.typ, t) {
		return e
	}
	ice.Assertf(types.IsEqualOnMachine(e.typ, t, mm), "%v and %v differ on %s", e.typ, t, mm.Architecture)
	return mk(TypecastExpr{X: e}, t)
}

// TransmuteTo reinterprets the bits of e as t. Both sides must have the
// same size.
func (e Expr) TransmuteTo(t types.Type, st *SymbolTable) Expr {
	mm := st.MachineModel()
	from := types.SizeofInBits(e.typ, st, mm)
	to := types.SizeofInBits(t, st, mm)
	ice.Assertf(from == to, "transmute of %v (%d bits) to %v (%d bits)", e.typ, from, t, to)
	return mk(ByteExtractExpr{X: e, Offset: 0}, t)
}

// ReinterpretCast is *(t*)&e.
func (e Expr) ReinterpretCast(t types.Type) Expr {
	return e.AddressOf().CastTo(types.MakePointer(t)).Dereference()
}

// Ternary is e ? then : els. Both branches must share a type.
func (e Expr) Ternary(then, els Expr) Expr {
	ice.Assertf(types.Equal(then.typ, els.typ), "ternary branches differ: %v vs %v", then.typ, els.typ)
	return mk(CondExpr{Cond: e.CastTo(types.MakeBool()), Then: then, Else: els}, then.typ)
}

// AssignExpr is the side effect lhs = rhs, valued as lhs.
func (e Expr) AssignExpr(rhs Expr) Expr {
	ice.Assertf(types.Equal(e.typ, rhs.typ), "assignment of %v to %v", rhs.typ, e.typ)
	return mk(AssignExpr{Lhs: e, Rhs: rhs}, e.typ)
}

// SelfOp builds ++/-- on an integer or pointer place.
func (e Expr) SelfOp(op SelfOperator) Expr {
	ice.Assertf(types.IsInteger(e.typ) || types.IsPointer(e.typ), "%s of %v", op, e.typ)
	return mk(SelfOpExpr{Op: op, X: e}, e.typ)
}

func (e Expr) PreIncrement() Expr  { return e.SelfOp(Preincrement) }
func (e Expr) PostIncrement() Expr { return e.SelfOp(Postincrement) }
func (e Expr) PreDecrement() Expr  { return e.SelfOp(Predecrement) }
func (e Expr) PostDecrement() Expr { return e.SelfOp(Postdecrement) }

// Binop applies a binary operator. Comparisons on vectors become their
// elementwise forms.
func (e Expr) Binop(op BinaryOperator, rhs Expr) Expr {
	if vop, ok := vectorCompare[op]; ok && types.IsVector(e.typ) {
		op = vop
	}
	ice.Assertf(TypecheckBinary(op, e.typ, rhs.typ), "operator %s does not accept %v and %v", op, e.typ, rhs.typ)
	return mk(BinaryExpr{Op: op, Lhs: e, Rhs: rhs}, binaryResultType(op, e.typ, rhs.typ))
}

// VectorCmp is an elementwise comparison with an explicit result type.
func (e Expr) VectorCmp(op BinaryOperator, rhs Expr, ret types.Type) Expr {
	if vop, ok := vectorCompare[op]; ok {
		op = vop
	}
	ice.Assertf(TypecheckBinary(op, e.typ, rhs.typ), "operator %s does not accept %v and %v", op, e.typ, rhs.typ)
	v, ok := types.UnwrapTypedef(ret).(types.Vector)
	ice.Assertf(ok && types.IsInteger(v.Elem()), "vector comparison result must be an integer vector, got %v", ret)
	in := types.UnwrapTypedef(e.typ).(types.Vector)
	ice.Assertf(in.Size() == v.Size(), "vector comparison of %d lanes into %d", in.Size(), v.Size())
	return mk(BinaryExpr{Op: op, Lhs: e, Rhs: rhs}, ret)
}

// Unop applies a unary operator.
func (e Expr) Unop(op UnaryOperator) Expr {
	ice.Assertf(op != CountLeadingZeros && op != CountTrailingZeros, "%s needs an allow-zero flag; use Ctlz/Cttz", op)
	return e.unop(op, false)
}

func (e Expr) unop(op UnaryOperator, allowZero bool) Expr {
	spec, ok := unarySpecs[op]
	ice.Assertf(ok, "unknown unary operator %d", op)
	ice.Assertf(FamilyOf(e.typ)&spec.Operand != 0, "operator %s does not accept %v", op, e.typ)
	return mk(UnaryExpr{Op: op, X: e, AllowZero: allowZero}, unaryResultType(op, e.typ))
}

// Ctlz counts leading zeros.
func (e Expr) Ctlz(allowZero bool) Expr { return e.unop(CountLeadingZeros, allowZero) }

// Cttz counts trailing zeros.
func (e Expr) Cttz(allowZero bool) Expr { return e.unop(CountTrailingZeros, allowZero) }

// Quantify binds variable, a symbol expression, over a boolean body.
func Quantify(q Quantifier, variable, body Expr) Expr {
	ice.Assertf(variable.IsSymbol(), "quantified variable must be a symbol")
	ice.Assertf(types.IsBool(body.typ), "quantifier body of type %v", body.typ)
	return mk(QuantifierExpr{Quantifier: q, Variable: variable, Body: body}, types.MakeBool())
}

func ForallExpr(variable, body Expr) Expr { return Quantify(Forall, variable, body) }
func ExistsExpr(variable, body Expr) Expr { return Quantify(Exists, variable, body) }

// StatementExpression evaluates stmts and yields the value of the final
// expression statement, which must have type t.
func StatementExpression(stmts []Stmt, t types.Type) Expr {
	ice.Assertf(len(stmts) > 0, "empty statement expression")
	last, ok := stmts[len(stmts)-1].body.(ExprStmt)
	ice.Assertf(ok, "statement expression must end in an expression statement, got %T", stmts[len(stmts)-1].body)
	ice.Assertf(types.Equal(last.X.typ, t), "statement expression yields %v, declared %v", last.X.typ, t)
	return mk(StmtExpr{Stmts: stmts}, t)
}
