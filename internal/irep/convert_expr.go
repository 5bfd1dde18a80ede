package irep

import (
	"math/big"

	"gotoc/internal/ice"
	"gotoc/internal/ir"
	"gotoc/internal/types"
)

// Expr converts an expression. The value node is followed by the source
// location, the type and, when present, the sizeof annotation.
func (c *Converter) Expr(e ir.Expr) *Irep {
	a := c.arena
	n := c.withType(c.withLocation(c.exprValue(e), e.Location()), e.Type())
	if t, ok := e.SizeOfAnnotation(); ok {
		n = n.WithNamedSub(a, CSizeofType, c.Type(t))
	}
	return n
}

func (c *Converter) exprs(es []ir.Expr) []*Irep {
	out := c.arena.Children(len(es))
	for i, e := range es {
		out[i] = c.Expr(e)
	}
	return out
}

func (c *Converter) constant(value *Irep) *Irep {
	return c.arena.New(Constant, nil, N(Value, value))
}

func (c *Converter) sideEffect(kind ID, ops ...*Irep) *Irep {
	return c.arena.New(SideEffect, ops, N(Statement, c.arena.Just(kind)))
}

func (c *Converter) bits(u, width uint64) *Irep { return c.arena.Just(bitPatternUint(u, width)) }

func (c *Converter) exprValue(e ir.Expr) *Irep {
	a, mm := c.arena, c.mm
	switch v := e.Value().(type) {
	case ir.IntLit:
		return c.constant(a.Just(c.intID(v.Value, e.Type())))
	case ir.AddrOfExpr:
		return a.New(AddressOf, []*Irep{c.Expr(v.X)})
	case ir.ArrayLit:
		return a.NewWithChildren(Array, c.exprs(v.Elems))
	case ir.ArrayOfLit:
		return a.New(ArrayOf, []*Irep{c.Expr(v.Elem)})
	case ir.AssignExpr:
		return c.sideEffect(Assign, c.Expr(v.Lhs), c.Expr(v.Rhs))
	case ir.BinaryExpr:
		return a.New(ID(v.Op.String()), []*Irep{c.Expr(v.Lhs), c.Expr(v.Rhs)})
	case ir.BoolLit:
		if v.Value {
			return c.constant(a.Just(True))
		}
		return c.constant(a.Just(False))
	case ir.ByteExtractExpr:
		id := ByteExtractLittleEndian
		if mm.IsBigEndian {
			id = ByteExtractBigEndian
		}
		return a.New(id, []*Irep{c.Expr(v.X), c.ssizeConstant(v.Offset)})
	case ir.CBoolLit:
		var bit uint64
		if v.Value {
			bit = 1
		}
		return c.constant(c.bits(bit, mm.BoolWidth))
	case ir.CallExpr:
		args := a.NewWithChildren(Arguments, c.exprs(v.Args))
		return c.sideEffect(FunctionCall, c.Expr(v.Function), args)
	case ir.CondExpr:
		return a.New(If, []*Irep{c.Expr(v.Cond), c.Expr(v.Then), c.Expr(v.Else)})
	case ir.DerefExpr:
		return a.New(Dereference, []*Irep{c.Expr(v.X)})
	case ir.Float16Lit:
		return c.constant(c.bits(uint64(v.Bits), 16))
	case ir.FloatLit:
		return c.constant(c.bits(uint64(v.Bits), mm.Float.Width))
	case ir.DoubleLit:
		return c.constant(c.bits(v.Bits, mm.Double.Width))
	case ir.Float128Lit:
		wide := new(big.Int).SetUint64(v.Hi)
		wide.Lsh(wide, 64).Or(wide, new(big.Int).SetUint64(v.Lo))
		return c.constant(a.Just(IDFromBitPattern(wide, 128, false)))
	case ir.EmptyUnionLit:
		return a.Just(EmptyUnion)
	case ir.IndexExpr:
		return a.New(Index, []*Irep{c.Expr(v.Array), c.Expr(v.Index)})
	case ir.MemberExpr:
		return a.New(Member, []*Irep{c.Expr(v.X)},
			N(CLvalue, a.One()),
			N(ComponentName, a.JustString(v.Field)),
		)
	case ir.NondetExpr:
		return c.sideEffect(Nondet)
	case ir.PointerLit:
		if v.Value == 0 {
			return c.constant(a.Just(NULL))
		}
		return c.constant(c.bits(v.Value, mm.PointerWidth))
	case ir.QuantifierExpr:
		id := Forall
		if v.Quantifier == ir.Exists {
			id = Exists
		}
		bound := a.New(Tuple, []*Irep{c.Expr(v.Variable)})
		return a.New(id, []*Irep{bound, c.Expr(v.Body)})
	case ir.SelfOpExpr:
		return c.sideEffect(ID(v.Op.String()), c.Expr(v.X))
	case ir.StmtExpr:
		return c.sideEffect(StatementExpression, c.Stmt(ir.Block(v.Stmts, e.Location())))
	case ir.StringLit:
		return a.New(StringConstant, nil, N(Value, a.JustString(v.Value)))
	case ir.StructLit:
		return a.NewWithChildren(Struct, c.exprs(v.Values))
	case ir.SymbolRef:
		return c.symbol(v.Identifier)
	case ir.TypecastExpr:
		return a.New(Typecast, []*Irep{c.Expr(v.X)})
	case ir.UnaryExpr:
		return c.unary(v)
	case ir.UnionLit:
		return a.New(Union, []*Irep{c.Expr(v.Value)}, N(ComponentName, a.JustString(v.Field)))
	case ir.VectorLit:
		return a.NewWithChildren(Vector, c.exprs(v.Elems))
	default:
		ice.Failf("irep: unhandled expression %T", e.Value())
		return nil
	}
}

// intID spells an integer constant: a bit pattern for fixed-width types,
// a decimal numeral for mathematical integers.
func (c *Converter) intID(v *big.Int, t types.Type) ID {
	if w, ok := types.NativeWidth(t, c.mm); ok {
		return IDFromBitPattern(v, w, types.IsSigned(t, c.mm))
	}
	return IDFromInt(v)
}

func (c *Converter) symbol(identifier string) *Irep {
	return c.arena.New(Symbol, nil, N(Identifier, c.arena.JustString(identifier)))
}

func (c *Converter) unary(v ir.UnaryExpr) *Irep {
	a := c.arena
	x := []*Irep{c.Expr(v.X)}
	switch v.Op {
	case ir.Bswap:
		return a.New(ID(v.Op.String()), x, N(BitsPerByte, a.JustUint(8)))
	case ir.CountLeadingZeros, ir.CountTrailingZeros:
		check := a.One()
		if v.AllowZero {
			check = a.Zero()
		}
		return a.New(ID(v.Op.String()), x, N(CBoundsCheck, check))
	default:
		return a.New(ID(v.Op.String()), x)
	}
}
