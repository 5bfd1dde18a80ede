package ir

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gotoc/internal/machine"
	"gotoc/internal/types"
)

func TestAssertAttachesPropertyLocation(t *testing.T) {
	c := sym("c", types.MakeBool())
	s := Assert(c, "overflow", "attempt to add with overflow", Loc("a.rs", "main", 4, 2))
	prop, ok := s.Location().(PropertyLocation)
	require.True(t, ok)
	require.Equal(t, "overflow", prop.PropertyClass)
	require.Equal(t, uint64(4), prop.Line)
	require.True(t, prop.HasCol)

	unknown := Assert(c, "cover", "msg", None())
	_, ok = unknown.Location().(PropertyUnknownLocation)
	require.True(t, ok)

	mustICE(t, func() { Assert(sym("x", types.MakeCInt()), "c", "m", None()) })
	mustICE(t, func() { Assert(c, "", "m", None()) })
	mustICE(t, func() { Assert(c, "c", "", None()) })
}

func TestCoverNegatesCondition(t *testing.T) {
	c := sym("c", types.MakeBool())
	s := Cover(c, "reachable", None())
	a := s.Body().(AssertStmt)
	require.Equal(t, Not, a.Cond.Value().(UnaryExpr).Op)
	require.Equal(t, "cover", s.Location().(PropertyUnknownLocation).PropertyClass)
}

func TestStatementTypeChecks(t *testing.T) {
	i, l := sym("i", types.MakeCInt()), sym("l", types.MakeCLongInt())
	c := sym("c", types.MakeBool())

	mustICE(t, func() { Assign(i, l, None()) })
	mustICE(t, func() { Assume(i, None()) })
	mustICE(t, func() { While(i, Skip(None()), None()) })
	mustICE(t, func() { IfThenElse(i, Skip(None()), nil, None()) })
	mustICE(t, func() { For(Skip(None()), i, Skip(None()), Skip(None()), None()) })
	mustICE(t, func() { Decl(i.Plus(i), nil, None()) })
	mustICE(t, func() { Decl(i, l.Ptr(), None()) })
	mustICE(t, func() { Dead(Int64Constant(1, types.MakeCInt()), None()) })
	mustICE(t, func() { Goto("", None()) })
	mustICE(t, func() { Skip(None()).WithLabel("") })
	mustICE(t, func() { Switch(i, []SwitchCase{Case(Int64Constant(1, types.MakeCLongInt()), Skip(None()))}, nil, None()) })
	mustICE(t, func() { Skip(None()).WithLoopContracts(c) })
	mustICE(t, func() { Goto("loop", None()).WithLoopContracts(i) })

	noICE(t, func() {
		Block([]Stmt{
			Decl(i, Int64Constant(0, types.MakeCInt()).Ptr(), None()),
			While(c, Assign(i, i.Plus(Int64Constant(1, types.MakeCInt())), None()), None()),
			IfThenElse(c, Break(None()), Continue(None()).Ptr(), None()),
			Switch(i, []SwitchCase{Case(Int64Constant(1, types.MakeCInt()), Skip(None()))}, Skip(None()).Ptr(), None()),
			Goto("loop", None()).WithLoopContracts(c),
			Skip(None()).WithLabel("loop"),
			Dead(i, None()),
			Deinit(i, None()),
			Return(nil, None()),
		}, None())
	})
}

func TestFunctionCallStatement(t *testing.T) {
	fn := sym("f", types.MakeCode([]types.Parameter{types.AnonParameter(types.MakeCInt())}, types.MakeCInt()))
	x, r := sym("x", types.MakeCInt()), sym("r", types.MakeCInt())
	s := FunctionCall(r.Ptr(), fn, []Expr{x}, None())
	require.NotNil(t, s.Body().(FunctionCallStmt).Lhs)
	noICE(t, func() { FunctionCall(nil, fn, []Expr{x}, None()) })
	mustICE(t, func() { FunctionCall(sym("d", types.MakeDouble()).Ptr(), fn, []Expr{x}, None()) })
	mustICE(t, func() { FunctionCall(nil, x, nil, None()) })
}

func TestBuiltinCalls(t *testing.T) {
	n := Int64Constant(16, types.MakeSizeT())
	p := BuiltinMalloc.Call([]Expr{n}, None())
	require.True(t, types.IsVoidPointer(p.Type()))
	mustICE(t, func() { BuiltinMalloc.Call(nil, None()) })
	require.Equal(t, "__CPROVER_assume", BuiltinAssume.String())

	st := NewSymbolTable(machine.MustPreset("x86_64-linux"))
	for _, b := range Builtins() {
		s, ok := st.Lookup(b.String())
		require.True(t, ok, b.String())
		require.True(t, types.Equal(s.Type, b.Type()), b.String())
	}
}

func TestStructConstructionEntryPointsAgree(t *testing.T) {
	st := NewEmptySymbolTable(machine.MustPreset("x86_64-linux"))
	tag := registerPair(st)
	a := Int64Constant(1, types.MakeCChar())
	b := Int64Constant(2, types.MakeCInt())

	byName := StructExpr(tag, map[string]Expr{"a": a, "b": b}, st)
	byValues := StructExprFromValues(tag, []Expr{a, b}, st)
	explicit := StructExprFromPaddedValues(tag, []Expr{a, Nondet(types.MakeUnsigned(24)), b}, st)
	require.Equal(t, explicit, byName)
	require.Equal(t, explicit, byValues)

	partial := StructExprWithNondetFields(tag, map[string]Expr{"b": b}, st)
	_, nondet := partial.Value().(StructLit).Values[0].Value().(NondetExpr)
	require.True(t, nondet)

	mustICE(t, func() { StructExpr(tag, map[string]Expr{"a": a}, st) })
	mustICE(t, func() { StructExpr(tag, map[string]Expr{"a": a, "b": b, "c": b}, st) })
	mustICE(t, func() { StructExprWithNondetFields(tag, map[string]Expr{"zz": b}, st) })
	mustICE(t, func() { StructExprFromValues(tag, []Expr{b, a}, st) })
	mustICE(t, func() { StructExprFromPaddedValues(tag, []Expr{a, b}, st) })
}

func TestUnionConstruction(t *testing.T) {
	st := NewEmptySymbolTable(machine.MustPreset("x86_64-linux"))
	st.Insert(AggrType(types.MakeUnion("U", []types.DatatypeComponent{
		types.MakeUnionField("c", types.MakeCChar(), types.MakeUnsigned(32)),
		types.MakeUnionField("i", types.MakeCInt(), types.MakeCInt()),
	}), "U"))
	st.Insert(AggrType(types.MakeUnion("E", nil), "E"))
	u := types.MakeUnionTag("U")

	noICE(t, func() { UnionExpr(u, "c", Int64Constant(1, types.MakeCChar()), st) })
	mustICE(t, func() { UnionExpr(u, "c", Int64Constant(1, types.MakeCInt()), st) })
	mustICE(t, func() { UnionExpr(u, "nope", Int64Constant(1, types.MakeCInt()), st) })
	noICE(t, func() { EmptyUnion(types.MakeUnionTag("E"), st) })
	mustICE(t, func() { EmptyUnion(u, st) })
}
