package ir

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"gotoc/internal/ice"
	"gotoc/internal/machine"
	"gotoc/internal/types"
)

// registerPair defines struct Pair { char a; <3 bytes pad>; int b; }.
func registerPair(st *SymbolTable) types.Type {
	def := types.MakeStruct("Pair", types.WithPadding(
		[]types.DatatypeComponent{
			types.MakeField("a", types.MakeCChar()),
			types.MakeField("b", types.MakeCInt()),
		},
		[]uint64{0, 32}, []uint64{8, 32}, 64))
	st.Insert(AggrType(def, "Pair"))
	return types.MakeStructTag("Pair")
}

func TestNewSymbolTableSeedsEnvironment(t *testing.T) {
	mm := machine.MustPreset("aarch64-linux")
	st := NewSymbolTable(mm)

	ptr, ok := st.Lookup("__CPROVER_architecture_pointer_width")
	require.True(t, ok)
	v, ok := ptr.Value.(Expr).IntValue()
	require.True(t, ok)
	require.Equal(t, int64(64), v.Int64())
	require.True(t, types.Equal(ptr.Type, types.MakeInteger()))
	require.True(t, ptr.IsStaticLifetime)

	unsigned, _ := st.Lookup("__CPROVER_architecture_char_is_unsigned")
	v, _ = unsigned.Value.(Expr).IntValue()
	require.Equal(t, int64(1), v.Int64())

	for _, name := range []string{RoundingModeSymbol, InitializeSymbol, MemorySymbol, SizeTSymbol, "malloc", "__CPROVER_assume"} {
		require.True(t, st.Contains(name), name)
	}
	mem, _ := st.Lookup(MemorySymbol)
	require.True(t, mem.IsExtern)
	require.False(t, mem.IsThreadLocal)

	malloc, _ := st.Lookup("malloc")
	require.True(t, malloc.IsFunctionDeclaration())
	_, isBuiltin := malloc.Location.(BuiltinLocation)
	require.True(t, isBuiltin)
}

func TestSymbolTableIteratesSorted(t *testing.T) {
	st := NewEmptySymbolTable(machine.MustPreset("x86_64-linux"))
	for _, n := range []string{"zeta", "alpha", "mid"} {
		st.Insert(Variable(n, n, types.MakeCInt(), None()))
	}
	var names []string
	for name := range st.All() {
		names = append(names, name)
	}
	require.Equal(t, []string{"alpha", "mid", "zeta"}, names)
	require.Equal(t, names, st.Names())
	require.Equal(t, 3, st.Len())

	mustICE(t, func() { st.Insert(Variable("mid", "mid", types.MakeCLongInt(), None())) })
}

func TestReplaceWithCompletion(t *testing.T) {
	st := NewEmptySymbolTable(machine.MustPreset("x86_64-linux"))
	st.Insert(AggrType(types.MakeIncompleteStruct("Node"), "Node"))
	_, ok := st.LookupFieldsInType(types.MakeStructTag("Node"))
	require.False(t, ok)

	complete := types.MakeStruct("Node", []types.DatatypeComponent{
		types.MakeField("next", types.MakePointer(types.MakeStructTag("Node"))),
	})
	st.ReplaceWithCompletion(AggrType(complete, "Node"))
	ft, ok := st.LookupFieldType(types.MakeStructTag("Node"), "next")
	require.True(t, ok)
	require.True(t, types.IsPointer(ft))

	mustICE(t, func() { st.ReplaceWithCompletion(AggrType(types.MakeUnion("Node", nil), "Node")) })
}

func TestUpdateFnDeclarationWithDefinition(t *testing.T) {
	st := NewEmptySymbolTable(machine.MustPreset("x86_64-linux"))
	code := types.MakeCode(nil, types.MakeEmpty())
	st.Insert(Function("f", code, nil, "f", None()))
	st.UpdateFnDeclarationWithDefinition("f", Block(nil, None()))
	f, _ := st.Lookup("f")
	require.True(t, f.IsFunctionDefinition())
	mustICE(t, func() { st.UpdateFnDeclarationWithDefinition("f", Block(nil, None())) })
	mustICE(t, func() { st.UpdateFnDeclarationWithDefinition("g", Block(nil, None())) })
}

func TestEnsureBuildsOnce(t *testing.T) {
	st := NewEmptySymbolTable(machine.MustPreset("x86_64-linux"))
	calls := 0
	build := func(_ *SymbolTable, name string) *Symbol {
		calls++
		return StaticVariable(name, name, types.MakeCInt(), None())
	}
	a := st.Ensure("counter", build)
	b := st.Ensure("counter", build)
	require.Same(t, a, b)
	require.Equal(t, 1, calls)
}

func TestSymbolConstructors(t *testing.T) {
	v := Variable("main::1::x", "x", types.MakeCInt(), None())
	require.True(t, v.IsThreadLocal && v.IsLvalue && v.IsStateVar)
	require.False(t, v.IsStaticLifetime)

	s := StaticVariable("g", "g", types.MakeCInt(), None())
	require.True(t, s.IsStaticLifetime)
	require.False(t, s.IsThreadLocal)

	td := Typedef("size_t", "size_t", types.MakeSizeT(), None())
	require.True(t, td.IsType && td.IsFileLocal && td.IsStaticLifetime)

	aggr := AggrType(types.MakeStruct("S", nil), "S")
	require.Equal(t, "tag-S", aggr.Name)
	require.Equal(t, "S", aggr.BaseName)

	mustICE(t, func() { Variable("main::x", "y", types.MakeCInt(), None()) })
	mustICE(t, func() { AggrType(types.MakeStructTag("S"), "S") })
	mustICE(t, func() { Function("f", types.MakeCInt(), nil, "", None()) })
	mustICE(t, func() { StaticVariable("g", "g", types.MakeCInt(), None()).WithValue(Skip(None())) })
}

func TestUnsupportedMarkers(t *testing.T) {
	st := NewEmptySymbolTable(machine.MustPreset("x86_64-linux"))
	loc := Loc("lib.rs", "f", 3, 7)
	e := UnsupportedExpr("inline assembly", types.MakeCInt(), loc, st)
	UnsupportedExpr("inline assembly", types.MakeCInt(), Loc("lib.rs", "g", 9, 1), st)
	UnsupportedExpr("async closures", types.MakeBool(), None(), st)

	require.True(t, types.Equal(e.Type(), types.MakeCInt()))
	stmts := e.Value().(StmtExpr).Stmts
	marker := stmts[0].Body().(BlockStmt).Stmts
	require.Len(t, marker, 2)
	prop, ok := marker[0].Location().(PropertyLocation)
	require.True(t, ok)
	require.Equal(t, UnsupportedPropertyClass, prop.PropertyClass)
	require.True(t, strings.HasSuffix(prop.Comment, "is not currently supported"))
	_, isAssume := marker[1].Body().(AssumeStmt)
	require.True(t, isAssume)

	got := st.Unsupported()
	require.Len(t, got, 2)
	require.Equal(t, "async closures", got[0].What)
	require.Equal(t, "inline assembly", got[1].What)
	require.Equal(t, 2, got[1].Count)
	require.Equal(t, loc, got[1].First)

	stmt := Unsupported("inline assembly", None(), st)
	require.Len(t, stmt.Body().(BlockStmt).Stmts, 2)
	Unsupported("drop glue", loc, st)
	got = st.Unsupported()
	require.Len(t, got, 3)
	require.Equal(t, "drop glue", got[1].What)
	require.Equal(t, 1, got[1].Count)
	require.Equal(t, 3, got[2].Count)
}

func TestAttachContractAppendsClauses(t *testing.T) {
	st := NewEmptySymbolTable(machine.MustPreset("x86_64-linux"))
	intPtr := types.MakePointer(types.MakeCInt())
	fnType := types.MakeCode([]types.Parameter{types.MakeParameter(intPtr, "set::p", "p")}, types.MakeEmpty())
	st.Insert(Function("set", fnType, nil, "", None()))

	first := ContractLambda(fnType, "", SymbolExpr("set::p", intPtr))
	require.Len(t, first.Arguments, 2)
	require.True(t, types.Equal(types.MakeEmpty(), first.Arguments[0].Type()))
	require.Equal(t, "set::p", first.Arguments[1].Identifier())

	st.AttachContract("set", FunctionContract{Assigns: []Lambda{first}})
	sym, _ := st.Lookup("set")
	before := sym.Clone()

	second := ContractLambda(fnType, "ret", SymbolExpr("set::p", intPtr).Dereference())
	require.Equal(t, "ret", second.Arguments[0].BaseName())
	st.AttachContract("set", FunctionContract{Assigns: []Lambda{second}})

	require.Len(t, sym.Contract.Assigns, 2)
	require.Len(t, before.Contract.Assigns, 1)

	v := StaticVariable("g", "g", types.MakeCInt(), None())
	require.NotNil(t, ice.Catch(func() { v.AttachContract(FunctionContract{}) }))
	require.NotNil(t, ice.Catch(func() { ContractLambda(types.MakeCInt(), "", True()) }))
	require.NotNil(t, ice.Catch(func() { st.AttachContract("missing", FunctionContract{}) }))
}
