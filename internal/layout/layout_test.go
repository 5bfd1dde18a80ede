package layout

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"gotoc/internal/ice"
	"gotoc/internal/ir"
	"gotoc/internal/machine"
	"gotoc/internal/types"
)

func newEngine(t *testing.T) (*Engine, *ir.SymbolTable) {
	t.Helper()
	st := ir.NewEmptySymbolTable(machine.MustPreset("x86_64-linux"))
	return New(st.MachineModel(), st), st
}

func layoutErrKind(t *testing.T, err error) LayoutErrorKind {
	t.Helper()
	var le *LayoutError
	require.True(t, errors.As(err, &le), "want *LayoutError, got %v", err)
	return le.Kind
}

func TestScalarLayouts(t *testing.T) {
	e, _ := newEngine(t)
	cases := []struct {
		typ         types.Type
		size, align uint64
	}{
		{types.MakeCChar(), 1, 1},
		{types.MakeCInt(), 4, 4},
		{types.MakeCLongInt(), 8, 8},
		{types.MakeDouble(), 8, 8},
		{types.MakeFloat128(), 16, 16},
		{types.MakeSigned(24), 3, 2},
		{types.MakeVoidPointer(), 8, 8},
		{types.MakeArray(types.MakeCInt(), 5), 20, 4},
		{types.MakeVector(types.MakeCInt(), 4), 16, 16},
		{types.MakeFlexibleArray(types.MakeDouble()), 0, 8},
		{types.MakeEmpty(), 0, 1},
	}
	for _, c := range cases {
		l, err := e.LayoutOf(c.typ)
		require.NoError(t, err, c.typ.String())
		require.Equal(t, c.size, l.Size, c.typ.String())
		require.Equal(t, c.align, l.Align, c.typ.String())
	}
}

func TestPaddedStructOffsets(t *testing.T) {
	e, st := newEngine(t)
	tag, l, err := e.DefineStruct(st, "S", []FieldDecl{
		{Name: "a", Type: types.MakeCChar()},
		{Name: "b", Type: types.MakeCInt()},
		{Name: "c", Type: types.MakeCChar()},
	}, Attrs{})
	require.NoError(t, err)
	require.Equal(t, uint64(12), l.Size)
	require.Equal(t, uint64(4), l.Align)
	require.Equal(t, []uint64{0, 1, 4, 8, 9}, l.FieldOffsets)

	comps, ok := st.LookupFieldsInType(tag)
	require.True(t, ok)
	require.Len(t, comps, 5)
	require.True(t, comps[1].IsPadding())
	require.Equal(t, uint64(24), comps[1].(types.Padding).Bits())
	require.Equal(t, uint64(96), types.SizeofInBits(tag, st, st.MachineModel()))

	size, err := e.SizeOf(tag)
	require.NoError(t, err)
	require.Equal(t, uint64(12), size)
	off, err := e.FieldOffset(tag, 2)
	require.NoError(t, err)
	require.Equal(t, uint64(4), off)
}

func TestPackedAndAlignedStructs(t *testing.T) {
	e, _ := newEngine(t)
	fields := []FieldDecl{
		{Name: "a", Type: types.MakeCChar()},
		{Name: "b", Type: types.MakeCInt()},
	}
	def, l, err := e.PaddedStruct("P", fields, Attrs{Packed: true})
	require.NoError(t, err)
	require.Equal(t, uint64(5), l.Size)
	require.Equal(t, uint64(1), l.Align)
	require.Len(t, def.(types.Struct).Components(), 2)

	_, l, err = e.PaddedStruct("A", fields, Attrs{Align: 16})
	require.NoError(t, err)
	require.Equal(t, uint64(16), l.Size)
	require.Equal(t, uint64(16), l.Align)

	require.NotNil(t, ice.Catch(func() { _, _, _ = e.PaddedStruct("X", fields, Attrs{Packed: true, Align: 4}) }))
}

func TestStructAttrsSurviveTagLookup(t *testing.T) {
	e, st := newEngine(t)
	p, l, err := e.DefineStruct(st, "P", []FieldDecl{
		{Name: "a", Type: types.MakeCChar()},
		{Name: "b", Type: types.MakeCInt()},
	}, Attrs{Packed: true})
	require.NoError(t, err)
	require.Equal(t, uint64(1), l.Align)

	l, err = e.LayoutOf(p)
	require.NoError(t, err)
	require.Equal(t, uint64(5), l.Size)
	require.Equal(t, uint64(1), l.Align)

	pair := types.MakeArray(p, 2)
	size, err := e.SizeOf(pair)
	require.NoError(t, err)
	require.Equal(t, uint64(10), size)
	require.Equal(t, size*8, types.SizeofInBits(pair, st, st.MachineModel()))

	a, _, err := e.DefineStruct(st, "A", []FieldDecl{
		{Name: "c", Type: types.MakeCChar()},
	}, Attrs{Align: 16})
	require.NoError(t, err)
	align, err := e.AlignOf(a)
	require.NoError(t, err)
	require.Equal(t, uint64(16), align)

	o, l, err := e.DefineStruct(st, "O", []FieldDecl{
		{Name: "x", Type: types.MakeCChar()},
		{Name: "a", Type: a},
	}, Attrs{})
	require.NoError(t, err)
	require.Equal(t, uint64(32), l.Size)
	require.Equal(t, uint64(16), l.Align)
	comps, ok := st.LookupFieldsInType(o)
	require.True(t, ok)
	require.Equal(t, "a", comps[2].Name())
	require.Equal(t, uint64(16), l.FieldOffsets[2])

	w, l, err := e.DefineStruct(st, "W", []FieldDecl{
		{Name: "x", Type: types.MakeCChar()},
		{Name: "p", Type: p},
	}, Attrs{})
	require.NoError(t, err)
	require.Equal(t, uint64(6), l.Size)
	require.Equal(t, uint64(1), l.Align)
	require.Equal(t, uint64(48), types.SizeofInBits(w, st, st.MachineModel()))
}

func TestBitFieldsDoNotStraddleUnits(t *testing.T) {
	e, _ := newEngine(t)
	def, l, err := e.PaddedStruct("B", []FieldDecl{
		{Name: "x", Type: types.MakeBitField(types.MakeCInt(), 3)},
		{Name: "y", Type: types.MakeBitField(types.MakeCInt(), 30)},
	}, Attrs{})
	require.NoError(t, err)
	require.Equal(t, uint64(8), l.Size)
	require.Equal(t, uint64(4), l.Align)

	comps := def.(types.Struct).Components()
	require.Len(t, comps, 4)
	require.Equal(t, "x", comps[0].Name())
	require.Equal(t, uint64(29), comps[1].(types.Padding).Bits())
	require.Equal(t, "y", comps[2].Name())
	require.Equal(t, uint64(2), comps[3].(types.Padding).Bits())
}

func TestRecursiveStructIsRejected(t *testing.T) {
	e, st := newEngine(t)
	st.Insert(ir.AggrType(types.MakeStruct("Node", []types.DatatypeComponent{
		types.MakeField("next", types.MakeStructTag("Node")),
	}), "Node"))
	st.Insert(ir.AggrType(types.MakeStruct("List", []types.DatatypeComponent{
		types.MakeField("next", types.MakePointer(types.MakeStructTag("List"))),
		types.MakeField("len", types.MakeSizeT()),
	}), "List"))

	_, err := e.LayoutOf(types.MakeStructTag("Node"))
	require.Error(t, err)
	require.Equal(t, LayoutErrRecursiveUnsized, layoutErrKind(t, err))
	var le *LayoutError
	require.True(t, errors.As(err, &le))
	require.GreaterOrEqual(t, len(le.Cycle), 2)
	require.Equal(t, le.Cycle[0], le.Cycle[len(le.Cycle)-1])

	l, err := e.LayoutOf(types.MakeStructTag("List"))
	require.NoError(t, err)
	require.Equal(t, uint64(16), l.Size)
}

func TestIncompleteAndUnsizedTypes(t *testing.T) {
	e, st := newEngine(t)
	st.Insert(ir.AggrType(types.MakeIncompleteStruct("Opaque"), "Opaque"))

	_, err := e.LayoutOf(types.MakeStructTag("Opaque"))
	require.Equal(t, LayoutErrIncomplete, layoutErrKind(t, err))
	_, err = e.LayoutOf(types.MakeStructTag("Missing"))
	require.Equal(t, LayoutErrIncomplete, layoutErrKind(t, err))
	_, err = e.LayoutOf(types.MakeBool())
	require.Equal(t, LayoutErrUnsized, layoutErrKind(t, err))
	_, err = e.LayoutOf(types.MakeInfiniteArray(types.MakeCChar()))
	require.Equal(t, LayoutErrUnsized, layoutErrKind(t, err))

	_, _, err = e.PaddedStruct("W", []FieldDecl{{Name: "o", Type: types.MakeStructTag("Opaque")}}, Attrs{})
	require.Equal(t, LayoutErrIncomplete, layoutErrKind(t, err))
}

func TestArraySizeOverflow(t *testing.T) {
	e, _ := newEngine(t)
	_, err := e.LayoutOf(types.MakeArray(types.MakeCLongInt(), 1<<62))
	require.Equal(t, LayoutErrSizeOverflow, layoutErrKind(t, err))
}

func TestLayoutsAreCached(t *testing.T) {
	e, _ := newEngine(t)
	before := e.Cached()
	_, err := e.LayoutOf(types.MakeArray(types.MakeCInt(), 3))
	require.NoError(t, err)
	after := e.Cached()
	require.Greater(t, after, before)
	_, err = e.LayoutOf(types.MakeArray(types.MakeCInt(), 3))
	require.NoError(t, err)
	require.Equal(t, after, e.Cached())
}

func TestTaggedUnionLayout(t *testing.T) {
	e, st := newEngine(t)
	tag, l, err := e.DefineTaggedUnion(st, "E", types.MakeUnsigned(8), []Variant{
		{Name: "A", Type: types.MakeCInt()},
		{Name: "B", Type: types.MakeDouble()},
	})
	require.NoError(t, err)
	require.Equal(t, uint64(16), l.Size)
	require.Equal(t, uint64(8), l.Align)
	require.Equal(t, []uint64{0, 1, 8}, l.FieldOffsets)
	require.NotNil(t, l.Variants)
	require.Equal(t, Direct, l.Variants.Strategy)

	// Every union member is stored at the union's full width.
	u, ok := st.LookupType(types.AggrTag("E-union"))
	require.True(t, ok)
	for _, c := range u.(types.Union).Components() {
		require.Equal(t, uint64(64), types.SizeofInBits(c.StorageType(), st, st.MachineModel()), c.Name())
	}

	// Short payloads are widened by a struct defined once in the table and
	// referenced by tag.
	members := u.(types.Union).Components()
	require.IsType(t, types.StructTag{}, members[0].StorageType())
	require.Equal(t, types.AggrTag("E-union::A::padded"), members[0].StorageType().(types.StructTag).ID())
	require.True(t, types.Equal(types.MakeDouble(), members[1].StorageType()))
	wrapper, ok := st.LookupType(types.AggrTag("E-union::A::padded"))
	require.True(t, ok)
	require.Equal(t, "A", wrapper.(types.Struct).Components()[0].Name())
	uSize, err := e.SizeOf(types.ToTag(u))
	require.NoError(t, err)
	require.Equal(t, uint64(8), uSize)

	size, err := e.SizeOf(tag)
	require.NoError(t, err)
	require.Equal(t, uint64(16), size)

	v := ir.SymbolExpr("v", tag)
	set := SetDiscriminant(v, 1, l.Variants, st, ir.None())
	a := set.Body().(ir.AssignStmt)
	n, ok := a.Rhs.IntValue()
	require.True(t, ok)
	require.Equal(t, "1", n.String())

	d := CodegenDiscriminant(v, l.Variants, st, types.MakeCInt())
	require.True(t, types.Equal(types.MakeCInt(), d.Type()))
	_, isCast := d.Value().(ir.TypecastExpr)
	require.True(t, isCast)
}

func nicheFixture(t *testing.T, tagType types.Type, start int64) (*ir.SymbolTable, ir.Expr, *VariantsLayout) {
	t.Helper()
	_, st := newEngine(t)
	st.Insert(ir.AggrType(types.MakeStruct("Opt", []types.DatatypeComponent{
		types.MakeField("b", tagType),
	}), "Opt"))
	v := &VariantsLayout{
		Strategy:        Niche,
		TagField:        "b",
		TagType:         tagType,
		UntaggedVariant: 0,
		NicheLo:         1,
		NicheHi:         2,
		NicheStart:      big.NewInt(start),
	}
	return st, ir.SymbolExpr("o", types.MakeStructTag("Opt")), v
}

func TestNicheDiscriminant(t *testing.T) {
	st, o, v := nicheFixture(t, types.MakeUnsigned(8), 2)

	d := CodegenDiscriminant(o, v, st, types.MakeCInt())
	require.True(t, types.Equal(types.MakeCInt(), d.Type()))
	cond := d.Value().(ir.CondExpr)
	cmp := cond.Cond.Value().(ir.BinaryExpr)
	require.Equal(t, ir.Le, cmp.Op)
	untagged, ok := cond.Else.IntValue()
	require.True(t, ok)
	require.Equal(t, "0", untagged.String())

	require.IsType(t, ir.SkipStmt{}, SetDiscriminant(o, 0, v, st, ir.None()).Body())
	a := SetDiscriminant(o, 2, v, st, ir.None()).Body().(ir.AssignStmt)
	n, _ := a.Rhs.IntValue()
	require.Equal(t, "3", n.String())

	require.NotNil(t, ice.Catch(func() { SetDiscriminant(o, 5, v, st, ir.None()) }))
}

func TestNicheSingleValueUsesEquality(t *testing.T) {
	st, o, v := nicheFixture(t, types.MakeUnsigned(8), 2)
	v.NicheHi = 1
	cond := CodegenDiscriminant(o, v, st, types.MakeCInt()).Value().(ir.CondExpr)
	require.Equal(t, ir.Equal, cond.Cond.Value().(ir.BinaryExpr).Op)
}

func TestNicheValuesWrapAtTagWidth(t *testing.T) {
	st, o, v := nicheFixture(t, types.MakeSigned(8), 127)
	a := SetDiscriminant(o, 2, v, st, ir.None()).Body().(ir.AssignStmt)
	n, _ := a.Rhs.IntValue()
	require.Equal(t, "-128", n.String())
}
