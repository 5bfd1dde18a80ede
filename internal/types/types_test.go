package types

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"gotoc/internal/ice"
	"gotoc/internal/machine"
)

type mapResolver map[string]Type

func (m mapResolver) LookupType(id string) (Type, bool) {
	t, ok := m[id]
	return t, ok
}

func mustICE(t *testing.T, fn func()) {
	t.Helper()
	if err := ice.Catch(fn); err == nil {
		t.Fatal("expected internal compiler error")
	}
}

func TestConstructorsRejectMalformedTypes(t *testing.T) {
	mustICE(t, func() { MakeSigned(0) })
	mustICE(t, func() { MakeVector(MakePointer(MakeCInt()), 4) })
	mustICE(t, func() { MakeBitField(MakeFloat(), 3) })
	mustICE(t, func() { MakeBitField(MakeUnsigned(8), 9) })
	mustICE(t, func() { MakeBitField(MakeUnsigned(8), 0) })
	mustICE(t, func() {
		MakeStruct("dup", []DatatypeComponent{MakeField("a", MakeCInt()), MakeField("a", MakeCChar())})
	})
}

func TestTagsArePrefixed(t *testing.T) {
	tag := MakeStructTag("Point").(StructTag)
	require.Equal(t, "tag-Point", tag.ID())
	st := MakeStruct("Point", nil)
	require.True(t, Equal(ToTag(st), tag))
	require.True(t, Equal(ToTag(MakeIncompleteUnion("U")), MakeUnionTag("U")))
}

func TestEqualIgnoresParameterNames(t *testing.T) {
	a := MakeCode([]Parameter{MakeParameter(MakeCInt(), "f::x", "x")}, MakeEmpty())
	b := MakeCode([]Parameter{AnonParameter(MakeCInt())}, MakeEmpty())
	c := MakeVariadicCode([]Parameter{AnonParameter(MakeCInt())}, MakeEmpty())
	require.True(t, Equal(a, b))
	require.False(t, Equal(a, c))
	require.False(t, Equal(MakeArray(MakeCInt(), 3), MakeArray(MakeCInt(), 4)))
	require.True(t, Equal(MakePointer(MakeStructTag("S")), MakePointer(MakeStructTag("S"))))
	require.False(t, Equal(MakeSigned(32), MakeUnsigned(32)))
}

func TestPredicatesSeeThroughTypedefs(t *testing.T) {
	td := MakeTypeDef("u8", MakeUnsigned(8))
	require.True(t, IsInteger(td))
	require.False(t, IsInteger(MakeBool()))
	require.True(t, IsCBool(MakeCBool()))
	require.True(t, IsInteger(MakeCBool()))
	require.True(t, IsVoidPointer(MakeVoidPointer()))
	require.True(t, IsArrayLike(MakeVector(MakeFloat(), 4)))
	require.False(t, IsLvalue(MakeArray(MakeCInt(), 2)))
	require.True(t, IsLvalue(MakeStructTag("S")))
}

func TestNativeWidthAndSignedness(t *testing.T) {
	mm := machine.MustPreset("aarch64-linux")
	w, ok := NativeWidth(MakeSizeT(), mm)
	require.True(t, ok)
	require.Equal(t, uint64(64), w)
	require.False(t, IsSigned(MakeCChar(), mm), "char is unsigned on aarch64-linux")
	require.True(t, IsSigned(MakeCChar(), machine.MustPreset("x86_64-linux")))
	require.True(t, IsEqualOnMachine(MakeCInt(), MakeSigned(32), mm))
	require.False(t, IsEqualOnMachine(MakeCInt(), MakeUnsigned(32), mm))
	require.True(t, IsEqualOnMachine(MakeSizeT(), MakeUnsigned(64), mm))
}

func TestSizeofInBits(t *testing.T) {
	mm := machine.MustPreset("x86_64-linux")
	pair := MakeStruct("Pair", WithPadding(
		[]DatatypeComponent{MakeField("a", MakeCChar()), MakeField("b", MakeCInt())},
		[]uint64{0, 32}, []uint64{8, 32}, 64))
	r := mapResolver{AggrTag("Pair"): pair}

	cases := []struct {
		typ  Type
		want uint64
	}{
		{MakeCInt(), 32},
		{MakePointer(MakeEmpty()), 64},
		{MakeArray(MakeCChar(), 10), 80},
		{MakeDouble(), 64},
		{MakeFloat16(), 16},
		{MakeFloat128(), 128},
		{MakeStructTag("Pair"), 64},
		{MakeArray(MakeStructTag("Pair"), 3), 192},
		{MakeFlexibleArray(MakeCInt()), 0},
		{MakeEmpty(), 0},
		{MakeUnion("U", []DatatypeComponent{
			MakeUnionField("x", MakeCChar(), MakeUnsigned(64)),
			MakeUnionField("y", MakeDouble(), MakeDouble()),
		}), 64},
		{MakeBitField(MakeCInt(), 3), 3},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, SizeofInBits(tc.typ, r, mm), "sizeof %v", tc.typ)
	}
	mustICE(t, func() { SizeofInBits(MakeBool(), r, mm) })
	mustICE(t, func() { SizeofInBits(MakeIncompleteStruct("X"), r, mm) })
	mustICE(t, func() { SizeofInBits(MakeStructTag("Missing"), r, mm) })
	mustICE(t, func() { SizeofInBits(MakeArray(MakeArray(MakeCInt(), 1<<40), 1<<40), r, mm) })
}

func TestWithPaddingSynthesizesFillers(t *testing.T) {
	comps := WithPadding(
		[]DatatypeComponent{MakeField("c", MakeCChar()), MakeField("l", MakeCLongInt()), MakeField("d", MakeCChar())},
		[]uint64{0, 64, 128}, []uint64{8, 64, 8}, 192)
	require.Len(t, comps, 5)
	require.Equal(t, "c", comps[0].Name())
	require.True(t, comps[1].IsPadding())
	require.Equal(t, "$pad0", comps[1].Name())
	require.Equal(t, uint64(56), comps[1].(Padding).Bits())
	require.True(t, Equal(comps[1].Type(), MakeUnsigned(56)))
	require.Equal(t, "l", comps[2].Name())
	require.Equal(t, "$pad1", comps[4].Name())
	require.Len(t, NonPadding(comps), 3)

	mustICE(t, func() {
		WithPadding([]DatatypeComponent{MakeField("a", MakeCInt()), MakeField("b", MakeCInt())},
			[]uint64{0, 16}, []uint64{32, 32}, 64)
	})
}

func TestMinMaxInt(t *testing.T) {
	mm := machine.MustPreset("x86_64-linux")
	require.Equal(t, "127", MaxInt(MakeSigned(8), mm).String())
	require.Equal(t, "-128", MinInt(MakeSigned(8), mm).String())
	require.Equal(t, "255", MaxInt(MakeUnsigned(8), mm).String())
	require.Equal(t, 0, MinInt(MakeUnsigned(8), mm).Sign())
	require.Equal(t, "18446744073709551615", MaxInt(MakeSizeT(), mm).String())
	require.Equal(t, "-9223372036854775808", MinInt(MakeSSizeT(), mm).String())
	mustICE(t, func() { MaxInt(MakeInteger(), mm) })
	mustICE(t, func() { MaxInt(MakeFloat(), mm) })
}

func TestFitsInBits(t *testing.T) {
	require.True(t, FitsInBits(big.NewInt(-128), 8, true))
	require.False(t, FitsInBits(big.NewInt(-129), 8, true))
	require.True(t, FitsInBits(big.NewInt(127), 8, true))
	require.False(t, FitsInBits(big.NewInt(128), 8, true))
	require.True(t, FitsInBits(big.NewInt(255), 8, false))
	require.False(t, FitsInBits(big.NewInt(-1), 8, false))
}

func TestTwosComplement(t *testing.T) {
	require.Equal(t, "255", TwosComplement(big.NewInt(-1), 8).String())
	require.Equal(t, "128", TwosComplement(big.NewInt(-128), 8).String())
	require.Equal(t, "5", TwosComplement(big.NewInt(5), 32).String())
}

func TestOverflowResultType(t *testing.T) {
	st := ArithmeticOverflowResultType(MakeSigned(8)).(Struct)
	require.Equal(t, "overflow_result_signedbv_8", st.Tag())
	require.Equal(t, OverflowResultField, st.Components()[0].Name())
	require.True(t, IsBool(st.Components()[1].Type()))
}
