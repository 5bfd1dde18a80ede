package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gotoc/internal/types"
)

func TestParseType(t *testing.T) {
	cases := []struct {
		src  string
		want types.Type
		deps []string
	}{
		{"int", types.MakeCInt(), nil},
		{" size_t ", types.MakeSizeT(), nil},
		{"u16", types.MakeUnsigned(16), nil},
		{"i128", types.MakeSigned(128), nil},
		{"*void", types.MakeVoidPointer(), nil},
		{"**char", types.MakePointer(types.MakeCharPointer()), nil},
		{"double[3]", types.MakeArray(types.MakeDouble(), 3), nil},
		{"u8[2][4]", types.MakeArray(types.MakeArray(types.MakeUnsigned(8), 4), 2), nil},
		{"struct node", types.MakeStructTag("node"), []string{"node"}},
		{"*struct node", types.MakePointer(types.MakeStructTag("node")), nil},
		{"struct node[2]", types.MakeArray(types.MakeStructTag("node"), 2), []string{"node"}},
	}
	for _, c := range cases {
		got, deps, err := parseType(c.src)
		require.NoError(t, err, c.src)
		require.True(t, types.Equal(c.want, got), "%s: got %v", c.src, got)
		require.Equal(t, c.deps, deps, c.src)
	}
}

func TestParseTypeErrors(t *testing.T) {
	for _, src := range []string{"", "i7", "uint", "int[", "int[x]", "int[2]x]", "void[2]", "struct ", "struct 9lives"} {
		_, _, err := parseType(src)
		require.Error(t, err, "%q", src)
	}
}

func TestNormNameComposes(t *testing.T) {
	got, err := normName("struct", "cafe\u0301")
	require.NoError(t, err)
	require.Equal(t, "caf\u00e9", got)

	_, err = normName("struct", "two words")
	require.Error(t, err)
}

func TestAggregatesFollowByValueDependencies(t *testing.T) {
	df := &declFile{
		Structs: []structDecl{
			{Name: "outer", Fields: []fieldDecl{{Name: "in", Type: "struct inner"}, {Name: "next", Type: "*struct outer"}}},
			{Name: "inner", Fields: []fieldDecl{{Name: "v", Type: "struct shape"}}},
		},
		Enums: []enumDecl{
			{Name: "shape", Variants: []variantDecl{{Name: "dot"}}},
		},
	}
	aggrs, err := df.aggregates()
	require.NoError(t, err)
	var names []string
	for _, a := range aggrs {
		names = append(names, a.name)
	}
	require.Equal(t, []string{"shape", "inner", "outer"}, names)
}

func TestAggregatesRejectInvalidDeclarations(t *testing.T) {
	cases := map[string]*declFile{
		"recursive by-value aggregates: a -> b -> a": {Structs: []structDecl{
			{Name: "a", Fields: []fieldDecl{{Name: "b", Type: "struct b"}}},
			{Name: "b", Fields: []fieldDecl{{Name: "a", Type: "struct a"}}},
		}},
		"undefined struct missing": {Structs: []structDecl{
			{Name: "a", Fields: []fieldDecl{{Name: "m", Type: "struct missing"}}},
		}},
		"declared twice": {
			Structs: []structDecl{{Name: "a", Fields: []fieldDecl{{Name: "x", Type: "int"}}}},
			Enums:   []enumDecl{{Name: "a", Variants: []variantDecl{{Name: "v"}}}},
		},
		"duplicate field x": {Structs: []structDecl{
			{Name: "a", Fields: []fieldDecl{{Name: "x", Type: "int"}, {Name: "x", Type: "int"}}},
		}},
		"packed and align are exclusive": {Structs: []structDecl{
			{Name: "a", Packed: true, Align: 8, Fields: []fieldDecl{{Name: "x", Type: "int"}}},
		}},
		"not a power of two": {Structs: []structDecl{
			{Name: "a", Align: 6, Fields: []fieldDecl{{Name: "x", Type: "int"}}},
		}},
		"does not fit in unsignedbv_8": {Structs: []structDecl{
			{Name: "a", Fields: []fieldDecl{{Name: "x", Type: "u8", Bits: 9}}},
		}},
		"bit-field of non-integer": {Structs: []structDecl{
			{Name: "a", Fields: []fieldDecl{{Name: "x", Type: "double", Bits: 3}}},
		}},
		"is not an integer": {Enums: []enumDecl{
			{Name: "e", Tag: "float", Variants: []variantDecl{{Name: "a"}}},
		}},
	}
	for want, df := range cases {
		_, err := df.aggregates()
		require.ErrorContains(t, err, want)
	}
}

func TestFitsTag(t *testing.T) {
	require.True(t, fitsTag(types.MakeUnsigned(8), 256))
	require.False(t, fitsTag(types.MakeUnsigned(8), 257))
	require.True(t, fitsTag(types.MakeSigned(8), 128))
	require.False(t, fitsTag(types.MakeSigned(8), 129))
	require.True(t, fitsTag(types.MakeCInt(), 1<<40))
}

func TestLoadDeclsRejectsUnknownKeys(t *testing.T) {
	path := writeDecls(t, "bad.toml", `
[[struct]]
name = "p"
colour = "red"
  [[struct.field]]
  name = "x"
  type = "int"
`)
	_, err := loadDecls(path)
	require.ErrorContains(t, err, "unknown keys: struct.colour")

	_, err = loadDecls(writeDecls(t, "empty.toml", "# nothing\n"))
	require.ErrorContains(t, err, "no [[struct]] or [[enum]]")
}
