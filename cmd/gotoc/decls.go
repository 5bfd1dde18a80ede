package main

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"
	"golang.org/x/text/unicode/norm"

	"gotoc/internal/ir"
	"gotoc/internal/layout"
	"gotoc/internal/types"
)

// declFile is the TOML schema of a layout declaration file:
//
//	[[struct]]
//	name = "point"
//	[[struct.field]]
//	name = "x"
//	type = "int"
//
//	[[enum]]
//	name = "shape"
//	tag = "u8"
//	[[enum.variant]]
//	name = "circle"
//	type = "double"
type declFile struct {
	Structs []structDecl `toml:"struct"`
	Enums   []enumDecl   `toml:"enum"`
}

type structDecl struct {
	Name   string      `toml:"name"`
	Packed bool        `toml:"packed"`
	Align  int64       `toml:"align"`
	Fields []fieldDecl `toml:"field"`
}

type fieldDecl struct {
	Name  string `toml:"name"`
	Type  string `toml:"type"`
	Bits  int64  `toml:"bits"`
	Align int64  `toml:"align"`
}

type enumDecl struct {
	Name     string        `toml:"name"`
	Tag      string        `toml:"tag"`
	Variants []variantDecl `toml:"variant"`
}

type variantDecl struct {
	Name string `toml:"name"`
	Type string `toml:"type"`
}

// aggregate is one declaration ready to be laid out.
type aggregate struct {
	kind   string
	name   string
	deps   []string
	define func(e *layout.Engine, st *ir.SymbolTable) (types.Type, layout.TypeLayout, error)
}

// loadDecls decodes a declaration file.
func loadDecls(path string) (*declFile, error) {
	var df declFile
	meta, err := toml.DecodeFile(path, &df)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if !meta.IsDefined("struct") && !meta.IsDefined("enum") {
		return nil, fmt.Errorf("%s: no [[struct]] or [[enum]] declarations", path)
	}
	return &df, nil
}

// normName trims and NFC-normalizes a declared name and checks that it is
// a C-style identifier.
func normName(what, raw string) (string, error) {
	name := norm.NFC.String(strings.TrimSpace(raw))
	if name == "" {
		return "", fmt.Errorf("%s: missing name", what)
	}
	for i, r := range name {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return "", fmt.Errorf("%s: invalid name %q", what, raw)
	}
	return name, nil
}

func alignOf(what string, v int64) (uint64, error) {
	a, err := safecast.Conv[uint64](v)
	if err != nil {
		return 0, fmt.Errorf("%s: align: %w", what, err)
	}
	if a != 0 && a&(a-1) != 0 {
		return 0, fmt.Errorf("%s: align %d is not a power of two", what, a)
	}
	return a, nil
}

// aggregates validates df and returns its declarations ordered so that every
// aggregate comes after the aggregates it embeds by value.
func (df *declFile) aggregates() ([]aggregate, error) {
	var out []aggregate
	seen := make(map[string]bool)
	declare := func(a aggregate) error {
		if seen[a.name] {
			return fmt.Errorf("%s %s: declared twice", a.kind, a.name)
		}
		seen[a.name] = true
		out = append(out, a)
		return nil
	}

	for i := range df.Structs {
		a, err := df.Structs[i].aggregate()
		if err != nil {
			return nil, err
		}
		if err := declare(a); err != nil {
			return nil, err
		}
	}
	for i := range df.Enums {
		a, err := df.Enums[i].aggregate()
		if err != nil {
			return nil, err
		}
		if err := declare(a); err != nil {
			return nil, err
		}
	}
	return sortAggregates(out)
}

func (sd *structDecl) aggregate() (aggregate, error) {
	name, err := normName("struct", sd.Name)
	if err != nil {
		return aggregate{}, err
	}
	what := "struct " + name
	if len(sd.Fields) == 0 {
		return aggregate{}, fmt.Errorf("%s: no fields", what)
	}
	align, err := alignOf(what, sd.Align)
	if err != nil {
		return aggregate{}, err
	}
	if sd.Packed && align != 0 {
		return aggregate{}, fmt.Errorf("%s: packed and align are exclusive", what)
	}

	fields := make([]layout.FieldDecl, len(sd.Fields))
	var deps []string
	names := make(map[string]bool, len(sd.Fields))
	for i, fd := range sd.Fields {
		fname, err := normName(what+" field", fd.Name)
		if err != nil {
			return aggregate{}, err
		}
		if names[fname] {
			return aggregate{}, fmt.Errorf("%s: duplicate field %s", what, fname)
		}
		names[fname] = true
		fwhat := what + "." + fname

		t, fdeps, err := parseType(fd.Type)
		if err != nil {
			return aggregate{}, fmt.Errorf("%s: %w", fwhat, err)
		}
		if fd.Bits != 0 {
			t, err = bitField(t, fd.Bits)
			if err != nil {
				return aggregate{}, fmt.Errorf("%s: %w", fwhat, err)
			}
		}
		falign, err := alignOf(fwhat, fd.Align)
		if err != nil {
			return aggregate{}, err
		}
		fields[i] = layout.FieldDecl{Name: fname, Type: t, Align: falign}
		deps = append(deps, fdeps...)
	}

	attrs := layout.Attrs{Packed: sd.Packed, Align: align}
	return aggregate{
		kind: "struct",
		name: name,
		deps: deps,
		define: func(e *layout.Engine, st *ir.SymbolTable) (types.Type, layout.TypeLayout, error) {
			return e.DefineStruct(st, name, fields, attrs)
		},
	}, nil
}

func (ed *enumDecl) aggregate() (aggregate, error) {
	name, err := normName("enum", ed.Name)
	if err != nil {
		return aggregate{}, err
	}
	what := "enum " + name
	if len(ed.Variants) == 0 {
		return aggregate{}, fmt.Errorf("%s: no variants", what)
	}
	tagSrc := ed.Tag
	if strings.TrimSpace(tagSrc) == "" {
		tagSrc = "u32"
	}
	tagType, _, err := parseType(tagSrc)
	if err != nil {
		return aggregate{}, fmt.Errorf("%s: tag: %w", what, err)
	}
	if !types.IsInteger(tagType) {
		return aggregate{}, fmt.Errorf("%s: tag type %s is not an integer", what, tagSrc)
	}
	if n := uint64(len(ed.Variants)); !fitsTag(tagType, n) {
		return aggregate{}, fmt.Errorf("%s: %d variants do not fit in tag type %s", what, n, tagSrc)
	}

	variants := make([]layout.Variant, len(ed.Variants))
	var deps []string
	names := make(map[string]bool, len(ed.Variants))
	for i, vd := range ed.Variants {
		vname, err := normName(what+" variant", vd.Name)
		if err != nil {
			return aggregate{}, err
		}
		if names[vname] {
			return aggregate{}, fmt.Errorf("%s: duplicate variant %s", what, vname)
		}
		names[vname] = true
		src := vd.Type
		if strings.TrimSpace(src) == "" {
			src = "void"
		}
		t, vdeps, err := parseType(src)
		if err != nil {
			return aggregate{}, fmt.Errorf("%s.%s: %w", what, vname, err)
		}
		variants[i] = layout.Variant{Name: vname, Type: t}
		deps = append(deps, vdeps...)
	}

	return aggregate{
		kind: "enum",
		name: name,
		deps: deps,
		define: func(e *layout.Engine, st *ir.SymbolTable) (types.Type, layout.TypeLayout, error) {
			return e.DefineTaggedUnion(st, name, tagType, variants)
		},
	}, nil
}

// fitsTag reports whether n discriminants 0..n-1 fit in the tag type. C
// integer kinds are assumed wide enough.
func fitsTag(t types.Type, n uint64) bool {
	var width uint64
	switch v := t.(type) {
	case types.Unsignedbv:
		width = v.Width()
	case types.Signedbv:
		width = v.Width() - 1
	default:
		return true
	}
	return width >= 64 || n <= uint64(1)<<width
}

func bitField(t types.Type, bits int64) (types.Type, error) {
	width, err := safecast.Conv[uint64](bits)
	if err != nil || width == 0 {
		return nil, fmt.Errorf("bit-field width %d must be positive", bits)
	}
	if !types.IsInteger(t) {
		return nil, fmt.Errorf("bit-field of non-integer type %v", t)
	}
	switch v := t.(type) {
	case types.Unsignedbv:
		if v.Width() < width {
			return nil, fmt.Errorf("bit-field of width %d does not fit in %v", width, t)
		}
	case types.Signedbv:
		if v.Width() < width {
			return nil, fmt.Errorf("bit-field of width %d does not fit in %v", width, t)
		}
	}
	return types.MakeBitField(t, width), nil
}

var namedTypes = map[string]func() types.Type{
	"bool":    types.MakeCBool,
	"char":    types.MakeCChar,
	"int":     types.MakeCInt,
	"long":    types.MakeCLongInt,
	"size_t":  types.MakeSizeT,
	"ssize_t": types.MakeSSizeT,
	"half":    types.MakeFloat16,
	"float":   types.MakeFloat,
	"double":  types.MakeDouble,
	"quad":    types.MakeFloat128,
	"void":    types.MakeEmpty,
}

// parseType reads the declaration type syntax: a named C type, a sized
// integer (i8..i128, u8..u128), "struct NAME", a pointer "*T" or an array
// "T[N]". It also returns the aggregates the type embeds by value.
func parseType(src string) (types.Type, []string, error) {
	s := strings.TrimSpace(src)
	switch {
	case s == "":
		return nil, nil, errors.New("missing type")

	case strings.HasPrefix(s, "*"):
		elem, _, err := parseType(s[1:])
		if err != nil {
			return nil, nil, err
		}
		return types.MakePointer(elem), nil, nil

	case strings.HasSuffix(s, "]"):
		open := strings.IndexByte(s, '[')
		if open < 0 {
			return nil, nil, fmt.Errorf("malformed array type %q", src)
		}
		dims, err := arrayDims(s[open:])
		if err != nil {
			return nil, nil, fmt.Errorf("array type %q: %w", src, err)
		}
		elem, deps, err := parseType(s[:open])
		if err != nil {
			return nil, nil, err
		}
		if types.IsEmpty(elem) {
			return nil, nil, fmt.Errorf("array of void in %q", src)
		}
		// T[2][4] is two arrays of four T, as in C.
		for i := len(dims) - 1; i >= 0; i-- {
			elem = types.MakeArray(elem, dims[i])
		}
		return elem, deps, nil

	case strings.HasPrefix(s, "struct "):
		name, err := normName("struct reference", s[len("struct "):])
		if err != nil {
			return nil, nil, err
		}
		return types.MakeStructTag(name), []string{name}, nil
	}

	if mk, ok := namedTypes[s]; ok {
		return mk(), nil, nil
	}
	if len(s) > 1 && (s[0] == 'i' || s[0] == 'u') {
		if w, err := strconv.ParseUint(s[1:], 10, 64); err == nil && slices.Contains([]uint64{8, 16, 32, 64, 128}, w) {
			if s[0] == 'i' {
				return types.MakeSigned(w), nil, nil
			}
			return types.MakeUnsigned(w), nil, nil
		}
	}
	return nil, nil, fmt.Errorf("unknown type %q", src)
}

// arrayDims parses a run of "[N]" suffixes.
func arrayDims(s string) ([]uint64, error) {
	var dims []uint64
	for s != "" {
		if s[0] != '[' {
			return nil, fmt.Errorf("unexpected %q", s)
		}
		end := strings.IndexByte(s, ']')
		if end < 0 {
			return nil, errors.New("unterminated length")
		}
		n, err := strconv.ParseUint(strings.TrimSpace(s[1:end]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("length %q: %w", s[1:end], err)
		}
		dims = append(dims, n)
		s = strings.TrimSpace(s[end+1:])
	}
	return dims, nil
}

// sortAggregates orders aggregates so by-value dependencies come first,
// keeping declaration order otherwise. Aggregates that embed each other by
// value have no finite layout and are rejected.
func sortAggregates(in []aggregate) ([]aggregate, error) {
	index := make(map[string]int, len(in))
	for i, a := range in {
		index[a.name] = i
	}
	const (
		unvisited = iota
		visiting
		visited
	)
	state := make([]int, len(in))
	out := make([]aggregate, 0, len(in))
	var stack []string

	var visit func(i int) error
	visit = func(i int) error {
		switch state[i] {
		case visited:
			return nil
		case visiting:
			start := slices.Index(stack, in[i].name)
			cycle := append(slices.Clone(stack[start:]), in[i].name)
			return fmt.Errorf("recursive by-value aggregates: %s", strings.Join(cycle, " -> "))
		}
		state[i] = visiting
		stack = append(stack, in[i].name)
		for _, dep := range in[i].deps {
			j, ok := index[dep]
			if !ok {
				return fmt.Errorf("%s %s: undefined struct %s", in[i].kind, in[i].name, dep)
			}
			if err := visit(j); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		state[i] = visited
		out = append(out, in[i])
		return nil
	}

	for i := range in {
		if err := visit(i); err != nil {
			return nil, err
		}
	}
	return out, nil
}
