// Package types models the goto-program type algebra.
//
// Type is a closed sum: every variant is a struct in this package with
// unexported fields, so values are only produced by the Make* constructors,
// which check their preconditions and panic with an internal compiler error
// when they are violated. Named structs and unions are defined once, in the
// symbol table, and referenced elsewhere through StructTag/UnionTag.
package types

import (
	"gotoc/internal/ice"
)

// Type is a goto-program type descriptor.
type Type interface {
	implType()
	String() string
}

// CIntKind selects a C integer whose width comes from the machine model.
type CIntKind uint8

const (
	CIntBool CIntKind = iota
	CIntChar
	CIntInt
	CIntLongInt
	CIntSizeT
	CIntSSizeT
)

func (k CIntKind) String() string {
	switch k {
	case CIntBool:
		return "c_bool"
	case CIntChar:
		return "char"
	case CIntInt:
		return "int"
	case CIntLongInt:
		return "long_int"
	case CIntSizeT:
		return "size_t"
	case CIntSSizeT:
		return "ssize_t"
	default:
		return "c_int?"
	}
}

// Bool is the mathematical boolean. It has no machine width.
type Bool struct{}

// CInteger is a C integer kind sized by the machine model.
type CInteger struct{ kind CIntKind }

// Signedbv is a fixed-width two's-complement integer.
type Signedbv struct{ width uint64 }

// Unsignedbv is a fixed-width unsigned integer.
type Unsignedbv struct{ width uint64 }

// Integer is the unbounded mathematical integer.
type Integer struct{}

type Float16 struct{}

type Float struct{}

type Double struct{}

type Float128 struct{}

type Pointer struct{ elem Type }

type Array struct {
	elem Type
	size uint64
}

// FlexibleArray is a trailing array member without a declared length.
type FlexibleArray struct{ elem Type }

// InfiniteArray has unbounded length; it backs verifier-side models.
type InfiniteArray struct{ elem Type }

type Vector struct {
	elem Type
	size uint64
}

type Struct struct {
	tag        string
	components []DatatypeComponent
}

type Union struct {
	tag        string
	components []DatatypeComponent
}

type IncompleteStruct struct{ tag string }

type IncompleteUnion struct{ tag string }

// StructTag refers to a struct defined in the symbol table by its aggregate id.
type StructTag struct{ id string }

// UnionTag refers to a union defined in the symbol table by its aggregate id.
type UnionTag struct{ id string }

type CBitField struct {
	elem  Type
	width uint64
}

type TypeDef struct {
	name string
	elem Type
}

type Code struct {
	params []Parameter
	ret    Type
}

type VariadicCode struct {
	params []Parameter
	ret    Type
}

// Empty is void.
type Empty struct{}

// Constructor is the type of C++-style constructor functions.
type Constructor struct{}

func (Bool) implType()             {}
func (CInteger) implType()         {}
func (Signedbv) implType()         {}
func (Unsignedbv) implType()       {}
func (Integer) implType()          {}
func (Float16) implType()          {}
func (Float) implType()            {}
func (Double) implType()           {}
func (Float128) implType()         {}
func (Pointer) implType()          {}
func (Array) implType()            {}
func (FlexibleArray) implType()    {}
func (InfiniteArray) implType()    {}
func (Vector) implType()           {}
func (Struct) implType()           {}
func (Union) implType()            {}
func (IncompleteStruct) implType() {}
func (IncompleteUnion) implType()  {}
func (StructTag) implType()        {}
func (UnionTag) implType()         {}
func (CBitField) implType()        {}
func (TypeDef) implType()          {}
func (Code) implType()             {}
func (VariadicCode) implType()     {}
func (Empty) implType()            {}
func (Constructor) implType()      {}

func (t Bool) String() string             { return Identifier(t) }
func (t CInteger) String() string         { return Identifier(t) }
func (t Signedbv) String() string         { return Identifier(t) }
func (t Unsignedbv) String() string       { return Identifier(t) }
func (t Integer) String() string          { return Identifier(t) }
func (t Float16) String() string          { return Identifier(t) }
func (t Float) String() string            { return Identifier(t) }
func (t Double) String() string           { return Identifier(t) }
func (t Float128) String() string         { return Identifier(t) }
func (t Pointer) String() string          { return Identifier(t) }
func (t Array) String() string            { return Identifier(t) }
func (t FlexibleArray) String() string    { return Identifier(t) }
func (t InfiniteArray) String() string    { return Identifier(t) }
func (t Vector) String() string           { return Identifier(t) }
func (t Struct) String() string           { return Identifier(t) }
func (t Union) String() string            { return Identifier(t) }
func (t IncompleteStruct) String() string { return Identifier(t) }
func (t IncompleteUnion) String() string  { return Identifier(t) }
func (t StructTag) String() string        { return Identifier(t) }
func (t UnionTag) String() string         { return Identifier(t) }
func (t CBitField) String() string        { return Identifier(t) }
func (t TypeDef) String() string          { return Identifier(t) }
func (t Code) String() string             { return Identifier(t) }
func (t VariadicCode) String() string     { return Identifier(t) }
func (t Empty) String() string            { return Identifier(t) }
func (t Constructor) String() string      { return Identifier(t) }

// Accessors. Returned slices are shared and must not be modified.

func (t CInteger) Kind() CIntKind                { return t.kind }
func (t Signedbv) Width() uint64                 { return t.width }
func (t Unsignedbv) Width() uint64               { return t.width }
func (t Pointer) Elem() Type                     { return t.elem }
func (t Array) Elem() Type                       { return t.elem }
func (t Array) Size() uint64                     { return t.size }
func (t FlexibleArray) Elem() Type               { return t.elem }
func (t InfiniteArray) Elem() Type               { return t.elem }
func (t Vector) Elem() Type                      { return t.elem }
func (t Vector) Size() uint64                    { return t.size }
func (t Struct) Tag() string                     { return t.tag }
func (t Struct) Components() []DatatypeComponent { return t.components }
func (t Union) Tag() string                      { return t.tag }
func (t Union) Components() []DatatypeComponent  { return t.components }
func (t IncompleteStruct) Tag() string           { return t.tag }
func (t IncompleteUnion) Tag() string            { return t.tag }
func (t StructTag) ID() string                   { return t.id }
func (t UnionTag) ID() string                    { return t.id }
func (t CBitField) Elem() Type                   { return t.elem }
func (t CBitField) Width() uint64                { return t.width }
func (t TypeDef) Name() string                   { return t.name }
func (t TypeDef) Elem() Type                     { return t.elem }
func (t Code) Params() []Parameter               { return t.params }
func (t Code) Return() Type                      { return t.ret }
func (t VariadicCode) Params() []Parameter       { return t.params }
func (t VariadicCode) Return() Type              { return t.ret }

// AggrTagPrefix prefixes struct and union names in the symbol table.
const AggrTagPrefix = "tag-"

// AggrTag returns the symbol-table id of the struct or union named name.
func AggrTag(name string) string {
	return AggrTagPrefix + name
}

func MakeBool() Type        { return Bool{} }
func MakeCBool() Type       { return CInteger{kind: CIntBool} }
func MakeCChar() Type       { return CInteger{kind: CIntChar} }
func MakeCInt() Type        { return CInteger{kind: CIntInt} }
func MakeCLongInt() Type    { return CInteger{kind: CIntLongInt} }
func MakeSizeT() Type       { return CInteger{kind: CIntSizeT} }
func MakeSSizeT() Type      { return CInteger{kind: CIntSSizeT} }
func MakeInteger() Type     { return Integer{} }
func MakeFloat16() Type     { return Float16{} }
func MakeFloat() Type       { return Float{} }
func MakeDouble() Type      { return Double{} }
func MakeFloat128() Type    { return Float128{} }
func MakeEmpty() Type       { return Empty{} }
func MakeConstructor() Type { return Constructor{} }

// MakeVoidPointer returns void*.
func MakeVoidPointer() Type { return Pointer{elem: Empty{}} }

// MakeCharPointer returns char*.
func MakeCharPointer() Type { return Pointer{elem: MakeCChar()} }

func MakeSigned(width uint64) Type {
	ice.Assertf(width > 0, "signedbv width must be positive")
	return Signedbv{width: width}
}

func MakeUnsigned(width uint64) Type {
	ice.Assertf(width > 0, "unsignedbv width must be positive")
	return Unsignedbv{width: width}
}

func MakePointer(elem Type) Type {
	ice.Assertf(elem != nil, "pointer to nil type")
	return Pointer{elem: elem}
}

func MakeArray(elem Type, size uint64) Type {
	ice.Assertf(elem != nil, "array of nil type")
	return Array{elem: elem, size: size}
}

func MakeFlexibleArray(elem Type) Type {
	ice.Assertf(elem != nil, "flexible array of nil type")
	return FlexibleArray{elem: elem}
}

func MakeInfiniteArray(elem Type) Type {
	ice.Assertf(elem != nil, "infinite array of nil type")
	return InfiniteArray{elem: elem}
}

// MakeVector requires a numeric element type.
func MakeVector(elem Type, size uint64) Type {
	ice.Assertf(elem != nil && IsNumeric(elem), "vector element must be numeric, got %v", elem)
	return Vector{elem: elem, size: size}
}

// MakeStruct builds a complete struct. Component names must be unique.
func MakeStruct(tag string, components []DatatypeComponent) Type {
	ice.Assertf(tag != "", "struct tag is empty")
	checkUniqueNames("struct "+tag, components)
	return Struct{tag: tag, components: components}
}

// MakeUnion builds a complete union. Component names must be unique.
func MakeUnion(tag string, components []DatatypeComponent) Type {
	ice.Assertf(tag != "", "union tag is empty")
	checkUniqueNames("union "+tag, components)
	return Union{tag: tag, components: components}
}

func checkUniqueNames(what string, components []DatatypeComponent) {
	seen := make(map[string]struct{}, len(components))
	for _, c := range components {
		ice.Assertf(c != nil, "%s: nil component", what)
		if _, dup := seen[c.Name()]; dup {
			ice.Failf("%s: duplicate component %q", what, c.Name())
		}
		seen[c.Name()] = struct{}{}
	}
}

func MakeIncompleteStruct(tag string) Type {
	ice.Assertf(tag != "", "struct tag is empty")
	return IncompleteStruct{tag: tag}
}

func MakeIncompleteUnion(tag string) Type {
	ice.Assertf(tag != "", "union tag is empty")
	return IncompleteUnion{tag: tag}
}

// MakeStructTag refers to the struct named name.
func MakeStructTag(name string) Type {
	ice.Assertf(name != "", "struct tag is empty")
	return StructTag{id: AggrTag(name)}
}

// MakeUnionTag refers to the union named name.
func MakeUnionTag(name string) Type {
	ice.Assertf(name != "", "union tag is empty")
	return UnionTag{id: AggrTag(name)}
}

// MakeStructTagRaw refers to a struct by its full aggregate id.
func MakeStructTagRaw(id string) Type {
	ice.Assertf(id != "", "struct tag id is empty")
	return StructTag{id: id}
}

// MakeUnionTagRaw refers to a union by its full aggregate id.
func MakeUnionTagRaw(id string) Type {
	ice.Assertf(id != "", "union tag id is empty")
	return UnionTag{id: id}
}

// MakeBitField requires an integer base at least as wide as the field. The
// base width is checked against the explicit width only for fixed-width
// bases; C integer kinds are checked by the layout engine.
func MakeBitField(elem Type, width uint64) Type {
	ice.Assertf(width > 0, "bit-field width must be positive")
	ice.Assertf(elem != nil && IsInteger(elem), "bit-field base must be an integer, got %v", elem)
	if w, ok := fixedWidth(elem); ok {
		ice.Assertf(w >= width, "bit-field of width %d does not fit in %v", width, elem)
	}
	return CBitField{elem: elem, width: width}
}

func MakeTypeDef(name string, elem Type) Type {
	ice.Assertf(name != "", "typedef name is empty")
	ice.Assertf(elem != nil, "typedef %s of nil type", name)
	return TypeDef{name: name, elem: elem}
}

func MakeCode(params []Parameter, ret Type) Type {
	ice.Assertf(ret != nil, "function type without return type")
	return Code{params: params, ret: ret}
}

func MakeVariadicCode(params []Parameter, ret Type) Type {
	ice.Assertf(ret != nil, "function type without return type")
	return VariadicCode{params: params, ret: ret}
}

// ToTag returns the tag reference of a struct or union definition. Tags and
// incomplete declarations map to the same reference.
func ToTag(t Type) Type {
	switch v := t.(type) {
	case Struct:
		return MakeStructTag(v.tag)
	case IncompleteStruct:
		return MakeStructTag(v.tag)
	case StructTag:
		return v
	case Union:
		return MakeUnionTag(v.tag)
	case IncompleteUnion:
		return MakeUnionTag(v.tag)
	case UnionTag:
		return v
	default:
		ice.Failf("%v has no aggregate tag", t)
		return nil
	}
}

// ArithmeticOverflowResultType is the struct returned by overflow_result
// operators: the wrapped result and an overflow flag.
func ArithmeticOverflowResultType(operand Type) Type {
	ice.Assertf(IsInteger(operand), "overflow result of non-integer %v", operand)
	return MakeStruct("overflow_result_"+Identifier(operand), []DatatypeComponent{
		MakeField(OverflowResultField, operand),
		MakeField(OverflowFlagField, MakeBool()),
	})
}

const (
	OverflowResultField = "result"
	OverflowFlagField   = "overflowed"
)
