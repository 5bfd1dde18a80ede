package types

import (
	"fmt"

	"gotoc/internal/ice"
)

// DatatypeComponent is one member of a struct or union definition.
type DatatypeComponent interface {
	implComponent()
	Name() string
	// Type is the type seen by member access.
	Type() Type
	// StorageType is the type that occupies memory and is serialized.
	StorageType() Type
	IsPadding() bool
}

// Field is an ordinary named member.
type Field struct {
	name string
	typ  Type
}

// UnionField is a union member whose storage is widened to the union size.
type UnionField struct {
	name   string
	typ    Type
	padded Type
}

// Padding is an anonymous filler member. It is only produced by WithPadding.
type Padding struct {
	name string
	bits uint64
}

func (Field) implComponent()      {}
func (UnionField) implComponent() {}
func (Padding) implComponent()    {}

func (f Field) Name() string           { return f.name }
func (f Field) Type() Type             { return f.typ }
func (f Field) StorageType() Type      { return f.typ }
func (f Field) IsPadding() bool        { return false }
func (f UnionField) Name() string      { return f.name }
func (f UnionField) Type() Type        { return f.typ }
func (f UnionField) StorageType() Type { return f.padded }
func (f UnionField) IsPadding() bool   { return false }
func (p Padding) Name() string         { return p.name }
func (p Padding) Type() Type           { return Unsignedbv{width: p.bits} }
func (p Padding) StorageType() Type    { return Unsignedbv{width: p.bits} }
func (p Padding) IsPadding() bool      { return true }

// Bits is the padding width.
func (p Padding) Bits() uint64 { return p.bits }

func MakeField(name string, typ Type) DatatypeComponent {
	ice.Assertf(name != "", "field name is empty")
	ice.Assertf(typ != nil, "field %s has nil type", name)
	return Field{name: name, typ: typ}
}

// MakeUnionField declares a union member of type typ stored as padded.
func MakeUnionField(name string, typ, padded Type) DatatypeComponent {
	ice.Assertf(name != "", "union field name is empty")
	ice.Assertf(typ != nil && padded != nil, "union field %s has nil type", name)
	return UnionField{name: name, typ: typ, padded: padded}
}

// WithPadding interleaves fields with padding components so that field i
// starts at offsetsBits[i] and the aggregate spans sizeBits. widthsBits holds
// the storage width of each field. Offsets come from the layout oracle and
// must be non-decreasing and non-overlapping.
func WithPadding(fields []DatatypeComponent, offsetsBits, widthsBits []uint64, sizeBits uint64) []DatatypeComponent {
	ice.Assertf(len(fields) == len(offsetsBits) && len(fields) == len(widthsBits),
		"padding: %d fields, %d offsets, %d widths", len(fields), len(offsetsBits), len(widthsBits))
	out := make([]DatatypeComponent, 0, len(fields)*2+1)
	next := 0
	pad := func(bits uint64) {
		out = append(out, Padding{name: fmt.Sprintf("$pad%d", next), bits: bits})
		next++
	}
	var cursor uint64
	for i, f := range fields {
		ice.Assertf(!f.IsPadding(), "padding supplied as field %d", i)
		off := offsetsBits[i]
		ice.Assertf(off >= cursor, "field %s at bit %d overlaps previous member ending at %d", f.Name(), off, cursor)
		if off > cursor {
			pad(off - cursor)
		}
		out = append(out, f)
		cursor = off + widthsBits[i]
	}
	ice.Assertf(sizeBits >= cursor, "aggregate size %d smaller than its members (%d)", sizeBits, cursor)
	if sizeBits > cursor {
		pad(sizeBits - cursor)
	}
	return out
}

// NonPadding returns the components that carry values.
func NonPadding(components []DatatypeComponent) []DatatypeComponent {
	out := make([]DatatypeComponent, 0, len(components))
	for _, c := range components {
		if !c.IsPadding() {
			out = append(out, c)
		}
	}
	return out
}

// Parameter is a formal parameter of a function type. Only its type takes
// part in type equality.
type Parameter struct {
	typ        Type
	identifier string
	baseName   string
}

func MakeParameter(typ Type, identifier, baseName string) Parameter {
	ice.Assertf(typ != nil, "parameter %q has nil type", identifier)
	return Parameter{typ: typ, identifier: identifier, baseName: baseName}
}

// AnonParameter is a parameter known only by its type.
func AnonParameter(typ Type) Parameter {
	return MakeParameter(typ, "", "")
}

func (p Parameter) Type() Type         { return p.typ }
func (p Parameter) Identifier() string { return p.identifier }
func (p Parameter) BaseName() string   { return p.baseName }
