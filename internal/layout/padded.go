package layout

import (
	"fmt"

	"gotoc/internal/ice"
	"gotoc/internal/ir"
	"gotoc/internal/types"
)

// FieldDecl is a struct member before layout.
type FieldDecl struct {
	Name string
	Type types.Type
	// Align raises the member's alignment (bytes); 0 keeps the natural one.
	Align uint64
}

// Attrs are struct-level layout attributes.
type Attrs struct {
	Packed bool
	// Align raises the struct's alignment (bytes); 0 keeps the natural one.
	Align uint64
}

// alignFor applies the attributes to the natural alignment of a struct.
func (a Attrs) alignFor(natural uint64) uint64 {
	if a.Packed {
		return 1
	}
	return max(natural, a.Align, 1)
}

// PaddedStruct lays out fields with C rules and returns the struct
// definition with explicit padding, together with its layout. Offsets in
// the layout index the padded component list.
func (e *Engine) PaddedStruct(tag string, fields []FieldDecl, attrs Attrs) (types.Type, TypeLayout, error) {
	ice.Assertf(!attrs.Packed || attrs.Align == 0, "struct %s is both packed and aligned", tag)
	comps := make([]types.DatatypeComponent, len(fields))
	offsets := make([]uint64, len(fields))
	widths := make([]uint64, len(fields))

	var offBits uint64
	align := uint64(1)
	for i, f := range fields {
		comps[i] = types.MakeField(f.Name, f.Type)
		if bf, ok := types.UnwrapTypedef(f.Type).(types.CBitField); ok {
			unit, err := e.LayoutOf(bf.Elem())
			if err != nil {
				return nil, TypeLayout{}, fmt.Errorf("field %s.%s: %w", tag, f.Name, err)
			}
			unitBits := unit.Size * 8
			if !attrs.Packed {
				// A bit-field never straddles a storage unit of its base type.
				if unitBits > 0 && offBits%(unit.Align*8)+bf.Width() > unitBits {
					offBits = roundUp(offBits, unit.Align*8)
				}
				align = max(align, unit.Align)
			}
			offsets[i] = offBits
			widths[i] = bf.Width()
			offBits += bf.Width()
			continue
		}

		fl, err := e.LayoutOf(f.Type)
		if err != nil {
			return nil, TypeLayout{}, fmt.Errorf("field %s.%s: %w", tag, f.Name, err)
		}
		fAlign := max(fl.Align, f.Align, 1)
		if attrs.Packed {
			fAlign = 1
		}
		offBits = roundUp(roundUp(offBits, 8), fAlign*8)
		offsets[i] = offBits
		widths[i] = fl.Size * 8
		offBits += fl.Size * 8
		align = max(align, fAlign)
	}
	if attrs.Align != 0 {
		align = max(align, attrs.Align)
	}
	sizeBits := roundUp(roundUp(offBits, 8), align*8)

	def := types.MakeStruct(tag, types.WithPadding(comps, offsets, widths, sizeBits))
	if e.cache == nil {
		e.cache = newCache()
	}
	// The padded components alone only know member alignments. Later
	// queries through the tag must see the same alignment.
	e.cache.setAttrs(tag, Attrs{Packed: attrs.Packed, Align: align})
	l, err := e.LayoutOf(def)
	if err != nil {
		return nil, TypeLayout{}, err
	}
	return def, l, nil
}

// DefineStruct lays out a struct, registers its type symbol in st and
// returns the tag type referring to it.
func (e *Engine) DefineStruct(st *ir.SymbolTable, tag string, fields []FieldDecl, attrs Attrs) (types.Type, TypeLayout, error) {
	def, l, err := e.PaddedStruct(tag, fields, attrs)
	if err != nil {
		return nil, TypeLayout{}, err
	}
	st.Insert(ir.AggrType(def, tag))
	return types.ToTag(def), l, nil
}

// Variant is one alternative of a tagged union.
type Variant struct {
	Name string
	Type types.Type
}

// TaggedUnionDef is the pair of aggregates encoding a tagged union:
// struct <tag> { <TagField> case; union <tag>-union cases; }.
type TaggedUnionDef struct {
	Struct types.Type
	Union  types.Type
	// Padded holds the wrapper structs that widen short payloads to the
	// union's width. Union members refer to them by tag.
	Padded []types.Type
	Layout TypeLayout
}

const (
	TagFieldName     = "case"
	PayloadFieldName = "cases"
)

// TaggedUnion lays out a direct-discriminant tagged union: the tag first,
// then a union of the payloads aligned to the largest payload alignment.
// Every union member is stored padded to the union's full width.
func (e *Engine) TaggedUnion(tag string, tagType types.Type, variants []Variant) (TaggedUnionDef, error) {
	ice.Assertf(types.IsInteger(tagType), "tagged union %s with non-integer tag %v", tag, tagType)
	tagLayout, err := e.LayoutOf(tagType)
	if err != nil {
		return TaggedUnionDef{}, fmt.Errorf("tag of %s: %w", tag, err)
	}

	payloads := make([]TypeLayout, len(variants))
	var payloadSize uint64
	payloadAlign := uint64(1)
	for i, v := range variants {
		pl, err := e.LayoutOf(v.Type)
		if err != nil {
			return TaggedUnionDef{}, fmt.Errorf("variant %s.%s: %w", tag, v.Name, err)
		}
		payloads[i] = pl
		payloadAlign = max(payloadAlign, pl.Align)
		payloadSize = max(payloadSize, pl.Size)
	}
	payloadSize = roundUp(payloadSize, payloadAlign)

	unionTag := tag + "-union"
	members := make([]types.DatatypeComponent, len(variants))
	var wrappers []types.Type
	for i, v := range variants {
		storage := v.Type
		if payloads[i].Size < payloadSize {
			padded := types.MakeStruct(fmt.Sprintf("%s::%s::padded", unionTag, v.Name),
				types.WithPadding([]types.DatatypeComponent{types.MakeField(v.Name, v.Type)},
					[]uint64{0}, []uint64{payloads[i].Size * 8}, payloadSize*8))
			wrappers = append(wrappers, padded)
			storage = types.ToTag(padded)
		}
		members[i] = types.MakeUnionField(v.Name, v.Type, storage)
	}
	union := types.MakeUnion(unionTag, members)

	payloadOffset := roundUp(tagLayout.Size, payloadAlign)
	overallAlign := max(tagLayout.Align, payloadAlign)
	size := roundUp(payloadOffset+payloadSize, overallAlign)

	comps := types.WithPadding(
		[]types.DatatypeComponent{
			types.MakeField(TagFieldName, tagType),
			types.MakeField(PayloadFieldName, types.ToTag(union)),
		},
		[]uint64{0, payloadOffset * 8},
		[]uint64{tagLayout.Size * 8, payloadSize * 8},
		size*8)

	offsets := make([]uint64, 0, len(comps))
	aligns := make([]uint64, 0, len(comps))
	var cursor uint64
	for _, c := range comps {
		offsets = append(offsets, cursor/8)
		switch {
		case c.IsPadding():
			aligns = append(aligns, 1)
			cursor += c.(types.Padding).Bits()
		case c.Name() == TagFieldName:
			aligns = append(aligns, tagLayout.Align)
			cursor += tagLayout.Size * 8
		default:
			aligns = append(aligns, payloadAlign)
			cursor += payloadSize * 8
		}
	}

	return TaggedUnionDef{
		Struct: types.MakeStruct(tag, comps),
		Union:  union,
		Padded: wrappers,
		Layout: TypeLayout{
			Size:         size,
			Align:        overallAlign,
			FieldOffsets: offsets,
			FieldAligns:  aligns,
			Variants: &VariantsLayout{
				Strategy: Direct,
				TagField: TagFieldName,
				TagType:  tagType,
			},
		},
	}, nil
}

// DefineTaggedUnion lays out a tagged union and registers both aggregates
// in st. It returns the struct tag type.
func (e *Engine) DefineTaggedUnion(st *ir.SymbolTable, tag string, tagType types.Type, variants []Variant) (types.Type, TypeLayout, error) {
	def, err := e.TaggedUnion(tag, tagType, variants)
	if err != nil {
		return nil, TypeLayout{}, err
	}
	for _, p := range def.Padded {
		st.Insert(ir.AggrType(p, p.(types.Struct).Tag()))
	}
	st.Insert(ir.AggrType(def.Union, def.Union.(types.Union).Tag()))
	st.Insert(ir.AggrType(def.Struct, tag))
	return types.ToTag(def.Struct), def.Layout, nil
}
