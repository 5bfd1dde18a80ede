package layout

import (
	"math/bits"

	"gotoc/internal/types"
)

func (e *Engine) computeLayout(t types.Type, state *layoutState) (TypeLayout, *LayoutError) {
	mm := e.Machine
	switch v := t.(type) {
	case types.Empty:
		return TypeLayout{Size: 0, Align: 1}, nil

	case types.CInteger, types.Signedbv, types.Unsignedbv:
		w, _ := types.NativeWidth(v, mm)
		return e.scalarLayoutBits(w), nil

	case types.CBitField:
		return e.layoutOf(v.Elem(), state)

	case types.Float16:
		return e.scalarLayoutBits(16), nil
	case types.Float:
		return e.scalarLayoutBits(mm.Float.Width), nil
	case types.Double:
		return e.scalarLayoutBits(mm.Double.Width), nil
	case types.Float128:
		return e.scalarLayoutBits(128), nil

	case types.Pointer:
		return e.ptrLayout(), nil

	case types.Array:
		return e.arrayFixedLayout(t, v.Elem(), v.Size(), state)

	case types.FlexibleArray:
		el, err := e.layoutOf(v.Elem(), state)
		if err != nil {
			return TypeLayout{Size: 0, Align: 1}, err
		}
		return TypeLayout{Size: 0, Align: el.Align}, nil

	case types.Vector:
		l, err := e.arrayFixedLayout(t, v.Elem(), v.Size(), state)
		if err != nil {
			return l, err
		}
		// Vectors are aligned to their full size when it is a power of two.
		if l.Size > 0 && l.Size&(l.Size-1) == 0 {
			l.Align = l.Size
		}
		return l, nil

	case types.Struct:
		return e.explicitStructLayout(v, state)

	case types.Union:
		return e.unionLayout(v, state)

	case types.StructTag:
		return e.resolveTag(t, v.ID(), state)
	case types.UnionTag:
		return e.resolveTag(t, v.ID(), state)

	case types.TypeDef:
		return e.layoutOf(v.Elem(), state)

	case types.IncompleteStruct, types.IncompleteUnion:
		return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrIncomplete, Type: types.Identifier(t)}

	default:
		// bool, integer, infinite arrays, code, constructor
		return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrUnsized, Type: types.Identifier(t)}
	}
}

func (e *Engine) resolveTag(t types.Type, id string, state *layoutState) (TypeLayout, *LayoutError) {
	if e.Resolver == nil {
		return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrIncomplete, Type: types.Identifier(t)}
	}
	def, ok := e.Resolver.LookupType(id)
	if !ok {
		return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrIncomplete, Type: types.Identifier(t)}
	}
	return e.layoutOf(def, state)
}

func (e *Engine) ptrLayout() TypeLayout {
	ptrSize := e.Target.PtrSize
	ptrAlign := e.Target.PtrAlign
	if ptrSize == 0 {
		ptrSize = 8
	}
	if ptrAlign == 0 {
		ptrAlign = ptrSize
	}
	return TypeLayout{Size: ptrSize, Align: ptrAlign}
}

func (e *Engine) scalarLayoutBits(width uint64) TypeLayout {
	size := (width + 7) / 8
	if size == 0 {
		return TypeLayout{Size: 0, Align: 1}
	}
	align := size
	if align&(align-1) != 0 {
		// 80-bit and 96-bit long doubles, odd bit-vectors
		align = uint64(1) << (63 - bits.LeadingZeros64(align))
	}
	if e.Target.MaxScalarAlign > 0 {
		align = min(align, e.Target.MaxScalarAlign)
	}
	return TypeLayout{Size: size, Align: align}
}

func roundUp(n, align uint64) uint64 {
	if align <= 1 {
		return n
	}
	r := n % align
	if r == 0 {
		return n
	}
	return n + (align - r)
}

func (e *Engine) arrayFixedLayout(t, elem types.Type, length uint64, state *layoutState) (TypeLayout, *LayoutError) {
	elemLayout, err := e.layoutOf(elem, state)
	if err != nil {
		return TypeLayout{Size: 0, Align: 1}, err
	}
	elemAlign := max(elemLayout.Align, 1)
	stride := roundUp(elemLayout.Size, elemAlign)
	hi, size := bits.Mul64(stride, length)
	if hi != 0 {
		return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrSizeOverflow, Type: types.Identifier(t)}
	}
	return TypeLayout{
		Size:  size,
		Align: elemAlign,
	}, nil
}

// explicitStructLayout lays out a struct whose padding is already
// materialized: components are contiguous and the alignment is the largest
// member alignment, unless PaddedStruct recorded attributes for the tag.
func (e *Engine) explicitStructLayout(st types.Struct, state *layoutState) (TypeLayout, *LayoutError) {
	attrs, hasAttrs := e.cache.attrsOf(st.Tag())
	comps := st.Components()
	offsets := make([]uint64, len(comps))
	aligns := make([]uint64, len(comps))
	var offBits uint64
	align := uint64(1)
	for i, c := range comps {
		offsets[i] = offBits / 8
		if c.IsPadding() {
			aligns[i] = 1
			offBits += c.(types.Padding).Bits()
			continue
		}
		if bf, ok := types.UnwrapTypedef(c.Type()).(types.CBitField); ok {
			fl, err := e.layoutOf(bf.Elem(), state)
			if err != nil {
				return TypeLayout{Size: 0, Align: 1}, err
			}
			aligns[i] = fl.Align
			align = max(align, fl.Align)
			offBits += bf.Width()
			continue
		}
		fl, err := e.layoutOf(c.StorageType(), state)
		if err != nil {
			return TypeLayout{Size: 0, Align: 1}, err
		}
		aligns[i] = max(fl.Align, 1)
		align = max(align, aligns[i])
		offBits += fl.Size * 8
	}
	if hasAttrs {
		align = attrs.alignFor(align)
		if attrs.Packed {
			for i := range aligns {
				aligns[i] = 1
			}
		}
	}
	return TypeLayout{
		Size:         (offBits + 7) / 8,
		Align:        align,
		FieldOffsets: offsets,
		FieldAligns:  aligns,
	}, nil
}

func (e *Engine) unionLayout(u types.Union, state *layoutState) (TypeLayout, *LayoutError) {
	size := uint64(0)
	align := uint64(1)
	comps := u.Components()
	offsets := make([]uint64, len(comps))
	aligns := make([]uint64, len(comps))
	for i, c := range comps {
		fl, err := e.layoutOf(c.StorageType(), state)
		if err != nil {
			return TypeLayout{Size: 0, Align: 1}, err
		}
		aligns[i] = max(fl.Align, 1)
		size = max(size, fl.Size)
		align = max(align, aligns[i])
	}
	return TypeLayout{
		Size:         roundUp(size, align),
		Align:        align,
		FieldOffsets: offsets,
		FieldAligns:  aligns,
	}, nil
}
