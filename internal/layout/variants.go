package layout

import (
	"math/big"

	"gotoc/internal/ice"
	"gotoc/internal/ir"
	"gotoc/internal/machine"
	"gotoc/internal/types"
)

// VariantStrategy says how the active variant of an enum-like aggregate is
// recorded.
type VariantStrategy uint8

const (
	// Direct stores the discriminant in a dedicated tag field.
	Direct VariantStrategy = iota
	// Niche reuses invalid values of a payload field to encode every
	// variant except the untagged one.
	Niche
)

func (s VariantStrategy) String() string {
	switch s {
	case Direct:
		return "direct"
	case Niche:
		return "niche"
	default:
		return "unknown"
	}
}

// VariantsLayout describes the discriminant encoding of an aggregate.
type VariantsLayout struct {
	Strategy VariantStrategy
	TagField string
	TagType  types.Type

	// Direct: discriminant value of each variant, indexed by variant.
	// Missing entries default to the variant index.
	Discriminants []*big.Int

	// Niche: variants NicheLo..NicheHi are encoded as tag values starting
	// at NicheStart; UntaggedVariant owns every other tag value.
	UntaggedVariant int
	NicheLo         int
	NicheHi         int
	NicheStart      *big.Int
}

func (v *VariantsLayout) discriminant(variant int) *big.Int {
	if variant < len(v.Discriminants) && v.Discriminants[variant] != nil {
		return v.Discriminants[variant]
	}
	return big.NewInt(int64(variant))
}

// CodegenDiscriminant reads the discriminant of value as an expression of
// resultType.
func CodegenDiscriminant(value ir.Expr, v *VariantsLayout, st *ir.SymbolTable, resultType types.Type) ir.Expr {
	ice.Assertf(v != nil, "discriminant of %v without variants layout", value.Type())
	tag := value.Member(v.TagField, st)
	switch v.Strategy {
	case Direct:
		return tag.CastTo(resultType)
	case Niche:
		mm := st.MachineModel()
		w, ok := types.NativeWidth(v.TagType, mm)
		ice.Assertf(ok, "niche tag of non-integer type %v", v.TagType)
		ice.Assertf(v.NicheLo <= v.NicheHi, "empty niche range %d..%d", v.NicheLo, v.NicheHi)
		unsigned := types.MakeUnsigned(w)

		// rel = tag - niche_start, computed modulo 2^w
		start := ir.IntConstant(types.TwosComplement(v.NicheStart, w), unsigned)
		rel := tag.CastTo(unsigned).Sub(start)
		relMax := v.NicheHi - v.NicheLo
		var isNiche ir.Expr
		if relMax == 0 {
			isNiche = rel.Eq(ir.ZeroOf(unsigned))
		} else {
			isNiche = rel.Le(ir.Int64Constant(int64(relMax), unsigned))
		}
		lo := ir.Int64Constant(int64(v.NicheLo), resultType)
		untagged := ir.Int64Constant(int64(v.UntaggedVariant), resultType)
		return isNiche.Ternary(rel.CastTo(resultType).Plus(lo), untagged)
	default:
		ice.Failf("unknown variant strategy %v", v.Strategy)
		return ir.Expr{}
	}
}

// SetDiscriminant writes the encoding of variant into place.
func SetDiscriminant(place ir.Expr, variant int, v *VariantsLayout, st *ir.SymbolTable, loc ir.Location) ir.Stmt {
	ice.Assertf(v != nil, "set discriminant of %v without variants layout", place.Type())
	mm := st.MachineModel()
	tag := place.Member(v.TagField, st)
	switch v.Strategy {
	case Direct:
		return ir.Assign(tag, wrapConstant(v.discriminant(variant), tag.Type(), mm), loc)
	case Niche:
		if variant == v.UntaggedVariant {
			return ir.Skip(loc)
		}
		ice.Assertf(variant >= v.NicheLo && variant <= v.NicheHi,
			"variant %d outside niche range %d..%d", variant, v.NicheLo, v.NicheHi)
		val := big.NewInt(int64(variant - v.NicheLo))
		val.Add(val, v.NicheStart)
		return ir.Assign(tag, wrapConstant(val, tag.Type(), mm), loc)
	default:
		ice.Failf("unknown variant strategy %v", v.Strategy)
		return ir.Stmt{}
	}
}

// wrapConstant truncates n to the width of t, reading the result back with
// t's signedness.
func wrapConstant(n *big.Int, t types.Type, mm *machine.Model) ir.Expr {
	w, ok := types.NativeWidth(t, mm)
	ice.Assertf(ok, "tag of non-integer type %v", t)
	u := types.TwosComplement(n, w)
	if types.IsSigned(t, mm) && u.Bit(int(w-1)) == 1 {
		u.Sub(u, new(big.Int).Lsh(big.NewInt(1), uint(w)))
	}
	return ir.IntConstant(u, t)
}
