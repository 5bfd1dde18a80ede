package types

import (
	"math/bits"

	"gotoc/internal/ice"
	"gotoc/internal/machine"
)

// Resolver looks up aggregate definitions by their symbol-table id.
type Resolver interface {
	LookupType(id string) (Type, bool)
}

// NativeWidth returns the machine width of integer-like types.
func NativeWidth(t Type, mm *machine.Model) (uint64, bool) {
	switch v := UnwrapTypedef(t).(type) {
	case CInteger:
		switch v.kind {
		case CIntBool:
			return mm.BoolWidth, true
		case CIntChar:
			return mm.CharWidth, true
		case CIntInt:
			return mm.IntWidth, true
		case CIntLongInt:
			return mm.LongIntWidth, true
		case CIntSizeT, CIntSSizeT:
			return mm.PointerWidth, true
		}
	case Pointer:
		return mm.PointerWidth, true
	case Signedbv:
		return v.width, true
	case Unsignedbv:
		return v.width, true
	case CBitField:
		return v.width, true
	}
	return 0, false
}

// IsSigned reports two's-complement integer types. A bit-field takes the
// signedness of its base.
func IsSigned(t Type, mm *machine.Model) bool {
	switch v := UnwrapTypedef(t).(type) {
	case CInteger:
		switch v.kind {
		case CIntInt, CIntLongInt, CIntSSizeT:
			return true
		case CIntChar:
			return !mm.CharIsUnsigned
		default:
			return false
		}
	case Signedbv, Integer:
		return true
	case CBitField:
		return IsSigned(v.elem, mm)
	default:
		return false
	}
}

func IsUnsigned(t Type, mm *machine.Model) bool {
	return IsInteger(t) && !IsSigned(t, mm)
}

// IsEqualOnMachine reports types with identical width and signedness on mm,
// such as int and signedbv_32 on a 32-bit int target.
func IsEqualOnMachine(a, b Type, mm *machine.Model) bool {
	if Equal(a, b) {
		return true
	}
	wa, okA := NativeWidth(a, mm)
	wb, okB := NativeWidth(b, mm)
	if !okA || !okB || wa != wb {
		return false
	}
	return IsSigned(a, mm) == IsSigned(b, mm)
}

// SizeofInBits is the storage size of t. Unsized kinds (mathematical bool and
// integer, incomplete aggregates, infinite arrays, variadic code) are an
// internal error.
func SizeofInBits(t Type, r Resolver, mm *machine.Model) uint64 {
	switch v := t.(type) {
	case Array:
		return mulBits(v.size, SizeofInBits(v.elem, r, mm), t)
	case Vector:
		return mulBits(v.size, SizeofInBits(v.elem, r, mm), t)
	case CBitField:
		return v.width
	case CInteger, Pointer, Signedbv, Unsignedbv:
		w, _ := NativeWidth(v, mm)
		return w
	case Code, Empty, FlexibleArray:
		return 0
	case Float16:
		return 16
	case Float:
		return mm.Float.Width
	case Double:
		return mm.Double.Width
	case Float128:
		return 128
	case Struct:
		var total uint64
		for _, c := range v.components {
			sz := SizeofInBits(c.StorageType(), r, mm)
			var carry uint64
			total, carry = bits.Add64(total, sz, 0)
			ice.Assertf(carry == 0, "size of %v overflows", t)
		}
		return total
	case Union:
		var widest uint64
		for _, c := range v.components {
			widest = max(widest, SizeofInBits(c.StorageType(), r, mm))
		}
		return widest
	case StructTag:
		return SizeofInBits(lookupTag(v.id, r), r, mm)
	case UnionTag:
		return SizeofInBits(lookupTag(v.id, r), r, mm)
	case TypeDef:
		return SizeofInBits(v.elem, r, mm)
	default:
		ice.Failf("sizeof of unsized type %v", t)
		return 0
	}
}

func mulBits(n, elem uint64, t Type) uint64 {
	hi, lo := bits.Mul64(n, elem)
	ice.Assertf(hi == 0, "size of %v overflows", t)
	return lo
}

func lookupTag(id string, r Resolver) Type {
	ice.Assertf(r != nil, "cannot resolve %s without a symbol table", id)
	def, ok := r.LookupType(id)
	ice.Assertf(ok, "unknown aggregate %s", id)
	return def
}

// Components returns the members of a struct or union, resolving tags.
func Components(t Type, r Resolver) []DatatypeComponent {
	switch v := UnwrapTypedef(t).(type) {
	case Struct:
		return v.components
	case Union:
		return v.components
	case StructTag:
		return Components(lookupTag(v.id, r), r)
	case UnionTag:
		return Components(lookupTag(v.id, r), r)
	default:
		ice.Failf("%v has no components", t)
		return nil
	}
}

// LookupComponent finds a member by name.
func LookupComponent(t Type, name string, r Resolver) (DatatypeComponent, bool) {
	for _, c := range Components(t, r) {
		if c.Name() == name {
			return c, true
		}
	}
	return nil, false
}
