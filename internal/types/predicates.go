package types

import (
	"fmt"
	"strings"
)

// UnwrapTypedef strips any number of TypeDef layers.
func UnwrapTypedef(t Type) Type {
	for {
		td, ok := t.(TypeDef)
		if !ok {
			return t
		}
		t = td.elem
	}
}

func IsBool(t Type) bool {
	_, ok := UnwrapTypedef(t).(Bool)
	return ok
}

func IsCBool(t Type) bool {
	ci, ok := UnwrapTypedef(t).(CInteger)
	return ok && ci.kind == CIntBool
}

// IsInteger reports C integers, fixed-width bitvectors and the unbounded
// Integer. Bit-fields are reported separately.
func IsInteger(t Type) bool {
	switch UnwrapTypedef(t).(type) {
	case CInteger, Signedbv, Unsignedbv, Integer:
		return true
	default:
		return false
	}
}

func IsFloatingPoint(t Type) bool {
	switch UnwrapTypedef(t).(type) {
	case Float16, Float, Double, Float128:
		return true
	default:
		return false
	}
}

func IsNumeric(t Type) bool {
	return IsInteger(t) || IsFloatingPoint(t)
}

func IsPointer(t Type) bool {
	_, ok := UnwrapTypedef(t).(Pointer)
	return ok
}

// IsVoidPointer reports void*.
func IsVoidPointer(t Type) bool {
	p, ok := UnwrapTypedef(t).(Pointer)
	return ok && IsEmpty(p.elem)
}

func IsEmpty(t Type) bool {
	_, ok := UnwrapTypedef(t).(Empty)
	return ok
}

func IsVector(t Type) bool {
	_, ok := UnwrapTypedef(t).(Vector)
	return ok
}

func IsArray(t Type) bool {
	_, ok := UnwrapTypedef(t).(Array)
	return ok
}

// IsArrayLike reports types that support direct indexing.
func IsArrayLike(t Type) bool {
	switch UnwrapTypedef(t).(type) {
	case Array, FlexibleArray, InfiniteArray, Vector:
		return true
	default:
		return false
	}
}

func IsBitField(t Type) bool {
	_, ok := UnwrapTypedef(t).(CBitField)
	return ok
}

func IsStructLike(t Type) bool {
	switch UnwrapTypedef(t).(type) {
	case Struct, StructTag, IncompleteStruct:
		return true
	default:
		return false
	}
}

func IsUnionLike(t Type) bool {
	switch UnwrapTypedef(t).(type) {
	case Union, UnionTag, IncompleteUnion:
		return true
	default:
		return false
	}
}

func IsStructTag(t Type) bool {
	_, ok := UnwrapTypedef(t).(StructTag)
	return ok
}

func IsUnionTag(t Type) bool {
	_, ok := UnwrapTypedef(t).(UnionTag)
	return ok
}

func IsCode(t Type) bool {
	switch UnwrapTypedef(t).(type) {
	case Code, VariadicCode:
		return true
	default:
		return false
	}
}

func IsVariadicCode(t Type) bool {
	_, ok := UnwrapTypedef(t).(VariadicCode)
	return ok
}

// IsLvalue reports whether values of t may appear on the left of an
// assignment.
func IsLvalue(t Type) bool {
	switch UnwrapTypedef(t).(type) {
	case Bool, CBitField, CInteger, Float16, Float, Double, Float128, Pointer,
		Signedbv, Unsignedbv, Integer, Struct, StructTag, Union, UnionTag, Vector:
		return true
	default:
		return false
	}
}

// BaseType returns the element type of pointers, arrays, vectors and
// bit-fields.
func BaseType(t Type) (Type, bool) {
	switch v := UnwrapTypedef(t).(type) {
	case Pointer:
		return v.elem, true
	case Array:
		return v.elem, true
	case FlexibleArray:
		return v.elem, true
	case InfiniteArray:
		return v.elem, true
	case Vector:
		return v.elem, true
	case CBitField:
		return v.elem, true
	default:
		return nil, false
	}
}

// Signature returns the parameters and return type of a function type.
func Signature(t Type) (params []Parameter, ret Type, variadic bool, ok bool) {
	switch v := UnwrapTypedef(t).(type) {
	case Code:
		return v.params, v.ret, false, true
	case VariadicCode:
		return v.params, v.ret, true, true
	default:
		return nil, nil, false, false
	}
}

// Tag returns the aggregate tag of a struct or union definition, or the
// aggregate id of a tag reference.
func Tag(t Type) (string, bool) {
	switch v := UnwrapTypedef(t).(type) {
	case Struct:
		return v.tag, true
	case Union:
		return v.tag, true
	case IncompleteStruct:
		return v.tag, true
	case IncompleteUnion:
		return v.tag, true
	case StructTag:
		return v.id, true
	case UnionTag:
		return v.id, true
	default:
		return "", false
	}
}

func fixedWidth(t Type) (uint64, bool) {
	switch v := UnwrapTypedef(t).(type) {
	case Signedbv:
		return v.width, true
	case Unsignedbv:
		return v.width, true
	case CBitField:
		return v.width, true
	default:
		return 0, false
	}
}

// Equal compares types structurally. Parameter names do not matter.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case Pointer:
		y, ok := b.(Pointer)
		return ok && Equal(x.elem, y.elem)
	case Array:
		y, ok := b.(Array)
		return ok && x.size == y.size && Equal(x.elem, y.elem)
	case FlexibleArray:
		y, ok := b.(FlexibleArray)
		return ok && Equal(x.elem, y.elem)
	case InfiniteArray:
		y, ok := b.(InfiniteArray)
		return ok && Equal(x.elem, y.elem)
	case Vector:
		y, ok := b.(Vector)
		return ok && x.size == y.size && Equal(x.elem, y.elem)
	case Struct:
		y, ok := b.(Struct)
		return ok && x.tag == y.tag && componentsEqual(x.components, y.components)
	case Union:
		y, ok := b.(Union)
		return ok && x.tag == y.tag && componentsEqual(x.components, y.components)
	case CBitField:
		y, ok := b.(CBitField)
		return ok && x.width == y.width && Equal(x.elem, y.elem)
	case TypeDef:
		y, ok := b.(TypeDef)
		return ok && x.name == y.name && Equal(x.elem, y.elem)
	case Code:
		y, ok := b.(Code)
		return ok && paramsEqual(x.params, y.params) && Equal(x.ret, y.ret)
	case VariadicCode:
		y, ok := b.(VariadicCode)
		return ok && paramsEqual(x.params, y.params) && Equal(x.ret, y.ret)
	default:
		// Remaining variants hold only comparable scalars.
		return a == b
	}
}

func paramsEqual(a, b []Parameter) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i].typ, b[i].typ) {
			return false
		}
	}
	return true
}

func componentsEqual(a, b []DatatypeComponent) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !ComponentEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// ComponentEqual compares two components including their kind.
func ComponentEqual(a, b DatatypeComponent) bool {
	switch x := a.(type) {
	case Field:
		y, ok := b.(Field)
		return ok && x.name == y.name && Equal(x.typ, y.typ)
	case UnionField:
		y, ok := b.(UnionField)
		return ok && x.name == y.name && Equal(x.typ, y.typ) && Equal(x.padded, y.padded)
	case Padding:
		y, ok := b.(Padding)
		return ok && x == y
	default:
		return false
	}
}

// Identifier renders t as a string usable inside symbol names.
func Identifier(t Type) string {
	switch v := t.(type) {
	case nil:
		return "<nil>"
	case Bool:
		return "bool"
	case CInteger:
		return v.kind.String()
	case Signedbv:
		return fmt.Sprintf("signedbv_%d", v.width)
	case Unsignedbv:
		return fmt.Sprintf("unsignedbv_%d", v.width)
	case Integer:
		return "integer"
	case Float16:
		return "float16"
	case Float:
		return "float"
	case Double:
		return "double"
	case Float128:
		return "float128"
	case Pointer:
		return "pointer_to_" + Identifier(v.elem)
	case Array:
		return fmt.Sprintf("array_of_%d_%s", v.size, Identifier(v.elem))
	case FlexibleArray:
		return "flexarray_of_" + Identifier(v.elem)
	case InfiniteArray:
		return "infinite_array_of_" + Identifier(v.elem)
	case Vector:
		return fmt.Sprintf("vec_of_%d_%s", v.size, Identifier(v.elem))
	case Struct:
		return "struct_" + v.tag
	case Union:
		return "union_" + v.tag
	case IncompleteStruct:
		return "incomplete_struct_" + v.tag
	case IncompleteUnion:
		return "incomplete_union_" + v.tag
	case StructTag:
		return "struct_tag_" + v.id
	case UnionTag:
		return "union_tag_" + v.id
	case CBitField:
		return fmt.Sprintf("cbitfield_of_%d_%s", v.width, Identifier(v.elem))
	case TypeDef:
		return "typedef_" + v.name
	case Code:
		return codeIdentifier("code", v.params, v.ret)
	case VariadicCode:
		return codeIdentifier("variadic_code", v.params, v.ret)
	case Empty:
		return "empty"
	case Constructor:
		return "constructor"
	default:
		return fmt.Sprintf("%T", t)
	}
}

func codeIdentifier(kind string, params []Parameter, ret Type) string {
	var b strings.Builder
	b.WriteString(kind)
	b.WriteString("_from_")
	for i, p := range params {
		if i > 0 {
			b.WriteByte('_')
		}
		b.WriteString(Identifier(p.typ))
	}
	b.WriteString("_to_")
	b.WriteString(Identifier(ret))
	return b.String()
}
