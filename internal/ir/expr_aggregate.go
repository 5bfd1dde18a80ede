package ir

import (
	"slices"

	"gotoc/internal/ice"
	"gotoc/internal/types"
)

// StructExprFromPaddedValues is the canonical struct constructor: values
// lists every component of the struct tagged by typ, padding included, in
// declaration order.
func StructExprFromPaddedValues(typ types.Type, values []Expr, st *SymbolTable) Expr {
	ice.Assertf(types.IsStructTag(typ), "struct literal needs a struct tag, got %v", typ)
	comps := types.Components(typ, st)
	ice.Assertf(len(comps) == len(values), "struct %v has %d components, got %d values", typ, len(comps), len(values))
	for i, c := range comps {
		ice.Assertf(types.Equal(c.Type(), values[i].typ), "field %s of %v: have %v, want %v", c.Name(), typ, values[i].typ, c.Type())
	}
	return mk(StructLit{Values: slices.Clone(values)}, typ)
}

// StructExprFromValues takes values for the non-padding components only;
// padding is filled with nondet values.
func StructExprFromValues(typ types.Type, values []Expr, st *SymbolTable) Expr {
	ice.Assertf(types.IsStructTag(typ), "struct literal needs a struct tag, got %v", typ)
	comps := types.Components(typ, st)
	padded := make([]Expr, 0, len(comps))
	next := 0
	for _, c := range comps {
		if c.IsPadding() {
			padded = append(padded, Nondet(c.Type()))
			continue
		}
		ice.Assertf(next < len(values), "too few values for %v", typ)
		padded = append(padded, values[next])
		next++
	}
	ice.Assertf(next == len(values), "%d values for %d fields of %v", len(values), next, typ)
	return StructExprFromPaddedValues(typ, padded, st)
}

// StructExpr builds a struct from named field values. Every non-padding
// field must be given; padding is filled with nondet values.
func StructExpr(typ types.Type, fields map[string]Expr, st *SymbolTable) Expr {
	return structFromMap(typ, fields, st, false)
}

// StructExprWithNondetFields is StructExpr where omitted fields become
// nondet as well.
func StructExprWithNondetFields(typ types.Type, fields map[string]Expr, st *SymbolTable) Expr {
	return structFromMap(typ, fields, st, true)
}

func structFromMap(typ types.Type, fields map[string]Expr, st *SymbolTable, fillMissing bool) Expr {
	ice.Assertf(types.IsStructTag(typ), "struct literal needs a struct tag, got %v", typ)
	comps := types.Components(typ, st)
	values := make([]Expr, 0, len(comps))
	used := 0
	for _, c := range comps {
		if c.IsPadding() {
			values = append(values, Nondet(c.Type()))
			continue
		}
		v, ok := fields[c.Name()]
		switch {
		case ok:
			used++
			values = append(values, v)
		case fillMissing:
			values = append(values, Nondet(c.Type()))
		default:
			ice.Failf("missing field %s of %v", c.Name(), typ)
		}
	}
	ice.Assertf(used == len(fields), "unknown fields given for %v", typ)
	return StructExprFromPaddedValues(typ, values, st)
}

// UnionExpr initializes field of the union tagged by typ with value.
func UnionExpr(typ types.Type, field string, value Expr, st *SymbolTable) Expr {
	ice.Assertf(types.IsUnionTag(typ), "union literal needs a union tag, got %v", typ)
	c, ok := types.LookupComponent(typ, field, st)
	ice.Assertf(ok, "%v has no field %s", typ, field)
	ice.Assertf(types.Equal(c.Type(), value.typ), "union field %s: have %v, want %v", field, value.typ, c.Type())
	return mk(UnionLit{Field: field, Value: value}, typ)
}

// EmptyUnion is the value of a union without fields.
func EmptyUnion(typ types.Type, st *SymbolTable) Expr {
	ice.Assertf(types.IsUnionTag(typ), "empty union needs a union tag, got %v", typ)
	ice.Assertf(len(types.Components(typ, st)) == 0, "%v is not empty", typ)
	return mk(EmptyUnionLit{}, typ)
}
