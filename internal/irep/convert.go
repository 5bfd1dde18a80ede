package irep

import (
	"gotoc/internal/ice"
	"gotoc/internal/ir"
	"gotoc/internal/machine"
	"gotoc/internal/types"
)

// Converter lowers IR values to nodes for one machine model. It allocates
// from its arena and inherits the arena's single-goroutine restriction.
type Converter struct {
	arena *Arena
	mm    *machine.Model
}

func NewConverter(a *Arena, mm *machine.Model) *Converter {
	ice.Assertf(mm != nil, "converter without a machine model")
	if a == nil {
		a = NewArena()
	}
	return &Converter{arena: a, mm: mm}
}

func (c *Converter) Arena() *Arena { return c.arena }

func (c *Converter) width(w uint64) NamedSub { return N(Width, c.arena.JustUint(w)) }

func (c *Converter) withLocation(n *Irep, loc ir.Location) *Irep {
	if ir.IsNone(loc) {
		return n
	}
	return n.WithNamedSub(c.arena, CSourceLocation, c.Location(loc))
}

func (c *Converter) withType(n *Irep, t types.Type) *Irep {
	return n.WithNamedSub(c.arena, Type, c.Type(t))
}

// ssizeConstant is the constant node CBMC expects for array and vector
// sizes.
func (c *Converter) ssizeConstant(v uint64) *Irep {
	return c.Expr(ir.Uint64Constant(v, types.MakeSSizeT()))
}

// Type converts a type.
func (c *Converter) Type(t types.Type) *Irep {
	a, mm := c.arena, c.mm
	switch v := t.(type) {
	case types.Array:
		return a.New(Array, []*Irep{c.Type(v.Elem())}, N(Size, c.ssizeConstant(v.Size())))
	case types.CBitField:
		return a.New(CBitField, []*Irep{c.Type(v.Elem())}, c.width(v.Width()))
	case types.Bool:
		return a.Just(Bool)
	case types.CInteger:
		return c.cInteger(v)
	case types.Code:
		return c.code(v.Params(), v.Return(), false)
	case types.VariadicCode:
		return c.code(v.Params(), v.Return(), true)
	case types.Constructor:
		return a.Just(Constructor)
	case types.Empty:
		return a.Just(Empty)
	case types.Integer:
		return a.Just(Integer)
	case types.Float16:
		return c.floatbv(10, 16, Float16)
	case types.Float:
		return c.floatbv(mm.Float.Fraction, mm.Float.Width, Float)
	case types.Double:
		return c.floatbv(mm.Double.Fraction, mm.Double.Width, Double)
	case types.Float128:
		return c.floatbv(112, 128, Float128)
	case types.FlexibleArray:
		return a.New(Array, []*Irep{c.Type(v.Elem())}, N(Size, c.ssizeConstant(0)))
	case types.InfiniteArray:
		inf := c.withType(a.Just(Infinity), types.MakeSSizeT())
		return a.New(Array, []*Irep{c.Type(v.Elem())}, N(Size, inf))
	case types.IncompleteStruct:
		return a.New(Struct, nil, N(Tag, a.JustString(v.Tag())), N(Incomplete, a.One()))
	case types.IncompleteUnion:
		return a.New(Union, nil, N(Tag, a.JustString(v.Tag())), N(Incomplete, a.One()))
	case types.Pointer:
		return a.New(Pointer, []*Irep{c.Type(v.Elem())}, c.width(mm.PointerWidth))
	case types.Signedbv:
		return a.New(Signedbv, nil, c.width(v.Width()))
	case types.Unsignedbv:
		return a.New(Unsignedbv, nil, c.width(v.Width()))
	case types.Struct:
		return a.New(Struct, nil, N(Tag, a.JustString(v.Tag())), N(Components, c.components(v.Components())))
	case types.Union:
		return a.New(Union, nil, N(Tag, a.JustString(v.Tag())), N(Components, c.components(v.Components())))
	case types.StructTag:
		return a.New(StructTag, nil, N(Identifier, a.JustString(v.ID())))
	case types.UnionTag:
		return a.New(UnionTag, nil, N(Identifier, a.JustString(v.ID())))
	case types.TypeDef:
		return c.Type(v.Elem()).WithNamedSub(a, CTypedef, a.JustString(v.Name()))
	case types.Vector:
		return a.New(Vector, []*Irep{c.Type(v.Elem())}, N(Size, c.ssizeConstant(v.Size())))
	default:
		ice.Failf("irep: unhandled type %T", t)
		return nil
	}
}

func (c *Converter) cInteger(t types.CInteger) *Irep {
	a, mm := c.arena, c.mm
	switch t.Kind() {
	case types.CIntBool:
		return a.New(CBool, nil, c.width(mm.BoolWidth))
	case types.CIntChar:
		id := Signedbv
		if mm.CharIsUnsigned {
			id = Unsignedbv
		}
		return a.New(id, nil, c.width(mm.CharWidth))
	case types.CIntInt:
		return a.New(Signedbv, nil, c.width(mm.IntWidth))
	case types.CIntLongInt:
		return a.New(Signedbv, nil, c.width(mm.LongIntWidth))
	case types.CIntSizeT:
		return a.New(Unsignedbv, nil, c.width(mm.PointerWidth))
	case types.CIntSSizeT:
		return a.New(Signedbv, nil, c.width(mm.PointerWidth))
	default:
		ice.Failf("irep: unhandled C integer kind %v", t.Kind())
		return nil
	}
}

func (c *Converter) floatbv(fraction, width uint64, ctype ID) *Irep {
	a := c.arena
	return a.New(Floatbv, nil,
		N(F, a.JustUint(fraction)),
		c.width(width),
		N(CCType, a.Just(ctype)),
	)
}

func (c *Converter) code(params []types.Parameter, ret types.Type, variadic bool) *Irep {
	a := c.arena
	ps := a.Children(len(params))
	for i, p := range params {
		ps[i] = c.Parameter(p)
	}
	var list *Irep
	if variadic {
		list = a.NewWithChildren(EmptyString, ps, N(Ellipsis, a.One()))
	} else {
		list = a.NewWithChildren(EmptyString, ps)
	}
	return a.New(Code, nil, N(Parameters, list), N(ReturnType, c.Type(ret)))
}

// Parameter converts a function parameter. Anonymous parameters carry only
// their type.
func (c *Converter) Parameter(p types.Parameter) *Irep {
	a := c.arena
	n := a.New(Parameter, nil, N(Type, c.Type(p.Type())))
	n = n.WithNamedSubOpt(a, CIdentifier, a.JustString(p.Identifier()), p.Identifier() != "")
	return n.WithNamedSubOpt(a, CBaseName, a.JustString(p.BaseName()), p.BaseName() != "")
}

func (c *Converter) components(comps []types.DatatypeComponent) *Irep {
	out := c.arena.Children(len(comps))
	for i, comp := range comps {
		out[i] = c.Component(comp)
	}
	return c.arena.NewWithChildren(EmptyString, out)
}

// Component converts a struct or union member. Union members are emitted
// with their padded storage type.
func (c *Converter) Component(comp types.DatatypeComponent) *Irep {
	a := c.arena
	if comp.IsPadding() {
		return a.JustNamed(
			N(CIsPadding, a.One()),
			N(Name, a.JustString(comp.Name())),
			N(Type, c.Type(comp.StorageType())),
		)
	}
	name := a.JustString(comp.Name())
	return a.JustNamed(
		N(Name, name),
		N(PrettyName, name),
		N(Type, c.Type(comp.StorageType())),
	)
}

// Location converts a location; NoLocation becomes the nil node.
func (c *Converter) Location(loc ir.Location) *Irep {
	a := c.arena
	switch v := loc.(type) {
	case nil, ir.NoLocation:
		return a.Nil()
	case ir.BuiltinLocation:
		n := a.JustNamed(
			N(File, a.JustString("<builtin-library-"+v.Function+">")),
			N(Function, a.JustString(v.Function)),
		)
		return n.WithNamedSubOpt(a, Line, a.JustUint(v.Line), v.HasLine)
	case ir.SourceLocation:
		n := a.JustNamed(
			N(File, a.JustString(v.File)),
			N(Line, a.JustUint(v.StartLine)),
		)
		n = n.WithNamedSubOpt(a, Column, a.JustUint(v.StartCol), v.HasStartCol)
		n = n.WithNamedSubOpt(a, Function, a.JustString(v.Function), v.Function != "")
		return n.WithNamedSubOpt(a, Pragma, c.pragmas(v.Pragmas), len(v.Pragmas) > 0)
	case ir.PropertyLocation:
		n := a.JustNamed(
			N(File, a.JustString(v.File)),
			N(Line, a.JustUint(v.Line)),
		)
		n = n.WithNamedSubOpt(a, Column, a.JustUint(v.Col), v.HasCol)
		n = n.WithNamedSubOpt(a, Function, a.JustString(v.Function), v.Function != "")
		n = n.WithNamedSub(a, Comment, a.JustString(v.Comment))
		n = n.WithNamedSub(a, PropertyClass, a.JustString(v.PropertyClass))
		return n.WithNamedSubOpt(a, Pragma, c.pragmas(v.Pragmas), len(v.Pragmas) > 0)
	case ir.PropertyUnknownLocation:
		return a.JustNamed(
			N(Comment, a.JustString(v.Comment)),
			N(PropertyClass, a.JustString(v.PropertyClass)),
		)
	default:
		ice.Failf("irep: unhandled location %T", loc)
		return nil
	}
}

// pragmas is a node keyed by pragma name, each holding an empty node.
func (c *Converter) pragmas(ps []string) *Irep {
	a := c.arena
	named := make([]NamedSub, len(ps))
	for i, p := range ps {
		named[i] = N(IDFromString(p), a.Just(EmptyString))
	}
	return a.JustNamed(named...)
}
