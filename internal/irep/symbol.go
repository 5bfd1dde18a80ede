package irep

import (
	"cmp"
	"slices"
	"strconv"

	"gotoc/internal/ir"
)

// SymbolRecord is the serialized form of one symbol: converted type, value
// and location plus the symbol's names and flags.
type SymbolRecord struct {
	Type       *Irep
	Value      *Irep
	Location   *Irep
	Name       string
	Module     string
	BaseName   string
	PrettyName string
	Mode       string

	IsType           bool
	IsMacro          bool
	IsExported       bool
	IsInput          bool
	IsOutput         bool
	IsStateVar       bool
	IsProperty       bool
	IsStaticLifetime bool
	IsThreadLocal    bool
	IsLvalue         bool
	IsFileLocal      bool
	IsExtern         bool
	IsVolatile       bool
	IsParameter      bool
	IsAuxiliary      bool
	IsWeak           bool
}

// Symbol converts one symbol. A static constant's type is marked #constant.
func (c *Converter) Symbol(s *ir.Symbol) SymbolRecord {
	a := c.arena
	typ := c.Type(s.Type)
	if s.IsStaticConst {
		typ = typ.WithNamedSub(a, CConstant, a.One())
	}
	if s.Contract != nil {
		clauses := a.Children(len(s.Contract.Assigns))
		for i, l := range s.Contract.Assigns {
			clauses[i] = c.Lambda(l)
		}
		typ = typ.WithNamedSub(a, CSpecAssigns, a.NewWithChildren(EmptyString, clauses))
	}
	var value *Irep
	switch v := s.Value.(type) {
	case ir.Expr:
		value = c.Expr(v)
	case ir.Stmt:
		value = c.Stmt(v)
	default:
		value = a.Nil()
	}
	return SymbolRecord{
		Type:       typ,
		Value:      value,
		Location:   c.Location(s.Location),
		Name:       s.Name,
		Module:     s.Module,
		BaseName:   s.BaseName,
		PrettyName: s.PrettyName,
		Mode:       s.Mode.String(),

		IsType:           s.IsType,
		IsMacro:          s.IsMacro,
		IsExported:       s.IsExported,
		IsInput:          s.IsInput,
		IsOutput:         s.IsOutput,
		IsStateVar:       s.IsStateVar,
		IsProperty:       s.IsProperty,
		IsStaticLifetime: s.IsStaticLifetime,
		IsThreadLocal:    s.IsThreadLocal,
		IsLvalue:         s.IsLvalue,
		IsFileLocal:      s.IsFileLocal,
		IsExtern:         s.IsExtern,
		IsVolatile:       s.IsVolatile,
		IsParameter:      s.IsParameter,
		IsAuxiliary:      s.IsAuxiliary,
		IsWeak:           s.IsWeak,
	}
}

// Lambda converts a contract clause. Arguments without an identifier are
// bound as _modifies_<index>.
func (c *Converter) Lambda(l ir.Lambda) *Irep {
	a := c.arena
	bound := a.Children(len(l.Arguments))
	argTypes := a.Children(len(l.Arguments))
	for i, p := range l.Arguments {
		typ := c.Type(p.Type())
		name := p.Identifier()
		if name == "" {
			name = "_modifies_" + strconv.Itoa(i)
		}
		bound[i] = c.symbol(name).WithNamedSub(a, Type, typ)
		argTypes[i] = typ
	}
	fn := a.New(MathematicalFunction, []*Irep{
		a.NewWithChildren(EmptyString, argTypes),
		c.Type(l.Body.Type()),
	})
	return a.New(Lambda, []*Irep{
		a.NewWithChildren(Tuple, bound),
		c.Expr(l.Body),
	}, N(Type, fn))
}

// flags lists the boolean attributes in serialization order.
func (r *SymbolRecord) flags() [16]flag {
	return [16]flag{
		{"isType", r.IsType},
		{"isMacro", r.IsMacro},
		{"isExported", r.IsExported},
		{"isInput", r.IsInput},
		{"isOutput", r.IsOutput},
		{"isStateVar", r.IsStateVar},
		{"isProperty", r.IsProperty},
		{"isStaticLifetime", r.IsStaticLifetime},
		{"isThreadLocal", r.IsThreadLocal},
		{"isLvalue", r.IsLvalue},
		{"isFileLocal", r.IsFileLocal},
		{"isExtern", r.IsExtern},
		{"isVolatile", r.IsVolatile},
		{"isParameter", r.IsParameter},
		{"isAuxiliary", r.IsAuxiliary},
		{"isWeak", r.IsWeak},
	}
}

type flag struct {
	key string
	set bool
}

// texts lists the string attributes in serialization order.
func (r *SymbolRecord) texts() [5]textField {
	return [5]textField{
		{"name", r.Name},
		{"module", r.Module},
		{"baseName", r.BaseName},
		{"prettyName", r.PrettyName},
		{"mode", r.Mode},
	}
}

type textField struct {
	key   string
	value string
}

// SymbolTable is a fully converted table, symbols ordered by name. Its
// nodes live in the arena it was converted with.
type SymbolTable struct {
	Symbols []SymbolRecord
}

// ConvertTable converts every symbol of st at once. Prefer WriteJSON or
// WriteMsgpack for large tables; they release nodes after each symbol.
func ConvertTable(a *Arena, st *ir.SymbolTable) *SymbolTable {
	c := NewConverter(a, st.MachineModel())
	out := &SymbolTable{Symbols: make([]SymbolRecord, 0, st.Len())}
	for _, s := range st.All() {
		out.Symbols = append(out.Symbols, c.Symbol(s))
	}
	return out
}

// Lookup finds a converted symbol by name.
func (t *SymbolTable) Lookup(name string) (*SymbolRecord, bool) {
	i, ok := slices.BinarySearchFunc(t.Symbols, name, func(r SymbolRecord, name string) int {
		return cmp.Compare(r.Name, name)
	})
	if !ok {
		return nil, false
	}
	return &t.Symbols[i], true
}
