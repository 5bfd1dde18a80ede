package ir

import (
	"iter"
	"maps"
	"slices"

	"gotoc/internal/ice"
	"gotoc/internal/machine"
	"gotoc/internal/types"
)

// SymbolTable maps names to symbols for one translation unit. It is owned
// by a single builder and handed to the serializer once complete.
type SymbolTable struct {
	symbols     map[string]*Symbol
	mm          *machine.Model
	unsupported map[string]*UnsupportedConstruct
}

// NewSymbolTable returns a table seeded with the machine environment and
// the verifier builtins for mm.
func NewSymbolTable(mm *machine.Model) *SymbolTable {
	ice.Assertf(mm != nil, "symbol table without a machine model")
	st := &SymbolTable{
		symbols:     make(map[string]*Symbol),
		mm:          mm,
		unsupported: make(map[string]*UnsupportedConstruct),
	}
	for _, s := range machineModelSymbols(mm) {
		st.Insert(s)
	}
	for _, s := range additionalEnvSymbols() {
		st.Insert(s)
	}
	for _, s := range builtinSymbols() {
		st.Insert(s)
	}
	return st
}

// NewEmptySymbolTable returns a table without environment symbols.
func NewEmptySymbolTable(mm *machine.Model) *SymbolTable {
	ice.Assertf(mm != nil, "symbol table without a machine model")
	return &SymbolTable{
		symbols:     make(map[string]*Symbol),
		mm:          mm,
		unsupported: make(map[string]*UnsupportedConstruct),
	}
}

func (st *SymbolTable) MachineModel() *machine.Model { return st.mm }
func (st *SymbolTable) Len() int                     { return len(st.symbols) }

// Insert adds a new symbol. Redefining a name is an error.
func (st *SymbolTable) Insert(sym *Symbol) {
	_, dup := st.symbols[sym.Name]
	ice.Assertf(!dup, "duplicate symbol %s", sym.Name)
	st.symbols[sym.Name] = sym
}

// Ensure returns the symbol called name, building and inserting it first
// if it does not exist yet.
func (st *SymbolTable) Ensure(name string, build func(*SymbolTable, string) *Symbol) *Symbol {
	if s, ok := st.symbols[name]; ok {
		return s
	}
	s := build(st, name)
	ice.Assertf(s.Name == name, "ensure(%s) built symbol %s", name, s.Name)
	st.Insert(s)
	return s
}

// Replace overwrites an existing symbol after checker approves the old
// entry.
func (st *SymbolTable) Replace(checker func(old *Symbol) bool, sym *Symbol) {
	old, ok := st.symbols[sym.Name]
	ice.Assertf(ok, "replace of unknown symbol %s", sym.Name)
	ice.Assertf(checker(old), "replace of %s rejected", sym.Name)
	st.symbols[sym.Name] = sym
}

// ReplaceWithCompletion swaps an incomplete aggregate for its definition.
func (st *SymbolTable) ReplaceWithCompletion(sym *Symbol) {
	st.Replace(func(old *Symbol) bool {
		switch old.Type.(type) {
		case types.IncompleteStruct:
			return types.IsStructLike(sym.Type)
		case types.IncompleteUnion:
			return types.IsUnionLike(sym.Type)
		default:
			return types.Equal(old.Type, sym.Type)
		}
	}, sym)
}

// UpdateFnDeclarationWithDefinition attaches body to a declared function.
func (st *SymbolTable) UpdateFnDeclarationWithDefinition(name string, body Stmt) {
	s, ok := st.symbols[name]
	ice.Assertf(ok, "definition of undeclared function %s", name)
	ice.Assertf(s.IsFunctionDeclaration(), "%s is not a function declaration", name)
	s.Value = body
}

func (st *SymbolTable) Remove(name string) (*Symbol, bool) {
	s, ok := st.symbols[name]
	delete(st.symbols, name)
	return s, ok
}

func (st *SymbolTable) Contains(name string) bool {
	_, ok := st.symbols[name]
	return ok
}

func (st *SymbolTable) Lookup(name string) (*Symbol, bool) {
	s, ok := st.symbols[name]
	return s, ok
}

// LookupType resolves a tag id to the aggregate it names.
func (st *SymbolTable) LookupType(id string) (types.Type, bool) {
	s, ok := st.symbols[id]
	if !ok || !s.IsType {
		return nil, false
	}
	return s.Type, true
}

// LookupFieldsInType returns the components of a struct or union,
// resolving tags.
func (st *SymbolTable) LookupFieldsInType(t types.Type) ([]types.DatatypeComponent, bool) {
	switch v := types.UnwrapTypedef(t).(type) {
	case types.Struct:
		return v.Components(), true
	case types.Union:
		return v.Components(), true
	case types.StructTag:
		def, ok := st.LookupType(v.ID())
		if !ok {
			return nil, false
		}
		return st.LookupFieldsInType(def)
	case types.UnionTag:
		def, ok := st.LookupType(v.ID())
		if !ok {
			return nil, false
		}
		return st.LookupFieldsInType(def)
	default:
		return nil, false
	}
}

// LookupFieldType is the declared type of field in the aggregate t.
func (st *SymbolTable) LookupFieldType(t types.Type, field string) (types.Type, bool) {
	comps, ok := st.LookupFieldsInType(t)
	if !ok {
		return nil, false
	}
	for _, c := range comps {
		if c.Name() == field {
			return c.Type(), true
		}
	}
	return nil, false
}

// All iterates over the symbols ordered by name.
func (st *SymbolTable) All() iter.Seq2[string, *Symbol] {
	return func(yield func(string, *Symbol) bool) {
		for _, name := range slices.Sorted(maps.Keys(st.symbols)) {
			if !yield(name, st.symbols[name]) {
				return
			}
		}
	}
}

// Names returns every symbol name in sorted order.
func (st *SymbolTable) Names() []string {
	return slices.Sorted(maps.Keys(st.symbols))
}
