package ir

import (
	"strings"

	"gotoc/internal/ice"
	"gotoc/internal/types"
)

// SymbolValue is the definition held by a symbol: an Expr or a Stmt.
type SymbolValue interface {
	implSymbolValue()
}

// SymbolMode is the source language a symbol belongs to.
type SymbolMode uint8

const (
	ModeC SymbolMode = iota
	ModeRust
)

func (m SymbolMode) String() string {
	if m == ModeRust {
		return "Rust"
	}
	return "C"
}

// Symbol is one entry of a goto-program symbol table.
type Symbol struct {
	Name       string
	Location   Location
	Type       types.Type
	Value      SymbolValue
	BaseName   string
	PrettyName string
	Module     string
	Mode       SymbolMode
	// Contract is only set on functions.
	Contract *FunctionContract

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
	// IsStaticConst marks a read-only static; its type is emitted as const.
	IsStaticConst bool
}

func newSymbol(name string, t types.Type, value SymbolValue, baseName, prettyName string, loc Location) *Symbol {
	ice.Assertf(name != "", "symbol without a name")
	ice.Assertf(t != nil, "symbol %s without a type", name)
	if baseName != "" {
		ice.Assertf(strings.HasSuffix(name, baseName), "base name %q is not a suffix of %q", baseName, name)
	}
	return &Symbol{
		Name:       name,
		Location:   orNone(loc),
		Type:       t,
		Value:      value,
		BaseName:   baseName,
		PrettyName: prettyName,
		Mode:       ModeC,
	}
}

// Variable is a local variable.
func Variable(name, baseName string, t types.Type, loc Location) *Symbol {
	s := newSymbol(name, t, nil, baseName, "", loc)
	s.IsThreadLocal = true
	s.IsLvalue = true
	s.IsStateVar = true
	return s
}

// StaticVariable is a variable with static storage duration.
func StaticVariable(name, baseName string, t types.Type, loc Location) *Symbol {
	s := Variable(name, baseName, t, loc)
	s.IsThreadLocal = false
	s.IsStaticLifetime = true
	return s
}

// FunctionParam is a formal parameter of a function.
func FunctionParam(name, baseName string, t types.Type, loc Location) *Symbol {
	s := Variable(name, baseName, t, loc)
	s.IsParameter = true
	return s
}

// Function is a function declaration, or a definition when body is non-nil.
func Function(name string, t types.Type, body *Stmt, prettyName string, loc Location) *Symbol {
	ice.Assertf(types.IsCode(t), "function %s of non-code type %v", name, t)
	var v SymbolValue
	if body != nil {
		v = *body
	}
	s := newSymbol(name, t, v, name, prettyName, loc)
	s.IsLvalue = true
	return s
}

// BuiltinFunction declares a verifier-provided function. Its parameters
// are anonymous.
func BuiltinFunction(name string, params []types.Type, ret types.Type) *Symbol {
	ps := make([]types.Parameter, len(params))
	for i, p := range params {
		ps[i] = types.AnonParameter(p)
	}
	return Function(name, types.MakeCode(ps, ret), nil, "", BuiltinLocation{Function: name})
}

// Constant is a named compile-time constant.
func Constant(name, prettyName, baseName string, value Expr, loc Location) *Symbol {
	s := newSymbol(name, value.typ, value, baseName, prettyName, loc)
	s.IsStaticLifetime = true
	return s
}

// Typedef names t.
func Typedef(name, baseName string, t types.Type, loc Location) *Symbol {
	s := newSymbol(name, t, nil, baseName, "", loc)
	s.IsType = true
	s.IsFileLocal = true
	s.IsStaticLifetime = true
	return s
}

// AggrType is the type symbol of a struct or union, registered under its
// tag name.
func AggrType(t types.Type, prettyName string) *Symbol {
	var tag string
	switch v := t.(type) {
	case types.Struct:
		tag = v.Tag()
	case types.Union:
		tag = v.Tag()
	case types.IncompleteStruct:
		tag = v.Tag()
	case types.IncompleteUnion:
		tag = v.Tag()
	default:
		ice.Failf("aggregate symbol for %v", t)
	}
	s := newSymbol(types.AggrTag(tag), t, nil, tag, prettyName, NoLocation{})
	s.IsType = true
	return s
}

func (s *Symbol) WithIsExtern(v bool) *Symbol         { s.IsExtern = v; return s }
func (s *Symbol) WithIsFileLocal(v bool) *Symbol      { s.IsFileLocal = v; return s }
func (s *Symbol) WithIsHidden(v bool) *Symbol         { s.IsAuxiliary = v; return s }
func (s *Symbol) WithIsParameter(v bool) *Symbol      { s.IsParameter = v; return s }
func (s *Symbol) WithIsStaticLifetime(v bool) *Symbol { s.IsStaticLifetime = v; return s }
func (s *Symbol) WithIsStateVar(v bool) *Symbol       { s.IsStateVar = v; return s }
func (s *Symbol) WithIsThreadLocal(v bool) *Symbol    { s.IsThreadLocal = v; return s }
func (s *Symbol) WithIsStaticConst(v bool) *Symbol    { s.IsStaticConst = v; return s }
func (s *Symbol) WithIsWeak(v bool) *Symbol           { s.IsWeak = v; return s }
func (s *Symbol) WithModule(m string) *Symbol         { s.Module = m; return s }
func (s *Symbol) WithMode(m SymbolMode) *Symbol       { s.Mode = m; return s }
func (s *Symbol) WithPrettyName(n string) *Symbol     { s.PrettyName = n; return s }

// WithValue sets the definition. A Stmt value requires a code type.
func (s *Symbol) WithValue(v SymbolValue) *Symbol {
	if _, isStmt := v.(Stmt); isStmt {
		ice.Assertf(types.IsCode(s.Type), "statement body for non-function %s", s.Name)
	}
	s.Value = v
	return s
}

// ToExpr is a symbol expression referring to s.
func (s *Symbol) ToExpr() Expr { return SymbolExpr(s.Name, s.Type) }

// IsFunctionDeclaration reports a function without a body.
func (s *Symbol) IsFunctionDeclaration() bool {
	return types.IsCode(s.Type) && s.Value == nil
}

// IsFunctionDefinition reports a function with a body.
func (s *Symbol) IsFunctionDefinition() bool {
	_, ok := s.Value.(Stmt)
	return types.IsCode(s.Type) && ok
}

// Clone returns a shallow copy; Exprs and Stmts are immutable.
func (s *Symbol) Clone() *Symbol {
	c := *s
	return &c
}
