package ir

import (
	"gotoc/internal/ice"
	"gotoc/internal/types"
)

// Builtin is a C library or verifier function the verifier models
// natively.
type Builtin uint8

const (
	BuiltinAbort Builtin = iota
	BuiltinAssume
	BuiltinCalloc
	BuiltinCeil
	BuiltinCeilf
	BuiltinCopysign
	BuiltinCos
	BuiltinCover
	BuiltinExp
	BuiltinFabs
	BuiltinFabsf
	BuiltinFloor
	BuiltinFloorf
	BuiltinFma
	BuiltinFree
	BuiltinLog
	BuiltinMalloc
	BuiltinMemcmp
	BuiltinMemcpy
	BuiltinMemmove
	BuiltinMemset
	BuiltinPow
	BuiltinRealloc
	BuiltinSin
	BuiltinSqrt
	BuiltinSqrtf
	BuiltinTrunc
	BuiltinTruncf
	builtinCount
)

type builtinSig struct {
	name   string
	params []types.Type
	ret    types.Type
}

func builtinSignature(b Builtin) builtinSig {
	var (
		void    = types.MakeEmpty()
		voidPtr = types.MakeVoidPointer()
		sizeT   = types.MakeSizeT()
		cint    = types.MakeCInt()
		double  = types.MakeDouble()
		float   = types.MakeFloat()
		boolean = types.MakeBool()
		d1      = []types.Type{double}
		f1      = []types.Type{float}
	)
	switch b {
	case BuiltinAbort:
		return builtinSig{"abort", nil, void}
	case BuiltinAssume:
		return builtinSig{"__CPROVER_assume", []types.Type{boolean}, void}
	case BuiltinCalloc:
		return builtinSig{"calloc", []types.Type{sizeT, sizeT}, voidPtr}
	case BuiltinCeil:
		return builtinSig{"ceil", d1, double}
	case BuiltinCeilf:
		return builtinSig{"ceilf", f1, float}
	case BuiltinCopysign:
		return builtinSig{"copysign", []types.Type{double, double}, double}
	case BuiltinCos:
		return builtinSig{"cos", d1, double}
	case BuiltinCover:
		return builtinSig{"__CPROVER_cover", []types.Type{boolean}, void}
	case BuiltinExp:
		return builtinSig{"exp", d1, double}
	case BuiltinFabs:
		return builtinSig{"fabs", d1, double}
	case BuiltinFabsf:
		return builtinSig{"fabsf", f1, float}
	case BuiltinFloor:
		return builtinSig{"floor", d1, double}
	case BuiltinFloorf:
		return builtinSig{"floorf", f1, float}
	case BuiltinFma:
		return builtinSig{"fma", []types.Type{double, double, double}, double}
	case BuiltinFree:
		return builtinSig{"free", []types.Type{voidPtr}, void}
	case BuiltinLog:
		return builtinSig{"log", d1, double}
	case BuiltinMalloc:
		return builtinSig{"malloc", []types.Type{sizeT}, voidPtr}
	case BuiltinMemcmp:
		return builtinSig{"memcmp", []types.Type{voidPtr, voidPtr, sizeT}, cint}
	case BuiltinMemcpy:
		return builtinSig{"memcpy", []types.Type{voidPtr, voidPtr, sizeT}, voidPtr}
	case BuiltinMemmove:
		return builtinSig{"memmove", []types.Type{voidPtr, voidPtr, sizeT}, voidPtr}
	case BuiltinMemset:
		return builtinSig{"memset", []types.Type{voidPtr, cint, sizeT}, voidPtr}
	case BuiltinPow:
		return builtinSig{"pow", []types.Type{double, double}, double}
	case BuiltinRealloc:
		return builtinSig{"realloc", []types.Type{voidPtr, sizeT}, voidPtr}
	case BuiltinSin:
		return builtinSig{"sin", d1, double}
	case BuiltinSqrt:
		return builtinSig{"sqrt", d1, double}
	case BuiltinSqrtf:
		return builtinSig{"sqrtf", f1, float}
	case BuiltinTrunc:
		return builtinSig{"trunc", d1, double}
	case BuiltinTruncf:
		return builtinSig{"truncf", f1, float}
	default:
		ice.Failf("unknown builtin %d", b)
		return builtinSig{}
	}
}

func (b Builtin) String() string { return builtinSignature(b).name }

// Type is the function type of b.
func (b Builtin) Type() types.Type {
	sig := builtinSignature(b)
	ps := make([]types.Parameter, len(sig.params))
	for i, p := range sig.params {
		ps[i] = types.AnonParameter(p)
	}
	return types.MakeCode(ps, sig.ret)
}

// AsExpr is a symbol expression naming b.
func (b Builtin) AsExpr() Expr { return SymbolExpr(b.String(), b.Type()) }

// Call applies b to args.
func (b Builtin) Call(args []Expr, loc Location) Expr {
	return b.AsExpr().Call(args).WithLocation(loc)
}

// Builtins lists every builtin in declaration order.
func Builtins() []Builtin {
	out := make([]Builtin, 0, builtinCount)
	for b := range builtinCount {
		out = append(out, b)
	}
	return out
}

func builtinSymbols() []*Symbol {
	var syms []*Symbol
	for _, b := range Builtins() {
		sig := builtinSignature(b)
		syms = append(syms, BuiltinFunction(sig.name, sig.params, sig.ret))
	}
	return syms
}
