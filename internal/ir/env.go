package ir

import (
	"math/big"

	"gotoc/internal/machine"
	"gotoc/internal/types"
)

const (
	RoundingModeSymbol = "__CPROVER_rounding_mode"
	InitializeSymbol   = "__CPROVER_initialize"
	MemorySymbol       = "__CPROVER_memory"
	SizeTSymbol        = "__CPROVER_size_t"
	archPrefix         = "__CPROVER_architecture_"
)

func envInt(name string, v uint64) *Symbol {
	full := archPrefix + name
	return Constant(full, full, full, IntConstant(new(big.Int).SetUint64(v), types.MakeInteger()), NoLocation{})
}

func envBool(name string, v bool) *Symbol {
	if v {
		return envInt(name, 1)
	}
	return envInt(name, 0)
}

// machineModelSymbols publishes mm to the verifier as
// __CPROVER_architecture_* constants.
func machineModelSymbols(mm *machine.Model) []*Symbol {
	arch := archPrefix + "arch"
	syms := []*Symbol{
		Constant(arch, arch, arch, StringConstant(mm.Architecture), NoLocation{}),
		envInt("alignment", mm.Alignment),
		envInt("bool_width", mm.BoolWidth),
		envBool("char_is_unsigned", mm.CharIsUnsigned),
		envInt("char_width", mm.CharWidth),
		envInt("double_width", mm.Double.Width),
		envInt("endianness", mm.Endianness()),
		envInt("float_width", mm.Float.Width),
		envInt("int_width", mm.IntWidth),
		envInt("long_double_width", mm.LongDoubleWidth),
		envInt("long_int_width", mm.LongIntWidth),
		envInt("long_long_int_width", mm.LongLongIntWidth),
		envInt("memory_operand_size", mm.MemoryOperandSize),
		envBool("NULL_is_zero", mm.NullIsZero),
		envInt("pointer_width", mm.PointerWidth),
		envInt("short_int_width", mm.ShortIntWidth),
		envInt("single_width", mm.SingleWidth),
		envBool("wchar_t_is_unsigned", mm.WcharTIsUnsigned),
		envInt("wchar_t_width", mm.WcharTWidth),
		envInt("word_size", mm.WordSize),
	}
	rounding := StaticVariable(RoundingModeSymbol, RoundingModeSymbol, types.MakeCInt(), NoLocation{}).
		WithIsThreadLocal(true).
		WithValue(Int64Constant(int64(mm.RoundingMode), types.MakeCInt()))
	return append(syms, rounding)
}

// additionalEnvSymbols are the runtime objects every goto program links
// against.
func additionalEnvSymbols() []*Symbol {
	return []*Symbol{
		BuiltinFunction(InitializeSymbol, nil, types.MakeEmpty()),
		Typedef(SizeTSymbol, SizeTSymbol, types.MakeSizeT(), NoLocation{}),
		StaticVariable(MemorySymbol, MemorySymbol, types.MakeInfiniteArray(types.MakeUnsigned(8)), NoLocation{}).
			WithIsExtern(true),
	}
}
