package irep

import (
	"math/big"
	"strconv"
	"strings"

	"gotoc/internal/ice"
	"gotoc/internal/types"
)

// ID is an irep identifier: either a word of the verifier's vocabulary or a
// free-form string such as a symbol name or a numeral.
type ID string

// Vocabulary understood by the verifier. The spelling of these values is
// part of the exchange format.
const (
	EmptyString ID = ""
	Nil         ID = "nil"
	One         ID = "1"
	Zero        ID = "0"
	True        ID = "true"
	False       ID = "false"
	NULL        ID = "NULL"
	Infinity    ID = "infinity"

	// named-sub keys
	Arguments          ID = "arguments"
	BitsPerByte        ID = "bits_per_byte"
	CBaseName          ID = "#base_name"
	CBoundsCheck       ID = "#bounds_check"
	CComment           ID = "#comment"
	CConstant          ID = "#constant"
	CCType             ID = "#c_type"
	CIdentifier        ID = "#identifier"
	CIsPadding         ID = "#is_padding"
	CLvalue            ID = "#lvalue"
	CSizeofType        ID = "#c_sizeof_type"
	CSourceLocation    ID = "#source_location"
	CSpecAssigns       ID = "#spec_assigns"
	CSpecLoopInvariant ID = "#spec_loop_invariant"
	CTypedef           ID = "#typedef"
	Column             ID = "column"
	Comment            ID = "comment"
	ComponentName      ID = "component_name"
	Components         ID = "components"
	Default            ID = "default"
	Destination        ID = "destination"
	Ellipsis           ID = "ellipsis"
	F                  ID = "f"
	File               ID = "file"
	Function           ID = "function"
	Identifier         ID = "identifier"
	Incomplete         ID = "incomplete"
	Label              ID = "label"
	Line               ID = "line"
	Name               ID = "name"
	Parameters         ID = "parameters"
	Pragma             ID = "pragma"
	PrettyName         ID = "pretty_name"
	PropertyClass      ID = "property_class"
	ReturnType         ID = "return_type"
	Size               ID = "size"
	Statement          ID = "statement"
	Tag                ID = "tag"
	Type               ID = "type"
	Value              ID = "value"
	Width              ID = "width"

	// types
	Array       ID = "array"
	Bool        ID = "bool"
	CBitField   ID = "c_bit_field"
	CBool       ID = "c_bool"
	Code        ID = "code"
	Constructor ID = "constructor"
	Double      ID = "double"
	Empty       ID = "empty"
	Float       ID = "float"
	Float16     ID = "float16"
	Float128    ID = "float128"
	Floatbv     ID = "floatbv"
	Integer     ID = "integer"
	Parameter   ID = "parameter"
	Pointer     ID = "pointer"
	Signedbv    ID = "signedbv"
	Struct      ID = "struct"
	StructTag   ID = "struct_tag"
	Union       ID = "union"
	UnionTag    ID = "union_tag"
	Unsignedbv  ID = "unsignedbv"
	Vector      ID = "vector"

	// expressions
	AddressOf               ID = "address_of"
	ArrayOf                 ID = "array_of"
	ByteExtractBigEndian    ID = "byte_extract_big_endian"
	ByteExtractLittleEndian ID = "byte_extract_little_endian"
	Constant                ID = "constant"
	Dereference             ID = "dereference"
	EmptyUnion              ID = "empty_union"
	Exists                  ID = "exists"
	Forall                  ID = "forall"
	If                      ID = "if"
	Index                   ID = "index"
	Lambda                  ID = "lambda"
	MathematicalFunction    ID = "mathematical_function"
	Member                  ID = "member"
	Nondet                  ID = "nondet"
	SideEffect              ID = "side_effect"
	StatementExpression     ID = "statement_expression"
	StringConstant          ID = "string_constant"
	Symbol                  ID = "symbol"
	Tuple                   ID = "tuple"
	Typecast                ID = "typecast"

	// statements
	Assert       ID = "assert"
	Assign       ID = "assign"
	Assume       ID = "assume"
	AtomicBegin  ID = "atomic_begin"
	AtomicEnd    ID = "atomic_end"
	Block        ID = "block"
	Break        ID = "break"
	Continue     ID = "continue"
	Dead         ID = "dead"
	Decl         ID = "decl"
	Expression   ID = "expression"
	For          ID = "for"
	FunctionCall ID = "function_call"
	Goto         ID = "goto"
	Ifthenelse   ID = "ifthenelse"
	Return       ID = "return"
	Skip         ID = "skip"
	Switch       ID = "switch"
	SwitchCase   ID = "switch_case"
	While        ID = "while"
)

// IDFromInt spells v as a decimal numeral.
func IDFromInt(v *big.Int) ID { return ID(v.String()) }

// IDFromUint spells u as a decimal numeral.
func IDFromUint(u uint64) ID { return ID(strconv.FormatUint(u, 10)) }

// IDFromBitPattern spells v as the upper-case hexadecimal bit pattern of
// its width-bit two's-complement representation. v must be representable
// in width bits with the given signedness.
func IDFromBitPattern(v *big.Int, width uint64, signed bool) ID {
	ice.Assertf(types.FitsInBits(v, width, signed), "%s does not fit in %d bits (signed=%t)", v, width, signed)
	return ID(strings.ToUpper(types.TwosComplement(v, width).Text(16)))
}

// IDFromString wraps a free-form string.
func IDFromString(s string) ID { return ID(s) }

func bitPatternUint(u, width uint64) ID {
	return IDFromBitPattern(new(big.Int).SetUint64(u), width, false)
}
