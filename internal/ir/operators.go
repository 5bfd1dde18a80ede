package ir

import (
	"fmt"

	"gotoc/internal/types"
)

// Family is a bit set of broad type categories an operator accepts.
type Family uint32

const (
	FamilyNone Family = 0
	FamilyBool Family = 1 << iota
	FamilyCBool
	FamilyInteger
	FamilyFloat
	FamilyPointer
	FamilyVector
)

const (
	FamilyNumeric = FamilyInteger | FamilyFloat
	FamilyAny     = FamilyBool | FamilyCBool | FamilyNumeric | FamilyPointer | FamilyVector
)

// FamilyOf classifies t. A C bool is both an integer and a c-bool.
func FamilyOf(t types.Type) Family {
	switch {
	case types.IsBool(t):
		return FamilyBool
	case types.IsCBool(t):
		return FamilyCBool | FamilyInteger
	case types.IsInteger(t):
		return FamilyInteger
	case types.IsFloatingPoint(t):
		return FamilyFloat
	case types.IsPointer(t):
		return FamilyPointer
	case types.IsVector(t):
		return FamilyVector
	default:
		return FamilyNone
	}
}

// BinaryOperator enumerates goto-program binary operators.
type BinaryOperator uint8

const (
	And BinaryOperator = iota
	Ashr
	Bitand
	Bitnand
	Bitor
	Bitxor
	Div
	Equal
	Ge
	Gt
	IeeeFloatEqual
	IeeeFloatNotequal
	Implies
	Le
	Lshr
	Lt
	Minus
	Mod
	Mult
	Notequal
	Or
	OverflowMinus
	OverflowMult
	OverflowPlus
	OverflowResultMinus
	OverflowResultMult
	OverflowResultPlus
	Plus
	ROk
	Rol
	Ror
	Shl
	VectorEqual
	VectorNotequal
	VectorGe
	VectorGt
	VectorLe
	VectorLt
	Xor
)

var binaryNames = [...]string{
	And:                 "and",
	Ashr:                "ashr",
	Bitand:              "bitand",
	Bitnand:             "bitnand",
	Bitor:               "bitor",
	Bitxor:              "bitxor",
	Div:                 "/",
	Equal:               "=",
	Ge:                  ">=",
	Gt:                  ">",
	IeeeFloatEqual:      "ieee_float_equal",
	IeeeFloatNotequal:   "ieee_float_notequal",
	Implies:             "=>",
	Le:                  "<=",
	Lshr:                "lshr",
	Lt:                  "<",
	Minus:               "-",
	Mod:                 "mod",
	Mult:                "*",
	Notequal:            "notequal",
	Or:                  "or",
	OverflowMinus:       "overflow--",
	OverflowMult:        "overflow-*",
	OverflowPlus:        "overflow-+",
	OverflowResultMinus: "overflow_result--",
	OverflowResultMult:  "overflow_result-*",
	OverflowResultPlus:  "overflow_result-+",
	Plus:                "+",
	ROk:                 "r_ok",
	Rol:                 "rol",
	Ror:                 "ror",
	Shl:                 "shl",
	VectorEqual:         "vector-=",
	VectorNotequal:      "vector-!=",
	VectorGe:            "vector->=",
	VectorGt:            "vector->",
	VectorLe:            "vector-<=",
	VectorLt:            "vector-<",
	Xor:                 "xor",
}

func (op BinaryOperator) String() string {
	if int(op) < len(binaryNames) {
		return binaryNames[op]
	}
	return fmt.Sprintf("binop(%d)", op)
}

// BinaryResult selects how a binary operator derives its result type.
type BinaryResult uint8

const (
	ResultLeft BinaryResult = iota
	ResultBool
	// ResultPointerDiff is ssize_t for pointer-pointer, else the left type.
	ResultPointerDiff
	// ResultCompare is bool, or a c_bool vector for vector operands.
	ResultCompare
	ResultOverflowStruct
)

// OperandShape is one accepted combination of operand families.
type OperandShape struct {
	Left  Family
	Right Family
	// Same requires structurally equal operand types.
	Same bool
	// RightType, when set, pins the right operand to exactly this type.
	RightType types.Type
}

// BinarySpec lists the operand shapes an operator accepts and how its
// result type is derived.
type BinarySpec struct {
	Shapes []OperandShape
	Result BinaryResult
}

var (
	shapeSameNumericOrVector = OperandShape{Left: FamilyNumeric | FamilyVector, Right: FamilyNumeric | FamilyVector, Same: true}
	shapeSameInteger         = OperandShape{Left: FamilyInteger, Right: FamilyInteger, Same: true}
	shapePointerInteger      = OperandShape{Left: FamilyPointer, Right: FamilyInteger}
	shapeBools               = OperandShape{Left: FamilyBool, Right: FamilyBool}
	shapeSameOrdered         = OperandShape{Left: FamilyNumeric | FamilyPointer | FamilyVector, Right: FamilyNumeric | FamilyPointer | FamilyVector, Same: true}
	shapeSameFloat           = OperandShape{Left: FamilyFloat, Right: FamilyFloat, Same: true}
	shapeSameVector          = OperandShape{Left: FamilyVector, Right: FamilyVector, Same: true}
)

var binarySpecs = map[BinaryOperator]BinarySpec{
	Plus:  {Shapes: []OperandShape{shapeSameNumericOrVector, shapePointerInteger}, Result: ResultLeft},
	Minus: {Shapes: []OperandShape{shapeSameNumericOrVector, shapePointerInteger, {Left: FamilyPointer, Right: FamilyPointer, Same: true}}, Result: ResultPointerDiff},
	Mult:  {Shapes: []OperandShape{shapeSameNumericOrVector}, Result: ResultLeft},
	Div:   {Shapes: []OperandShape{shapeSameNumericOrVector}, Result: ResultLeft},
	Mod:   {Shapes: []OperandShape{shapeSameNumericOrVector}, Result: ResultLeft},

	Shl:  {Shapes: []OperandShape{{Left: FamilyInteger, Right: FamilyInteger}, shapeSameVector}, Result: ResultLeft},
	Ashr: {Shapes: []OperandShape{{Left: FamilyInteger, Right: FamilyInteger}, shapeSameVector}, Result: ResultLeft},
	Lshr: {Shapes: []OperandShape{{Left: FamilyInteger, Right: FamilyInteger}, shapeSameVector}, Result: ResultLeft},
	Rol:  {Shapes: []OperandShape{{Left: FamilyInteger, Right: FamilyInteger}}, Result: ResultLeft},
	Ror:  {Shapes: []OperandShape{{Left: FamilyInteger, Right: FamilyInteger}}, Result: ResultLeft},

	And:     {Shapes: []OperandShape{shapeBools}, Result: ResultBool},
	Or:      {Shapes: []OperandShape{shapeBools}, Result: ResultBool},
	Xor:     {Shapes: []OperandShape{shapeBools}, Result: ResultBool},
	Implies: {Shapes: []OperandShape{shapeBools}, Result: ResultBool},

	Bitand:  {Shapes: []OperandShape{shapeSameInteger, shapeSameVector}, Result: ResultLeft},
	Bitor:   {Shapes: []OperandShape{shapeSameInteger, shapeSameVector}, Result: ResultLeft},
	Bitxor:  {Shapes: []OperandShape{shapeSameInteger, shapeSameVector}, Result: ResultLeft},
	Bitnand: {Shapes: []OperandShape{shapeSameInteger}, Result: ResultLeft},

	Lt:       {Shapes: []OperandShape{shapeSameOrdered}, Result: ResultCompare},
	Le:       {Shapes: []OperandShape{shapeSameOrdered}, Result: ResultCompare},
	Gt:       {Shapes: []OperandShape{shapeSameOrdered}, Result: ResultCompare},
	Ge:       {Shapes: []OperandShape{shapeSameOrdered}, Result: ResultCompare},
	Equal:    {Shapes: []OperandShape{shapeSameOrdered}, Result: ResultCompare},
	Notequal: {Shapes: []OperandShape{shapeSameOrdered}, Result: ResultCompare},

	IeeeFloatEqual:    {Shapes: []OperandShape{shapeSameFloat}, Result: ResultBool},
	IeeeFloatNotequal: {Shapes: []OperandShape{shapeSameFloat}, Result: ResultBool},

	OverflowPlus:  {Shapes: []OperandShape{shapeSameInteger}, Result: ResultBool},
	OverflowMinus: {Shapes: []OperandShape{shapeSameInteger}, Result: ResultBool},
	OverflowMult:  {Shapes: []OperandShape{shapeSameInteger}, Result: ResultBool},

	OverflowResultPlus:  {Shapes: []OperandShape{shapeSameInteger}, Result: ResultOverflowStruct},
	OverflowResultMinus: {Shapes: []OperandShape{shapeSameInteger}, Result: ResultOverflowStruct},
	OverflowResultMult:  {Shapes: []OperandShape{shapeSameInteger}, Result: ResultOverflowStruct},

	ROk: {Shapes: []OperandShape{{Left: FamilyPointer, Right: FamilyInteger, RightType: types.MakeSizeT()}}, Result: ResultBool},

	VectorEqual:    {Shapes: []OperandShape{shapeSameVector}, Result: ResultCompare},
	VectorNotequal: {Shapes: []OperandShape{shapeSameVector}, Result: ResultCompare},
	VectorGe:       {Shapes: []OperandShape{shapeSameVector}, Result: ResultCompare},
	VectorGt:       {Shapes: []OperandShape{shapeSameVector}, Result: ResultCompare},
	VectorLe:       {Shapes: []OperandShape{shapeSameVector}, Result: ResultCompare},
	VectorLt:       {Shapes: []OperandShape{shapeSameVector}, Result: ResultCompare},
}

// vectorCompare maps a comparison to its elementwise vector form.
var vectorCompare = map[BinaryOperator]BinaryOperator{
	Equal:    VectorEqual,
	Notequal: VectorNotequal,
	Ge:       VectorGe,
	Gt:       VectorGt,
	Le:       VectorLe,
	Lt:       VectorLt,
}

// BinarySpecFor returns the typing rule of op.
func BinarySpecFor(op BinaryOperator) (BinarySpec, bool) {
	spec, ok := binarySpecs[op]
	return spec, ok
}

func (s OperandShape) accepts(lhs, rhs types.Type) bool {
	if FamilyOf(lhs)&s.Left == 0 || FamilyOf(rhs)&s.Right == 0 {
		return false
	}
	if s.Same && !types.Equal(lhs, rhs) {
		return false
	}
	if s.RightType != nil && !types.Equal(rhs, s.RightType) {
		return false
	}
	return true
}

// TypecheckBinary reports whether op accepts operands of the given types.
func TypecheckBinary(op BinaryOperator, lhs, rhs types.Type) bool {
	spec, ok := binarySpecs[op]
	if !ok {
		return false
	}
	for _, shape := range spec.Shapes {
		if shape.accepts(lhs, rhs) {
			return true
		}
	}
	return false
}

func binaryResultType(op BinaryOperator, lhs, rhs types.Type) types.Type {
	switch binarySpecs[op].Result {
	case ResultBool:
		return types.MakeBool()
	case ResultPointerDiff:
		if types.IsPointer(lhs) && types.IsPointer(rhs) {
			return types.MakeSSizeT()
		}
		return lhs
	case ResultCompare:
		if v, ok := types.UnwrapTypedef(lhs).(types.Vector); ok {
			return types.MakeVector(types.MakeCBool(), v.Size())
		}
		return types.MakeBool()
	case ResultOverflowStruct:
		return types.ArithmeticOverflowResultType(lhs)
	default:
		return lhs
	}
}

// UnaryOperator enumerates goto-program unary operators.
type UnaryOperator uint8

const (
	Bitnot UnaryOperator = iota
	BitReverse
	Bswap
	CountLeadingZeros
	CountTrailingZeros
	IsDynamicObject
	IsFinite
	Not
	ObjectSize
	PointerObject
	PointerOffset
	Popcount
	UnaryMinus
)

var unaryNames = [...]string{
	Bitnot:             "bitnot",
	BitReverse:         "bitreverse",
	Bswap:              "bswap",
	CountLeadingZeros:  "count_leading_zeros",
	CountTrailingZeros: "count_trailing_zeros",
	IsDynamicObject:    "is_dynamic_object",
	IsFinite:           "isfinite",
	Not:                "not",
	ObjectSize:         "object_size",
	PointerObject:      "pointer_object",
	PointerOffset:      "pointer_offset",
	Popcount:           "popcount",
	UnaryMinus:         "unary-",
}

func (op UnaryOperator) String() string {
	if int(op) < len(unaryNames) {
		return unaryNames[op]
	}
	return fmt.Sprintf("unop(%d)", op)
}

// UnaryResult selects how a unary operator derives its result type.
type UnaryResult uint8

const (
	UnaryResultSame UnaryResult = iota
	UnaryResultBool
	UnaryResultSizeT
	UnaryResultSSizeT
)

// UnarySpec is the typing rule of a unary operator.
type UnarySpec struct {
	Operand Family
	Result  UnaryResult
}

var unarySpecs = map[UnaryOperator]UnarySpec{
	Bitnot:             {Operand: FamilyInteger, Result: UnaryResultSame},
	BitReverse:         {Operand: FamilyInteger, Result: UnaryResultSame},
	Bswap:              {Operand: FamilyInteger, Result: UnaryResultSame},
	CountLeadingZeros:  {Operand: FamilyInteger, Result: UnaryResultSame},
	CountTrailingZeros: {Operand: FamilyInteger, Result: UnaryResultSame},
	Popcount:           {Operand: FamilyInteger, Result: UnaryResultSame},
	IsDynamicObject:    {Operand: FamilyPointer, Result: UnaryResultBool},
	ObjectSize:         {Operand: FamilyPointer, Result: UnaryResultSizeT},
	PointerObject:      {Operand: FamilyPointer, Result: UnaryResultSizeT},
	PointerOffset:      {Operand: FamilyPointer, Result: UnaryResultSSizeT},
	IsFinite:           {Operand: FamilyFloat, Result: UnaryResultBool},
	Not:                {Operand: FamilyBool, Result: UnaryResultBool},
	UnaryMinus:         {Operand: FamilyNumeric, Result: UnaryResultSame},
}

// UnarySpecFor returns the typing rule of op.
func UnarySpecFor(op UnaryOperator) (UnarySpec, bool) {
	spec, ok := unarySpecs[op]
	return spec, ok
}

func unaryResultType(op UnaryOperator, operand types.Type) types.Type {
	switch unarySpecs[op].Result {
	case UnaryResultBool:
		return types.MakeBool()
	case UnaryResultSizeT:
		return types.MakeSizeT()
	case UnaryResultSSizeT:
		return types.MakeSSizeT()
	default:
		return operand
	}
}

// SelfOperator enumerates in-place increments and decrements.
type SelfOperator uint8

const (
	Postdecrement SelfOperator = iota
	Postincrement
	Predecrement
	Preincrement
)

func (op SelfOperator) String() string {
	switch op {
	case Postdecrement:
		return "postdecrement"
	case Postincrement:
		return "postincrement"
	case Predecrement:
		return "predecrement"
	case Preincrement:
		return "preincrement"
	default:
		return fmt.Sprintf("selfop(%d)", op)
	}
}

// Quantifier binds a variable in a specification expression.
type Quantifier uint8

const (
	Forall Quantifier = iota
	Exists
)

func (q Quantifier) String() string {
	if q == Exists {
		return "exists"
	}
	return "forall"
}
