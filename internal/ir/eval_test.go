package ir

import (
	"math/big"
	"testing"

	"gotoc/internal/machine"
	"gotoc/internal/types"
)

// evalInt folds a closed integer expression the way the verifier would,
// wrapping fixed-width results. It only understands the nodes the
// saturating helpers produce.
func evalInt(t *testing.T, e Expr, mm *machine.Model) *big.Int {
	t.Helper()
	switch v := e.Value().(type) {
	case IntLit:
		return new(big.Int).Set(v.Value)
	case CondExpr:
		if evalBool(t, v.Cond, mm) {
			return evalInt(t, v.Then, mm)
		}
		return evalInt(t, v.Else, mm)
	case BinaryExpr:
		l, r := evalInt(t, v.Lhs, mm), evalInt(t, v.Rhs, mm)
		var out big.Int
		switch v.Op {
		case Plus:
			out.Add(l, r)
		case Minus:
			out.Sub(l, r)
		case Mult:
			out.Mul(l, r)
		default:
			t.Fatalf("evalInt: unsupported operator %s", v.Op)
		}
		return wrap(&out, e.Type(), mm)
	default:
		t.Fatalf("evalInt: unsupported node %T", v)
		return nil
	}
}

func evalBool(t *testing.T, e Expr, mm *machine.Model) bool {
	t.Helper()
	switch v := e.Value().(type) {
	case BoolLit:
		return v.Value
	case BinaryExpr:
		l, r := evalInt(t, v.Lhs, mm), evalInt(t, v.Rhs, mm)
		var exact big.Int
		switch v.Op {
		case Lt:
			return l.Cmp(r) < 0
		case Equal:
			return l.Cmp(r) == 0
		case OverflowPlus:
			exact.Add(l, r)
		case OverflowMinus:
			exact.Sub(l, r)
		case OverflowMult:
			exact.Mul(l, r)
		default:
			t.Fatalf("evalBool: unsupported operator %s", v.Op)
		}
		w, _ := types.NativeWidth(v.Lhs.Type(), mm)
		return !types.FitsInBits(&exact, w, types.IsSigned(v.Lhs.Type(), mm))
	default:
		t.Fatalf("evalBool: unsupported node %T", v)
		return false
	}
}

func wrap(v *big.Int, t types.Type, mm *machine.Model) *big.Int {
	w, ok := types.NativeWidth(t, mm)
	if !ok {
		return v
	}
	r := types.TwosComplement(v, w)
	if types.IsSigned(t, mm) && r.Cmp(types.MaxInt(t, mm)) > 0 {
		r.Sub(r, new(big.Int).Lsh(big.NewInt(1), uint(w)))
	}
	return r
}

func TestSaturatingArithmeticSigned8(t *testing.T) {
	mm := machine.MustPreset(machine.DefaultPreset)
	i8 := types.MakeSigned(8)
	c := func(v int64) Expr { return Int64Constant(v, i8) }

	cases := []struct {
		name string
		got  Expr
		want int64
	}{
		{"add saturates at max", c(127).SaturatingAdd(c(1), mm), 127},
		{"add saturates at min", c(-128).SaturatingAdd(c(-1), mm), -128},
		{"add in range", c(100).SaturatingAdd(c(-30), mm), 70},
		{"sub saturates at min", c(-128).SaturatingSub(c(1), mm), -128},
		{"sub saturates at max", c(127).SaturatingSub(c(-1), mm), 127},
		{"sub in range", c(5).SaturatingSub(c(7), mm), -2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := evalInt(t, tc.got, mm); got.Int64() != tc.want {
				t.Fatalf("got %s, want %d", got, tc.want)
			}
		})
	}
}

func TestSaturatingArithmeticUnsigned(t *testing.T) {
	mm := machine.MustPreset(machine.DefaultPreset)
	u8 := types.MakeUnsigned(8)
	c := func(v int64) Expr { return Int64Constant(v, u8) }
	if got := evalInt(t, c(250).SaturatingAdd(c(10), mm), mm); got.Int64() != 255 {
		t.Fatalf("250+10 = %s, want 255", got)
	}
	if got := evalInt(t, c(3).SaturatingSub(c(10), mm), mm); got.Int64() != 0 {
		t.Fatalf("3-10 = %s, want 0", got)
	}
}
