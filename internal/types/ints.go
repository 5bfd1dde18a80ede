package types

import (
	"math/big"

	"fortio.org/safecast"

	"gotoc/internal/ice"
	"gotoc/internal/machine"
)

var bigOne = big.NewInt(1)

func widthOf(t Type, mm *machine.Model) uint {
	w, ok := NativeWidth(t, mm)
	ice.Assertf(ok && IsInteger(t) || ok && IsBitField(t), "%v has no fixed integer width", t)
	n, err := safecast.Conv[uint](w)
	ice.Assertf(err == nil, "width %d of %v: %v", w, t, err)
	return n
}

// MaxInt is the largest value of a fixed-width integer type.
func MaxInt(t Type, mm *machine.Model) *big.Int {
	w := widthOf(t, mm)
	if IsSigned(t, mm) {
		w--
	}
	v := new(big.Int).Lsh(bigOne, w)
	return v.Sub(v, bigOne)
}

// MinInt is the smallest value of a fixed-width integer type.
func MinInt(t Type, mm *machine.Model) *big.Int {
	if !IsSigned(t, mm) {
		widthOf(t, mm)
		return new(big.Int)
	}
	w := widthOf(t, mm)
	v := new(big.Int).Lsh(bigOne, w-1)
	return v.Neg(v)
}

// FitsInBits reports whether v is representable in width bits.
func FitsInBits(v *big.Int, width uint64, signed bool) bool {
	if width == 0 {
		return false
	}
	if signed {
		// -2^(w-1) <= v < 2^(w-1)
		return v.BitLen() < int(width) || isNegPowerOfTwo(v, width-1)
	}
	return v.Sign() >= 0 && uint64(v.BitLen()) <= width
}

func isNegPowerOfTwo(v *big.Int, exp uint64) bool {
	if v.Sign() >= 0 {
		return false
	}
	abs := new(big.Int).Neg(v)
	return uint64(abs.BitLen()) == exp+1 && abs.TrailingZeroBits() == uint(exp)
}

// TwosComplement returns the unsigned width-bit pattern of v.
func TwosComplement(v *big.Int, width uint64) *big.Int {
	w, err := safecast.Conv[uint](width)
	ice.Assertf(err == nil, "width %d: %v", width, err)
	mod := new(big.Int).Lsh(bigOne, w)
	r := new(big.Int).Mod(v, mod)
	return r
}
