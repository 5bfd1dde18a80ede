package layout

import "gotoc/internal/machine"

// Target holds the ABI facts the engine needs beyond raw type widths.
type Target struct {
	Name     string
	PtrSize  uint64 // bytes
	PtrAlign uint64 // bytes
	// MaxScalarAlign caps the natural alignment of scalars inside
	// aggregates; i386 SysV aligns 8-byte scalars to 4.
	MaxScalarAlign uint64
}

// TargetOf derives the layout target of mm.
func TargetOf(mm *machine.Model) Target {
	ptr := mm.PointerWidth / 8
	maxAlign := uint64(16)
	if mm.PointerWidth == 32 {
		maxAlign = 4
	}
	return Target{
		Name:           mm.Architecture,
		PtrSize:        ptr,
		PtrAlign:       ptr,
		MaxScalarAlign: maxAlign,
	}
}
