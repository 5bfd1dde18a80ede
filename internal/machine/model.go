// Package machine describes the target machine the IR is generated for.
//
// A Model is shared read-only by every builder and serializer of one
// compilation. Callers obtain one from a preset or a machine file and pass it
// explicitly; there is no process-wide default.
package machine

import (
	"errors"
	"fmt"
	"slices"
)

// RoundingMode mirrors the verifier's __CPROVER_rounding_mode encoding.
type RoundingMode int

const (
	RoundToNearest RoundingMode = iota
	RoundDownward
	RoundUpward
	RoundTowardsZero
)

func (m RoundingMode) String() string {
	switch m {
	case RoundToNearest:
		return "to-nearest"
	case RoundDownward:
		return "downward"
	case RoundUpward:
		return "upward"
	case RoundTowardsZero:
		return "towards-zero"
	default:
		return fmt.Sprintf("rounding(%d)", int(m))
	}
}

// FloatFormat is an IEEE-754 binary layout: total width and fraction bits.
type FloatFormat struct {
	Width    uint64 `toml:"width" yaml:"width"`
	Fraction uint64 `toml:"fraction" yaml:"fraction"`
}

// Exponent returns the exponent field width.
func (f FloatFormat) Exponent() uint64 {
	if f.Width <= f.Fraction {
		return 0
	}
	return f.Width - f.Fraction - 1
}

// Model is the set of target parameters every encoding depends on.
type Model struct {
	Architecture      string       `toml:"architecture" yaml:"architecture"`
	Alignment         uint64       `toml:"alignment" yaml:"alignment"`
	BoolWidth         uint64       `toml:"bool_width" yaml:"bool_width"`
	CharIsUnsigned    bool         `toml:"char_is_unsigned" yaml:"char_is_unsigned"`
	CharWidth         uint64       `toml:"char_width" yaml:"char_width"`
	Double            FloatFormat  `toml:"double" yaml:"double"`
	Float             FloatFormat  `toml:"float" yaml:"float"`
	IntWidth          uint64       `toml:"int_width" yaml:"int_width"`
	IsBigEndian       bool         `toml:"is_big_endian" yaml:"is_big_endian"`
	LongDoubleWidth   uint64       `toml:"long_double_width" yaml:"long_double_width"`
	LongIntWidth      uint64       `toml:"long_int_width" yaml:"long_int_width"`
	LongLongIntWidth  uint64       `toml:"long_long_int_width" yaml:"long_long_int_width"`
	MemoryOperandSize uint64       `toml:"memory_operand_size" yaml:"memory_operand_size"`
	NullIsZero        bool         `toml:"null_is_zero" yaml:"null_is_zero"`
	PointerWidth      uint64       `toml:"pointer_width" yaml:"pointer_width"`
	RoundingMode      RoundingMode `toml:"rounding_mode" yaml:"rounding_mode"`
	ShortIntWidth     uint64       `toml:"short_int_width" yaml:"short_int_width"`
	SingleWidth       uint64       `toml:"single_width" yaml:"single_width"`
	WcharTIsUnsigned  bool         `toml:"wchar_t_is_unsigned" yaml:"wchar_t_is_unsigned"`
	WcharTWidth       uint64       `toml:"wchar_t_width" yaml:"wchar_t_width"`
	WordSize          uint64       `toml:"word_size" yaml:"word_size"`
}

// Endianness returns the verifier's endianness code: 1 little, 2 big.
func (m *Model) Endianness() uint64 {
	if m.IsBigEndian {
		return 2
	}
	return 1
}

// Clone returns an independent copy.
func (m *Model) Clone() *Model {
	c := *m
	return &c
}

// Validate checks the widths the encoders rely on.
func (m *Model) Validate() error {
	if m == nil {
		return errors.New("machine model is nil")
	}
	var errs []error
	byteWidths := []struct {
		name string
		v    uint64
	}{
		{"bool_width", m.BoolWidth},
		{"char_width", m.CharWidth},
		{"short_int_width", m.ShortIntWidth},
		{"int_width", m.IntWidth},
		{"long_int_width", m.LongIntWidth},
		{"long_long_int_width", m.LongLongIntWidth},
		{"pointer_width", m.PointerWidth},
		{"wchar_t_width", m.WcharTWidth},
	}
	for _, w := range byteWidths {
		if w.v == 0 || w.v%8 != 0 {
			errs = append(errs, fmt.Errorf("%s must be a positive multiple of 8, got %d", w.name, w.v))
		}
	}
	if m.Architecture == "" {
		errs = append(errs, errors.New("architecture is empty"))
	}
	// Constants are stored as Go float32/float64 bit patterns.
	if m.Float != (FloatFormat{Width: 32, Fraction: 23}) {
		errs = append(errs, fmt.Errorf("float must be binary32 (32/23), got %d/%d", m.Float.Width, m.Float.Fraction))
	}
	if m.Double != (FloatFormat{Width: 64, Fraction: 52}) {
		errs = append(errs, fmt.Errorf("double must be binary64 (64/52), got %d/%d", m.Double.Width, m.Double.Fraction))
	}
	if m.RoundingMode < RoundToNearest || m.RoundingMode > RoundTowardsZero {
		errs = append(errs, fmt.Errorf("unknown rounding mode %d", int(m.RoundingMode)))
	}
	return errors.Join(errs...)
}

var presets = map[string]func() *Model{
	"x86_64-linux":   x86_64Linux,
	"x86_64-darwin":  x86_64Darwin,
	"aarch64-linux":  aarch64Linux,
	"aarch64-darwin": aarch64Darwin,
	"i386-linux":     i386Linux,
}

// DefaultPreset is used when neither a target nor a base is named.
const DefaultPreset = "x86_64-linux"

// Presets lists the known target names in sorted order.
func Presets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Preset returns a fresh Model for a named target.
func Preset(name string) (*Model, error) {
	mk, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown target %q (known: %v)", name, Presets())
	}
	return mk(), nil
}

// MustPreset is Preset for names known at compile time.
func MustPreset(name string) *Model {
	m, err := Preset(name)
	if err != nil {
		panic(err)
	}
	return m
}

func x86_64Linux() *Model {
	return &Model{
		Architecture:      "x86_64",
		Alignment:         1,
		BoolWidth:         8,
		CharIsUnsigned:    false,
		CharWidth:         8,
		Double:            FloatFormat{Width: 64, Fraction: 52},
		Float:             FloatFormat{Width: 32, Fraction: 23},
		IntWidth:          32,
		IsBigEndian:       false,
		LongDoubleWidth:   128,
		LongIntWidth:      64,
		LongLongIntWidth:  64,
		MemoryOperandSize: 4,
		NullIsZero:        true,
		PointerWidth:      64,
		RoundingMode:      RoundToNearest,
		ShortIntWidth:     16,
		SingleWidth:       32,
		WcharTIsUnsigned:  false,
		WcharTWidth:       32,
		WordSize:          32,
	}
}

func x86_64Darwin() *Model {
	return x86_64Linux()
}

func aarch64Linux() *Model {
	m := x86_64Linux()
	m.Architecture = "aarch64"
	m.CharIsUnsigned = true
	m.WcharTIsUnsigned = true
	return m
}

func aarch64Darwin() *Model {
	m := x86_64Linux()
	m.Architecture = "arm64"
	m.LongDoubleWidth = 64
	return m
}

func i386Linux() *Model {
	m := x86_64Linux()
	m.Architecture = "i386"
	m.LongDoubleWidth = 96
	m.LongIntWidth = 32
	m.PointerWidth = 32
	return m
}
