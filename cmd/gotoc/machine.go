package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"gotoc/internal/machine"
)

var machineFormat string

func init() {
	machineCmd.Flags().StringVar(&machineFormat, "format", "text", "output format (text|toml|yaml)")
}

var machineCmd = &cobra.Command{
	Use:   "machine",
	Short: "Print the resolved target machine model",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mm, err := resolveMachine(cmd)
		if err != nil {
			return err
		}
		switch strings.ToLower(machineFormat) {
		case "text":
			renderMachine(cmd.OutOrStdout(), mm)
			return nil
		case "toml":
			return machine.Encode(cmd.OutOrStdout(), mm, machine.FormatTOML)
		case "yaml":
			return machine.Encode(cmd.OutOrStdout(), mm, machine.FormatYAML)
		default:
			return fmt.Errorf("unsupported format %q (must be text, toml or yaml)", machineFormat)
		}
	},
}

var (
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	titleStyle = lipgloss.NewStyle().Bold(true)
)

type kv struct {
	key   string
	value string
}

func machineRows(mm *machine.Model) []kv {
	u := func(v uint64) string { return strconv.FormatUint(v, 10) }
	b := strconv.FormatBool
	float := func(f machine.FloatFormat) string {
		return fmt.Sprintf("%d bits (%d fraction, %d exponent)", f.Width, f.Fraction, f.Exponent())
	}
	return []kv{
		{"architecture", mm.Architecture},
		{"alignment", u(mm.Alignment)},
		{"bool width", u(mm.BoolWidth)},
		{"char width", u(mm.CharWidth)},
		{"char unsigned", b(mm.CharIsUnsigned)},
		{"short width", u(mm.ShortIntWidth)},
		{"int width", u(mm.IntWidth)},
		{"long width", u(mm.LongIntWidth)},
		{"long long width", u(mm.LongLongIntWidth)},
		{"pointer width", u(mm.PointerWidth)},
		{"word size", u(mm.WordSize)},
		{"float", float(mm.Float)},
		{"double", float(mm.Double)},
		{"long double width", u(mm.LongDoubleWidth)},
		{"single width", u(mm.SingleWidth)},
		{"wchar_t width", u(mm.WcharTWidth)},
		{"wchar_t unsigned", b(mm.WcharTIsUnsigned)},
		{"memory operand size", u(mm.MemoryOperandSize)},
		{"big endian", b(mm.IsBigEndian)},
		{"null is zero", b(mm.NullIsZero)},
		{"rounding mode", mm.RoundingMode.String()},
	}
}

func renderMachine(out io.Writer, mm *machine.Model) {
	rows := machineRows(mm)
	width := 0
	for _, r := range rows {
		width = max(width, runewidth.StringWidth(r.key))
	}
	fmt.Fprintln(out, titleStyle.Render("machine "+mm.Architecture))
	for _, r := range rows {
		fmt.Fprintf(out, "  %s  %s\n", keyStyle.Render(runewidth.FillRight(r.key, width)), r.value)
	}
}
