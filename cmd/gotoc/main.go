package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"gotoc/internal/machine"
	"gotoc/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "gotoc",
	Short: "Goto-program builder and symbol-table serializer",
	Long: `gotoc builds CBMC goto-program symbol tables for a target machine and
serializes them to the JSON or msgpack exchange format.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return applyColorMode(cmd)
	},
}

func init() {
	rootCmd.Version = version.Plain()

	rootCmd.AddCommand(machineCmd)
	rootCmd.AddCommand(envCmd)
	rootCmd.AddCommand(layoutCmd)
	rootCmd.AddCommand(versionCmd)

	pf := rootCmd.PersistentFlags()
	pf.String("target", machine.DefaultPreset, "target preset ("+strings.Join(machine.Presets(), "|")+")")
	pf.String("machine", "", "machine file (.toml or .yaml) overriding --target")
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.String("trace", "", "trace output file (\"-\" for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "stream", "trace storage mode (stream|ring|both)")
	pf.String("trace-format", "auto", "trace format (auto|text|ndjson)")
	pf.Int("trace-ring-size", 4096, "events kept by the ring tracer")
	pf.Bool("timings", false, "print phase timings to stderr")
	pf.String("cpu-profile", "", "write a CPU profile to this file")
	pf.String("mem-profile", "", "write a heap profile to this file on exit")
	pf.String("runtime-trace", "", "write a Go runtime trace to this file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.New(color.FgRed, color.Bold).Sprint("error:"), err)
		os.Exit(1)
	}
}

// isTerminal reports whether w is a file attached to a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// autoSwitch reads an auto|on|off flag value. auto holds when w is a
// terminal.
func autoSwitch(flag, value string, w io.Writer) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto", "":
		return isTerminal(w), nil
	default:
		return false, fmt.Errorf("invalid --%s value %q (expected auto|on|off)", flag, value)
	}
}

func applyColorMode(cmd *cobra.Command) error {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return err
	}
	on, err := autoSwitch("color", mode, os.Stdout)
	if err != nil {
		return err
	}
	color.NoColor = !on
	return nil
}

// resolveMachine returns the model selected by --machine, or the --target
// preset when no machine file is given.
func resolveMachine(cmd *cobra.Command) (*machine.Model, error) {
	pf := cmd.Root().PersistentFlags()
	path, err := pf.GetString("machine")
	if err != nil {
		return nil, err
	}
	if path != "" {
		return machine.LoadFile(path)
	}
	target, err := pf.GetString("target")
	if err != nil {
		return nil, err
	}
	return machine.Preset(target)
}
