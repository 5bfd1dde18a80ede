package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"gotoc/internal/ir"
	"gotoc/internal/irep"
	"gotoc/internal/trace"
)

var (
	envOutput  string
	envMsgpack bool
)

func init() {
	envCmd.Flags().StringVarP(&envOutput, "output", "o", "", "write the symbol table to a file instead of stdout")
	envCmd.Flags().BoolVar(&envMsgpack, "msgpack", false, "encode as msgpack instead of JSON")
}

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Emit the environment symbol table for the target machine",
	Long: `env builds a symbol table holding only the machine-model constants and
the builtin declarations every goto program starts from, and serializes it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cleanup, err := setupTracing(cmd)
		if err != nil {
			return err
		}
		defer cleanup()
		stopProfiling, err := setupProfiling(cmd)
		if err != nil {
			return err
		}
		defer stopProfiling()

		mm, err := resolveMachine(cmd)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		span, ctx := trace.Start(ctx, trace.ScopeDriver, "env")
		st := ir.NewSymbolTable(mm)
		span.WithExtra("symbols", fmt.Sprint(st.Len()))

		format := irep.FormatJSON
		if envMsgpack {
			format = irep.FormatMsgpack
		}
		err = writeOutput(cmd.OutOrStdout(), envOutput, func(w io.Writer) error {
			return format.Write(ctx, w, st)
		})
		span.End(string(format))
		if err != nil {
			dumpTraceOnICE(cmd, cmd.ErrOrStderr(), err)
		}
		return err
	},
}
