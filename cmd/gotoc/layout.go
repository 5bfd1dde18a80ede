package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"gotoc/internal/ice"
	"gotoc/internal/ir"
	"gotoc/internal/irep"
	"gotoc/internal/layout"
	"gotoc/internal/machine"
	"gotoc/internal/trace"
	"gotoc/internal/types"
)

var (
	layoutEmitDir string
	layoutUI      string
	layoutJobs    int
	layoutFormat  string
	layoutQuiet   bool
)

func init() {
	layoutCmd.Flags().StringVar(&layoutEmitDir, "emit", "", "write one symbol table per file into this directory")
	layoutCmd.Flags().StringVar(&layoutUI, "ui", "auto", "progress UI while emitting (auto|on|off)")
	layoutCmd.Flags().IntVarP(&layoutJobs, "jobs", "j", 0, "parallel serialization jobs (0 = GOMAXPROCS)")
	layoutCmd.Flags().StringVar(&layoutFormat, "format", string(irep.FormatJSON), "symbol table format (json|msgpack)")
	layoutCmd.Flags().BoolVarP(&layoutQuiet, "quiet", "q", false, "do not print layout reports")
}

var layoutCmd = &cobra.Command{
	Use:   "layout <decls.toml>...",
	Short: "Lay out aggregate declarations for the target machine",
	Long: `layout reads struct and enum declarations from TOML files, computes their
C layout for the target machine and prints offsets and padding. With --emit
each file becomes a symbol table holding the padded aggregate types.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLayout,
}

// unitResult is the outcome of laying out one declaration file.
type unitResult struct {
	name  string
	path  string
	table *ir.SymbolTable
	aggrs []aggrReport
}

type aggrReport struct {
	kind  string
	name  string
	size  uint64
	align uint64
	rows  []fieldRow
}

type fieldRow struct {
	offset  uint64
	name    string
	typ     string
	padding bool
}

func runLayout(cmd *cobra.Command, args []string) error {
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
	timer, err := newTimer(cmd)
	if err != nil {
		return err
	}
	if timer != nil {
		defer func() { fmt.Fprint(cmd.ErrOrStderr(), timer.Summary()) }()
	}

	format, err := irep.ParseFormat(layoutFormat)
	if err != nil {
		return err
	}
	// The progress UI only runs while units are written, and takes over
	// stdout.
	useTUI, err := autoSwitch("ui", layoutUI, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	mm, err := resolveMachine(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	span, ctx := trace.Start(ctx, trace.ScopeDriver, "layout")
	defer span.End("")

	results := make([]*unitResult, 0, len(args))
	seen := make(map[string]string, len(args))
	for _, path := range args {
		done := timer.Track("layout " + filepath.Base(path))
		res, err := layoutFile(ctx, path, mm)
		if res != nil {
			done(fmt.Sprintf("%d aggregates", len(res.aggrs)))
		} else {
			done("failed")
		}
		if err != nil {
			dumpTraceOnICE(cmd, cmd.ErrOrStderr(), err)
			return err
		}
		if prev, dup := seen[res.name]; dup {
			return fmt.Errorf("%s and %s both produce unit %q", prev, path, res.name)
		}
		seen[res.name] = path
		results = append(results, res)
	}

	if !layoutQuiet {
		for _, res := range results {
			renderLayout(cmd.OutOrStdout(), res)
		}
	}
	if layoutEmitDir == "" {
		return nil
	}
	done := timer.Track("emit")
	err = emitUnits(ctx, cmd, results, format, useTUI)
	done(fmt.Sprintf("%d units", len(results)))
	if err != nil {
		dumpTraceOnICE(cmd, cmd.ErrOrStderr(), err)
	}
	return err
}

// layoutFile builds the symbol table for one declaration file.
func layoutFile(ctx context.Context, path string, mm *machine.Model) (res *unitResult, err error) {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	span, ctx := trace.Start(trace.WithUnit(ctx, name), trace.ScopeUnit, "layout")
	span.WithExtra("path", path)
	defer func() {
		detail := "ok"
		if err != nil {
			detail = err.Error()
		}
		span.End(detail)
	}()

	df, err := loadDecls(path)
	if err != nil {
		return nil, err
	}
	aggrs, err := df.aggregates()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	res = &unitResult{
		name:  name,
		path:  path,
		table: ir.NewSymbolTable(mm),
	}
	engine := layout.New(mm, res.table)
	iceErr := ice.Catch(func() {
		for _, a := range aggrs {
			tag, l, defErr := a.define(engine, res.table)
			if defErr != nil {
				err = fmt.Errorf("%s: %s %s: %w", path, a.kind, a.name, defErr)
				return
			}
			trace.Point(ctx, trace.ScopeSymbol, a.kind+" "+a.name, fmt.Sprintf("size=%d align=%d", l.Size, l.Align))
			res.aggrs = append(res.aggrs, reportAggregate(res.table, a, tag, l))
		}
	})
	if iceErr != nil {
		return nil, fmt.Errorf("%s: %w", path, iceErr)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func reportAggregate(st *ir.SymbolTable, a aggregate, tag types.Type, l layout.TypeLayout) aggrReport {
	r := aggrReport{kind: a.kind, name: a.name, size: l.Size, align: l.Align}
	comps, _ := st.LookupFieldsInType(tag)
	for i, c := range comps {
		row := fieldRow{name: c.Name(), typ: c.Type().String(), padding: c.IsPadding()}
		if i < len(l.FieldOffsets) {
			row.offset = l.FieldOffsets[i]
		}
		if row.padding {
			row.typ = strconv.FormatUint(c.(types.Padding).Bits(), 10) + " bits"
		}
		r.rows = append(r.rows, row)
	}
	return r
}

var paddingColor = color.New(color.Faint)

func renderLayout(out io.Writer, res *unitResult) {
	fmt.Fprintln(out, titleStyle.Render(res.path))
	for _, a := range res.aggrs {
		fmt.Fprintf(out, "  %s %s  size %d  align %d\n", a.kind, color.New(color.Bold).Sprint(a.name), a.size, a.align)
		nameWidth := 0
		offWidth := 0
		for _, row := range a.rows {
			nameWidth = max(nameWidth, runewidth.StringWidth(row.name))
			offWidth = max(offWidth, len(strconv.FormatUint(row.offset, 10)))
		}
		for _, row := range a.rows {
			off := runewidth.FillLeft(strconv.FormatUint(row.offset, 10), offWidth)
			line := fmt.Sprintf("    %s  %s  %s", off, runewidth.FillRight(row.name, nameWidth), row.typ)
			if row.padding {
				line = paddingColor.Sprint(line)
			}
			fmt.Fprintln(out, line)
		}
	}
}
