package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"gotoc/internal/irep"
)

// emitUnits serializes every result into the --emit directory. Files are
// renamed into place only when all units succeed.
func emitUnits(ctx context.Context, cmd *cobra.Command, results []*unitResult, format irep.Format, useTUI bool) (err error) {
	files := make([]*atomicFile, 0, len(results))
	defer func() {
		for _, f := range files {
			f.Abort()
		}
	}()

	units := make([]irep.Unit, len(results))
	for i, res := range results {
		f, err := createAtomic(filepath.Join(layoutEmitDir, res.name+format.Ext()))
		if err != nil {
			return err
		}
		files = append(files, f)
		units[i] = irep.Unit{Name: res.name, Table: res.table, Out: f}
	}

	if useTUI {
		err = runSerializeWithUI(ctx, "gotoc layout", units, layoutJobs, format)
	} else {
		err = irep.SerializeUnits(ctx, units, layoutJobs, format, nil)
	}
	if err != nil {
		return err
	}

	for i, f := range files {
		if err := f.Commit(); err != nil {
			return fmt.Errorf("unit %s: %w", units[i].Name, err)
		}
		if !useTUI {
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", f.path)
		}
	}
	return nil
}
