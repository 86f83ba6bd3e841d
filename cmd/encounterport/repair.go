package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"encounterport/internal/importer"
)

func repairCmd() *cobra.Command {
	var sourcePath string
	var prefix string
	cmd := &cobra.Command{
		Use:   "repair",
		Short: "Re-resolve images in journals already imported under the prefix",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepair(cmd, sourcePath, prefix)
		},
	}
	cmd.Flags().StringVar(&sourcePath, "source", "", "Export directory under the data root (overrides source_path)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Folder name prefix (overrides prefix)")
	return cmd
}

func runRepair(cmd *cobra.Command, sourcePath, prefix string) error {
	ctx := context.Background()

	p, err := loadProject()
	if err != nil {
		return err
	}
	opts := importer.OptionsFromConfig(p.cfg)
	if sourcePath != "" {
		opts.SourcePath = sourcePath
	}
	if prefix != "" {
		opts.Prefix = prefix
	}

	db, err := openStore(ctx, p.cfg)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	summary, err := importer.RepairJournals(ctx, opts, importer.Deps{FS: p.data, Store: db, Logger: p.logger})
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, "Repair complete.")
	fmt.Fprintf(os.Stdout, "  Entries:         %d\n", summary.Entries)
	fmt.Fprintf(os.Stdout, "  Entries touched: %d\n", summary.EntriesTouched)
	fmt.Fprintf(os.Stdout, "  Pages touched:   %d\n", summary.PagesTouched)
	fmt.Fprintf(os.Stdout, "  Pages unchanged: %d\n", summary.PagesUnchanged)

	printFirstErrors(summary.FirstErrors)
	if summary.Failed > 0 {
		return fmt.Errorf("repair completed with %d failures", summary.Failed)
	}
	return nil
}
