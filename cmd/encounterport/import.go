package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"encounterport/internal/importer"
)

func importCmd() *cobra.Command {
	var sourcePath string
	var prefix string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import an export directory into the world",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, sourcePath, prefix)
		},
	}
	cmd.Flags().StringVar(&sourcePath, "source", "", "Export directory under the data root (overrides source_path)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Folder name prefix (overrides prefix)")
	return cmd
}

func runImport(cmd *cobra.Command, sourcePath, prefix string) error {
	ctx := context.Background()

	p, err := loadProject()
	if err != nil {
		return err
	}
	opts, err := p.options()
	if err != nil {
		return err
	}
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

	summary, err := importer.Run(ctx, opts, importer.Deps{FS: p.data, Store: db, Logger: p.logger})
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, "Import complete.")
	fmt.Fprintf(os.Stdout, "  Base path:     %s\n", summary.BasePath)
	fmt.Fprintf(os.Stdout, "  Indexed files: %d\n", summary.IndexedFiles)
	fmt.Fprintln(os.Stdout, summaryTable(summary))

	printFirstErrors(summary.FirstErrors)
	if total := summary.Total(); total.Failed > 0 {
		return fmt.Errorf("import completed with %d failures", total.Failed)
	}
	return nil
}

func summaryTable(summary *importer.Summary) string {
	rows := make([][]string, 0, len(importer.Categories)+1)
	for _, cat := range importer.Categories {
		c := summary.Counts[cat]
		rows = append(rows, countsRow(string(cat), c))
	}
	rows = append(rows, countsRow("Total", summary.Total()))
	return renderTable(
		[]string{"Category", "Attempted", "Succeeded", "Failed"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
	)
}

func countsRow(label string, c importer.Counts) []string {
	return []string{label, strconv.Itoa(c.Attempted), strconv.Itoa(c.Succeeded), strconv.Itoa(c.Failed)}
}

func printFirstErrors(errs []string) {
	if len(errs) == 0 {
		return
	}
	fmt.Fprintf(os.Stdout, "\nFirst errors (%d):\n", len(errs))
	for _, item := range errs {
		fmt.Fprintf(os.Stdout, "  - %s\n", item)
	}
}
