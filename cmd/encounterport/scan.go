package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"encounterport/internal/importer"
)

func scanCmd() *cobra.Command {
	var sourcePath string
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Report the export base directory and its manifest files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, sourcePath)
		},
	}
	cmd.Flags().StringVar(&sourcePath, "source", "", "Export directory under the data root (overrides source_path)")
	return cmd
}

func runScan(cmd *cobra.Command, sourcePath string) error {
	ctx := context.Background()

	p, err := loadProject()
	if err != nil {
		return err
	}
	opts := importer.OptionsFromConfig(p.cfg)
	if sourcePath != "" {
		opts.SourcePath = sourcePath
	}

	tree, err := importer.Scan(ctx, opts, p.data, p.logger)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Base path: %s\n", tree.BasePath)
	fmt.Fprintln(os.Stdout, "Manifests:")
	for _, name := range tree.Names() {
		fmt.Fprintf(os.Stdout, "  - %s\n", name)
	}
	return nil
}
