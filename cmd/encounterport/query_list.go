package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"encounterport/internal/config"
	"encounterport/internal/store"
	"encounterport/internal/target"
)

func queryListCmd() *cobra.Command {
	var kind string
	var folder string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List imported entities",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueryList(cmd, kind, folder)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "Entity kind to filter (JournalEntry, Scene, Actor, Item, RollTable)")
	cmd.Flags().StringVar(&folder, "folder", "", "Folder id to filter")
	return cmd
}

func runQueryList(cmd *cobra.Command, kind, folder string) error {
	ctx := context.Background()

	filter := store.Filter{Folder: folder}
	if kind != "" {
		k, ok := target.ParseKind(kind)
		if !ok {
			return fmt.Errorf("unknown kind %q", kind)
		}
		filter.Kind = k
	}

	cfg, err := config.LoadProjectConfig(configPath)
	if err != nil {
		return err
	}

	db, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	entities, err := db.ListEntities(ctx, filter)
	if err != nil {
		return err
	}
	if len(entities) == 0 {
		fmt.Fprintln(os.Stdout, "No entities found.")
		return nil
	}

	rows := make([][]string, 0, len(entities))
	for _, e := range entities {
		source := e.SourceKind
		if e.SourceID != "" {
			source += ":" + e.SourceID
		}
		rows = append(rows, []string{e.ID, string(e.Kind), e.Name, source})
	}
	fmt.Fprintln(os.Stdout, renderTable([]string{"ID", "Kind", "Name", "Source"}, rows, nil))
	return nil
}
