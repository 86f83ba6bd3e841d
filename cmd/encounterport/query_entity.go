package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"encounterport/internal/config"
	"encounterport/internal/store"
)

func queryEntityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entity <id>",
		Short: "Display an imported entity and its stored document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueryEntity(cmd, args[0])
		},
	}
	return cmd
}

func runQueryEntity(cmd *cobra.Command, id string) error {
	ctx := context.Background()

	cfg, err := config.LoadProjectConfig(configPath)
	if err != nil {
		return err
	}

	db, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	entity, err := db.GetEntity(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		fmt.Fprintf(os.Stdout, "No entity found for %q.\n", id)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "ID: %s\n", entity.ID)
	fmt.Fprintf(os.Stdout, "Kind: %s\n", entity.Kind)
	fmt.Fprintf(os.Stdout, "Name: %s\n", entity.Name)
	if entity.Folder != "" {
		fmt.Fprintf(os.Stdout, "Folder: %s\n", entity.Folder)
	}
	if entity.SourceKind != "" {
		fmt.Fprintf(os.Stdout, "Source: %s %s\n", entity.SourceKind, entity.SourceID)
	}

	var doc bytes.Buffer
	if err := json.Indent(&doc, entity.Data, "", "  "); err != nil {
		return fmt.Errorf("formatting %s: %w", id, err)
	}
	fmt.Fprintln(os.Stdout, "Data:")
	fmt.Fprintln(os.Stdout, doc.String())
	return nil
}
