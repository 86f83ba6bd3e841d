package main

import (
	"context"

	"github.com/spf13/cobra"

	"encounterport/internal/mcp"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio",
		RunE:  runServe,
	}
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	p, err := loadProject()
	if err != nil {
		return err
	}
	opts, err := p.options()
	if err != nil {
		return err
	}

	db, err := openStore(ctx, p.cfg)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	server := mcp.NewServer(opts, p.data, db, p.logger, version)
	return server.Run(ctx, &sdk.StdioTransport{})
}
