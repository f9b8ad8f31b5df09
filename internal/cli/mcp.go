package cli

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/journal/internal/entrypoint"
	"github.com/mrlokans/journal/internal/mcp"
)

func newMCPCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the journal MCP server (stdio)",
		Long: `Start a Model Context Protocol (MCP) server that exposes read-only journal
tools (get_entry, list_entries, search_entries, filter_by_mood, filter_by_tag,
journal_stats, ping) over STDIO.

Example:

  journal mcp --db ~/journal.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// stdout carries JSON-RPC
			log.SetOutput(os.Stderr)

			cfg := opts.config()
			app, err := entrypoint.Open(cfg, logger.Silent)
			if err != nil {
				return err
			}
			defer app.Close()

			srv := mcp.NewJournalServer(app.Journal, app.Stats, opts.Version)

			fmt.Fprintf(os.Stderr, "Journal MCP server started. DB: %s\n", cfg.Database.Path)
			fmt.Fprintln(os.Stderr, "Listening for MCP JSON-RPC on STDIN/STDOUT ... (Ctrl+C to quit)")

			if err := srv.Start(); err != nil {
				return fmt.Errorf("journal MCP server error: %w", err)
			}
			return nil
		},
	}
}
