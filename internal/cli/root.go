// Package cli wires the journal commands into a cobra command tree.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrlokans/journal/internal/config"
)

// Options carries the global flags shared by every command.
type Options struct {
	DatabasePath string
	Version      string
}

// config loads the environment configuration and applies flag overrides.
func (o *Options) config() *config.Config {
	cfg := config.NewConfig()
	if o.DatabasePath != "" {
		cfg.Database.Path = o.DatabasePath
	}
	return cfg
}

// NewRootCommand builds the command tree. Running it without a subcommand starts the server.
func NewRootCommand(version string) *cobra.Command {
	opts := &Options{Version: version}

	root := &cobra.Command{
		Use:   "journal",
		Short: "A personal journal with mood tracking, analytics and markdown export.",
		Long: `journal stores one entry per day together with moods, tags and a category.

Without a subcommand it starts the HTTP API (same as 'journal serve').
Configuration is read from the environment, e.g. DATABASE_PATH, PORT, EXPORT_DIR, AUTH_MODE.`,
		Version:       fmt.Sprintf("v%s", version),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.DatabasePath, "db", "", "Path to the journal database (overrides DATABASE_PATH)")

	root.AddCommand(
		newServeCommand(opts),
		newExportCommand(opts),
		newStatsCommand(opts),
		newUserCommand(opts),
		newMCPCommand(opts),
		newVersionCommand(opts),
	)
	return root
}
