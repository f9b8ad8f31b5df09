package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/journal/internal/entrypoint"
	"github.com/mrlokans/journal/internal/tasks"
)

func newExportCommand(opts *Options) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the whole journal to a markdown file",
		Long: `Writes every entry, oldest first, into a single markdown document with YAML front matter.

Without --out the file goes to EXPORT_DIR/journal-<yyyy-MM-dd>.md.

Examples:

  journal export
  journal export --out ~/Notes/journal.md`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.config()
			path := out
			if path == "" {
				if cfg.Export.Dir == "" {
					return fmt.Errorf("either --out or EXPORT_DIR must be set")
				}
				path = tasks.DatedExportPath(cfg.Export.Dir, time.Now())
			}

			app, err := entrypoint.Open(cfg, logger.Silent)
			if err != nil {
				return err
			}
			defer app.Close()

			result, err := app.Exporter.ExportAll(path)
			app.Audit.LogExport(0, path, result.EntriesProcessed, err)
			if err != nil {
				return fmt.Errorf("export failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s (export %s)\n", result.EntriesProcessed, result.Path, result.ExportID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Destination markdown file")
	return cmd
}
