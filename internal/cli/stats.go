package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/journal/internal/analytics"
	"github.com/mrlokans/journal/internal/entities"
	"github.com/mrlokans/journal/internal/entrypoint"
)

func newStatsCommand(opts *Options) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print the journal dashboard",
		Long:  `Prints the current streak, the number of entries, the mood distribution and the most used tags.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return fmt.Errorf("--limit must not be negative")
			}

			app, err := entrypoint.Open(opts.config(), logger.Silent)
			if err != nil {
				return err
			}
			defer app.Close()

			summary := app.Stats.Summary(limit)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}
			return printSummary(cmd.OutOrStdout(), summary)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", analytics.DefaultTagLimit, "Number of top tags to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the summary as JSON")
	return cmd
}

func printSummary(out io.Writer, s analytics.Summary) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "Entries:\t%d\n", s.TotalEntries)
	fmt.Fprintf(w, "Streak:\t%d days\n", s.Streak)
	if s.FirstEntryDate != nil {
		fmt.Fprintf(w, "First entry:\t%s\n", s.FirstEntryDate)
	}
	if s.LastEntryDate != nil {
		fmt.Fprintf(w, "Last entry:\t%s\n", s.LastEntryDate)
	}

	if len(s.MoodDistribution) > 0 {
		fmt.Fprintln(w, "\nMoods:")
		for _, kind := range entities.AllMoodKinds() {
			if count := s.MoodDistribution[kind]; count > 0 {
				fmt.Fprintf(w, "  %s\t%d\n", kind, count)
			}
		}
	}

	if len(s.TopTags) > 0 {
		fmt.Fprintln(w, "\nTop tags:")
		for _, tag := range s.TopTags {
			fmt.Fprintf(w, "  %s\t%d\n", tag.Name, tag.Count)
		}
	}

	return w.Flush()
}
