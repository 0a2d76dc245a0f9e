package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/sales-analyzer/internal/model"
	"github.com/sells-group/sales-analyzer/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect analysis run history",
	Long:  "Commands for listing, viewing, summarizing and pruning the run log. Requires store.driver sqlite or postgres.",
}

// openRunLog validates the config and opens the run log for the runs commands.
func openRunLog(ctx context.Context) (store.Store, error) {
	if err := cfg.Validate("runs"); err != nil {
		return nil, err
	}
	return openStore(ctx)
}

// -- runs list --

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List analysis runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openRunLog(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		status, _ := cmd.Flags().GetString("status")
		source, _ := cmd.Flags().GetString("source")
		limit, _ := cmd.Flags().GetInt("limit")

		runs, err := st.ListRuns(ctx, store.RunFilter{
			Status: model.RunStatus(status),
			Source: source,
			Limit:  limit,
		})
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRunsList(os.Stdout, runs)
		return nil
	},
}

// -- runs show --

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show full details of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openRunLog(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs show")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	},
}

// -- runs stats --

var runsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate run statistics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openRunLog(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		since, _ := cmd.Flags().GetDuration("since")
		runs, err := st.ListRuns(ctx, store.RunFilter{Limit: 10000}) // high limit for stats
		if err != nil {
			return eris.Wrap(err, "runs stats")
		}
		if since > 0 {
			runs = runsSince(runs, time.Now().Add(-since))
		}

		formatRunStats(os.Stdout, computeRunStats(runs))
		return nil
	},
}

// -- runs prune --

var runsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete runs older than a duration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		olderThan, _ := cmd.Flags().GetDuration("older-than")
		if olderThan <= 0 {
			return eris.New("runs prune: --older-than must be positive")
		}

		st, err := openRunLog(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		n, err := st.DeleteRunsBefore(ctx, time.Now().Add(-olderThan))
		if err != nil {
			return eris.Wrap(err, "runs prune")
		}
		fmt.Fprintf(os.Stderr, "Deleted %d runs.\n", n)
		return nil
	},
}

func init() {
	runsListCmd.Flags().String("status", "", "filter by run status (queued, reading, normalizing, complete, failed)")
	runsListCmd.Flags().String("source", "", "filter by source path or URL")
	runsListCmd.Flags().Int("limit", 50, "max number of runs to display")

	runsStatsCmd.Flags().Duration("since", 24*time.Hour, "time window for stats (e.g. 24h, 72h, 168h)")

	runsPruneCmd.Flags().Duration("older-than", 30*24*time.Hour, "delete runs created before now minus this duration")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsStatsCmd)
	runsCmd.AddCommand(runsPruneCmd)
	rootCmd.AddCommand(runsCmd)
}

// runStats holds aggregate statistics computed from a set of runs.
type runStats struct {
	Total       int
	Complete    int
	Failed      int
	Schema      int
	Parse       int
	TooLarge    int
	Other       int
	RowsKept    int
	RowsDropped int
	AvgDurMs    float64
}

// computeRunStats computes aggregate statistics from a list of runs.
func computeRunStats(runs []model.Run) runStats {
	var s runStats
	s.Total = len(runs)

	var totalDur int64
	var durCount int

	for _, r := range runs {
		switch r.Status {
		case model.RunStatusComplete:
			s.Complete++
			if r.Stats != nil {
				s.RowsKept += r.Stats.RowsKept
				s.RowsDropped += r.Stats.RowsDropped
				totalDur += r.Stats.DurationMs
				durCount++
			}
		case model.RunStatusFailed:
			s.Failed++
			if r.Error == nil {
				continue
			}
			switch r.Error.Kind {
			case model.ErrorKindSchema:
				s.Schema++
			case model.ErrorKindParse:
				s.Parse++
			case model.ErrorKindTooLarge:
				s.TooLarge++
			}
		default:
			s.Other++
		}
	}

	if durCount > 0 {
		s.AvgDurMs = float64(totalDur) / float64(durCount)
	}
	return s
}

// runsSince keeps runs created at or after t.
func runsSince(runs []model.Run, t time.Time) []model.Run {
	out := make([]model.Run, 0, len(runs))
	for _, r := range runs {
		if !r.CreatedAt.Before(t) {
			out = append(out, r)
		}
	}
	return out
}

// formatRunsList writes a tabular list of runs to w.
func formatRunsList(out io.Writer, runs []model.Run) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSOURCE\tSTATUS\tROWS\tDROPPED\tERROR\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t------\t------\t----\t-------\t-----\t-------")

	for _, r := range runs {
		rows, dropped := "", ""
		if r.Stats != nil {
			rows = fmt.Sprintf("%d", r.Stats.RowsKept)
			dropped = fmt.Sprintf("%d", r.Stats.RowsDropped)
		}

		errKind := ""
		if r.Error != nil {
			errKind = string(r.Error.Kind)
		}

		source := r.Source
		if len(source) > 40 {
			source = "..." + source[len(source)-37:]
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			truncateID(r.ID),
			source,
			r.Status,
			rows,
			dropped,
			errKind,
			r.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

// formatRunStats writes aggregate stats to w.
func formatRunStats(out io.Writer, s runStats) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Total runs:\t%d\n", s.Total)
	_, _ = fmt.Fprintf(w, "Complete:\t%d\n", s.Complete)
	_, _ = fmt.Fprintf(w, "  Rows kept:\t%d\n", s.RowsKept)
	_, _ = fmt.Fprintf(w, "  Rows dropped:\t%d\n", s.RowsDropped)
	_, _ = fmt.Fprintf(w, "Failed:\t%d\n", s.Failed)
	_, _ = fmt.Fprintf(w, "  Schema:\t%d\n", s.Schema)
	_, _ = fmt.Fprintf(w, "  Parse:\t%d\n", s.Parse)
	_, _ = fmt.Fprintf(w, "  Too large:\t%d\n", s.TooLarge)
	_, _ = fmt.Fprintf(w, "  Unclassified:\t%d\n", s.Failed-s.Schema-s.Parse-s.TooLarge)
	_, _ = fmt.Fprintf(w, "Other:\t%d\n", s.Other)
	if s.AvgDurMs > 0 {
		_, _ = fmt.Fprintf(w, "Avg duration:\t%.1fms\n", s.AvgDurMs)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
