package main

import (
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/sales-analyzer/internal/export"
	"github.com/sells-group/sales-analyzer/internal/model"
	"github.com/sells-group/sales-analyzer/internal/pipeline"
)

var (
	analyzeCategory    string
	analyzeTopN        int
	analyzeFormat      string
	analyzeOutput      string
	analyzeConcurrency int
	analyzeRecords     bool
)

// analysisReport is the document written for one analyzed source.
type analysisReport struct {
	Source    string                  `json:"source" yaml:"source"`
	RunID     string                  `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Stats     *model.RunStats         `json:"stats,omitempty" yaml:"stats,omitempty"`
	Dashboard *model.Dashboard        `json:"dashboard,omitempty" yaml:"dashboard,omitempty"`
	Records   []model.CanonicalRecord `json:"records,omitempty" yaml:"records,omitempty"`
	Error     string                  `json:"error,omitempty" yaml:"error,omitempty"`
	ErrorKind model.ErrorKind         `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file|url>...",
	Short: "Normalize sales exports and print their dashboards",
	Long:  "Reads one or more CSV/XLSX sales exports (local paths or http, https and ftp URLs), normalizes each independently and prints its dashboard as JSON or YAML.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if cmd.Flags().Changed("concurrency") {
			cfg.Analysis.Concurrency = analyzeConcurrency
		}
		if err := cfg.Validate("analyze"); err != nil {
			return err
		}
		format, err := export.ParseFormat(analyzeFormat)
		if err != nil {
			return err
		}

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		opts := env.Pipeline.DashboardOptions(analyzeCategory, analyzeTopN)
		outcomes := env.Pipeline.RunAll(ctx, args, opts, cfg.Analysis.Concurrency)
		reports := buildReports(outcomes, analyzeRecords)

		out, closeOut, err := openOutput(analyzeOutput)
		if err != nil {
			return err
		}
		defer closeOut()

		var doc any = reports
		if len(reports) == 1 {
			doc = reports[0]
		}
		if err := export.Encode(out, format, doc); err != nil {
			return err
		}

		if failed := countFailed(outcomes); failed > 0 {
			return eris.Errorf("analyze: %d of %d sources failed", failed, len(outcomes))
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeCategory, "category", "", "restrict views to one product category (default Overall)")
	analyzeCmd.Flags().IntVar(&analyzeTopN, "top", 0, "ranking length for top products and margins (default from config)")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "json", "output format: json or yaml")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "write output to file instead of stdout")
	analyzeCmd.Flags().IntVar(&analyzeConcurrency, "concurrency", 4, "max sources analyzed at once")
	analyzeCmd.Flags().BoolVar(&analyzeRecords, "records", false, "include the canonical records in the output")
	rootCmd.AddCommand(analyzeCmd)
}

// buildReports converts pipeline outcomes to output documents in source order.
func buildReports(outcomes []pipeline.Outcome, withRecords bool) []analysisReport {
	reports := make([]analysisReport, len(outcomes))
	for i, o := range outcomes {
		r := analysisReport{Source: o.Source}
		if o.Err != nil {
			r.Error = o.Err.Error()
			r.ErrorKind = pipeline.Classify(o.Err)
			zap.L().Error("analyze: source failed", zap.String("source", o.Source), zap.Error(o.Err))
		} else {
			r.RunID = o.Result.RunID
			r.Stats = &o.Result.Stats
			r.Dashboard = &o.Result.Dashboard
			if withRecords {
				r.Records = o.Result.Records
			}
		}
		reports[i] = r
	}
	return reports
}

func countFailed(outcomes []pipeline.Outcome) int {
	var n int
	for _, o := range outcomes {
		if o.Err != nil {
			n++
		}
	}
	return n
}

// openOutput returns stdout when path is empty, otherwise a created file.
func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "create output %s", path)
	}
	return f, func() { _ = f.Close() }, nil
}
