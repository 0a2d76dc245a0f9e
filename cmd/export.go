package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/sales-analyzer/internal/export"
)

var (
	exportOut      string
	exportCategory string
	exportTopN     int
	exportRecords  bool
)

var exportCmd = &cobra.Command{
	Use:   "export <file|url>",
	Short: "Write a dashboard as an XLSX workbook or a directory of CSV files",
	Long:  "Analyzes one sales export and writes every summary view as a sheet of an XLSX workbook (--out ends in .xlsx) or as one CSV file per view in a directory.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if exportOut == "" {
			return eris.New("export: --out is required")
		}
		if err := cfg.Validate("export"); err != nil {
			return err
		}

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := env.Pipeline.Run(ctx, args[0], env.Pipeline.DashboardOptions(exportCategory, exportTopN))
		if err != nil {
			return err
		}

		var records = res.Records
		if !exportRecords {
			records = nil
		}
		tables := export.Tables(res.Dashboard, records)

		if isWorkbookPath(exportOut) {
			if err := export.SaveWorkbook(exportOut, tables); err != nil {
				return err
			}
			zap.L().Info("export: wrote workbook", zap.String("path", exportOut), zap.Int("sheets", len(tables)))
			fmt.Fprintln(os.Stderr, exportOut)
			return nil
		}

		paths, err := export.WriteCSVDir(exportOut, tables)
		if err != nil {
			return err
		}
		zap.L().Info("export: wrote csv files", zap.String("dir", exportOut), zap.Int("files", len(paths)))
		for _, p := range paths {
			fmt.Fprintln(os.Stderr, p)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output .xlsx file or directory for CSV files")
	exportCmd.Flags().StringVar(&exportCategory, "category", "", "restrict views to one product category")
	exportCmd.Flags().IntVar(&exportTopN, "top", 0, "ranking length for top products and margins (default from config)")
	exportCmd.Flags().BoolVar(&exportRecords, "records", false, "include the canonical records as an extra table")
	rootCmd.AddCommand(exportCmd)
}

func isWorkbookPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return true
	}
	return false
}
