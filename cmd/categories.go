package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/sales-analyzer/internal/model"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories <file|url>",
	Short: "List the filter choices of a sales export",
	Long:  "Prints Overall followed by every distinct product category in first-seen order, one per line.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("categories"); err != nil {
			return err
		}

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := env.Pipeline.Run(ctx, args[0], env.Pipeline.DashboardOptions("", 0))
		if err != nil {
			return err
		}
		writeCategories(os.Stdout, res.Dashboard.Categories)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
}

// writeCategories prints the category filter choices, Overall first.
func writeCategories(w io.Writer, categories []string) {
	_, _ = fmt.Fprintln(w, model.OverallCategory)
	for _, c := range categories {
		_, _ = fmt.Fprintln(w, c)
	}
}
