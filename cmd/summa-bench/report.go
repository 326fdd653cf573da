package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/summa-dev/summa-bench/config"
	"github.com/summa-dev/summa-bench/report"
)

func newReportCmd() *cobra.Command {
	var (
		dir    string
		format string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a comparison table of saved results",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows, err := report.Collect(dir)
			if err != nil {
				return err
			}
			switch format {
			case "markdown", "md":
				return report.Markdown(cmd.OutOrStdout(), rows)
			case "csv":
				return report.CSV(cmd.OutOrStdout(), rows)
			default:
				return fmt.Errorf("invalid --format %q (expected markdown|csv)", format)
			}
		},
	}
	dirDefault := config.Default().OutputDir
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		dirDefault = v
	}
	cmd.Flags().StringVar(&dir, "dir", dirDefault, "Directory holding result files (env OUTPUT_DIR)")
	cmd.Flags().StringVar(&format, "format", "markdown", "Output format: markdown or csv")
	return cmd
}
