package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/summa-dev/summa-bench/config"
	"github.com/summa-dev/summa-bench/report"
	"github.com/summa-dev/summa-bench/upload"
)

func newUploadCmd(root *rootOptions) *cobra.Command {
	s3 := upload.SettingsFromEnv()
	dir := config.Default().OutputDir
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		dir = v
	}
	var id string

	cmd := &cobra.Command{
		Use:   "upload [files...]",
		Short: "Upload result files to S3",
		Long: `Upload pushes result files to S3 with a public-read ACL. Each key is the file
name with _<benchmark id> inserted before the extension. Without arguments every
result file in --dir is uploaded.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			files := args
			if len(files) == 0 {
				rows, err := report.Collect(dir)
				if err != nil {
					return err
				}
				for _, r := range rows {
					files = append(files, filepath.Join(dir, r.File))
				}
			}
			if len(files) == 0 {
				return fmt.Errorf("no result files found in %s", dir)
			}

			helper, err := upload.NewHelper(s3, root.logger)
			if err != nil {
				return err
			}
			if err := helper.CheckAccess(cmd.Context()); err != nil {
				return err
			}
			if id == "" {
				id = helper.BenchmarkID(cmd.Context())
			}
			keys, err := helper.UploadFiles(cmd.Context(), id, files)
			for _, k := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return err
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&s3.Bucket, "bucket", s3.Bucket, "S3 bucket (env S3_BUCKET)")
	flags.StringVar(&s3.Region, "region", s3.Region, "S3 region (env REGION_NAME)")
	flags.StringVar(&dir, "dir", dir, "Directory holding result files (env OUTPUT_DIR)")
	flags.StringVar(&id, "id", "", "Benchmark id, defaults to the EC2 instance id or a host node id")
	return cmd
}
