package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/summa-dev/summa-bench/bench"
	"github.com/summa-dev/summa-bench/config"
	"github.com/summa-dev/summa-bench/consts"
	"github.com/summa-dev/summa-bench/errs"
	"github.com/summa-dev/summa-bench/metrics"
	"github.com/summa-dev/summa-bench/upload"
)

type runFlags struct {
	variants    string
	metricsFile string
	upload      bool
	bucket      string
	region      string
}

func newRunCmd(root *rootOptions) *cobra.Command {
	// Environment values become the flag defaults; flags override them.
	cfg, envErr := config.FromEnv()
	if envErr != nil {
		cfg = config.Default()
	}
	rf := runFlags{variants: joinVariants(cfg.Variants)}
	s3 := upload.SettingsFromEnv()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the benchmark for each selected variant",
		Long: `Run synthesizes N_USERS entries for every selected variant, times the
commitment and inclusion phases, and writes {variant}_k{k}_u{n}_c{c}.json into the
output directory. Variants run one after another; the first failure aborts.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if envErr != nil {
				return envErr
			}
			variants, err := consts.ParseVariants(rf.variants)
			if err != nil {
				return fmt.Errorf("%w: --variants: %w", errs.ErrInvalidConfiguration, err)
			}
			cfg.Variants = variants
			s3.Bucket, s3.Region = rf.bucket, rf.region
			return runBenchmarks(cmd, root, cfg, rf, s3)
		},
	}

	flags := cmd.Flags()
	flags.Uint32Var(&cfg.K, "k", cfg.K, "Circuit size exponent reported for the merkle-sum-tree variant (env K)")
	flags.Uint32Var(&cfg.Levels, "levels", cfg.Levels, "Log2 of the population capacity (env LEVELS or N_LEVELS)")
	flags.IntVar(&cfg.Currencies, "currencies", cfg.Currencies, "Balances per entry (env N_CURRENCIES)")
	flags.IntVar(&cfg.Bytes, "bytes", cfg.Bytes, "Byte width of balances and sums (env N_BYTES)")
	flags.Uint64Var(&cfg.MinBalance, "min-balance", cfg.MinBalance, "Inclusive lower balance bound (env MIN_BALANCE)")
	flags.Uint64Var(&cfg.MaxBalance, "max-balance", cfg.MaxBalance, "Exclusive upper balance bound (env MAX_BALANCE)")
	flags.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed, 0 draws one (env SEED)")
	flags.IntVar(&cfg.Workers, "workers", cfg.Workers, "Synthesis workers, 0 uses GOMAXPROCS (env WORKERS)")
	flags.StringVar(&cfg.OutputDir, "output-dir", cfg.OutputDir, "Directory result files are written to (env OUTPUT_DIR)")
	flags.StringVar(&cfg.CCSCache, "ccs-cache", cfg.CCSCache, "Directory caching compiled Groth16 constraint systems (env CCS_CACHE_DIR)")
	flags.StringVar(&rf.variants, "variants", rf.variants, "Comma-separated variants to run (env VARIANTS)")
	flags.StringVar(&rf.metricsFile, "metrics-file", "", "Write phase timings in Prometheus textfile format to this path")
	flags.BoolVar(&rf.upload, "upload", false, "Upload result files to S3 after all runs succeed")
	flags.StringVar(&rf.bucket, "bucket", s3.Bucket, "S3 bucket for --upload (env S3_BUCKET)")
	flags.StringVar(&rf.region, "region", s3.Region, "S3 region for --upload (env REGION_NAME)")
	return cmd
}

func runBenchmarks(cmd *cobra.Command, root *rootOptions, cfg config.Config, rf runFlags, s3 upload.Settings) error {
	log := root.logger
	if err := cfg.Validate(); err != nil {
		return err
	}
	seed, err := bench.ResolveSeed(cfg.Seed)
	if err != nil {
		return err
	}
	cfg.Seed = seed

	var helper *upload.Helper
	if rf.upload {
		if helper, err = upload.NewHelper(s3, log); err != nil {
			return err
		}
		if err := helper.CheckAccess(cmd.Context()); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("%w: create output dir: %w", errs.ErrIO, err)
	}

	collector := metrics.NewCollector()
	written := make([]string, 0, len(cfg.Variants))
	for _, v := range cfg.Variants {
		run, err := runnerFor(v)
		if err != nil {
			return err
		}
		log.Info().Str("variant", string(v)).Str("description", v.Description()).Msg("running variant")
		res, trace, err := run(cfg, bench.Options{Logger: log})
		if err != nil {
			collector.RecordFailure(v, err)
			writeMetrics(root, rf.metricsFile, collector)
			log.Error().Str("variant", string(v)).Str("kind", bench.ErrorKind(err)).Err(err).Msg("benchmark aborted")
			return fmt.Errorf("variant %s: %w", v, err)
		}
		setup, _ := trace.Window(bench.PhaseSetup)
		collector.RecordRun(v, res, setup.Duration())

		path := cfg.ResultPath(res.FileName(v))
		if err := res.Save(path); err != nil {
			return err
		}
		written = append(written, path)
		log.Info().
			Str("variant", string(v)).
			Str("file", path).
			Int64("commitment_ms", res.CommitmentMillis()).
			Int64("inclusion_ms", res.InclusionMillis()).
			Msg("result saved")
		fmt.Fprintln(cmd.OutOrStdout(), path)
	}
	writeMetrics(root, rf.metricsFile, collector)

	if helper != nil {
		id := helper.BenchmarkID(cmd.Context())
		if _, err := helper.UploadFiles(cmd.Context(), id, written); err != nil {
			return err
		}
	}
	return nil
}

func writeMetrics(root *rootOptions, path string, c *metrics.Collector) {
	if path == "" {
		return
	}
	if err := c.WriteTextfile(path); err != nil {
		root.logger.Warn().Str("path", path).Err(err).Msg("metrics textfile not written")
	}
}

func joinVariants(vs []consts.Variant) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = string(v)
	}
	return strings.Join(parts, ",")
}
