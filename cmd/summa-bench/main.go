// Command summa-bench benchmarks proof-of-solvency backends: it synthesizes an
// account population, times commitment and inclusion proving for each selected
// variant and writes one result file per run.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	gnarklogger "github.com/consensys/gnark/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/summa-dev/summa-bench/cmd/summa-bench/version"
	"github.com/summa-dev/summa-bench/consts"
)

type rootOptions struct {
	logLevel  string
	gnarkLogs bool
	logger    zerolog.Logger
}

func init() {
	cobra.EnablePrefixMatching = true
}

func main() {
	if err := newRootCmd(os.Stderr).Execute(); err != nil {
		fatalf("%s failed: %v", consts.Name, err)
	}
}

func newRootCmd(logOut io.Writer) *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   consts.Name,
		Short: "Proof-of-solvency backend benchmarks",
		Long: `summa-bench generates a synthetic account population, drives each selected
proof-of-solvency backend through setup, commitment and inclusion proving, and
records the commitment and inclusion timings as JSON.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			level, err := zerolog.ParseLevel(opts.logLevel)
			if err != nil {
				return fmt.Errorf("invalid --log-level %q: %w", opts.logLevel, err)
			}
			opts.logger = zerolog.New(zerolog.ConsoleWriter{Out: logOut, TimeFormat: time.RFC3339}).
				Level(level).
				With().Timestamp().Logger()
			if opts.gnarkLogs {
				gnarklogger.Set(opts.logger.With().Str("component", "gnark").Logger())
			} else {
				gnarklogger.Disable()
			}
			return nil
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&opts.logLevel, "log-level", "info", "Log level (trace|debug|info|warn|error)")
	flags.BoolVar(&opts.gnarkLogs, "gnark-logs", false, "Forward gnark's internal compile/prove logs")

	root.AddCommand(
		newRunCmd(opts),
		newReportCmd(),
		newUploadCmd(opts),
		version.NewCommand(),
	)
	return root
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
