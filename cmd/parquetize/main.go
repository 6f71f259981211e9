package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wdm0006/parquetize/pkg/config"
	"github.com/wdm0006/parquetize/pkg/convert"
	"github.com/wdm0006/parquetize/pkg/report"
	"github.com/wdm0006/parquetize/pkg/runlog"
)

var version = "0.1.0-dev"

var (
	sourceDir string
	targetDir string
	cfgFile   string
	verify    bool
	quiet     bool
)

var rootCmd = &cobra.Command{
	Use:   "parquetize",
	Short: "Bulk CSV to Parquet converter",
	Long: `parquetize converts every CSV file in a source directory into a Parquet
file in a target directory.

Files are converted one at a time; a file that fails to parse or write is
recorded and the batch moves on. Every run appends to a log file in the
target directory and writes a timestamped Bulk_Run_Summary JSON with
per-file results.

Examples:
  parquetize --source ./exports                 # convert in place
  parquetize --source ./exports --target ./out  # convert into ./out
  parquetize --source ./exports --verify        # re-read outputs after writing`,
	RunE: runConvert,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and exit",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("parquetize", version)
	},
}

func init() {
	rootCmd.Flags().StringVarP(&sourceDir, "source", "s", "", "Source directory containing CSV files (required)")
	rootCmd.Flags().StringVarP(&targetDir, "target", "t", "", "Target directory for Parquet files (defaults to the source directory)")
	rootCmd.Flags().StringVar(&cfgFile, "config", "", "Config file (.toml, .yaml or .yml)")
	rootCmd.Flags().BoolVar(&verify, "verify", false, "Re-read each output and check its row count")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress the per-file results table")
	_ = rootCmd.MarkFlagRequired("source")

	rootCmd.AddCommand(versionCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("verify") {
		cfg.Verify = verify
	}

	job, err := convert.ResolvePaths(sourceDir, targetDir)
	if err != nil {
		return err
	}

	// the log file lives in the target directory, which now exists
	log, err := runlog.New(runlog.Options{Dir: job.TargetDir, FileName: cfg.LogFile, Level: cfg.LogLevel})
	if err != nil {
		return err
	}
	defer log.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sum, runErr := convert.NewRunner(job, cfg.ConvertOptions(), log).Run(ctx)
	if sum == nil {
		return runErr
	}

	// an interrupted run still gets its partial summary flushed
	w := report.NewWriter(log)
	if _, err := w.WriteSummary(sum); err != nil {
		return err
	}
	w.LogRecap(sum)
	if !quiet {
		report.RenderTable(os.Stdout, sum)
	}
	return runErr
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
