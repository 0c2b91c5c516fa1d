package main

import (
	"context"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/kaisel-labs/basin-dashboard/internal/logging"
	"github.com/kaisel-labs/basin-dashboard/internal/source"
	"github.com/kaisel-labs/basin-dashboard/internal/waterquality"
)

// Global flag values.
var (
	sourceFlag  string
	sortYears   bool
	noColor     bool
	logLevel    string
	timeoutFlag time.Duration
)

// rootCmd is the base command for the report tool.
var rootCmd = &cobra.Command{
	Use:   "basin-report",
	Short: "Summarise basin water-quality data in the terminal",
	Long: `basin-report loads the water-quality CSV, prints per-measure summary
tables and exports dashboard charts as PNG files.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if noColor {
			color.NoColor = true
		}
		return logging.Init(logLevel, "console")
	},
}

func init() {
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVarP(&sourceFlag, "source", "s", os.Getenv("DATA_SOURCE"), "CSV location: path, file:// or http(s) URL (default $DATA_SOURCE)")
	rootCmd.PersistentFlags().BoolVar(&sortYears, "sort-years", false, "order years numerically instead of by first occurrence")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level")
	rootCmd.PersistentFlags().DurationVar(&timeoutFlag, "timeout", 30*time.Second, "fetch timeout")

	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(chartCmd)
}

func indexOptions() []waterquality.IndexOption {
	if sortYears {
		return []waterquality.IndexOption{waterquality.SortByYear()}
	}
	return nil
}

// loadDataset loads the configured source. A fetch failure is an error here.
func loadDataset(ctx context.Context) (source.Result, error) {
	if sourceFlag == "" {
		return source.Result{}, eris.New("report: --source or DATA_SOURCE is required")
	}
	src, err := source.Open(sourceFlag, source.HTTPOptions{Timeout: timeoutFlag})
	if err != nil {
		return source.Result{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, timeoutFlag)
	defer cancel()

	res := source.NewLoader(src, 0).WithTimeout(timeoutFlag).Load(ctx)
	if res.Status == source.StatusFetchFailed {
		return res, eris.Wrap(res.Err, "report: load dataset")
	}
	return res, nil
}
