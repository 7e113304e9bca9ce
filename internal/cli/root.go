package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "trackpipe",
	Short: "Batch pipeline for the music catalog warehouse",
	Long: `trackpipe moves the music catalog snapshot into PostgreSQL in two stages.

  extract  downloads the raw archive, unpacks it and normalizes the
           artist relationship file into one record per line
  load     creates the warehouse tables and bulk-loads the five
           transformed parquet datasets, table by table

A table that fails to load is reported and skipped; the other tables
still load and the command succeeds.

Exit Codes:
  0  - Success (including runs where some or all tables failed to load)
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration
  11 - Database connection failed
  12 - Archive download failed
  13 - Archive extraction or normalization failed
  14 - Input directory not found`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo(rootCmd)
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
	rootCmd.PersistentFlags().String("log-file", "",
		"Stage log file (default: load.log or extract.log in the working directory)\n"+
			"Overrides log_file in trackpipe.yaml")
	rootCmd.PersistentFlags().String("config", "",
		"Path to the project file (default: ./trackpipe.yaml if present)")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
