// finsightctl asks the analytics engine questions from the command line,
// either against a running API server or directly over a local snapshot
// file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "finsightctl",
	Short: "Query spending summaries, comparisons, and trends",
	Long: `finsightctl runs spending analytics from the command line.

Point it at a running server with --api, or at a local CSV snapshot with
--file to compute answers without a server. Every command prints the
narrative text block.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("api", "", "base URL of a running finsight server (e.g. http://localhost:8081)")
	rootCmd.PersistentFlags().String("file", "", "path to a local CSV transaction snapshot")
	rootCmd.PersistentFlags().Int("window", 0, "trend window in months (0 uses the server/default window)")

	viper.SetEnvPrefix("FINSIGHT")
	viper.AutomaticEnv()
	_ = viper.BindPFlag("api", rootCmd.PersistentFlags().Lookup("api"))
	_ = viper.BindPFlag("file", rootCmd.PersistentFlags().Lookup("file"))
	_ = viper.BindPFlag("window", rootCmd.PersistentFlags().Lookup("window"))

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(trendsCmd)
}
