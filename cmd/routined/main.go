package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configEnv string
	configDir string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "routined",
	Short: "Routine tracker service",
	Long: `routined keeps a list of daily routines, tracks their completion per weekday
and mirrors every change to the configured datastore.

Available subcommands:
  serve    - Run the HTTP API
  migrate  - Create the datastore schema
  progress - Print this week's completion table`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configEnv, "env", "", "Config environment (default: CONFIG_ENV or local)")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Config directory (default: CONFIG_DIR or config)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(progressCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
