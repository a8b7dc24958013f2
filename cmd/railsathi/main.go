// Railsathi is a Roman-Urdu train search assistant for Pakistan Railways
// routes. It collects a journey one question at a time, confirms, and
// returns matching trains as a list, table, or JSON.
//
// Usage:
//
//	# Start the HTTP API
//	railsathi serve
//
//	# Talk to the assistant on the terminal
//	railsathi chat
//
// Configuration comes from RAILSATHI_* environment variables, an
// optional .env file, and an optional YAML file passed with --config.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "railsathi",
	Short: "Roman-Urdu train search assistant",
	Long: `railsathi answers train search questions in Roman Urdu. It fills the
journey slots (route, date, budget, time) across turns, confirms, and
searches available trains.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		// Optional; absence of a .env file is the normal case.
		_ = godotenv.Load()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(*cobra.Command, []string) {
		fmt.Printf("railsathi\n")
		fmt.Printf("Version:    %s\n", version)
		fmt.Printf("Commit:     %s\n", gitCommit)
		fmt.Printf("Build Date: %s\n", buildDate)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
