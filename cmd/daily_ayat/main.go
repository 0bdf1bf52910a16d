// Package main provides the entry point for the daily Ayat and Hadith image generator.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "daily_ayat",
	Short: "Daily Ayat & Hadith image generator",
	Long: `daily_ayat publishes one verse unit and one hadith per day as portrait images.

It walks the Quran and the Mishkaat collection in order, keeping a progress file so
each date is generated exactly once.`,
	SilenceUsage: true,
}

var (
	configPath string
	verbose    bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.json (defaults to ./config.json when present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print detailed debug information")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
