// Package main provides the issue-scout CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "issue_scout",
	Short: "Personalized open-source issue recommender",
	Long:  "issue-scout aggregates beginner-friendly issues from GitHub, classifies them, and ranks them against a consumer's extracted skill profile.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
