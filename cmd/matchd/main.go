// Package main provides the entry point for the skill matcher service.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "matchd",
	Short: "Skill matching and ranking service",
	Long:  "matchd scores candidate documents against a job description by detecting catalog skills and computing weighted coverage and lexical similarity, via REST API or one-shot CLI runs.",
}

var configPath string

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: $MATCHER_CONFIG)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
