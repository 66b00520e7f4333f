// Package main provides the entry point for the newsletter portal service.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "newsletter_portal",
	Short: "Customer newsletter drafting service",
	Long:  "Newsletter portal drafts per-customer newsletters by running deep research jobs against an external provider and synthesizing the findings into a structured draft.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
