// Package main implements the summarizer command-line client. It runs the
// same pipeline as the server in-process and prints one summary.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "summarizer",
	Short: "Summarize text and web pages with an LLM",
	Long: `summarizer runs the summarization pipeline locally: extraction, content
gating, caching, chunking and generation. Configuration is read from
config.yaml and SUMMARIZER_* environment variables, as for the server.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(newSummarizeCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
