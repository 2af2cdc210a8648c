// Command abaplens submits ABAP code for S/4HANA migration analysis.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	version = "v0.1.0" // Overwritten at build time
)

// globalOptions are shared by every subcommand that talks to a server.
type globalOptions struct {
	server  string
	apiKey  string
	output  string
	timeout time.Duration
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "abaplens",
		Short: "AI-assisted ABAP to S/4HANA migration review",
		Long: `abaplens sends ABAP source to an ABAPLens server (or directly to the
configured model with --local) and prints the compatibility verdict, issues,
recommendations and a refactored version of the code.`,
		SilenceUsage: true,
	}

	// Disable automatic 'completion' command added by cobra
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&opts.server, "server", envOr("ABAPLENS_SERVER", "http://127.0.0.1:5000"), "ABAPLens server URL")
	rootCmd.PersistentFlags().StringVar(&opts.apiKey, "api-key", os.Getenv("ABAPLENS_API_KEY"), "API key sent as a Bearer token")
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "human", "Output format (human, json, yaml)")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 3*time.Minute, "Request timeout")

	rootCmd.AddCommand(
		newAnalyzeCmd(opts),
		newHistoryCmd(opts),
		newVersionCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "abaplens version %s\n", version)
		},
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
