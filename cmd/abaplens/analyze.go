package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/abaplens/abaplens/internal/analysis"
	"github.com/abaplens/abaplens/internal/client"
	"github.com/abaplens/abaplens/internal/config"
	"github.com/abaplens/abaplens/pkg/formatter"
	"github.com/abaplens/abaplens/pkg/models"
	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newAnalyzeCmd(opts *globalOptions) *cobra.Command {
	var local bool

	cmd := &cobra.Command{
		Use:   "analyze [FILE|-]",
		Short: "Analyze ABAP source for S/4HANA compatibility",
		Long: `Analyze an ABAP program, class or include.

Examples:
  # Analyze a file through the server
  abaplens analyze zreport.abap

  # Read from stdin and print JSON
  cat zreport.abap | abaplens analyze - -o json

  # Call the model directly using AI_PROVIDER and friends from the environment
  abaplens analyze zreport.abap --local`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !formatter.ValidFormat(opts.output) {
				return fmt.Errorf("unsupported output format %q: must be one of human, json, yaml", opts.output)
			}

			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			code, err := readSource(path, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if code == "" {
				return fmt.Errorf("ABAP code is required")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			var analyze func(context.Context, string) (*models.AnalysisResult, error)
			if local {
				analyze, err = localAnalyzer()
				if err != nil {
					return err
				}
			} else {
				analyze = client.New(opts.server, opts.apiKey, opts.timeout).Analyze
			}

			s := newSpinner(opts.output, " Analyzing ABAP code...")
			s.Start()
			result, err := analyze(ctx, code)
			s.Stop()
			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}

			if opts.output == formatter.FormatHuman {
				printSuccess(cmd.ErrOrStderr(), "Analysis complete")
			}
			return formatter.Display(cmd.OutOrStdout(), *result, opts.output)
		},
	}

	cmd.Flags().BoolVar(&local, "local", false, "Call the configured model directly instead of a server")

	return cmd
}

// localAnalyzer builds an in-process service from the server's environment
// configuration. Service logs go to stderr at warn level.
func localAnalyzer() (func(context.Context, string) (*models.AnalysisResult, error), error) {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	svc, err := analysis.NewServiceFromConfig(cfg.AI, analysis.ServiceOptions{})
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, code string) (*models.AnalysisResult, error) {
		out, err := svc.Analyze(ctx, code)
		if err != nil {
			return nil, err
		}
		return &out.Result, nil
	}, nil
}

func readSource(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(b), nil
}

// newSpinner returns a spinner on stderr that stays silent for
// machine-readable output.
func newSpinner(output, suffix string) *spinner.Spinner {
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = suffix
	if output != formatter.FormatHuman {
		s.Disable()
	}
	return s
}

func printSuccess(w io.Writer, msg string) {
	green := color.New(color.FgGreen)
	green.Fprintf(w, "✓ %s\n", msg)
}
