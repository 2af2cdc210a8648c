package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/abaplens/abaplens/internal/client"
	"github.com/abaplens/abaplens/pkg/formatter"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newHistoryCmd(opts *globalOptions) *cobra.Command {
	var page, limit int

	cmd := &cobra.Command{
		Use:   "history [ID]",
		Short: "List recorded analyses, or show one by ID",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !formatter.ValidFormat(opts.output) {
				return fmt.Errorf("unsupported output format %q: must be one of human, json, yaml", opts.output)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()
			c := client.New(opts.server, opts.apiKey, opts.timeout)
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				id, err := uuid.Parse(args[0])
				if err != nil {
					return fmt.Errorf("invalid analysis id %q", args[0])
				}
				rec, err := c.GetHistory(ctx, id)
				if err != nil {
					return err
				}
				return formatter.DisplayValue(out, rec, opts.output, func(w io.Writer) {
					printRecordHeader(w, rec.ID.String(), rec.Outcome, rec.CreatedAt.Format("2006-01-02 15:04:05"))
					if rec.ErrorMessage != nil {
						fmt.Fprintf(w, "   error: %s\n", *rec.ErrorMessage)
						return
					}
					fmt.Fprintf(w, "   compatibility: %s\n", formatter.NormalizeCompatibility(rec.Compatibility))
					for _, issue := range rec.Issues {
						fmt.Fprintf(w, "   - %s\n", issue)
					}
				})
			}

			p, err := c.ListHistory(ctx, page, limit)
			if err != nil {
				return err
			}
			return formatter.DisplayValue(out, p, opts.output, func(w io.Writer) {
				if len(p.Data) == 0 {
					fmt.Fprintln(w, "No analyses recorded.")
					return
				}
				for _, rec := range p.Data {
					verdict := formatter.NormalizeCompatibility(rec.Compatibility)
					if verdict == "" {
						verdict = "-"
					}
					fmt.Fprintf(w, "%s  %s  %-9s %-22s %s/%s\n",
						rec.ID, rec.CreatedAt.Format("2006-01-02 15:04"), rec.Outcome, verdict, rec.Provider, rec.Model)
				}
				fmt.Fprintln(w, strings.Repeat("─", 80))
				fmt.Fprintf(w, "page %d · %d of %d", p.Meta.Page, len(p.Data), p.Meta.Total)
				if p.Meta.HasNext {
					fmt.Fprintf(w, " · next: --page %d", p.Meta.Page+1)
				}
				fmt.Fprintln(w)
			})
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&limit, "limit", 20, "Page size (max 100)")

	return cmd
}

func printRecordHeader(w io.Writer, id, outcome, at string) {
	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Fprintf(w, "Analysis %s\n", id)
	fmt.Fprintf(w, "   outcome: %s at %s\n", outcome, at)
}
