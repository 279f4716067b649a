package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/cryptoresearch/labsite/internal/site"
	"github.com/spf13/cobra"
)

var jsonReport bool

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Render the site into the output directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, _, _, err := newBuilder()
		if err != nil {
			return err
		}
		report, err := b.Build(cmd.Context())
		if report != nil {
			printReport(cmd.OutOrStdout(), report)
		}
		return err
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate every page without writing output",
	Long:  `Renders the whole site in memory and reports unresolved references and malformed outlines. Exits non-zero on any error.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, _, _, err := newBuilder()
		if err != nil {
			return err
		}
		report, err := b.Check(cmd.Context())
		if report != nil {
			printReport(cmd.OutOrStdout(), report)
		}
		return err
	},
}

func init() {
	for _, c := range []*cobra.Command{buildCmd, checkCmd} {
		c.Flags().BoolVar(&jsonReport, "json", false, "print the report as JSON")
	}
}

func printReport(w io.Writer, report *site.Report) {
	if jsonReport {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.Encode(report)
		return
	}
	for _, d := range report.Diagnostics {
		fmt.Fprintf(w, "%s: %s: %s\n", d.Severity, d.Page, d.Message)
	}
	fmt.Fprintf(w, "%d pages, %d errors, %d diagnostics\n", len(report.Pages), len(report.Errors()), len(report.Diagnostics))
}
