package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/minirs/format"
	"github.com/dhamidi/minirs/frontend"
)

func newCheckCmd(a *app) *cobra.Command {
	var outputFormat string
	var jobs int

	cmd := &cobra.Command{
		Use:   "check <file>...",
		Short: "Analyze source files concurrently and report diagnostics",
		Long: `Analyze every given source file and print all diagnostics.

The exit status is the worst status of any file: 1 for lexical errors, 2
for syntax errors.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat := pick(outputFormat, a.cfg.Format, format.Text)
			if outFormat == format.Tree {
				outFormat = format.Text
			}
			if err := format.Check(outFormat); err != nil {
				return err
			}
			if !cmd.Flags().Changed("jobs") {
				jobs = a.cfg.Jobs
			}

			sources, err := frontend.ReadSources(args)
			if err != nil {
				return err
			}

			opts := []frontend.Option{frontend.WithJobs(jobs)}
			if a.cfg.KeepComments {
				opts = append(opts, frontend.WithComments())
			}
			results, err := frontend.AnalyzeAll(cmd.Context(), sources, opts...)
			if err != nil {
				return fmt.Errorf("check: %w", err)
			}

			var diags []frontend.Diagnostic
			failed := 0
			for _, res := range results {
				if !res.OK() {
					failed++
				}
				diags = append(diags, res.Diagnostics()...)
			}

			if err := format.NewDiagnosticEncoder(cmd.OutOrStdout(), outFormat).Encode(diags); err != nil {
				return err
			}
			log.Infof("checked %d files, %d with errors", len(results), failed)

			return exitCode(frontend.ExitCode(results))
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "", "output format: text or json")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "number of files analysed concurrently (default: one per CPU)")

	return cmd
}
