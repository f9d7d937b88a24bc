package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/minirs/format"
	"github.com/dhamidi/minirs/frontend"
)

func newParseCmd(a *app) *cobra.Command {
	var outputFormat string
	var positions bool

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse a source file and print its syntax tree",
		Long: `Parse a source file, or standard input when no file is given, and print
its syntax tree. Diagnostics go to standard error.

Exit status is 0 on success, 1 when the input has lexical errors and 2 when
it has syntax errors.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, src, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			outFormat := pick(outputFormat, a.cfg.Format, format.Tree)
			if outFormat == format.Text {
				outFormat = format.Tree
			}
			if outFormat != format.Tree && outFormat != format.JSON {
				return fmt.Errorf("unsupported format for parse: %s", outFormat)
			}

			res := frontend.Analyze(src, frontend.WithFile(name))

			if diags := res.Diagnostics(); len(diags) > 0 {
				if err := format.NewDiagnosticEncoder(cmd.ErrOrStderr(), format.Text).Encode(diags); err != nil {
					return err
				}
			}

			if res.Program != nil {
				switch outFormat {
				case format.JSON:
					if err := format.NewASTJSONEncoder(cmd.OutOrStdout()).Encode(res.Program); err != nil {
						return fmt.Errorf("encode json: %w", err)
					}
				default:
					if err := format.NewTreeEncoder(cmd.OutOrStdout(), positions).Encode(res.Program); err != nil {
						return fmt.Errorf("encode tree: %w", err)
					}
				}
			}

			return exitCode(res.ExitCode())
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "", "output format: tree or json")
	cmd.Flags().BoolVar(&positions, "positions", false, "annotate tree nodes with line:column")

	return cmd
}
