package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/minirs/format"
	"github.com/dhamidi/minirs/frontend"
	"github.com/dhamidi/minirs/lang/lexer"
	"github.com/dhamidi/minirs/lang/token"
)

func newTokensCmd(a *app) *cobra.Command {
	var outputFormat string
	var comments bool

	cmd := &cobra.Command{
		Use:   "tokens [file]",
		Short: "Print the token stream of a source file",
		Long:  "Print the token stream of a source file, or of standard input when no file is given. Exits with status 1 if the input contains lexical errors.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, src, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			var opts []lexer.Option
			if name != "" {
				opts = append(opts, lexer.WithFile(name))
			}
			if comments || a.cfg.KeepComments {
				opts = append(opts, lexer.WithComments())
			}
			tokens := lexer.Tokenize(src, opts...)

			outFormat := pick(outputFormat, a.cfg.Format, format.Text)
			switch outFormat {
			case format.JSON:
				if err := format.NewJSONEncoder(cmd.OutOrStdout()).Encode(tokens); err != nil {
					return fmt.Errorf("encode json: %w", err)
				}
			case format.Text, format.Tree:
				if err := format.NewLineEncoder(cmd.OutOrStdout()).Encode(tokens); err != nil {
					return fmt.Errorf("encode tokens: %w", err)
				}
			default:
				return fmt.Errorf("unsupported format for tokens: %s", outFormat)
			}

			for _, tok := range tokens {
				if tok.Kind == token.Error {
					return exitCode(frontend.ExitLexical)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "", "output format: text or json")
	cmd.Flags().BoolVar(&comments, "comments", false, "include comment tokens")

	return cmd
}

// pick returns the first non-empty value. An explicit flag beats the
// configured format, which beats the command's default.
func pick(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
