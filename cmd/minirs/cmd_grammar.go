package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/minirs/frontend"
	"github.com/dhamidi/minirs/lang/grammar"
	"github.com/dhamidi/minirs/lang/lexer"
)

func newGrammarCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grammar",
		Short: "Print the EBNF grammar of the language",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := io.WriteString(cmd.OutOrStdout(), grammar.Source())
			return err
		},
	}

	cmd.AddCommand(newGrammarCheckCmd())
	cmd.AddCommand(newGrammarConformCmd())
	cmd.AddCommand(newGrammarAcceptCmd())

	return cmd
}

func newGrammarCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [file]",
		Short: "Parse and verify an EBNF grammar file",
		Long:  "Parse and verify an EBNF grammar file against the start production " + grammar.Start + ". Without a file the built-in grammar is checked.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if len(args) == 0 {
				_, err = grammar.Load()
			} else {
				var data []byte
				if data, err = os.ReadFile(args[0]); err != nil {
					return fmt.Errorf("open file: %w", err)
				}
				_, err = grammar.Parse(args[0], string(data))
			}
			if err != nil {
				printErrors(cmd.ErrOrStderr(), err)
				return exitCode(1)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}

	return cmd
}

func newGrammarConformCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "conform <file>...",
		Short: "Check that the lexemes of source files derive from the grammar",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := grammar.Load()
			if err != nil {
				return err
			}
			sources, err := frontend.ReadSources(args)
			if err != nil {
				return err
			}

			mismatches := 0
			for _, src := range sources {
				tokens := lexer.Tokenize(src.Content, lexer.WithFile(src.Name))
				for _, m := range grammar.Conform(g, tokens) {
					mismatches++
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %q does not derive from %s\n", m.Token.Span.Start, m.Token.Lexeme, m.Production)
				}
			}
			if mismatches > 0 {
				return exitCode(1)
			}
			return nil
		},
	}

	return cmd
}

func newGrammarAcceptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accept <file>...",
		Short: "Check source files against the reference grammar",
		Long:  "Decide with an Earley recognizer whether each source file derives from the reference grammar, independently of the parser.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := grammar.Load()
			if err != nil {
				return err
			}
			r, err := grammar.NewRecognizer(g, grammar.Start)
			if err != nil {
				return err
			}
			sources, err := frontend.ReadSources(args)
			if err != nil {
				return err
			}

			code := frontend.ExitOK
			for _, src := range sources {
				res := frontend.Analyze(src.Content, frontend.WithFile(src.Name))
				if len(res.LexErrors) > 0 {
					for _, d := range res.Diagnostics() {
						fmt.Fprintln(cmd.OutOrStdout(), d)
					}
					code = max(code, frontend.ExitLexical)
					continue
				}
				if err := r.Recognize(res.Tokens); err != nil {
					fmt.Fprintln(cmd.OutOrStdout(), err)
					code = max(code, frontend.ExitSyntax)
					continue
				}
				log.Infof("%s: accepted", src.Name)
			}
			return exitCode(code)
		},
	}

	return cmd
}

// printErrors prints each error of an ebnf error list on its own line.
func printErrors(w io.Writer, err error) {
	for e := err; e != nil; e = errors.Unwrap(e) {
		v := reflect.ValueOf(e)
		if v.Kind() != reflect.Slice {
			continue
		}
		prefix := strings.TrimSuffix(err.Error(), e.Error())
		for i := 0; i < v.Len(); i++ {
			fmt.Fprintf(w, "%s%v\n", prefix, v.Index(i).Interface())
		}
		return
	}
	fmt.Fprintln(w, err)
}
