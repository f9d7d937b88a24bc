package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/minirs/lsp"
)

func newLSPCmd(a *app) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the language server on stdio",
		Long:  "Start a Language Server Protocol server that publishes lexical and syntax diagnostics for .mrs files.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("watch") {
				watch = a.cfg.LSP.Watch
			}
			ls := lsp.NewServer(lsp.Options{
				Name:    a.cfg.LSP.Name,
				Version: version,
				Jobs:    a.cfg.Jobs,
				Watch:   watch,
			})
			return ls.RunStdio()
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "poll the workspace for changes to files not open in the editor")

	return cmd
}
