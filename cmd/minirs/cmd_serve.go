package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/dhamidi/minirs/ui"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	var devDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the browser playground and JSON API",
		Long: `Serve a browser playground for minirs source together with a JSON API:

  POST /api/tokens   token stream of the request body
  POST /api/parse    diagnostics and syntax tree of the request body

The body is either plain source text or {"source": "...", "comments": bool}.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = a.cfg.Serve.Addr
			}
			handler, err := ui.NewServer(ui.Options{DevDir: devDir})
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           handler,
				ReadHeaderTimeout: 5 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Infof("listening on http://%s", addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				return fmt.Errorf("serve: %w", err)
			case <-cmd.Context().Done():
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from configuration, localhost:8080)")
	cmd.Flags().StringVar(&devDir, "dev", "", "directory with templates/ and static/ overriding the built-in ones")

	return cmd
}
