package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/tagrel/tagrel/internal/api"
	"github.com/tagrel/tagrel/pkg/tags"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		ephemeral bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the graph over an HTTP API",
		Long: `Serve the graph over an HTTP API.

The server loads the stored snapshot at startup and writes it back on
shutdown, so changes made through the API persist. With --ephemeral the
server starts empty and nothing is written back.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, ephemeral)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8420", "listen address")
	cmd.Flags().BoolVar(&ephemeral, "ephemeral", false, "serve an empty in-memory graph without persistence")
	return cmd
}

// runServe runs the HTTP server until the context is cancelled.
func (c *CLI) runServe(ctx context.Context, addr string, ephemeral bool) error {
	var g *tags.Graph
	persist := func(*tags.Graph) error { return nil }

	if ephemeral {
		g = c.newGraph()
	} else {
		s, err := c.openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		g, err = c.openGraph(ctx, s)
		if err != nil {
			return err
		}
		persist = func(g *tags.Graph) error {
			// Shutdown persistence gets its own context; the serve context
			// is already cancelled at that point.
			saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return c.saveGraph(saveCtx, s, g)
		}
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           api.NewServer(g, c.Logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("serving graph API", "addr", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := persist(g); err != nil {
		return err
	}
	return nil
}
