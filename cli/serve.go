package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"dashboard-service/api"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		Long: `Run the JSON API for dashboards, widgets and preferences.

Examples:
  # Serve with dashboard.yaml in the working directory
  dashboardctl serve

  # Keep everything in memory on another port
  DASHBOARD_STORAGE=memory dashboardctl serve --port 9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cmd, opts, port)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Listen port (overrides config and PORT)")

	return cmd
}

func serve(ctx context.Context, cmd *cobra.Command, opts *rootOptions, port int) error {
	e, err := openEnv(ctx, cmd, opts)
	if err != nil {
		return err
	}
	defer e.close()

	if port != 0 {
		e.cfg.Server.Port = port
	}

	h := api.NewHandler(e.slots, e.logger)
	if err := h.Load(ctx); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", e.cfg.Server.Port),
		Handler:           h.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		e.logger.Info("starting server", "addr", srv.Addr, "backend", e.cfg.Storage.Backend)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("could not start server: %w", err)
	case <-ctx.Done():
	}

	e.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
