package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/niels/tinyhttpd/pkg/exchangelog"
	"github.com/niels/tinyhttpd/pkg/logging"
	"github.com/niels/tinyhttpd/pkg/progress"
	"github.com/niels/tinyhttpd/pkg/router"
	"github.com/niels/tinyhttpd/pkg/server"
	"github.com/niels/tinyhttpd/pkg/store"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var addr string

	serveCmd := &cobra.Command{
		Use:         "serve",
		Short:       "Run the server",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationConsoleLog: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				cfg.Server.Address = addr
			}
			return runServe(cmd)
		},
	}

	serveCmd.Flags().StringVar(&addr, "addr", "", "Address to listen on (overrides server.address)")

	return serveCmd
}

func runServe(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exchange, err := exchangelog.NewLogger(cfg.Logging.ExchangeLogPath)
	if err != nil {
		return fmt.Errorf("failed to open exchange log: %w", err)
	}

	files := store.NewPublicDir(cfg.Static.PublicPath)
	orders := store.NewOrderFile(cfg.OrdersPath())
	tracker := progress.NewConsoleTracker().WithWriter(cmd.OutOrStdout())

	srv := server.New(server.OptionsFromConfig(cfg), router.NewDefault(files, orders), exchange).
		WithTracker(tracker)

	logging.InfoWith("Starting server", map[string]interface{}{
		"address":      cfg.Server.Address,
		"public_path":  cfg.Static.PublicPath,
		"orders_path":  cfg.OrdersPath(),
		"exchange_log": exchange.Enabled(),
	})

	serveErr := srv.ListenAndServe(ctx)
	if errors.Is(serveErr, server.ErrServerClosed) {
		serveErr = nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := multierr.Append(serveErr, srv.Shutdown(shutdownCtx)); err != nil {
		logging.ErrorWith("Server stopped with errors", map[string]interface{}{"error": err})
		return err
	}

	logging.Info("Server stopped")
	return nil
}
