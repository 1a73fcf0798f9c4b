package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fulmenhq/gofulmen/signals"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goinupdeals/snackdeals/internal/observability"
	"github.com/goinupdeals/snackdeals/internal/server"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the status HTTP server",
	Long: `Start the status HTTP server with graceful shutdown support.

The server exposes health, version, and read-only deal endpoints over
the deals database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		observability.InitServerLogger("snackdeals", cfg.Logging.Level)
		logger := observability.ServerLogger

		serverCfg := cfg.Server
		if cmd.Flags().Changed("host") {
			serverCfg.Host = serveHost
		}
		if cmd.Flags().Changed("port") {
			serverCfg.Port = servePort
		}

		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close() // nolint:errcheck // best-effort cleanup

		server.SetVersionInfo(versionInfo.Version, versionInfo.Commit, versionInfo.BuildDate)
		srv := server.New(serverCfg, st, logger)

		shutdownTimeout := serverCfg.ShutdownTimeout
		if shutdownTimeout <= 0 {
			shutdownTimeout = 10 * time.Second
		}

		// Shutdown handlers run LIFO: stop the server, then flush logs.
		signals.OnShutdown(func(ctx context.Context) error {
			logger.Info("Flushing logger")
			_ = logger.Sync()
			return nil
		})
		signals.OnShutdown(func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		errChan := make(chan error, 1)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()
		go func() {
			if err := signals.Listen(cmd.Context()); err != nil {
				logger.Error("Signal handler error", zap.Error(err))
				errChan <- err
			}
			errChan <- nil
		}()

		return <-errChan
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "server host")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "server port")
}
