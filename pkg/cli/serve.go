package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/kujo/pkg/cli/config"
	controller "github.com/secmon-lab/kujo/pkg/controller/http"
	"github.com/secmon-lab/kujo/pkg/utils/async"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var (
		serverCfg config.Server
		appCfg    appConfig
	)

	flags := joinFlags(
		serverCfg.Flags(),
		appCfg.flags(),
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Start the dashboard HTTP server",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting kujo server",
				slog.Any("server", serverCfg),
				slog.Any("store", appCfg.store),
				slog.Any("form", appCfg.form),
				slog.Any("llm", appCfg.llm),
				slog.Any("slack", appCfg.slack),
			)

			uc, closeRepo, err := appCfg.buildDashboard(ctx, buildOption{llm: true, slack: true})
			if err != nil {
				return err
			}
			defer closeRepo()

			server, err := controller.NewServer(ctx, serverCfg.Addr, uc)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "HTTP server error", goerr.V("addr", serverCfg.Addr))
				}
				close(errCh)
			}()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigChan)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			case err, ok := <-errCh:
				if ok {
					return err
				}
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}
			if err := async.Wait(shutdownCtx); err != nil {
				logger.Warn("Pending notifications dropped", "error", err)
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
