package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/vietddude/fintrack/internal/control"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Wait for the data stores, migrate and serve the API",
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) {
	cfg := loadConfig(cmd)
	if !isDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app := control.NewApp(cfg)

	if err := app.Start(ctx); err != nil {
		slog.Error("Failed to start fintrack", "error", err)
		stopApp(app, cfg.Server.ShutdownTimeout)
		os.Exit(1)
	}

	slog.Info("Fintrack started", "config", cfgPath, "port", cfg.Server.Port)

	errCh := make(chan error, 1)
	go func() { errCh <- app.Wait() }()

	select {
	case <-ctx.Done():
		slog.Info("Received signal, shutting down...")
	case err := <-errCh:
		if err != nil {
			slog.Error("Server failed", "error", err)
			stopApp(app, cfg.Server.ShutdownTimeout)
			os.Exit(1)
		}
	}

	if !stopApp(app, cfg.Server.ShutdownTimeout) {
		os.Exit(1)
	}
}

// stopApp shuts app down within timeout and reports success.
func stopApp(app *control.App, timeout time.Duration) bool {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
	defer shutdownCancel()

	if err := app.Stop(shutdownCtx); err != nil {
		slog.Error("Error during shutdown", "error", err)
		return false
	}
	return true
}
