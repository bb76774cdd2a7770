package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vietddude/fintrack/internal/control"
	"github.com/vietddude/fintrack/internal/core/gate"
	"github.com/vietddude/fintrack/internal/infra/probe"
)

var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Block until the configured data stores accept connections",
	Long: `Wait probes every configured data store with the startup gate and exits 0 once
all are ready. It exits 1 when the retry budget runs out or the configuration is
unusable, which makes it suitable as a container entrypoint step.`,
	Run: runWait,
}

func init() {
	addWaitFlags(waitCmd)
	rootCmd.AddCommand(waitCmd)
}

func addWaitFlags(cmd *cobra.Command) {
	cmd.Flags().Int("max-attempts", gate.DefaultMaxAttempts, "override gate.max_attempts")
	cmd.Flags().Duration("retry-delay", gate.DefaultRetryDelay, "override gate.retry_delay")
	cmd.Flags().StringSlice("tcp", nil, "additional host:port to wait for (repeatable)")
}

// applyWaitOverrides copies flags the user actually set onto cfg, so an
// explicit zero still overrides the config file.
func applyWaitOverrides(cmd *cobra.Command, cfg *gate.Config) error {
	flags := cmd.Flags()
	if flags.Changed("max-attempts") {
		n, err := flags.GetInt("max-attempts")
		if err != nil {
			return err
		}
		cfg.MaxAttempts = n
	}
	if flags.Changed("retry-delay") {
		d, err := flags.GetDuration("retry-delay")
		if err != nil {
			return err
		}
		cfg.RetryDelay = d
	}
	return nil
}

func runWait(cmd *cobra.Command, args []string) {
	cfg := loadConfig(cmd)
	if err := applyWaitOverrides(cmd, &cfg.Gate.Config); err != nil {
		slog.Error("Invalid flags", "error", err)
		os.Exit(1)
	}
	waitTCP, err := cmd.Flags().GetStringSlice("tcp")
	if err != nil {
		slog.Error("Invalid flags", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	targets := control.Targets(cfg)
	for _, addr := range waitTCP {
		targets = append(targets, gate.Target{Name: addr, Prober: probe.NewTCPProber(addr, 5*time.Second)})
	}
	if len(targets) == 0 {
		slog.Warn("Nothing to wait for: no database, redis or --tcp target configured")
		return
	}

	if err := gate.WaitAll(ctx, cfg.Gate.Config, targets); err != nil {
		switch {
		case errors.Is(err, gate.ErrMisconfigured):
			slog.Error("Data store configuration is invalid", "error", err)
		case errors.Is(err, gate.ErrBudgetExhausted):
			slog.Error("Data store unreachable after exhausting retry budget", "error", err)
		default:
			slog.Error("Wait aborted", "error", err)
		}
		os.Exit(1)
	}
}
