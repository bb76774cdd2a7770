package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vietddude/fintrack/internal/core/domain"
	"github.com/vietddude/fintrack/internal/infra/storage"
	"github.com/vietddude/fintrack/internal/infra/storage/postgres"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show row counts and transaction totals",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg := loadConfig(cmd)
	if cfg.Database.URL == "" {
		slog.Error("database.url is not configured")
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := printStatus(ctx, db.Store(), os.Stdout); err != nil {
		slog.Error("Failed to read status", "error", err)
		_ = db.Close()
		os.Exit(1)
	}
}

// printStatus writes per-resource row counts and transaction totals to out.
func printStatus(ctx context.Context, store *storage.Store, out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "RESOURCE\tACTIVE\tTOTAL")

	statuses, err := store.Statuses.List(ctx, false)
	if err != nil {
		return fmt.Errorf("query statuses: %w", err)
	}
	_, _ = fmt.Fprintf(w, "statuses\t%d\t%d\n", countActive(len(statuses), func(i int) bool { return statuses[i].IsActive }), len(statuses))

	types, err := store.Types.List(ctx, false)
	if err != nil {
		return fmt.Errorf("query types: %w", err)
	}
	_, _ = fmt.Fprintf(w, "types\t%d\t%d\n", countActive(len(types), func(i int) bool { return types[i].IsActive }), len(types))

	cats, err := store.Categories.List(ctx, false)
	if err != nil {
		return fmt.Errorf("query categories: %w", err)
	}
	_, _ = fmt.Fprintf(w, "categories\t%d\t%d\n", countActive(len(cats), func(i int) bool { return cats[i].IsActive }), len(cats))

	sum, err := store.Transactions.Summarize(ctx, domain.TransactionFilter{})
	if err != nil {
		return fmt.Errorf("query transactions: %w", err)
	}
	_, _ = fmt.Fprintf(w, "transactions\t-\t%d\n", sum.Count)
	if err := w.Flush(); err != nil {
		return err
	}

	_, err = fmt.Fprintf(out, "\nincome %s  expense %s  balance %s\n",
		sum.Income.StringFixed(2), sum.Expense.StringFixed(2), sum.Balance().StringFixed(2))
	return err
}

func countActive(total int, active func(i int) bool) int {
	n := 0
	for i := 0; i < total; i++ {
		if active(i) {
			n++
		}
	}
	return n
}
