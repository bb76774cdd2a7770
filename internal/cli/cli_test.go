package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/vietddude/fintrack/internal/core/domain"
	"github.com/vietddude/fintrack/internal/core/gate"
	"github.com/vietddude/fintrack/internal/infra/storage"
	"github.com/vietddude/fintrack/internal/infra/storage/memory"
)

// =============================================================================
// wait flags
// =============================================================================

func newWaitTestCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "wait"}
	addWaitFlags(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return cmd
}

func TestApplyWaitOverrides(t *testing.T) {
	configured := gate.Config{MaxAttempts: 10, RetryDelay: 5 * time.Second}

	tests := []struct {
		name string
		args []string
		want gate.Config
	}{
		{"no flags keeps config", nil, configured},
		{"explicit zero delay", []string{"--retry-delay=0"}, gate.Config{MaxAttempts: 10, RetryDelay: 0}},
		{"explicit zero attempts", []string{"--max-attempts=0"}, gate.Config{MaxAttempts: 0, RetryDelay: 5 * time.Second}},
		{"both", []string{"--max-attempts=3", "--retry-delay=250ms"}, gate.Config{MaxAttempts: 3, RetryDelay: 250 * time.Millisecond}},
	}
	for _, tt := range tests {
		cfg := configured
		if err := applyWaitOverrides(newWaitTestCmd(t, tt.args...), &cfg); err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.name, err)
		}
		if cfg != tt.want {
			t.Errorf("%s: got %+v, want %+v", tt.name, cfg, tt.want)
		}
	}
}

// =============================================================================
// status report
// =============================================================================

type failingTypes struct {
	storage.TransactionTypeRepository
}

func (failingTypes) List(ctx context.Context, activeOnly bool) ([]*domain.TransactionType, error) {
	return nil, errors.New("connection lost")
}

func TestPrintStatus(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMemoryStorage().Store()

	status := &domain.Status{Name: "Done", Slug: "done", IsActive: true}
	archived := &domain.Status{Name: "Archived", Slug: "archived"}
	income := &domain.TransactionType{Name: "Salary", Slug: "salary", IsIncome: true, IsActive: true}
	for _, err := range []error{
		store.Statuses.Create(ctx, status),
		store.Statuses.Create(ctx, archived),
		store.Types.Create(ctx, income),
	} {
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	food := &domain.Category{Name: "Food", StatusID: status.ID, IsActive: true}
	if err := store.Categories.Create(ctx, food); err != nil {
		t.Fatalf("seed category: %v", err)
	}
	tx := &domain.Transaction{
		CreatedAt:         domain.NewDate(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)),
		StatusID:          status.ID,
		TransactionTypeID: income.ID,
		CategoryID:        food.ID,
		Amount:            decimal.RequireFromString("120.50"),
	}
	if err := store.Transactions.Create(ctx, tx); err != nil {
		t.Fatalf("seed transaction: %v", err)
	}

	var out bytes.Buffer
	if err := printStatus(ctx, store, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	report := out.String()
	for _, want := range []string{"statuses", "income 120.50", "expense 0.00", "balance 120.50"} {
		if !strings.Contains(report, want) {
			t.Errorf("expected report to contain %q, got:\n%s", want, report)
		}
	}
}

func TestPrintStatus_ReturnsQueryErrors(t *testing.T) {
	store := memory.NewMemoryStorage().Store()
	store.Types = failingTypes{store.Types}

	var out bytes.Buffer
	err := printStatus(context.Background(), store, &out)
	if err == nil || !strings.Contains(err.Error(), "query types") {
		t.Fatalf("expected types query error, got %v", err)
	}
}
