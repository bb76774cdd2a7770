package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vietddude/fintrack/internal/core/domain"
)

const txSelect = `
	SELECT t.id, t.created_at, t.status_id, t.transaction_type_id, t.category_id, t.amount, t.comment,
	       s.name AS status_name, tt.name AS transaction_type_name, tt.is_income,
	       c.name AS category_name, p.name AS category_parent_name
	FROM transactions t
	JOIN statuses s ON s.id = t.status_id
	JOIN transaction_types tt ON tt.id = t.transaction_type_id
	JOIN categories c ON c.id = t.category_id
	LEFT JOIN categories p ON p.id = c.parent_id`

// TxRepo implements storage.TransactionRepository using PostgreSQL.
type TxRepo struct {
	db *DB
}

// NewTxRepo creates a new PostgreSQL transaction repository.
func NewTxRepo(db *DB) *TxRepo {
	return &TxRepo{db: db}
}

func (r *TxRepo) List(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, error) {
	where, args := buildTxWhere(filter)
	query := txSelect + where + ` ORDER BY t.created_at DESC, t.id DESC`

	out := []*domain.Transaction{}
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, mapError("list transactions", err, false)
	}
	return out, nil
}

func (r *TxRepo) Get(ctx context.Context, id int64) (*domain.Transaction, error) {
	var t domain.Transaction
	if err := r.db.GetContext(ctx, &t, txSelect+` WHERE t.id = $1`, id); err != nil {
		return nil, mapError("get transaction", err, false)
	}
	return &t, nil
}

func (r *TxRepo) Create(ctx context.Context, t *domain.Transaction) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO transactions (created_at, status_id, transaction_type_id, category_id, amount, comment)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		t.CreatedAt, t.StatusID, t.TransactionTypeID, t.CategoryID, t.Amount, t.Comment,
	).Scan(&t.ID)
	return mapError("create transaction", err, false)
}

func (r *TxRepo) Update(ctx context.Context, t *domain.Transaction) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET created_at = $2, status_id = $3, transaction_type_id = $4, category_id = $5, amount = $6, comment = $7
		WHERE id = $1`,
		t.ID, t.CreatedAt, t.StatusID, t.TransactionTypeID, t.CategoryID, t.Amount, t.Comment,
	)
	if err != nil {
		return mapError("update transaction", err, false)
	}
	return expectOne(res)
}

func (r *TxRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return mapError("delete transaction", err, true)
	}
	return expectOne(res)
}

func (r *TxRepo) Summarize(ctx context.Context, filter domain.TransactionFilter) (domain.Summary, error) {
	where, args := buildTxWhere(filter)
	query := `
		SELECT COUNT(*) AS count,
		       COALESCE(SUM(t.amount) FILTER (WHERE tt.is_income), 0) AS income,
		       COALESCE(SUM(t.amount) FILTER (WHERE NOT tt.is_income), 0) AS expense
		FROM transactions t
		JOIN transaction_types tt ON tt.id = t.transaction_type_id
		JOIN categories c ON c.id = t.category_id` + where

	var row struct {
		Count   int             `db:"count"`
		Income  decimal.Decimal `db:"income"`
		Expense decimal.Decimal `db:"expense"`
	}
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return domain.Summary{}, mapError("summarize transactions", err, false)
	}
	return domain.Summary{Count: row.Count, Income: row.Income, Expense: row.Expense}, nil
}

// buildTxWhere renders filter as a WHERE clause over aliases t and c.
func buildTxWhere(f domain.TransactionFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.StatusID != nil {
		add("t.status_id = $%d", *f.StatusID)
	}
	if f.TransactionTypeID != nil {
		add("t.transaction_type_id = $%d", *f.TransactionTypeID)
	}
	if f.CategoryID != nil {
		add("t.category_id = $%d", *f.CategoryID)
	}
	if f.CreatedAt != nil {
		add("t.created_at = $%d", *f.CreatedAt)
	}
	if f.CreatedFrom != nil {
		add("t.created_at >= $%d", *f.CreatedFrom)
	}
	if f.CreatedTo != nil {
		add("t.created_at <= $%d", *f.CreatedTo)
	}
	if f.Search != "" {
		args = append(args, "%"+escapeLike(f.Search)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(c.name ILIKE $%d OR t.comment ILIKE $%d)", n, n))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
