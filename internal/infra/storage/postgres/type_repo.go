package postgres

import (
	"context"

	"github.com/vietddude/fintrack/internal/core/domain"
)

// TypeRepo implements storage.TransactionTypeRepository using PostgreSQL.
type TypeRepo struct {
	db *DB
}

// NewTypeRepo creates a new PostgreSQL transaction type repository.
func NewTypeRepo(db *DB) *TypeRepo {
	return &TypeRepo{db: db}
}

func (r *TypeRepo) List(ctx context.Context, activeOnly bool) ([]*domain.TransactionType, error) {
	query := `SELECT id, name, slug, is_income, is_active FROM transaction_types`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY id`

	out := []*domain.TransactionType{}
	if err := r.db.SelectContext(ctx, &out, query); err != nil {
		return nil, mapError("list transaction types", err, false)
	}
	return out, nil
}

func (r *TypeRepo) Get(ctx context.Context, id int64) (*domain.TransactionType, error) {
	var t domain.TransactionType
	err := r.db.GetContext(ctx, &t,
		`SELECT id, name, slug, is_income, is_active FROM transaction_types WHERE id = $1`, id)
	if err != nil {
		return nil, mapError("get transaction type", err, false)
	}
	return &t, nil
}

func (r *TypeRepo) Create(ctx context.Context, t *domain.TransactionType) error {
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO transaction_types (name, slug, is_income, is_active) VALUES ($1, $2, $3, $4) RETURNING id`,
		t.Name, t.Slug, t.IsIncome, t.IsActive,
	).Scan(&t.ID)
	return mapError("create transaction type", err, false)
}

func (r *TypeRepo) Update(ctx context.Context, t *domain.TransactionType) error {
	res, err := r.db.NamedExecContext(ctx, `
		UPDATE transaction_types
		SET name = :name, slug = :slug, is_income = :is_income, is_active = :is_active
		WHERE id = :id`, t)
	if err != nil {
		return mapError("update transaction type", err, false)
	}
	return expectOne(res)
}

func (r *TypeRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transaction_types WHERE id = $1`, id)
	if err != nil {
		return mapError("delete transaction type", err, true)
	}
	return expectOne(res)
}
