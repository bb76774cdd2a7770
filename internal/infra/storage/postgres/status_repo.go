package postgres

import (
	"context"

	"github.com/vietddude/fintrack/internal/core/domain"
)

// StatusRepo implements storage.StatusRepository using PostgreSQL.
type StatusRepo struct {
	db *DB
}

// NewStatusRepo creates a new PostgreSQL status repository.
func NewStatusRepo(db *DB) *StatusRepo {
	return &StatusRepo{db: db}
}

func (r *StatusRepo) List(ctx context.Context, activeOnly bool) ([]*domain.Status, error) {
	query := `SELECT id, name, slug, is_active FROM statuses`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY id`

	out := []*domain.Status{}
	if err := r.db.SelectContext(ctx, &out, query); err != nil {
		return nil, mapError("list statuses", err, false)
	}
	return out, nil
}

func (r *StatusRepo) Get(ctx context.Context, id int64) (*domain.Status, error) {
	var s domain.Status
	err := r.db.GetContext(ctx, &s, `SELECT id, name, slug, is_active FROM statuses WHERE id = $1`, id)
	if err != nil {
		return nil, mapError("get status", err, false)
	}
	return &s, nil
}

func (r *StatusRepo) Create(ctx context.Context, s *domain.Status) error {
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO statuses (name, slug, is_active) VALUES ($1, $2, $3) RETURNING id`,
		s.Name, s.Slug, s.IsActive,
	).Scan(&s.ID)
	return mapError("create status", err, false)
}

func (r *StatusRepo) Update(ctx context.Context, s *domain.Status) error {
	res, err := r.db.NamedExecContext(ctx,
		`UPDATE statuses SET name = :name, slug = :slug, is_active = :is_active WHERE id = :id`, s)
	if err != nil {
		return mapError("update status", err, false)
	}
	return expectOne(res)
}

func (r *StatusRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM statuses WHERE id = $1`, id)
	if err != nil {
		return mapError("delete status", err, true)
	}
	return expectOne(res)
}
