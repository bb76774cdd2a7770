package postgres

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/vietddude/fintrack/internal/core/domain"
	"github.com/vietddude/fintrack/internal/infra/storage"
)

const categorySelect = `
	SELECT c.id, c.name, c.parent_id, c.status_id, c.is_active,
	       p.name AS parent_name, s.name AS status_name
	FROM categories c
	LEFT JOIN categories p ON p.id = c.parent_id
	JOIN statuses s ON s.id = c.status_id`

// CategoryRepo implements storage.CategoryRepository using PostgreSQL.
type CategoryRepo struct {
	db *DB
}

// NewCategoryRepo creates a new PostgreSQL category repository.
func NewCategoryRepo(db *DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

func (r *CategoryRepo) List(ctx context.Context, activeOnly bool) ([]*domain.Category, error) {
	query := categorySelect
	if activeOnly {
		query += ` WHERE c.is_active`
	}
	query += ` ORDER BY c.id`

	out := []*domain.Category{}
	if err := r.db.SelectContext(ctx, &out, query); err != nil {
		return nil, mapError("list categories", err, false)
	}
	return out, nil
}

func (r *CategoryRepo) Get(ctx context.Context, id int64) (*domain.Category, error) {
	var c domain.Category
	if err := r.db.GetContext(ctx, &c, categorySelect+` WHERE c.id = $1`, id); err != nil {
		return nil, mapError("get category", err, false)
	}
	return &c, nil
}

func (r *CategoryRepo) Create(ctx context.Context, c *domain.Category) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := lockRootParent(ctx, tx, c.ParentID); err != nil {
			return err
		}
		err := tx.QueryRowxContext(ctx,
			`INSERT INTO categories (name, parent_id, status_id, is_active) VALUES ($1, $2, $3, $4) RETURNING id`,
			c.Name, c.ParentID, c.StatusID, c.IsActive,
		).Scan(&c.ID)
		return mapError("create category", err, false)
	})
}

func (r *CategoryRepo) Update(ctx context.Context, c *domain.Category) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if c.ParentID != nil {
			if err := lockChildless(ctx, tx, c.ID); err != nil {
				return err
			}
		}
		if err := lockRootParent(ctx, tx, c.ParentID); err != nil {
			return err
		}
		res, err := tx.NamedExecContext(ctx, `
			UPDATE categories
			SET name = :name, parent_id = :parent_id, status_id = :status_id, is_active = :is_active
			WHERE id = :id`, c)
		if err != nil {
			return mapError("update category", err, false)
		}
		return expectOne(res)
	})
}

// lockRootParent holds a share lock on the parent row so it cannot gain a
// parent of its own before the child is written.
func lockRootParent(ctx context.Context, tx *sqlx.Tx, parentID *int64) error {
	if parentID == nil {
		return nil
	}
	var grandparent *int64
	err := tx.GetContext(ctx, &grandparent, `SELECT parent_id FROM categories WHERE id = $1 FOR SHARE`, *parentID)
	if err != nil {
		err = mapError("lock parent category", err, false)
		if errors.Is(err, storage.ErrNotFound) {
			return storage.ErrInvalidReference
		}
		return err
	}
	if grandparent != nil {
		return storage.ErrInvalidReference
	}
	return nil
}

// lockChildless locks the category being moved under a parent and checks it
// has no subcategories. Concurrent inserts of children share-lock this row in
// lockRootParent, so they either finish first and are seen here, or wait and
// then find it is no longer a root.
func lockChildless(ctx context.Context, tx *sqlx.Tx, id int64) error {
	var locked int64
	err := tx.GetContext(ctx, &locked, `SELECT id FROM categories WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		return mapError("lock category", err, false)
	}
	var nested bool
	err = tx.GetContext(ctx, &nested, `SELECT EXISTS (SELECT 1 FROM categories WHERE parent_id = $1)`, id)
	if err != nil {
		return mapError("check subcategories", err, false)
	}
	if nested {
		return storage.ErrNestedCategory
	}
	return nil
}

// Delete relies on ON DELETE SET NULL to detach subcategories.
func (r *CategoryRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return mapError("delete category", err, true)
	}
	return expectOne(res)
}
