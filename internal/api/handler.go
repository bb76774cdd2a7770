package api

import (
	"context"
	"errors"
	"time"

	"github.com/vietddude/fintrack/internal/core/domain"
	"github.com/vietddude/fintrack/internal/infra/storage"
)

// Handler serves the REST resources from a store.
type Handler struct {
	store *storage.Store
	now   func() time.Time
}

// NewHandler creates a handler over store.
func NewHandler(store *storage.Store) *Handler {
	return &Handler{store: store, now: time.Now}
}

// Inactive reference rows are hidden from every endpoint except through the
// objects that still point at them.

func (h *Handler) activeStatus(ctx context.Context, id int64) (*domain.Status, error) {
	s, err := h.store.Statuses.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.IsActive {
		return nil, storage.ErrNotFound
	}
	return s, nil
}

func (h *Handler) activeType(ctx context.Context, id int64) (*domain.TransactionType, error) {
	t, err := h.store.Types.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.IsActive {
		return nil, storage.ErrNotFound
	}
	return t, nil
}

func (h *Handler) activeCategory(ctx context.Context, id int64) (*domain.Category, error) {
	cat, err := h.store.Categories.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !cat.IsActive {
		return nil, storage.ErrNotFound
	}
	return cat, nil
}

// exists turns a not-found lookup into a field validation error.
func exists(field string, id int64, get func() error) error {
	err := get()
	if errors.Is(err, storage.ErrNotFound) {
		return invalidPK(field, id)
	}
	return err
}
