package storage

import (
	"context"
	"errors"

	"github.com/vietddude/fintrack/internal/core/domain"
)

var (
	// ErrNotFound is returned when a row doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned on unique violations and on deletes blocked by references
	ErrConflict = errors.New("conflict")

	// ErrInvalidReference is returned when a foreign key points nowhere
	ErrInvalidReference = errors.New("invalid reference")

	// ErrNestedCategory is returned when a category with subcategories is given a parent
	ErrNestedCategory = errors.New("a category with subcategories cannot have a parent")
)

// StatusRepository handles status storage operations
type StatusRepository interface {
	// List returns statuses ordered by id
	List(ctx context.Context, activeOnly bool) ([]*domain.Status, error)

	// Get retrieves a status by id
	Get(ctx context.Context, id int64) (*domain.Status, error)

	// Create inserts a status and sets its id
	Create(ctx context.Context, s *domain.Status) error

	// Update overwrites all fields of an existing status
	Update(ctx context.Context, s *domain.Status) error

	// Delete removes a status; fails with ErrConflict while referenced
	Delete(ctx context.Context, id int64) error
}

// TransactionTypeRepository handles transaction type storage operations
type TransactionTypeRepository interface {
	List(ctx context.Context, activeOnly bool) ([]*domain.TransactionType, error)
	Get(ctx context.Context, id int64) (*domain.TransactionType, error)
	Create(ctx context.Context, t *domain.TransactionType) error
	Update(ctx context.Context, t *domain.TransactionType) error
	Delete(ctx context.Context, id int64) error
}

// CategoryRepository handles category storage operations
type CategoryRepository interface {
	// List returns categories with parent and status names populated
	List(ctx context.Context, activeOnly bool) ([]*domain.Category, error)

	Get(ctx context.Context, id int64) (*domain.Category, error)

	// Create fails with ErrConflict on a duplicate (name, parent)
	Create(ctx context.Context, c *domain.Category) error

	// Update fails with ErrNestedCategory when c has subcategories and a parent
	Update(ctx context.Context, c *domain.Category) error

	// Delete detaches subcategories and fails with ErrConflict while transactions reference it
	Delete(ctx context.Context, id int64) error
}

// TransactionRepository handles transaction storage operations
type TransactionRepository interface {
	// List returns matching transactions, newest first
	List(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, error)

	Get(ctx context.Context, id int64) (*domain.Transaction, error)
	Create(ctx context.Context, t *domain.Transaction) error
	Update(ctx context.Context, t *domain.Transaction) error
	Delete(ctx context.Context, id int64) error

	// Summarize totals the matching transactions by income/expense
	Summarize(ctx context.Context, filter domain.TransactionFilter) (domain.Summary, error)
}

// Store bundles the repositories the API needs.
type Store struct {
	Statuses     StatusRepository
	Types        TransactionTypeRepository
	Categories   CategoryRepository
	Transactions TransactionRepository
}
