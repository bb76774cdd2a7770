package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// MinAmount is the smallest accepted transaction amount.
	MinAmount = decimal.RequireFromString("0.01")

	// MaxAmount fits decimal(12,2).
	MaxAmount = decimal.RequireFromString("9999999999.99")
)

// Transaction is a single income or expense record.
type Transaction struct {
	ID                int64           `json:"id"                  db:"id"`
	CreatedAt         Date            `json:"created_at"          db:"created_at"`
	StatusID          int64           `json:"status_id"           db:"status_id"`
	TransactionTypeID int64           `json:"transaction_type_id" db:"transaction_type_id"`
	CategoryID        int64           `json:"category_id"         db:"category_id"`
	Amount            decimal.Decimal `json:"amount"              db:"amount"`
	Comment           string          `json:"comment"             db:"comment"`

	// Populated on reads.
	StatusName          string  `json:"-" db:"status_name"`
	TransactionTypeName string  `json:"-" db:"transaction_type_name"`
	IsIncome            bool    `json:"-" db:"is_income"`
	CategoryName        string  `json:"-" db:"category_name"`
	CategoryParentName  *string `json:"-" db:"category_parent_name"`
}

// Validate checks field constraints. A zero CreatedAt is replaced by today.
func (t *Transaction) Validate(now time.Time) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = NewDate(now)
	}
	refs := []struct {
		field string
		id    int64
	}{
		{"status_id", t.StatusID},
		{"transaction_type_id", t.TransactionTypeID},
		{"category_id", t.CategoryID},
	}
	for _, ref := range refs {
		if ref.id <= 0 {
			return &ValidationError{Field: ref.field, Message: "this field is required"}
		}
	}
	if err := ValidateAmount(t.Amount); err != nil {
		return err
	}
	return nil
}

// CategoryLabel is the display name of the transaction's category.
func (t *Transaction) CategoryLabel() string {
	return CategoryLabel(t.CategoryParentName, t.CategoryName)
}

// ValidateAmount enforces 0.01 <= amount <= MaxAmount with at most two decimal places.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThan(MinAmount) {
		return &ValidationError{Field: "amount", Message: "ensure this value is greater than or equal to 0.01"}
	}
	if amount.GreaterThan(MaxAmount) {
		return &ValidationError{Field: "amount", Message: "ensure that there are no more than 12 digits in total"}
	}
	if !amount.Equal(amount.Truncate(2)) {
		return &ValidationError{Field: "amount", Message: "ensure that there are no more than 2 decimal places"}
	}
	return nil
}

// TransactionFilter narrows a transaction listing. Nil fields are ignored.
type TransactionFilter struct {
	StatusID          *int64
	TransactionTypeID *int64
	CategoryID        *int64
	CreatedAt         *Date
	CreatedFrom       *Date
	CreatedTo         *Date
	Search            string
}

// Matches reports whether t passes the filter. Used by in-memory stores.
func (f TransactionFilter) Matches(t *Transaction) bool {
	if f.StatusID != nil && t.StatusID != *f.StatusID {
		return false
	}
	if f.TransactionTypeID != nil && t.TransactionTypeID != *f.TransactionTypeID {
		return false
	}
	if f.CategoryID != nil && t.CategoryID != *f.CategoryID {
		return false
	}
	if f.CreatedAt != nil && !t.CreatedAt.Equal(f.CreatedAt.Time) {
		return false
	}
	if f.CreatedFrom != nil && t.CreatedAt.Before(f.CreatedFrom.Time) {
		return false
	}
	if f.CreatedTo != nil && t.CreatedAt.After(f.CreatedTo.Time) {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.CategoryName), q) &&
			!strings.Contains(strings.ToLower(t.Comment), q) {
			return false
		}
	}
	return true
}

// Summary totals a set of transactions by direction.
type Summary struct {
	Count   int             `json:"count"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// Balance is income minus expense.
func (s Summary) Balance() decimal.Decimal {
	return s.Income.Sub(s.Expense)
}

// Add folds t into the summary.
func (s *Summary) Add(t *Transaction) {
	s.Count++
	if t.IsIncome {
		s.Income = s.Income.Add(t.Amount)
	} else {
		s.Expense = s.Expense.Add(t.Amount)
	}
}
