package domain

// TransactionType distinguishes income from expense kinds of transactions.
type TransactionType struct {
	ID       int64  `json:"id"        db:"id"`
	Name     string `json:"name"      db:"name"`
	Slug     string `json:"slug"      db:"slug"`
	IsIncome bool   `json:"is_income" db:"is_income"`
	IsActive bool   `json:"is_active" db:"is_active"`
}

// Validate checks field constraints and fills in a missing slug.
func (t *TransactionType) Validate() error {
	if err := requireName("name", t.Name, MaxTypeNameLen); err != nil {
		return err
	}
	slug, err := normalizeSlug(t.Slug, t.Name, MaxSlugLen)
	if err != nil {
		return err
	}
	t.Slug = slug
	return nil
}

func (t *TransactionType) String() string { return t.Name }
