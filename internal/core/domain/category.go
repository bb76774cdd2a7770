package domain

// Category groups transactions. Categories form a two-level tree: a category
// either is a root or has a root category as parent.
type Category struct {
	ID       int64  `json:"id"        db:"id"`
	Name     string `json:"name"      db:"name"`
	ParentID *int64 `json:"parent_id" db:"parent_id"`
	StatusID int64  `json:"status_id" db:"status_id"`
	IsActive bool   `json:"is_active" db:"is_active"`

	// Populated on reads.
	ParentName *string `json:"-" db:"parent_name"`
	StatusName string  `json:"-" db:"status_name"`
}

// Validate checks the fields that do not need other rows to verify.
func (c *Category) Validate() error {
	if err := requireName("name", c.Name, MaxCategoryNameLen); err != nil {
		return err
	}
	if c.StatusID <= 0 {
		return &ValidationError{Field: "status_id", Message: "this field is required"}
	}
	if c.ParentID != nil && c.ID != 0 && *c.ParentID == c.ID {
		return &ValidationError{Field: "parent_id", Message: "a category cannot be its own parent"}
	}
	return nil
}

// IsRoot reports whether the category has no parent.
func (c *Category) IsRoot() bool { return c.ParentID == nil }

// String renders "parent → name" for subcategories and the bare name for roots.
func (c *Category) String() string {
	return CategoryLabel(c.ParentName, c.Name)
}

// CategoryLabel renders a category display name from its parts.
func CategoryLabel(parent *string, name string) string {
	if parent != nil && *parent != "" {
		return *parent + " → " + name
	}
	return name
}
