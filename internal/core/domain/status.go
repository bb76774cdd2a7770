package domain

// Status is a workflow state a category or transaction can be in
// (e.g. "planned", "done").
type Status struct {
	ID       int64  `json:"id"        db:"id"`
	Name     string `json:"name"      db:"name"`
	Slug     string `json:"slug"      db:"slug"`
	IsActive bool   `json:"is_active" db:"is_active"`
}

// Validate checks field constraints and fills in a missing slug.
func (s *Status) Validate() error {
	if err := requireName("name", s.Name, MaxStatusNameLen); err != nil {
		return err
	}
	slug, err := normalizeSlug(s.Slug, s.Name, MaxSlugLen)
	if err != nil {
		return err
	}
	s.Slug = slug
	return nil
}

func (s *Status) String() string { return s.Name }
