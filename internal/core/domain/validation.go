package domain

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MaxStatusNameLen   = 50
	MaxTypeNameLen     = 50
	MaxCategoryNameLen = 100
	MaxSlugLen         = 50
)

// ValidationError reports a field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func requireName(field, value string, maxLen int) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Message: "this field may not be blank"}
	}
	if utf8.RuneCountInString(value) > maxLen {
		return &ValidationError{Field: field, Message: fmt.Sprintf("ensure this field has no more than %d characters", maxLen)}
	}
	return nil
}

// normalizeSlug validates slug, deriving it from name when blank.
func normalizeSlug(slug, name string, maxLen int) (string, error) {
	if slug == "" {
		slug = Slugify(name)
		if utf8.RuneCountInString(slug) > maxLen {
			slug = string([]rune(slug)[:maxLen])
		}
	}
	if slug == "" {
		return "", &ValidationError{Field: "slug", Message: "cannot derive a slug from the name"}
	}
	if utf8.RuneCountInString(slug) > maxLen {
		return "", &ValidationError{Field: "slug", Message: fmt.Sprintf("ensure this field has no more than %d characters", maxLen)}
	}
	for _, r := range slug {
		if !isSlugRune(r) {
			return "", &ValidationError{Field: "slug", Message: "enter a valid slug consisting of letters, numbers, underscores or hyphens"}
		}
	}
	return slug, nil
}

// Slugify lowercases s and joins its letter/digit runs with hyphens.
// Non-ASCII letters are kept.
func Slugify(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		default:
			pendingDash = true
		}
	}
	return b.String()
}

func isSlugRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-'
}
