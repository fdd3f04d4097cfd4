package model

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultCategoryID identifies the built-in category that can never be deleted.
const DefaultCategoryID = "1"

// Fallback presentation values for transactions whose category cannot be resolved.
const (
	FallbackCategoryName  = "Uncategorized"
	FallbackCategoryColor = "#9E9E9E"
)

// Category is a user-defined grouping for transactions.
type Category struct {
	ID    string
	Name  string
	Color string // Hex color used when rendering, e.g. "#FF6B6B"
}

// IsProtected reports whether the category is the default category.
func (c Category) IsProtected() bool {
	return c.ID == DefaultCategoryID
}

// CategoryIndex maps category ids to categories for display lookups.
type CategoryIndex map[string]Category

// IndexCategories builds a CategoryIndex from a slice of categories.
// Later duplicates overwrite earlier ones.
func IndexCategories(categories []Category) CategoryIndex {
	idx := make(CategoryIndex, len(categories))
	for _, c := range categories {
		idx[c.ID] = c
	}
	return idx
}

// Resolve returns the category for id, or a fallback category carrying the
// same id when it is unknown.
func (idx CategoryIndex) Resolve(id string) (Category, bool) {
	if c, ok := idx[id]; ok {
		return c, true
	}
	return Category{
		ID:    id,
		Name:  FallbackCategoryName,
		Color: FallbackCategoryColor,
	}, false
}

// Validate ensures the category has the fields required to be stored.
func (c *Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("category name is required")
	}
	if !hexColorPattern.MatchString(c.Color) {
		return fmt.Errorf("category color must be a hex color like #A1B2C3, got %q", c.Color)
	}
	return nil
}

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
