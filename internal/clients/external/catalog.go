// Package external provides the equipment and spell catalog backed by the dnd5e-api client
package external

import "context"

// Category names one catalog listing
type Category string

// Catalog categories
const (
	CategoryWeapons   Category = "weapons"
	CategoryArmor     Category = "armor"
	CategoryTools     Category = "tools"
	CategorySpells    Category = "spells"
	CategoryLanguages Category = "languages"
)

// Categories lists every category in display order
var Categories = []Category{CategoryWeapons, CategoryArmor, CategoryTools, CategorySpells, CategoryLanguages}

// ParseCategory validates a category name
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Entry is one catalog item
type Entry struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
}

// EntryDetail is an entry with the fields the builder reads.
// TwoHanded feeds the shield rule when a weapon is picked.
type EntryDetail struct {
	Entry
	Description string   `json:"description,omitempty"`
	Properties  []string `json:"properties,omitempty"`
	TwoHanded   bool     `json:"two_handed,omitempty"`
}

// Catalog lists catalog entries and loads their details
type Catalog interface {
	// ListCategory returns the entries of one category
	// Returns errors.InvalidArgument for an unknown category
	// Returns errors.Unavailable when the upstream API fails
	ListCategory(ctx context.Context, category Category) ([]Entry, error)

	// GetDetail loads one entry
	// Returns errors.NotFound when no category knows the id
	GetDetail(ctx context.Context, id string) (*EntryDetail, error)
}
